package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/budda-star9/reelforge/internal/common"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-webauthn/webauthn/protocol"
	"github.com/google/uuid"
)

const maxBodyBytes = 64 << 10

type challengeRequest struct {
	DisplayName string `json:"display_name"`
}

type challengeResponse struct {
	StateID   string                       `json:"state_id"`
	PublicKey *protocol.CredentialCreation `json:"public_key"`
}

type registerRequest struct {
	StateID  string          `json:"state_id"`
	Response json.RawMessage `json:"response"`
}

type registerResponse struct {
	Status       string `json:"status"`
	CredentialID string `json:"credential_id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ReelForge Core"))
}

func (s *Server) handleChallenge(w http.ResponseWriter, r *http.Request) {
	var req challengeRequest
	if err := decodeBody(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, r, err)
		return
	}
	if req.DisplayName == "" {
		req.DisplayName = common.DefaultDisplayName
	}

	res, err := s.registrar.Begin(r.Context(), uuid.Nil, req.DisplayName)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "Ceremony started", "state_id", res.CeremonyID)
	writeJSON(w, http.StatusOK, challengeResponse{
		StateID:   res.CeremonyID.String(),
		PublicKey: res.Challenge,
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	response := []byte(req.Response)
	if string(response) == "null" {
		response = nil
	}

	res, err := s.registrar.Complete(r.Context(), req.StateID, response)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "Credential registered", "state_id", req.StateID, "credential_id", res.Encoded)
	writeJSON(w, http.StatusOK, registerResponse{Status: "ok", CredentialID: res.Encoded})
}

// decodeBody reads a bounded JSON body. Syntax errors are reported as
// common.ErrMalformedInput; an empty body yields io.EOF.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return err
		}
		return errors.Join(common.ErrMalformedInput, err)
	}
	return nil
}

// writeError maps the error taxonomy onto status codes. Server faults get
// an opaque body; the cause is only logged.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	reqID := middleware.GetReqID(ctx)

	var status int
	var msg string
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, common.ErrMalformedInput):
		status, msg = http.StatusBadRequest, "malformed request"
	case errors.Is(err, common.ErrVerificationFailed):
		status, msg = http.StatusBadRequest, "verification failed"
	case errors.Is(err, common.ErrCeremonyNotFound):
		status, msg = http.StatusGone, "registration ceremony not found or expired"
	default:
		status, msg = http.StatusInternalServerError, "internal error"
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error(ctx, "Request failed", "path", r.URL.Path, "request_id", reqID, "error", err)
	} else {
		s.logger.Warn(ctx, "Request rejected", "path", r.URL.Path, "request_id", reqID, "status", status, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
