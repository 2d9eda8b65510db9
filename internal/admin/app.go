// Package admin implements the operator command line: applying
// migrations, purging expired ceremonies and listing a user's credentials
// without going through the HTTP API.
package admin

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/budda-star9/reelforge/internal/dbx"
	"github.com/budda-star9/reelforge/internal/server/config"
	"github.com/budda-star9/reelforge/internal/server/repositories/repomanager"
	"github.com/budda-star9/reelforge/internal/server/services"
	"github.com/google/uuid"
)

var ErrUsage = errors.New("usage: reelforge-cli <migrate|reap|credentials USER_ID> [flags]")

type App struct {
	config *config.Config
	db     *sql.DB
	rm     repomanager.RepositoryManager
	out    io.Writer
}

func NewApp(ctx context.Context, c *config.Config, out io.Writer) (*App, error) {
	db, err := dbx.Open(ctx, c.StorageDriver, c.DatabaseDSN, 1)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	rm, err := repomanager.New(c.StorageDriver)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &App{config: c, db: db, rm: rm, out: out}, nil
}

func (a *App) Close() error {
	return a.db.Close()
}

// Run executes one command.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return ErrUsage
	}

	switch args[0] {
	case "migrate":
		if err := a.rm.RunMigrations(ctx, a.db); err != nil {
			return fmt.Errorf("migrations error: %w", err)
		}
		fmt.Fprintln(a.out, "migrations applied")
		return nil

	case "reap":
		svc := services.NewRegistrationService(a.db, a.rm, nil, a.config, nil)
		n, err := svc.ReapExpired(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "removed %d expired ceremonies\n", n)
		return nil

	case "credentials":
		if len(args) != 2 {
			return ErrUsage
		}
		return a.listCredentials(ctx, args[1])

	case "help":
		fmt.Fprintln(a.out, ErrUsage.Error())
		return nil

	default:
		return fmt.Errorf("unknown command %q: %w", args[0], ErrUsage)
	}
}

func (a *App) listCredentials(ctx context.Context, rawUserID string) error {
	userID, err := uuid.Parse(rawUserID)
	if err != nil {
		return fmt.Errorf("user id: %w", err)
	}

	creds, err := a.rm.Credentials(a.db).ListByUser(ctx, userID)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREDENTIAL ID\tCREATED")
	for _, c := range creds {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.ID, base64.RawURLEncoding.EncodeToString(c.CredentialID), c.CreatedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}

// CommandArgs drops configuration flags and their values from args,
// leaving the command and its operands in order.
func CommandArgs(args []string) []string {
	valued := make(map[string]struct{}, len(config.FlagNames))
	for _, f := range config.FlagNames {
		valued[f] = struct{}{}
	}

	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		a := args[i]
		if !strings.HasPrefix(a, "-") {
			out = append(out, a)
			continue
		}
		if strings.Contains(a, "=") {
			continue
		}
		if _, ok := valued[a]; ok && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			i++
		}
	}
	return out
}
