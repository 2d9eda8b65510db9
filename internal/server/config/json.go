package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/budda-star9/reelforge/internal/flagx"
	"github.com/budda-star9/reelforge/internal/timex"
)

// JsonConfig is the on-disk form of Config. Durations accept either a
// string such as "5m" or integer nanoseconds.
type JsonConfig struct {
	EndpointAddrHTTP string          `json:"endpoint_addr_http"`
	StorageDriver    string          `json:"storage_driver"`
	DatabaseDSN      string          `json:"database_dsn"`
	DBMaxConns       int             `json:"db_max_conns"`
	RPID             string          `json:"rp_id"`
	RPDisplayName    string          `json:"rp_display_name"`
	RPOrigins        []string        `json:"rp_origins"`
	CeremonyTTL      timex.Duration  `json:"ceremony_ttl"`
	ReapInterval     *timex.Duration `json:"reap_interval"`
	LogLevel         string          `json:"log_level"`
}

// parseJson loads the file named by -c/-config, if any, over config.
// Keys missing from the file keep their current value. An unreadable or
// invalid file panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigPath(os.Args[1:])
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.StorageDriver, c.StorageDriver)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.RPID, c.RPID)
	setString(&config.RPDisplayName, c.RPDisplayName)
	setString(&config.LogLevel, c.LogLevel)
	if c.DBMaxConns > 0 {
		config.DBMaxConns = c.DBMaxConns
	}
	if len(c.RPOrigins) > 0 {
		config.RPOrigins = c.RPOrigins
	}
	if c.CeremonyTTL.Duration > 0 {
		config.CeremonyTTL = time.Duration(c.CeremonyTTL.Duration)
	}
	// reap_interval may be 0 to disable the reaper.
	if c.ReapInterval != nil {
		config.ReapInterval = time.Duration(c.ReapInterval.Duration)
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
