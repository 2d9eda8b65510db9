package config

import (
	"flag"
	"os"
	"strings"

	"github.com/budda-star9/reelforge/internal/flagx"
)

var settingFlags = []string{"-a", "-s", "-d", "-m", "-i", "-n", "-o", "-t", "-r", "-l"}

// FlagNames lists every value-taking flag read by LoadConfig, including the
// config file flags.
var FlagNames = append(append([]string{}, settingFlags...), "-c", "-config", "--config")

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     HTTP bind address (e.g., ":3000")
//	-s string     storage driver: postgres | sqlite
//	-d string     database DSN
//	-m int        max open DB connections
//	-i string     relying party id
//	-n string     relying party display name
//	-o string     comma-separated allowed origins
//	-t duration   ceremony TTL (e.g., "5m")
//	-r duration   reap interval, 0 disables
//	-l string     log level
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], settingFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.StorageDriver, "s", config.StorageDriver, "storage driver (postgres, sqlite)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.IntVar(&config.DBMaxConns, "m", config.DBMaxConns, "max open database connections")
	fs.StringVar(&config.RPID, "i", config.RPID, "relying party id")
	fs.StringVar(&config.RPDisplayName, "n", config.RPDisplayName, "relying party display name")
	origins := fs.String("o", strings.Join(config.RPOrigins, ","), "allowed origins, comma separated")
	fs.DurationVar(&config.CeremonyTTL, "t", config.CeremonyTTL, "registration ceremony TTL")
	fs.DurationVar(&config.ReapInterval, "r", config.ReapInterval, "expired ceremony reap interval (0 disables)")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.RPOrigins = splitOrigins(*origins)
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
