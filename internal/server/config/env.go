package config

import "github.com/caarlos0/env/v11"

// parseEnv overlays REELFORGE_* variables. Unset variables leave the
// current value in place.
func parseEnv(config *Config) {
	if err := env.ParseWithOptions(config, env.Options{Prefix: envPrefix}); err != nil {
		panic(err)
	}
}
