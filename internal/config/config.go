// Package config reads the small set of environment-variable overrides
// Gekko's CLI honors alongside its flags, following the teacher pack's
// env-struct convention rather than hand-rolled os.Getenv calls.
package config

import "github.com/caarlos0/env/v6"

// Config is Gekko's ambient, environment-sourced configuration. Flags
// passed on the command line take precedence where both exist.
type Config struct {
	// NoColor disables the REPL/error styling in package style, for CI
	// logs and other non-interactive captures that don't want ANSI codes.
	NoColor bool `env:"GEKKO_NO_COLOR"`

	// Verbose turns on the same instance-construction tracing as -v/--verbose.
	Verbose bool `env:"GEKKO_VERBOSE"`
}

// Load parses Config from the process environment.
func Load() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, err
	}
	return c, nil
}
