// Package config loads optional project-level compiler defaults from an
// .hpc.yaml file in the working directory or the user's home directory,
// layered under flag and environment overrides via viper.
package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the toolchain defaults consulted by the driver when a CLI
// flag is left at its zero value.
type Config struct {
	CC       string   `mapstructure:"cc"`
	CCFlags  []string `mapstructure:"cc_flags"`
	Verbose  bool     `mapstructure:"verbose"`
	KeepC    bool     `mapstructure:"keep_c"`
}

// Defaults returns the built-in configuration used when no .hpc.yaml is
// present and no environment override applies.
func Defaults() Config {
	return Config{CC: "gcc"}
}

// Load reads .hpc.yaml from the current directory and the user's home
// directory (if present), and from HPC_-prefixed environment variables,
// layered over Defaults. A missing config file is not an error; a malformed
// one is.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName(".hpc")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}

	v.SetEnvPrefix("HPC")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	defaults := Defaults()
	v.SetDefault("cc", defaults.CC)
	v.SetDefault("cc_flags", defaults.CCFlags)
	v.SetDefault("verbose", defaults.Verbose)
	v.SetDefault("keep_c", defaults.KeepC)

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
