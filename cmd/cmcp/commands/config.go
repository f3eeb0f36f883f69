package commands

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/f/cmcp/pkg/alias"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// config keys.
const (
	KeyVerbose = "verbose"
	KeyTimeout = "timeout"
	KeyColor   = "color"
	KeyDebug   = "debug"
	KeyLogFile = "log_file"
	KeyServers = "servers"
)

// EnvPrefix is the prefix of environment variables overriding the configuration.
const EnvPrefix = "CMCP"

// Config is the runtime configuration, read from flags, CMCP_* environment
// variables and $HOME/.cmcp/config.{json,yaml,toml}, in that order of precedence.
type Config struct {
	Verbose bool          `mapstructure:"verbose"`
	Timeout time.Duration `mapstructure:"timeout"`
	Color   string        `mapstructure:"color"`
	Debug   bool          `mapstructure:"debug"`
	LogFile string        `mapstructure:"log_file"`
	Servers alias.Aliases `mapstructure:"servers"`
}

// LogLevel returns the log level implied by the configuration.
func (c *Config) LogLevel() string {
	switch {
	case c.Debug:
		return "debug"
	case c.Verbose:
		return "info"
	default:
		return "warn"
	}
}

// bindFlags maps command-line flags onto config keys.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	bindings := map[string]string{
		KeyVerbose: "verbose",
		KeyTimeout: "timeout",
		KeyColor:   "color",
		KeyDebug:   "debug",
		KeyLogFile: "log-file",
	}
	for key, flag := range bindings {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return fmt.Errorf("error binding flag %s: %w", flag, err)
		}
	}
	return nil
}

// LoadConfig reads the configuration. A missing default config file is not an
// error; a missing explicit configFile is.
func LoadConfig(v *viper.Viper, configFile string) (*Config, error) {
	v.SetDefault(KeyVerbose, false)
	v.SetDefault(KeyTimeout, time.Duration(0))
	v.SetDefault(KeyColor, "auto")
	v.SetDefault(KeyDebug, false)
	v.SetDefault(KeyLogFile, "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("$HOME/.cmcp")
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &configFileNotFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return config, nil
}
