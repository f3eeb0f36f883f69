package commands

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlagSet(t *testing.T, v *viper.Viper) *pflag.FlagSet {
	t.Helper()

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.BoolP("verbose", "v", false, "")
	flags.Duration("timeout", 0, "")
	flags.String("color", "auto", "")
	flags.Bool("debug", false, "")
	flags.String("log-file", "", "")
	require.NoError(t, bindFlags(v, flags))

	return flags
}

func TestLoadConfig_Defaults(t *testing.T) {
	isolateHome(t)

	config, err := LoadConfig(viper.New(), "")
	require.NoError(t, err)
	assert.False(t, config.Verbose)
	assert.Zero(t, config.Timeout)
	assert.Equal(t, "auto", config.Color)
	assert.Empty(t, config.Servers)
	assert.Equal(t, "warn", config.LogLevel())
}

func TestLoadConfig_HomeConfig(t *testing.T) {
	home := isolateHome(t)
	dir := filepath.Join(home, ".cmcp")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	content := `{
  "timeout": "5s",
  "color": "never",
  "servers": {
    "github": {
      "target": "https://api.example.com/mcp",
      "items": ["Authorization:Bearer abc"]
    }
  }
}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(content), 0o600))

	config, err := LoadConfig(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, config.Timeout)
	assert.Equal(t, "never", config.Color)

	server, found := config.Servers.Lookup("GitHub")
	require.True(t, found)
	assert.Equal(t, "https://api.example.com/mcp", server.Target)
	assert.Equal(t, []string{"Authorization:Bearer abc"}, server.Items)
}

func TestLoadConfig_Precedence(t *testing.T) {
	isolateHome(t)

	configFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("timeout: 1s\ncolor: always\ndebug: false\n"), 0o600))
	t.Setenv("CMCP_TIMEOUT", "3s")
	t.Setenv("CMCP_DEBUG", "true")

	v := viper.New()
	flags := newFlagSet(t, v)
	require.NoError(t, flags.Parse([]string{"--timeout", "10s"}))

	config, err := LoadConfig(v, configFile)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, config.Timeout, "flag wins over env")
	assert.True(t, config.Debug, "env wins over file")
	assert.Equal(t, "always", config.Color, "file wins over default")
	assert.Equal(t, "debug", config.LogLevel())
}

func TestLoadConfig_LogFileFromEnv(t *testing.T) {
	isolateHome(t)
	logFile := filepath.Join(t.TempDir(), "cmcp.log")
	t.Setenv("CMCP_LOG_FILE", logFile)

	config, err := LoadConfig(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, logFile, config.LogFile)
}

func TestLoadConfig_Errors(t *testing.T) {
	isolateHome(t)

	_, err := LoadConfig(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config")

	broken := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("servers: [unterminated"), 0o600))
	_, err = LoadConfig(viper.New(), broken)
	require.Error(t, err)
}

func TestConfig_LogLevel(t *testing.T) {
	testCases := []struct {
		name   string
		config Config
		want   string
	}{
		{name: "default", config: Config{}, want: "warn"},
		{name: "verbose", config: Config{Verbose: true}, want: "info"},
		{name: "debug wins", config: Config{Verbose: true, Debug: true}, want: "debug"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.config.LogLevel())
		})
	}
}
