package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_DefaultLevel(t *testing.T) {
	assert.Equal(t, zerolog.WarnLevel, newLogger().GetLevel())
}

func TestNewLogger_EnvVarSetsLevel(t *testing.T) {
	t.Setenv("INSTCTL_LOG_LEVEL", "debug")
	assert.Equal(t, zerolog.DebugLevel, newLogger().GetLevel())
}

func TestNewLogger_FlagWinsOverEnv(t *testing.T) {
	t.Setenv("INSTCTL_LOG_LEVEL", "debug")

	flag := rootCmd.PersistentFlags().Lookup("log-level")
	require.NoError(t, flag.Value.Set("error"))
	flag.Changed = true
	t.Cleanup(func() {
		_ = flag.Value.Set("warn")
		flag.Changed = false
	})

	assert.Equal(t, zerolog.ErrorLevel, newLogger().GetLevel())
}

func TestNewLogger_ConfigFileFallback(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log-level: trace\n"), 0644))

	viper.SetConfigFile(path)
	require.NoError(t, viper.ReadInConfig())
	t.Cleanup(func() {
		// Re-read an empty config so the level does not leak into other tests
		empty := filepath.Join(dir, "empty.yaml")
		_ = os.WriteFile(empty, []byte("{}\n"), 0644)
		viper.SetConfigFile(empty)
		_ = viper.ReadInConfig()
	})

	assert.Equal(t, zerolog.TraceLevel, newLogger().GetLevel())
}

func TestNewLogger_InvalidLevelFallsBackToWarn(t *testing.T) {
	t.Setenv("INSTCTL_LOG_LEVEL", "shouting")
	assert.Equal(t, zerolog.WarnLevel, newLogger().GetLevel())
}
