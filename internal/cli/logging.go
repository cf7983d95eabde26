package cli

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// newLogger builds the console logger used by all commands. Progress rendering
// goes to stdout, logs go to stderr so the two streams can be separated.
// The level comes through viper, so the --log-level flag, INSTCTL_LOG_LEVEL,
// and the config file all apply, in that order.
func newLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		level = zerolog.WarnLevel
	}

	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}
