// Package logging configures the process-wide logrus logger, the way the
// teacher's common.SetupLogger configures logging for the game.
package logging

import (
	"os"

	log "github.com/sirupsen/logrus"
)

// Setup sets the global logrus level from level ("INFO"/"DEBUG"/"TRACE"/
// "WARN", default INFO) and installs a timestamped text formatter on stdout.
func Setup(level string) {
	switch level {
	case "DEBUG":
		log.SetLevel(log.DebugLevel)
	case "TRACE":
		log.SetLevel(log.TraceLevel)
	case "WARN":
		log.SetLevel(log.WarnLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}

	log.SetOutput(os.Stdout)
	log.SetFormatter(&log.TextFormatter{
		ForceColors:            true,
		FullTimestamp:          true,
		TimestampFormat:        "2006-01-02 15:04:05",
		DisableLevelTruncation: true,
		PadLevelText:           true,
	})
}
