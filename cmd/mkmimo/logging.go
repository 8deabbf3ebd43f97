package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sashaperigo/mkmimo/pkg/config"
)

// configureLogger builds a logger honoring --log-level (takes precedence)
// and --verbose, defaulting to warn level so the loop stays quiet absent
// an explicit ask.
func configureLogger(cmd *cobra.Command) (*logrus.Logger, error) {
	logLevel := logrus.WarnLevel

	raw, _ := cmd.Flags().GetString("log-level")
	if raw != "" {
		lvl, err := config.ParseLogLevel(raw)
		if err != nil {
			return nil, err
		}
		logLevel = lvl
	} else if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logLevel = logrus.DebugLevel
	}

	cfg := &config.Config{LogLevel: logLevel}
	logger := cfg.NewLogger()
	logger.SetOutput(cmd.ErrOrStderr())
	return logger, nil
}
