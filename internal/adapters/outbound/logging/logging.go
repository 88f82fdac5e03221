package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the console logger used by the CLI. Debug selects the
// development config; otherwise only warnings and errors are written.
// Output goes to stderr so reports on stdout stay machine-readable.
func New(debug bool) (*zap.Logger, error) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
		cfg.Sampling = nil
	}
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}

// Must is New for program start-up, where a logger failure is fatal.
func Must(debug bool) *zap.Logger {
	logger, err := New(debug)
	if err != nil {
		panic("initializing logger: " + err.Error())
	}
	return logger
}
