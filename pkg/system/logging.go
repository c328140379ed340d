package system

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogOptions controls how the CLI logger is built.
type LogOptions struct {
	// Verbose switches to a development encoder at debug level.
	Verbose bool
	// File, when set, receives JSON logs through a rotating writer in
	// addition to stderr.
	File string
	// MaxSizeMB and MaxBackups bound the rotating file. Zero means the
	// lumberjack defaults are used for size and 3 backups are kept.
	MaxSizeMB  int
	MaxBackups int
}

// NewLogger returns the sugared logger used by the ghc CLI. Without
// Verbose only warnings and errors reach stderr so command output stays
// readable.
func NewLogger(opts LogOptions) (*zap.SugaredLogger, error) {
	var cfg zap.Config
	if opts.Verbose {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = !opts.Verbose

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	if opts.File == "" {
		return logger.Sugar(), nil
	}

	backups := opts.MaxBackups
	if backups == 0 {
		backups = 3
	}
	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(&lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: backups,
		}),
		zap.DebugLevel,
	)
	return logger.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, fileCore)
	})).Sugar(), nil
}

// NewNopLogger is used when a component is constructed without a logger.
func NewNopLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
