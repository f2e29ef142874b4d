package app

import (
	"context"
	"errors"
	"flag"
	"io"

	"github.com/agbru/argontune/internal/calibration"
	"github.com/agbru/argontune/internal/config"
	"github.com/agbru/argontune/internal/hasher"
	"github.com/agbru/argontune/internal/sysmon"
)

// Application represents the argontune application instance.
type Application struct {
	Config    config.AppConfig
	Hasher    hasher.Hasher
	Probe     sysmon.Probe
	ErrWriter io.Writer

	engineOpts []calibration.EngineOption
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithHasher replaces the Argon2 primitive.
func WithHasher(h hasher.Hasher) AppOption {
	return func(a *Application) { a.Hasher = h }
}

// WithProbe replaces the hardware probe used for the search bounds.
func WithProbe(p sysmon.Probe) AppOption {
	return func(a *Application) { a.Probe = p }
}

// WithEngineOptions passes extra options to the calibration engine.
func WithEngineOptions(opts ...calibration.EngineOption) AppOption {
	return func(a *Application) { a.engineOpts = append(a.engineOpts, opts...) }
}

// New creates a new Application instance by parsing command-line arguments.
// args[0] is the program name.
func New(args []string, errWriter io.Writer, opts ...AppOption) (*Application, error) {
	app := &Application{ErrWriter: errWriter}
	for _, opt := range opts {
		opt(app)
	}
	if app.Hasher == nil {
		app.Hasher = hasher.NewArgon2()
	}
	if app.Probe == nil {
		app.Probe = sysmon.Detect
	}

	programName := "argontune"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter)
	if err != nil {
		return nil, err
	}
	app.Config = cfg
	return app, nil
}

// Run executes the tuning request and returns the process exit code.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	return a.runTune(ctx, out)
}

// IsHelpError checks if the error is a help flag error (--help was used).
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}
