package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"fintrack/internal/auth"
	"fintrack/internal/backend"
	"fintrack/internal/config"
	"fintrack/internal/core"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

// Options configures a Run. Zero values use the process streams and the
// default backend factory.
type Options struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer

	// Factory overrides how the backend is created.
	Factory backend.Factory
	// AuthOptions are passed to the authenticator.
	AuthOptions []auth.Option
}

// app holds what a command needs once the user is logged in.
type app struct {
	opts    Options
	prompt  *prompter
	render  *renderer
	logger  *log.Logger
	backend *backend.BackendResult
	service *services.LedgerService
}

func newApp(opts Options) *app {
	if opts.In == nil {
		opts.In = eofReader{}
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.Err == nil {
		opts.Err = io.Discard
	}
	return &app{
		opts:   opts,
		prompt: newPrompter(opts.In, opts.Out),
		render: newRenderer(opts.Out),
	}
}

// start loads configuration, opens the backend, logs the user in and opens
// their ledger. The returned context carries the application logger.
func (a *app) start(ctx context.Context, o Overrides) (context.Context, error) {
	cfg, err := LoadAndValidateConfig(o)
	if err != nil {
		return ctx, err
	}

	a.logger, err = SetupLogger(cfg.LogLevel, a.opts.Err)
	if err != nil {
		return ctx, err
	}
	ctx = log.WithContext(ctx, a.logger)

	if err := a.openBackend(ctx, cfg); err != nil {
		return ctx, err
	}

	session, err := a.login(ctx, cfg.User)
	if err != nil {
		return ctx, err
	}

	l, err := ledger.Open(ctx, a.backend.Backend, session)
	if err != nil {
		return ctx, err
	}
	a.service = services.NewLedgerService(l, a.backend.Publisher, a.logger)
	log.FromContext(ctx).WithComponent(log.ComponentApp).InfoContext(ctx, "Ledger opened",
		log.NewFields().
			WithOwner(session.Owner).
			WithBackend(cfg.DataBackend).
			WithOperation(log.OpStartup).
			ToSlice()...)
	return ctx, nil
}

func (a *app) openBackend(ctx context.Context, cfg *config.Config) error {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	factory := a.opts.Factory
	if factory == nil {
		factory = backend.NewFactory(a.logger)
	}
	a.backend, err = factory.CreateBackend(ctx, bcfg)
	if err != nil {
		return fmt.Errorf("open %s backend: %w", bcfg.Type, err)
	}
	return nil
}

// login verifies a known user or creates an account for a new one.
func (a *app) login(ctx context.Context, username string) (core.Session, error) {
	if username == "" {
		var err error
		if username, err = a.prompt.Line("Username: "); err != nil {
			return core.Session{}, fmt.Errorf("read username: %w", err)
		}
	}

	authenticator := auth.NewAuthenticator(a.backend.Backend, a.opts.AuthOptions...)
	exists, err := authenticator.Exists(ctx, username)
	if err != nil {
		return core.Session{}, err
	}

	if exists {
		password, err := a.prompt.Password("Password: ")
		if err != nil {
			return core.Session{}, err
		}
		session, err := authenticator.Verify(ctx, username, password)
		if err != nil {
			return core.Session{}, err
		}
		a.render.Message("Login successful.")
		return session, nil
	}

	a.render.Message("User not found. Creating a new account.")
	password, err := a.prompt.Password("Set a password: ")
	if err != nil {
		return core.Session{}, err
	}
	session, err := authenticator.Register(ctx, username, password)
	if err != nil {
		return core.Session{}, err
	}
	a.render.Message("Account created.")
	return session, nil
}

func (a *app) close() error {
	if a.backend == nil {
		return nil
	}
	err := a.backend.Close()
	if a.logger != nil {
		a.logger.WithComponent(log.ComponentApp).Debug("Backend closed",
			log.FieldOperation, log.OpShutdown,
			log.FieldError, err)
	}
	return err
}

// userMessage turns an error into the text shown to the user.
func userMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrInvalidReference):
		return "Invalid category or expense index."
	case errors.Is(err, core.ErrInvalidAmount):
		return "Invalid amount."
	case errors.Is(err, core.ErrEmptyCategory):
		return "Category cannot be empty."
	case errors.Is(err, core.ErrInvalidPeriod):
		return "Invalid period. Use daily, weekly, monthly or yearly."
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Incorrect password."
	case errors.Is(err, auth.ErrEmptyPassword):
		return "Password cannot be empty."
	case errors.Is(err, core.ErrEmptyOwner):
		return "Username cannot be empty."
	case errors.Is(err, core.ErrInvalidOwner):
		return "Invalid username."
	}
	return err.Error()
}

type eofReader struct{}

func (eofReader) Read([]byte) (int, error) { return 0, io.EOF }
