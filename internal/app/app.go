package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/foliodocs/folio/pkg/credstore"
	"github.com/foliodocs/folio/pkg/docsdk"
	"github.com/foliodocs/folio/pkg/session"
	"github.com/foliodocs/folio/pkg/slogx"
	"golang.org/x/time/rate"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application wires the session manager, credential store and workspace
// client together for the CLI.
type Application struct {
	cfg    Config
	logger *slog.Logger

	store   *credstore.Store
	client  *docsdk.Client
	session *session.Manager
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	logger := slogx.New(slogx.Config{
		Service: "folio",
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})

	store, err := credstore.Open(
		filepath.Join(cfg.StateDir, "session.db"),
		filepath.Join(cfg.StateDir, "session.key"),
	)
	if err != nil {
		return nil, fmt.Errorf("opening credential store: %w", err)
	}

	client := docsdk.NewClient(cfg.APIURL)
	client.HTTPClient.Transport = slogx.NewTransport(nil, logger)
	if cfg.RequestsPerSecond > 0 {
		client.Limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), int(cfg.RequestsPerSecond))
	}

	manager := session.New(client, store, session.Config{
		Margin:             cfg.TokenMargin,
		RevalidateInterval: cfg.RevalidateInterval,
		ExchangeTimeout:    cfg.ExchangeTimeout,
		HTTPClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: slogx.NewTransport(nil, logger),
		},
		Logger: logger,
	})
	client.Session = manager

	return &Application{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		client:  client,
		session: manager,
	}, nil
}

// Run establishes a session (resuming a persisted one when possible), lists
// the user's workspaces, then stays up until the session ends or a shutdown
// signal arrives.
func (app *Application) Run() error {
	defer app.Shutdown()

	// The application logger rides along in the context so the outbound
	// transport logs every request with the stamped correlation ID.
	ctx := slogx.WithContext(context.Background(), app.logger)
	events := app.session.Subscribe()

	if err := app.establishSession(ctx); err != nil {
		return err
	}

	ident := app.session.CurrentIdentity()
	app.logger.Info("signed in", "subject", ident.Subject, "role", ident.Role, "expires_at", ident.ExpiresAt)

	workspaces, err := app.client.ListWorkspaces(ctx)
	if err != nil {
		return fmt.Errorf("listing workspaces: %w", err)
	}
	for _, ws := range workspaces {
		fmt.Printf("%s\t%s\n", ws.ID, ws.Name)
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case sig := <-shutdown:
			app.logger.Info("shutdown signal received", "signal", sig)
			return nil
		case ev := <-events:
			if ev.Kind != session.EventEnded {
				continue
			}
			if ev.UserInitiated {
				return nil
			}
			// Forced logout: surface the reason and exit so the user can
			// sign in again.
			fmt.Fprintln(os.Stderr, ev.Reason)
			return nil
		}
	}
}

func (app *Application) establishSession(ctx context.Context) error {
	resumed, err := app.session.Resume(ctx)
	if err != nil {
		app.logger.Warn("could not resume persisted session", "error", err)
	}
	if resumed {
		return nil
	}

	if app.cfg.Email == "" || app.cfg.Password == "" {
		return fmt.Errorf("no persisted session; set FOLIO_EMAIL and FOLIO_PASSWORD to sign in")
	}

	pair, err := app.client.LoginPassword(ctx, app.cfg.Email, app.cfg.Password)
	if err != nil {
		return fmt.Errorf("signing in: %w", err)
	}

	if err := app.session.Login(pair.AccessToken, pair.RefreshToken); err != nil {
		return fmt.Errorf("starting session: %w", err)
	}

	return nil
}

// Shutdown releases the session manager and closes the credential store.
// The persisted pair survives so the next run resumes the session.
func (app *Application) Shutdown() {
	app.session.Close()

	if err := app.store.Close(); err != nil {
		app.logger.Error("error closing credential store", "error", err)
	}

	app.logger.Info("folio stopped")
}
