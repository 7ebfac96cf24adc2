package auth

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/clintrovert/recli/internal/config"
	"github.com/clintrovert/recli/internal/github"
)

// ErrTokenRejected is returned when the hosting API refuses the configured token
var ErrTokenRejected = errors.New("github token is expired or invalid")

// IdentityProber performs a lightweight authenticated call
type IdentityProber interface {
	AuthenticatedUser(ctx context.Context) (string, error)
}

// Error is a credential problem together with the remediation hint shown to the user
type Error struct {
	Err  error
	Hint string
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Gate checks the credential before any workflow runs
type Gate struct {
	cfg    config.Config
	prober IdentityProber
	logger *zap.Logger
}

// NewGate creates a new authentication gate
func NewGate(cfg config.Config, prober IdentityProber, logger *zap.Logger) *Gate {
	return &Gate{
		cfg:    cfg,
		prober: prober,
		logger: logger,
	}
}

// Validate fails when no token is configured or the API rejects it. It does
// not retry.
func (g *Gate) Validate(ctx context.Context) error {
	if err := g.cfg.RequireToken(); err != nil {
		return &Error{Err: err, Hint: g.hint()}
	}

	login, err := g.prober.AuthenticatedUser(ctx)
	if err != nil {
		g.logger.Debug("token probe failed", zap.Error(err))
		return &Error{Err: fmt.Errorf("%w: %w", ErrTokenRejected, err), Hint: g.hint()}
	}

	g.logger.Debug("token accepted", zap.String("login", login))
	return nil
}

func (g *Gate) hint() string {
	return fmt.Sprintf("run `re config` to set a token, get one at %s", github.TokenSettingsURL(g.cfg.GitHubHost))
}
