package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/clintrovert/recli/internal/config"
)

type fakeProber struct {
	login string
	err   error
	calls int
}

func (f *fakeProber) AuthenticatedUser(ctx context.Context) (string, error) {
	f.calls++
	return f.login, f.err
}

func TestValidateMissingToken(t *testing.T) {
	prober := &fakeProber{login: "octocat"}
	gate := NewGate(config.Config{GitHubHost: "github.com"}, prober, zap.NewNop())

	err := gate.Validate(t.Context())
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrTokenMissing)
	assert.Zero(t, prober.calls, "no probe without a token")

	var authErr *Error
	require.ErrorAs(t, err, &authErr)
	assert.Contains(t, authErr.Hint, "https://github.com/settings/tokens")
}

func TestValidateRejectedToken(t *testing.T) {
	cause := errors.New("401 Bad credentials")
	prober := &fakeProber{err: cause}
	gate := NewGate(config.Config{GitHubToken: "ghp_x", GitHubHost: "git.example.com"}, prober, zap.NewNop())

	err := gate.Validate(t.Context())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTokenRejected)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 1, prober.calls)

	var authErr *Error
	require.ErrorAs(t, err, &authErr)
	assert.Contains(t, authErr.Hint, "https://git.example.com/settings/tokens")
}

func TestValidateAcceptedToken(t *testing.T) {
	prober := &fakeProber{login: "octocat"}
	gate := NewGate(config.Config{GitHubToken: "ghp_x"}, prober, zap.NewNop())

	require.NoError(t, gate.Validate(t.Context()))
	assert.Equal(t, 1, prober.calls)
}
