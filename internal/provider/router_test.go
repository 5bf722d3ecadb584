package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/os-ghost/core/internal/ghosterr"
)

type fakeClient struct {
	name string
	out  string
	err  error
	n    int
}

func (f *fakeClient) Name() string { return f.name }
func (f *fakeClient) Complete(ctx context.Context, prompt string) (string, error) {
	return f.CompleteWithSystem(ctx, "", prompt)
}
func (f *fakeClient) CompleteWithSystem(ctx context.Context, system, user string) (string, error) {
	f.n++
	return f.out, f.err
}

func TestNewRouter_RequiresSecondary(t *testing.T) {
	_, err := NewRouter(nil, nil, 60)
	assert.ErrorIs(t, err, ghosterr.ErrProviderUnavailable)
}

func TestCall_LightPrefersSecondary(t *testing.T) {
	primary := &fakeClient{name: "primary", out: "from-primary"}
	secondary := &fakeClient{name: "secondary", out: "from-secondary"}

	r, err := NewRouter(primary, secondary, 60)
	require.NoError(t, err)

	out, err := r.Call(context.Background(), Light, "", "hi")
	require.NoError(t, err)
	assert.Equal(t, "from-secondary", out)
	assert.Equal(t, 0, primary.n)
	assert.Equal(t, 1, secondary.n)
}

func TestCall_MediumPrefersPrimary(t *testing.T) {
	primary := &fakeClient{name: "primary", out: "from-primary"}
	secondary := &fakeClient{name: "secondary", out: "from-secondary"}

	r, err := NewRouter(primary, secondary, 60)
	require.NoError(t, err)

	out, err := r.Call(context.Background(), Medium, "", "hi")
	require.NoError(t, err)
	assert.Equal(t, "from-primary", out)
	assert.Equal(t, 1, primary.n)
	assert.Equal(t, 0, secondary.n)
}

func TestCall_FallsBackOnPrimaryError(t *testing.T) {
	primary := &fakeClient{name: "primary", err: errors.New("boom")}
	secondary := &fakeClient{name: "secondary", out: "from-secondary"}

	r, err := NewRouter(primary, secondary, 60)
	require.NoError(t, err)

	out, err := r.Call(context.Background(), Heavy, "", "hi")
	require.NoError(t, err)
	assert.Equal(t, "from-secondary", out)
	assert.Equal(t, 1, primary.n)
	assert.Equal(t, 1, secondary.n)
}

func TestCall_OnlySecondaryConfigured(t *testing.T) {
	secondary := &fakeClient{name: "secondary", out: "only-option"}

	r, err := NewRouter(nil, secondary, 60)
	require.NoError(t, err)

	out, err := r.Call(context.Background(), Heavy, "", "hi")
	require.NoError(t, err)
	assert.Equal(t, "only-option", out)
}

func TestCircuitBreaker_OpensAfterPrimaryError(t *testing.T) {
	primary := &fakeClient{name: "primary", err: errors.New("boom")}
	secondary := &fakeClient{name: "secondary", out: "from-secondary"}

	r, err := NewRouter(primary, secondary, 60)
	require.NoError(t, err)

	_, err = r.Call(context.Background(), Medium, "", "hi")
	require.NoError(t, err)
	assert.True(t, r.circuitOpen())

	// second Medium call should skip the now-failing primary entirely
	_, err = r.Call(context.Background(), Medium, "", "hi")
	require.NoError(t, err)
	assert.Equal(t, 1, primary.n, "primary should not be retried while circuit is open")
	assert.Equal(t, 2, secondary.n)
}

func TestCircuitBreaker_ClosesOnSuccess(t *testing.T) {
	primary := &fakeClient{name: "primary", out: "ok"}
	secondary := &fakeClient{name: "secondary", out: "from-secondary"}

	r, err := NewRouter(primary, secondary, 60)
	require.NoError(t, err)
	r.failing.Store(true)
	r.failingSince.Store(time.Now().Add(-recoveryWindow * 2).UnixNano())

	_, err = r.Call(context.Background(), Medium, "", "hi")
	require.NoError(t, err)
	assert.False(t, r.circuitOpen())
}

func TestRateLimit_LightSkipsPrimaryCap(t *testing.T) {
	primary := &fakeClient{name: "primary", out: "ok"}
	secondary := &fakeClient{name: "secondary", out: "fallback"}

	r, err := NewRouter(primary, secondary, 1)
	require.NoError(t, err)

	// exhaust the cap with a Medium call (uses primary)
	_, err = r.Call(context.Background(), Medium, "", "hi")
	require.NoError(t, err)

	// Light call tries secondary first, never touches primary's limit
	out, err := r.Call(context.Background(), Light, "", "hi")
	require.NoError(t, err)
	assert.Equal(t, "fallback", out)
}

func TestRateLimit_HeavyOverCapFallsBackToSecondary(t *testing.T) {
	primary := &fakeClient{name: "primary", out: "ok"}
	secondary := &fakeClient{name: "secondary", out: "fallback"}

	r, err := NewRouter(primary, secondary, 1)
	require.NoError(t, err)

	_, err = r.Call(context.Background(), Heavy, "", "hi")
	require.NoError(t, err)
	assert.Equal(t, 1, primary.n)

	// second Heavy call exceeds the cap on primary, falls back to secondary
	out, err := r.Call(context.Background(), Heavy, "", "hi")
	require.NoError(t, err)
	assert.Equal(t, "fallback", out)
}

func TestTelemetry_ResetsToZero(t *testing.T) {
	primary := &fakeClient{name: "primary", out: "ok"}
	secondary := &fakeClient{name: "secondary", out: "ok"}

	r, err := NewRouter(primary, secondary, 60)
	require.NoError(t, err)

	_, _ = r.Call(context.Background(), Medium, "", "hi")
	p, s := r.Telemetry()
	assert.Equal(t, int64(1), p)
	assert.Equal(t, int64(0), s)

	r.ResetTelemetry()
	p, s = r.Telemetry()
	assert.Equal(t, int64(0), p)
	assert.Equal(t, int64(0), s)
}
