package orchestrator

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/os-ghost/core/internal/logging"
)

// Initialize calls Initialize on every agent in parallel, then
// initializes the provider router (probing configured providers).
func (o *Orchestrator) Initialize(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, a := range o.agents {
		a := a
		g.Go(func() error { return a.Initialize(gctx) })
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if o.router != nil {
		if err := o.router.Initialize(ctx); err != nil {
			return err
		}
	}

	logging.Orchestrator("orchestrator initialized with %d agents", len(o.agents))
	return nil
}

// Shutdown runs Shutdown on every agent in parallel, then flushes the
// memory store. Agent shutdown errors are logged, not propagated, so
// one misbehaving agent never blocks the rest of teardown.
func (o *Orchestrator) Shutdown(ctx context.Context) error {
	var g errgroup.Group
	for _, a := range o.agents {
		a := a
		g.Go(func() error {
			if err := a.Shutdown(ctx); err != nil {
				logging.OrchestratorWarn("agent %s shutdown error: %v", a.Name(), err)
			}
			return nil
		})
	}
	_ = g.Wait()

	if o.memory != nil {
		return o.memory.Flush()
	}
	return nil
}

// HealthStatus is one entry of HealthCheck's aggregated map.
type HealthStatus struct {
	Healthy bool
	Error   string
}

// HealthCheck aggregates every agent's HealthCheck plus provider
// availability into a single name->status map.
func (o *Orchestrator) HealthCheck(ctx context.Context) map[string]HealthStatus {
	results := make(map[string]HealthStatus, len(o.agents)+2)

	for name, a := range o.agents {
		if err := a.HealthCheck(ctx); err != nil {
			results[name] = HealthStatus{Healthy: false, Error: err.Error()}
		} else {
			results[name] = HealthStatus{Healthy: true}
		}
	}

	if o.router != nil {
		primary, secondary := o.router.Available()
		results["provider.primary"] = HealthStatus{Healthy: primary}
		results["provider.secondary"] = HealthStatus{Healthy: secondary}
	}

	return results
}
