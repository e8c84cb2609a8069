package agents

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Registry holds agents by unique name in registration order.
// It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	agents map[string]Agent
	order  []string
}

func NewRegistry(agents ...Agent) *Registry {
	ret := &Registry{
		agents: make(map[string]Agent, len(agents)),
	}
	for _, agent := range agents {
		ret.Register(agent)
	}
	return ret
}

// Register stores agent by name, a later registration with the same name
// replaces the agent but keeps its original position
func (r *Registry) Register(agent Agent) {
	name := agent.Name()
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.agents[name]; !ok {
		r.order = append(r.order, name)
	}
	r.agents[name] = agent
}

// Get returns the agent registered under name
func (r *Registry) Get(name string) (Agent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	agent, ok := r.agents[name]
	return agent, ok
}

// All returns every agent in registration order
func (r *Registry) All() []Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ret := make([]Agent, 0, len(r.order))
	for _, name := range r.order {
		ret = append(ret, r.agents[name])
	}
	return ret
}

// Enabled returns agents whose status is not disabled, in registration order
func (r *Registry) Enabled() []Agent {
	all := r.All()
	ret := make([]Agent, 0, len(all))
	for _, agent := range all {
		if agent.Status() != StatusDisabled {
			ret = append(ret, agent)
		}
	}
	return ret
}

// Names returns the registered names in registration order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// InitializeAll initializes every agent. A failing or panicking agent is
// logged and moved to StatusError, the batch always completes.
func (r *Registry) InitializeAll(ctx context.Context) {
	logger := zerolog.Ctx(ctx)
	for _, agent := range r.All() {
		if agent.Status() == StatusDisabled {
			logger.Info().Str("agent", agent.Name()).Msg("agent disabled")
			continue
		}
		if err := initialize(ctx, agent); err != nil {
			logger.Error().Err(err).Str("agent", agent.Name()).Msg("agent initialization failed")
			if setter, ok := agent.(StatusSetter); ok && agent.Status() != StatusError {
				setter.SetStatus(StatusError, err.Error())
			}
			continue
		}
		logger.Info().Str("agent", agent.Name()).Str("status", string(agent.Status())).Msg("agent initialized")
	}
}

func initialize(ctx context.Context, agent Agent) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return agent.Initialize(ctx)
}

// HealthCheckAll gathers a snapshot from every agent
func (r *Registry) HealthCheckAll(ctx context.Context) []Health {
	all := r.All()
	ret := make([]Health, 0, len(all))
	for _, agent := range all {
		ret = append(ret, agent.Health(ctx))
	}
	return ret
}

// ShutdownAll shuts every agent down, errors are logged
func (r *Registry) ShutdownAll(ctx context.Context) {
	logger := zerolog.Ctx(ctx)
	for _, agent := range r.All() {
		if err := agent.Shutdown(ctx); err != nil {
			logger.Warn().Err(err).Str("agent", agent.Name()).Msg("agent shutdown failed")
		}
	}
}
