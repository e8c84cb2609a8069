package agents_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bububa/omniquery/agents"
	"github.com/bububa/omniquery/agents/agenttest"
)

func TestRegistryOrder(t *testing.T) {
	a := agenttest.New("A", 0.5)
	b := agenttest.New("B", 0.5)
	c := agenttest.Disabled("C", 0.9)
	reg := agents.NewRegistry(a, b, c)

	replacement := agenttest.New("A", 0.7)
	reg.Register(replacement)

	if diff := cmp.Diff([]string{"A", "B", "C"}, reg.Names()); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
	if got, ok := reg.Get("A"); !ok || got != agents.Agent(replacement) {
		t.Errorf("expect re-registration to overwrite, got %v", got)
	}
	if _, ok := reg.Get("missing"); ok {
		t.Error("expect miss for unknown name")
	}
	var enabled []string
	for _, agent := range reg.Enabled() {
		enabled = append(enabled, agent.Name())
	}
	if diff := cmp.Diff([]string{"A", "B"}, enabled); diff != "" {
		t.Errorf("enabled mismatch (-want +got):\n%s", diff)
	}
	if reg.Len() != 3 {
		t.Errorf("expect 3 agents, got %d", reg.Len())
	}
}

func TestRegistryInitializeAll(t *testing.T) {
	ok := agenttest.New("ok", 0.5)
	ok.SetStatus(agents.StatusInitializing, "")
	failing := agenttest.New("failing", 0.5)
	failing.SetStatus(agents.StatusInitializing, "")
	failing.InitErr = errors.New("no credentials")
	panicking := agenttest.New("panicking", 0.5)
	panicking.SetStatus(agents.StatusInitializing, "")
	panicking.InitPanic = true
	disabled := agenttest.Disabled("disabled", 0.5)

	reg := agents.NewRegistry(ok, failing, panicking, disabled)
	reg.InitializeAll(context.Background())

	expect := map[string]agents.Status{
		"ok":        agents.StatusReady,
		"failing":   agents.StatusError,
		"panicking": agents.StatusError,
		"disabled":  agents.StatusDisabled,
	}
	for _, health := range reg.HealthCheckAll(context.Background()) {
		if health.Status != expect[health.Name] {
			t.Errorf("%s: expect %s, got %s", health.Name, expect[health.Name], health.Status)
		}
	}
	if h := failing.Health(context.Background()); h.Message != "no credentials" {
		t.Errorf("expect failure message recorded, got %q", h.Message)
	}
}

func TestRegistryShutdownAll(t *testing.T) {
	reg := agents.NewRegistry(agenttest.New("A", 0.5), agenttest.New("B", 0.5))
	reg.ShutdownAll(context.Background())
	if n := len(reg.Enabled()); n != 0 {
		t.Errorf("expect no enabled agents after shutdown, got %d", n)
	}
}
