package plugins

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingPlugin appends its name to a shared log on every event.
type recordingPlugin struct {
	name        string
	events      []string
	log         *[]string
	fail        error
	initErr     error
	shutdownErr error
	initCalls   int
}

func (p *recordingPlugin) Name() string        { return p.name }
func (p *recordingPlugin) Version() string     { return "0.1.0" }
func (p *recordingPlugin) Description() string { return "records events" }

func (p *recordingPlugin) Initialize(ctx context.Context, host Host) error {
	p.initCalls++
	if p.initErr != nil {
		return p.initErr
	}
	for _, name := range p.events {
		host.On(name, func(ctx context.Context, event Event) error {
			*p.log = append(*p.log, p.name+":"+event.Module.DisplayName())
			return p.fail
		})
	}
	if host.Logger() == nil {
		return errors.New("host without logger")
	}
	return nil
}

func (p *recordingPlugin) Shutdown(ctx context.Context) error {
	*p.log = append(*p.log, "shutdown:"+p.name)
	return p.shutdownErr
}

func (p *recordingPlugin) Health() PluginHealth {
	return PluginHealth{Status: HealthStatusHealthy}
}

func TestModuleDisplayName(t *testing.T) {
	assert.Equal(t, "shop", Module{Name: "shop", BasePath: "/work/modules/shop"}.DisplayName())
	assert.Equal(t, "storefront", Module{Name: "host", BasePath: "/work/storefront", IsHost: true}.DisplayName())
	assert.Equal(t, "host", Module{Name: "host", IsHost: true}.DisplayName())
}

func TestManagerRegister(t *testing.T) {
	m := NewManager(nil)
	var log []string

	require.NoError(t, m.Register(&recordingPlugin{name: "a", log: &log}))
	err := m.Register(&recordingPlugin{name: "a", log: &log})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestManagerEmitOrder(t *testing.T) {
	ctx := context.Background()
	m := NewManager(nil)
	var log []string

	first := &recordingPlugin{name: "first", events: []string{EventAssetsBaseStylesCopied}, log: &log}
	second := &recordingPlugin{name: "second", events: []string{EventAssetsBaseStylesCopied, "OTHER"}, log: &log}
	require.NoError(t, m.Register(first))
	require.NoError(t, m.Register(second))
	require.NoError(t, m.Initialize(ctx))
	require.NoError(t, m.Initialize(ctx))
	assert.Equal(t, 1, first.initCalls)

	event := Event{Name: EventAssetsBaseStylesCopied, Module: Module{Name: "shop"}}
	require.NoError(t, m.Emit(ctx, event))
	assert.Equal(t, []string{"first:shop", "second:shop"}, log)

	require.NoError(t, m.Emit(ctx, Event{Name: "UNKNOWN"}))
	assert.Len(t, log, 2)
}

func TestManagerEmitStopsAtFirstError(t *testing.T) {
	ctx := context.Background()
	m := NewManager(nil)
	var log []string
	boom := errors.New("boom")

	require.NoError(t, m.Register(&recordingPlugin{name: "failing", events: []string{"E"}, log: &log, fail: boom}))
	require.NoError(t, m.Register(&recordingPlugin{name: "after", events: []string{"E"}, log: &log}))
	require.NoError(t, m.Initialize(ctx))

	err := m.Emit(ctx, Event{Name: "E", Module: Module{Name: "m"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"failing:m"}, log)
}

func TestManagerEmitCancelled(t *testing.T) {
	m := NewManager(nil)
	var log []string
	require.NoError(t, m.Register(&recordingPlugin{name: "p", events: []string{"E"}, log: &log}))
	require.NoError(t, m.Initialize(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.Emit(ctx, Event{Name: "E"}), context.Canceled)
	assert.Empty(t, log)
}

func TestManagerInitializeError(t *testing.T) {
	m := NewManager(nil)
	var log []string
	require.NoError(t, m.Register(&recordingPlugin{name: "bad", log: &log, initErr: errors.New("no")}))

	err := m.Initialize(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to initialize plugin bad")
	assert.False(t, m.Plugins()[0].Initialized)
}

func TestManagerShutdown(t *testing.T) {
	m := NewManager(nil)
	var log []string
	require.NoError(t, m.Register(&recordingPlugin{name: "a", events: []string{"E"}, log: &log}))
	require.NoError(t, m.Register(&recordingPlugin{name: "b", log: &log, shutdownErr: errors.New("stuck")}))
	require.NoError(t, m.Initialize(context.Background()))

	err := m.Shutdown(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to shutdown plugin b")
	assert.Equal(t, []string{"shutdown:b", "shutdown:a"}, log)

	require.NoError(t, m.Emit(context.Background(), Event{Name: "E"}))
	assert.Equal(t, []string{"shutdown:b", "shutdown:a"}, log)
}

func TestManagerPluginsAndHealth(t *testing.T) {
	m := NewManager(nil)
	var log []string
	require.NoError(t, m.Register(&recordingPlugin{name: "a", events: []string{"Z", "E"}, log: &log}))
	require.NoError(t, m.Initialize(context.Background()))

	infos := m.Plugins()
	require.Len(t, infos, 1)
	assert.Equal(t, "a", infos[0].Name)
	assert.True(t, infos[0].Initialized)
	assert.Equal(t, []string{"E", "Z"}, infos[0].Events)

	health := m.Health()
	assert.Equal(t, HealthStatusHealthy, health["a"].Status)
	assert.WithinDuration(t, time.Now(), health["a"].LastCheck, time.Minute)
}
