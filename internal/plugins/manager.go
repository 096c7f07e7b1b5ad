package plugins

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/conneroisu/transmerge/internal/logging"
)

type subscription struct {
	plugin  string
	handler EventHandler
}

// Manager manages the lifecycle of plugins and dispatches events to them
type Manager struct {
	plugins     []Plugin
	byName      map[string]Plugin
	initialized map[string]bool
	handlers    map[string][]subscription
	logger      logging.Logger
	mu          sync.RWMutex
}

// NewManager creates a new plugin manager. A nil logger discards output.
func NewManager(logger logging.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Manager{
		byName:      make(map[string]Plugin),
		initialized: make(map[string]bool),
		handlers:    make(map[string][]subscription),
		logger:      logger.WithComponent("plugins"),
	}
}

// Register adds a plugin. Names must be unique.
func (m *Manager) Register(plugin Plugin) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	name := plugin.Name()
	if _, exists := m.byName[name]; exists {
		return fmt.Errorf("plugin %s already registered", name)
	}

	m.plugins = append(m.plugins, plugin)
	m.byName[name] = plugin
	return nil
}

// Initialize initializes every registered plugin in registration order.
// Plugins that are already initialized are skipped.
func (m *Manager) Initialize(ctx context.Context) error {
	m.mu.RLock()
	pending := make([]Plugin, 0, len(m.plugins))
	for _, p := range m.plugins {
		if !m.initialized[p.Name()] {
			pending = append(pending, p)
		}
	}
	m.mu.RUnlock()

	for _, p := range pending {
		if err := p.Initialize(ctx, &pluginHost{manager: m, plugin: p.Name()}); err != nil {
			return fmt.Errorf("failed to initialize plugin %s: %w", p.Name(), err)
		}

		m.mu.Lock()
		m.initialized[p.Name()] = true
		m.mu.Unlock()

		m.logger.Debug(ctx, "Plugin initialized", "plugin", p.Name(), "version", p.Version())
	}
	return nil
}

// Emit delivers event to its subscribers one after another. A zero
// timestamp is set to now. The first handler error aborts delivery.
func (m *Manager) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	m.mu.RLock()
	subs := append([]subscription(nil), m.handlers[event.Name]...)
	m.mu.RUnlock()

	m.logger.Debug(ctx, "Emitting event",
		"event", event.Name,
		"module", event.Module.DisplayName(),
		"subscribers", len(subs),
	)

	for _, sub := range subs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := sub.handler(ctx, event); err != nil {
			return fmt.Errorf("plugin %s failed on %s: %w", sub.plugin, event.Name, err)
		}
	}
	return nil
}

// Shutdown shuts plugins down in reverse registration order and reports
// every failure.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	plugins := append([]Plugin(nil), m.plugins...)
	m.handlers = make(map[string][]subscription)
	m.initialized = make(map[string]bool)
	m.mu.Unlock()

	var errs []error
	for i := len(plugins) - 1; i >= 0; i-- {
		if err := plugins[i].Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown plugin %s: %w", plugins[i].Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Plugins lists registered plugins in registration order.
func (m *Manager) Plugins() []PluginInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	infos := make([]PluginInfo, 0, len(m.plugins))
	for _, p := range m.plugins {
		var events []string
		for name, subs := range m.handlers {
			for _, sub := range subs {
				if sub.plugin == p.Name() {
					events = append(events, name)
					break
				}
			}
		}
		sort.Strings(events)

		infos = append(infos, PluginInfo{
			Name:        p.Name(),
			Version:     p.Version(),
			Description: p.Description(),
			Initialized: m.initialized[p.Name()],
			Events:      events,
			Health:      p.Health(),
		})
	}
	return infos
}

// Health reports the current health of every plugin.
func (m *Manager) Health() map[string]PluginHealth {
	m.mu.RLock()
	defer m.mu.RUnlock()

	health := make(map[string]PluginHealth, len(m.plugins))
	for _, p := range m.plugins {
		h := p.Health()
		h.LastCheck = time.Now()
		health[p.Name()] = h
	}
	return health
}

func (m *Manager) subscribe(plugin, event string, handler EventHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[event] = append(m.handlers[event], subscription{plugin: plugin, handler: handler})
}

type pluginHost struct {
	manager *Manager
	plugin  string
}

func (h *pluginHost) On(event string, handler EventHandler) {
	h.manager.subscribe(h.plugin, event, handler)
}

func (h *pluginHost) Logger() logging.Logger {
	return h.manager.logger.WithComponent(h.plugin)
}
