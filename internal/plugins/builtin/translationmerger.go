// Package builtin contains the plugins shipped with transmerge.
package builtin

import (
	"context"
	"sync"
	"time"

	"github.com/conneroisu/transmerge/internal/config"
	"github.com/conneroisu/transmerge/internal/logging"
	"github.com/conneroisu/transmerge/internal/plugins"
	"github.com/conneroisu/transmerge/internal/services"
)

// Runner runs one merge.
type Runner interface {
	Run(ctx context.Context, opts services.MergeOptions) (*services.MergeResult, error)
}

// TranslationMergerPlugin merges translation fragments every time a
// module's assets have been staged.
type TranslationMergerPlugin struct {
	config *config.Config
	store  services.Storage
	dryRun bool

	runner Runner
	logger logging.Logger

	mu         sync.RWMutex
	runs       int
	lastResult *services.MergeResult
	lastErr    error
	lastRun    time.Time
}

// Option configures the plugin.
type Option func(*TranslationMergerPlugin)

// WithDryRun renders merged output without writing it.
func WithDryRun(dryRun bool) Option {
	return func(p *TranslationMergerPlugin) { p.dryRun = dryRun }
}

// WithStorage replaces the local file store.
func WithStorage(store services.Storage) Option {
	return func(p *TranslationMergerPlugin) { p.store = store }
}

// WithRunner replaces the merge service.
func WithRunner(runner Runner) Option {
	return func(p *TranslationMergerPlugin) { p.runner = runner }
}

// NewTranslationMergerPlugin creates the plugin. cfg may be nil, in which
// case every triggered run fails with a configuration error.
func NewTranslationMergerPlugin(cfg *config.Config, opts ...Option) *TranslationMergerPlugin {
	p := &TranslationMergerPlugin{config: cfg}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the plugin name
func (p *TranslationMergerPlugin) Name() string {
	return "translation-merger"
}

// Version returns the plugin version
func (p *TranslationMergerPlugin) Version() string {
	return "1.0.0"
}

// Description returns the plugin description
func (p *TranslationMergerPlugin) Description() string {
	return "Merges per-module translation files into one file per locale"
}

// Initialize subscribes to the asset staging event.
func (p *TranslationMergerPlugin) Initialize(ctx context.Context, host plugins.Host) error {
	p.logger = host.Logger()
	if p.runner == nil {
		p.runner = services.NewMergeService(p.config, p.store, p.logger)
	}
	host.On(plugins.EventAssetsBaseStylesCopied, p.handle)
	return nil
}

func (p *TranslationMergerPlugin) handle(ctx context.Context, event plugins.Event) error {
	module := event.Module.DisplayName()

	result, err := p.runner.Run(ctx, services.MergeOptions{Module: module, DryRun: p.dryRun})

	p.mu.Lock()
	p.runs++
	p.lastRun = time.Now()
	p.lastErr = err
	if err == nil {
		p.lastResult = result
	}
	p.mu.Unlock()

	if err != nil {
		p.logger.Error(ctx, err, "Translation merge failed", "module", module)
		return err
	}
	return nil
}

// LastResult returns the result of the most recent successful run.
func (p *TranslationMergerPlugin) LastResult() *services.MergeResult {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastResult
}

// Shutdown shuts down the plugin
func (p *TranslationMergerPlugin) Shutdown(ctx context.Context) error {
	return nil
}

// Health returns the plugin health
func (p *TranslationMergerPlugin) Health() plugins.PluginHealth {
	p.mu.RLock()
	defer p.mu.RUnlock()

	health := plugins.PluginHealth{
		Status:    plugins.HealthStatusHealthy,
		LastCheck: time.Now(),
		Metrics: map[string]interface{}{
			"runs": p.runs,
		},
	}
	if p.runs == 0 {
		health.Status = plugins.HealthStatusUnknown
	}
	if p.lastErr != nil {
		health.Status = plugins.HealthStatusUnhealthy
		health.Error = p.lastErr.Error()
	}
	if p.lastResult != nil {
		health.Metrics["locales"] = len(p.lastResult.Locales)
		health.Metrics["last_run"] = p.lastRun
	}
	return health
}
