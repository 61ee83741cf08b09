package providers

import (
	"github.com/rs/zerolog"

	"github.com/km-arc/go-container/framework/config"
	"github.com/km-arc/go-container/framework/container"
	"github.com/km-arc/go-container/framework/logging"
	"github.com/km-arc/go-container/framework/metrics"
	"github.com/km-arc/go-container/framework/routing"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider loads the application configuration from .env and
// binds it into the container as "config".
//
// Bound names:
//   - "config"         → *config.Config
//   - "configuration"  → alias of "config"
//
// Laravel equivalent:
//
//	// Illuminate\Foundation\Bootstrap\LoadConfiguration
//	$app->singleton('config', fn() => new Repository($items));
type ConfigServiceProvider struct {
	container.BaseProvider
	EnvFiles []string
}

func (p *ConfigServiceProvider) Register(app *container.Container) error {
	envFiles := p.EnvFiles
	err := app.Types().Register("config", func() *config.Config {
		return config.Load(envFiles...)
	})
	if err != nil {
		return err
	}
	if err := app.Singleton("config"); err != nil {
		return err
	}
	return app.Alias("config", "configuration")
}

// ── LogServiceProvider ────────────────────────────────────────────────────────

// LogServiceProvider builds the zerolog logger from the "config" binding and
// hands it to the container for resolution diagnostics.
//
// Bound names:
//   - "logger"  → zerolog.Logger
type LogServiceProvider struct {
	container.BaseProvider
}

func (p *LogServiceProvider) Register(app *container.Container) error {
	err := app.Types().Register("logger", func(cfg *config.Config) (zerolog.Logger, error) {
		return logging.New(logging.Config{
			Level:   cfg.Log.Level,
			Format:  cfg.Log.Format,
			Output:  cfg.Log.Output,
			NoColor: cfg.Log.NoColor,
		}, cfg.App.Name)
	})
	if err != nil {
		return err
	}
	return app.Singleton("logger")
}

func (p *LogServiceProvider) Boot(app *container.Container) error {
	log, err := container.Resolve[zerolog.Logger](app, "logger")
	if err != nil {
		return err
	}
	app.SetLogger(log)
	return nil
}

// ── MetricsServiceProvider ────────────────────────────────────────────────────

// MetricsServiceProvider registers the Prometheus collector. When metrics
// are enabled it observes every resolution made by the container.
//
// Bound names:
//   - "metrics"  → *metrics.Collector
type MetricsServiceProvider struct {
	container.BaseProvider
}

func (p *MetricsServiceProvider) Register(app *container.Container) error {
	err := app.Types().Register("metrics", func(cfg *config.Config) *metrics.Collector {
		return metrics.NewCollector(cfg.Metrics.Namespace)
	})
	if err != nil {
		return err
	}
	return app.Singleton("metrics")
}

func (p *MetricsServiceProvider) Boot(app *container.Container) error {
	cfg, err := container.Resolve[*config.Config](app, "config")
	if err != nil {
		return err
	}
	if !cfg.Metrics.Enabled {
		return nil
	}
	m, err := container.Resolve[*metrics.Collector](app, "metrics")
	if err != nil {
		return err
	}
	app.Observe(m)
	return nil
}

// ── RoutingServiceProvider ────────────────────────────────────────────────────

// RoutingServiceProvider registers the HTTP router. Controllers routed with
// ResourceFrom or Action are resolved from the container.
//
// Bound names:
//   - "router"  → *routing.Router
//
// Laravel equivalent:
//
//	// Illuminate\Routing\RoutingServiceProvider
//	$app->singleton('router', fn($app) => new Router($app['events'], $app));
type RoutingServiceProvider struct {
	container.BaseProvider
}

func (p *RoutingServiceProvider) Register(app *container.Container) error {
	err := app.Types().Register("router", newRouter)
	if err != nil {
		return err
	}
	return app.Singleton("router")
}

func newRouter(c *container.Container, cfg *config.Config, log zerolog.Logger) (*routing.Router, error) {
	router := routing.New(
		routing.WithContainer(c),
		routing.WithLogger(log),
		routing.WithDebug(cfg.App.Debug),
	)
	if cfg.Metrics.Enabled {
		m, err := container.Resolve[*metrics.Collector](c, "metrics")
		if err != nil {
			return nil, err
		}
		router.Middleware(m.Middleware())
		router.Get(cfg.Metrics.Path, m.Handler())
	}
	return router, nil
}
