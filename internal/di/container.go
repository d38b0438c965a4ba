// Package di wires ngvet's services together. The container builds
// each service lazily, hands the same instance to every caller, and
// tears everything down on shutdown.
package di

import (
	"context"
	"sync"

	"github.com/conneroisu/ngvet/internal/config"
	"github.com/conneroisu/ngvet/internal/engine"
	"github.com/conneroisu/ngvet/internal/logging"
	"github.com/conneroisu/ngvet/internal/registry"
	"github.com/conneroisu/ngvet/internal/server"
	"github.com/conneroisu/ngvet/internal/walker"
	"github.com/conneroisu/ngvet/internal/watcher"
)

// Container owns the long-lived services a command may need.
type Container struct {
	mu       sync.Mutex
	config   *config.Config
	logger   logging.Logger
	registry *registry.SourceRegistry
	walker   *walker.SourceWalker
	engine   *engine.Engine
	watcher  *watcher.FileWatcher
	server   *server.DashboardServer
}

// NewContainer creates a container around a loaded configuration.
func NewContainer(cfg *config.Config, logger logging.Logger) *Container {
	return &Container{
		config: cfg,
		logger: logger,
	}
}

// Config returns the loaded configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the root logger.
func (c *Container) Logger() logging.Logger {
	return c.logger
}

// Registry returns the shared source registry.
func (c *Container) Registry() *registry.SourceRegistry {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.registry == nil {
		c.registry = registry.NewSourceRegistry()
	}
	return c.registry
}

// Walker returns the source walker bound to the registry.
func (c *Container) Walker() *walker.SourceWalker {
	reg := c.Registry()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.walker == nil {
		c.walker = walker.NewSourceWalker(reg, walker.Options{
			Excludes: c.config.Paths.Exclude,
		})
	}
	return c.walker
}

// Engine returns the rule engine configured from the loaded config.
func (c *Container) Engine() (*engine.Engine, error) {
	reg := c.Registry()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.engine == nil {
		eng, err := engine.New(reg, c.logger, engine.Config{
			Severities: c.config.SeverityOverrides(),
			Options:    c.config.RuleOptions(),
		})
		if err != nil {
			return nil, err
		}
		c.engine = eng
	}
	return c.engine, nil
}

// Watcher returns the debounced file watcher.
func (c *Container) Watcher() (*watcher.FileWatcher, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.watcher == nil {
		fw, err := watcher.NewFileWatcher(c.config.Watch.Debounce, c.logger)
		if err != nil {
			return nil, err
		}
		c.watcher = fw
	}
	return c.watcher, nil
}

// Server returns the dashboard server.
func (c *Container) Server() *server.DashboardServer {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.server == nil {
		c.server = server.New(c.config, c.logger)
	}
	return c.server
}

// Shutdown stops every service the container created. Failures are
// logged and the first error is returned.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	fw := c.watcher
	srv := c.server
	sw := c.walker
	c.mu.Unlock()

	var firstErr error

	if fw != nil {
		if err := fw.Stop(); err != nil {
			c.logger.Error(ctx, err, "Failed to stop file watcher")
			firstErr = err
		}
	}

	if srv != nil {
		if err := srv.Shutdown(ctx); err != nil {
			c.logger.Error(ctx, err, "Failed to shut down dashboard")
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	if sw != nil {
		if err := sw.Close(); err != nil {
			c.logger.Error(ctx, err, "Failed to close walker")
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}
