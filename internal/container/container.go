// Package container provides dependency injection for the pricelist-import
// application. It centralizes the creation and wiring of all application
// dependencies, making them explicit and testable.
package container

import (
	"context"
	"fmt"
	"sync"

	"fjacquet/pricelist-import/internal/batch"
	"fjacquet/pricelist-import/internal/config"
	"fjacquet/pricelist-import/internal/factory"
	"fjacquet/pricelist-import/internal/logging"
	"fjacquet/pricelist-import/internal/models"
	"fjacquet/pricelist-import/internal/parser"
	"fjacquet/pricelist-import/internal/pricelist"
	"fjacquet/pricelist-import/internal/store"
)

// Container holds all application dependencies and provides methods to access them.
//
// The price list repository is opened on first use, so commands that never
// sync do not need a reachable store.
type Container struct {
	logger     logging.Logger
	config     *config.Config
	templates  store.TemplateProvider
	aggregator *batch.Aggregator

	mu    sync.Mutex
	repo  pricelist.Repository
	mongo *pricelist.MongoConnection
}

// NewContainer creates and wires all application dependencies.
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	logger := logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)
	return NewContainerWithLogger(cfg, logger)
}

// NewContainerWithLogger is NewContainer with an explicit logger.
func NewContainerWithLogger(cfg *config.Config, logger logging.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	templates := store.NewTemplateStore(cfg.Templates.File, logger)

	logger.Debug("Container initialized",
		logging.F(logging.FieldTemplate, cfg.Templates.File),
		logging.F("store_driver", cfg.Store.Driver))

	return &Container{
		logger:     logger,
		config:     cfg,
		templates:  templates,
		aggregator: batch.NewAggregator(logger),
	}, nil
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetTemplates returns the template store.
func (c *Container) GetTemplates() store.TemplateProvider {
	return c.templates
}

// GetAggregator returns the batch aggregator.
func (c *Container) GetAggregator() *batch.Aggregator {
	return c.aggregator
}

// GetParser resolves template references in cfg and returns a parser for it.
func (c *Container) GetParser(cfg models.ParserConfig) (parser.FullParser, error) {
	resolved, err := c.templates.Resolve(cfg)
	if err != nil {
		return nil, err
	}
	return factory.GetParser(resolved, c.logger)
}

// ParseFile resolves cfg and parses the file at path.
func (c *Container) ParseFile(cfg models.ParserConfig, path string) (*models.ParseResult, error) {
	resolved, err := c.templates.Resolve(cfg)
	if err != nil {
		return nil, err
	}
	return factory.ParseFile(resolved, path, c.logger)
}

// NewBatchProcessor returns a processor parsing files with cfg, using the
// configured number of workers when workers is not positive.
func (c *Container) NewBatchProcessor(cfg models.ParserConfig, workers int) (*batch.Processor, error) {
	resolved, err := c.templates.Resolve(cfg)
	if err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = c.config.Import.Workers
	}
	parse := func(path string) (*models.ParseResult, error) {
		return factory.ParseFile(resolved, path, c.logger)
	}
	return batch.NewProcessor(parse, workers, c.logger), nil
}

// GetRepository opens the configured price list repository.
func (c *Container) GetRepository(ctx context.Context) (pricelist.Repository, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.repo != nil {
		return c.repo, nil
	}

	switch c.config.Store.Driver {
	case config.StoreDriverMongo:
		conn, err := pricelist.ConnectMongo(ctx, c.config.Store.MongoURI, c.config.Store.MongoDatabase, c.config.StoreTimeout())
		if err != nil {
			return nil, err
		}
		repo := pricelist.NewMongoRepository(conn.Database)
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = conn.Close()
			return nil, err
		}
		c.mongo = conn
		c.repo = repo
		c.logger.Info("Connected to MongoDB", logging.F("database", c.config.Store.MongoDatabase))
	case config.StoreDriverYAML, "":
		c.repo = pricelist.NewYAMLRepository(c.config.Store.File, c.logger)
	default:
		return nil, fmt.Errorf("unknown store driver: %s", c.config.Store.Driver)
	}
	return c.repo, nil
}

// SetRepository replaces the price list repository.
func (c *Container) SetRepository(repo pricelist.Repository) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.repo = repo
}

// SetTemplates replaces the template store.
func (c *Container) SetTemplates(templates store.TemplateProvider) {
	c.templates = templates
}

// GetSynchronizer returns a Synchronizer on the configured repository.
func (c *Container) GetSynchronizer(ctx context.Context) (*pricelist.Synchronizer, error) {
	repo, err := c.GetRepository(ctx)
	if err != nil {
		return nil, err
	}
	return pricelist.NewSynchronizer(repo, c.logger), nil
}

// Close releases the store connection, if any.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mongo != nil {
		if err := c.mongo.Close(); err != nil {
			return err
		}
		c.mongo = nil
	}
	c.logger.Debug("Container closed")
	return nil
}
