package container

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/garyjia/lawdesk/internal/application/dispatcher"
	"github.com/garyjia/lawdesk/internal/application/port"
	"github.com/garyjia/lawdesk/internal/application/service"
	"github.com/garyjia/lawdesk/internal/config"
	"github.com/garyjia/lawdesk/internal/infrastructure/metrics"
	"github.com/garyjia/lawdesk/internal/infrastructure/persistence/sqlite"
	httpserver "github.com/garyjia/lawdesk/internal/interfaces/http"
	"github.com/garyjia/lawdesk/pkg/database"
	"github.com/garyjia/lawdesk/pkg/utils"
)

// Container manages all application dependencies and lifecycle.
// Components are initialized in dependency order and torn down in reverse.
type Container struct {
	config *config.Config
	logger *zap.Logger

	// Infrastructure - Data
	conn         *database.DB
	db           *sqlite.DB
	repositories *RepositoryBundle

	// Infrastructure - Observability
	metrics *metrics.Metrics

	// Application
	dispatcher dispatcher.Dispatcher
	services   *ServiceBundle

	// Lifecycle
	mu     sync.RWMutex
	ctx    context.Context
	cancel context.CancelFunc
	ready  atomic.Bool
	closed atomic.Bool
}

// RepositoryBundle groups all repositories for convenient access.
type RepositoryBundle struct {
	Task         port.TaskRepository
	Stage        port.StageRepository
	Activity     port.ActivityRepository
	User         port.UserRepository
	Notification port.NotificationRepository
}

// ServiceBundle groups all application services.
type ServiceBundle struct {
	Workflow      service.WorkflowService
	Stages        service.StageService
	Users         service.UserService
	Notifications service.NotificationService
}

// SeedResult reports how many records a seed run created.
type SeedResult struct {
	Stages int
	Users  int
}

// HealthStatus represents the health of all components.
type HealthStatus struct {
	Overall    bool                       `json:"overall"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth represents health of a single component.
type ComponentHealth struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// NewContainer creates a new container from configuration.
// It does not initialize components - call Start() to initialize.
func NewContainer(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Container{
		config: cfg,
		logger: logger,
	}, nil
}

// Start initializes all components.
// Components are initialized in dependency order:
// 1. Database, migrations and repositories
// 2. Event dispatcher
// 3. Metrics
// 4. Application services and event subscribers
// 5. Seed data, when the configured seed file exists
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container has been closed")
	}

	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}

	c.ctx, c.cancel = context.WithCancel(ctx)
	c.logger.Info("Starting container initialization")

	// Step 1: Initialize database and repositories
	if err := c.initDatabase(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	c.logger.Info("Database initialized", zap.String("path", c.config.Database.Path))

	// Step 2: Initialize dispatcher
	disp, err := ProvideDispatcher(c.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize dispatcher: %w", err)
	}
	c.dispatcher = disp

	// Step 3: Initialize metrics
	c.metrics = metrics.New()

	// Step 4: Initialize application services
	if err := c.initServices(); err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	c.logger.Info("Application services initialized")

	// Step 5: Seed catalog and directory
	if err := c.seedFromFile(c.ctx); err != nil {
		return fmt.Errorf("failed to seed data: %w", err)
	}

	c.ready.Store(true)
	c.logger.Info("Container started successfully")

	return nil
}

// Close gracefully shuts down all components in reverse order.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container already closed")
	}

	c.logger.Info("Closing container")

	var errs []error

	if c.cancel != nil {
		c.cancel()
	}

	// Step 1: Close dispatcher so no handler runs against a closed database
	if c.dispatcher != nil {
		if err := c.dispatcher.Close(); err != nil {
			c.logger.Error("Failed to close dispatcher", zap.Error(err))
			errs = append(errs, fmt.Errorf("close dispatcher: %w", err))
		} else {
			c.logger.Info("Dispatcher closed")
		}
	}

	// Step 2: Close database
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			c.logger.Error("Failed to close database", zap.Error(err))
			errs = append(errs, fmt.Errorf("close database: %w", err))
		} else {
			c.logger.Info("Database closed")
		}
	}

	c.closed.Store(true)
	c.ready.Store(false)

	if len(errs) > 0 {
		c.logger.Error("Container closed with errors", zap.Int("error_count", len(errs)))
		return errors.Join(errs...)
	}

	c.logger.Info("Container closed successfully")
	return nil
}

// Ready returns true when all components are initialized.
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// Health returns health status of all components.
func (c *Container) Health() *HealthStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	status := &HealthStatus{
		Overall:    true,
		Components: make(map[string]ComponentHealth),
	}

	check := func(name string, initialized bool, probe func() error) {
		if !initialized {
			status.Components[name] = ComponentHealth{Healthy: false, Message: "not initialized"}
			status.Overall = false
			return
		}
		if probe != nil {
			if err := probe(); err != nil {
				status.Components[name] = ComponentHealth{Healthy: false, Message: fmt.Sprintf("ping failed: %v", err)}
				status.Overall = false
				return
			}
		}
		status.Components[name] = ComponentHealth{Healthy: true}
	}

	var ping func() error
	if c.conn != nil {
		ping = c.conn.Ping
	}
	check("database", c.conn != nil, ping)
	check("repositories", c.repositories != nil, nil)
	check("dispatcher", c.dispatcher != nil, nil)
	check("services", c.services != nil, nil)

	return status
}

// Seed loads stage and user definitions. Each part is skipped when its
// table already has rows.
func (c *Container) Seed(ctx context.Context, seed *config.Seed) (*SeedResult, error) {
	if c.services == nil {
		return nil, fmt.Errorf("container not started")
	}
	if seed == nil {
		return &SeedResult{}, nil
	}

	result := &SeedResult{}
	var err error
	if len(seed.Stages) > 0 {
		result.Stages, err = c.services.Stages.SeedStages(ctx, StageInputs(seed.Stages))
		if err != nil {
			return nil, fmt.Errorf("seed stages: %w", err)
		}
	}
	if len(seed.Users) > 0 {
		result.Users, err = c.services.Users.SeedUsers(ctx, UserInputs(seed.Users))
		if err != nil {
			return nil, fmt.Errorf("seed users: %w", err)
		}
	}

	c.logger.Info("Seed applied",
		zap.Int("stages_created", result.Stages),
		zap.Int("users_created", result.Users))
	return result, nil
}

// HTTPServer builds the HTTP adapter over the started services.
func (c *Container) HTTPServer() (*httpserver.Server, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.ready.Load() {
		return nil, fmt.Errorf("container not started")
	}

	srv := c.config.Server
	return httpserver.NewServer(
		httpserver.ServerConfig{
			Host:            srv.Host,
			Port:            srv.Port,
			Mode:            srv.Mode,
			ReadTimeout:     srv.ReadTimeout,
			WriteTimeout:    srv.WriteTimeout,
			ShutdownTimeout: srv.ShutdownTimeout,
		},
		httpserver.Services{
			Workflow:      c.services.Workflow,
			Stages:        c.services.Stages,
			Users:         c.services.Users,
			Notifications: c.services.Notifications,
		},
		c.metrics.Handler(),
		utils.NewKVLogger(c.logger, "http"),
	), nil
}

// Services returns the application services.
func (c *Container) Services() *ServiceBundle {
	return c.services
}

// Repositories returns the repository bundle.
func (c *Container) Repositories() *RepositoryBundle {
	return c.repositories
}

// Dispatcher returns the event dispatcher.
func (c *Container) Dispatcher() dispatcher.Dispatcher {
	return c.dispatcher
}

// Metrics returns the Prometheus collectors.
func (c *Container) Metrics() *metrics.Metrics {
	return c.metrics
}

// Config returns the container configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the container logger.
func (c *Container) Logger() *zap.Logger {
	return c.logger
}

// initDatabase initializes the database and all repositories using providers.
func (c *Container) initDatabase() error {
	dbBundle, err := ProvideDatabase(c.config.Database, c.logger)
	if err != nil {
		return err
	}

	c.conn = dbBundle.Conn
	c.db = dbBundle.TransactionMgr

	repos, err := ProvideRepositories(c.db, c.logger)
	if err != nil {
		_ = c.conn.Close()
		return err
	}

	c.repositories = repos
	return nil
}

// initServices initializes all application services using providers.
func (c *Container) initServices() error {
	services, err := ProvideServices(&ServiceDeps{
		Repos:      c.repositories,
		TxManager:  c.db,
		Dispatcher: c.dispatcher,
		Metrics:    c.metrics,
		Workflow:   c.config.Workflow,
		Logger:     c.logger,
	})
	if err != nil {
		return err
	}

	c.services = services
	return nil
}

func (c *Container) seedFromFile(ctx context.Context) error {
	path := c.config.Workflow.SeedFile
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		c.logger.Info("Seed file not found, skipping", zap.String("path", path))
		return nil
	}

	seed, err := config.LoadSeed(path)
	if err != nil {
		return err
	}
	_, err = c.Seed(ctx, seed)
	return err
}
