package container

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/lawdesk/internal/application/dispatcher"
	"github.com/garyjia/lawdesk/internal/application/port"
	"github.com/garyjia/lawdesk/internal/application/service"
	"github.com/garyjia/lawdesk/internal/config"
	"github.com/garyjia/lawdesk/internal/domain/entity"
	"github.com/garyjia/lawdesk/internal/infrastructure/metrics"
	"github.com/garyjia/lawdesk/internal/infrastructure/persistence/repository"
	"github.com/garyjia/lawdesk/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/lawdesk/pkg/database"
	"github.com/garyjia/lawdesk/pkg/utils"
)

// DatabaseBundle holds database-related components.
type DatabaseBundle struct {
	Conn           *database.DB
	TransactionMgr *sqlite.DB
}

// ProvideDatabase opens the database and applies the embedded migrations.
func ProvideDatabase(cfg config.DatabaseConfig, logger *zap.Logger) (*DatabaseBundle, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	conn, err := database.New(database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, err
	}

	if _, err := database.NewMigrator(conn, logger).Run(database.Migrations()); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &DatabaseBundle{
		Conn:           conn,
		TransactionMgr: sqlite.NewDB(conn.DB, logger),
	}, nil
}

// ProvideRepositories creates all repositories on top of the transaction manager.
func ProvideRepositories(db *sqlite.DB, logger *zap.Logger) (*RepositoryBundle, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return &RepositoryBundle{
		Task:         repository.NewTaskRepository(db, logger),
		Stage:        repository.NewStageRepository(db, logger),
		Activity:     repository.NewActivityRepository(db, logger),
		User:         repository.NewUserRepository(db, logger),
		Notification: repository.NewNotificationRepository(db, logger),
	}, nil
}

// ProvideDispatcher creates the event dispatcher.
func ProvideDispatcher(logger *zap.Logger) (dispatcher.Dispatcher, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return dispatcher.NewDispatcher(
		dispatcher.WithLogger(utils.NewKVLogger(logger, "dispatcher")),
	), nil
}

// ServiceDeps holds dependencies required for creating application services.
type ServiceDeps struct {
	Repos      *RepositoryBundle
	TxManager  port.TransactionManager
	Dispatcher dispatcher.Dispatcher
	Metrics    *metrics.Metrics
	Workflow   config.WorkflowConfig
	Logger     *zap.Logger
}

// ProvideServices creates all application services and subscribes the event
// consumers (notification outbox, metrics) to the dispatcher.
func ProvideServices(deps *ServiceDeps) (*ServiceBundle, error) {
	if deps == nil {
		return nil, fmt.Errorf("service dependencies are required")
	}
	if deps.Repos == nil {
		return nil, fmt.Errorf("repositories are required")
	}
	if deps.TxManager == nil {
		return nil, fmt.Errorf("transaction manager is required")
	}
	if deps.Dispatcher == nil {
		return nil, fmt.Errorf("dispatcher is required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	opts := []service.Option{service.WithDispatcher(deps.Dispatcher)}
	if deps.Metrics != nil {
		opts = append(opts, service.WithRecorder(deps.Metrics))
		deps.Metrics.Register(deps.Dispatcher)
	}

	notifications := service.NewNotificationService(
		deps.Repos.Notification,
		utils.NewKVLogger(deps.Logger, "notifications"),
		opts...,
	)
	notifications.Register(deps.Dispatcher)

	return &ServiceBundle{
		Workflow: service.NewWorkflowService(
			deps.Repos.Task,
			deps.Repos.Stage,
			deps.Repos.Activity,
			deps.Repos.User,
			deps.TxManager,
			service.WorkflowConfig{
				DefaultMainLawyerID:    deps.Workflow.DefaultMainLawyerID,
				RootAdminID:            deps.Workflow.RootAdminID,
				StrictMultipleApproval: deps.Workflow.StrictMultipleApproval,
				LockStripes:            deps.Workflow.LockStripes,
			},
			utils.NewKVLogger(deps.Logger, "workflow"),
			opts...,
		),
		Stages: service.NewStageService(
			deps.Repos.Stage,
			deps.Repos.Task,
			deps.TxManager,
			utils.NewKVLogger(deps.Logger, "stages"),
			opts...,
		),
		Users: service.NewUserService(
			deps.Repos.User,
			deps.TxManager,
			utils.NewKVLogger(deps.Logger, "users"),
			opts...,
		),
		Notifications: notifications,
	}, nil
}

// StageInputs converts seed definitions into stage service input
func StageInputs(defs []config.StageDefinition) []service.StageInput {
	inputs := make([]service.StageInput, 0, len(defs))
	for _, def := range defs {
		active := !def.Inactive
		inputs = append(inputs, service.StageInput{
			Name:         def.Name,
			DisplayOrder: def.DisplayOrder,
			ApprovalType: entity.ApprovalType(def.ApprovalType),
			Description:  def.Description,
			Requirements: def.Requirements,
			Color:        def.Color,
			IsActive:     &active,
		})
	}
	return inputs
}

// UserInputs converts seed definitions into user service input
func UserInputs(defs []config.UserDefinition) []service.CreateUserInput {
	inputs := make([]service.CreateUserInput, 0, len(defs))
	for _, def := range defs {
		inputs = append(inputs, service.CreateUserInput{
			Name:         def.Name,
			Username:     def.Username,
			Email:        def.Email,
			Role:         entity.Role(def.Role),
			IsMainLawyer: def.IsMainLawyer,
			DepartmentID: def.DepartmentID,
		})
	}
	return inputs
}
