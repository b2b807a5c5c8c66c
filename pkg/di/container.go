package di

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"taskmanager-api/application/serviceimpl"
	"taskmanager-api/domain/ports"
	"taskmanager-api/domain/repositories"
	"taskmanager-api/domain/services"
	natspkg "taskmanager-api/infrastructure/nats"
	"taskmanager-api/infrastructure/postgres"
	redispkg "taskmanager-api/infrastructure/redis"
	"taskmanager-api/infrastructure/sqlite"
	"taskmanager-api/interfaces/api/handlers"
	"taskmanager-api/interfaces/api/middleware"
	"taskmanager-api/pkg/config"
	"taskmanager-api/pkg/logger"
	"taskmanager-api/pkg/scheduler"
)

const (
	rateLimitSweepJob  = "rate-limiter-sweep"
	rateLimitSweepCron = "* * * * *"
	rateLimitMaxIdle   = 3 * time.Minute
)

type Container struct {
	// Configuration
	Config *config.Config

	// Infrastructure
	DB             *gorm.DB
	RedisClient    *redispkg.Client // Redis สำหรับ cache task (optional, nil ถ้าไม่ได้ตั้งค่า)
	NATSClient     *natspkg.Client  // NATS + JetStream สำหรับ task events (optional)
	TaskCache      ports.TaskCachePort
	TaskEvents     ports.TaskEventPublisherPort
	RateLimiter    *middleware.IPRateLimiter
	EventScheduler scheduler.EventScheduler

	// Repositories
	UserRepository repositories.UserRepository
	TaskRepository repositories.TaskRepository

	// Services
	UserService services.UserService
	TaskService services.TaskService
}

func NewContainer() *Container {
	return &Container{}
}

func (c *Container) Initialize() error {
	if err := c.initConfig(); err != nil {
		return err
	}

	if err := c.initLogger(); err != nil {
		return err
	}

	if err := c.initInfrastructure(); err != nil {
		return err
	}

	if err := c.initRepositories(); err != nil {
		return err
	}

	if err := c.initServices(); err != nil {
		return err
	}

	if err := c.initScheduler(); err != nil {
		return err
	}

	return nil
}

func (c *Container) initConfig() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	c.Config = cfg
	return nil
}

func (c *Container) initLogger() error {
	logConfig := logger.Config{
		Level:      c.Config.Log.Level,
		Format:     c.Config.Log.Format,
		Output:     c.Config.Log.Output,
		FilePath:   c.Config.Log.FilePath,
		MaxSize:    c.Config.Log.MaxSize,
		MaxBackups: c.Config.Log.MaxBackups,
		MaxAge:     c.Config.Log.MaxAge,
		Compress:   c.Config.Log.Compress,
	}

	if err := logger.Init(logConfig); err != nil {
		return err
	}

	logger.Info("Logger initialized",
		"level", c.Config.Log.Level,
		"format", c.Config.Log.Format,
		"output", c.Config.Log.Output,
	)
	return nil
}

func (c *Container) initInfrastructure() error {
	if err := c.initDatabase(); err != nil {
		return err
	}

	// Redis is optional; without it every task read goes to the database.
	c.TaskCache = redispkg.NewNoopTaskCache()
	if c.Config.Redis.URL != "" {
		redisClient, err := redispkg.NewClient(&c.Config.Redis)
		if err != nil {
			logger.Warn("Redis client initialization failed (cache disabled)", "error", err)
		} else {
			c.RedisClient = redisClient
			c.TaskCache = redispkg.NewTaskCache(redisClient, "", c.Config.Redis.TaskTTL)
		}
	}

	// NATS is optional; without it lifecycle events are dropped.
	c.TaskEvents = natspkg.NewNoopPublisher()
	if c.Config.NATS.URL != "" {
		natsClient, err := natspkg.NewClient(natspkg.ClientConfig{URL: c.Config.NATS.URL})
		if err != nil {
			logger.Warn("NATS client initialization failed (events disabled)", "error", err)
		} else {
			c.NATSClient = natsClient
			c.TaskEvents = natspkg.NewPublisher(natsClient)
		}
	}

	if c.Config.RateLimit.Enabled {
		c.RateLimiter = middleware.NewIPRateLimiter(c.Config.RateLimit.RPS, c.Config.RateLimit.Burst)
	}

	return nil
}

func (c *Container) initDatabase() error {
	dbCfg := c.Config.Database

	if dbCfg.Driver == "sqlite" {
		db, err := sqlite.NewDatabase(dbCfg.SQLitePath, dbCfg.LogSQL)
		if err != nil {
			return err
		}
		c.DB = db
		logger.Info("Database connected", "driver", "sqlite", "path", dbCfg.SQLitePath)
		return nil
	}

	db, err := postgres.NewDatabase(postgres.DatabaseConfig{
		Host:     dbCfg.Host,
		Port:     dbCfg.Port,
		User:     dbCfg.User,
		Password: dbCfg.Password,
		DBName:   dbCfg.DBName,
		SSLMode:  dbCfg.SSLMode,
		LogSQL:   dbCfg.LogSQL,
	})
	if err != nil {
		return err
	}
	c.DB = db
	logger.Info("Database connected", "driver", "postgres", "host", dbCfg.Host, "db", dbCfg.DBName)

	if err := postgres.Migrate(db); err != nil {
		return err
	}
	logger.Info("Database migrated")
	return nil
}

func (c *Container) initRepositories() error {
	c.UserRepository = postgres.NewUserRepository(c.DB)
	c.TaskRepository = postgres.NewTaskRepository(c.DB)
	return nil
}

func (c *Container) initServices() error {
	c.UserService = serviceimpl.NewUserService(c.UserRepository, c.TaskCache, serviceimpl.TokenSettings{
		Secret:     c.Config.JWT.Secret,
		AccessTTL:  c.Config.JWT.AccessTTL,
		RefreshTTL: c.Config.JWT.RefreshTTL,
	})
	c.TaskService = serviceimpl.NewTaskService(
		c.TaskRepository,
		c.TaskCache,
		c.TaskEvents,
		c.Config.Pagination.DefaultPageSize,
		c.Config.Pagination.MaxPageSize,
	)
	logger.Info("Services initialized")
	return nil
}

func (c *Container) initScheduler() error {
	c.EventScheduler = scheduler.NewEventScheduler()

	if c.RateLimiter != nil {
		limiter := c.RateLimiter
		err := c.EventScheduler.AddJob(rateLimitSweepJob, rateLimitSweepCron, func() {
			if removed := limiter.Sweep(rateLimitMaxIdle); removed > 0 {
				logger.Debug("Rate limiter swept", "removed", removed, "remaining", limiter.Len())
			}
		})
		if err != nil {
			return err
		}
	}

	c.EventScheduler.Start()
	return nil
}

// HealthChecks probes every backing service the container opened.
func (c *Container) HealthChecks() map[string]handlers.HealthCheck {
	checks := map[string]handlers.HealthCheck{
		"database": func(ctx context.Context) error {
			sqlDB, err := c.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if c.RedisClient != nil {
		checks["redis"] = c.RedisClient.Ping
	}
	if c.NATSClient != nil {
		client := c.NATSClient
		checks["nats"] = func(context.Context) error {
			if !client.IsConnected() {
				return errors.New("not connected")
			}
			return nil
		}
	}
	return checks
}

func (c *Container) Cleanup() error {
	logger.Info("Starting cleanup...")

	if c.EventScheduler != nil && c.EventScheduler.IsRunning() {
		c.EventScheduler.Stop()
	}

	if c.NATSClient != nil {
		if err := c.NATSClient.Close(); err != nil {
			logger.Warn("Failed to close NATS connection", "error", err)
		}
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			logger.Warn("Failed to close Redis connection", "error", err)
		} else {
			logger.Info("Redis connection closed")
		}
	}

	if c.DB != nil {
		sqlDB, err := c.DB.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				logger.Warn("Failed to close database connection", "error", err)
			} else {
				logger.Info("Database connection closed")
			}
		}
	}

	logger.Info("Cleanup completed")
	return nil
}

func (c *Container) GetConfig() *config.Config {
	return c.Config
}

func (c *Container) GetHandlerServices() *handlers.Services {
	return &handlers.Services{
		UserService:  c.UserService,
		TaskService:  c.TaskService,
		HealthChecks: c.HealthChecks(),
	}
}
