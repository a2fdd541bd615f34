// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"customfields/internal/core/tx"
	"customfields/internal/domain/batch"
	"customfields/internal/domain/field"
	"customfields/internal/domain/option"
	"customfields/internal/domain/validation"
	"customfields/internal/domain/value"
	"customfields/internal/infrastructure/http/v1/handlers"
	"customfields/internal/infrastructure/http/v1/middleware"
	"customfields/pkg/logger"
)

// Repositories bundles the store the services run against.
type Repositories struct {
	Fields    field.Repository
	Options   option.Repository
	Values    value.Repository
	TxManager tx.ReadOnlyManager
}

// RouterConfig holds router configuration.
type RouterConfig struct {
	Logger *logger.Logger

	Repos Repositories

	// UniqueScope selects which stored values unique fields compare with.
	UniqueScope value.UniqueScope

	// MaxBatchSize bounds one value submission batch; zero is unbounded.
	MaxBatchSize int

	// Health reports storage readiness; nil means always ready.
	Health        handlers.Pinger
	StorageDriver string
	Version       string
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.Actor())

	healthHandler := handlers.NewHealthHandler(cfg.Health, cfg.StorageDriver, cfg.Version)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	repos := cfg.Repos
	lookup := field.NewLookup(repos.Fields)
	options := option.NewService(option.ServiceConfig{
		Repo:      repos.Options,
		Fields:    lookup,
		TxManager: repos.TxManager,
	})
	fields := field.NewService(field.ServiceConfig{
		Repo:      repos.Fields,
		TxManager: repos.TxManager,
		Options:   options,
	})
	values := value.NewService(repos.Values, repos.TxManager)
	updater := batch.NewUpdater(batch.UpdaterConfig{
		Fields:  lookup,
		Options: options,
		Values:  repos.Values,
		Engine: validation.NewEngine(validation.Config{
			Uniqueness: repos.Values,
			Scope:      cfg.UniqueScope,
		}),
		TxManager: repos.TxManager,
		MaxItems:  cfg.MaxBatchSize,
	})

	base := handlers.NewBaseHandler()
	v1 := router.Group("/api/v1")
	registerFieldRoutes(v1, handlers.NewFieldHandler(base, fields), handlers.NewOptionHandler(base, options))
	registerValueRoutes(v1, handlers.NewValueHandler(base, values, updater))

	return router
}

func registerFieldRoutes(rg *gin.RouterGroup, fh *handlers.FieldHandler, oh *handlers.OptionHandler) {
	entities := rg.Group("/entities/:entityId")
	{
		entities.GET("/fields", fh.List)
		entities.POST("/fields", fh.Create)
		entities.PUT("/fields/order", fh.Reorder)
		entities.GET("/options", oh.ListByEntity)
	}

	fields := rg.Group("/fields/:id")
	{
		fields.GET("", fh.Get)
		fields.GET("/edit", fh.GetForEdit)
		fields.PUT("", fh.Update)
		fields.GET("/options", oh.ListByField)
		fields.POST("/options", oh.Create)
		RegisterLifecycleRoutes(fields, fh)
	}

	options := rg.Group("/options/:id")
	{
		options.PUT("", oh.Update)
		RegisterLifecycleRoutes(options, oh)
	}
}

func registerValueRoutes(rg *gin.RouterGroup, vh *handlers.ValueHandler) {
	owners := rg.Group("/owners/:ownerId/values")
	{
		owners.GET("", vh.List)
		owners.PUT("", vh.Apply)
		owners.GET("/:fieldId", vh.Get)
	}
}
