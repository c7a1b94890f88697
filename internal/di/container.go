package di

import (
	"github.com/eventlane/admission-service/internal/handler"
	"github.com/eventlane/admission-service/internal/repository"
	"github.com/eventlane/admission-service/internal/service"
	"github.com/eventlane/admission-service/pkg/database"
	"github.com/eventlane/admission-service/pkg/redis"
)

// Container holds all dependencies for the admission service
type Container struct {
	// Infrastructure
	DB    *database.PostgresDB
	Redis *redis.Client

	// Repositories
	RequestLedger repository.RequestLedger
	EventLookup   repository.EventLookup

	// Publishers
	RequestPublisher service.RequestPublisher

	// Services
	AdmissionService service.AdmissionService

	// Handlers
	HealthHandler  *handler.HealthHandler
	RequestHandler *handler.RequestHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	DB               *database.PostgresDB
	Redis            *redis.Client
	RequestLedger    repository.RequestLedger
	EventLookup      repository.EventLookup
	RequestPublisher service.RequestPublisher
	ServiceConfig    *service.AdmissionServiceConfig
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		DB:               cfg.DB,
		Redis:            cfg.Redis,
		RequestLedger:    cfg.RequestLedger,
		EventLookup:      cfg.EventLookup,
		RequestPublisher: cfg.RequestPublisher,
	}

	c.AdmissionService = service.NewAdmissionService(
		c.RequestLedger,
		c.EventLookup,
		c.RequestPublisher,
		cfg.ServiceConfig,
	)

	c.HealthHandler = handler.NewHealthHandler(c.DB, c.Redis)
	c.RequestHandler = handler.NewRequestHandler(c.AdmissionService)

	return c
}
