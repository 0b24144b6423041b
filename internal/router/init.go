package router

import (
	appuser "github.com/oksasatya/go-user-orders-api/internal/application"
	"github.com/oksasatya/go-user-orders-api/internal/container"
	repouser "github.com/oksasatya/go-user-orders-api/internal/domain/repository"
	"github.com/oksasatya/go-user-orders-api/internal/infrastructure/memory"
	mongoinfra "github.com/oksasatya/go-user-orders-api/internal/infrastructure/mongodb"
	handlers "github.com/oksasatya/go-user-orders-api/internal/interface/http"
	"github.com/oksasatya/go-user-orders-api/internal/interface/middleware"
	"github.com/oksasatya/go-user-orders-api/internal/router/modules"
	"github.com/oksasatya/go-user-orders-api/pkg/helpers"
	mailtpl "github.com/oksasatya/go-user-orders-api/pkg/mailer/templates"
	"github.com/oksasatya/go-user-orders-api/pkg/validation"
)

type UserModuleDeps struct {
	Repo    repouser.UserRepository
	Service *appuser.Service
	Handler *handlers.UserHandler
}

// NewUserRepository picks the store from STORE_DRIVER; it falls back to the
// in-memory store when no MongoDB database has been registered.
func NewUserRepository() repouser.UserRepository {
	db := container.GetMongoDB()
	if container.GetConfig().StoreDriver == "memory" || db == nil {
		return memory.NewUserRepository()
	}
	return mongoinfra.NewUserRepository(db.Collection(container.GetConfig().MongoUsersCollection))
}

// BuildUserService wires the user service from the container singletons.
func BuildUserService(repo repouser.UserRepository) *appuser.Service {
	cfg := container.GetConfig()

	// Keep the interface nil when RabbitMQ is not configured.
	var pub appuser.JobPublisher
	if p := container.GetRabbitPub(); p != nil {
		pub = p
	}

	brand := mailtpl.Brand{
		AppName:        cfg.AppName,
		CompanyName:    cfg.CompanyName,
		CompanyAddress: cfg.CompanyAddress,
		LogoURL:        cfg.LogoURL,
		SupportURL:     cfg.SupportURL,
		PrivacyURL:     cfg.PrivacyURL,
		UnsubscribeURL: cfg.UnsubscribeURL,
	}

	return appuser.NewService(
		repo,
		helpers.NewHasher(cfg.BcryptCost),
		validation.New(),
		container.GetLogger(),
		container.GetES(),
		cfg.ESUsersIndex,
		pub,
		brand,
	)
}

func buildUserDeps() UserModuleDeps {
	repo := NewUserRepository()
	service := BuildUserService(repo)
	handler := handlers.NewUserHandler(service, container.GetLogger())

	return UserModuleDeps{
		Repo:    repo,
		Service: service,
		Handler: handler,
	}
}

// InitModules builds the modules from the container singletons and queues them on r.
// It fails on an invalid RATE_LIMIT_EXEMPT_CIDRS entry.
func InitModules(r *Registry) error {
	cfg := container.GetConfig()
	exempt, err := middleware.ExemptCIDRs(cfg.RateLimitExemptCIDRs())
	if err != nil {
		return err
	}

	userDeps := buildUserDeps()
	r.Add(modules.NewUserModule(userDeps.Handler, container.GetRedis(), cfg.RateLimitPerMinute, exempt))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(container.GetRedis()))
	}
	return nil
}
