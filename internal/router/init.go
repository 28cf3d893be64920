package router

import (
	"github.com/oksasatya/go-user-accounts/internal/application"
	"github.com/oksasatya/go-user-accounts/internal/container"
	"github.com/oksasatya/go-user-accounts/internal/domain/repository"
	pginfra "github.com/oksasatya/go-user-accounts/internal/infrastructure/postgres"
	handlers "github.com/oksasatya/go-user-accounts/internal/interface/http"
	"github.com/oksasatya/go-user-accounts/internal/router/modules"
)

type Deps struct {
	Repo        repository.UserRepository
	Service     *application.Service
	AuthHandler *handlers.AuthHandler
	UserHandler *handlers.UserHandler
}

func buildDeps() Deps {
	repo := pginfra.NewUserRepository(container.GetPGPool())

	service := application.NewService(
		repo,
		container.GetJWT(),
		container.GetDispatcher(),
		container.GetLogger(),
	)

	return Deps{
		Repo:        repo,
		Service:     service,
		AuthHandler: handlers.NewAuthHandler(service, container.GetLogger()),
		UserHandler: handlers.NewUserHandler(service, container.GetLogger()),
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	deps := buildDeps()
	r.Add(modules.NewAuthModule(deps.AuthHandler, deps.Repo, container.GetJWT()))
	r.Add(modules.NewUserModule(deps.UserHandler, deps.Repo, container.GetJWT()))
}
