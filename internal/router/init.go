package router

import (
	"github.com/taskflow/taskflow-api/internal/application"
	"github.com/taskflow/taskflow-api/internal/container"
	pginfra "github.com/taskflow/taskflow-api/internal/infrastructure/postgres"
	handlers "github.com/taskflow/taskflow-api/internal/interface/http"
	"github.com/taskflow/taskflow-api/internal/router/modules"
)

// InitModules wires repositories, services, and handlers from the container
// singletons and registers every feature module. Called once at startup.
func InitModules(r *Registry) {
	userRepo := pginfra.NewUserRepository(container.GetPGPool())
	taskRepo := pginfra.NewTaskRepository(container.GetPGPool())

	userSvc := application.NewUserService(userRepo, container.GetJWT(), container.GetRedis(), container.GetLogger())
	taskSvc := application.NewTaskService(taskRepo, userRepo, container.GetLogger())

	cfg := container.GetConfig()
	userHandler := handlers.NewUserHandler(userSvc, container.GetLogger(), cfg.CookieDomain, cfg.CookieSecure)
	taskHandler := handlers.NewTaskHandler(taskSvc, container.GetLogger())

	r.Add(modules.NewUserModule(userHandler, container.GetJWT()))
	r.Add(modules.NewTaskModule(taskHandler, container.GetJWT()))
}
