package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taskflow/taskflow-api/internal/container"
	handlers "github.com/taskflow/taskflow-api/internal/interface/http"
	"github.com/taskflow/taskflow-api/internal/interface/middleware"
	"github.com/taskflow/taskflow-api/pkg/helpers"
)

// TaskModule registers the task resource. All routes sit behind the session
// auth middleware plus per-IP and per-user rate limits.
type TaskModule struct {
	Handler *handlers.TaskHandler
	JWT     *helpers.JWTManager
}

func NewTaskModule(h *handlers.TaskHandler, jwt *helpers.JWTManager) *TaskModule {
	return &TaskModule{Handler: h, JWT: jwt}
}

func (m *TaskModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	auth.Use(
		middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP()),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		auth.GET("/tasks", m.Handler.List)
		auth.POST("/tasks", m.Handler.Create)
		auth.GET("/tasks/:id", m.Handler.Get)
		auth.PUT("/tasks/:id", m.Handler.Update)
		auth.PATCH("/tasks/:id", m.Handler.UpdateStatus)
		auth.DELETE("/tasks/:id", m.Handler.Delete)
	}
}
