package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-user-orders-api/internal/interface/http"
	"github.com/oksasatya/go-user-orders-api/internal/interface/middleware"
)

// UserModule wires the user CRUD handlers under /api/users:
//
//	POST   /users
//	GET    /users
//	GET    /users/search?q=
//	GET    /users/:userId
//	PUT    /users/:userId
//	DELETE /users/:userId
//	GET    /users/:userId/orders
//	GET    /users/:userId/orders/total-price
type UserModule struct {
	Handler   *handlers.UserHandler
	Redis     *redis.Client
	PerMinute int
	Exempt    middleware.AllowFunc
}

func NewUserModule(h *handlers.UserHandler, rdb *redis.Client, perMinute int, exempt middleware.AllowFunc) *UserModule {
	return &UserModule{Handler: h, Redis: rdb, PerMinute: perMinute, Exempt: exempt}
}

func (m *UserModule) Name() string { return "users" }

func (m *UserModule) Register(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	// Per-IP limiter; a no-op when redis is not configured.
	users.Use(middleware.RateLimit(m.Redis, m.PerMinute, time.Minute, middleware.KeyByIP(), m.Exempt))
	{
		users.POST("", m.Handler.Create)
		users.GET("", m.Handler.List)
		users.GET("/search", m.Handler.Search)
		users.GET("/:userId", m.Handler.Get)
		users.PUT("/:userId", m.Handler.Update)
		users.DELETE("/:userId", m.Handler.Delete)
		users.GET("/:userId/orders", m.Handler.Orders)
		users.GET("/:userId/orders/total-price", m.Handler.TotalPrice)
	}
}
