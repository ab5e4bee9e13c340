package delivery

import (
	"projexa/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Handlers struct {
	Orders   *OrderHandler
	Products *ProductHandler
	Auth     *AuthHandler
	Health   *HealthHandler
}

func NewRouter(h Handlers, resolver middleware.CallerResolver, logger *logrus.Logger) *gin.Engine {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(logger),
		middleware.CallerMiddleware(resolver, logger),
	)

	h.Health.RegisterRoutes(r)

	api := r.Group("/api")
	h.Orders.RegisterRoutes(api)
	h.Products.RegisterRoutes(api)
	h.Auth.RegisterRoutes(api)
	return r
}
