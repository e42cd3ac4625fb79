package v1

import (
	"github.com/gin-gonic/gin"

	"organquiz/internal/interfaces/httpserver/handlers"
)

// Routes encapsulates versioned route registration.
type Routes struct {
	handlers *handlers.Provider
}

func NewRoutes(provider *handlers.Provider) *Routes {
	return &Routes{handlers: provider}
}

// Register attaches all v1 routes under /v1 prefix.
func (r *Routes) Register(router gin.IRouter) {
	group := router.Group("/v1")
	group.GET("/quiz/question", r.handlers.Quiz.Question)
	group.POST("/quiz/answer", r.handlers.Quiz.Answer)
}
