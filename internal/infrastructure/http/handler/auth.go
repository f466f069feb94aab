package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/apascualco/campusgate/internal/domain"
	"github.com/apascualco/campusgate/internal/infrastructure/forward"
)

func (g *Gateway) registerAuth(r gin.IRouter, opts RouteOptions) {
	auth := r.Group("/auth")

	login := append(append([]gin.HandlerFunc{}, opts.LoginGuards...),
		g.forward(domain.ServiceAuth, forward.StaticPath("/auth/login"),
			body[domain.LoginRequest](), status(http.StatusOK)))
	auth.POST("/login", login...)

	auth.POST("/refresh", g.forward(domain.ServiceAuth, forward.StaticPath("/auth/refresh"),
		body[domain.RefreshTokenRequest](), status(http.StatusOK)))
}

func (g *Gateway) registerUsers(r gin.IRouter) {
	users := r.Group("/users")

	users.POST("/students", g.forward(domain.ServiceAuth, forward.StaticPath("/users/students"),
		body[domain.StudentRecords]()))

	user := forward.ParamPath("/users/%d", "id")
	users.GET("/:id", g.forward(domain.ServiceAuth, user))
	users.PATCH("/:id", g.forward(domain.ServiceAuth, user, body[domain.UpdateUserRequest]()))
	users.DELETE("/:id", g.forward(domain.ServiceAuth, user))
	users.PATCH("/:id/password", g.forward(domain.ServiceAuth, forward.ParamPath("/users/%d/password", "id"),
		body[domain.UpdatePasswordRequest]()))
}
