package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/apascualco/campusgate/internal/domain"
	"github.com/apascualco/campusgate/internal/infrastructure/forward"
)

func (g *Gateway) registerGroups(r gin.IRouter) {
	projectGroups := forward.ParamPath("/projects/%d/promotions/%d/groups", "id", "promotionId")
	r.POST("/projects/:id/promotions/:promotionId/groups", g.forward(domain.ServiceProject, projectGroups,
		body[domain.CreateGroupsRequest]()))
	r.GET("/projects/:id/promotions/:promotionId/groups", g.forward(domain.ServiceProject, projectGroups))

	settings := forward.ParamPath("/projects/%d/promotions/%d/group-settings", "id", "promotionId")
	r.GET("/projects/:id/promotions/:promotionId/group-settings", g.forward(domain.ServiceProject, settings))
	r.PATCH("/projects/:id/promotions/:promotionId/group-settings", g.forward(domain.ServiceProject, settings,
		body[domain.GroupSettingsRequest]()))

	groups := r.Group("/groups")
	group := forward.ParamPath("/groups/%d", "id")
	groups.PUT("/:id", g.forward(domain.ServiceProject, group, body[domain.UpdateGroupRequest]()))
	groups.DELETE("/:id", g.forward(domain.ServiceProject, group))
	groups.POST("/:id/students", g.forward(domain.ServiceProject, forward.ParamPath("/groups/%d/students", "id"),
		body[domain.StudentIDsRequest]()))
	groups.DELETE("/:id/students/:userId", g.forward(domain.ServiceProject,
		forward.ParamPath("/groups/%d/students/%d", "id", "userId")))
}
