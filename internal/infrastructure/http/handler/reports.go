package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/apascualco/campusgate/internal/domain"
	"github.com/apascualco/campusgate/internal/infrastructure/forward"
)

func (g *Gateway) registerReports(r gin.IRouter) {
	reports := r.Group("/reports")
	report := forward.ParamPath("/reports/%d", "id")
	section := forward.ParamPath("/reports/sections/%d", "sectionId")

	reports.POST("", g.forward(domain.ServiceReport, forward.StaticPath("/reports"), body[domain.CreateReportRequest]()))
	reports.GET("", g.forward(domain.ServiceReport, forward.StaticPath("/reports"),
		intQuery("projectId", "groupId", "promotionId")))

	reports.PATCH("/sections/:sectionId", g.forward(domain.ServiceReport, section, body[domain.ReportSection]()))
	reports.DELETE("/sections/:sectionId", g.forward(domain.ServiceReport, section))

	reports.GET("/:id", g.forward(domain.ServiceReport, report))
	reports.PATCH("/:id", g.forward(domain.ServiceReport, report, body[domain.UpdateReportRequest]()))
	reports.DELETE("/:id", g.forward(domain.ServiceReport, report))
	reports.POST("/:id/sections", g.forward(domain.ServiceReport, forward.ParamPath("/reports/%d/sections", "id"),
		body[domain.ReportSection]()))
}
