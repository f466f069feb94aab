package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/apascualco/campusgate/internal/domain"
	"github.com/apascualco/campusgate/internal/infrastructure/forward"
)

func (g *Gateway) registerDeliverables(r gin.IRouter) {
	r.POST("/projects/deliverables", g.forward(domain.ServiceFiles, forward.StaticPath("/projects/deliverables"),
		body[domain.CreateDeliverableRequest]()))
	r.PUT("/projects/deliverables", g.forward(domain.ServiceFiles, forward.StaticPath("/projects/deliverables"),
		body[domain.UpdateDeliverableRequest]()))
	r.DELETE("/projects/deliverables/:id", g.forward(domain.ServiceFiles,
		forward.ParamPath("/projects/deliverables/%d", "id")))
	r.GET("/projects/:id/deliverables", g.forward(domain.ServiceFiles,
		forward.ParamPath("/projects/%d/deliverables", "id"), query("promoId")))

	r.GET("/calendar", g.deliverablesCalendar)

	r.POST("/deliverables/rules", g.forward(domain.ServiceFiles, forward.StaticPath("/deliverables/rules"),
		body[domain.CreateRuleRequest]()))
	r.GET("/deliverables/:id/rules", g.forward(domain.ServiceFiles, forward.ParamPath("/deliverables/%d/rules", "id")))

	rule := forward.ParamPath("/rules/%d", "id")
	r.GET("/rules/:id", g.forward(domain.ServiceFiles, rule))
	r.PUT("/rules/:id", g.forward(domain.ServiceFiles, rule, body[domain.UpdateRuleRequest]()))
	r.DELETE("/rules/:id", g.forward(domain.ServiceFiles, rule))
}

func (g *Gateway) registerSubmissions(r gin.IRouter) {
	r.POST("/deliverables/:id/submit", g.stream.Handle(domain.ServiceFiles,
		forward.ParamPath("/deliverables/%d/submit", "id")))
	r.GET("/deliverables/:id/submissions", g.forward(domain.ServiceFiles,
		forward.ParamPath("/deliverables/%d/submissions", "id"), query("idDeliverable")))
	r.GET("/promotions/:id/submissions", g.forward(domain.ServiceFiles,
		forward.ParamPath("/submissions/%d/submissions", "id"), query("projectId")))
	r.GET("/submissions/:id/download", g.stream.Handle(domain.ServiceFiles,
		forward.ParamPath("/submissions/%d/download", "id")))
	r.DELETE("/submissions/:id", g.forward(domain.ServiceFiles, forward.ParamPath("/submissions/%d", "id")))
}

func (g *Gateway) registerDocuments(r gin.IRouter) {
	documents := r.Group("/documents")
	document := forward.ParamPath("/documents/%d", "id")

	documents.POST("/upload", g.stream.Handle(domain.ServiceFiles, forward.StaticPath("/documents/upload")))
	documents.GET("", g.forward(domain.ServiceFiles, forward.StaticPath("/documents"), query("userId")))
	documents.GET("/:id", g.forward(domain.ServiceFiles, document))
	documents.DELETE("/:id", g.forward(domain.ServiceFiles, document))
}

// deliverablesCalendar groups upcoming deliverables by promotion and project.
func (g *Gateway) deliverablesCalendar(c *gin.Context) {
	var q domain.CalendarQuery

	promotionID, ok, err := optionalIntQuery(c, "promotionId")
	if err != nil {
		abort(c, err)
		return
	}
	if ok {
		q.PromotionID = &promotionID
	}

	projectID, ok, err := optionalIntQuery(c, "projectId")
	if err != nil {
		abort(c, err)
		return
	}
	if ok {
		q.ProjectID = &projectID
	}

	q.StartDate = c.Query("startDate")
	q.EndDate = c.Query("endDate")

	result, err := g.calendar.Deliverables(downstreamContext(c), q)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
