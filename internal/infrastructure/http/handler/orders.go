package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/apascualco/campusgate/internal/domain"
	"github.com/apascualco/campusgate/internal/infrastructure/forward"
)

func (g *Gateway) registerOrders(r gin.IRouter) {
	eval := domain.ServiceEvaluation
	orders := forward.ParamPath("/presentations/%d/orders", "id")

	r.POST("/presentations/:id/orders/generate", g.generateOrders)
	r.POST("/presentations/:id/orders", g.forward(eval, orders, body[domain.CreateOrderRequest]()))
	r.GET("/presentations/:id/orders", g.forward(eval, orders))
	r.PATCH("/presentations/:id/orders/reorder", g.forward(eval,
		forward.ParamPath("/presentations/%d/orders/reorder", "id"), body[domain.ReorderRequest]()))

	order := forward.ParamPath("/orders/%d", "id")
	r.PUT("/orders/:id", g.forward(eval, order, body[domain.UpdateOrderRequest]()))
	r.DELETE("/orders/:id", g.forward(eval, order))
}

func (g *Gateway) generateOrders(c *gin.Context) {
	presentationID, err := intParam(c, "id")
	if err != nil {
		abort(c, err)
		return
	}

	var in domain.GenerateOrdersInput
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&in); err != nil {
			abort(c, bindError(err))
			return
		}
	}

	raw, err := g.orders.Generate(downstreamContext(c), presentationID, in)
	if err != nil {
		abort(c, err)
		return
	}
	writeRaw(c, http.StatusCreated, raw)
}

func (g *Gateway) registerPlagiarism(r gin.IRouter) {
	r.POST("/plagiarism/checks", g.forward(domain.ServicePlagiarism, forward.StaticPath("/plagiarism/checks"),
		body[domain.PlagiarismCheckRequest](), status(http.StatusOK)))
}

func (g *Gateway) registerDashboard(r gin.IRouter) {
	r.GET("/dashboard/statistics", g.dashboardStatistics)
}

func (g *Gateway) dashboardStatistics(c *gin.Context) {
	userID := c.Query("userId")
	userRole := c.Query("userRole")
	if userID == "" || userRole == "" {
		abort(c, &domain.ValidationError{Message: "userId and userRole are required query parameters."})
		return
	}

	raw, err := g.forwarder.Forward(downstreamContext(c), domain.ForwardRequest{
		Service: domain.ServiceProject,
		Path:    "/projects/statistics",
		Method:  http.MethodGet,
		Query:   c.Request.URL.Query(),
	})
	if err != nil {
		abort(c, err)
		return
	}
	writeRaw(c, http.StatusOK, raw)
}
