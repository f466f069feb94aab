package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/apascualco/campusgate/internal/domain"
	"github.com/apascualco/campusgate/internal/infrastructure/forward"
)

func (g *Gateway) registerPromotions(r gin.IRouter) {
	promotions := r.Group("/promotions")
	promotion := forward.ParamPath("/promotions/%d", "id")

	promotions.POST("", g.createPromotion)
	promotions.GET("", g.forward(domain.ServiceProject, forward.StaticPath("/promotions"), query("creatorId")))
	promotions.GET("/with-students", g.promotionsWithStudents)
	promotions.GET("/student/:studentId", g.forward(domain.ServiceProject,
		forward.ParamPath("/promotions/student/%d", "studentId")))

	promotions.GET("/:id", g.forward(domain.ServiceProject, promotion))
	promotions.PATCH("/:id", g.forward(domain.ServiceProject, promotion, body[domain.UpdatePromotionRequest]()))
	promotions.DELETE("/:id", g.forward(domain.ServiceProject, promotion))
	promotions.POST("/:id/student", g.addStudentsToPromotion)
	promotions.DELETE("/:id/student", g.removeStudentsFromPromotion)
	promotions.GET("/:id/students", g.promotionStudents)
}

func (g *Gateway) createPromotion(c *gin.Context) {
	var req domain.CreatePromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, bindError(err))
		return
	}

	raw, err := g.promotions.Create(downstreamContext(c), req)
	if err != nil {
		abort(c, err)
		return
	}
	writeRaw(c, http.StatusCreated, raw)
}

func (g *Gateway) addStudentsToPromotion(c *gin.Context) {
	promotionID, err := intParam(c, "id")
	if err != nil {
		abort(c, err)
		return
	}

	var records domain.StudentRecords
	if err := c.ShouldBindJSON(&records); err != nil {
		abort(c, bindError(err))
		return
	}

	raw, err := g.promotions.AddStudents(downstreamContext(c), promotionID, records)
	if err != nil {
		abort(c, err)
		return
	}
	writeRaw(c, http.StatusCreated, raw)
}

// removeStudentsFromPromotion accepts either a bare array of ids or
// {"studentIds": [...]}.
func (g *Gateway) removeStudentsFromPromotion(c *gin.Context) {
	promotionID, err := intParam(c, "id")
	if err != nil {
		abort(c, err)
		return
	}

	data, err := c.GetRawData()
	if err != nil {
		abort(c, domain.NewValidationError("body", "%v", err))
		return
	}
	ids, err := parseStudentIDs(data)
	if err != nil {
		abort(c, err)
		return
	}

	raw, err := g.forwarder.Forward(downstreamContext(c), domain.ForwardRequest{
		Service: domain.ServiceProject,
		Path:    forwardPath("/promotions/%d/student", promotionID),
		Method:  http.MethodDelete,
		Body:    domain.StudentIDsRequest{StudentIDs: ids},
	})
	if err != nil {
		abort(c, err)
		return
	}
	writeRaw(c, http.StatusOK, raw)
}

func parseStudentIDs(data []byte) ([]int64, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, domain.NewValidationError("studentIds", "is required")
	}

	var ids []int64
	if data[0] == '[' {
		if err := json.Unmarshal(data, &ids); err != nil {
			return nil, domain.NewValidationError("studentIds", "must be an array of integers")
		}
		return ids, nil
	}

	var req domain.StudentIDsRequest
	if err := json.Unmarshal(data, &req); err != nil || req.StudentIDs == nil {
		return nil, domain.NewValidationError("studentIds", "must be an array of integers")
	}
	return req.StudentIDs, nil
}

func (g *Gateway) promotionStudents(c *gin.Context) {
	promotionID, err := intParam(c, "id")
	if err != nil {
		abort(c, err)
		return
	}

	q := url.Values{}
	for _, name := range []string{"page", "size", "all"} {
		if v := c.Query(name); v != "" {
			q.Set(name, v)
		}
	}

	raw, err := g.promotions.Students(downstreamContext(c), promotionID, q)
	if err != nil {
		abort(c, err)
		return
	}
	writeRaw(c, http.StatusOK, raw)
}

func (g *Gateway) promotionsWithStudents(c *gin.Context) {
	result, err := g.promotions.ListWithStudents(downstreamContext(c))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
