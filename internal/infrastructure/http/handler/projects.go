package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/apascualco/campusgate/internal/domain"
	"github.com/apascualco/campusgate/internal/infrastructure/forward"
	"github.com/apascualco/campusgate/internal/infrastructure/http/middleware"
)

// HeaderUser carries the authenticated caller to backends as JSON.
const HeaderUser = "X-User"

func (g *Gateway) registerProjects(r gin.IRouter, opts RouteOptions) {
	projects := r.Group("/projects")
	project := forward.ParamPath("/projects/%d", "id")

	projects.POST("", g.forward(domain.ServiceProject, forward.StaticPath("/projects"), body[domain.CreateProjectRequest]()))
	projects.GET("", g.forward(domain.ServiceProject, forward.StaticPath("/projects")))
	projects.GET("/myprojects", opts.RequireUser, g.myProjects)
	projects.GET("/by-promotions", g.forward(domain.ServiceProject, forward.StaticPath("/projects/by-promotions"),
		query("promotionIds")))
	projects.GET("/creator/:creatorId", g.forward(domain.ServiceProject,
		forward.ParamPath("/projects/creator/%d", "creatorId")))
	projects.GET("/student/:studentId", g.listStudentProjects)
	projects.GET("/student/:studentId/detailed", g.forward(domain.ServiceProject,
		forward.ParamPath("/projects/student/%d/detailed", "studentId"), intQuery("page", "size")))

	projects.GET("/:id", g.forward(domain.ServiceProject, project))
	projects.PATCH("/:id", g.forward(domain.ServiceProject, project, body[domain.UpdateProjectRequest]()))
	projects.DELETE("/:id", g.forward(domain.ServiceProject, project))
	projects.PATCH("/:id/:promotionId/status", g.forward(domain.ServiceProject,
		forward.ParamPath("/projects/%d/%d/status", "id", "promotionId"), body[domain.UpdateProjectStatusRequest]()))
}

// listStudentProjects lists a student's projects per promotion with their group
// status.
func (g *Gateway) listStudentProjects(c *gin.Context) {
	studentID, err := intParam(c, "studentId")
	if err != nil {
		abort(c, err)
		return
	}

	result, err := g.studentProjects.FindProjectsForStudent(downstreamContext(c), studentID)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (g *Gateway) myProjects(c *gin.Context) {
	user, ok := middleware.UserFromContext(c)
	if !ok {
		abort(c, fmt.Errorf("%w: missing authorization token", domain.ErrUnauthorized))
		return
	}

	page, err := intQueryOr(c, "page", 1)
	if err != nil {
		abort(c, err)
		return
	}
	size, err := intQueryOr(c, "size", 10)
	if err != nil {
		abort(c, err)
		return
	}

	identity, err := json.Marshal(user)
	if err != nil {
		abort(c, err)
		return
	}

	raw, err := g.forwarder.Forward(downstreamContext(c), domain.ForwardRequest{
		Service: domain.ServiceProject,
		Path:    "/projects/myprojects",
		Method:  http.MethodGet,
		Query: url.Values{
			"page":     {strconv.FormatInt(page, 10)},
			"size":     {strconv.FormatInt(size, 10)},
			"userId":   {strconv.FormatInt(user.Subject, 10)},
			"userRole": {user.Role},
		},
		Header: http.Header{HeaderUser: {string(identity)}},
	})
	if err != nil {
		abort(c, err)
		return
	}
	writeRaw(c, http.StatusOK, raw)
}

func intQueryOr(c *gin.Context, name string, def int64) (int64, error) {
	v, ok, err := optionalIntQuery(c, name)
	if err != nil {
		return 0, err
	}
	if !ok {
		return def, nil
	}
	return v, nil
}
