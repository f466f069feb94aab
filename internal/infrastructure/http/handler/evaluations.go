package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/apascualco/campusgate/internal/domain"
	"github.com/apascualco/campusgate/internal/infrastructure/forward"
)

func (g *Gateway) registerEvaluations(r gin.IRouter) {
	eval := domain.ServiceEvaluation

	promotionCriteria := forward.ParamPath("/projects/%d/promotions/%d/criteria", "id", "promotionId")
	r.POST("/projects/:id/promotions/:promotionId/criteria", g.forward(eval, promotionCriteria, body[domain.CriteriaRequest]()))
	r.GET("/projects/:id/promotions/:promotionId/criteria", g.forward(eval, promotionCriteria))
	r.GET("/projects/:id/criteria", g.forward(eval, forward.ParamPath("/projects/%d/criteria", "id")))

	criteria := forward.ParamPath("/criteria/%d", "id")
	r.PUT("/criteria/:id", g.forward(eval, criteria, body[domain.UpdateCriteriaRequest]()))
	r.DELETE("/criteria/:id", g.forward(eval, criteria))

	grades := forward.ParamPath("/criteria/%d/grades", "id")
	r.POST("/criteria/:id/grades", g.forward(eval, grades, body[domain.GradeRequest]()))
	r.GET("/criteria/:id/grades", g.forward(eval, grades))

	grade := forward.ParamPath("/grades/%d", "id")
	r.GET("/grades/:id", g.forward(eval, grade))
	r.PUT("/grades/:id", g.forward(eval, grade, body[domain.GradeRequest]()))
	r.DELETE("/grades/:id", g.forward(eval, grade))

	finalGrades := forward.ParamPath("/projects/%d/promotions/%d/final-grades", "id", "promotionId")
	r.GET("/projects/:id/promotions/:promotionId/final-grades", g.forward(eval, finalGrades))
	r.POST("/projects/:id/promotions/:promotionId/final-grades", g.forward(eval, finalGrades,
		fixedBody(domain.EmptyRequest{})))
	r.GET("/projects/:id/final-grades", g.forward(eval, projectFinalGradesPath))

	finalGrade := forward.ParamPath("/final-grades/%d", "id")
	r.GET("/final-grades/:id", g.forward(eval, finalGrade))
	r.PUT("/final-grades/:id", g.forward(eval, finalGrade, body[domain.FinalGradeRequest]()))

	presentations := forward.ParamPath("/projects/%d/presentations", "id")
	r.POST("/projects/:id/presentations", g.forward(eval, presentations, body[domain.PresentationRequest]()))
	r.GET("/projects/:id/presentations", g.forward(eval, presentations))

	presentation := forward.ParamPath("/projects/%d/presentations/%d", "id", "presentationId")
	r.GET("/projects/:id/presentations/:presentationId", g.forward(eval, presentation))
	r.PUT("/projects/:id/presentations/:presentationId", g.forward(eval, presentation, body[domain.PresentationRequest]()))
	r.DELETE("/projects/:id/presentations/:presentationId", g.forward(eval, presentation))

	r.GET("/presentations/:id/:promotionId", g.forward(eval,
		forward.ParamPath("/presentations/%d/%d", "id", "promotionId")))
}

// projectFinalGradesPath resolves the promotion from the promoId query,
// which is mandatory.
func projectFinalGradesPath(c *gin.Context) (string, error) {
	projectID, err := intParam(c, "id")
	if err != nil {
		return "", err
	}
	promoID, ok, err := optionalIntQuery(c, "promoId")
	if err != nil {
		return "", err
	}
	if !ok {
		return "", domain.NewValidationError("promoId", "is required")
	}
	return forwardPath("/projects/%d/promotions/%d/final-grades", projectID, promoID), nil
}
