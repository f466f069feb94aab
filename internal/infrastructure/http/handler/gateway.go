package handler

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/apascualco/campusgate/internal/application"
	"github.com/apascualco/campusgate/internal/domain"
	"github.com/apascualco/campusgate/internal/infrastructure/forward"
)

type StudentProjectsFinder interface {
	FindProjectsForStudent(ctx context.Context, studentID int64) (domain.ProjectsByPromotion, error)
}

type PromotionService interface {
	Create(ctx context.Context, req domain.CreatePromotionRequest) (json.RawMessage, error)
	AddStudents(ctx context.Context, promotionID int64, records domain.StudentRecords) (json.RawMessage, error)
	Students(ctx context.Context, promotionID int64, query url.Values) (json.RawMessage, error)
	ListWithStudents(ctx context.Context) ([]domain.PromotionWithStudents, error)
}

type CalendarService interface {
	Deliverables(ctx context.Context, q domain.CalendarQuery) ([]domain.CalendarPromotion, error)
}

type OrderGenerator interface {
	Generate(ctx context.Context, presentationID int64, in domain.GenerateOrdersInput) (json.RawMessage, error)
}

// Streamer relays a request body as-is, for uploads and downloads.
type Streamer interface {
	Handle(service domain.ServiceName, path forward.PathFunc) gin.HandlerFunc
}

type Dependencies struct {
	Forwarder       application.Forwarder
	Stream          Streamer
	StudentProjects StudentProjectsFinder
	Promotions      PromotionService
	Calendar        CalendarService
	Orders          OrderGenerator
}

// Gateway holds the handlers of every public route.
type Gateway struct {
	forwarder       application.Forwarder
	stream          Streamer
	studentProjects StudentProjectsFinder
	promotions      PromotionService
	calendar        CalendarService
	orders          OrderGenerator
}

func NewGateway(deps Dependencies) *Gateway {
	return &Gateway{
		forwarder:       deps.Forwarder,
		stream:          deps.Stream,
		studentProjects: deps.StudentProjects,
		promotions:      deps.Promotions,
		calendar:        deps.Calendar,
		orders:          deps.Orders,
	}
}

type RouteOptions struct {
	// RequireUser guards routes that act on behalf of the caller.
	RequireUser gin.HandlerFunc
	// LoginGuards run before the login handler, e.g. a tighter rate limit.
	LoginGuards []gin.HandlerFunc
}

func (g *Gateway) Register(r gin.IRouter, opts RouteOptions) {
	if opts.RequireUser == nil {
		opts.RequireUser = func(c *gin.Context) { c.Next() }
	}

	g.registerAuth(r, opts)
	g.registerUsers(r)
	g.registerProjects(r, opts)
	g.registerGroups(r)
	g.registerPromotions(r)
	g.registerDeliverables(r)
	g.registerSubmissions(r)
	g.registerDocuments(r)
	g.registerReports(r)
	g.registerEvaluations(r)
	g.registerOrders(r)
	g.registerPlagiarism(r)
	g.registerDashboard(r)
}
