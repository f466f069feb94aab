package application

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/apascualco/campusgate/internal/domain"
)

type Calendar struct {
	forwarder Forwarder
	timeout   time.Duration
}

func NewCalendar(f Forwarder, timeout time.Duration) *Calendar {
	return &Calendar{forwarder: f, timeout: timeout}
}

// Deliverables groups the files service calendar by promotion then project.
// Entries whose promotion or project the project service does not know are
// left out.
func (c *Calendar) Deliverables(ctx context.Context, q domain.CalendarQuery) ([]domain.CalendarPromotion, error) {
	ctx, cancel := withBudget(ctx, c.timeout)
	defer cancel()

	query := url.Values{}
	path := "/calendar"
	if q.PromotionID != nil {
		query.Set("promotionId", strconv.FormatInt(*q.PromotionID, 10))
		path = fmt.Sprintf("/calendar/promotion/%d", *q.PromotionID)
	}
	if q.StartDate != "" {
		query.Set("startDate", q.StartDate)
	}
	if q.EndDate != "" {
		query.Set("endDate", q.EndDate)
	}
	if q.ProjectID != nil {
		query.Set("projectId", strconv.FormatInt(*q.ProjectID, 10))
	}

	deliverables, err := Call[[]domain.Deliverable](ctx, c.forwarder, domain.ForwardRequest{
		Service: domain.ServiceFiles,
		Path:    path,
		Method:  http.MethodGet,
		Query:   query,
	})
	if err != nil {
		return nil, err
	}
	if len(deliverables) == 0 {
		return []domain.CalendarPromotion{}, nil
	}

	var (
		promotions []domain.PromotionSummary
		projects   []domain.ProjectSummary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		promotions, err = Call[[]domain.PromotionSummary](gctx, c.forwarder, domain.ForwardRequest{
			Service: domain.ServiceProject,
			Path:    "/promotions",
			Method:  http.MethodGet,
		})
		return err
	})
	g.Go(func() error {
		var err error
		projects, err = Call[[]domain.ProjectSummary](gctx, c.forwarder, domain.ForwardRequest{
			Service: domain.ServiceProject,
			Path:    "/projects",
			Method:  http.MethodGet,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	promotionByID := make(map[int64]domain.PromotionSummary, len(promotions))
	for _, p := range promotions {
		promotionByID[p.ID] = p
	}
	projectByID := make(map[int64]domain.ProjectSummary, len(projects))
	for _, p := range projects {
		projectByID[p.ID] = p
	}

	if q.PromotionID != nil {
		promotion, ok := promotionByID[*q.PromotionID]
		if !ok {
			return []domain.CalendarPromotion{}, nil
		}
		return []domain.CalendarPromotion{{
			PromotionID:   promotion.ID,
			PromotionName: promotion.Name,
			Projects:      calendarProjects(deliverables, projectByID),
		}}, nil
	}

	result := []domain.CalendarPromotion{}
	for _, group := range groupBy(deliverables, func(d domain.Deliverable) int64 { return d.PromotionID }) {
		promotion, ok := promotionByID[group.key]
		if !ok {
			continue
		}
		result = append(result, domain.CalendarPromotion{
			PromotionID:   promotion.ID,
			PromotionName: promotion.Name,
			Projects:      calendarProjects(group.items, projectByID),
		})
	}
	return result, nil
}

func calendarProjects(deliverables []domain.Deliverable, projectByID map[int64]domain.ProjectSummary) []domain.CalendarProject {
	out := []domain.CalendarProject{}
	for _, group := range groupBy(deliverables, func(d domain.Deliverable) int64 { return d.ProjectID }) {
		project, ok := projectByID[group.key]
		if !ok {
			continue
		}
		out = append(out, domain.CalendarProject{
			ProjectID:          project.ID,
			ProjectName:        project.Name,
			ProjectDescription: project.Description,
			Deliverables:       group.items,
		})
	}
	return out
}

type keyed[T any] struct {
	key   int64
	items []T
}

// groupBy buckets items by key, keeping the first-seen order of keys.
func groupBy[T any](items []T, key func(T) int64) []keyed[T] {
	index := map[int64]int{}
	var groups []keyed[T]
	for _, item := range items {
		k := key(item)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, keyed[T]{key: k})
		}
		groups[i].items = append(groups[i].items, item)
	}
	return groups
}
