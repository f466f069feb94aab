package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/apascualco/campusgate/internal/domain"
)

type Promotions struct {
	forwarder Forwarder
	timeout   time.Duration
}

func NewPromotions(f Forwarder, timeout time.Duration) *Promotions {
	return &Promotions{forwarder: f, timeout: timeout}
}

// Create provisions the CSV's students on the auth service, then records the
// promotion with their ids. Accounts created before a failed promotion call
// are not removed; their ids are logged for reconciliation.
func (p *Promotions) Create(ctx context.Context, req domain.CreatePromotionRequest) (json.RawMessage, error) {
	records, err := domain.ParseStudentsCSV(req.StudentsCSV)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withBudget(ctx, p.timeout)
	defer cancel()

	studentIDs := []int64{}
	if len(records) > 0 {
		studentIDs, err = p.createStudents(ctx, records)
		if err != nil {
			return nil, err
		}
	}

	raw, err := p.forwarder.Forward(ctx, domain.ForwardRequest{
		Service: domain.ServiceProject,
		Path:    "/promotions",
		Method:  http.MethodPost,
		Body: domain.PromotionRecord{
			Name:        req.Name,
			Description: req.Description,
			CreatorID:   req.CreatorID,
			StudentIDs:  studentIDs,
		},
	})
	if err != nil {
		if len(studentIDs) > 0 {
			slog.Warn("promotion not created after provisioning students",
				"promotion", req.Name,
				"student_ids", studentIDs,
				"error", err,
			)
		}
		return nil, err
	}
	return raw, nil
}

func (p *Promotions) AddStudents(ctx context.Context, promotionID int64, records domain.StudentRecords) (json.RawMessage, error) {
	if len(records) == 0 {
		return nil, domain.NewValidationError("students", "at least one student is required")
	}

	ctx, cancel := withBudget(ctx, p.timeout)
	defer cancel()

	studentIDs, err := p.createStudents(ctx, records)
	if err != nil {
		return nil, err
	}

	raw, err := p.forwarder.Forward(ctx, domain.ForwardRequest{
		Service: domain.ServiceProject,
		Path:    fmt.Sprintf("/promotions/%d/student", promotionID),
		Method:  http.MethodPost,
		Body:    domain.StudentIDsRequest{StudentIDs: studentIDs},
	})
	if err != nil {
		slog.Warn("students not attached to promotion",
			"promotion_id", promotionID,
			"student_ids", studentIDs,
			"error", err,
		)
		return nil, err
	}
	return raw, nil
}

func (p *Promotions) createStudents(ctx context.Context, records domain.StudentRecords) ([]int64, error) {
	created, err := Call[domain.CreateStudentsResponse](ctx, p.forwarder, domain.ForwardRequest{
		Service: domain.ServiceAuth,
		Path:    "/users/students",
		Method:  http.MethodPost,
		Body:    records,
	})
	if err != nil {
		return nil, err
	}
	return created.StudentIDs(), nil
}

// Students resolves the accounts enrolled in a promotion. page, size and all
// are passed to the auth service when present in query.
func (p *Promotions) Students(ctx context.Context, promotionID int64, query url.Values) (json.RawMessage, error) {
	ctx, cancel := withBudget(ctx, p.timeout)
	defer cancel()

	promotion, err := Call[domain.Promotion](ctx, p.forwarder, domain.ForwardRequest{
		Service: domain.ServiceProject,
		Path:    fmt.Sprintf("/promotions/%d", promotionID),
		Method:  http.MethodGet,
	})
	if err != nil {
		return nil, err
	}

	ids := promotion.StudentIDs()
	if len(ids) == 0 {
		return json.RawMessage(`{"data":[]}`), nil
	}

	q := url.Values{"ids": {joinIDs(ids)}}
	for _, key := range []string{"page", "size", "all"} {
		if v := query.Get(key); v != "" {
			q.Set(key, v)
		}
	}
	return p.forwarder.Forward(ctx, domain.ForwardRequest{
		Service: domain.ServiceAuth,
		Path:    "/users",
		Method:  http.MethodGet,
		Query:   q,
	})
}

// ListWithStudents joins every promotion with its student accounts using a
// single auth lookup.
func (p *Promotions) ListWithStudents(ctx context.Context) ([]domain.PromotionWithStudents, error) {
	ctx, cancel := withBudget(ctx, p.timeout)
	defer cancel()

	promotions, err := Call[[]domain.Promotion](ctx, p.forwarder, domain.ForwardRequest{
		Service: domain.ServiceProject,
		Path:    "/promotions",
		Method:  http.MethodGet,
	})
	if err != nil {
		return nil, err
	}

	byID := map[int64]domain.User{}
	if ids := domain.DistinctStudentIDs(promotions); len(ids) > 0 {
		users, err := Call[domain.UserList](ctx, p.forwarder, domain.ForwardRequest{
			Service: domain.ServiceAuth,
			Path:    "/users",
			Method:  http.MethodGet,
			Query:   url.Values{"ids": {joinIDs(ids)}},
		})
		if err != nil {
			return nil, err
		}
		for _, u := range users {
			byID[u.ID] = u
		}
	}

	result := make([]domain.PromotionWithStudents, 0, len(promotions))
	for _, promo := range promotions {
		students := []domain.User{}
		for _, id := range promo.StudentIDs() {
			if u, ok := byID[id]; ok {
				students = append(students, u)
			}
		}
		result = append(result, domain.PromotionWithStudents{
			ID:          promo.ID,
			Name:        promo.Name,
			Description: promo.Description,
			CreatorID:   promo.CreatorID,
			CreatedAt:   promo.CreatedAt,
			UpdatedAt:   promo.UpdatedAt,
			Students:    students,
		})
	}
	return result, nil
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}
