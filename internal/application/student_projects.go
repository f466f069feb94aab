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

type StudentProjects struct {
	forwarder Forwarder
	timeout   time.Duration
}

func NewStudentProjects(f Forwarder, timeout time.Duration) *StudentProjects {
	return &StudentProjects{forwarder: f, timeout: timeout}
}

// FindProjectsForStudent lists the student's projects per promotion with the
// student's group status in each. Any failed lookup fails the whole listing.
func (s *StudentProjects) FindProjectsForStudent(ctx context.Context, studentID int64) (domain.ProjectsByPromotion, error) {
	if studentID <= 0 {
		return nil, domain.NewValidationError("studentId", "must be a positive integer")
	}

	ctx, cancel := withBudget(ctx, s.timeout)
	defer cancel()

	promotions, err := Call[[]domain.PromotionRef](ctx, s.forwarder, domain.ForwardRequest{
		Service: domain.ServiceProject,
		Path:    fmt.Sprintf("/promotions/student/%d", studentID),
		Method:  http.MethodGet,
	})
	if err != nil {
		return nil, err
	}

	promotionIDs := distinctPromotionIDs(promotions)
	if len(promotionIDs) == 0 {
		return domain.ProjectsByPromotion{}, nil
	}

	byPromotion, err := Call[map[string][]domain.Project](ctx, s.forwarder, domain.ForwardRequest{
		Service: domain.ServiceProject,
		Path:    "/projects/by-promotions",
		Method:  http.MethodGet,
		Query:   url.Values{"promotionIds": {joinIDs(promotionIDs)}},
	})
	if err != nil {
		return nil, err
	}

	result := make(domain.ProjectsByPromotion, len(promotionIDs))
	g, gctx := errgroup.WithContext(ctx)

	for i, promotionID := range promotionIDs {
		projects := byPromotion[strconv.FormatInt(promotionID, 10)]
		result[i] = domain.PromotionProjects{
			PromotionID: promotionID,
			Projects:    make([]domain.ProjectWithGroupStatus, len(projects)),
		}

		for j, project := range projects {
			slot := &result[i].Projects[j]
			g.Go(func() error {
				groups, err := Call[[]domain.Group](gctx, s.forwarder, domain.ForwardRequest{
					Service: domain.ServiceProject,
					Path:    fmt.Sprintf("/projects/%d/promotions/%d/groups", project.ID, promotionID),
					Method:  http.MethodGet,
				})
				if err != nil {
					return err
				}

				status, group := domain.ClassifyGroupStatus(groups, studentID)
				*slot = domain.ProjectWithGroupStatus{
					Project:     project,
					GroupStatus: status,
					Group:       group,
				}
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

func distinctPromotionIDs(promotions []domain.PromotionRef) []int64 {
	seen := make(map[int64]struct{}, len(promotions))
	ids := make([]int64, 0, len(promotions))
	for _, p := range promotions {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		ids = append(ids, p.ID)
	}
	return ids
}
