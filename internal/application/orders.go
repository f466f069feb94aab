package application

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/apascualco/campusgate/internal/domain"
)

const noGroupsMessage = "no groups, nothing to generate"

type Orders struct {
	forwarder Forwarder
	timeout   time.Duration
}

func NewOrders(f Forwarder, timeout time.Duration) *Orders {
	return &Orders{forwarder: f, timeout: timeout}
}

// Generate schedules every group of the presentation's project and promotion.
func (o *Orders) Generate(ctx context.Context, presentationID int64, in domain.GenerateOrdersInput) (json.RawMessage, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := withBudget(ctx, o.timeout)
	defer cancel()

	presentation, err := Call[domain.PresentationRef](ctx, o.forwarder, domain.ForwardRequest{
		Service: domain.ServiceEvaluation,
		Path:    fmt.Sprintf("/presentations/%d", presentationID),
		Method:  http.MethodGet,
	})
	if err != nil {
		return nil, err
	}

	groups, err := Call[[]domain.GroupRef](ctx, o.forwarder, domain.ForwardRequest{
		Service: domain.ServiceProject,
		Path:    fmt.Sprintf("/projects/%d/promotions/%d/groups", presentation.ProjectID, presentation.PromotionID),
		Method:  http.MethodGet,
	})
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return json.Marshal(domain.GenerateOrdersSkipped{Message: noGroupsMessage, Created: 0})
	}

	return o.forwarder.Forward(ctx, domain.ForwardRequest{
		Service: domain.ServiceEvaluation,
		Path:    fmt.Sprintf("/presentations/%d/orders/generate", presentationID),
		Method:  http.MethodPost,
		Body:    in.Request(groups),
	})
}
