package domain

type PresentationRef struct {
	ProjectID   int64 `json:"projectId"`
	PromotionID int64 `json:"promotionId"`
}

type GroupRef struct {
	ID int64 `json:"id"`
}

type GenerateOrdersSkipped struct {
	Message string `json:"message"`
	Created int    `json:"created"`
}

func (in GenerateOrdersInput) Validate() error {
	switch in.Algorithm {
	case "", OrderAlgorithmSequential, OrderAlgorithmRandom:
		return nil
	default:
		return NewValidationError("algorithm", "must be %s or %s", OrderAlgorithmSequential, OrderAlgorithmRandom)
	}
}

// Request fills the default algorithm and attaches the groups to schedule.
func (in GenerateOrdersInput) Request(groups []GroupRef) GenerateOrdersRequest {
	algorithm := in.Algorithm
	if algorithm == "" {
		algorithm = OrderAlgorithmSequential
	}
	ids := make([]int64, 0, len(groups))
	for _, g := range groups {
		ids = append(ids, g.ID)
	}
	return GenerateOrdersRequest{Algorithm: algorithm, ShuffleSeed: in.ShuffleSeed, GroupIDs: ids}
}
