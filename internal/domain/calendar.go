package domain

import "encoding/json"

type CalendarQuery struct {
	PromotionID *int64
	ProjectID   *int64
	StartDate   string
	EndDate     string
}

// Deliverable keeps the files service document intact for the calendar view.
type Deliverable struct {
	ID          int64
	ProjectID   int64
	PromotionID int64
	raw         json.RawMessage
}

func (d *Deliverable) UnmarshalJSON(data []byte) error {
	var head struct {
		ID          int64 `json:"id"`
		ProjectID   int64 `json:"projectId"`
		PromotionID int64 `json:"promotionId"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	d.ID, d.ProjectID, d.PromotionID = head.ID, head.ProjectID, head.PromotionID
	d.raw = append(json.RawMessage(nil), data...)
	return nil
}

func (d Deliverable) MarshalJSON() ([]byte, error) {
	if d.raw == nil {
		return json.Marshal(struct {
			ID          int64 `json:"id"`
			ProjectID   int64 `json:"projectId"`
			PromotionID int64 `json:"promotionId"`
		}{d.ID, d.ProjectID, d.PromotionID})
	}
	return d.raw, nil
}

type ProjectSummary struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type PromotionSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type CalendarProject struct {
	ProjectID          int64         `json:"projectId"`
	ProjectName        string        `json:"projectName"`
	ProjectDescription string        `json:"projectDescription"`
	Deliverables       []Deliverable `json:"deliverables"`
}

type CalendarPromotion struct {
	PromotionID   int64             `json:"promotionId"`
	PromotionName string            `json:"promotionName"`
	Projects      []CalendarProject `json:"projects"`
}
