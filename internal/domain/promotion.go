package domain

import (
	"bytes"
	"encoding/json"
)

type StudentPromotion struct {
	UserID int64 `json:"userId"`
}

// Promotion is the project service's promotion document with its enrolments.
type Promotion struct {
	ID                int64              `json:"id"`
	Name              string             `json:"name"`
	Description       string             `json:"description"`
	CreatorID         int64              `json:"creatorId"`
	CreatedAt         json.RawMessage    `json:"createdAt,omitempty"`
	UpdatedAt         json.RawMessage    `json:"updatedAt,omitempty"`
	StudentPromotions []StudentPromotion `json:"studentPromotions"`
}

func (p Promotion) StudentIDs() []int64 {
	ids := make([]int64, 0, len(p.StudentPromotions))
	for _, sp := range p.StudentPromotions {
		ids = append(ids, sp.UserID)
	}
	return ids
}

// User is an auth service account, passed through as received.
type User struct {
	ID  int64
	raw json.RawMessage
}

func (u *User) UnmarshalJSON(data []byte) error {
	var head struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	u.ID = head.ID
	u.raw = append(json.RawMessage(nil), data...)
	return nil
}

func (u User) MarshalJSON() ([]byte, error) {
	if u.raw == nil {
		return json.Marshal(struct {
			ID int64 `json:"id"`
		}{u.ID})
	}
	return u.raw, nil
}

// UserList accepts both a bare array and a paginated {"data": [...]} answer.
type UserList []User

func (l *UserList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var users []User
		if err := json.Unmarshal(data, &users); err != nil {
			return err
		}
		*l = users
		return nil
	}
	var page struct {
		Data []User `json:"data"`
	}
	if err := json.Unmarshal(data, &page); err != nil {
		return err
	}
	*l = page.Data
	return nil
}

type PromotionWithStudents struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	CreatorID   int64           `json:"creatorId"`
	CreatedAt   json.RawMessage `json:"createdAt,omitempty"`
	UpdatedAt   json.RawMessage `json:"updatedAt,omitempty"`
	Students    []User          `json:"students"`
}

// DistinctStudentIDs returns every enrolled user id once, in first-seen order.
func DistinctStudentIDs(promotions []Promotion) []int64 {
	seen := make(map[int64]struct{})
	var ids []int64
	for _, p := range promotions {
		for _, id := range p.StudentIDs() {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}
