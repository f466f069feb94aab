package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
)

type GroupStatus string

const (
	GroupStatusNoGroups   GroupStatus = "no_groups"
	GroupStatusNotInGroup GroupStatus = "not_in_group"
	GroupStatusInGroup    GroupStatus = "in_group"
)

// Project carries the id the gateway needs and the downstream document as
// received, so fields this layer does not model are passed through.
type Project struct {
	ID  int64
	raw json.RawMessage
}

func (p *Project) UnmarshalJSON(data []byte) error {
	var head struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	p.ID = head.ID
	p.raw = append(json.RawMessage(nil), data...)
	return nil
}

func (p Project) MarshalJSON() ([]byte, error) {
	if p.raw == nil {
		return json.Marshal(struct {
			ID int64 `json:"id"`
		}{p.ID})
	}
	return p.raw, nil
}

type GroupMember struct {
	StudentID int64 `json:"studentId"`
}

type Group struct {
	ID      int64
	Members []GroupMember
	raw     json.RawMessage
}

func (g *Group) UnmarshalJSON(data []byte) error {
	var head struct {
		ID      int64         `json:"id"`
		Members []GroupMember `json:"members"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	g.ID = head.ID
	g.Members = head.Members
	g.raw = append(json.RawMessage(nil), data...)
	return nil
}

func (g Group) MarshalJSON() ([]byte, error) {
	if g.raw == nil {
		return json.Marshal(struct {
			ID      int64         `json:"id"`
			Members []GroupMember `json:"members"`
		}{g.ID, g.Members})
	}
	return g.raw, nil
}

func (g Group) HasMember(studentID int64) bool {
	for _, m := range g.Members {
		if m.StudentID == studentID {
			return true
		}
	}
	return false
}

type ProjectWithGroupStatus struct {
	Project     Project     `json:"project"`
	GroupStatus GroupStatus `json:"groupStatus"`
	Group       *Group      `json:"group,omitempty"`
}

// ClassifyGroupStatus returns the student's own group when there is one.
// The first group listing the student wins.
func ClassifyGroupStatus(groups []Group, studentID int64) (GroupStatus, *Group) {
	if len(groups) == 0 {
		return GroupStatusNoGroups, nil
	}
	for i := range groups {
		if groups[i].HasMember(studentID) {
			g := groups[i]
			return GroupStatusInGroup, &g
		}
	}
	return GroupStatusNotInGroup, nil
}

type PromotionRef struct {
	ID int64 `json:"id"`
}

type PromotionProjects struct {
	PromotionID int64
	Projects    []ProjectWithGroupStatus
}

// ProjectsByPromotion is keyed by promotion id and keeps insertion order when
// encoded as a JSON object.
type ProjectsByPromotion []PromotionProjects

func (m ProjectsByPromotion) Get(promotionID int64) ([]ProjectWithGroupStatus, bool) {
	for _, e := range m {
		if e.PromotionID == promotionID {
			return e.Projects, true
		}
	}
	return nil, false
}

func (m ProjectsByPromotion) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(strconv.FormatInt(e.PromotionID, 10)))
		buf.WriteByte(':')
		projects := e.Projects
		if projects == nil {
			projects = []ProjectWithGroupStatus{}
		}
		b, err := json.Marshal(projects)
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
