package summarizer

import (
	types "github.com/yungbote/meetingscribe-backend/internal/domain"
)

type ActionItemResult struct {
	Description string  `json:"description"`
	AssignedTo  *string `json:"assigned_to"`
	DueDate     *string `json:"due_date"`
	Status      string  `json:"status"`
}

type KeyPointResult struct {
	Content string `json:"content"`
}

// SummaryResult is the structured summary as the model produced it.
type SummaryResult struct {
	Subject     string             `json:"subject"`
	ActionItems []ActionItemResult `json:"action_items"`
	KeyPoints   []KeyPointResult   `json:"key_points"`
}

func (r *SummaryResult) toModel() *types.Summary {
	s := &types.Summary{
		Subject:     r.Subject,
		ActionItems: make([]types.ActionItem, 0, len(r.ActionItems)),
		KeyPoints:   make([]types.KeyPoint, 0, len(r.KeyPoints)),
	}
	for _, a := range r.ActionItems {
		s.ActionItems = append(s.ActionItems, types.ActionItem{
			Description: a.Description,
			AssignedTo:  a.AssignedTo,
			DueDate:     a.DueDate,
			Status:      a.Status,
		})
	}
	for _, k := range r.KeyPoints {
		s.KeyPoints = append(s.KeyPoints, types.KeyPoint{Content: k.Content})
	}
	return s
}

func resultFromModel(s *types.Summary) *SummaryResult {
	out := &SummaryResult{
		Subject:     s.Subject,
		ActionItems: make([]ActionItemResult, 0, len(s.ActionItems)),
		KeyPoints:   make([]KeyPointResult, 0, len(s.KeyPoints)),
	}
	for _, a := range s.ActionItems {
		out.ActionItems = append(out.ActionItems, ActionItemResult{
			Description: a.Description,
			AssignedTo:  a.AssignedTo,
			DueDate:     a.DueDate,
			Status:      a.Status,
		})
	}
	for _, k := range s.KeyPoints {
		out.KeyPoints = append(out.KeyPoints, KeyPointResult{Content: k.Content})
	}
	return out
}
