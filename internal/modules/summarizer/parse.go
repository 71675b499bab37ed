package summarizer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	types "github.com/yungbote/meetingscribe-backend/internal/domain"
)

var errNotObject = errors.New("model output is not a single JSON object")

// decodeObject decodes exactly one JSON object from raw into dst. Fenced or prefixed output is rejected as is.
func decodeObject(raw string, dst any) ([]byte, error) {
	body := []byte(strings.TrimSpace(raw))
	if len(body) == 0 || body[0] != '{' {
		return nil, errNotObject
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(dst); err != nil {
		return nil, fmt.Errorf("decode model output: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errNotObject
	}
	return body, nil
}

func parseSummary(raw string) (*SummaryResult, []byte, error) {
	var out SummaryResult
	body, err := decodeObject(raw, &out)
	if err != nil {
		return nil, nil, err
	}
	if err := normalize(&out); err != nil {
		return nil, nil, err
	}
	return &out, body, nil
}

func normalize(r *SummaryResult) error {
	// An empty subject is stored as is.
	r.Subject = strings.TrimSpace(r.Subject)
	if r.ActionItems == nil {
		r.ActionItems = []ActionItemResult{}
	}
	if r.KeyPoints == nil {
		r.KeyPoints = []KeyPointResult{}
	}
	for i := range r.ActionItems {
		a := &r.ActionItems[i]
		a.Description = strings.TrimSpace(a.Description)
		if a.Description == "" {
			return fmt.Errorf("action item %d has no description", i)
		}
		a.AssignedTo = blankToNil(a.AssignedTo)
		a.DueDate = blankToNil(a.DueDate)
		if strings.TrimSpace(a.Status) == "" {
			a.Status = types.ActionItemStatusPending
		}
	}
	for i := range r.KeyPoints {
		r.KeyPoints[i].Content = strings.TrimSpace(r.KeyPoints[i].Content)
		if r.KeyPoints[i].Content == "" {
			return fmt.Errorf("key point %d is empty", i)
		}
	}
	return nil
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
