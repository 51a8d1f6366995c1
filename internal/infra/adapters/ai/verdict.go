package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"police-security-bot/internal/domain"
	"police-security-bot/internal/domain/model"
)

// verdictPayload is the only shape accepted from the model. Pointers tell a
// missing field apart from a zero value.
type verdictPayload struct {
	Label   *string  `json:"label"`
	Score   *float64 `json:"score"`
	Reasons []string `json:"reasons"`
}

// ParseVerdict validates the assistant text. Accepted input is a single JSON
// object, optionally wrapped in a Markdown code fence. label must be safe or
// suspicious (any case), score a number in [0,1], reasons an optional list
// of strings.
func ParseVerdict(raw string) (model.Verdict, error) {
	body := stripCodeFence(strings.TrimSpace(raw))
	if body == "" {
		return model.Verdict{}, domain.ErrEmptyResponse
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(body)))
	var p verdictPayload
	if err := dec.Decode(&p); err != nil {
		return model.Verdict{}, fmt.Errorf("%w: %v", domain.ErrInvalidVerdict, err)
	}
	if dec.More() {
		return model.Verdict{}, fmt.Errorf("%w: trailing data", domain.ErrInvalidVerdict)
	}
	if p.Label == nil || p.Score == nil {
		return model.Verdict{}, fmt.Errorf("%w: label and score are required", domain.ErrInvalidVerdict)
	}
	label, err := model.ParseLabel(*p.Label)
	if err != nil {
		return model.Verdict{}, fmt.Errorf("%w: %v", domain.ErrInvalidVerdict, err)
	}
	v, err := model.NewVerdict(label, *p.Score, p.Reasons, model.SourceModel)
	if err != nil {
		return model.Verdict{}, fmt.Errorf("%w: %v", domain.ErrInvalidVerdict, err)
	}
	return v, nil
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// drop an info string such as "json"
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = ""
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
