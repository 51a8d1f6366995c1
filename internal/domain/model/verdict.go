package model

import (
	"fmt"
	"math"
	"strings"

	"police-security-bot/internal/domain"
)

type Label string

const (
	LabelSafe       Label = "safe"
	LabelSuspicious Label = "suspicious"
)

// FlagThreshold is the inclusive score at which a suspicious verdict
// triggers the warning reply and the admin alert.
const FlagThreshold = 0.5

func (l Label) Valid() bool { return l == LabelSafe || l == LabelSuspicious }

// ParseLabel accepts either label in any case, surrounded by whitespace.
func ParseLabel(s string) (Label, error) {
	l := Label(strings.ToLower(strings.TrimSpace(s)))
	if !l.Valid() {
		return "", fmt.Errorf("%w: label %q", domain.ErrInvalidArgument, s)
	}
	return l, nil
}

type VerdictSource string

const (
	SourceModel           VerdictSource = "model"
	SourceKeywordFallback VerdictSource = "keyword_fallback"
)

// Verdict is the classifier output for one message. It is not persisted as
// such; Source only feeds logs and metrics.
type Verdict struct {
	Label   Label
	Score   float64
	Reasons []string
	Source  VerdictSource
}

func NewVerdict(label Label, score float64, reasons []string, source VerdictSource) (Verdict, error) {
	if !label.Valid() {
		return Verdict{}, fmt.Errorf("%w: label %q", domain.ErrInvalidArgument, label)
	}
	if math.IsNaN(score) || score < 0 || score > 1 {
		return Verdict{}, fmt.Errorf("%w: score %v", domain.ErrInvalidArgument, score)
	}
	if reasons == nil {
		reasons = []string{}
	}
	return Verdict{
		Label:   label,
		Score:   RoundScore(score),
		Reasons: reasons,
		Source:  source,
	}, nil
}

// Flagged reports whether the verdict warrants a warning and an alert.
func (v Verdict) Flagged() bool {
	return v.Label == LabelSuspicious && v.Score >= FlagThreshold
}

// RoundScore clamps s to [0,1] and rounds it to two decimals.
func RoundScore(s float64) float64 {
	if math.IsNaN(s) || s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return math.Round(s*100) / 100
}
