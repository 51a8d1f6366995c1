package ai

import (
	"strings"

	"police-security-bot/internal/domain/model"
)

// Keywords checked, case-insensitively and as plain substrings, when the
// model cannot be used.
var Keywords = []string{"hack", "scam", "illegal", "weapon", "drugs", "kill", "terror"}

const (
	keywordHitScore  = 0.9
	keywordMissScore = 0.1
	keywordReason    = "keyword_fallback"
)

// KeywordVerdict is the heuristic classifier. It is deterministic and
// never fails.
func KeywordVerdict(text string) model.Verdict {
	lower := strings.ToLower(text)
	v := model.Verdict{
		Label:   model.LabelSafe,
		Score:   keywordMissScore,
		Reasons: []string{keywordReason},
		Source:  model.SourceKeywordFallback,
	}
	for _, k := range Keywords {
		if strings.Contains(lower, k) {
			v.Label = model.LabelSuspicious
			v.Score = keywordHitScore
			break
		}
	}
	return v
}
