// Package result turns a score payload into the facts the report shows.
package result

import (
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/spigell/resume-scorer/internal/scorer"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	// RecommendThreshold is the only pass/fail cut-off; both the badge and the narrative read it.
	RecommendThreshold = 70.0
	// HighThreshold starts the High band.
	HighThreshold = 85.0

	defaultCandidateName = "Resume"
)

const (
	NarrativeRecommended = "This candidate shows strong alignment with the job requirements. " +
		"Their technical background and skills closely match the position. Recommended for further review."
	NarrativeBelowThreshold = "This candidate does not fully meet the minimum scoring threshold. " +
		"Their experience or skills may not align well with the specific requirements of this position."

	BadgeRecommended    = "Recommended"
	BadgeBelowThreshold = "Below Threshold"
)

// Band is the severity band that drives the score colour.
type Band int

const (
	BandLow Band = iota
	BandMedium
	BandHigh
)

func (b Band) String() string {
	switch b {
	case BandHigh:
		return "high"
	case BandMedium:
		return "medium"
	default:
		return "low"
	}
}

// IsRecommended reports whether score clears RecommendThreshold. NaN never does.
func IsRecommended(score float64) bool {
	return score >= RecommendThreshold
}

// BandFor classifies score. Out-of-range values fall into the nearest band, NaN is Low.
func BandFor(score float64) Band {
	switch {
	case score >= HighThreshold:
		return BandHigh
	case score >= RecommendThreshold:
		return BandMedium
	default:
		return BandLow
	}
}

// ViewState is everything the report needs, derived from one ScoreResponse.
type ViewState struct {
	Score float64
	// BarPercent is Score clamped to [0,100] for the progress bar.
	BarPercent         float64
	Recommended        bool
	Band               Band
	BadgeLabel         string
	Narrative          string
	SkillsMatchedCount int
	SkillsMatched      []string
	TopKeywords        []string
	YearsExperience    string
	// ResumeCharCount and JobCharCount carry thousands separators, e.g. "1,200".
	ResumeCharCount string
	JobCharCount    string
	MethodUsed      string
	Explanation     string
}

// Interpret derives the view state. It does not modify resp.
func Interpret(resp scorer.ScoreResponse) ViewState {
	recommended := IsRecommended(resp.Score)

	v := ViewState{
		Score:              resp.Score,
		BarPercent:         clampPercent(resp.Score),
		Recommended:        recommended,
		Band:               BandFor(resp.Score),
		BadgeLabel:         BadgeBelowThreshold,
		Narrative:          NarrativeBelowThreshold,
		SkillsMatchedCount: len(resp.SkillsMatched),
		SkillsMatched:      slices.Clone(resp.SkillsMatched),
		TopKeywords:        slices.Clone(resp.TopKeywords),
		YearsExperience:    formatYears(resp.YearsExperience),
		ResumeCharCount:    formatCount(resp.ResumeCharCount),
		JobCharCount:       formatCount(resp.JobCharCount),
		MethodUsed:         resp.MethodUsed,
		Explanation:        strings.TrimSpace(resp.Explanation),
	}

	if recommended {
		v.BadgeLabel = BadgeRecommended
		v.Narrative = NarrativeRecommended
	}

	return v
}

func clampPercent(score float64) float64 {
	if math.IsNaN(score) {
		return 0
	}
	return math.Max(0, math.Min(100, score))
}

func formatYears(years float64) string {
	if math.IsNaN(years) || math.IsInf(years, 0) || years < 0 {
		years = 0
	}
	return strconv.FormatFloat(years, 'f', 1, 64)
}

// formatCount builds its own printer per call; a message.Printer is not safe for concurrent use.
func formatCount(n int) string {
	return message.NewPrinter(language.English).Sprintf("%d", n)
}

var resumeExt = regexp.MustCompile(`(?i)\.(pdf|docx)$`)

// CandidateName is the resume file name without its .pdf or .docx extension.
func CandidateName(fileName string) string {
	name := strings.TrimSpace(fileName)
	if name == "" {
		return defaultCandidateName
	}
	return resumeExt.ReplaceAllString(name, "")
}
