package result

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

const barWidth = 40

// NoResults is printed when there is nothing to show.
const NoResults = "No results found. Please upload a resume to get started."

// Renderer prints a ViewState as a plain terminal report.
type Renderer struct {
	// Color enables ANSI colours keyed by the severity band.
	Color bool
}

var (
	styleBold   = promptui.Styler(promptui.FGBold)
	styleGreen  = promptui.Styler(promptui.FGGreen, promptui.FGBold)
	styleYellow = promptui.Styler(promptui.FGYellow, promptui.FGBold)
	styleRed    = promptui.Styler(promptui.FGRed, promptui.FGBold)
)

func (r Renderer) style(text string, styler func(interface{}) string) string {
	if !r.Color {
		return text
	}
	return styler(text)
}

func bandStyle(b Band) func(interface{}) string {
	switch b {
	case BandHigh:
		return styleGreen
	case BandMedium:
		return styleYellow
	default:
		return styleRed
	}
}

// Render writes the report for candidate to w.
func (r Renderer) Render(w io.Writer, candidate string, v ViewState) error {
	var b strings.Builder

	badgeStyle := styleRed
	if v.Recommended {
		badgeStyle = styleGreen
	}

	fmt.Fprintf(&b, "%s  [%s]\n", r.style(candidate, styleBold), r.style(v.BadgeLabel, badgeStyle))
	fmt.Fprintln(&b, "Resume Scoring Summary")
	fmt.Fprintln(&b)

	fmt.Fprintf(&b, "Overall Match Score: %s\n", r.style(formatScore(v.Score)+"%", bandStyle(v.Band)))
	fmt.Fprintf(&b, "%s\n\n", r.style(progressBar(v.BarPercent), bandStyle(v.Band)))
	fmt.Fprintf(&b, "%s\n\n", v.Narrative)

	fmt.Fprintf(&b, "Analyzed using: %s method\n", v.MethodUsed)
	if v.Explanation != "" {
		fmt.Fprintln(&b, v.Explanation)
	}
	fmt.Fprintln(&b)

	fmt.Fprintf(&b, "Skills Matched: %d\n", v.SkillsMatchedCount)
	if len(v.SkillsMatched) > 0 {
		fmt.Fprintf(&b, "  %s\n", strings.Join(v.SkillsMatched, ", "))
	} else {
		fmt.Fprintln(&b, "  No matching skills detected")
	}

	fmt.Fprintf(&b, "Experience: %s years estimated from resume\n", v.YearsExperience)

	if len(v.TopKeywords) > 0 {
		fmt.Fprintln(&b, "Top Job Keywords:")
		for i, kw := range v.TopKeywords {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, kw)
		}
	}

	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "Analysis Details:")
	fmt.Fprintf(&b, "  Resume Characters: %s\n", v.ResumeCharCount)
	fmt.Fprintf(&b, "  Job Description Characters: %s\n", v.JobCharCount)
	fmt.Fprintf(&b, "  Matching Algorithm: %s\n", v.MethodUsed)

	_, err := io.WriteString(w, b.String())
	return err
}

func progressBar(percent float64) string {
	filled := int(math.Round(percent / 100 * barWidth))
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", barWidth-filled) + "]"
}

func formatScore(score float64) string {
	if math.IsNaN(score) {
		return "n/a"
	}
	return strconv.FormatFloat(score, 'f', -1, 64)
}
