package content

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/kirillkom/webinar-pipeline/internal/core/domain"
)

const (
	defaultPassScore  = 7
	minToneTextLength = 10
	contextRadius     = 40
)

// ToneValidator scores text against a profile's tone guardrails.
type ToneValidator struct {
	guardrails domain.ToneGuardrails
	forbidden  *regexp.Regexp
	warnings   *regexp.Regexp
	positive   *regexp.Regexp
}

func NewToneValidator(g domain.ToneGuardrails) *ToneValidator {
	if g.PassScore <= 0 {
		g.PassScore = defaultPassScore
	}
	return &ToneValidator{
		guardrails: g,
		forbidden:  phrasePattern(g.Forbidden),
		warnings:   phrasePattern(g.Warnings),
		positive:   phrasePattern(g.Positive),
	}
}

// Validate reports violations, warnings and positive indicators found in text.
// Score is 10 - 2 per violation - 0.5 per warning + up to 2 for positives, clamped to [1,10].
func (v *ToneValidator) Validate(text string) domain.ToneReport {
	report := domain.ToneReport{
		Violations: []domain.ToneFinding{},
		Warnings:   []domain.ToneFinding{},
		Positives:  []string{},
	}
	if utf8.RuneCountInString(strings.TrimSpace(text)) < minToneTextLength {
		report.Suggestions = "Text too short to validate"
		return report
	}

	report.Violations = findings(v.forbidden, text)
	report.Warnings = findings(v.warnings, text)
	for _, f := range findings(v.positive, text) {
		report.Positives = append(report.Positives, f.Phrase)
	}

	score := 10.0
	score -= float64(len(report.Violations)) * 2
	score -= float64(len(report.Warnings)) * 0.5
	score += min(float64(len(report.Positives))*0.5, 2)
	report.Score = max(1, min(10, int(score)))
	report.Passed = report.Score >= v.guardrails.PassScore && len(report.Violations) == 0
	report.Suggestions = suggestions(report)
	return report
}

// ValidateBody flattens a content body to text and validates it.
func (v *ToneValidator) ValidateBody(body *domain.ContentBody) domain.ToneReport {
	return v.Validate(FlattenText(body))
}

// FlattenText joins the human-readable fields of a body.
func FlattenText(body *domain.ContentBody) string {
	if body == nil {
		return ""
	}
	var parts []string
	for _, c := range body.Concepts {
		parts = append(parts, c.Title, c.BigIdea, c.Hook, c.Mechanism, c.CTASentence)
		parts = append(parts, c.StructurePoints...)
		parts = append(parts, c.Promises...)
		for _, s := range c.Secrets {
			parts = append(parts, s.Story, s.Belief, s.Transformation)
		}
	}
	for _, s := range body.Slides {
		parts = append(parts, s.Title, s.Description)
	}
	if body.Emails != nil {
		for _, e := range body.Emails.Emails {
			parts = append(parts, e.Subject, e.Preheader, e.Body, e.CTA)
		}
	}
	return strings.Join(parts, "\n")
}

func phrasePattern(phrases []string) *regexp.Regexp {
	if len(phrases) == 0 {
		return nil
	}
	quoted := make([]string, 0, len(phrases))
	for _, p := range phrases {
		if p = strings.TrimSpace(p); p != "" {
			quoted = append(quoted, regexp.QuoteMeta(p))
		}
	}
	if len(quoted) == 0 {
		return nil
	}
	// Longest first so multi-word phrases win over their prefixes.
	sort.Slice(quoted, func(i, j int) bool { return len(quoted[i]) > len(quoted[j]) })
	return regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`)
}

func findings(pattern *regexp.Regexp, text string) []domain.ToneFinding {
	out := []domain.ToneFinding{}
	if pattern == nil {
		return out
	}
	seen := map[string]bool{}
	for _, loc := range pattern.FindAllStringSubmatchIndex(text, -1) {
		start, end := loc[2], loc[3]
		phrase := strings.ToLower(text[start:end])
		if seen[phrase] {
			continue
		}
		seen[phrase] = true
		out = append(out, domain.ToneFinding{Phrase: phrase, Context: snippet(text, start, end)})
	}
	return out
}

func snippet(text string, start, end int) string {
	from := max(0, start-contextRadius)
	to := min(len(text), end+contextRadius)
	for from > 0 && !utf8.RuneStart(text[from]) {
		from--
	}
	for to < len(text) && !utf8.RuneStart(text[to]) {
		to++
	}
	return strings.TrimSpace(text[from:to])
}

func suggestions(r domain.ToneReport) string {
	var out []string
	if len(r.Violations) > 0 {
		out = append(out, fmt.Sprintf("Remove hype language: %s. Use evidence-based, professional tone instead.", joinPhrases(r.Violations)))
	}
	if len(r.Warnings) > 0 {
		out = append(out, fmt.Sprintf("Avoid superlatives without evidence: %s. Support claims with data or research.", joinPhrases(r.Warnings)))
	}
	if len(r.Positives) < 2 {
		out = append(out, "Add more evidence-based language such as 'proven', 'tested' or 'research shows'.")
	}
	if r.Score < defaultPassScore {
		out = append(out, "Overall tone needs work: keep claims realistic and grounded in evidence.")
	}
	if len(out) == 0 {
		return "Tone is compliant. Keep using professional, evidence-based language."
	}
	return strings.Join(out, " ")
}

func joinPhrases(fs []domain.ToneFinding) string {
	phrases := make([]string, 0, len(fs))
	for _, f := range fs {
		phrases = append(phrases, f.Phrase)
	}
	return strings.Join(phrases, ", ")
}
