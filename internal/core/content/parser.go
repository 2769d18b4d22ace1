package content

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/kirillkom/webinar-pipeline/internal/core/domain"
)

// TruncateLimit caps the raw text copied into a degraded record.
const TruncateLimit = 500

const (
	degradedConceptTitle = "Generated Concept"
	degradedConceptHook  = "See full concept above"
	untitledConcept      = "Untitled Concept"
)

var (
	jsonArrayPattern  = regexp.MustCompile(`(?s)\[\s*\{.*\}\s*\]`)
	conceptKeyPattern = regexp.MustCompile(`^concept_(\d+)$`)
)

// Parse structures raw generator output for content type t. It never fails:
// unusable input degrades to a single record holding the truncated text.
func Parse(t domain.ContentType, raw string) *domain.ContentBody {
	switch t {
	case domain.ContentStructure:
		return &domain.ContentBody{Kind: t, Slides: ParseSlides(raw)}
	case domain.ContentEmailSequence:
		plan := ParseEmailPlan(raw)
		return &domain.ContentBody{Kind: t, Emails: &plan}
	default:
		return &domain.ContentBody{Kind: domain.ContentConcept, Concepts: ParseConcepts(raw)}
	}
}

func ParseConcepts(raw string) []domain.ConceptRecord {
	items := findObjectArray(raw)
	if items == nil {
		if obj, ok := findObject(raw); ok {
			items = conceptsFromObject(obj)
		}
	}

	out := make([]domain.ConceptRecord, 0, len(items))
	for _, item := range items {
		out = append(out, conceptFromMap(item))
	}
	if len(out) == 0 {
		record := domain.ConceptRecord{
			Title:   degradedConceptTitle,
			BigIdea: Truncate(raw, TruncateLimit),
			Hook:    degradedConceptHook,
		}
		record.Normalize()
		out = append(out, record)
	}
	return out
}

func ParseSlides(raw string) []domain.Slide {
	items := findObjectArray(raw)
	if items == nil {
		if obj, ok := findObject(raw); ok {
			items = mapList(obj["slides"])
		}
	}

	out := make([]domain.Slide, 0, len(items))
	for i, item := range items {
		slide := domain.Slide{
			SlideNumber: intField(item, "slide_number"),
			Title:       stringField(item, "title"),
			Description: firstNonEmpty(stringField(item, "description"), strings.Join(stringList(item, "content_points"), "; ")),
			Visual:      stringField(item, "visual"),
			Section:     stringField(item, "section"),
		}
		if slide.SlideNumber == 0 {
			slide.SlideNumber = i + 1
		}
		out = append(out, slide)
	}
	if len(out) == 0 {
		out = append(out, domain.Slide{
			SlideNumber: 1,
			Title:       "Generated Structure",
			Description: Truncate(raw, TruncateLimit),
		})
	}
	return out
}

func ParseEmailPlan(raw string) domain.EmailPlan {
	var plan domain.EmailPlan
	obj, ok := findObject(raw)
	if ok && obj["emails"] != nil {
		plan.Timeline = stringField(obj, "timeline")
		plan.StrategyNotes = stringField(obj, "strategy_notes")
		plan.Emails = emailsFromMaps(mapList(obj["emails"]))
	} else if items := findObjectArray(raw); items != nil {
		plan.Emails = emailsFromMaps(items)
	}

	if len(plan.Emails) == 0 {
		plan.Emails = []domain.EmailDraft{{
			Day:     1,
			Segment: "all",
			Subject: "Generated Email",
			Body:    Truncate(raw, TruncateLimit),
		}}
	}
	return plan
}

// Truncate cuts s to at most limit runes.
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

func findObjectArray(raw string) []map[string]any {
	match := jsonArrayPattern.FindString(raw)
	if match == "" {
		return nil
	}
	var items []any
	if err := json.Unmarshal([]byte(match), &items); err != nil {
		return nil
	}
	return mapList(items)
}

func findObject(raw string) (map[string]any, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, false
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw[start:end+1]), &obj); err != nil {
		return nil, false
	}
	return obj, true
}

func conceptsFromObject(obj map[string]any) []map[string]any {
	if list := mapList(obj["concepts"]); len(list) > 0 {
		return list
	}

	type numbered struct {
		n    int
		item map[string]any
	}
	var found []numbered
	for key, value := range obj {
		m := conceptKeyPattern.FindStringSubmatch(key)
		if m == nil {
			continue
		}
		item, ok := value.(map[string]any)
		if !ok {
			continue
		}
		n, _ := strconv.Atoi(m[1])
		found = append(found, numbered{n: n, item: item})
	}
	sort.Slice(found, func(i, j int) bool { return found[i].n < found[j].n })

	out := make([]map[string]any, 0, len(found))
	for _, f := range found {
		out = append(out, f.item)
	}
	return out
}

func conceptFromMap(m map[string]any) domain.ConceptRecord {
	record := domain.ConceptRecord{
		Title:           firstNonEmpty(stringField(m, "title"), untitledConcept),
		BigIdea:         stringField(m, "big_idea"),
		Hook:            stringField(m, "hook"),
		StructurePoints: stringList(m, "structure_points"),
		Secrets:         secretList(m["secrets"]),
		Mechanism:       firstNonEmpty(stringField(m, "mechanism"), stringField(m, "unique_mechanism")),
		ValueAnchor:     valueAnchor(m["value_anchor"]),
		BonusIdeas:      stringList(m, "bonus_ideas"),
		CTASentence:     stringField(m, "cta_sentence"),
		Promises:        stringList(m, "promises"),
		EvaluationNotes: stringField(m, "evaluation_notes"),
	}
	if _, ok := m["evaluation_score"]; ok {
		score := intField(m, "evaluation_score")
		record.EvaluationScore = &score
	}
	record.Normalize()
	return record
}

func emailsFromMaps(items []map[string]any) []domain.EmailDraft {
	out := make([]domain.EmailDraft, 0, len(items))
	for i, item := range items {
		email := domain.EmailDraft{
			Day:          intField(item, "day"),
			Segment:      stringField(item, "segment"),
			Purpose:      stringField(item, "purpose"),
			Subject:      stringField(item, "subject"),
			Preheader:    stringField(item, "preheader"),
			Body:         stringField(item, "body"),
			CTA:          stringField(item, "cta"),
			ToneAnalysis: stringField(item, "tone_analysis"),
		}
		if email.Day == 0 {
			email.Day = i + 1
		}
		out = append(out, email)
	}
	return out
}

func mapList(v any) []map[string]any {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func stringField(m map[string]any, key string) string {
	return asString(m[key])
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		raw, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(raw)
	}
}

func stringList(m map[string]any, key string) []string {
	return asStringList(m[key])
}

func asStringList(v any) []string {
	switch t := v.(type) {
	case nil:
		return []string{}
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s := asString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		if s := asString(t); s != "" {
			return []string{s}
		}
		return []string{}
	}
}

func intField(m map[string]any, key string) int {
	switch t := m[key].(type) {
	case float64:
		return int(t)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

func secretList(v any) []domain.Secret {
	list, ok := v.([]any)
	if !ok {
		return []domain.Secret{}
	}
	out := make([]domain.Secret, 0, len(list))
	for _, item := range list {
		switch t := item.(type) {
		case map[string]any:
			out = append(out, domain.Secret{
				Assumption:     stringField(t, "assumption"),
				Story:          stringField(t, "story"),
				Belief:         stringField(t, "belief"),
				Transformation: stringField(t, "transformation"),
			})
		case string:
			out = append(out, domain.Secret{Story: t})
		}
	}
	return out
}

func valueAnchor(v any) map[string][]string {
	m, ok := v.(map[string]any)
	if !ok {
		return map[string][]string{}
	}
	out := make(map[string][]string, len(m))
	for key, value := range m {
		out[key] = asStringList(value)
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
