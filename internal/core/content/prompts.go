package content

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kirillkom/webinar-pipeline/internal/core/domain"
)

const (
	maxOnboardingRunes = 3000
	maxHookRunes       = 2000
	maxTranscriptRunes = 4000
	maxBodyRunes       = 6000
)

type Prompt struct {
	System string
	User   string
}

// PromptContext is the source material available to a generation step.
type PromptContext struct {
	Mentor        domain.MentorProfile
	OnboardingDoc string
	HookAnalysis  string
	Concept       *domain.ConceptRecord
	Slides        []domain.Slide
	EmailOverview string
}

// PromptBuilder renders step prompts for one content profile.
type PromptBuilder struct {
	profile domain.ContentProfile
}

func NewPromptBuilder(profile domain.ContentProfile) *PromptBuilder {
	return &PromptBuilder{profile: profile}
}

func (b *PromptBuilder) Profile() domain.ContentProfile {
	return b.profile
}

func (b *PromptBuilder) Generate(t domain.ContentType, pc PromptContext) Prompt {
	var sb strings.Builder
	writeMentor(&sb, pc.Mentor)
	if pc.OnboardingDoc != "" {
		fmt.Fprintf(&sb, "\nOnboarding material:\n%s\n", Truncate(pc.OnboardingDoc, maxOnboardingRunes))
	}
	if pc.HookAnalysis != "" {
		fmt.Fprintf(&sb, "\nHook analysis:\n%s\n", Truncate(pc.HookAnalysis, maxHookRunes))
	}
	if pc.Concept != nil {
		fmt.Fprintf(&sb, "\nApproved concept:\n%s\n", renderJSON(pc.Concept))
	}
	if len(pc.Slides) > 0 {
		fmt.Fprintf(&sb, "\nApproved slide structure:\n%s\n", renderJSON(pc.Slides))
	}
	if pc.EmailOverview != "" {
		fmt.Fprintf(&sb, "\nEmail sequence plan:\n%s\nWrite the full copy for every email in the plan.\n",
			Truncate(pc.EmailOverview, maxBodyRunes))
	}
	sb.WriteString("\n")
	sb.WriteString(b.outputInstruction(t))
	return Prompt{System: b.system(), User: sb.String()}
}

// EmailOverview asks for the strategic plan the email sequence is written from.
func (b *PromptBuilder) EmailOverview(pc PromptContext) Prompt {
	var sb strings.Builder
	writeMentor(&sb, pc.Mentor)
	if pc.Concept != nil {
		fmt.Fprintf(&sb, "\nApproved concept:\n%s\n", renderJSON(pc.Concept))
	}
	if len(pc.Slides) > 0 {
		fmt.Fprintf(&sb, "\nApproved slide structure:\n%s\n", renderJSON(pc.Slides))
	}
	fmt.Fprintf(&sb,
		"\nPlan the webinar email sequence for the segments %s. For each email give the send day relative to the webinar, "+
			"the segment, its purpose and the angle it takes. Answer in plain text.",
		strings.Join(b.profile.Template.EmailSegments, ", "),
	)
	return Prompt{System: b.system(), User: sb.String()}
}

// SingleEmail drafts one email from an outline. The concept is used only when conceptContext is empty.
func (b *PromptBuilder) SingleEmail(p domain.MentorProfile, outline, conceptContext string, concept *domain.ConceptRecord) Prompt {
	var sb strings.Builder
	writeMentor(&sb, p)
	switch {
	case conceptContext != "":
		fmt.Fprintf(&sb, "\nConcept context:\n%s\n", Truncate(conceptContext, maxBodyRunes))
	case concept != nil:
		fmt.Fprintf(&sb, "\nConcept context:\n%s\n", renderJSON(concept))
	}
	fmt.Fprintf(&sb, "\nEmail outline:\n%s\n\n%s", Truncate(outline, maxBodyRunes), singleEmailInstruction)
	return Prompt{System: b.system(), User: sb.String()}
}

func (b *PromptBuilder) EvaluateEmail(email string) Prompt {
	user := "Critique the email below. Score subject line, opening, single call to action and tone from 1 to 10 " +
		"and give concrete fixes. Answer in plain text.\n\n" + Truncate(email, maxBodyRunes)
	return Prompt{System: b.system(), User: user}
}

func (b *PromptBuilder) ImproveEmail(email, evaluation string) Prompt {
	user := fmt.Sprintf("Rewrite the email below so that every point of the critique is addressed.\n\nEmail:\n%s\n\nCritique:\n%s\n\n%s",
		Truncate(email, maxBodyRunes), evaluation, singleEmailInstruction)
	return Prompt{System: b.system(), User: user}
}

const singleEmailInstruction = "Write the email as plain text starting with a line \"Subject: ...\", then a line \"Preheader: ...\", " +
	"then the body and one call to action."

func (b *PromptBuilder) Evaluate(t domain.ContentType, body *domain.ContentBody) Prompt {
	user := fmt.Sprintf(
		"Critique the following %s. Score each item from 1 to 10, name its weakest part and give concrete fixes. "+
			"Answer in plain text.\n\n%s",
		contentNoun(t), renderBody(body),
	)
	return Prompt{System: b.system(), User: user}
}

func (b *PromptBuilder) Improve(t domain.ContentType, body *domain.ContentBody, evaluation string) Prompt {
	user := fmt.Sprintf(
		"Rewrite the %s below so that every point of the critique is addressed.\n\nCurrent version:\n%s\n\nCritique:\n%s\n\n%s",
		contentNoun(t), renderBody(body), evaluation, b.outputInstruction(t),
	)
	return Prompt{System: b.system(), User: user}
}

func (b *PromptBuilder) Refine(t domain.ContentType, body *domain.ContentBody, transcript string) Prompt {
	user := fmt.Sprintf(
		"Revise the %s below using the mentor's feedback from the meeting transcript. "+
			"Keep what the mentor liked and change what they asked to change.\n\nCurrent version:\n%s\n\nTranscript:\n%s\n\n%s",
		contentNoun(t), renderBody(body), Truncate(transcript, maxTranscriptRunes), b.outputInstruction(t),
	)
	return Prompt{System: b.system(), User: user}
}

func (b *PromptBuilder) system() string {
	system := b.profile.SystemPrompt
	if b.profile.Language != "" {
		system += fmt.Sprintf(" Write all content in language %q.", b.profile.Language)
	}
	if len(b.profile.Tone.Forbidden) > 0 {
		system += " Never use these phrases: " + strings.Join(b.profile.Tone.Forbidden, ", ") + "."
	}
	return strings.TrimSpace(system)
}

func (b *PromptBuilder) outputInstruction(t domain.ContentType) string {
	tpl := b.profile.Template
	switch t {
	case domain.ContentStructure:
		return fmt.Sprintf(
			"Return a JSON array of slides with keys slide_number, title, description, visual, section. Use sections in this order: %s.",
			strings.Join(tpl.SlideSections, ", "),
		)
	case domain.ContentEmailSequence:
		return fmt.Sprintf(
			"Return a JSON object with keys timeline, strategy_notes and emails. Each email has day, segment, purpose, subject, "+
				"preheader, body, cta. Segments: %s.",
			strings.Join(tpl.EmailSegments, ", "),
		)
	default:
		count := tpl.ConceptCount
		if count <= 0 {
			count = 3
		}
		return fmt.Sprintf(
			"Return a JSON array of %d concepts with keys title, big_idea, hook, structure_points, "+
				"secrets (assumption, story, belief, transformation), mechanism, value_anchor, bonus_ideas, cta_sentence, promises.",
			count,
		)
	}
}

func writeMentor(sb *strings.Builder, p domain.MentorProfile) {
	sb.WriteString("Mentor profile:\n")
	fields := []struct{ label, value string }{
		{"Name", p.Name},
		{"Business", p.BusinessName},
		{"Niche", p.Niche},
		{"Target audience", p.TargetAudience},
		{"Offer", p.Offer},
		{"Price point", p.PricePoint},
		{"Mechanism", p.Mechanism},
		{"Story", p.Story},
		{"Preferred tone", p.Tone},
	}
	for _, f := range fields {
		if f.value != "" {
			fmt.Fprintf(sb, "- %s: %s\n", f.label, f.value)
		}
	}
}

func contentNoun(t domain.ContentType) string {
	switch t {
	case domain.ContentStructure:
		return "webinar slide structure"
	case domain.ContentEmailSequence:
		return "webinar email sequence"
	default:
		return "webinar concepts"
	}
}

func renderBody(body *domain.ContentBody) string {
	if body == nil {
		return "(empty)"
	}
	switch body.Kind {
	case domain.ContentStructure:
		return Truncate(renderJSON(body.Slides), maxBodyRunes)
	case domain.ContentEmailSequence:
		return Truncate(renderJSON(body.Emails), maxBodyRunes)
	default:
		return Truncate(renderJSON(body.Concepts), maxBodyRunes)
	}
}

func renderJSON(v any) string {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(raw)
}
