package content

import (
	"strings"

	"github.com/kirillkom/webinar-pipeline/internal/core/domain"
)

// Fallback returns placeholder content with the same shape as generated content.
// The result is freshly built on every call and safe to mutate.
func Fallback(t domain.ContentType) *domain.ContentBody {
	switch t {
	case domain.ContentStructure:
		return &domain.ContentBody{Kind: t, Slides: fallbackSlides()}
	case domain.ContentEmailSequence:
		plan := fallbackEmailPlan()
		return &domain.ContentBody{Kind: t, Emails: &plan}
	default:
		return &domain.ContentBody{Kind: domain.ContentConcept, Concepts: fallbackConcepts()}
	}
}

// FallbackEvaluation is the critique used when the provider cannot evaluate.
func FallbackEvaluation(t domain.ContentType) string {
	switch t {
	case domain.ContentStructure:
		return "Placeholder evaluation: the slide flow follows intro, teaching, secrets, transition and offer. " +
			"Check that every secret slide breaks one false belief and that the offer slide has a single clear call to action."
	case domain.ContentEmailSequence:
		return "Placeholder evaluation: the sequence covers registration, reminders and follow-up for attendees and no-shows. " +
			"Check subject line clarity, one call to action per email and consistent sender voice."
	default:
		return "Placeholder evaluation: each concept has a big idea, hook, three secrets and a call to action. " +
			"Check that the mechanism is specific to the mentor and that promises stay realistic."
	}
}

// FallbackSingleEmail is a placeholder email that still reflects the requested outline.
func FallbackSingleEmail(outline string) string {
	return "Subject: A quick note before the webinar\n" +
		"Preheader: What to expect\n\n" +
		"Placeholder email for the outline: " + Truncate(strings.TrimSpace(outline), 300) + "\n\n" +
		"Call to action: Save your seat"
}

func fallbackConcepts() []domain.ConceptRecord {
	concepts := []domain.ConceptRecord{
		{
			Title:   "The Transformation Method",
			BigIdea: "A structured three-step protocol replaces guesswork with a repeatable process.",
			Hook:    "Stop spending time on methods that do not move the needle.",
			StructurePoints: []string{
				"Why the usual approach stalls",
				"The three-step protocol",
				"What changes in the first 30 days",
			},
			Secrets: []domain.Secret{
				{Assumption: "I need more time", Story: "A client who doubled output with the same hours", Belief: "Structure beats effort", Transformation: "Time becomes a resource, not a blocker"},
				{Assumption: "My market is different", Story: "Applying the protocol in a niche market", Belief: "Principles transfer across markets", Transformation: "Confidence to apply the method"},
				{Assumption: "I have tried everything", Story: "The missing step most people skip", Belief: "One change in sequence unlocks results", Transformation: "Renewed willingness to act"},
			},
			Mechanism:   "3-Step Automated Protocol",
			ValueAnchor: map[string][]string{"core": {"Step-by-step program"}, "bonus": {"Templates", "Group Q&A"}},
			BonusIdeas:  []string{"Implementation checklist", "Live Q&A session"},
			CTASentence: "Book a call to see how the protocol fits your business.",
			Promises:    []string{"A clear plan for the next 90 days"},
		},
		{
			Title:   "The Growth Playbook",
			BigIdea: "Scalable growth comes from one documented system, not from more tactics.",
			Hook:    "How a documented system produced steady growth in 90 days.",
			StructurePoints: []string{
				"The tactic trap",
				"Designing the system",
				"Measuring what matters",
			},
			Secrets: []domain.Secret{
				{Assumption: "Growth needs a big budget", Story: "Growing with a small, focused budget", Belief: "Focus beats spend", Transformation: "Growth feels within reach"},
				{Assumption: "I need to be everywhere", Story: "Winning on a single channel", Belief: "Depth beats breadth", Transformation: "Permission to simplify"},
				{Assumption: "Systems are for big companies", Story: "A one-person business running on a playbook", Belief: "Systems free up small teams", Transformation: "Ready to document the work"},
			},
			Mechanism:   "Scalable Success Formula",
			ValueAnchor: map[string][]string{"core": {"Playbook workshop"}, "bonus": {"Metrics dashboard template"}},
			BonusIdeas:  []string{"Channel selection worksheet"},
			CTASentence: "Join the workshop and leave with your first playbook.",
			Promises:    []string{"One documented growth system"},
		},
		{
			Title:   "The Local Market Advantage",
			BigIdea: "Strategies adapted to local culture outperform imported playbooks.",
			Hook:    "Why imported methods often fail in local markets.",
			StructurePoints: []string{
				"What imported playbooks miss",
				"Reading your market",
				"Adapting the message",
			},
			Secrets: []domain.Secret{
				{Assumption: "What works abroad works here", Story: "A campaign that failed before it was localized", Belief: "Context decides the message", Transformation: "Respect for local buyers"},
				{Assumption: "Hype sells", Story: "Understated messaging that converted better", Belief: "Trust converts", Transformation: "A calmer, credible voice"},
				{Assumption: "Adapting takes too long", Story: "A two-week localization sprint", Belief: "Adaptation is a process, not a project", Transformation: "A practical adaptation routine"},
			},
			Mechanism:   "Culturally Adapted Strategy",
			ValueAnchor: map[string][]string{"core": {"Market adaptation course"}, "bonus": {"Message review session"}},
			BonusIdeas:  []string{"Local case study library"},
			CTASentence: "Register to adapt your message to your market.",
			Promises:    []string{"A message your market trusts"},
		},
	}
	for i := range concepts {
		concepts[i].Normalize()
	}
	return concepts
}

func fallbackSlides() []domain.Slide {
	return []domain.Slide{
		{SlideNumber: 1, Section: "intro", Title: "Welcome", Description: "Introduce the host and what attendees will learn.", Visual: "Host photo with webinar title"},
		{SlideNumber: 2, Section: "teaching", Title: "The Problem", Description: "Why most people stall and what it costs them.", Visual: "Simple before and after diagram"},
		{SlideNumber: 3, Section: "secrets", Title: "Secret 1", Description: "Break the first false belief with a short story.", Visual: "Quote card"},
		{SlideNumber: 4, Section: "secrets", Title: "Secret 2", Description: "Build trust with a documented result.", Visual: "Result chart"},
		{SlideNumber: 5, Section: "transition", Title: "The Solution", Description: "Introduce the mechanism that ties the secrets together.", Visual: "Mechanism diagram"},
		{SlideNumber: 6, Section: "offer", Title: "The Offer", Description: "Present the offer with one clear call to action.", Visual: "Offer stack"},
	}
}

func fallbackEmailPlan() domain.EmailPlan {
	return domain.EmailPlan{
		Timeline: "3 pre-webinar emails, 2 attendee follow-ups, 2 no-show follow-ups",
		Emails: []domain.EmailDraft{
			{Day: -7, Segment: "pre_webinar", Purpose: "registration confirmation", Subject: "You are registered", Preheader: "Save the date", Body: "Thanks for registering. Here is what we will cover and how to join.", CTA: "Add to calendar"},
			{Day: -1, Segment: "pre_webinar", Purpose: "reminder", Subject: "Starting tomorrow", Preheader: "Your seat is ready", Body: "A short reminder with the joining link and one question to think about.", CTA: "Join link"},
			{Day: 0, Segment: "pre_webinar", Purpose: "last reminder", Subject: "We start in one hour", Preheader: "See you soon", Body: "We go live in one hour. Bring a notebook.", CTA: "Join now"},
			{Day: 1, Segment: "post_webinar_attendees", Purpose: "thank you and replay", Subject: "Thanks for joining", Preheader: "Replay inside", Body: "Thanks for attending. Here is the replay and a summary of the three secrets.", CTA: "Watch replay"},
			{Day: 3, Segment: "post_webinar_attendees", Purpose: "offer reminder", Subject: "The offer closes soon", Preheader: "A quick recap", Body: "A recap of the offer and the deadline.", CTA: "See the offer"},
			{Day: 1, Segment: "post_webinar_no_shows", Purpose: "replay offer", Subject: "You missed it, here is the replay", Preheader: "Available for a short time", Body: "We missed you. The replay is available for a limited period.", CTA: "Watch replay"},
			{Day: 3, Segment: "post_webinar_no_shows", Purpose: "last chance", Subject: "Replay comes down tomorrow", Preheader: "Final reminder", Body: "The replay is removed tomorrow. Here are the key takeaways.", CTA: "Watch now"},
		},
		StrategyNotes: "Placeholder sequence. Keep one call to action per email and split follow-ups by attendance.",
	}
}
