package domain

// Secret is one belief-shifting story beat of a concept.
type Secret struct {
	Assumption     string `json:"assumption" bson:"assumption"`
	Story          string `json:"story" bson:"story"`
	Belief         string `json:"belief" bson:"belief"`
	Transformation string `json:"transformation" bson:"transformation"`
}

// ConceptRecord is the single in-memory shape of a webinar concept.
// Records arriving from the generator or from storage are normalized into it once.
type ConceptRecord struct {
	Title           string              `json:"title" bson:"title"`
	BigIdea         string              `json:"big_idea" bson:"big_idea"`
	Hook            string              `json:"hook" bson:"hook"`
	StructurePoints []string            `json:"structure_points" bson:"structure_points"`
	Secrets         []Secret            `json:"secrets" bson:"secrets"`
	Mechanism       string              `json:"mechanism" bson:"mechanism"`
	ValueAnchor     map[string][]string `json:"value_anchor" bson:"value_anchor"`
	BonusIdeas      []string            `json:"bonus_ideas" bson:"bonus_ideas"`
	CTASentence     string              `json:"cta_sentence" bson:"cta_sentence"`
	Promises        []string            `json:"promises" bson:"promises"`
	EvaluationScore *int                `json:"evaluation_score,omitempty" bson:"evaluation_score,omitempty"`
	EvaluationNotes string              `json:"evaluation_notes,omitempty" bson:"evaluation_notes,omitempty"`
}

// Normalize replaces nil collections with empty ones so the record always
// serializes with the full field set.
func (c *ConceptRecord) Normalize() {
	if c.StructurePoints == nil {
		c.StructurePoints = []string{}
	}
	if c.Secrets == nil {
		c.Secrets = []Secret{}
	}
	if c.ValueAnchor == nil {
		c.ValueAnchor = map[string][]string{}
	}
	if c.BonusIdeas == nil {
		c.BonusIdeas = []string{}
	}
	if c.Promises == nil {
		c.Promises = []string{}
	}
}

func (c ConceptRecord) Clone() ConceptRecord {
	out := c
	out.StructurePoints = cloneStrings(c.StructurePoints)
	out.Secrets = append([]Secret(nil), c.Secrets...)
	out.BonusIdeas = cloneStrings(c.BonusIdeas)
	out.Promises = cloneStrings(c.Promises)
	if c.ValueAnchor != nil {
		out.ValueAnchor = make(map[string][]string, len(c.ValueAnchor))
		for k, v := range c.ValueAnchor {
			out.ValueAnchor[k] = cloneStrings(v)
		}
	}
	if c.EvaluationScore != nil {
		score := *c.EvaluationScore
		out.EvaluationScore = &score
	}
	out.Normalize()
	return out
}

type Slide struct {
	SlideNumber int    `json:"slide_number" bson:"slide_number"`
	Title       string `json:"title" bson:"title"`
	Description string `json:"description" bson:"description"`
	Visual      string `json:"visual" bson:"visual"`
	Section     string `json:"section" bson:"section"`
}

type EmailDraft struct {
	Day          int    `json:"day" bson:"day"`
	Segment      string `json:"segment" bson:"segment"`
	Purpose      string `json:"purpose" bson:"purpose"`
	Subject      string `json:"subject" bson:"subject"`
	Preheader    string `json:"preheader" bson:"preheader"`
	Body         string `json:"body" bson:"body"`
	CTA          string `json:"cta" bson:"cta"`
	ToneAnalysis string `json:"tone_analysis,omitempty" bson:"tone_analysis,omitempty"`
}

type EmailPlan struct {
	Timeline      string       `json:"timeline" bson:"timeline"`
	Emails        []EmailDraft `json:"emails" bson:"emails"`
	StrategyNotes string       `json:"strategy_notes" bson:"strategy_notes"`
}

// ContentBody is the structured payload of one content type. Exactly one of
// Concepts, Slides or Emails is populated, matching Kind.
type ContentBody struct {
	Kind     ContentType     `json:"kind" bson:"kind"`
	Concepts []ConceptRecord `json:"concepts,omitempty" bson:"concepts,omitempty"`
	Slides   []Slide         `json:"slides,omitempty" bson:"slides,omitempty"`
	Emails   *EmailPlan      `json:"emails,omitempty" bson:"emails,omitempty"`
}

// Len reports the number of records the body carries.
func (b *ContentBody) Len() int {
	if b == nil {
		return 0
	}
	switch b.Kind {
	case ContentConcept:
		return len(b.Concepts)
	case ContentStructure:
		return len(b.Slides)
	case ContentEmailSequence:
		if b.Emails == nil {
			return 0
		}
		return len(b.Emails.Emails)
	default:
		return 0
	}
}

func (b *ContentBody) IsEmpty() bool {
	return b.Len() == 0
}

func (b *ContentBody) Clone() *ContentBody {
	if b == nil {
		return nil
	}
	out := &ContentBody{Kind: b.Kind}
	if b.Concepts != nil {
		out.Concepts = make([]ConceptRecord, 0, len(b.Concepts))
		for _, c := range b.Concepts {
			out.Concepts = append(out.Concepts, c.Clone())
		}
	}
	if b.Slides != nil {
		out.Slides = append([]Slide(nil), b.Slides...)
	}
	if b.Emails != nil {
		plan := *b.Emails
		plan.Emails = append([]EmailDraft(nil), b.Emails.Emails...)
		out.Emails = &plan
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
