package domain

// ContentProfile parameterizes prompts, tone checks and output shape for one
// market or house style.
type ContentProfile struct {
	Name         string             `json:"name" yaml:"name"`
	Language     string             `json:"language" yaml:"language"`
	SystemPrompt string             `json:"system_prompt" yaml:"system_prompt"`
	Tone         ToneGuardrails     `json:"tone" yaml:"tone"`
	Template     StructuralTemplate `json:"template" yaml:"template"`
}

type ToneGuardrails struct {
	Forbidden []string `json:"forbidden" yaml:"forbidden"`
	Warnings  []string `json:"warnings" yaml:"warnings"`
	Positive  []string `json:"positive" yaml:"positive"`
	PassScore int      `json:"pass_score" yaml:"pass_score"`
}

type StructuralTemplate struct {
	ConceptCount  int      `json:"concept_count" yaml:"concept_count"`
	SlideSections []string `json:"slide_sections" yaml:"slide_sections"`
	EmailSegments []string `json:"email_segments" yaml:"email_segments"`
}

type ToneFinding struct {
	Phrase  string `json:"phrase" bson:"phrase"`
	Context string `json:"context,omitempty" bson:"context,omitempty"`
}

type ToneReport struct {
	Score       int           `json:"score" bson:"score"`
	Passed      bool          `json:"passed" bson:"passed"`
	Violations  []ToneFinding `json:"violations" bson:"violations"`
	Warnings    []ToneFinding `json:"warnings" bson:"warnings"`
	Positives   []string      `json:"positives" bson:"positives"`
	Suggestions string        `json:"suggestions" bson:"suggestions"`
}
