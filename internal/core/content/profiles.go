package content

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/webinar-pipeline/internal/core/domain"
)

const DefaultProfileName = "english-v1"

var (
	hypeForbidden = []string{
		"amazing", "incredible", "revolutionary", "game-changing", "life-changing",
		"groundbreaking", "mind-blowing", "unbelievable", "phenomenal", "extraordinary",
		"guaranteed", "instant results", "overnight success", "miracle", "magic",
		"secret formula", "hidden trick", "ultimate solution", "perfect system",
		"act now", "limited time only", "don't miss out", "last chance",
		"exclusive offer", "once in a lifetime",
		"insane", "crazy", "epic", "massive", "huge gains", "explosive growth",
		"never fail", "always works", "100% guaranteed", "risk-free",
		"no effort required", "effortless",
	}
	superlativeWarnings = []string{
		"best", "greatest", "ultimate", "perfect", "easiest", "fastest",
		"most powerful", "most effective", "number one", "#1",
	}
	evidenceIndicators = []string{
		"proven", "tested", "documented", "research shows", "studies indicate",
		"evidence suggests", "data shows", "results demonstrate",
		"practical", "realistic", "achievable", "structured", "systematic",
		"professional", "trustworthy", "reliable", "consistent",
	}
	standardSlideSections = []string{"intro", "teaching", "secrets", "transition", "offer"}
	standardEmailSegments = []string{"pre_webinar", "post_webinar_attendees", "post_webinar_no_shows"}
)

func builtinProfiles() []domain.ContentProfile {
	return []domain.ContentProfile{
		{
			Name:         "english-v1",
			Language:     "en",
			SystemPrompt: "You are a webinar marketing strategist. Write clear, credible copy for coaches and mentors.",
			Tone: domain.ToneGuardrails{
				Forbidden: []string{"guaranteed", "miracle", "overnight success", "100% guaranteed", "risk-free"},
				Warnings:  superlativeWarnings,
				Positive:  evidenceIndicators,
				PassScore: 6,
			},
			Template: domain.StructuralTemplate{
				ConceptCount:  3,
				SlideSections: standardSlideSections,
				EmailSegments: standardEmailSegments,
			},
		},
		{
			Name:     "norwegian",
			Language: "no",
			SystemPrompt: "Du er en norsk webinar-strateg. Skriv profesjonelt, nøkternt og troverdig. " +
				"Unngå amerikansk hype og overdrivelser.",
			Tone: domain.ToneGuardrails{
				Forbidden: hypeForbidden,
				Warnings:  superlativeWarnings,
				Positive:  evidenceIndicators,
				PassScore: 7,
			},
			Template: domain.StructuralTemplate{
				ConceptCount:  3,
				SlideSections: standardSlideSections,
				EmailSegments: standardEmailSegments,
			},
		},
		{
			Name:         "v2-standard",
			Language:     "en",
			SystemPrompt: "You are a senior webinar strategist. Follow the structure exactly and return valid JSON only.",
			Tone: domain.ToneGuardrails{
				Forbidden: hypeForbidden,
				Warnings:  superlativeWarnings,
				Positive:  evidenceIndicators,
				PassScore: 7,
			},
			Template: domain.StructuralTemplate{
				ConceptCount:  3,
				SlideSections: []string{"intro", "origin_story", "teaching", "secrets", "stack", "offer", "close"},
				EmailSegments: standardEmailSegments,
			},
		},
	}
}

// ProfileCatalog holds the content profiles selectable by name.
type ProfileCatalog struct {
	profiles map[string]domain.ContentProfile
}

func DefaultCatalog() *ProfileCatalog {
	c := &ProfileCatalog{profiles: make(map[string]domain.ContentProfile)}
	for _, p := range builtinProfiles() {
		c.profiles[p.Name] = p
	}
	return c
}

type catalogFile struct {
	Profiles []domain.ContentProfile `yaml:"profiles"`
}

// LoadCatalog returns the built-in profiles, extended or overridden by the YAML file at path.
// An empty path yields the built-ins only.
func LoadCatalog(path string) (*ProfileCatalog, error) {
	c := DefaultCatalog()
	if strings.TrimSpace(path) == "" {
		return c, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile catalog: %w", err)
	}
	if err := c.merge(raw); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *ProfileCatalog) merge(raw []byte) error {
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parse profile catalog: %w", err)
	}
	for _, p := range file.Profiles {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return domain.Invalid("load profile catalog", "profile without name")
		}
		p.Name = name
		if base, ok := c.profiles[name]; ok {
			p = overlayProfile(base, p)
		}
		if p.Template.ConceptCount <= 0 {
			p.Template.ConceptCount = 3
		}
		c.profiles[name] = p
	}
	return nil
}

func (c *ProfileCatalog) Get(name string) (domain.ContentProfile, error) {
	if strings.TrimSpace(name) == "" {
		name = DefaultProfileName
	}
	p, ok := c.profiles[name]
	if !ok {
		return domain.ContentProfile{}, domain.Invalid("get content profile", "unknown profile %q (known: %s)", name, strings.Join(c.Names(), ", "))
	}
	return p, nil
}

func (c *ProfileCatalog) Names() []string {
	names := make([]string, 0, len(c.profiles))
	for name := range c.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func overlayProfile(base, override domain.ContentProfile) domain.ContentProfile {
	out := base
	if override.Language != "" {
		out.Language = override.Language
	}
	if override.SystemPrompt != "" {
		out.SystemPrompt = override.SystemPrompt
	}
	if override.Tone.Forbidden != nil {
		out.Tone.Forbidden = override.Tone.Forbidden
	}
	if override.Tone.Warnings != nil {
		out.Tone.Warnings = override.Tone.Warnings
	}
	if override.Tone.Positive != nil {
		out.Tone.Positive = override.Tone.Positive
	}
	if override.Tone.PassScore > 0 {
		out.Tone.PassScore = override.Tone.PassScore
	}
	if override.Template.ConceptCount > 0 {
		out.Template.ConceptCount = override.Template.ConceptCount
	}
	if override.Template.SlideSections != nil {
		out.Template.SlideSections = override.Template.SlideSections
	}
	if override.Template.EmailSegments != nil {
		out.Template.EmailSegments = override.Template.EmailSegments
	}
	return out
}
