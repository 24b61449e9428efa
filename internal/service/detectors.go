package service

import (
	"regexp"
	"strings"

	"github.com/Aman3189/soriva-backend-sub009/internal/models"
)

// specializationSets maps each tag to its keyword set. Order matters:
// detection walks specializationOrder and the first set with a hit wins,
// so a message is never tagged with more than one specialization.
var specializationOrder = []models.Specialization{
	models.SpecCode,
	models.SpecBusiness,
	models.SpecWriting,
	models.SpecReasoning,
}

var specializationSets = map[models.Specialization][]string{
	models.SpecCode: {
		"code", "bug", "debug", "function", "compile", "deploy", "script",
		"typescript", "python", "golang", "javascript", "api", "sql",
		"refactor", "unit test", "stack trace", "repository",
	},
	models.SpecBusiness: {
		"revenue", "pricing", "market", "strategy", "roadmap", "pitch",
		"investor", "customer", "churn", "quarterly", "kpi", "go-to-market",
		"business plan", "competitor",
	},
	models.SpecWriting: {
		"essay", "blog", "poem", "story", "rewrite", "proofread", "draft",
		"headline", "copywriting", "tone", "newsletter", "caption",
		"paraphrase", "summarize this article",
	},
	models.SpecReasoning: {
		"prove", "theorem", "logic", "puzzle", "deduce", "probability",
		"calculate", "equation", "solve for", "step-by-step reasoning",
		"chess", "riddle",
	},
}

// SpecializationDetector tags messages with at most one domain specialization.
type SpecializationDetector struct{}

// NewSpecializationDetector creates a SpecializationDetector.
func NewSpecializationDetector() *SpecializationDetector {
	return &SpecializationDetector{}
}

// Detect scans the combined text and context. First matching category wins;
// the empty string means no tag.
func (d *SpecializationDetector) Detect(text, context string) models.Specialization {
	combined := strings.ToLower(text + " " + context)
	for _, tag := range specializationOrder {
		for _, kw := range specializationSets[tag] {
			if strings.Contains(combined, kw) {
				return tag
			}
		}
	}
	return ""
}

// highStakesRe matches legal, medical, financial, professional, urgency and
// stakeholder language that warrants bypassing cost-based filtering.
var highStakesRe = regexp.MustCompile(`(?i)\b(lawsuit|legal notice|court|contract dispute|compliance|regulator|diagnosis|symptom|medication|prescription|surgery|medical emergency|tax filing|audit|loan default|bankruptcy|investment loss|salary negotiation|termination|resignation letter|board meeting|urgent|deadline today|asap|ceo|cfo|shareholders?)\b`)

// HighStakesDetector flags requests whose consequences justify premium
// treatment regardless of budget pressure.
type HighStakesDetector struct{}

// NewHighStakesDetector creates a HighStakesDetector.
func NewHighStakesDetector() *HighStakesDetector {
	return &HighStakesDetector{}
}

// Detect ORs the regex scan with the caller-supplied flag.
func (d *HighStakesDetector) Detect(text string, callerFlag bool) bool {
	if callerFlag {
		return true
	}
	return highStakesRe.MatchString(text)
}
