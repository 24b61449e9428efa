package service

import (
	"regexp"
	"strings"

	"github.com/Aman3189/soriva-backend-sub009/internal/models"
)

var codeFenceRe = regexp.MustCompile("```")

// codeKeywords signal programming content outside of fenced blocks.
var codeKeywords = []string{
	"function", "func ", "class ", "def ", "import ", "package ",
	"variable", "compile", "debug", "stack trace", "exception",
	"api", "endpoint", "sql", "query", "regex", "algorithm",
}

// technicalVocabulary is intentionally broad; a single hit is enough.
var technicalVocabulary = []string{
	"architecture", "microservice", "kubernetes", "database", "latency",
	"throughput", "concurrency", "distributed", "scalability", "optimize",
	"optimization", "refactor", "infrastructure", "protocol", "encryption",
	"pipeline", "schema", "benchmark", "profiling", "idempotent",
}

// analysisPhrases signal an explicit analysis request.
var analysisPhrases = []string{
	"analyze", "analyse", "compare", "evaluate", "pros and cons",
	"trade-off", "tradeoff", "break down", "step by step", "in depth",
	"explain why", "root cause", "deep dive",
}

// ComplexityClassifier buckets message text into one of five tiers using
// cheap lexical heuristics. Pure and deterministic; no external calls.
type ComplexityClassifier struct{}

// NewComplexityClassifier creates a ComplexityClassifier.
func NewComplexityClassifier() *ComplexityClassifier {
	return &ComplexityClassifier{}
}

// Classify applies the tier rules in priority order:
//
//	<=5 words, no code/analysis signal        -> CASUAL
//	code + technical + >100 words             -> EXPERT
//	(code && >50 words) or (analysis && tech) -> COMPLEX
//	code or analysis or >50 words             -> MEDIUM
//	question or <=20 words                    -> SIMPLE
//	otherwise                                 -> MEDIUM
func (c *ComplexityClassifier) Classify(text string) models.Complexity {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return models.ComplexityCasual
	}

	lower := strings.ToLower(trimmed)
	wordCount := len(strings.Fields(trimmed))

	hasCode := codeFenceRe.MatchString(text) || containsAny(lower, codeKeywords)
	hasTechnical := containsAny(lower, technicalVocabulary)
	hasAnalysis := containsAny(lower, analysisPhrases)
	isQuestion := strings.HasSuffix(trimmed, "?")

	if wordCount <= 5 && !hasCode && !hasAnalysis {
		return models.ComplexityCasual
	}
	if hasCode && hasTechnical && wordCount > 100 {
		return models.ComplexityExpert
	}
	if (hasCode && wordCount > 50) || (hasAnalysis && hasTechnical) {
		return models.ComplexityComplex
	}
	if hasCode || hasAnalysis || wordCount > 50 {
		return models.ComplexityMedium
	}
	if isQuestion || wordCount <= 20 {
		return models.ComplexitySimple
	}
	return models.ComplexityMedium
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}
