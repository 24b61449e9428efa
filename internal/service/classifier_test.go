//go:build !integration && !e2e

package service

import (
	"strings"
	"testing"

	"github.com/Aman3189/soriva-backend-sub009/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	c := NewComplexityClassifier()

	longCodeReview := "Please review this service " + strings.Repeat("carefully and in detail ", 25) +
		"```go\nfunc main() {}\n``` the architecture needs work and we should optimize the hot path"

	tests := []struct {
		name string
		text string
		want models.Complexity
	}{
		{
			name: "empty string is casual",
			text: "",
			want: models.ComplexityCasual,
		},
		{
			name: "whitespace only is casual",
			text: "   \n\t ",
			want: models.ComplexityCasual,
		},
		{
			name: "short greeting is casual",
			text: "hi",
			want: models.ComplexityCasual,
		},
		{
			name: "five plain words are casual",
			text: "thanks a lot see you",
			want: models.ComplexityCasual,
		},
		{
			name: "five words with code signal escalate past casual",
			text: "debug this for me please",
			want: models.ComplexityMedium,
		},
		{
			name: "short question is simple",
			text: "what is the tallest mountain on Earth right now?",
			want: models.ComplexitySimple,
		},
		{
			name: "twenty plain words are simple",
			text: strings.Repeat("word ", 20),
			want: models.ComplexitySimple,
		},
		{
			name: "over fifty plain words are medium",
			text: strings.Repeat("word ", 60),
			want: models.ComplexityMedium,
		},
		{
			name: "analysis phrase alone is medium",
			text: "analyze the situation for me in detail please today",
			want: models.ComplexityMedium,
		},
		{
			name: "analysis plus technical vocabulary is complex",
			text: "analyze the latency of our pipeline and suggest improvements please",
			want: models.ComplexityComplex,
		},
		{
			name: "code signal with long prompt is complex",
			text: "debug this " + strings.Repeat("word ", 60),
			want: models.ComplexityComplex,
		},
		{
			name: "code plus technical plus long prompt is expert",
			text: longCodeReview,
			want: models.ComplexityExpert,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.text))
		})
	}
}

func TestClassifyDeterministic(t *testing.T) {
	c := NewComplexityClassifier()
	text := "analyze the latency of our pipeline and suggest improvements"
	first := c.Classify(text)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, c.Classify(text))
	}
}
