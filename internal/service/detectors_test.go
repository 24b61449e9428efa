//go:build !integration && !e2e

package service

import (
	"testing"

	"github.com/Aman3189/soriva-backend-sub009/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestSpecializationDetect(t *testing.T) {
	d := NewSpecializationDetector()

	tests := []struct {
		name    string
		text    string
		context string
		want    models.Specialization
	}{
		{name: "no signal", text: "hello there", want: ""},
		{name: "code keyword", text: "help me debug this crash", want: models.SpecCode},
		{name: "business keyword", text: "draft our quarterly revenue summary", want: models.SpecBusiness},
		{name: "writing keyword", text: "proofread my essay please", want: models.SpecWriting},
		{name: "reasoning keyword", text: "prove this theorem", want: models.SpecReasoning},
		{name: "context contributes", text: "continue", context: "we were fixing a stack trace", want: models.SpecCode},
		{name: "code wins over writing when both match", text: "rewrite this function", want: models.SpecCode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.Detect(tt.text, tt.context))
		})
	}
}

func TestHighStakesDetect(t *testing.T) {
	d := NewHighStakesDetector()

	assert.True(t, d.Detect("my lawyer sent a legal notice", false))
	assert.True(t, d.Detect("I need advice about my MEDICATION", false))
	assert.True(t, d.Detect("prep notes for the board meeting", false))
	assert.False(t, d.Detect("what should I cook tonight", false))
	// Caller flag always wins.
	assert.True(t, d.Detect("what should I cook tonight", true))
}
