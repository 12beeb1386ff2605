package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iammorganparry/circle/internal/models"
)

func TestScopeArg(t *testing.T) {
	assert.Equal(t, models.ScopeAll, scopeArg(nil))
	assert.Equal(t, "cohort-002", scopeArg([]string{"cohort-002"}))
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	printReport(&buf, &models.CohortReport{
		Scope:                 "cohort-001",
		Participants:          6,
		Sessions:              3,
		CompletionRatePercent: 33,
		PreAverages:           models.Averages{Stress: 7.5},
		PostAverages:          models.Averages{Stress: 4},
		Deltas:                models.Deltas{StressChange: -3.5},
	})
	out := buf.String()
	assert.Contains(t, out, "cohort-001")
	assert.Contains(t, out, "Completion: 33%")
	assert.Contains(t, out, "-3.5")
}

func TestPrintDirectory(t *testing.T) {
	var buf bytes.Buffer
	printDirectory(&buf, &models.DirectoryResponse{
		Participants: []models.Participant{{Name: "Nora Eagleton", Email: "nora@example.org", CohortID: "cohort-001", Status: models.StatusCompleted}},
		Total:        9,
	})
	out := buf.String()
	assert.Contains(t, out, "Nora Eagleton")
	assert.Contains(t, out, "1 of 9 participants")
}

func TestPrintNarrativeMarksFallback(t *testing.T) {
	var buf bytes.Buffer
	printNarrative(&buf, &models.NarrativeResponse{Text: "The circle holds.", Fallback: true})
	assert.Contains(t, buf.String(), "fallback")
}
