package app

import (
	"math"
	"strings"
	"testing"

	"ideaverse/models"
)

func TestWeightedScore(t *testing.T) {
	s := models.Solution{Effectiveness: 8, Feasibility: 7, Sustainability: 6}
	got := WeightedScore(s)
	want := 0.5*8 + 0.3*7 + 0.2*6
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("got %f, want %f", got, want)
	}
}

func TestSummarizeScores(t *testing.T) {
	solutions := []models.Solution{
		{ID: 1, WeightedScore: 6.0, Effectiveness: 6, Feasibility: 6},
		{ID: 2, WeightedScore: 8.0, Effectiveness: 9, Feasibility: 7},
		{ID: 3, WeightedScore: 7.0, Effectiveness: 7, Feasibility: 8},
	}

	summary, err := SummarizeScores(solutions)
	if err != nil {
		t.Fatalf("SummarizeScores failed: %v", err)
	}
	if summary.Count != 3 {
		t.Errorf("count: got %d", summary.Count)
	}
	if math.Abs(summary.Mean-7.0) > 1e-9 {
		t.Errorf("mean: got %f", summary.Mean)
	}
	if math.Abs(summary.Median-7.0) > 1e-9 {
		t.Errorf("median: got %f", summary.Median)
	}
	if summary.BestSolutionID != 2 {
		t.Errorf("best: got %d", summary.BestSolutionID)
	}
	if summary.Min != 6.0 || summary.Max != 8.0 {
		t.Errorf("range: got [%f, %f]", summary.Min, summary.Max)
	}
	if summary.StdDev <= 0 {
		t.Errorf("stddev should be positive, got %f", summary.StdDev)
	}
}

func TestSummarizeScoresEmpty(t *testing.T) {
	if _, err := SummarizeScores(nil); err == nil {
		t.Fatal("expected error for empty solution set")
	}
}

func TestSummarizeScoresSingleSolution(t *testing.T) {
	summary, err := SummarizeScores([]models.Solution{{ID: 1, WeightedScore: 5}})
	if err != nil {
		t.Fatalf("SummarizeScores failed: %v", err)
	}
	if summary.StdDev != 0 || summary.EffFeasCorrelation != 0 {
		t.Errorf("single-element stats should stay zero: %+v", summary)
	}
}

func TestCompressCardsTruncatesFields(t *testing.T) {
	long := strings.Repeat("x", 300)
	cards := []models.AnalysisCard{
		{ID: 1, Dimension: "Scope", Status: models.CardCompleted,
			Phenomenon: long, Cause: "short", Impact: "i", HiddenFactors: "h"},
		{ID: 2, Dimension: "Skipped", Status: models.CardPending},
	}

	got := compressCards(cards)
	if strings.Contains(got, "Skipped") {
		t.Error("pending cards must not travel to the report prompt")
	}
	if !strings.Contains(got, strings.Repeat("x", 200)+"...") {
		t.Error("long fields should truncate to 200 characters plus ellipsis")
	}
	if strings.Contains(got, strings.Repeat("x", 201)) {
		t.Error("field exceeded the truncation limit")
	}
	if !strings.Contains(got, "Cause: short") {
		t.Error("short fields should pass through untouched")
	}
}
