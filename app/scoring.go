package app

import (
	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"ideaverse/internal/errors"
	"ideaverse/models"
)

// Solution score weights. Scores arrive from the generator already weighted;
// WeightedScore exists for local recomputation after user edits.
const (
	weightEffectiveness  = 0.5
	weightFeasibility    = 0.3
	weightSustainability = 0.2
)

// WeightedScore computes the composite score for a solution
func WeightedScore(s models.Solution) float64 {
	return weightEffectiveness*s.Effectiveness +
		weightFeasibility*s.Feasibility +
		weightSustainability*s.Sustainability
}

// ScoreSummary describes the score distribution across a solution set
type ScoreSummary struct {
	Count          int     `json:"count"`
	Mean           float64 `json:"mean"`
	Median         float64 `json:"median"`
	StdDev         float64 `json:"stdDev"`
	Min            float64 `json:"min"`
	Max            float64 `json:"max"`
	BestSolutionID int     `json:"bestSolutionId"`
	// Correlation between effectiveness and feasibility across the set;
	// zero when fewer than two solutions exist.
	EffFeasCorrelation float64 `json:"effFeasCorrelation"`
}

// SummarizeScores computes distribution statistics over weighted scores
func SummarizeScores(solutions []models.Solution) (*ScoreSummary, error) {
	if len(solutions) == 0 {
		return nil, errors.InvalidInput("no solutions to summarize")
	}

	scores := make([]float64, len(solutions))
	eff := make([]float64, len(solutions))
	feas := make([]float64, len(solutions))
	bestID := solutions[0].ID
	bestScore := solutions[0].WeightedScore
	for i, s := range solutions {
		scores[i] = s.WeightedScore
		eff[i] = s.Effectiveness
		feas[i] = s.Feasibility
		if s.WeightedScore > bestScore {
			bestScore = s.WeightedScore
			bestID = s.ID
		}
	}

	mean, err := stats.Mean(scores)
	if err != nil {
		return nil, errors.Wrap(err, "score mean")
	}
	median, err := stats.Median(scores)
	if err != nil {
		return nil, errors.Wrap(err, "score median")
	}
	min, _ := stats.Min(scores)
	max, _ := stats.Max(scores)

	summary := &ScoreSummary{
		Count:          len(solutions),
		Mean:           mean,
		Median:         median,
		Min:            min,
		Max:            max,
		BestSolutionID: bestID,
	}
	if len(solutions) > 1 {
		summary.StdDev = stat.StdDev(scores, nil)
		summary.EffFeasCorrelation = stat.Correlation(eff, feas, nil)
	}
	return summary, nil
}
