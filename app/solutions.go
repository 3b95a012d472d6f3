package app

import (
	"context"
	"fmt"
	"log"

	"ideaverse/ai"
	"ideaverse/domain/core"
	"ideaverse/internal/errors"
	"ideaverse/models"
)

// Stage 3: solution generation and the mind map. As in stage 2, operations
// missing their prerequisite state are silent no-ops.

// GenerateSolutions asks the AI for candidate solutions plus a best-pick
// recommendation, grounded on the deep analysis report. Solution scores
// arrive pre-computed and are stored as delivered.
func (e *Engine) GenerateSolutions(ctx context.Context) (*models.SolutionsResponse, error) {
	e.mu.Lock()
	if e.current == nil || e.current.DeepAnalysisReport == "" {
		e.mu.Unlock()
		return nil, nil
	}
	problem := e.current.Problem
	modelName := e.current.ThinkingModel
	report := e.current.DeepAnalysisReport
	e.mu.Unlock()

	response, err := e.callAI(ctx, "solutions_system",
		map[string]string{"PROBLEM": problem, "MODEL": modelName, "REPORT": report},
		"Generate solutions for: "+problem,
		8000)
	if err != nil {
		return nil, err
	}

	var parsed models.SolutionsResponse
	if err := ai.ParseInto(response, &parsed); err != nil {
		e.failAI(err)
		return nil, err
	}

	e.mu.Lock()
	if e.current == nil {
		e.mu.Unlock()
		e.abandonAI()
		return nil, nil
	}
	e.current.Solutions = parsed.Solutions
	e.current.Recommendation = parsed.Recommendation
	session := e.current.Clone()
	e.mu.Unlock()

	if err := e.saveSession(ctx, session); err != nil {
		e.failAI(err)
		return nil, err
	}
	e.completeAI()
	log.Printf("[Engine] generated %d solutions for %s", len(parsed.Solutions), session.ID)
	e.publish("solutions_ready", session.ID)
	return &parsed, nil
}

// UpdateSolution merges a user edit into the matching solution by id.
// Local only; no AI call.
func (e *Engine) UpdateSolution(ctx context.Context, solution models.Solution) error {
	e.mu.Lock()
	if e.current == nil {
		e.mu.Unlock()
		return nil
	}
	existing := e.current.SolutionByID(solution.ID)
	if existing == nil {
		e.mu.Unlock()
		return nil
	}
	*existing = solution
	session := e.current.Clone()
	e.mu.Unlock()

	return e.saveSession(ctx, session)
}

// RegenerateSolution replaces one solution with a freshly generated
// alternative steered by the user's feedback. The replacement forcibly
// keeps the original id, whatever id the model assigned, so references
// stay stable.
func (e *Engine) RegenerateSolution(ctx context.Context, solutionID int, feedback string) (*models.Solution, error) {
	e.mu.Lock()
	if e.current == nil {
		e.mu.Unlock()
		return nil, nil
	}
	existing := e.current.SolutionByID(solutionID)
	if existing == nil {
		e.mu.Unlock()
		return nil, nil
	}
	problem := e.current.Problem
	previousName := existing.Name
	report := e.current.DeepAnalysisReport
	e.mu.Unlock()

	response, err := e.callAI(ctx, "regenerate_solution_system",
		map[string]string{
			"PROBLEM":  problem,
			"PREVIOUS": previousName,
			"FEEDBACK": feedback,
			"REPORT":   report,
		},
		fmt.Sprintf("Generate an alternative to the solution %q.", previousName),
		4000)
	if err != nil {
		return nil, err
	}

	var replacement models.Solution
	if err := ai.ParseInto(response, &replacement); err != nil {
		e.failAI(err)
		return nil, err
	}
	replacement.ID = solutionID

	e.mu.Lock()
	if e.current == nil {
		e.mu.Unlock()
		e.abandonAI()
		return nil, nil
	}
	existing = e.current.SolutionByID(solutionID)
	if existing == nil {
		e.mu.Unlock()
		e.abandonAI()
		return nil, nil
	}
	*existing = replacement
	session := e.current.Clone()
	e.mu.Unlock()

	if err := e.saveSession(ctx, session); err != nil {
		e.failAI(err)
		return nil, err
	}
	e.completeAI()
	return &replacement, nil
}

// GenerateMindMap produces the markdown mind map of the whole session. The
// call is gated on a content hash over (problem, cards, solutions): when the
// stored map was built from identical content, the cached map is returned
// without an AI call. The hash is re-checked under the lock before the final
// write so a concurrent content change invalidates a stale result.
func (e *Engine) GenerateMindMap(ctx context.Context) (string, error) {
	e.mu.Lock()
	if e.current == nil {
		e.mu.Unlock()
		return "", nil
	}
	problem := e.current.Problem
	hash := core.ContentHash(e.current.Problem, e.current.AnalysisCards, e.current.Solutions)
	if e.current.MindMap != "" && e.current.MindMapHash == hash.String() {
		cached := e.current.MindMap
		e.mu.Unlock()
		log.Printf("[Engine] mind map unchanged, serving cached copy")
		return cached, nil
	}
	cardsSummary := compressCards(e.current.AnalysisCards)
	solutionsSummary := formatSolutionNames(e.current.Solutions)
	e.mu.Unlock()

	response, err := e.callAI(ctx, "mindmap_system",
		map[string]string{"PROBLEM": problem, "CARDS": cardsSummary, "SOLUTIONS": solutionsSummary},
		"Generate the mind map.",
		8000)
	if err != nil {
		return "", err
	}

	e.mu.Lock()
	if e.current == nil {
		e.mu.Unlock()
		e.abandonAI()
		return "", nil
	}
	currentHash := core.ContentHash(e.current.Problem, e.current.AnalysisCards, e.current.Solutions)
	if !currentHash.Equals(hash) {
		e.mu.Unlock()
		err := errors.InvalidInput("session content changed during mind map generation")
		e.failAI(err)
		return "", err
	}
	e.current.MindMap = response
	e.current.MindMapHash = hash.String()
	session := e.current.Clone()
	e.mu.Unlock()

	if err := e.saveSession(ctx, session); err != nil {
		e.failAI(err)
		return "", err
	}
	e.completeAI()
	e.publish("mindmap_ready", session.ID)
	return response, nil
}

func formatSolutionNames(solutions []models.Solution) string {
	out := ""
	for _, s := range solutions {
		out += fmt.Sprintf("- %s (score %.2f): %s\n", s.Name, s.WeightedScore, s.Description)
	}
	if out == "" {
		return "(no solutions yet)"
	}
	return out
}
