package app

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"ideaverse/ai"
	"ideaverse/domain/catalog"
	"ideaverse/models"
)

// Stage 2: thinking-model selection and per-dimension analysis.
//
// Operations invoked without their prerequisite session state (no active
// session, unknown card id, no completed cards) are silent no-ops: the UI
// gates affordances on state, so such calls are stale clicks, not errors.

// maxConcurrentAnalyses bounds the card fan-out in AnalyzeAllDimensions
const maxConcurrentAnalyses = 3

// RecommendModels asks the AI which thinking models suit the problem. A
// failed call leaves any previously stored recommendation untouched; only
// the error is recorded.
func (e *Engine) RecommendModels(ctx context.Context) (*models.RecommendModelsResponse, error) {
	e.mu.Lock()
	if e.current == nil {
		e.mu.Unlock()
		return nil, nil
	}
	problem := e.current.Problem
	answers := formatAnswers(e.current.InterviewAnswers)
	e.mu.Unlock()

	response, err := e.callAI(ctx, "recommend_models_system",
		map[string]string{
			"PROBLEM": problem,
			"ANSWERS": answers,
			"MODELS":  catalog.PromptList(),
		},
		"Recommend thinking models for: "+problem,
		3000)
	if err != nil {
		return nil, err
	}

	var parsed models.RecommendModelsResponse
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
	e.current.RecommendedModels = parsed.RecommendedModels
	e.current.ModelReasons = parsed.Reasons
	session := e.current.Clone()
	e.mu.Unlock()

	if err := e.saveSession(ctx, session); err != nil {
		e.failAI(err)
		return nil, err
	}
	e.completeAI()
	return &parsed, nil
}

// GenerateAnalysisDimensions selects a thinking model and asks the AI for
// the analysis dimensions it implies. Cards start pending with no content.
func (e *Engine) GenerateAnalysisDimensions(ctx context.Context, modelID string) ([]models.AnalysisCard, error) {
	e.mu.Lock()
	if e.current == nil {
		e.mu.Unlock()
		return nil, nil
	}
	problem := e.current.Problem
	e.mu.Unlock()

	model, known := catalog.Get(modelID)
	modelName := modelID
	if known {
		modelName = model.Name
	}

	response, err := e.callAI(ctx, "analysis_dimensions_system",
		map[string]string{"PROBLEM": problem, "MODEL": modelName},
		fmt.Sprintf("Propose analysis dimensions for %q using the %s framework.", problem, modelName),
		2000)
	if err != nil {
		return nil, err
	}

	doc, err := ai.Parse(response)
	if err != nil {
		e.failAI(err)
		return nil, err
	}
	parsed := models.NormalizeDimensions(doc)
	if parsed.ThinkingModel != "" {
		modelName = parsed.ThinkingModel
	}

	cards := make(models.CardList, 0, len(parsed.Dimensions))
	for i, dim := range parsed.Dimensions {
		id := dim.ID
		if id == 0 {
			id = i + 1
		}
		cards = append(cards, models.AnalysisCard{
			ID:        id,
			Dimension: dim.Dimension,
			Icon:      dim.Icon,
			Status:    models.CardPending,
		})
	}

	e.mu.Lock()
	if e.current == nil {
		e.mu.Unlock()
		e.abandonAI()
		return nil, nil
	}
	e.current.ThinkingModel = modelName
	e.current.ThinkingModelID = modelID
	e.current.AnalysisCards = cards
	session := e.current.Clone()
	e.mu.Unlock()

	if err := e.saveSession(ctx, session); err != nil {
		e.failAI(err)
		return nil, err
	}
	e.completeAI()
	log.Printf("[Engine] generated %d analysis dimensions (%s) for %s", len(cards), modelName, session.ID)
	return cards, nil
}

// AnalyzeDimension fills in one analysis card. The card is marked analyzing
// for the duration of the call; a failed call rolls it back to pending with
// its content untouched. Merging is always by card id.
func (e *Engine) AnalyzeDimension(ctx context.Context, cardID int) error {
	e.mu.Lock()
	if e.current == nil {
		e.mu.Unlock()
		return nil
	}
	card := e.current.CardByID(cardID)
	if card == nil {
		e.mu.Unlock()
		return nil
	}
	card.Status = models.CardAnalyzing
	problem := e.current.Problem
	modelName := e.current.ThinkingModel
	dimension := card.Dimension
	session := e.current.Clone()
	e.mu.Unlock()

	e.saveSession(ctx, session)
	e.publish("card_analyzing", session.ID)

	content, err := e.analyzeCardContent(ctx, "analysis_card_system", 3000, map[string]string{
		"PROBLEM":   problem,
		"MODEL":     modelName,
		"DIMENSION": dimension,
	})

	e.mu.Lock()
	if e.current == nil {
		e.mu.Unlock()
		if err == nil {
			e.abandonAI()
		}
		return err
	}
	card = e.current.CardByID(cardID)
	if card != nil {
		if err != nil {
			card.Status = models.CardPending
		} else {
			content.MergeInto(card)
			card.Status = models.CardCompleted
		}
	}
	session = e.current.Clone()
	e.mu.Unlock()

	if saveErr := e.saveSession(ctx, session); saveErr != nil && err == nil {
		e.failAI(saveErr)
		return saveErr
	}
	if err != nil {
		return err
	}
	e.completeAI()
	e.publish("card_completed", session.ID)
	return nil
}

// AnalyzeAllDimensions runs AnalyzeDimension for every pending card with
// bounded concurrency. Card outcomes are independent: one failed card never
// cancels its siblings, and the first error is reported after all finish.
func (e *Engine) AnalyzeAllDimensions(ctx context.Context) error {
	e.mu.Lock()
	if e.current == nil {
		e.mu.Unlock()
		return nil
	}
	var pending []int
	for _, card := range e.current.AnalysisCards {
		if card.Status == models.CardPending {
			pending = append(pending, card.ID)
		}
	}
	e.mu.Unlock()

	if len(pending) == 0 {
		return nil
	}

	sem := semaphore.NewWeighted(maxConcurrentAnalyses)
	g, gctx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	var firstErr error

	for _, id := range pending {
		cardID := id
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			if err := e.AnalyzeDimension(gctx, cardID); err != nil {
				log.Printf("[Engine] card %d analysis failed: %v", cardID, err)
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
			// Failures stay per-card; never cancel the group
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	// Concurrent per-card saves can land out of order; one final
	// write-through makes the persisted record authoritative.
	e.mu.Lock()
	session := e.current.Clone()
	e.mu.Unlock()
	if session != nil {
		if err := e.saveSession(ctx, session); err != nil {
			return err
		}
	}
	return firstErr
}

// ReanalyzeCard regenerates the content of an already-completed card,
// optionally steered by user feedback. The card shows analyzing while the
// call runs, but a failure puts it back to completed with its previous
// content intact, since it is being refined, not first-populated.
func (e *Engine) ReanalyzeCard(ctx context.Context, cardID int, feedback string) error {
	e.mu.Lock()
	if e.current == nil {
		e.mu.Unlock()
		return nil
	}
	card := e.current.CardByID(cardID)
	if card == nil {
		e.mu.Unlock()
		return nil
	}
	card.Status = models.CardAnalyzing
	problem := e.current.Problem
	modelName := e.current.ThinkingModel
	dimension := card.Dimension
	session := e.current.Clone()
	e.mu.Unlock()

	e.saveSession(ctx, session)
	e.publish("card_analyzing", session.ID)

	content, err := e.analyzeCardContent(ctx, "reanalyze_card_system", 4000, map[string]string{
		"PROBLEM":   problem,
		"MODEL":     modelName,
		"DIMENSION": dimension,
		"FEEDBACK":  feedback,
	})

	e.mu.Lock()
	if e.current == nil {
		e.mu.Unlock()
		if err == nil {
			e.abandonAI()
		}
		return err
	}
	card = e.current.CardByID(cardID)
	if card != nil {
		if err == nil {
			content.MergeInto(card)
		}
		card.Status = models.CardCompleted
	}
	session = e.current.Clone()
	e.mu.Unlock()

	if saveErr := e.saveSession(ctx, session); saveErr != nil && err == nil {
		e.failAI(saveErr)
		return saveErr
	}
	if err != nil {
		return err
	}
	e.completeAI()
	e.publish("card_completed", session.ID)
	return nil
}

// analyzeCardContent runs one card-content completion and parses the result
func (e *Engine) analyzeCardContent(ctx context.Context, promptName string, maxTokens int, variables map[string]string) (models.CardContent, error) {
	response, err := e.callAI(ctx, promptName, variables,
		fmt.Sprintf("Analyze the %q dimension of: %s", variables["DIMENSION"], variables["PROBLEM"]),
		maxTokens)
	if err != nil {
		return models.CardContent{}, err
	}

	var content models.CardContent
	if err := ai.ParseInto(response, &content); err != nil {
		e.failAI(err)
		return models.CardContent{}, err
	}
	return content, nil
}

// UpdateAnalysisCard applies a user edit to a card's content fields. Local
// only; identity fields and status are not editable here.
func (e *Engine) UpdateAnalysisCard(ctx context.Context, cardID int, content models.CardContent) error {
	e.mu.Lock()
	if e.current == nil {
		e.mu.Unlock()
		return nil
	}
	card := e.current.CardByID(cardID)
	if card == nil {
		e.mu.Unlock()
		return nil
	}
	content.MergeInto(card)
	session := e.current.Clone()
	e.mu.Unlock()

	return e.saveSession(ctx, session)
}

// DeleteAnalysisCard removes a card from the session
func (e *Engine) DeleteAnalysisCard(ctx context.Context, cardID int) error {
	e.mu.Lock()
	if e.current == nil {
		e.mu.Unlock()
		return nil
	}
	cards := e.current.AnalysisCards
	found := false
	for i := range cards {
		if cards[i].ID == cardID {
			e.current.AnalysisCards = append(cards[:i], cards[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		e.mu.Unlock()
		return nil
	}
	session := e.current.Clone()
	e.mu.Unlock()

	return e.saveSession(ctx, session)
}

// GenerateDeepAnalysisReport synthesizes the completed cards into a markdown
// report. The response is stored verbatim; report text never goes through
// the JSON parser.
func (e *Engine) GenerateDeepAnalysisReport(ctx context.Context) (string, error) {
	e.mu.Lock()
	if e.current == nil {
		e.mu.Unlock()
		return "", nil
	}
	problem := e.current.Problem
	modelName := e.current.ThinkingModel
	cardsSummary := compressCards(e.current.AnalysisCards)
	e.mu.Unlock()

	if cardsSummary == "" {
		return "", nil
	}

	response, err := e.callAI(ctx, "analysis_report_system",
		map[string]string{"PROBLEM": problem, "MODEL": modelName, "CARDS": cardsSummary},
		"Write the deep analysis report.",
		4000)
	if err != nil {
		return "", err
	}

	e.mu.Lock()
	if e.current == nil {
		e.mu.Unlock()
		e.abandonAI()
		return "", nil
	}
	e.current.DeepAnalysisReport = response
	session := e.current.Clone()
	e.mu.Unlock()

	if err := e.saveSession(ctx, session); err != nil {
		e.failAI(err)
		return "", err
	}
	e.completeAI()
	e.publish("report_ready", session.ID)
	return response, nil
}

// cardFieldLimit caps each content field sent to the report prompt
const cardFieldLimit = 200

// compressCards renders completed cards for the report prompt. Only the
// dimension and the four content fields travel, each truncated so the
// combined prompt stays inside the model's context comfortably.
func compressCards(cards []models.AnalysisCard) string {
	var b strings.Builder
	for _, card := range cards {
		if card.Status != models.CardCompleted || !card.HasContent() {
			continue
		}
		fmt.Fprintf(&b, "## %s\n", card.Dimension)
		fmt.Fprintf(&b, "- Phenomenon: %s\n", truncate(card.Phenomenon, cardFieldLimit))
		fmt.Fprintf(&b, "- Cause: %s\n", truncate(card.Cause, cardFieldLimit))
		fmt.Fprintf(&b, "- Impact: %s\n", truncate(card.Impact, cardFieldLimit))
		fmt.Fprintf(&b, "- Hidden factors: %s\n\n", truncate(card.HiddenFactors, cardFieldLimit))
	}
	return strings.TrimSpace(b.String())
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
