package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ideaverse/adapters/llm"
	"ideaverse/adapters/memory"
	"ideaverse/internal/errors"
	"ideaverse/models"
	"ideaverse/ports"
)

func newTestEngine(t *testing.T) (*Engine, *llm.MockStreamer) {
	t.Helper()
	streamer := llm.NewMockStreamer()
	engine := NewEngine(memory.NewSessionRepository(), streamer, staticPrompts{}, EngineConfig{
		Model:       "test-model",
		Temperature: 0.7,
	}, nil)
	return engine, streamer
}

// staticPrompts resolves every template to a fixed string so tests do not
// depend on the prompts directory.
type staticPrompts struct{}

func (staticPrompts) Resolve(name string, variables map[string]string, locale string) (string, error) {
	return "system prompt for " + name, nil
}

func TestFullWorkflow(t *testing.T) {
	engine, streamer := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.CreateSession(ctx, "Our onboarding funnel leaks users")
	require.NoError(t, err)

	// Stage 1: interview
	streamer.QueueResponse("```json\n{\"questions\": [{\"id\": 1, \"question\": \"Where do users drop off?\", \"options\": [\"signup\", \"setup\", \"first use\"]}]}\n```")
	questions, err := engine.GenerateQuestions(ctx)
	require.NoError(t, err)
	require.Len(t, questions, 1)

	require.NoError(t, engine.SaveAnswer(ctx, 1, "setup"))
	// Re-answering the same question must upsert, not append
	require.NoError(t, engine.SaveAnswer(ctx, 1, "first use"))
	session := engine.Snapshot()
	require.Len(t, session.InterviewAnswers, 1)
	assert.Equal(t, "first use", session.InterviewAnswers[0].Answer)

	streamer.QueueResponse(`{"coreProblem": "setup friction", "goals": ["reduce drop-off"]}`)
	report, err := engine.GenerateUnderstandingReport(ctx)
	require.NoError(t, err)
	assert.Equal(t, "setup friction", report["coreProblem"])
	assert.Equal(t, 2, engine.Snapshot().CurrentStep, "understanding completion advances to step 2")

	// Stage 2: analysis
	streamer.QueueResponse(`{"recommendedModels": ["root-cause", "5w2h"], "reasons": {"root-cause": "drop-off needs causal digging"}}`)
	rec, err := engine.RecommendModels(ctx)
	require.NoError(t, err)
	assert.Len(t, rec.RecommendedModels, 2)

	streamer.QueueResponse(`{"thinkingModel": "Root Cause Analysis", "dimensions": [{"id": 1, "dimension": "Symptoms", "icon": "🔥"}, {"id": 2, "dimension": "Causes", "icon": "🔍"}]}`)
	cards, err := engine.GenerateAnalysisDimensions(ctx, "root-cause")
	require.NoError(t, err)
	require.Len(t, cards, 2)
	for _, card := range cards {
		assert.Equal(t, models.CardPending, card.Status)
		assert.False(t, card.HasContent())
	}

	cardJSON := `{"phenomenon": "p", "cause": "c", "impact": "i", "hiddenFactors": "h"}`
	streamer.QueueResponse(cardJSON)
	streamer.QueueResponse(cardJSON)
	require.NoError(t, engine.AnalyzeAllDimensions(ctx))
	session = engine.Snapshot()
	for _, card := range session.AnalysisCards {
		assert.Equal(t, models.CardCompleted, card.Status)
		assert.True(t, card.HasContent())
	}

	streamer.QueueResponse("# Deep Analysis\n\nThe funnel leaks at setup.")
	deepReport, err := engine.GenerateDeepAnalysisReport(ctx)
	require.NoError(t, err)
	assert.Contains(t, deepReport, "# Deep Analysis", "report markdown is stored verbatim")

	// Stage 3: solutions
	streamer.QueueResponse(`{"solutions": [{"id": 1, "name": "Guided setup", "effectiveness": 8, "feasibility": 7, "sustainability": 6, "weightedScore": 7.3}], "recommendation": {"bestSolution": 1, "reason": "highest score"}}`)
	solutions, err := engine.GenerateSolutions(ctx)
	require.NoError(t, err)
	require.Len(t, solutions.Solutions, 1)
	require.NotNil(t, solutions.Recommendation)

	streamer.QueueResponse("# Mind Map\n- root")
	mindMap, err := engine.GenerateMindMap(ctx)
	require.NoError(t, err)
	assert.Contains(t, mindMap, "# Mind Map")

	// Unchanged content serves the cached map with no further AI call
	callsBefore := len(streamer.Calls())
	cached, err := engine.GenerateMindMap(ctx)
	require.NoError(t, err)
	assert.Equal(t, mindMap, cached)
	assert.Equal(t, callsBefore, len(streamer.Calls()))

	require.NoError(t, engine.CompleteSession(ctx))
	assert.Equal(t, models.SessionCompleted, engine.Snapshot().Status)
}

func TestAnalyzeDimensionFailureRollsBackToPending(t *testing.T) {
	engine, streamer := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.CreateSession(ctx, "p")
	require.NoError(t, err)
	streamer.QueueResponse(`{"dimensions": [{"id": 1, "dimension": "Scope"}]}`)
	_, err = engine.GenerateAnalysisDimensions(ctx, "swot")
	require.NoError(t, err)

	streamer.QueueError(errors.Transport(assert.AnError))
	err = engine.AnalyzeDimension(ctx, 1)
	require.Error(t, err)

	card := engine.Snapshot().CardByID(1)
	require.NotNil(t, card)
	assert.Equal(t, models.CardPending, card.Status)
	assert.False(t, card.HasContent())
}

func TestReanalyzeFailureKeepsPreviousContent(t *testing.T) {
	engine, streamer := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.CreateSession(ctx, "p")
	require.NoError(t, err)
	streamer.QueueResponse(`{"dimensions": [{"id": 1, "dimension": "Scope"}]}`)
	_, err = engine.GenerateAnalysisDimensions(ctx, "swot")
	require.NoError(t, err)

	streamer.QueueResponse(`{"phenomenon": "original", "cause": "c", "impact": "i", "hiddenFactors": "h"}`)
	require.NoError(t, engine.AnalyzeDimension(ctx, 1))

	streamer.QueueResponse("not json at all")
	err = engine.ReanalyzeCard(ctx, 1, "go deeper on causes")
	require.Error(t, err)
	assert.True(t, errors.IsResponseFormat(err))

	card := engine.Snapshot().CardByID(1)
	require.NotNil(t, card)
	assert.Equal(t, models.CardCompleted, card.Status, "a failed reanalysis keeps the card completed")
	assert.Equal(t, "original", card.Phenomenon)
}

func TestRecommendModelsFailureKeepsPriorRecommendation(t *testing.T) {
	engine, streamer := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.CreateSession(ctx, "p")
	require.NoError(t, err)

	streamer.QueueResponse(`{"recommendedModels": ["swot"], "reasons": {"swot": "fits"}}`)
	_, err = engine.RecommendModels(ctx)
	require.NoError(t, err)

	streamer.QueueError(errors.Transport(assert.AnError))
	_, err = engine.RecommendModels(ctx)
	require.Error(t, err)

	session := engine.Snapshot()
	assert.Equal(t, models.StringList{"swot"}, session.RecommendedModels,
		"a failed call keeps the previous recommendation")
	assert.Equal(t, "fits", session.ModelReasons["swot"])

	status := engine.Status()
	assert.Equal(t, AIIdle, status.Status)
	assert.NotEmpty(t, status.LastError)
}

func TestRegenerateSolutionPreservesID(t *testing.T) {
	engine, streamer := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.CreateSession(ctx, "p")
	require.NoError(t, err)
	streamer.QueueResponse(`{"dimensions": [{"id": 1, "dimension": "Scope"}]}`)
	_, err = engine.GenerateAnalysisDimensions(ctx, "SWOT")
	require.NoError(t, err)
	streamer.QueueResponse(`{"phenomenon": "p", "cause": "c", "impact": "i", "hiddenFactors": "h"}`)
	require.NoError(t, engine.AnalyzeDimension(ctx, 1))
	streamer.QueueResponse("# Report")
	_, err = engine.GenerateDeepAnalysisReport(ctx)
	require.NoError(t, err)
	streamer.QueueResponse(`{"solutions": [{"id": 7, "name": "Original"}], "recommendation": null}`)
	result, err := engine.GenerateSolutions(ctx)
	require.NoError(t, err)
	require.NotNil(t, result)

	// The model assigns its own id; the engine must pin the original
	streamer.QueueResponse(`{"id": 1, "name": "Alternative"}`)
	replacement, err := engine.RegenerateSolution(ctx, 7, "too expensive")
	require.NoError(t, err)
	require.NotNil(t, replacement)
	assert.Equal(t, 7, replacement.ID)
	assert.Equal(t, "Alternative", engine.Snapshot().SolutionByID(7).Name)
}

func TestMindMapRegeneratesAfterContentChange(t *testing.T) {
	engine, streamer := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.CreateSession(ctx, "p")
	require.NoError(t, err)

	streamer.QueueResponse("map v1")
	first, err := engine.GenerateMindMap(ctx)
	require.NoError(t, err)
	assert.Equal(t, "map v1", first)

	// New cards change the content hash
	streamer.QueueResponse(`{"dimensions": [{"id": 1, "dimension": "Scope"}]}`)
	_, err = engine.GenerateAnalysisDimensions(ctx, "swot")
	require.NoError(t, err)

	streamer.QueueResponse("map v2")
	second, err := engine.GenerateMindMap(ctx)
	require.NoError(t, err)
	assert.Equal(t, "map v2", second)
}

func TestMissingPrerequisitesAreSilentNoOps(t *testing.T) {
	engine, streamer := newTestEngine(t)
	ctx := context.Background()

	// No active session: nothing happens, nothing fails
	questions, err := engine.GenerateQuestions(ctx)
	assert.NoError(t, err)
	assert.Nil(t, questions)
	assert.NoError(t, engine.AnalyzeAllDimensions(ctx))
	assert.NoError(t, engine.AnalyzeDimension(ctx, 1))

	// Solutions before the deep analysis report exists
	_, err = engine.CreateSession(ctx, "p")
	require.NoError(t, err)
	result, err := engine.GenerateSolutions(ctx)
	assert.NoError(t, err)
	assert.Nil(t, result)

	// Unknown card id
	assert.NoError(t, engine.ReanalyzeCard(ctx, 42, ""))
	assert.NoError(t, engine.DeleteAnalysisCard(ctx, 42))

	// None of the above reached the AI
	assert.Empty(t, streamer.Calls())
}

// editAfterStream wraps the mock streamer and runs a session edit between
// the stream finishing and the engine merging the result, reproducing a user
// action racing an in-flight generation.
type editAfterStream struct {
	inner *llm.MockStreamer
	edit  func()
}

func (s *editAfterStream) Stream(ctx context.Context, messages []ports.Message, opts ports.StreamOptions, onProgress ports.ProgressFunc) (string, error) {
	response, err := s.inner.Stream(ctx, messages, opts, onProgress)
	if err == nil && s.edit != nil {
		s.edit()
	}
	return response, err
}

func TestMindMapContentChangeMidStreamResetsStatus(t *testing.T) {
	inner := llm.NewMockStreamer()
	streamer := &editAfterStream{inner: inner}
	engine := NewEngine(memory.NewSessionRepository(), streamer, staticPrompts{}, EngineConfig{
		Model: "test-model",
	}, nil)
	ctx := context.Background()

	_, err := engine.CreateSession(ctx, "p")
	require.NoError(t, err)
	inner.QueueResponse(`{"dimensions": [{"id": 1, "dimension": "Scope"}]}`)
	_, err = engine.GenerateAnalysisDimensions(ctx, "SWOT")
	require.NoError(t, err)

	// A card edit landing while the map streams invalidates the result
	streamer.edit = func() {
		require.NoError(t, engine.UpdateAnalysisCard(ctx, 1, models.CardContent{Phenomenon: "edited mid-flight"}))
	}
	inner.QueueResponse("# Mind Map")
	_, err = engine.GenerateMindMap(ctx)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
	assert.Empty(t, engine.Snapshot().MindMap, "a stale map is never stored")

	status := engine.Status()
	assert.Equal(t, AIIdle, status.Status, "a failed generation never leaves the status stuck")
	assert.NotEmpty(t, status.LastError)
}

func TestSessionResetMidStreamLeavesStatusIdle(t *testing.T) {
	inner := llm.NewMockStreamer()
	streamer := &editAfterStream{inner: inner}
	engine := NewEngine(memory.NewSessionRepository(), streamer, staticPrompts{}, EngineConfig{
		Model: "test-model",
	}, nil)
	ctx := context.Background()

	_, err := engine.CreateSession(ctx, "p")
	require.NoError(t, err)

	streamer.edit = func() {
		require.NoError(t, engine.ResetSession(ctx))
	}
	inner.QueueResponse(`{"questions": [{"id": 1, "question": "q", "options": ["a"]}]}`)
	questions, err := engine.GenerateQuestions(ctx)
	assert.NoError(t, err)
	assert.Nil(t, questions)

	status := engine.Status()
	assert.Equal(t, AIIdle, status.Status)
	assert.NotEmpty(t, status.LastError)
}

func TestSetStepBounds(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.CreateSession(ctx, "p")
	require.NoError(t, err)
	require.NoError(t, engine.SetStep(ctx, 3))
	assert.Equal(t, 3, engine.Snapshot().CurrentStep)
	assert.Error(t, engine.SetStep(ctx, 0))
	assert.Error(t, engine.SetStep(ctx, 4))
}
