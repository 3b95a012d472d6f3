package app

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"ideaverse/ai"
	"ideaverse/internal/errors"
	"ideaverse/models"
)

// Stage 1: clarifying interview and problem understanding.

// GenerateQuestions asks the model for clarifying interview questions about
// the current problem and stores the normalized list on the session.
func (e *Engine) GenerateQuestions(ctx context.Context) ([]models.InterviewQuestion, error) {
	e.mu.Lock()
	if e.current == nil {
		e.mu.Unlock()
		return nil, nil
	}
	problem := e.current.Problem
	e.mu.Unlock()

	response, err := e.callAI(ctx, "interview_system",
		map[string]string{"PROBLEM": problem},
		"Generate clarifying questions for this problem: "+problem,
		4000)
	if err != nil {
		return nil, err
	}

	doc, err := ai.Parse(response)
	if err != nil {
		e.failAI(err)
		return nil, err
	}
	questions := models.NormalizeQuestions(doc)

	e.mu.Lock()
	if e.current == nil {
		e.mu.Unlock()
		e.abandonAI()
		return nil, nil
	}
	e.current.InterviewQuestions = questions
	session := e.current.Clone()
	e.mu.Unlock()

	if err := e.saveSession(ctx, session); err != nil {
		e.failAI(err)
		return nil, err
	}
	e.completeAI()
	log.Printf("[Engine] generated %d interview questions for %s", len(questions), session.ID)
	return questions, nil
}

// SaveAnswer upserts the answer for a question id. Purely local; no AI call.
func (e *Engine) SaveAnswer(ctx context.Context, questionID int, answer string) error {
	e.mu.Lock()
	if e.current == nil {
		e.mu.Unlock()
		return nil
	}

	questionText := ""
	for _, q := range e.current.InterviewQuestions {
		if q.ID == questionID {
			questionText = q.Question
			break
		}
	}

	updated := false
	for i := range e.current.InterviewAnswers {
		if e.current.InterviewAnswers[i].QuestionID == questionID {
			e.current.InterviewAnswers[i].Answer = answer
			updated = true
			break
		}
	}
	if !updated {
		e.current.InterviewAnswers = append(e.current.InterviewAnswers, models.InterviewAnswer{
			QuestionID: questionID,
			Question:   questionText,
			Answer:     answer,
		})
	}
	session := e.current.Clone()
	e.mu.Unlock()

	return e.saveSession(ctx, session)
}

// GenerateUnderstandingReport synthesizes the problem plus interview answers
// into a structured understanding document. On success the workflow advances
// to step 2; this is the only automatic step change in the engine.
func (e *Engine) GenerateUnderstandingReport(ctx context.Context) (models.JSONBMap, error) {
	e.mu.Lock()
	if e.current == nil {
		e.mu.Unlock()
		return nil, nil
	}
	problem := e.current.Problem
	answers := formatAnswers(e.current.InterviewAnswers)
	e.mu.Unlock()

	response, err := e.callAI(ctx, "understanding_system",
		map[string]string{"PROBLEM": problem, "ANSWERS": answers},
		"Problem: "+problem+"\n\nInterview answers:\n"+answers,
		4000)
	if err != nil {
		return nil, err
	}

	doc, err := ai.Parse(response)
	if err != nil {
		e.failAI(err)
		return nil, err
	}
	var report models.JSONBMap
	if err := json.Unmarshal(doc, &report); err != nil {
		log.Printf("[Engine] understanding report is not an object: %v", err)
		formatErr := errors.ResponseFormat()
		e.failAI(formatErr)
		return nil, formatErr
	}

	e.mu.Lock()
	if e.current == nil {
		e.mu.Unlock()
		e.abandonAI()
		return nil, nil
	}
	e.current.UnderstandingReport = report
	e.current.CurrentStep = 2
	session := e.current.Clone()
	e.mu.Unlock()

	if err := e.saveSession(ctx, session); err != nil {
		e.failAI(err)
		return nil, err
	}
	e.completeAI()
	e.publish("understanding_ready", session.ID)
	return report, nil
}

// formatAnswers renders answered questions as a Q/A transcript for prompts
func formatAnswers(answers []models.InterviewAnswer) string {
	if len(answers) == 0 {
		return "(no answers provided)"
	}
	var b strings.Builder
	for _, a := range answers {
		if a.Answer == "" {
			continue
		}
		b.WriteString("Q: ")
		b.WriteString(a.Question)
		b.WriteString("\nA: ")
		b.WriteString(a.Answer)
		b.WriteString("\n\n")
	}
	if b.Len() == 0 {
		return "(no answers provided)"
	}
	return strings.TrimSpace(b.String())
}
