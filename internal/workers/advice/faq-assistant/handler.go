// internal/workers/advice/faq-assistant/handler.go
package faqassistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"offr-workers/internal/common/errors"
	"offr-workers/internal/common/logger"
	"offr-workers/internal/genai"
)

const (
	TaskType = "faq-assistant"
)

// productContext grounds the assistant in what the tool actually does, so
// answers stay factual instead of invented.
const productContext = `offr is a UK UCAS admissions tool for Year 11-12 students applying to UK universities.

Key features:
- Offer Assessment: Calculates Safe/Target/Reach (chance %) by comparing student grades to real 2024-25 offer holder data from 14 UK universities.
- Safe >70%, Target 40-70%, Reach <40%.
- Personal Statement (PS) Analyser: Line-by-line feedback on UCAS PS. Supports UCAS 3-question format and legacy single text.
- Profile: Student grades, interests (max 3), personal statement stored for auto-fill.

Universities covered: Oxford, Cambridge, LSE, Imperial, UCL, Warwick, Edinburgh, Bristol, Durham, Bath, St Andrews, King's College London, Manchester, Exeter.

Curricula supported: IB Diploma (max 45 points) and A-Levels.

UCAS facts:
- UK students can apply to max 5 universities on one UCAS application.
- Personal statement is max 4,000 characters (new 3-question format from 2025 entry).
- Firm choice = your first choice; Insurance = safe backup.
- UCAS deadline: typically 15 January for most universities; 15 October for Oxford/Cambridge/medicine.`

const fallbackAnswer = "AI assistant is not available right now. Please browse the FAQ or check the UCAS website for detailed guidance."

type Handler struct {
	config       *Config
	invoker      *genai.Invoker
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, invoker *genai.Invoker, log logger.Logger) *Handler {
	return &Handler{
		config:       config,
		invoker:      invoker,
		errorHandler: errors.NewErrorHandler(log),
		logger:       log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.errorHandler.HandleJobError(context.Background(), client, job,
			errors.NewParseError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

// Execute answers one student question. Provider failure is never an
// error here; the student gets the static fallback instead.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return nil, errors.NewInvalidProfileError("question is required")
	}
	if runes := []rune(question); len(runes) > h.config.MaxQuestionLength {
		question = string(runes[:h.config.MaxQuestionLength])
	}

	prompt := fmt.Sprintf(`You are a helpful UCAS admissions assistant for the offr tool.

Context about offr and UK admissions:
%s

Student question: %s

Return ONLY valid JSON (no markdown, no code fences):
{"answer": "<clear, honest, specific answer in 2-4 sentences>", "follow_up_questions": ["<related question 1>", "<related question 2>"]}

Rules:
- answer of at most 80 words, factual, grounded in the context above
- follow_up_questions: 2 short questions the student might want to ask next
- If you don't know, say so honestly, don't invent statistics or policies
- Be friendly but concise`, productContext, question)

	res := h.invoker.InvokeJSON(ctx, prompt)
	if !res.OK() {
		h.logger.Warn("assistant unavailable, using fallback", map[string]interface{}{
			"requestId": res.RequestID,
			"errorCode": res.Err.Code,
		})
		return &Output{
			Answer:            fallbackAnswer,
			FollowUpQuestions: []string{},
			Fallback:          true,
		}, nil
	}

	answer, _ := res.Data["answer"].(string)
	if answer == "" {
		answer = "I could not generate an answer. Please try rephrasing your question."
	}

	return &Output{
		Answer:            answer,
		FollowUpQuestions: stringList(res.Data["follow_up_questions"]),
		LatencyMs:         res.Elapsed.Milliseconds(),
		RequestID:         res.RequestID,
	}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func stringList(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
