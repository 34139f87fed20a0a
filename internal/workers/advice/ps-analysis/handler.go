// internal/workers/advice/ps-analysis/handler.go
package psanalysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/xeipuuv/gojsonschema"

	"offr-workers/internal/catalog"
	"offr-workers/internal/common/errors"
	"offr-workers/internal/common/logger"
	"offr-workers/internal/genai"
	"offr-workers/internal/offers/ps"
)

const (
	TaskType = "ps-analysis"
)

// responseSchema bounds what the provider may return before sanitising.
// Scores outside 0..10 are clamped later; a missing rubric object is a
// hard parse failure.
var responseSchema = map[string]interface{}{
	"type":     "object",
	"required": []string{"rubric"},
	"properties": map[string]interface{}{
		"rubric": map[string]interface{}{"type": "object"},
		"strengths": map[string]interface{}{
			"type": "array", "items": map[string]interface{}{"type": "string"},
		},
		"risks": map[string]interface{}{
			"type": "array", "items": map[string]interface{}{"type": "string"},
		},
		"red_flags": map[string]interface{}{
			"type": "array", "items": map[string]interface{}{"type": "string"},
		},
		"what_to_do_next": map[string]interface{}{
			"type": "array", "items": map[string]interface{}{"type": "string"},
		},
	},
}

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

// Execute reviews one personal statement: deterministic constraint and
// heuristic checks, a provider rubric pass, schema validation, then
// sanitised scoring.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.PS.FullText()) == "" {
		return nil, errors.NewInvalidProfileError("personal statement text is required")
	}

	signals := catalog.SplitSignals(input.ExpectedSignals)
	prompt := ps.BuildRubricPrompt(input.CourseName, input.Faculty, signals, input.PS)

	res := h.invoker.InvokeJSON(ctx, prompt)
	if !res.OK() {
		return nil, res.Err
	}

	if err := h.validate(res.Data); err != nil {
		return nil, errors.NewParseError(err.Error())
	}

	rubric := ps.SanitizeRubric(res.Data)
	weighted := ps.WeightedScore(rubric)

	output := &Output{
		Constraints:  ps.CheckConstraints(input.PS),
		Heuristics:   ps.Analyze(input.PS.FullText()),
		Rubric:       rubric,
		Scores:       Scores{WeightedTotal: weighted, Band: ps.BandFromScore(weighted)},
		Strengths:    stringList(res.Data["strengths"]),
		Risks:        stringList(res.Data["risks"]),
		RedFlags:     stringList(res.Data["red_flags"]),
		WhatToDoNext: stringList(res.Data["what_to_do_next"]),
		RequestID:    res.RequestID,
	}

	h.logger.Info("statement reviewed", map[string]interface{}{
		"requestId":     res.RequestID,
		"weightedTotal": weighted,
		"band":          output.Scores.Band,
	})
	return output, nil
}

func (h *Handler) validate(data map[string]interface{}) error {
	schemaLoader := gojsonschema.NewGoLoader(responseSchema)
	documentLoader := gojsonschema.NewGoLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("response validation failed: %v", errs)
	}
	return nil
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
