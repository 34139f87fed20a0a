// internal/workers/assessment/suggest-alternatives/handler.go
package suggestalternatives

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"offr-workers/internal/catalog"
	"offr-workers/internal/common/errors"
	"offr-workers/internal/common/logger"
)

const (
	TaskType = "suggest-alternatives"
)

type Handler struct {
	config       *Config
	store        *catalog.Store
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, store *catalog.Store, log logger.Logger) *Handler {
	return &Handler{
		config:       config,
		store:        store,
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
			errors.NewInvalidProfileError(fmt.Sprintf("parse input: %v", err)))
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

// Execute finds up to three same-faculty courses with thresholds at or
// below the target's. An underivable target yields an empty suggestion
// set rather than an error.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	course, err := h.store.GetCourse(ctx, input.CourseID)
	if err != nil {
		return nil, err
	}

	target := input.TargetMinPoints
	if target == 0 {
		target = catalog.Thresholds(course).MinPoints
	}

	output := &Output{
		SuggestedCourseIDs:   []string{},
		SuggestedCourseNames: []string{},
		Alternatives:         []catalog.Alternative{},
	}
	if target == 0 {
		return output, nil
	}

	alts, err := h.store.SuggestAlternatives(ctx, course, target)
	if err != nil {
		return nil, err
	}
	for _, alt := range alts {
		output.SuggestedCourseIDs = append(output.SuggestedCourseIDs, alt.CourseID)
		output.SuggestedCourseNames = append(output.SuggestedCourseNames, alt.CourseName)
		output.Alternatives = append(output.Alternatives, alt)
	}
	return output, nil
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
