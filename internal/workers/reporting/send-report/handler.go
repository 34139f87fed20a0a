// internal/workers/reporting/send-report/handler.go
package sendreport

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	"offr-workers/internal/common/errors"
	"offr-workers/internal/common/logger"
)

const (
	TaskType = "send-report"
)

// SESService is the slice of the SES client the handler needs.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type Handler struct {
	config       *Config
	sesClient    SESService
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, sesClient SESService, log logger.Logger) *Handler {
	return &Handler{
		config:       config,
		sesClient:    sesClient,
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

// Execute emails a plain-text summary of a completed assessment. When
// report delivery is disabled or unconfigured the job still completes,
// with a disabled status, so the surrounding process is never blocked
// by email settings.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input.RecipientEmail == "" {
		return nil, errors.NewInvalidProfileError("recipientEmail is required")
	}

	reportID := uuid.New().String()
	sentAt := time.Now().UTC().Format(time.RFC3339)

	if !h.config.Enabled || h.config.FromEmail == "" || h.sesClient == nil {
		h.logger.Warn("report delivery disabled, skipping send", map[string]interface{}{
			"reportId": reportID,
			"enabled":  h.config.Enabled,
		})
		return &Output{ReportID: reportID, Status: StatusDisabled, SentAt: sentAt}, nil
	}

	subject := fmt.Sprintf("Your admission assessment: %s at %s", input.CourseName, input.University)
	body := h.renderBody(input)

	_, err := h.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{input.RecipientEmail},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(h.config.FromEmail),
	})
	if err != nil {
		return nil, errors.NewReportSendFailedError(err)
	}

	h.logger.Info("assessment report sent", map[string]interface{}{
		"reportId": reportID,
		"courseId": input.CourseID,
	})

	return &Output{ReportID: reportID, Status: StatusSent, SentAt: sentAt}, nil
}

func (h *Handler) renderBody(input *Input) string {
	a := input.Assessment
	var b strings.Builder

	greeting := "Hello"
	if input.ApplicantName != "" {
		greeting = "Hello " + input.ApplicantName
	}
	fmt.Fprintf(&b, "%s,\n\n", greeting)
	fmt.Fprintf(&b, "Here is your assessment for %s at %s.\n\n", input.CourseName, input.University)
	fmt.Fprintf(&b, "Verdict: %s\n", a.Verdict)
	fmt.Fprintf(&b, "Band: %s\n", a.Band)
	fmt.Fprintf(&b, "Chance: %d%%\n\n", a.ChancePercent)

	if len(a.Checks.Passed) > 0 {
		b.WriteString("Checks passed:\n")
		for _, c := range a.Checks.Passed {
			fmt.Fprintf(&b, "  - %s\n", c)
		}
	}
	if len(a.Checks.Failed) > 0 {
		b.WriteString("Checks failed:\n")
		for _, c := range a.Checks.Failed {
			fmt.Fprintf(&b, "  - %s\n", c)
		}
	}

	if len(a.Competitiveness.ScoreBreakdown) > 0 {
		b.WriteString("\nScore breakdown:\n")
		for _, entry := range a.Competitiveness.ScoreBreakdown {
			fmt.Fprintf(&b, "  %+d  %s\n", entry.Points, entry.Name)
		}
	}

	if a.Counsellor != nil && len(a.Counsellor.WhatToDoNext) > 0 {
		b.WriteString("\nWhat to do next:\n")
		for _, step := range a.Counsellor.WhatToDoNext {
			fmt.Fprintf(&b, "  - %s\n", step)
		}
	}

	for _, note := range a.Notes {
		fmt.Fprintf(&b, "\nNote: %s\n", note)
	}

	b.WriteString("\nThis summary is based on self-reported offer holder data and published entry requirements.\n")
	return b.String()
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
