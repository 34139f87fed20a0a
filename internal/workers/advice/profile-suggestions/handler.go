// internal/workers/advice/profile-suggestions/handler.go
package profilesuggestions

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
	TaskType = "profile-suggestions"
)

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

// Execute reviews profile completeness. The gap analysis is deterministic;
// the provider only rewrites the advice. A complete profile or a provider
// failure both resolve to the rule-based suggestions.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	gaps := h.gapsFor(input)
	if len(gaps) == 0 {
		return h.fallback(input), nil
	}

	scoreContext := ""
	if input.Curriculum == "IB" && input.IBTotal > 0 {
		scoreContext = fmt.Sprintf("Predicted IB total: %d/45.", input.IBTotal)
	} else if input.ALevelCount > 0 {
		scoreContext = fmt.Sprintf("Has %d A-Level subject(s) entered.", input.ALevelCount)
	}

	prompt := fmt.Sprintf(`You are advising a UK UCAS applicant on completing their profile in an admissions tool.

Profile: %s, Year %s. %s
Gaps: %s

Field purposes in this tool:
- interests: drives alternative course recommendations
- grades: primary input to offer chance calculations (Safe/Target/Reach)
- ps: affects PS fit score and unlocks line-by-line PS analysis

Return ONLY valid JSON:
{"suggestions": [{"field": "<interests|grades|ps|complete>", "why": "<specific to tool, <= 25 words>", "action": "<concrete next step, <= 20 words>"}]}

One object per gap (max 3). Be specific about this tool, not generic UCAS advice.`,
		strings.ReplaceAll(input.Curriculum, "_", "-"), input.Year, scoreContext, strings.Join(gaps, "; "))

	res := h.invoker.InvokeJSON(ctx, prompt)
	if !res.OK() {
		return h.fallback(input), nil
	}

	suggestions := parseSuggestions(res.Data["suggestions"])
	if len(suggestions) == 0 {
		return h.fallback(input), nil
	}

	return &Output{
		Suggestions: suggestions,
		LatencyMs:   res.Elapsed.Milliseconds(),
	}, nil
}

func (h *Handler) gapsFor(input *Input) []string {
	var gaps []string
	if input.InterestsCount == 0 {
		gaps = append(gaps, "No interests set")
	} else if input.InterestsCount < h.config.MaxInterests {
		gaps = append(gaps, fmt.Sprintf("Only %d interest(s) set (max %d)", input.InterestsCount, h.config.MaxInterests))
	}
	if !input.HasGrades {
		gaps = append(gaps, "No predicted grades entered")
	}
	if !input.HasPS {
		gaps = append(gaps, "No personal statement added")
	} else if input.PSLength < h.config.MinPSLength {
		gaps = append(gaps, fmt.Sprintf("PS is very short (%d chars)", input.PSLength))
	}
	return gaps
}

func (h *Handler) fallback(input *Input) *Output {
	var suggestions []Suggestion
	if input.InterestsCount == 0 {
		suggestions = append(suggestions, Suggestion{
			Field:  "interests",
			Why:    "Interests drive alternative course suggestions across the app.",
			Action: fmt.Sprintf("Add up to %d interests in the interests section.", h.config.MaxInterests),
		})
	} else if input.InterestsCount < h.config.MaxInterests {
		suggestions = append(suggestions, Suggestion{
			Field:  "interests",
			Why:    "More interests produce more personalised course recommendations.",
			Action: fmt.Sprintf("Add %d more interest(s) for broader recommendations.", h.config.MaxInterests-input.InterestsCount),
		})
	}
	if !input.HasGrades {
		suggestions = append(suggestions, Suggestion{
			Field:  "grades",
			Why:    "Predicted grades are the primary input to offer chance calculations (Safe/Target/Reach).",
			Action: "Add your predicted grades, assessments cannot score you without them.",
		})
	}
	if !input.HasPS {
		suggestions = append(suggestions, Suggestion{
			Field:  "ps",
			Why:    "Your personal statement affects PS fit scoring in assessments and unlocks line-by-line analysis.",
			Action: "Add a draft PS, even rough notes help.",
		})
	} else if input.PSLength < h.config.MinPSLength {
		suggestions = append(suggestions, Suggestion{
			Field:  "ps",
			Why:    "A short PS provides limited signal for analysis tools.",
			Action: fmt.Sprintf("Your PS is %d characters. Aim for 2,000+ for meaningful feedback.", input.PSLength),
		})
	}
	if len(suggestions) == 0 {
		suggestions = append(suggestions, Suggestion{
			Field:  "complete",
			Why:    "Your profile is well-populated, all core fields are filled.",
			Action: "Keep grades and PS updated as they change; assessment accuracy depends on current data.",
		})
	}
	return &Output{Suggestions: suggestions, Fallback: true}
}

func parseSuggestions(v interface{}) []Suggestion {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	var out []Suggestion
	for _, item := range items {
		raw, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		s := Suggestion{}
		s.Field, _ = raw["field"].(string)
		s.Why, _ = raw["why"].(string)
		s.Action, _ = raw["action"].(string)
		if s.Field == "" || s.Action == "" {
			continue
		}
		out = append(out, s)
	}
	return out
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
