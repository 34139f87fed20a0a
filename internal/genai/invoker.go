// internal/genai/invoker.go
package genai

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"offr-workers/internal/common/config"
	commonerrors "offr-workers/internal/common/errors"
	"offr-workers/internal/common/logger"
	"offr-workers/internal/common/metrics"
)

// Result is the outcome of one invocation: a parsed JSON object or a
// classified error, never both, plus the observed latency.
type Result struct {
	Data      map[string]interface{}
	Err       *commonerrors.StandardError
	RequestID string
	Elapsed   time.Duration
}

// OK reports whether the invocation produced usable data.
func (r Result) OK() bool {
	return r.Err == nil
}

// ErrorPayload renders the wire-shape error body for a failed result.
func (r Result) ErrorPayload() map[string]interface{} {
	if r.Err == nil {
		return nil
	}
	return r.Err.ToErrorPayload(r.RequestID)
}

// Invoker wraps a provider Client with deadline, retry, and classification
// policy. All provider access in the codebase goes through here.
type Invoker struct {
	client         Client
	configured     bool
	timeout        time.Duration
	maxRetries     int
	initialBackoff time.Duration
	logger         logger.Logger
}

// New builds an Invoker. A client may be nil only when no credential is
// configured, in which case every call short-circuits to AI_UNAVAILABLE.
func New(client Client, cfg config.GenAIConfig, log logger.Logger) *Invoker {
	return &Invoker{
		client:         client,
		configured:     cfg.APIKey != "",
		timeout:        config.GetDuration(cfg.Timeout),
		maxRetries:     cfg.MaxRetries,
		initialBackoff: config.GetDuration(cfg.InitialBackoff),
		logger:         log.With(map[string]interface{}{"component": "genai"}),
	}
}

// newRequestID derives a short correlation token for log lines. The prompt
// itself is never logged.
func newRequestID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}

// InvokeJSON calls the provider and returns its output as a JSON object.
// Transient faults are retried with doubling backoff; unusable output is
// terminal on the first occurrence.
func (inv *Invoker) InvokeJSON(ctx context.Context, prompt string) Result {
	requestID := newRequestID()
	start := time.Now()

	if !inv.configured {
		res := Result{Err: commonerrors.NewAIUnavailableError(), RequestID: requestID}
		metrics.AICallsTotal.WithLabelValues("unavailable").Inc()
		inv.logger.Warn("provider not configured, skipping call", map[string]interface{}{
			"requestId": requestID,
		})
		return res
	}

	var lastErr *commonerrors.StandardError
	backoff := inv.initialBackoff

	for attempt := 0; attempt <= inv.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return inv.finish(Result{
					Err:       commonerrors.NewProviderTimeoutError(ctx.Err().Error()),
					RequestID: requestID,
					Elapsed:   time.Since(start),
				}, attempt)
			}
			backoff *= 2
		}

		attemptCtx, cancel := context.WithTimeout(ctx, inv.timeout)
		raw, err := inv.client.GenerateJSON(attemptCtx, prompt)
		deadlineHit := attemptCtx.Err() == context.DeadlineExceeded
		cancel()

		if err != nil {
			if deadlineHit {
				lastErr = commonerrors.NewProviderTimeoutError("attempt deadline exceeded")
			} else {
				lastErr = Classify(err)
			}
			inv.logger.Warn("provider call failed", map[string]interface{}{
				"requestId": requestID,
				"attempt":   attempt + 1,
				"errorCode": string(lastErr.Code),
				"retryable": lastErr.Retryable,
			})
			if !lastErr.Retryable {
				break
			}
			continue
		}

		data, ok := ParseObject(raw)
		if !ok {
			// Retrying replays the same malformed text, so fail fast.
			return inv.finish(Result{
				Err:       commonerrors.NewParseError("response was not a JSON object"),
				RequestID: requestID,
				Elapsed:   time.Since(start),
			}, attempt+1)
		}

		inv.logger.Info("provider call succeeded", map[string]interface{}{
			"requestId": requestID,
			"attempt":   attempt + 1,
			"elapsedMs": time.Since(start).Milliseconds(),
		})
		return inv.finish(Result{
			Data:      data,
			RequestID: requestID,
			Elapsed:   time.Since(start),
		}, attempt+1)
	}

	return inv.finish(Result{
		Err:       lastErr,
		RequestID: requestID,
		Elapsed:   time.Since(start),
	}, inv.maxRetries+1)
}

func (inv *Invoker) finish(res Result, attempts int) Result {
	outcome := "success"
	if res.Err != nil {
		outcome = strings.ToLower(string(res.Err.Code))
	}
	metrics.AICallsTotal.WithLabelValues(outcome).Inc()
	metrics.AICallDuration.WithLabelValues(outcome).Observe(res.Elapsed.Seconds())

	if res.Err != nil {
		inv.logger.Error("provider call exhausted", map[string]interface{}{
			"requestId": res.RequestID,
			"attempts":  attempts,
			"errorCode": string(res.Err.Code),
			"elapsedMs": res.Elapsed.Milliseconds(),
		})
	}
	return res
}
