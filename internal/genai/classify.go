// internal/genai/classify.go
package genai

import (
	"strings"

	commonerrors "offr-workers/internal/common/errors"
)

// classificationRule maps fault-text keywords to an error constructor.
// Rules are evaluated in order; the first match wins.
type classificationRule struct {
	keywords []string
	build    func(details string) *commonerrors.StandardError
}

var classificationRules = []classificationRule{
	{
		keywords: []string{"timeout", "timed out", "deadline"},
		build:    commonerrors.NewProviderTimeoutError,
	},
	{
		keywords: []string{"429", "quota", "rate"},
		build:    commonerrors.NewProviderRateLimitError,
	},
	{
		// Overload responses are transient; treat them like timeouts.
		keywords: []string{"503", "unavailable", "overloaded"},
		build:    commonerrors.NewProviderTimeoutError,
	},
}

// Classify turns a raw provider fault into a StandardError. Anything the
// rules don't recognise becomes a retryable internal error.
func Classify(err error) *commonerrors.StandardError {
	fault := strings.ToLower(err.Error())
	for _, rule := range classificationRules {
		for _, kw := range rule.keywords {
			if strings.Contains(fault, kw) {
				return rule.build(err.Error())
			}
		}
	}
	return commonerrors.NewProviderInternalError(err)
}
