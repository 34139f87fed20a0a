// internal/workers/advice/faq-assistant/models.go
package faqassistant

type Input struct {
	Question string `json:"question"`
}

type Output struct {
	Answer            string   `json:"answer"`
	FollowUpQuestions []string `json:"follow_up_questions"`
	Fallback          bool     `json:"fallback,omitempty"`
	LatencyMs         int64    `json:"latency_ms,omitempty"`
	RequestID         string   `json:"request_id,omitempty"`
}
