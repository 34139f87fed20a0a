// internal/workers/advice/profile-suggestions/models.go
package profilesuggestions

type Input struct {
	Curriculum     string `json:"curriculum"`
	Year           string `json:"year"`
	InterestsCount int    `json:"interestsCount"`
	HasGrades      bool   `json:"hasGrades"`
	HasPS          bool   `json:"hasPs"`
	PSLength       int    `json:"psLength"`
	IBTotal        int    `json:"ibTotal,omitempty"`
	ALevelCount    int    `json:"aLevelCount,omitempty"`
}

// Suggestion names one weak profile area with a concrete next step.
type Suggestion struct {
	Field  string `json:"field"`
	Why    string `json:"why"`
	Action string `json:"action"`
}

type Output struct {
	Suggestions []Suggestion `json:"suggestions"`
	Fallback    bool         `json:"fallback,omitempty"`
	LatencyMs   int64        `json:"latency_ms,omitempty"`
}
