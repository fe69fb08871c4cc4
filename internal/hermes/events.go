package hermes

import "time"

type RunSubmittedEvent struct {
	RunID     string `json:"run_id"`
	Operation string `json:"operation"`
	Requester string `json:"requester,omitempty"`
}

type RunStartedEvent struct {
	RunID     string `json:"run_id"`
	Operation string `json:"operation"`
}

type RunCompletedEvent struct {
	RunID      string `json:"run_id"`
	Operation  string `json:"operation"`
	DurationMs int64  `json:"duration_ms"`
}

type RunFailedEvent struct {
	RunID     string   `json:"run_id"`
	Operation string   `json:"operation"`
	Error     string   `json:"error"`
	Problems  []string `json:"problems,omitempty"`
	// Stale is set when the run was abandoned rather than rejected.
	Stale bool `json:"stale,omitempty"`
}

type StatsEvent struct {
	Pending   int       `json:"pending"`
	Running   int       `json:"running"`
	Completed int       `json:"completed"`
	Failed    int       `json:"failed"`
	AvgMs     float64   `json:"avg_duration_ms"`
	Timestamp time.Time `json:"timestamp"`
}
