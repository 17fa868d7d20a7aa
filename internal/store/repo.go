package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	After   int64     // sequence > After
	From    time.Time // timestamp >= From
	Purpose string    // exact purpose match, LLM events only
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLM request event.
type LLMEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates calls and tokens for one purpose or model.
type LLMUsage struct {
	Purpose      string
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// Session actions recorded in session_events.
const (
	SessionStarted  = "started"
	SessionFinished = "finished"
	SessionEnded    = "ended"
)

// SessionEventData marks the start or end of a tutorial run.
type SessionEventData struct {
	SessionID       string
	Action          string
	Topic           string
	Mode            string
	FilePath        string
	SlotCount       int
	AttemptsTotal   int
	CorrectFirstTry int
	HintsRequested  int
	DurationSecs    int
}

// AttemptEventData records one reviewed attempt.
type AttemptEventData struct {
	SessionID   string
	SlotID      int
	Outcome     string
	Flag        string
	HintLevel   int
	Feedback    string
	AttemptText string
}

// AttemptEvent is a stored attempt event.
type AttemptEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	AttemptEventData
}

// HintEventData records one hint served to the learner.
type HintEventData struct {
	SessionID string
	SlotID    int
	Level     int
	HintText  string
}

// EventRepo provides append and query access to domain events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns LLM events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)

	// GetLLMEvent returns a single event by ID, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error)

	// LLMUsageByPurpose aggregates usage grouped by purpose.
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)

	// LLMUsageByModel aggregates usage grouped by model.
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)

	// AppendSessionEvent records a session lifecycle marker.
	AppendSessionEvent(ctx context.Context, data SessionEventData) error

	// AppendAttemptEvent records a reviewed attempt.
	AppendAttemptEvent(ctx context.Context, data AttemptEventData) error

	// AppendHintEvent records a served hint.
	AppendHintEvent(ctx context.Context, data HintEventData) error

	// QueryAttemptEvents returns a session's attempts in sequence order.
	QueryAttemptEvents(ctx context.Context, sessionID string) ([]AttemptEvent, error)
}
