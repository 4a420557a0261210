package store

import (
	"context"
	"time"

	"github.com/abhisek/adaptiq/internal/adaptive"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	After   int64     // sequence > After
	Before  int64     // sequence < Before
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
	Purpose string    // LLM events only; exact match
}

// ProfileRepo persists learner skill profiles.
type ProfileRepo interface {
	// Load returns the profile for userID, or nil if none exists.
	Load(ctx context.Context, userID string) (*adaptive.SkillProfile, error)

	// Save inserts or replaces the profile.
	Save(ctx context.Context, profile adaptive.SkillProfile) error

	// List returns every stored profile ordered by user ID.
	List(ctx context.Context) ([]adaptive.SkillProfile, error)

	// Reset deletes the profile together with the user's responses and
	// results. It reports whether a profile existed.
	Reset(ctx context.Context, userID string) (bool, error)
}

// ResponseEventData captures one graded answer.
type ResponseEventData struct {
	SessionID      string
	UserID         string
	QuestionID     string
	SkillArea      string
	Difficulty     string
	QuestionType   string
	Answer         string
	Correct        bool
	ResponseTimeMs int64
	Score          float64
	Fallback       bool
}

// ResponseEventRecord is a stored ResponseEventData.
type ResponseEventRecord struct {
	ResponseEventData
	ID        int
	Sequence  int64
	Timestamp time.Time
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

// LLMEventRecord is a stored LLM request event.
type LLMEventRecord struct {
	LLMRequestEventData
	ID        int
	Sequence  int64
	Timestamp time.Time
}

// LLMPurposeUsage aggregates LLM calls sharing a purpose label.
type LLMPurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// LLMModelUsage aggregates LLM calls served by one model.
type LLMModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append and query access to domain events.
type EventRepo interface {
	// AppendResponse records one graded answer.
	AppendResponse(ctx context.Context, data ResponseEventData) error

	// ResponsesForSession returns a session's answers in sequence order.
	ResponsesForSession(ctx context.Context, sessionID string) ([]ResponseEventRecord, error)

	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns LLM events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEventRecord, error)

	// GetLLMEvent returns one LLM event, or nil if id is unknown.
	GetLLMEvent(ctx context.Context, id int) (*LLMEventRecord, error)

	// LLMUsageByPurpose aggregates token usage per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]LLMPurposeUsage, error)

	// LLMUsageByModel aggregates token usage per model.
	LLMUsageByModel(ctx context.Context) ([]LLMModelUsage, error)
}

// ResultRecord is a completed assessment. Data holds the full result as
// JSON; the other fields are indexed copies for listing.
type ResultRecord struct {
	AssessmentID   string
	UserID         string
	Score          float64
	TimeSpentMs    int64
	NextDifficulty string
	CompletedAt    time.Time
	Data           []byte
}

// ResultRepo persists completed assessments.
type ResultRepo interface {
	SaveResult(ctx context.Context, rec ResultRecord) error

	// ListResults returns a user's results, newest first. limit <= 0
	// returns all of them.
	ListResults(ctx context.Context, userID string, limit int) ([]ResultRecord, error)
}
