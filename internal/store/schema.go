package store

import (
	"context"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	// ProfilesColumns holds the columns for the "profiles" table.
	ProfilesColumns = []*schema.Column{
		{Name: "user_id", Type: field.TypeString},
		{Name: "data", Type: field.TypeString, Size: 2147483647},
		{Name: "updated_at", Type: field.TypeInt64},
	}
	// ProfilesTable holds the schema information for the "profiles" table.
	ProfilesTable = &schema.Table{
		Name:       "profiles",
		Columns:    ProfilesColumns,
		PrimaryKey: []*schema.Column{ProfilesColumns[0]},
	}

	// ResponseEventsColumns holds the columns for the "response_events" table.
	ResponseEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeInt64},
		{Name: "session_id", Type: field.TypeString},
		{Name: "user_id", Type: field.TypeString},
		{Name: "question_id", Type: field.TypeString},
		{Name: "skill_area", Type: field.TypeString},
		{Name: "difficulty", Type: field.TypeString},
		{Name: "question_type", Type: field.TypeString},
		{Name: "answer", Type: field.TypeString, Size: 2147483647},
		{Name: "correct", Type: field.TypeBool},
		{Name: "response_time_ms", Type: field.TypeInt64},
		{Name: "score", Type: field.TypeFloat64},
		{Name: "fallback", Type: field.TypeBool},
	}
	// ResponseEventsTable holds the schema information for the "response_events" table.
	ResponseEventsTable = &schema.Table{
		Name:       "response_events",
		Columns:    ResponseEventsColumns,
		PrimaryKey: []*schema.Column{ResponseEventsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "responseevent_session_id",
				Unique:  false,
				Columns: []*schema.Column{ResponseEventsColumns[3]},
			},
			{
				Name:    "responseevent_user_id",
				Unique:  false,
				Columns: []*schema.Column{ResponseEventsColumns[4]},
			},
		},
	}

	// LlmRequestEventsColumns holds the columns for the "llm_request_events" table.
	LlmRequestEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeInt64},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt},
		{Name: "output_tokens", Type: field.TypeInt},
		{Name: "latency_ms", Type: field.TypeInt64},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: 2147483647, Default: ""},
	}
	// LlmRequestEventsTable holds the schema information for the "llm_request_events" table.
	LlmRequestEventsTable = &schema.Table{
		Name:       "llm_request_events",
		Columns:    LlmRequestEventsColumns,
		PrimaryKey: []*schema.Column{LlmRequestEventsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "llmrequestevent_purpose",
				Unique:  false,
				Columns: []*schema.Column{LlmRequestEventsColumns[5]},
			},
		},
	}

	// AssessmentResultsColumns holds the columns for the "assessment_results" table.
	AssessmentResultsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "user_id", Type: field.TypeString},
		{Name: "score", Type: field.TypeFloat64},
		{Name: "time_spent_ms", Type: field.TypeInt64},
		{Name: "next_difficulty", Type: field.TypeString},
		{Name: "completed_at", Type: field.TypeInt64},
		{Name: "data", Type: field.TypeString, Size: 2147483647},
	}
	// AssessmentResultsTable holds the schema information for the "assessment_results" table.
	AssessmentResultsTable = &schema.Table{
		Name:       "assessment_results",
		Columns:    AssessmentResultsColumns,
		PrimaryKey: []*schema.Column{AssessmentResultsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "assessmentresult_user_id_completed_at",
				Unique:  false,
				Columns: []*schema.Column{AssessmentResultsColumns[1], AssessmentResultsColumns[5]},
			},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		ProfilesTable,
		ResponseEventsTable,
		LlmRequestEventsTable,
		AssessmentResultsTable,
	}
)

// migrate creates missing tables, columns and indexes. Columns and
// indexes are never dropped.
func migrate(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return err
	}
	return m.Create(ctx, Tables...)
}
