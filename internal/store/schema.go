package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table names.
const (
	tableAttempts       = "attempts"
	tableAttemptTags    = "attempt_tags"
	tableWrongQuestions = "wrong_questions"
	tableTagProgress    = "tag_progress"
	tableLLMEvents      = "llm_events"
)

// Timestamps are stored as Unix milliseconds so ordering and range
// predicates are plain integer comparisons.

var (
	attemptsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "user_id", Type: field.TypeString},
		{Name: "question_id", Type: field.TypeString},
		{Name: "question_text", Type: field.TypeString},
		{Name: "question_type", Type: field.TypeString},
		{Name: "user_answer", Type: field.TypeString},
		{Name: "correct_answer", Type: field.TypeString},
		{Name: "is_correct", Type: field.TypeBool},
		{Name: "score", Type: field.TypeFloat64},
		{Name: "tags", Type: field.TypeString, Default: "[]"},
		{Name: "difficulty", Type: field.TypeString},
		{Name: "feedback", Type: field.TypeString, Default: ""},
		{Name: "mistakes", Type: field.TypeString, Default: "[]"},
		{Name: "explanation", Type: field.TypeString, Default: ""},
		{Name: "detailed_explanation", Type: field.TypeString, Default: ""},
		{Name: "suggested_improvement", Type: field.TypeString, Default: ""},
		{Name: "source_excerpt", Type: field.TypeString, Default: "[]"},
		{Name: "created_at", Type: field.TypeInt64},
	}
	attemptsTable = &schema.Table{
		Name:       tableAttempts,
		Columns:    attemptsColumns,
		PrimaryKey: []*schema.Column{attemptsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "attempt_user_created", Columns: []*schema.Column{attemptsColumns[1], attemptsColumns[17]}},
		},
	}

	attemptTagsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "attempt_id", Type: field.TypeInt64},
		{Name: "user_id", Type: field.TypeString},
		{Name: "tag", Type: field.TypeString},
		{Name: "is_correct", Type: field.TypeBool},
		{Name: "created_at", Type: field.TypeInt64},
	}
	attemptTagsTable = &schema.Table{
		Name:       tableAttemptTags,
		Columns:    attemptTagsColumns,
		PrimaryKey: []*schema.Column{attemptTagsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "attempttag_user_tag", Columns: []*schema.Column{attemptTagsColumns[2], attemptTagsColumns[3]}},
		},
	}

	wrongQuestionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "user_id", Type: field.TypeString},
		{Name: "question_id", Type: field.TypeString},
		{Name: "question_text", Type: field.TypeString},
		{Name: "question_type", Type: field.TypeString},
		{Name: "user_answer", Type: field.TypeString},
		{Name: "correct_answer", Type: field.TypeString},
		{Name: "mistakes", Type: field.TypeString, Default: "[]"},
		{Name: "difficulty", Type: field.TypeString},
		{Name: "tags", Type: field.TypeString, Default: "[]"},
		{Name: "detailed_explanation", Type: field.TypeString, Default: ""},
		{Name: "suggested_improvement", Type: field.TypeString, Default: ""},
		{Name: "first_wrong_at", Type: field.TypeInt64},
		{Name: "last_wrong_at", Type: field.TypeInt64},
		{Name: "wrong_count", Type: field.TypeInt, Default: 1},
		{Name: "review_count", Type: field.TypeInt, Default: 0},
		{Name: "mastered", Type: field.TypeBool, Default: false},
	}
	wrongQuestionsTable = &schema.Table{
		Name:       tableWrongQuestions,
		Columns:    wrongQuestionsColumns,
		PrimaryKey: []*schema.Column{wrongQuestionsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "wrongquestion_user_question", Unique: true, Columns: []*schema.Column{wrongQuestionsColumns[1], wrongQuestionsColumns[2]}},
		},
	}

	tagProgressColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "user_id", Type: field.TypeString},
		{Name: "tag", Type: field.TypeString},
		{Name: "total_attempts", Type: field.TypeInt, Default: 0},
		{Name: "correct_attempts", Type: field.TypeInt, Default: 0},
		{Name: "first_attempt_at", Type: field.TypeInt64},
		{Name: "last_attempt_at", Type: field.TypeInt64},
	}
	tagProgressTable = &schema.Table{
		Name:       tableTagProgress,
		Columns:    tagProgressColumns,
		PrimaryKey: []*schema.Column{tagProgressColumns[0]},
		Indexes: []*schema.Index{
			{Name: "tagprogress_user_tag", Unique: true, Columns: []*schema.Column{tagProgressColumns[1], tagProgressColumns[2]}},
		},
	}

	llmEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "created_at", Type: field.TypeInt64},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		{Name: "success", Type: field.TypeBool},
		{Name: "streamed", Type: field.TypeBool, Default: false},
		{Name: "error_message", Type: field.TypeString, Default: ""},
		{Name: "request_body", Type: field.TypeString, Default: ""},
		{Name: "response_body", Type: field.TypeString, Default: ""},
	}
	llmEventsTable = &schema.Table{
		Name:       tableLLMEvents,
		Columns:    llmEventsColumns,
		PrimaryKey: []*schema.Column{llmEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llmevent_created", Columns: []*schema.Column{llmEventsColumns[1]}},
		},
	}

	// tables is the full schema applied by Open.
	tables = []*schema.Table{
		attemptsTable,
		attemptTagsTable,
		wrongQuestionsTable,
		tagProgressTable,
		llmEventsTable,
	}
)
