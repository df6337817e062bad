package dto

import "time"

// QuestionDifficultyResponse aggregates outcomes for one question.
type QuestionDifficultyResponse struct {
	CorrectPercentage float64 `json:"correct_percentage"`
	AverageTime       float64 `json:"average_time"`
}

// TestStatsResponse is the creator-facing aggregate for a test. Difficulty
// is keyed by "question_<id>" and omits questions without recorded answers.
type TestStatsResponse struct {
	AverageScore   float64                               `json:"average_score"`
	CompletionTime float64                               `json:"completion_time"`
	Difficulty     map[string]QuestionDifficultyResponse `json:"difficulty"`
}

// AttemptExportRow is one raw per-attempt row of the stats export.
type AttemptExportRow struct {
	UserID            string     `json:"user_id"`
	Score             *float64   `json:"score"`
	StartTime         time.Time  `json:"start_time"`
	EndTime           *time.Time `json:"end_time"`
	CompletionSeconds float64    `json:"completion_time"`
}

// ExportResult is a rendered export document.
type ExportResult struct {
	ContentType string
	Filename    string
	Body        []byte
}
