package dto

// QuestionRequest is one authored question in a create/replace payload.
type QuestionRequest struct {
	Text          string   `json:"text"`
	Type          string   `json:"type"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correct_answer"`
}

// TestRequest is the create/replace payload for a test and its questions.
type TestRequest struct {
	Title            string            `json:"title"`
	Description      string            `json:"description,omitempty"`
	TimeLimit        *int              `json:"time_limit,omitempty"`
	ShuffleQuestions bool              `json:"shuffle_questions"`
	Questions        []QuestionRequest `json:"questions"`
}

// TestSummaryResponse is one row of the catalog listing.
type TestSummaryResponse struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	QuestionCount int    `json:"question_count"`
}

// TestListResponse wraps the catalog listing.
type TestListResponse struct {
	Tests []TestSummaryResponse `json:"tests"`
}

// QuestionDetailResponse includes the correct answer; only returned to the
// test's creator.
type QuestionDetailResponse struct {
	ID            string   `json:"id"`
	Text          string   `json:"text"`
	Type          string   `json:"type"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correct_answer,omitempty"`
}

// TestDetailResponse is the full authored test, creator view.
type TestDetailResponse struct {
	ID               string                   `json:"id"`
	Title            string                   `json:"title"`
	Description      string                   `json:"description,omitempty"`
	TimeLimit        *int                     `json:"time_limit,omitempty"`
	ShuffleQuestions bool                     `json:"shuffle_questions"`
	Questions        []QuestionDetailResponse `json:"questions"`
}

// MutationResponse confirms a create/update/delete with a localized message.
type MutationResponse struct {
	Message string `json:"message"`
	TestID  string `json:"test_id,omitempty"`
}
