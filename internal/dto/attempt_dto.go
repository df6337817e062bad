package dto

// AttemptQuestionResponse is a question as shown to a participant: options
// only for multiple choice, never the correct answer.
type AttemptQuestionResponse struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Type    string   `json:"type"`
	Options []string `json:"options"`
}

// StartTestResponse is returned when an attempt begins.
type StartTestResponse struct {
	TestID    string                    `json:"test_id"`
	Questions []AttemptQuestionResponse `json:"questions"`
}

// AnswerRequest is one submitted answer.
type AnswerRequest struct {
	QuestionID string  `json:"question_id"`
	Answer     string  `json:"answer"`
	AnswerTime float64 `json:"answer_time,omitempty"`
}

// SubmitTestRequest is the submission payload for a whole attempt.
type SubmitTestRequest struct {
	Answers []AnswerRequest `json:"answers"`
}

// CorrectAnswerResponse reveals the stored correct answer after submission.
type CorrectAnswerResponse struct {
	QuestionID    string `json:"question_id"`
	CorrectAnswer string `json:"correct_answer"`
}

// SubmitTestResponse is the grading outcome of a submission.
type SubmitTestResponse struct {
	Score          float64                 `json:"score"`
	CorrectAnswers []CorrectAnswerResponse `json:"correct_answers"`
}
