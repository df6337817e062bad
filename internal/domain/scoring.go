package domain

// SubmittedAnswer is one answer of a submission, in submission order.
type SubmittedAnswer struct {
	QuestionID string
	Answer     string
	AnswerTime float64
}

// GradedAnswer is the grading outcome for one submitted answer.
type GradedAnswer struct {
	QuestionID    string
	Answer        string
	CorrectAnswer string
	IsCorrect     bool
	AnswerTime    float64
}

// GradeResult holds the percentage score and the per-answer record of a
// submission.
type GradeResult struct {
	Score   float64
	Answers []GradedAnswer
}

// Grade scores a submission against the test's question bank. Every
// submitted question ID must belong to the question set; otherwise the
// whole submission is rejected with a ValidationErrors value so that no
// partial result is ever recorded.
//
// Correctness is exact string equality with the stored correct answer,
// case-sensitive and without normalization. The score is
// correct/len(questions)*100, or 0 for a test without questions.
func Grade(questions []Question, submitted []SubmittedAnswer) (*GradeResult, error) {
	byID := make(map[string]*Question, len(questions))
	for i := range questions {
		byID[questions[i].ID] = &questions[i]
	}

	var errs ValidationErrors
	for _, ans := range submitted {
		if _, ok := byID[ans.QuestionID]; !ok {
			errs = append(errs, NewFieldError("question_id", "question "+ans.QuestionID+" does not belong to this test"))
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}

	result := &GradeResult{Answers: make([]GradedAnswer, 0, len(submitted))}
	correct := 0
	for _, ans := range submitted {
		q := byID[ans.QuestionID]
		isCorrect := ans.Answer == q.CorrectAnswer
		if isCorrect {
			correct++
		}
		result.Answers = append(result.Answers, GradedAnswer{
			QuestionID:    ans.QuestionID,
			Answer:        ans.Answer,
			CorrectAnswer: q.CorrectAnswer,
			IsCorrect:     isCorrect,
			AnswerTime:    ans.AnswerTime,
		})
	}

	if len(questions) > 0 {
		result.Score = float64(correct) / float64(len(questions)) * 100
	}
	return result, nil
}
