package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"testboard/internal/domain"
	"testboard/internal/dto"
)

const (
	minPasswordLength = 6
	maxTitleLength    = 200
	maxAnswerLength   = 200
	minOptions        = 2
	maxOptions        = 5
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Validator provides request validation functionality
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateRegisterRequest validates a registration payload.
func (v *Validator) ValidateRegisterRequest(req *dto.RegisterRequest) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if strings.TrimSpace(req.Email) == "" {
		errors = append(errors, domain.NewMissingFieldError("email"))
	} else if !emailPattern.MatchString(req.Email) {
		errors = append(errors, domain.NewInvalidFormatError("email", req.Email))
	}

	if req.Password == "" {
		errors = append(errors, domain.NewMissingFieldError("password"))
	} else if utf8.RuneCountInString(req.Password) < minPasswordLength {
		errors = append(errors, domain.NewFieldError("password",
			fmt.Sprintf("password must be at least %d characters", minPasswordLength)))
	}

	if req.Role == "" {
		errors = append(errors, domain.NewMissingFieldError("role"))
	} else if !domain.ValidRole(req.Role) {
		errors = append(errors, domain.NewFieldError("role",
			`role must be "participant" or "creator"`))
	}

	return errors
}

// ValidateTestRequest validates a create/replace test payload, including
// every question.
func (v *Validator) ValidateTestRequest(req *dto.TestRequest) domain.ValidationErrors {
	var errors domain.ValidationErrors

	title := strings.TrimSpace(req.Title)
	if title == "" {
		errors = append(errors, domain.NewMissingFieldError("title"))
	} else if n := utf8.RuneCountInString(req.Title); n > maxTitleLength {
		errors = append(errors, domain.NewOutOfRangeError("title", n, 1, maxTitleLength))
	}

	if req.TimeLimit != nil && *req.TimeLimit <= 0 {
		errors = append(errors, domain.NewFieldError("time_limit", "time limit must be positive"))
	}

	for i := range req.Questions {
		errors = append(errors, v.validateQuestion(i, &req.Questions[i])...)
	}

	return errors
}

func (v *Validator) validateQuestion(idx int, q *dto.QuestionRequest) domain.ValidationErrors {
	var errors domain.ValidationErrors
	field := func(name string) string {
		return fmt.Sprintf("questions[%d].%s", idx, name)
	}

	if strings.TrimSpace(q.Text) == "" {
		errors = append(errors, domain.NewMissingFieldError(field("text")))
	}

	if !domain.ValidQuestionType(q.Type) {
		errors = append(errors, domain.NewFieldError(field("type"),
			`type must be "open" or "multiple_choice"`))
		return errors
	}

	if domain.QuestionType(q.Type) == domain.QuestionMultipleChoice {
		if len(q.Options) < minOptions || len(q.Options) > maxOptions {
			errors = append(errors, domain.NewOutOfRangeError(field("options"),
				len(q.Options), minOptions, maxOptions))
		} else if !containsString(q.Options, q.CorrectAnswer) {
			errors = append(errors, domain.NewFieldError(field("correct_answer"),
				"correct answer must be one of the options"))
		}
	}

	return errors
}

// ValidateSubmitRequest validates a submission payload. An empty answers
// list is rejected outright.
func (v *Validator) ValidateSubmitRequest(req *dto.SubmitTestRequest) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if len(req.Answers) == 0 {
		errors = append(errors, domain.NewMissingFieldError("answers"))
		return errors
	}

	for i, ans := range req.Answers {
		field := func(name string) string {
			return fmt.Sprintf("answers[%d].%s", i, name)
		}
		if strings.TrimSpace(ans.QuestionID) == "" {
			errors = append(errors, domain.NewMissingFieldError(field("question_id")))
		}
		if n := utf8.RuneCountInString(ans.Answer); n > maxAnswerLength {
			errors = append(errors, domain.NewOutOfRangeError(field("answer"),
				n, 0, maxAnswerLength))
		}
		if ans.AnswerTime < 0 {
			errors = append(errors, domain.NewFieldError(field("answer_time"),
				"answer time must be non-negative"))
		}
	}

	return errors
}

// ValidateExportFormat checks the stats export format parameter.
func (v *Validator) ValidateExportFormat(format string) domain.ValidationErrors {
	switch format {
	case "csv", "json", "excel":
		return nil
	}
	return domain.ValidationErrors{domain.NewInvalidFormatError("format", format)}
}

func containsString(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}
