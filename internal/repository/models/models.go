package models

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// StringSlice stores a string array as a JSON column. A nil slice maps to
// SQL NULL so that open questions keep options NULL, matching the schema.
type StringSlice []string

// Value implements the driver.Valuer interface
func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	jsonData, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(jsonData), nil
}

// Scan implements the sql.Scanner interface
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}

	var bytesToParse []byte
	switch v := value.(type) {
	case []byte:
		bytesToParse = v
	case string:
		bytesToParse = []byte(v)
	default:
		return errors.New("StringSlice Scan: unsupported type " + fmt.Sprintf("%T", value))
	}

	if len(bytesToParse) == 0 || string(bytesToParse) == "null" {
		*s = nil
		return nil
	}
	return json.Unmarshal(bytesToParse, s)
}

// User row in the users table.
type User struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Role         string    `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
}

// Test row in the tests table.
type Test struct {
	ID               string         `db:"id"`
	Title            string         `db:"title"`
	Description      sql.NullString `db:"description"`
	CreatorID        string         `db:"creator_id"`
	TimeLimit        sql.NullInt64  `db:"time_limit"`
	ShuffleQuestions bool           `db:"shuffle_questions"`
	CreatedAt        time.Time      `db:"created_at"`
}

// Question row in the questions table.
type Question struct {
	ID            string      `db:"id"`
	TestID        string      `db:"test_id"`
	Text          string      `db:"text"`
	Type          string      `db:"type"`
	Options       StringSlice `db:"options"`
	CorrectAnswer string      `db:"correct_answer"`
}

// TestAttempt row in the test_attempts table.
type TestAttempt struct {
	ID        string          `db:"id"`
	UserID    string          `db:"user_id"`
	TestID    string          `db:"test_id"`
	Score     sql.NullFloat64 `db:"score"`
	StartTime time.Time       `db:"start_time"`
	EndTime   sql.NullTime    `db:"end_time"`
}

// Answer row in the answers table.
type Answer struct {
	ID         string  `db:"id"`
	AttemptID  string  `db:"attempt_id"`
	QuestionID string  `db:"question_id"`
	Answer     string  `db:"answer"`
	IsCorrect  bool    `db:"is_correct"`
	AnswerTime float64 `db:"answer_time"`
}
