package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FlexID accepts a JSON string or number and keeps its canonical string form.
type FlexID string

func (f *FlexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	if i, err := n.Int64(); err == nil {
		*f = FlexID(strconv.FormatInt(i, 10))
		return nil
	}
	*f = FlexID(n.String())
	return nil
}

// FlexText accepts a JSON string, number, bool or list of strings.
// Lists are joined with ", ". Set reports whether the field was present at all.
type FlexText struct {
	Value string
	Set   bool
}

func (f *FlexText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	f.Set = true
	if bytes.Equal(data, []byte("null")) {
		f.Set = false
		f.Value = ""
		return nil
	}
	switch data[0] {
	case '"':
		return json.Unmarshal(data, &f.Value)
	case '[':
		var parts []FlexText
		if err := json.Unmarshal(data, &parts); err != nil {
			return err
		}
		values := make([]string, 0, len(parts))
		for _, p := range parts {
			values = append(values, p.Value)
		}
		f.Value = strings.Join(values, ", ")
		return nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		f.Value = strconv.FormatBool(b)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("unsupported answer value: %w", err)
		}
		f.Value = n.String()
		return nil
	}
}

func (f FlexText) MarshalJSON() ([]byte, error) {
	if !f.Set {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// FlexNumber accepts a JSON number or a numeric string.
type FlexNumber struct {
	Value float64
	Set   bool
}

func (f *FlexNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = FlexNumber{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			// Present but not numeric; the validator reports it.
			*f = FlexNumber{}
			return nil
		}
		*f = FlexNumber{Value: v, Set: true}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		*f = FlexNumber{}
		return nil
	}
	*f = FlexNumber{Value: v, Set: true}
	return nil
}

func (f FlexNumber) MarshalJSON() ([]byte, error) {
	if !f.Set {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// Num builds a set FlexNumber.
func Num(v float64) FlexNumber {
	return FlexNumber{Value: v, Set: true}
}

// Text builds a set FlexText.
func Text(v string) FlexText {
	return FlexText{Value: v, Set: true}
}

// SubmittedAnswer is the raw, loosely typed answer as sent by the different quiz clients.
type SubmittedAnswer struct {
	QuestionID FlexID     `json:"questionId"`
	TimeSpent  FlexNumber `json:"timeSpent"`
	Answer     FlexText   `json:"answer"`
	UserAnswer FlexText   `json:"userAnswer"`
	IsCorrect  *bool      `json:"isCorrect,omitempty"`
	HintsUsed  int        `json:"hintsUsed,omitempty"`
}

// SubmitQuizRequest is the body of POST /api/quizzes/{quizType}/{slug}/submit.
// @Description Quiz completion payload
type SubmitQuizRequest struct {
	QuizID         FlexID            `json:"quizId"`
	Answers        []SubmittedAnswer `json:"answers"`
	TotalTime      FlexNumber        `json:"totalTime" swaggertype:"number"`
	Score          FlexNumber        `json:"score" swaggertype:"number"`
	Type           string            `json:"type"`
	TotalQuestions *int              `json:"totalQuestions,omitempty"`
	CompletedAt    *time.Time        `json:"completedAt,omitempty"`
	Difficulty     string            `json:"difficulty,omitempty"`
}

// AttemptPayload is the attempt returned to the client.
type AttemptPayload struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	QuizID    int64     `json:"quizId"`
	Score     int       `json:"score"`
	Accuracy  int       `json:"accuracy"`
	TimeSpent int       `json:"timeSpent"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// QuizPayload is the quiz summary returned after best-score bookkeeping.
type QuizPayload struct {
	ID              int64      `json:"id"`
	Slug            string     `json:"slug"`
	QuizType        string     `json:"quizType"`
	BestScore       *int       `json:"bestScore"`
	LastAttemptedAt *time.Time `json:"lastAttemptedAt,omitempty"`
}

// SubmitQuizResult is the result block of a successful submission.
type SubmitQuizResult struct {
	UpdatedUserQuiz QuizPayload    `json:"updatedUserQuiz"`
	QuizAttempt     AttemptPayload `json:"quizAttempt"`
	PercentageScore int            `json:"percentageScore"`
	TotalQuestions  int            `json:"totalQuestions"`
	Score           float64        `json:"score"`
	TotalTime       float64        `json:"totalTime"`
}

// SubmitQuizResponse is the success envelope.
type SubmitQuizResponse struct {
	Success bool             `json:"success"`
	Result  SubmitQuizResult `json:"result"`
}

// ErrorResponse is the failure envelope shared by every endpoint.
type ErrorResponse struct {
	Success bool                   `json:"success"`
	Error   string                 `json:"error"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// StreakResponse is returned by GET /api/users/me/streak.
type StreakResponse struct {
	Streak         int        `json:"streak"`
	LongestStreak  int        `json:"longestStreak"`
	LastReviewDate *time.Time `json:"lastReviewDate"`
}
