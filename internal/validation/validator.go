package validation

import (
	"fmt"
	"math"
	"strings"
	"time"

	"quiz-pipeline/internal/domain"
	"quiz-pipeline/internal/dto"
)

// Validator normalizes raw submissions into domain.QuizSubmission.
type Validator struct {
	now func() time.Time
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{now: time.Now}
}

// WithClock overrides the time source used for a missing completedAt.
func (v *Validator) WithClock(now func() time.Time) *Validator {
	v.now = now
	return v
}

// Normalize checks the required fields, infers quizId and type from the route
// when the body omits them, synthesizes placeholder answers when only a
// question count is known, and applies the per-type answer format rules.
func (v *Validator) Normalize(req dto.SubmitQuizRequest, routeSlug, routeType string) (*domain.QuizSubmission, error) {
	var errs domain.ValidationErrors

	slug := strings.TrimSpace(string(req.QuizID))
	if slug == "" {
		slug = strings.TrimSpace(routeSlug)
	}
	if slug == "" {
		errs = append(errs, domain.NewMissingFieldError("quizId"))
	}

	if !req.TotalTime.Set {
		errs = append(errs, domain.NewMissingFieldError("totalTime"))
	} else if req.TotalTime.Value <= 0 || math.IsNaN(req.TotalTime.Value) {
		errs = append(errs, domain.NewInvalidFormatError("totalTime", "must be a positive number of seconds"))
	}

	if !req.Score.Set {
		errs = append(errs, domain.NewMissingFieldError("score"))
	}

	rawType := strings.TrimSpace(req.Type)
	if rawType == "" {
		rawType = strings.TrimSpace(routeType)
	}
	if rawType == "" {
		errs = append(errs, domain.NewMissingFieldError("type"))
	}

	difficulty, ok := domain.ParseDifficulty(strings.ToLower(strings.TrimSpace(req.Difficulty)))
	if !ok {
		errs = append(errs, domain.NewInvalidFormatError("difficulty", "must be one of easy, medium, hard"))
	}

	answers := req.Answers
	synthesized := false
	if len(answers) == 0 {
		if req.TotalQuestions != nil && *req.TotalQuestions > 0 {
			answers = placeholderAnswers(*req.TotalQuestions, req.TotalTime.Value)
			synthesized = true
		} else {
			errs = append(errs, domain.NewMissingFieldError("answers"))
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}

	quizType, ok := domain.ParseQuizType(strings.ToLower(rawType))
	if !ok {
		return nil, domain.NewUnsupportedTypeError(rawType)
	}

	if formatErrs := v.ValidateAnswersFormat(quizType, answers); len(formatErrs) > 0 {
		return nil, formatErrs
	}

	submission := &domain.QuizSubmission{
		QuizSlug:    slug,
		Type:        quizType,
		Answers:     make([]domain.QuizAnswer, 0, len(answers)),
		TotalTime:   req.TotalTime.Value,
		Score:       req.Score.Value,
		CompletedAt: v.now(),
		Difficulty:  difficulty,
		Synthesized: synthesized,
	}
	if req.CompletedAt != nil && !req.CompletedAt.IsZero() {
		submission.CompletedAt = *req.CompletedAt
	}
	if req.TotalQuestions != nil && *req.TotalQuestions > 0 {
		submission.TotalQuestions = *req.TotalQuestions
	}
	for _, a := range answers {
		submission.Answers = append(submission.Answers, toQuizAnswer(quizType, a))
	}
	return submission, nil
}

// ValidateAnswersFormat applies the shape rules of each quiz type.
func (v *Validator) ValidateAnswersFormat(quizType domain.QuizType, answers []dto.SubmittedAnswer) domain.ValidationErrors {
	var errs domain.ValidationErrors

	for i, a := range answers {
		field := func(name string) string {
			return fmt.Sprintf("answers[%d].%s", i, name)
		}
		if !a.TimeSpent.Set {
			errs = append(errs, domain.NewInvalidFormatError(field("timeSpent"), "must be a number"))
		} else if a.TimeSpent.Value < 0 {
			errs = append(errs, domain.NewInvalidFormatError(field("timeSpent"), "must not be negative"))
		}

		switch quizType {
		case domain.QuizTypeMCQ, domain.QuizTypeCode:
			if !a.Answer.Set && !a.UserAnswer.Set {
				errs = append(errs, domain.NewMissingFieldError(field("answer")))
			}
		case domain.QuizTypeOpenEnded:
			if !a.Answer.Set {
				errs = append(errs, domain.NewMissingFieldError(field("answer")))
			}
		case domain.QuizTypeBlanks:
			if !a.UserAnswer.Set {
				errs = append(errs, domain.NewMissingFieldError(field("userAnswer")))
			}
		case domain.QuizTypeFlashcard:
		}
	}

	return errs
}

func placeholderAnswers(count int, totalTime float64) []dto.SubmittedAnswer {
	avg := 0.0
	if count > 0 {
		avg = math.Round(totalTime / float64(count))
	}
	out := make([]dto.SubmittedAnswer, count)
	for i := range out {
		out[i] = dto.SubmittedAnswer{
			TimeSpent:  dto.Num(avg),
			Answer:     dto.Text(""),
			UserAnswer: dto.Text(""),
		}
	}
	return out
}

func toQuizAnswer(quizType domain.QuizType, a dto.SubmittedAnswer) domain.QuizAnswer {
	qa := domain.QuizAnswer{
		Kind:       quizType,
		QuestionID: string(a.QuestionID),
		TimeSpent:  int(math.Round(a.TimeSpent.Value)),
		HintsUsed:  a.HintsUsed,
	}

	switch quizType {
	case domain.QuizTypeMCQ, domain.QuizTypeCode:
		choice := &domain.ChoiceAnswer{IsCorrect: a.IsCorrect}
		if a.Answer.Set {
			s := a.Answer.Value
			choice.Answer = &s
		}
		if a.UserAnswer.Set {
			s := a.UserAnswer.Value
			choice.UserAnswer = &s
		}
		qa.Choice = choice
	case domain.QuizTypeBlanks:
		qa.Blank = &domain.BlankAnswer{UserAnswer: a.UserAnswer.Value, IsCorrect: a.IsCorrect}
	case domain.QuizTypeOpenEnded:
		qa.Text = &domain.TextAnswer{Answer: a.Answer.Value, IsCorrect: a.IsCorrect}
	case domain.QuizTypeFlashcard:
		fc := &domain.FlashcardAnswer{IsCorrect: a.IsCorrect}
		if a.Answer.Set {
			s := a.Answer.Value
			fc.Answer = &s
		} else if a.UserAnswer.Set {
			s := a.UserAnswer.Value
			fc.Answer = &s
		}
		qa.Flashcard = fc
	}
	return qa
}
