// Package scoring computes percentage scores, accuracy and per-type answer correctness.
package scoring

import (
	"math"
	"strings"

	"quiz-pipeline/internal/domain"
)

// PassThreshold is the percentage at or above which a completion counts as correct
// for adaptive tracking.
const PassThreshold = 70

// CalculatePercentageScore interprets score as a correct-answer count when it does
// not exceed totalQuestions, and as an already computed percentage otherwise.
func CalculatePercentageScore(score float64, totalQuestions int, _ domain.QuizType) int {
	if totalQuestions <= 0 {
		return 0
	}
	if score <= float64(totalQuestions) {
		return clamp(int(math.Round(score / float64(totalQuestions) * 100)))
	}
	return clamp(int(math.Round(score)))
}

// CalculateAccuracy counts answers whose correctness flag is true.
func CalculateAccuracy(answers []domain.QuizAnswer, totalQuestions int) int {
	if totalQuestions <= 0 {
		return 0
	}
	correct := 0
	for _, a := range answers {
		if c := a.ClientCorrectness(); c != nil && *c {
			correct++
		}
	}
	return clamp(int(math.Round(float64(correct) / float64(totalQuestions) * 100)))
}

// IsAnswerCorrect derives correctness server-side when the client sent no flag.
// Open-ended answers match leniently when either text contains the other.
func IsAnswerCorrect(quizType domain.QuizType, userAnswer, correctAnswer string) bool {
	switch quizType {
	case domain.QuizTypeOpenEnded:
		user := strings.ToLower(strings.TrimSpace(userAnswer))
		correct := strings.ToLower(strings.TrimSpace(correctAnswer))
		if user == "" || correct == "" {
			return false
		}
		return strings.Contains(user, correct) || strings.Contains(correct, user)
	case domain.QuizTypeMCQ, domain.QuizTypeCode, domain.QuizTypeBlanks:
		return userAnswer == correctAnswer
	default:
		return false
	}
}

// ResolveCorrectness trusts the client flag and falls back to IsAnswerCorrect.
func ResolveCorrectness(answer domain.QuizAnswer, question domain.Question) bool {
	if c := answer.ClientCorrectness(); c != nil {
		return *c
	}
	return IsAnswerCorrect(answer.Kind, answer.UserAnswerText(), question.CorrectAnswer())
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
