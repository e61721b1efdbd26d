package domain

import "time"

// Difficulty is the optional hint that enables adaptive-performance tracking.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty accepts the empty hint and the three known levels.
func ParseDifficulty(s string) (Difficulty, bool) {
	switch Difficulty(s) {
	case "", DifficultyEasy, DifficultyMedium, DifficultyHard:
		return Difficulty(s), true
	default:
		return "", false
	}
}

// ChoiceAnswer is carried by mcq and code answers.
type ChoiceAnswer struct {
	Answer     *string
	UserAnswer *string
	IsCorrect  *bool
}

// BlankAnswer is carried by fill-in-the-blank answers; multi-blank input is already joined.
type BlankAnswer struct {
	UserAnswer string
	IsCorrect  *bool
}

// TextAnswer is carried by open-ended answers.
type TextAnswer struct {
	Answer    string
	IsCorrect *bool
}

// FlashcardAnswer is carried by flashcard answers; only timing is required.
type FlashcardAnswer struct {
	Answer    *string
	IsCorrect *bool
}

// QuizAnswer is a tagged variant. Kind selects which one of the payload pointers is set.
type QuizAnswer struct {
	Kind       QuizType
	QuestionID string
	TimeSpent  int
	HintsUsed  int

	Choice    *ChoiceAnswer
	Blank     *BlankAnswer
	Text      *TextAnswer
	Flashcard *FlashcardAnswer
}

// UserAnswerText resolves the answer text stored with the attempt.
func (a QuizAnswer) UserAnswerText() string {
	switch a.Kind {
	case QuizTypeMCQ, QuizTypeCode:
		if a.Choice == nil {
			return ""
		}
		if a.Choice.Answer != nil && *a.Choice.Answer != "" {
			return *a.Choice.Answer
		}
		if a.Choice.UserAnswer != nil {
			return *a.Choice.UserAnswer
		}
		if a.Choice.Answer != nil {
			return *a.Choice.Answer
		}
		return ""
	case QuizTypeBlanks:
		if a.Blank == nil {
			return ""
		}
		return a.Blank.UserAnswer
	case QuizTypeOpenEnded:
		if a.Text == nil {
			return ""
		}
		return a.Text.Answer
	case QuizTypeFlashcard:
		if a.Flashcard == nil || a.Flashcard.Answer == nil {
			return ""
		}
		return *a.Flashcard.Answer
	default:
		return ""
	}
}

// ClientCorrectness returns the caller-computed correctness flag, if any.
func (a QuizAnswer) ClientCorrectness() *bool {
	switch a.Kind {
	case QuizTypeMCQ, QuizTypeCode:
		if a.Choice != nil {
			return a.Choice.IsCorrect
		}
	case QuizTypeBlanks:
		if a.Blank != nil {
			return a.Blank.IsCorrect
		}
	case QuizTypeOpenEnded:
		if a.Text != nil {
			return a.Text.IsCorrect
		}
	case QuizTypeFlashcard:
		if a.Flashcard != nil {
			return a.Flashcard.IsCorrect
		}
	}
	return nil
}

// QuizSubmission is the normalized, validated completion event.
type QuizSubmission struct {
	QuizSlug       string
	Type           QuizType
	Answers        []QuizAnswer
	TotalTime      float64
	Score          float64
	TotalQuestions int
	CompletedAt    time.Time
	Difficulty     Difficulty
	// Synthesized is set when placeholder answers were generated from TotalQuestions.
	Synthesized bool
}
