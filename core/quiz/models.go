package quiz

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
)

var (
	// errors
	ErrNoQuestions           = errors.New("this lesson has no quiz")
	ErrNotProjectGated       = errors.New("this lesson does not take project submissions")
	ErrSubmissionNotFound    = errors.New("submission not found")
	ErrQuestionCountMismatch = errors.New("answers do not match the question set")
)

// Question belongs to exactly one lesson. The correct option index (and the
// explanation) are server-side only until an attempt has been scored.
type Question struct {
	ID            string      `json:"id"`
	LessonID      string      `json:"lesson_id"`
	Position      int         `json:"position"`
	Text          string      `json:"text"`
	Options       []string    `json:"options"`
	CorrectOption int         `json:"-"`
	Explanation   null.String `json:"-"`
}

// StudentQuestion is the pre-scoring client view of a Question.
type StudentQuestion struct {
	ID       string   `json:"id"`
	Position int      `json:"position"`
	Text     string   `json:"text"`
	Options  []string `json:"options"`
}

func (q Question) StudentView() StudentQuestion {
	return StudentQuestion{
		ID:       q.ID,
		Position: q.Position,
		Text:     q.Text,
		Options:  q.Options,
	}
}

// Submission is one scored quiz attempt. An attempt is a fact: rows are
// immutable once written.
type Submission struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	LessonID  string    `json:"lesson_id"`
	Answers   []int     `json:"answers"`
	Score     int       `json:"score"`
	Passed    bool      `json:"passed"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// NewSubmission is the request payload for a quiz attempt. Answers is the
// ordered selected-option index per question; a short list means the tail
// went unanswered.
type NewSubmission struct {
	Answers []int `json:"answers" validate:"required"`
}

func (ns *NewSubmission) Validate(validate *validator.Validate) error {
	return validate.Struct(ns)
}

type QuestionRepository interface {
	// ListQuestions returns a lesson's questions ordered by position.
	ListQuestions(ctx context.Context, lessonID string) ([]Question, error)
}

type SubmissionRepository interface {
	CreateSubmission(ctx context.Context, sub Submission) (Submission, error)
	GetSubmission(ctx context.Context, id string) (Submission, error)
	QuerySubmissions(ctx context.Context, userID, lessonID string) ([]Submission, error)
}
