package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core/quiz"
)

type questionRepository struct {
	db *sqlx.DB
}

var _ quiz.QuestionRepository = (*questionRepository)(nil) // interface compliance check

func NewQuestionRepository(db *sqlx.DB) *questionRepository {
	return &questionRepository{db: db}
}

type questionRow struct {
	ID            string         `db:"id"`
	LessonID      string         `db:"lesson_id"`
	Position      int            `db:"position"`
	Text          string         `db:"text"`
	Options       pq.StringArray `db:"options"`
	CorrectOption int            `db:"correct_option"`
	Explanation   null.String    `db:"explanation"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

func (r questionRow) toDomain() quiz.Question {
	return quiz.Question{
		ID:            r.ID,
		LessonID:      r.LessonID,
		Position:      r.Position,
		Text:          r.Text,
		Options:       r.Options,
		CorrectOption: r.CorrectOption,
		Explanation:   r.Explanation,
	}
}

func (repo *questionRepository) ListQuestions(ctx context.Context, lessonID string) ([]quiz.Question, error) {
	const q = `SELECT * FROM question WHERE lesson_id = $1 ORDER BY position`
	var rows []questionRow
	if err := repo.db.SelectContext(ctx, &rows, q, lessonID); err != nil {
		return nil, errors.Wrap(err, "listing questions")
	}
	questions := make([]quiz.Question, 0, len(rows))
	for _, row := range rows {
		questions = append(questions, row.toDomain())
	}
	return questions, nil
}

type submissionRepository struct {
	db *sqlx.DB
}

var _ quiz.SubmissionRepository = (*submissionRepository)(nil) // interface compliance check

func NewSubmissionRepository(db *sqlx.DB) *submissionRepository {
	return &submissionRepository{db: db}
}

type submissionRow struct {
	ID        string        `db:"id"`
	UserID    string        `db:"user_id"`
	LessonID  string        `db:"lesson_id"`
	Answers   pq.Int64Array `db:"answers"`
	Score     int           `db:"score"`
	Passed    bool          `db:"passed"`
	CreatedAt time.Time     `db:"created_at"`
}

func (r submissionRow) toDomain() quiz.Submission {
	answers := make([]int, 0, len(r.Answers))
	for _, ans := range r.Answers {
		answers = append(answers, int(ans))
	}
	return quiz.Submission{
		ID:        r.ID,
		UserID:    r.UserID,
		LessonID:  r.LessonID,
		Answers:   answers,
		Score:     r.Score,
		Passed:    r.Passed,
		CreatedAt: r.CreatedAt,
	}
}

func (repo *submissionRepository) CreateSubmission(ctx context.Context, sub quiz.Submission) (quiz.Submission, error) {
	sub.ID = uuid.New().String()

	answers := make(pq.Int64Array, 0, len(sub.Answers))
	for _, ans := range sub.Answers {
		answers = append(answers, int64(ans))
	}

	const q = `
		INSERT INTO quiz_submission (id, user_id, lesson_id, answers, score, passed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := repo.db.ExecContext(ctx, q, sub.ID, sub.UserID, sub.LessonID, answers, sub.Score, sub.Passed, sub.CreatedAt)
	if err != nil {
		return quiz.Submission{}, errors.Wrap(err, "creating submission")
	}
	return sub, nil
}

func (repo *submissionRepository) GetSubmission(ctx context.Context, id string) (quiz.Submission, error) {
	var row submissionRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM quiz_submission WHERE id = $1`, id); err != nil {
		return quiz.Submission{}, trapNoRowsErr(err, quiz.ErrSubmissionNotFound, "getting submission")
	}
	return row.toDomain(), nil
}

func (repo *submissionRepository) QuerySubmissions(ctx context.Context, userID, lessonID string) ([]quiz.Submission, error) {
	const q = `SELECT * FROM quiz_submission WHERE user_id = $1 AND lesson_id = $2 ORDER BY created_at DESC`
	var rows []submissionRow
	if err := repo.db.SelectContext(ctx, &rows, q, userID, lessonID); err != nil {
		return nil, errors.Wrap(err, "querying submissions")
	}
	subs := make([]quiz.Submission, 0, len(rows))
	for _, row := range rows {
		subs = append(subs, row.toDomain())
	}
	return subs, nil
}
