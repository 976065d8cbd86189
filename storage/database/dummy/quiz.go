package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/darasa/core/quiz"
)

type questionRepository struct {
	db *questionTable
}

var _ quiz.QuestionRepository = (*questionRepository)(nil) // interface compliance check

func NewQuestionRepository(db *DB) quiz.QuestionRepository {
	return &questionRepository{db: db.question}
}

func (repo *questionRepository) ListQuestions(_ context.Context, lessonID string) ([]quiz.Question, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var questions []quiz.Question
	for _, qst := range repo.db.table {
		if qst.LessonID == lessonID {
			questions = append(questions, *qst)
		}
	}
	sort.Slice(questions, func(i, j int) bool { return questions[i].Position < questions[j].Position })
	return questions, nil
}

type submissionRepository struct {
	db *submissionTable
}

var _ quiz.SubmissionRepository = (*submissionRepository)(nil) // interface compliance check

func NewSubmissionRepository(db *DB) quiz.SubmissionRepository {
	return &submissionRepository{db: db.submission}
}

func (repo *submissionRepository) CreateSubmission(_ context.Context, sub quiz.Submission) (quiz.Submission, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	sub.ID = uuid.New().String()
	repo.db.table[sub.ID] = &sub
	return sub, nil
}

func (repo *submissionRepository) GetSubmission(_ context.Context, id string) (quiz.Submission, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if sub, ok := repo.db.table[id]; ok {
		return *sub, nil
	}
	return quiz.Submission{}, quiz.ErrSubmissionNotFound
}

func (repo *submissionRepository) QuerySubmissions(_ context.Context, userID, lessonID string) ([]quiz.Submission, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var subs []quiz.Submission
	for _, sub := range repo.db.table {
		if sub.UserID == userID && sub.LessonID == lessonID {
			subs = append(subs, *sub)
		}
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].CreatedAt.After(subs[j].CreatedAt) })
	return subs, nil
}
