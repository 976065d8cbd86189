package dummydb

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/progress"
	"github.com/trezcool/darasa/core/quiz"
	"github.com/trezcool/darasa/core/user"
)

type (
	DB struct {
		user       *userTable
		course     *courseTable
		lesson     *lessonTable
		enrollment *enrollmentTable
		question   *questionTable
		submission *submissionTable
		progress   *progressTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	courseTable struct {
		sync.RWMutex
		table map[string]*course.Course
	}

	lessonTable struct {
		sync.RWMutex
		table map[string]*course.Lesson
	}

	enrollmentTable struct {
		sync.RWMutex
		table map[string]*course.Enrollment // key: userID + "/" + courseID
	}

	questionTable struct {
		sync.RWMutex
		table map[string]*quiz.Question
	}

	submissionTable struct {
		sync.RWMutex
		table map[string]*quiz.Submission
	}

	progressTable struct {
		sync.RWMutex
		table map[string]*progress.Record // key: userID + "/" + lessonID
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:       &userTable{table: make(map[string]*user.User)},
		course:     &courseTable{table: make(map[string]*course.Course)},
		lesson:     &lessonTable{table: make(map[string]*course.Lesson)},
		enrollment: &enrollmentTable{table: make(map[string]*course.Enrollment)},
		question:   &questionTable{table: make(map[string]*quiz.Question)},
		submission: &submissionTable{table: make(map[string]*quiz.Submission)},
		progress:   &progressTable{table: make(map[string]*progress.Record)},
	}
	return db, nil
}

// fixture helpers

func (db *DB) AddCourse(crs course.Course) course.Course {
	db.course.Lock()
	defer db.course.Unlock()

	if crs.ID == "" {
		crs.ID = uuid.New().String()
	}
	if crs.CreatedAt.IsZero() {
		crs.CreatedAt = time.Now().UTC()
		crs.UpdatedAt = crs.CreatedAt
	}
	db.course.table[crs.ID] = &crs
	return crs
}

func (db *DB) AddLesson(lsn course.Lesson) course.Lesson {
	db.lesson.Lock()
	defer db.lesson.Unlock()

	if lsn.ID == "" {
		lsn.ID = uuid.New().String()
	}
	if lsn.CreatedAt.IsZero() {
		lsn.CreatedAt = time.Now().UTC()
		lsn.UpdatedAt = lsn.CreatedAt
	}
	db.lesson.table[lsn.ID] = &lsn
	return lsn
}

func (db *DB) AddQuestion(qst quiz.Question) quiz.Question {
	db.question.Lock()
	defer db.question.Unlock()

	if qst.ID == "" {
		qst.ID = uuid.New().String()
	}
	db.question.table[qst.ID] = &qst
	return qst
}

func progressKey(userID, lessonID string) string { return userID + "/" + lessonID }

func enrollmentKey(userID, courseID string) string { return userID + "/" + courseID }
