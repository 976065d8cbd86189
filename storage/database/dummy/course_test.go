package dummydb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core/course"
)

func TestCourseRepository(t *testing.T) {
	db, err := Open()
	require.NoError(t, err)
	repo := NewCourseRepository(db)
	ctx := context.Background()

	crs := db.AddCourse(course.Course{Title: "Go from Zero", InstructorID: "i1"})
	l2 := db.AddLesson(course.Lesson{CourseID: crs.ID, Title: "Types", Phase: 1, OrderIndex: 2})
	l1 := db.AddLesson(course.Lesson{CourseID: crs.ID, Title: "Hello", Phase: 1, OrderIndex: 1})
	l3 := db.AddLesson(course.Lesson{CourseID: crs.ID, Title: "Ship it", Phase: 2, OrderIndex: 1})
	db.AddLesson(course.Lesson{CourseID: "other", Title: "Noise", Phase: 1, OrderIndex: 1})

	t.Run("GetCourse", func(t *testing.T) {
		got, err := repo.GetCourse(ctx, crs.ID)
		require.NoError(t, err)
		assert.Equal(t, crs.Title, got.Title)

		_, err = repo.GetCourse(ctx, "nope")
		assert.Equal(t, course.ErrNotFound, err)
	})

	t.Run("QueryAllCourses", func(t *testing.T) {
		courses, err := repo.QueryAllCourses(ctx)
		require.NoError(t, err)
		assert.Len(t, courses, 1)
	})

	t.Run("ListLessons ordered", func(t *testing.T) {
		lessons, err := repo.ListLessons(ctx, crs.ID)
		require.NoError(t, err)
		require.Len(t, lessons, 3)
		assert.Equal(t, []string{l1.ID, l2.ID, l3.ID}, []string{lessons[0].ID, lessons[1].ID, lessons[2].ID})
	})

	t.Run("GetLesson", func(t *testing.T) {
		got, err := repo.GetLesson(ctx, l1.ID)
		require.NoError(t, err)
		assert.Equal(t, "Hello", got.Title)

		_, err = repo.GetLesson(ctx, "nope")
		assert.Equal(t, course.ErrLessonNotFound, err)
	})

	t.Run("enrollment", func(t *testing.T) {
		enrolled, err := repo.IsEnrolled(ctx, "u1", crs.ID)
		require.NoError(t, err)
		assert.False(t, enrolled)

		_, err = repo.CreateEnrollment(ctx, course.Enrollment{UserID: "u1", CourseID: crs.ID, CreatedAt: time.Now().UTC()})
		require.NoError(t, err)

		enrolled, err = repo.IsEnrolled(ctx, "u1", crs.ID)
		require.NoError(t, err)
		assert.True(t, enrolled)

		_, err = repo.CreateEnrollment(ctx, course.Enrollment{UserID: "u1", CourseID: crs.ID})
		assert.Equal(t, course.ErrAlreadyEnrolled, err)
	})
}
