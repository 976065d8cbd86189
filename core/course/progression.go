package course

import (
	"math"
	"sort"

	"github.com/trezcool/darasa/core/progress"
	"github.com/trezcool/darasa/core/user"
)

// LessonState is the viewer-facing lock/completion state of one lesson.
type LessonState struct {
	Lesson           Lesson `json:"lesson"`
	Locked           bool   `json:"is_locked"`
	Completed        bool   `json:"is_completed"`
	HighestQuizScore int    `json:"highest_quiz_score"`
}

// SortLessons orders lessons by their explicit composite sort key
// (phase, order index, ID). Store return order is never trusted; the ID
// tiebreak keeps the order total even when two lessons share an index.
func SortLessons(lessons []Lesson) {
	sort.SliceStable(lessons, func(i, j int) bool {
		li, lj := lessons[i], lessons[j]
		if li.Phase != lj.Phase {
			return li.Phase < lj.Phase
		}
		if li.OrderIndex != lj.OrderIndex {
			return li.OrderIndex < lj.OrderIndex
		}
		return li.ID < lj.ID
	})
}

// ComputeLessonStates derives the lock/completion state for an ordered lesson
// sequence. Lesson i (i>0) is locked unless lesson i-1 is completed; the
// first lesson is never locked. A privileged role forces every lesson
// unlocked without altering completion.
//
// Missing progress records are synthesized as zero records, never treated as
// an error. Enrollment is the caller's concern; the policy is pure.
func ComputeLessonStates(lessons []Lesson, records map[string]progress.Record, role user.Role) []LessonState {
	SortLessons(lessons)

	states := make([]LessonState, 0, len(lessons))
	prevCompleted := true // L0 is always unlocked
	for _, lsn := range lessons {
		rec := records[lsn.ID] // zero Record when absent
		states = append(states, LessonState{
			Lesson:           lsn,
			Locked:           !prevCompleted && !role.Privileged(),
			Completed:        rec.Completed,
			HighestQuizScore: rec.HighestQuizScore,
		})
		prevCompleted = rec.Completed
	}
	return states
}

// CompletionPercent returns round(100 × completed / total); 0 for an empty
// course.
func CompletionPercent(lessons []Lesson, records map[string]progress.Record) int {
	if len(lessons) == 0 {
		return 0
	}
	var completed int
	for _, lsn := range lessons {
		if records[lsn.ID].Completed {
			completed++
		}
	}
	return int(math.Round(100 * float64(completed) / float64(len(lessons))))
}
