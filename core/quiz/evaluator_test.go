package quiz

import (
	"testing"
)

func lessonQuestions(correct ...int) []Question {
	qs := make([]Question, 0, len(correct))
	for i, c := range correct {
		qs = append(qs, Question{
			ID:            string(rune('a' + i)),
			LessonID:      "lsn1",
			Position:      i,
			Text:          "?",
			Options:       []string{"A", "B", "C", "D"},
			CorrectOption: c,
		})
	}
	return qs
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name      string
		questions []Question
		answers   []int
		threshold int
		wantScore int
		wantPass  bool
	}{
		{name: "no questions", questions: nil, answers: []int{0}, threshold: 70},
		{name: "all correct", questions: lessonQuestions(0, 1, 2), answers: []int{0, 1, 2}, threshold: 70, wantScore: 100, wantPass: true},
		{name: "two of three", questions: lessonQuestions(0, 1, 2), answers: []int{0, 1, 3}, threshold: 70, wantScore: 67},
		{name: "none correct", questions: lessonQuestions(0, 1, 2), answers: []int{1, 2, 3}, threshold: 70},
		{name: "short answers count as incorrect", questions: lessonQuestions(0, 1, 2), answers: []int{0}, threshold: 70, wantScore: 33},
		{name: "no answers", questions: lessonQuestions(0, 1), answers: nil, threshold: 70},
		{name: "out of range index is incorrect", questions: lessonQuestions(0, 1), answers: []int{0, 9}, threshold: 70, wantScore: 50},
		{name: "negative index is incorrect", questions: lessonQuestions(0, 1), answers: []int{-1, 1}, threshold: 70, wantScore: 50},
		{name: "exact threshold passes", questions: lessonQuestions(0, 1, 2, 3, 0, 1, 2, 3, 0, 1), answers: []int{0, 1, 2, 3, 0, 1, 2, 0, 0, 0}, threshold: 70, wantScore: 70, wantPass: true},
		{name: "just below threshold fails", questions: lessonQuestions(0, 1, 2, 3, 0, 1, 2, 3, 0, 1), answers: []int{0, 1, 2, 3, 0, 1, 0, 0, 0, 0}, threshold: 70, wantScore: 60},
		{name: "rounding up", questions: lessonQuestions(0, 1, 2, 3, 0, 1), answers: []int{0, 1, 2, 3, 0, 0}, threshold: 70, wantScore: 83, wantPass: true},
		{name: "custom threshold", questions: lessonQuestions(0, 1), answers: []int{0, 2}, threshold: 50, wantScore: 50, wantPass: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Evaluate(tt.questions, tt.answers, tt.threshold)
			if res.Score != tt.wantScore {
				t.Errorf("Evaluate() score = %v, want %v", res.Score, tt.wantScore)
			}
			if res.Passed != tt.wantPass {
				t.Errorf("Evaluate() passed = %v, want %v", res.Passed, tt.wantPass)
			}
		})
	}
}

func TestEvaluate_correctVector(t *testing.T) {
	qs := lessonQuestions(0, 1, 2)
	res := Evaluate(qs, []int{0, 3}, 70)

	want := []bool{true, false, false}
	if len(res.Correct) != len(want) {
		t.Fatalf("Evaluate() correct = %v, want %v", res.Correct, want)
	}
	for i := range want {
		if res.Correct[i] != want[i] {
			t.Errorf("Evaluate() correct[%d] = %v, want %v", i, res.Correct[i], want[i])
		}
	}
}

func TestQuestion_StudentView(t *testing.T) {
	q := lessonQuestions(2)[0]
	sv := q.StudentView()

	if sv.ID != q.ID || sv.Text != q.Text || len(sv.Options) != len(q.Options) {
		t.Errorf("StudentView() = %+v, lost question data", sv)
	}
}
