package quiz

import "math"

// Result is the outcome of scoring one attempt against the answer key.
type Result struct {
	Score   int    `json:"score"`
	Passed  bool   `json:"passed"`
	Correct []bool `json:"per_question_correct"`
}

// Evaluate scores an attempt. It is pure and total:
//   - a short answers slice leaves the tail unanswered, scored incorrect;
//   - an out-of-range option index is incorrect, not a fault;
//   - zero questions yield score 0 and passed=false.
//
// Persisting the submission and updating the progress ledger are the
// caller's responsibility.
func Evaluate(questions []Question, answers []int, passThreshold int) Result {
	res := Result{Correct: make([]bool, len(questions))}
	if len(questions) == 0 {
		return res
	}

	var correctCount int
	for i, q := range questions {
		if i >= len(answers) {
			break
		}
		answer := answers[i]
		if answer < 0 || answer >= len(q.Options) {
			continue
		}
		if answer == q.CorrectOption {
			res.Correct[i] = true
			correctCount++
		}
	}

	res.Score = int(math.Round(100 * float64(correctCount) / float64(len(questions))))
	res.Passed = res.Score >= passThreshold
	return res
}
