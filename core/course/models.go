package course

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

type Course struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	InstructorID string    `json:"instructor_id"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

// Lesson is an orderable unit of course content. (Phase, OrderIndex, ID) is
// the unique total order used for locking; HasProject gates completion on a
// manual project submission instead of a quiz.
type Lesson struct {
	ID         string    `json:"id"`
	CourseID   string    `json:"course_id"`
	Title      string    `json:"title"`
	Phase      int       `json:"phase"`
	OrderIndex int       `json:"order_index"`
	HasProject bool      `json:"has_project"`
	ContentURL string    `json:"content_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"` // UTC
	UpdatedAt  time.Time `json:"updated_at"` // UTC
}

// Enrollment is the (learner, course) membership fact. Its existence lets
// the learner traverse the course's lesson sequence; its absence blocks all
// lesson access for non-privileged viewers.
type Enrollment struct {
	UserID    string    `json:"user_id"`
	CourseID  string    `json:"course_id"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// ProjectSubmission is the request payload for a project-gated lesson.
type ProjectSubmission struct {
	Link string `json:"link" validate:"required,url"`
}

func (ps *ProjectSubmission) Validate(validate *validator.Validate) error {
	ps.Link = core.CleanString(ps.Link)
	return validate.Struct(ps)
}
