package entity

import (
	"net/http"
	"time"

	"classroom/lib/validate"
)

// Lesson lives embedded in the owning student's lessons array. The id is
// unique within that array only, never globally.
type Lesson struct {
	Id          string     `json:"id" bson:"id"`
	Title       string     `json:"title" bson:"title"`
	Description string     `json:"description" bson:"description"`
	Completed   bool       `json:"completed" bson:"completed"`
	AssignedAt  time.Time  `json:"assignedAt" bson:"assigned_at"`
	CompletedAt *time.Time `json:"completedAt,omitempty" bson:"completed_at,omitempty"`
}

type AssignLessonRequest struct {
	StudentPhone string `json:"studentPhone" validate:"required"`
	Title        string `json:"title" validate:"required"`
	Description  string `json:"description" validate:"omitempty"`
}

func (r *AssignLessonRequest) Bind(_ *http.Request) error {
	return validate.Struct(r)
}

type MarkLessonDoneRequest struct {
	Phone    string `json:"phone" validate:"required"`
	LessonId string `json:"lessonId" validate:"required"`
}

func (r *MarkLessonDoneRequest) Bind(_ *http.Request) error {
	return validate.Struct(r)
}
