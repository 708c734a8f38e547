package domain

import "time"

// Default student used when a request does not name one
const (
	DefaultStudentName  = "Alumno API"
	DefaultStudentAge   = 10
	DefaultStudentGrade = "4º"
)

// Student is the learner an interaction belongs to.
type Student struct {
	ID        string
	Name      string
	Age       int
	Grade     string
	CreatedAt time.Time
}
