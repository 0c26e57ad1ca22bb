// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles —
// handlers, storage, and validation can all import types without depending
// on each other.
package types

import "time"

// Semester values a Course may take.
const (
	SemesterFirst  = "First"
	SemesterSecond = "Second"
)

// Student represents a student record.
//
// Struct tags serve three purposes:
//
//  1. json:"..."     — the field name in API responses and request bodies.
//  2. db:"..."       — the column name sqlx scans into.
//  3. validate:"..." — schema rules the store re-checks before every write,
//     so a record that bypassed the HTTP validation layer still cannot be
//     persisted in an invalid state.
type Student struct {
	ID        string    `json:"id"        db:"id"`
	Name      string    `json:"name"      db:"name"   validate:"required,min=2"`
	Course    string    `json:"course"    db:"course" validate:"required"`
	Level     int       `json:"level"     db:"level"  validate:"min=100,max=500"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// StudentPatch is a partial Student: nil fields are left untouched.
// A create request is a patch with every required field set.
type StudentPatch struct {
	Name   *string `json:"name"`
	Course *string `json:"course"`
	Level  *int    `json:"level"`
}

// Apply copies every supplied field of p onto s.
func (p StudentPatch) Apply(s *Student) {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Course != nil {
		s.Course = *p.Course
	}
	if p.Level != nil {
		s.Level = *p.Level
	}
}

// Course represents a course record. Code is stored upper-cased and is unique
// across all courses.
type Course struct {
	ID          string    `json:"id"          db:"id"`
	Title       string    `json:"title"       db:"title"        validate:"required"`
	Code        string    `json:"code"        db:"code"         validate:"required,min=2,uppercase"`
	Department  string    `json:"department"  db:"department"   validate:"required"`
	CreditUnits int       `json:"creditUnits" db:"credit_units" validate:"min=1,max=6"`
	Level       int       `json:"level"       db:"level"        validate:"min=100,max=500"`
	Semester    string    `json:"semester"    db:"semester"     validate:"oneof=First Second"`
	IsElective  bool      `json:"isElective"  db:"is_elective"`
	Description string    `json:"description" db:"description"  validate:"max=300"`
	CreatedAt   time.Time `json:"createdAt"   db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt"   db:"updated_at"`
}

// CoursePatch is a partial Course.
type CoursePatch struct {
	Title       *string `json:"title"`
	Code        *string `json:"code"`
	Department  *string `json:"department"`
	CreditUnits *int    `json:"creditUnits"`
	Level       *int    `json:"level"`
	Semester    *string `json:"semester"`
	IsElective  *bool   `json:"isElective"`
	Description *string `json:"description"`
}

// Apply copies every supplied field of p onto c.
func (p CoursePatch) Apply(c *Course) {
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Code != nil {
		c.Code = *p.Code
	}
	if p.Department != nil {
		c.Department = *p.Department
	}
	if p.CreditUnits != nil {
		c.CreditUnits = *p.CreditUnits
	}
	if p.Level != nil {
		c.Level = *p.Level
	}
	if p.Semester != nil {
		c.Semester = *p.Semester
	}
	if p.IsElective != nil {
		c.IsElective = *p.IsElective
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
}
