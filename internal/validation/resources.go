package validation

import "strings"

// Resource is a named rule table. Name is the lower-case entity name used in
// identifier messages ("Invalid student ID format").
type Resource struct {
	Name   string
	Fields []Field
}

func levelField() Field {
	return Field{
		Name:     "level",
		Kind:     Number,
		Required: "Level is required",
		Empty:    "Level cannot be empty",
		Type:     "Level must be a number",
		Constraints: []Constraint{
			{Tag: "whole", Message: "Level must be a whole number"},
			{Tag: "min=100,max=500", Message: "Level must be between 100 and 500"},
		},
	}
}

// Student checks name, course and level, in that order.
var Student = Resource{
	Name: "student",
	Fields: []Field{
		{
			Name:     "name",
			Kind:     String,
			Required: "Student name is required",
			Empty:    "Student name cannot be empty",
			Type:     "Student name must be a string",
			Constraints: []Constraint{
				{Tag: "min=2", Message: "Name must be at least 2 characters"},
			},
		},
		{
			Name:     "course",
			Kind:     String,
			Required: "Course is required",
			Empty:    "Course cannot be empty",
			Type:     "Course must be a string",
		},
		levelField(),
	},
}

// Course checks title, code, department, creditUnits, level and semester,
// then the optional isElective and description.
var Course = Resource{
	Name: "course",
	Fields: []Field{
		{
			Name:     "title",
			Kind:     String,
			Required: "Course title is required",
			Empty:    "Course title cannot be empty",
			Type:     "Course title must be a string",
		},
		{
			Name:     "code",
			Kind:     String,
			Required: "Course code is required",
			Empty:    "Course code cannot be empty",
			Type:     "Course code must be a string",
			Constraints: []Constraint{
				{Tag: "min=2", Message: "Course code must be at least 2 characters"},
			},
			Normalize: strings.ToUpper,
		},
		{
			Name:     "department",
			Kind:     String,
			Required: "Department is required",
			Empty:    "Department cannot be empty",
			Type:     "Department must be a string",
		},
		{
			Name:     "creditUnits",
			Kind:     Number,
			Required: "Credit units are required",
			Empty:    "Credit units cannot be empty",
			Type:     "Credit units must be a number",
			Constraints: []Constraint{
				{Tag: "whole", Message: "Credit units must be a whole number"},
				{Tag: "min=1,max=6", Message: "Credit units must be between 1 and 6"},
			},
		},
		levelField(),
		{
			Name:     "semester",
			Kind:     String,
			Required: "Semester is required",
			Empty:    "Semester cannot be empty",
			Type:     "Semester must be a string",
			Constraints: []Constraint{
				{Tag: "oneof=First Second", Message: "Semester must be either 'First' or 'Second'"},
			},
		},
		{
			Name:     "isElective",
			Kind:     Bool,
			Optional: true,
			Type:     "isElective must be a boolean",
		},
		{
			Name:     "description",
			Kind:     String,
			Optional: true,
			Type:     "Description must be a string",
			Constraints: []Constraint{
				{Tag: "max=300", Message: "Description cannot exceed 300 characters"},
			},
		},
	},
}
