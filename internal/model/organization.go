package model

import "time"

type Department struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Assignment is the membership of a user in a department.
type Assignment struct {
	UserID       string    `json:"userId"`
	DepartmentID int64     `json:"departmentId"`
	AssignedAt   time.Time `json:"assignedAt"`
}
