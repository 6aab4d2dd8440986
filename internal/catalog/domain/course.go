package domain

import "time"

type Course struct {
	ID           int64
	Title        string
	Description  string
	InstructorID int64
	// InstructorName is populated from the users join on reads.
	InstructorName string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// OwnedBy reports whether userID is the owning instructor.
func (c Course) OwnedBy(userID int64) bool {
	return c.InstructorID != 0 && c.InstructorID == userID
}
