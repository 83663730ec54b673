package entity

import "time"

// User is the bare identity record in the users collection, keyed by the
// contact identifier. It exists so that userType resolution survives across
// logins even before (or without) a student profile.
type User struct {
	Identifier string    `json:"identifier" bson:"identifier"`
	Role       string    `json:"role" bson:"role"`
	CreatedAt  time.Time `json:"createdAt" bson:"created_at"`
}

// Session is the authenticated principal carried in the request context
// after the bearer token has been verified.
type Session struct {
	Subject  string `json:"subject"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	UserType string `json:"userType"`
}

func (s *Session) IsInstructor() bool {
	return s.UserType == RoleInstructor
}

func (s *Session) IsStudent() bool {
	return s.UserType == RoleStudent
}
