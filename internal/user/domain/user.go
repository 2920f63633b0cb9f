package domain

import (
	"errors"
	"strings"
)

var ErrUserNotFound = errors.New("user not found")

// User is a buyer or organizer as known to the session provider.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone,omitempty"`
}

func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
