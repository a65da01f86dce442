package model

import (
	"time"

	"github.com/google/uuid"
)

// Examinee is a test taker. Login accepts either the email or the enroll
// number as the username.
type Examinee struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Surname      string    `json:"surname"`
	Email        string    `json:"email"`
	EnrollNumber string    `json:"enroll_number"`
	PasswordHash string    `json:"-"`
	IsDeleted    bool      `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// LoginRequest is the payload for examinee login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}
