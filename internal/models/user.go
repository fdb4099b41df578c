package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

type User struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"size:100;not null"`
	Email       string    `json:"email" gorm:"uniqueIndex;size:255;not null"` // Ensure email is unique across all users
	Password    string    `json:"-"`                                          // bcrypt hash
	Bio         string    `json:"bio" gorm:"size:500"`
	Image       string    `json:"image"`
	ImageKey    string    `json:"-"`
	IsVerified  bool      `json:"isVerified"`
	FirebaseUID *string   `json:"-" gorm:"uniqueIndex;size:128"` // Link to Firebase User UID
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CreateLocalUserRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateUserRequest struct {
	Name *string `json:"name,omitempty" form:"name" validate:"omitempty,min=2,max=50"`
	Bio  *string `json:"bio,omitempty" form:"bio" validate:"omitempty,max=500"`
}

type DeleteUserRequest struct {
	Password string `json:"password" validate:"required"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
