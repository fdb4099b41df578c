package models

import "time"

// CommentLike represents a like on a comment
type CommentLike struct {
	UserID    uint      `json:"userId" gorm:"primaryKey;autoIncrement:false"`
	CommentID uint      `json:"commentId" gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt time.Time `json:"createdAt"`
}
