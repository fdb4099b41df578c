package models

import "time"

// BlogLike is one user's like on a blog.
type BlogLike struct {
	UserID    uint      `json:"userId" gorm:"primaryKey;autoIncrement:false"`
	BlogID    uint      `json:"blogId" gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt time.Time `json:"createdAt"`
}
