package models

import "time"

// BlogBookmark represents a blog saved by a user for later
type BlogBookmark struct {
	UserID    uint      `json:"userId" gorm:"primaryKey;autoIncrement:false"`
	BlogID    uint      `json:"blogId" gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt time.Time `json:"createdAt"`
}
