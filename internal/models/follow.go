package models

import "time"

// Follow is a directed edge: FollowerID follows FollowingID. The composite
// primary key makes the follow graph a set.
type Follow struct {
	FollowerID  uint      `json:"followerId" gorm:"primaryKey;autoIncrement:false"`
	FollowingID uint      `json:"followingId" gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt   time.Time `json:"createdAt"`
}
