package models

import (
	"fmt"
	"time"
)

type NotificationType string

const (
	NotificationFollowUser  NotificationType = "FOLLOW_USER"
	NotificationPostBlog    NotificationType = "POST_BLOG"
	NotificationLikeBlog    NotificationType = "LIKE_BLOG"
	NotificationPostComment NotificationType = "POST_COMMENT"
	NotificationLikeComment NotificationType = "LIKE_COMMENT"
)

// Deduplicated reports whether repeated triggers of this type for the same
// sender, receiver and target collapse into one notification.
func (t NotificationType) Deduplicated() bool {
	switch t {
	case NotificationFollowUser, NotificationLikeBlog, NotificationLikeComment:
		return true
	default:
		return false
	}
}

type NotificationStatus string

const (
	StatusUnread NotificationStatus = "UNREAD"
	StatusRead   NotificationStatus = "READ"
)

func (s NotificationStatus) Valid() bool {
	return s == StatusUnread || s == StatusRead
}

// Notification represents a user notification (PostgreSQL)
type Notification struct {
	ID          uint               `json:"id" gorm:"primaryKey"`
	Type        NotificationType   `json:"type" gorm:"size:20;not null;index"`
	Status      NotificationStatus `json:"status" gorm:"size:10;not null;index"`
	SenderID    uint               `json:"senderId" gorm:"index;not null"`
	Sender      User               `json:"sender" gorm:"foreignKey:SenderID"`
	ReceiverID  uint               `json:"receiverId" gorm:"index;not null"`
	BlogID      *uint              `json:"blogId,omitempty" gorm:"index"`
	Blog        *Blog              `json:"blog,omitempty" gorm:"foreignKey:BlogID"`
	CommentID   *uint              `json:"commentId,omitempty" gorm:"index"`
	Comment     *Comment           `json:"comment,omitempty" gorm:"foreignKey:CommentID"`
	Description string             `json:"description"`
	// DedupKey is set only for deduplicated types; NULLs never collide.
	DedupKey  *string   `json:"-" gorm:"uniqueIndex;size:120"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DedupKey identifies the (type, sender, receiver, blog, comment) tuple.
func DedupKey(t NotificationType, senderID, receiverID uint, blogID, commentID *uint) string {
	return fmt.Sprintf("%s:%d:%d:%d:%d", t, senderID, receiverID, deref(blogID), deref(commentID))
}

func deref(id *uint) uint {
	if id == nil {
		return 0
	}
	return *id
}
