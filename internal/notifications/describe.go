package notifications

import "github.com/anonto42/inkwell/backend/internal/models"

// Describe renders the text stored with a notification.
func Describe(t models.NotificationType, sender string) string {
	if sender == "" {
		sender = "Someone"
	}
	switch t {
	case models.NotificationFollowUser:
		return sender + " started following you"
	case models.NotificationPostBlog:
		return sender + " published a new blog"
	case models.NotificationLikeBlog:
		return sender + " liked your blog"
	case models.NotificationPostComment:
		return sender + " commented on your blog"
	case models.NotificationLikeComment:
		return sender + " liked your comment"
	default:
		return sender + " sent you a notification"
	}
}
