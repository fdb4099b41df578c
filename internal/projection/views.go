package projection

import (
	"time"

	"github.com/anonto42/inkwell/backend/internal/models"
)

// Viewer is the identity a read is performed for. The zero value is an
// anonymous viewer.
type Viewer struct {
	ID uint
}

func (v Viewer) Anonymous() bool {
	return v.ID == 0
}

type UserSummary struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

func Summary(u models.User) UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Image: u.Image}
}

type BlogView struct {
	ID             uint           `json:"id"`
	Slug           string         `json:"slug"`
	Title          string         `json:"title"`
	Content        string         `json:"content"`
	Image          string         `json:"image"`
	Genres         []models.Genre `json:"genres"`
	IsPublished    bool           `json:"isPublished"`
	Author         UserSummary    `json:"author"`
	LikesCount     int64          `json:"likesCount"`
	BookmarksCount int64          `json:"bookmarksCount"`
	CommentsCount  int64          `json:"commentsCount"`
	HasLiked       bool           `json:"hasLiked"`
	HasBookmarked  bool           `json:"hasBookmarked"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

type CommentView struct {
	ID         uint        `json:"id"`
	Content    string      `json:"content"`
	BlogID     uint        `json:"blogId"`
	User       UserSummary `json:"user"`
	LikesCount int64       `json:"likesCount"`
	HasLiked   bool        `json:"hasLiked"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

type UserView struct {
	ID               uint      `json:"id"`
	Name             string    `json:"name"`
	Bio              string    `json:"bio"`
	Image            string    `json:"image"`
	IsVerified       bool      `json:"isVerified"`
	FollowersCount   int64     `json:"followersCount"`
	FollowingCount   int64     `json:"followingCount"`
	FollowsViewer    bool      `json:"followsViewer"`
	FollowedByViewer bool      `json:"followedByViewer"`
	CreatedAt        time.Time `json:"createdAt"`
}

type BlogSummary struct {
	ID    uint   `json:"id"`
	Slug  string `json:"slug"`
	Title string `json:"title"`
	Image string `json:"image"`
}

type CommentSummary struct {
	ID      uint   `json:"id"`
	Content string `json:"content"`
}

type NotificationView struct {
	ID          uint                      `json:"id"`
	Type        models.NotificationType   `json:"type"`
	Status      models.NotificationStatus `json:"status"`
	Description string                    `json:"description"`
	ReceiverID  uint                      `json:"receiverId"`
	Sender      UserSummary               `json:"sender"`
	Blog        *BlogSummary              `json:"blog,omitempty"`
	Comment     *CommentSummary           `json:"comment,omitempty"`
	CreatedAt   time.Time                 `json:"createdAt"`
}

// Notification builds the payload shown in lists and pushed to subscribers.
func Notification(n models.Notification) NotificationView {
	view := NotificationView{
		ID:          n.ID,
		Type:        n.Type,
		Status:      n.Status,
		Description: n.Description,
		ReceiverID:  n.ReceiverID,
		Sender:      Summary(n.Sender),
		CreatedAt:   n.CreatedAt,
	}
	if n.Blog != nil {
		view.Blog = &BlogSummary{ID: n.Blog.ID, Slug: n.Blog.Slug, Title: n.Blog.Title, Image: n.Blog.Image}
	}
	if n.Comment != nil {
		view.Comment = &CommentSummary{ID: n.Comment.ID, Content: n.Comment.Content}
	}
	return view
}

func Notifications(ns []models.Notification) []NotificationView {
	views := make([]NotificationView, 0, len(ns))
	for _, n := range ns {
		views = append(views, Notification(n))
	}
	return views
}
