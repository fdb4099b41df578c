package models

// All lists every persisted model in migration order.
func All() []any {
	return []any{
		&User{},
		&Blog{},
		&BlogGenre{},
		&Comment{},
		&Follow{},
		&BlogLike{},
		&BlogBookmark{},
		&CommentLike{},
		&Notification{},
	}
}
