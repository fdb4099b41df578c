package query

import "fmt"

// Accessor renders the ORDER BY expression for one allow-listed sort token.
type Accessor interface {
	expr(table string) string
}

type column string

func (c column) expr(table string) string {
	return table + "." + string(c)
}

// Column sorts by a scalar column of the base table.
func Column(name string) Accessor {
	return column(name)
}

type relationCount struct {
	table      string
	foreignKey string
}

func (r relationCount) expr(table string) string {
	return fmt.Sprintf("(SELECT COUNT(*) FROM %s WHERE %s.%s = %s.id)", r.table, r.table, r.foreignKey, table)
}

// RelationCount sorts by the number of rows in table whose foreignKey points
// at the base row.
func RelationCount(table, foreignKey string) Accessor {
	return relationCount{table: table, foreignKey: foreignKey}
}

// Sorts maps the sort tokens accepted from clients to typed accessors.
type Sorts map[string]Accessor

func (s Sorts) Has(key string) bool {
	_, ok := s[key]
	return ok
}

var (
	BlogSorts = Sorts{
		"createdAt":    Column("created_at"),
		"updatedAt":    Column("updated_at"),
		"title":        Column("title"),
		"likedBy":      RelationCount("blog_likes", "blog_id"),
		"bookmarkedBy": RelationCount("blog_bookmarks", "blog_id"),
		"comments":     RelationCount("comments", "blog_id"),
	}
	CommentSorts = Sorts{
		"createdAt": Column("created_at"),
		"updatedAt": Column("updated_at"),
		"likedBy":   RelationCount("comment_likes", "comment_id"),
	}
	UserSorts = Sorts{
		"createdAt":  Column("created_at"),
		"name":       Column("name"),
		"followedBy": RelationCount("follows", "following_id"),
		"following":  RelationCount("follows", "follower_id"),
	}
	NotificationSorts = Sorts{
		"createdAt": Column("created_at"),
	}
)
