package models

import "time"

type Genre string

const (
	GenreTechnology    Genre = "TECHNOLOGY"
	GenreProgramming   Genre = "PROGRAMMING"
	GenreScience       Genre = "SCIENCE"
	GenreHealth        Genre = "HEALTH"
	GenreBusiness      Genre = "BUSINESS"
	GenreEducation     Genre = "EDUCATION"
	GenreLifestyle     Genre = "LIFESTYLE"
	GenreTravel        Genre = "TRAVEL"
	GenreFood          Genre = "FOOD"
	GenreEntertainment Genre = "ENTERTAINMENT"
	GenreSports        Genre = "SPORTS"
	GenreOther         Genre = "OTHER"
)

var genres = map[Genre]struct{}{
	GenreTechnology: {}, GenreProgramming: {}, GenreScience: {}, GenreHealth: {},
	GenreBusiness: {}, GenreEducation: {}, GenreLifestyle: {}, GenreTravel: {},
	GenreFood: {}, GenreEntertainment: {}, GenreSports: {}, GenreOther: {},
}

func (g Genre) Valid() bool {
	_, ok := genres[g]
	return ok
}

// Blog is a post authored by a user. Likes, bookmarks and comments live in
// their own tables and are never counted on the row itself.
type Blog struct {
	ID          uint        `json:"id" gorm:"primaryKey"`
	Slug        string      `json:"slug" gorm:"uniqueIndex;size:255;not null"`
	Title       string      `json:"title" gorm:"size:200;not null"`
	Content     string      `json:"content" gorm:"type:text;not null"`
	Image       string      `json:"image"`
	ImageKey    string      `json:"-"`
	IsPublished bool        `json:"isPublished" gorm:"index"`
	PublishedAt *time.Time  `json:"publishedAt,omitempty"`
	AuthorID    uint        `json:"authorId" gorm:"index;not null"`
	Author      User        `json:"author" gorm:"foreignKey:AuthorID"`
	Genres      []BlogGenre `json:"-" gorm:"foreignKey:BlogID"`
	CreatedAt   time.Time   `json:"createdAt" gorm:"index"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

func (b *Blog) GenreList() []Genre {
	list := make([]Genre, 0, len(b.Genres))
	for _, g := range b.Genres {
		list = append(list, g.Genre)
	}
	return list
}

// BlogGenre tags a blog with one genre. The pair is the primary key so a
// blog carries a set of genres.
type BlogGenre struct {
	BlogID uint  `gorm:"primaryKey;autoIncrement:false"`
	Genre  Genre `gorm:"primaryKey;size:30;index"`
}

type CreateBlogRequest struct {
	Title       string   `json:"title" form:"title" validate:"required,min=1,max=200"`
	Content     string   `json:"content" form:"content" validate:"required,min=1"`
	Genres      []string `json:"genres" form:"genres" validate:"omitempty,max=5,dive,genre"`
	IsPublished bool     `json:"isPublished" form:"isPublished"`
}

type UpdateBlogRequest struct {
	Title       *string  `json:"title,omitempty" form:"title" validate:"omitempty,min=1,max=200"`
	Content     *string  `json:"content,omitempty" form:"content" validate:"omitempty,min=1"`
	Genres      []string `json:"genres,omitempty" form:"genres" validate:"omitempty,max=5,dive,genre"` // nil leaves genres unchanged
	IsPublished *bool    `json:"isPublished,omitempty" form:"isPublished"`
}
