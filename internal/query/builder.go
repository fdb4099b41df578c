// Package query builds paginated, sorted and searchable list queries over a
// single table.
package query

import (
	"context"
	"fmt"
	"strings"

	"github.com/anonto42/inkwell/backend/internal/apperr"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Spec describes one listable record kind.
type Spec struct {
	Table        string
	SearchColumn string
	Sorts        Sorts
}

var (
	Blogs         = Spec{Table: "blogs", SearchColumn: "title", Sorts: BlogSorts}
	Comments      = Spec{Table: "comments", SearchColumn: "content", Sorts: CommentSorts}
	Users         = Spec{Table: "users", SearchColumn: "name", Sorts: UserSorts}
	Notifications = Spec{Table: "notifications", SearchColumn: "description", Sorts: NotificationSorts}
)

type condition struct {
	query any
	args  []any
}

type Builder[T any] struct {
	db       *gorm.DB
	spec     Spec
	page     int
	size     int
	sort     string
	order    Order
	search   string
	where    []condition
	preloads []condition
}

func New[T any](db *gorm.DB, spec Spec) *Builder[T] {
	return &Builder[T]{
		db:    db,
		spec:  spec,
		page:  DefaultPage,
		size:  DefaultSize,
		sort:  DefaultSort,
		order: Desc,
	}
}

// Where narrows the result set; conditions are AND-composed.
func (b *Builder[T]) Where(query any, args ...any) *Builder[T] {
	b.where = append(b.where, condition{query: query, args: args})
	return b
}

func (b *Builder[T]) Preload(relation string, args ...any) *Builder[T] {
	b.preloads = append(b.preloads, condition{query: relation, args: args})
	return b
}

func (b *Builder[T]) WithPagination(page, size int) *Builder[T] {
	b.page, b.size = page, size
	return b
}

func (b *Builder[T]) WithSort(key string, order Order) *Builder[T] {
	b.sort, b.order = key, order
	return b
}

func (b *Builder[T]) WithSearch(text string) *Builder[T] {
	b.search = strings.TrimSpace(text)
	return b
}

func (b *Builder[T]) Apply(p Params) *Builder[T] {
	return b.WithPagination(p.Page, p.Size).WithSort(p.Sort, p.Order).WithSearch(p.Search)
}

// Execute returns the requested page and the number of rows matching the
// filters before pagination.
func (b *Builder[T]) Execute(ctx context.Context) ([]T, int64, error) {
	if b.page < 1 || b.size < 1 {
		return nil, 0, apperr.New(apperr.InvalidInput, "page and size must be positive integers")
	}
	accessor, ok := b.spec.Sorts[b.sort]
	if !ok {
		return nil, 0, apperr.New(apperr.InvalidInput, fmt.Sprintf("unsupported sort field %q", b.sort))
	}
	if b.order != Asc && b.order != Desc {
		return nil, 0, apperr.New(apperr.InvalidInput, "order must be asc or desc")
	}

	var model T
	base := b.db.WithContext(ctx).Model(&model)
	for _, c := range b.where {
		base = base.Where(c.query, c.args...)
	}
	if b.search != "" {
		base = base.Where(
			fmt.Sprintf("LOWER(%s.%s) LIKE ? ESCAPE '\\'", b.spec.Table, b.spec.SearchColumn),
			"%"+escapeLike(strings.ToLower(b.search))+"%",
		)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, errors.Wrapf(err, "count %s", b.spec.Table)
	}

	items := make([]T, 0, b.size)
	if total == 0 || int64(b.offset()) >= total {
		return items, total, nil
	}

	find := base.Session(&gorm.Session{})
	for _, p := range b.preloads {
		find = find.Preload(p.query.(string), p.args...)
	}
	dir := b.order.sql()
	find = find.
		Order(fmt.Sprintf("%s %s, %s.id %s", accessor.expr(b.spec.Table), dir, b.spec.Table, dir)).
		Offset(b.offset()).
		Limit(b.size)

	if err := find.Find(&items).Error; err != nil {
		return nil, 0, errors.Wrapf(err, "list %s", b.spec.Table)
	}
	return items, total, nil
}

func (b *Builder[T]) offset() int {
	return Params{Page: b.page, Size: b.size}.Offset()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
