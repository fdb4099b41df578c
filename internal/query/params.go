package query

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/anonto42/inkwell/backend/internal/apperr"
	"github.com/go-playground/validator/v10"
)

const (
	DefaultPage = 1
	DefaultSize = 20
	MaxSize     = 100
	DefaultSort = "createdAt"
)

type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

func (o Order) sql() string {
	if o == Asc {
		return "ASC"
	}
	return "DESC"
}

// Params is the parsed list query of a request.
type Params struct {
	Page   int    `validate:"min=1"`
	Size   int    `validate:"min=1,max=100"`
	Sort   string `validate:"required"`
	Order  Order  `validate:"oneof=asc desc"`
	Search string `validate:"max=200"`
}

var validate = validator.New()

func DefaultParams() Params {
	return Params{Page: DefaultPage, Size: DefaultSize, Sort: DefaultSort, Order: Desc}
}

// ParseParams reads page, size, sort, order and search from values. Invalid
// values are rejected rather than coerced.
func ParseParams(values url.Values, sorts Sorts) (Params, error) {
	p := DefaultParams()

	if raw := values.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return Params{}, apperr.New(apperr.InvalidInput, "page must be a positive integer")
		}
		p.Page = page
	}
	if raw := values.Get("size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			return Params{}, apperr.New(apperr.InvalidInput, "size must be a positive integer")
		}
		p.Size = size
	}
	if raw := values.Get("sort"); raw != "" {
		p.Sort = raw
	}
	if raw := values.Get("order"); raw != "" {
		p.Order = Order(strings.ToLower(raw))
	}
	p.Search = strings.TrimSpace(values.Get("search"))

	if err := p.Validate(sorts); err != nil {
		return Params{}, err
	}
	return p, nil
}

func (p Params) Validate(sorts Sorts) error {
	if err := validate.Struct(p); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			return apperr.Wrap(apperr.InvalidInput, err, "invalid "+strings.ToLower(verrs[0].Field()))
		}
		return apperr.Wrap(apperr.InvalidInput, err, "invalid list parameters")
	}
	if !sorts.Has(p.Sort) {
		return apperr.New(apperr.InvalidInput, "unsupported sort field "+strconv.Quote(p.Sort))
	}
	return nil
}

func (p Params) Offset() int {
	return (p.Page - 1) * p.Size
}

// Page is the list response envelope.
type Page[T any] struct {
	Result      []T   `json:"result"`
	Count       int64 `json:"count"`
	CurrentPage int   `json:"currentPage"`
	TotalPage   int   `json:"totalPage"`
}

func NewPage[T any](items []T, count int64, p Params) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Result:      items,
		Count:       count,
		CurrentPage: p.Page,
		TotalPage:   TotalPages(count, p.Size),
	}
}

func TotalPages(count int64, size int) int {
	if size <= 0 {
		return 0
	}
	return int(math.Ceil(float64(count) / float64(size)))
}
