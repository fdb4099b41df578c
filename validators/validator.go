// Package validators plugs go-playground/validator into echo.
package validators

import (
	"net/http"
	"strings"

	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator registers the custom tags used by request models.
func NewValidator() *CustomValidator {
	v := validator.New()
	_ = v.RegisterValidation("genre", func(fl validator.FieldLevel) bool {
		return models.Genre(fl.Field().String()).Valid()
	})
	return &CustomValidator{validator: v}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, describe(err))
	}
	return nil
}

func describe(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fe.Field()+" failed "+fe.Tag()+"="+fe.Param())
		} else {
			msgs = append(msgs, fe.Field()+" failed "+fe.Tag())
		}
	}
	return strings.Join(msgs, "; ")
}
