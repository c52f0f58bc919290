package controller

import (
	"encoding/json"
	"errors"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mhsanaei/userhub/web/entity"
)

type sanitizer interface {
	Sanitize()
}

type finisher interface {
	Finish()
}

// fail records err for middleware.ErrorHandler and stops the chain.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// bindBody decodes the JSON body into dst, sanitizes and validates it.
func bindBody(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return bodyDecodeError(err)
	}
	if s, ok := dst.(sanitizer); ok {
		s.Sanitize()
	}
	if err := entity.Validate(dst); err != nil {
		return err
	}
	if f, ok := dst.(finisher); ok {
		f.Finish()
	}
	return nil
}

func bodyDecodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &typeErr):
		return entity.NewValidationError(entity.NewFieldError(entity.LocBody, typeErr.Field,
			"Input should be a valid "+typeErr.Type.String(), "type_error"))
	case errors.Is(err, io.EOF):
		return entity.NewValidationError(entity.NewFieldError(entity.LocBody, "", "Field required", "missing"))
	default:
		return entity.NewValidationError(entity.NewFieldError(entity.LocBody, "", "JSON decode error", "json_invalid"))
	}
}

// pathID parses a positive integer path parameter.
func pathID(c *gin.Context, name string) (int, error) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		return 0, entity.NewValidationError(entity.NewFieldError(entity.LocPath, name,
			"Input should be a positive integer", "int_parsing"))
	}
	return id, nil
}

// queryInt parses an optional integer query parameter within [lo, hi].
func queryInt(c *gin.Context, name string, def, lo, hi int) (int, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, entity.NewValidationError(entity.NewFieldError(entity.LocQuery, name,
			"Input should be a valid integer", "int_parsing"))
	}
	if v < lo || v > hi {
		return 0, entity.NewValidationError(entity.NewFieldError(entity.LocQuery, name,
			"Input should be between "+strconv.Itoa(lo)+" and "+strconv.Itoa(hi), "value_error"))
	}
	return v, nil
}
