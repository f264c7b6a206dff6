package handler

import (
	"errors"
	"net/http"
	"reflect"
	"time"

	"counterpos/internal/apierror"
	"counterpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0 and required work on money fields.
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails; the
// caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
		return false
	}
	return runValidation(c, req)
}

// bindQuery is bindAndValidate for query strings.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid query: "+err.Error()))
		return false
	}
	return runValidation(c, req)
}

func runValidation(c *gin.Context, req interface{}) bool {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
			return false
		}
		fields := make(map[string]string)
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}

// optionalID parses an optional uuid string from a validated DTO.
func optionalID(raw *string) *uuid.UUID {
	if raw == nil || *raw == "" {
		return nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil
	}
	return &id
}

// dayRange turns inclusive YYYY-MM-DD bounds into [from, to+1day).
func dayRange(from, to string) (*time.Time, *time.Time, error) {
	var f, t *time.Time
	if from != "" {
		d, err := time.ParseInLocation(time.DateOnly, from, time.Local)
		if err != nil {
			return nil, nil, err
		}
		f = &d
	}
	if to != "" {
		d, err := time.ParseInLocation(time.DateOnly, to, time.Local)
		if err != nil {
			return nil, nil, err
		}
		next := d.AddDate(0, 0, 1)
		t = &next
	}
	return f, t, nil
}

// writeError maps the service error taxonomy to HTTP responses.
func writeError(c *gin.Context, err error) {
	var (
		verr *service.ValidationError
		aerr *service.AvailabilityError
		ierr *service.CatalogIntegrityError
	)
	switch {
	case errors.As(err, &verr):
		field := verr.Field
		if field == "" {
			field = "request"
		}
		c.JSON(http.StatusUnprocessableEntity, &apierror.ValidationError{
			Detail: verr.Error(),
			Code:   "validation",
			Fields: map[string]string{field: verr.Message},
		})
	case errors.As(err, &aerr):
		c.JSON(http.StatusConflict, apierror.WithCode(string(aerr.Reason), aerr.Error()))
	case errors.As(err, &ierr):
		c.JSON(http.StatusConflict, apierror.WithCode("catalog_integrity", ierr.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, apierror.WithCode("not_found", err.Error()))
	case service.IsCommit(err):
		log.Error().Err(err).Str("path", c.FullPath()).Msg("commit failed")
		c.JSON(http.StatusInternalServerError, apierror.WithCode("commit_failed", "order not completed, nothing was saved"))
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, apierror.New("internal server error"))
	}
}
