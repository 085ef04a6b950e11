package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"github.com/kinoreel/kinoapi/internal/model"
)

type fieldError struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

// abortWithValidationError renders a 422 with per-field details.
func abortWithValidationError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := lo.Map(verrs, func(fe validator.FieldError, _ int) fieldError {
			return fieldError{Field: fe.Field(), Msg: validationMsg(fe)}
		})
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"detail": details})
		return
	}
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
}

// abortWithFieldError renders a 422 for a single offending field, used for
// malformed path parameters which never reach the binding validator.
func abortWithFieldError(c *gin.Context, field, msg string) {
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
		"detail": []fieldError{{Field: field, Msg: msg}},
	})
}

// abortWithError maps domain errors onto the response contract: absence
// becomes a 404 with a terse detail, authorization failures keep their
// upstream status, anything else is an unrecovered server fault.
func abortWithError(c *gin.Context, err error, entity string) {
	if errors.Is(err, model.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"detail": fmt.Sprintf("%s not found", entity)})
		return
	}
	var authErr *model.AuthError
	if errors.As(err, &authErr) {
		c.AbortWithStatusJSON(authErr.Status, gin.H{"detail": authErr.Detail})
		return
	}
	log.WithFields(log.Fields{"error": err, "path": c.Request.URL.Path}).Errorln("Request failed")
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
}

func validationMsg(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field is required"
	case "gte":
		return "must be at least " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "uuid":
		return "must be a valid uuid"
	default:
		return "invalid value"
	}
}
