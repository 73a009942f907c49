package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pkruglov/shopfloor-bot/internal/tasks"
)

// Error is an API error with the HTTP status it maps to. The status
// is not serialized; the client sees only the message.
type Error struct {
	Status  int    `json:"-"`
	Message string `json:"error"`
}

func (e Error) Error() string { return e.Message }

func NewBadRequestError(msg string) Error {
	return Error{Status: http.StatusBadRequest, Message: msg}
}

func NewNotFoundError() Error {
	return Error{Status: http.StatusNotFound, Message: "not found"}
}

func NewConflictError(msg string) Error {
	return Error{Status: http.StatusConflict, Message: msg}
}

func NewForbiddenError() Error {
	return Error{Status: http.StatusForbidden, Message: "forbidden"}
}

func NewInternalError() Error {
	return Error{Status: http.StatusInternalServerError, Message: "internal error"}
}

// ResolveError maps a domain error to an API error.
func ResolveError(err error) Error {
	var apiErr Error
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case tasks.IsValidation(err):
		return NewBadRequestError(err.Error())
	case errors.Is(err, tasks.ErrNotFound):
		return NewNotFoundError()
	case errors.Is(err, tasks.ErrInvalidTransition):
		return NewConflictError("invalid status transition")
	default:
		return NewInternalError()
	}
}

func HandleError(err error, c *gin.Context) {
	apiErr := ResolveError(err)
	c.AbortWithStatusJSON(apiErr.Status, apiErr)
}
