package transport

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campushub/event-registration/internal/entity"
)

// statusForError maps the domain error taxonomy onto HTTP statuses in one
// place so every handler surfaces the same stable outcome per category.
func statusForError(err error) int {
	switch {
	case errors.Is(err, entity.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, entity.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, entity.ErrEventNotFound),
		errors.Is(err, entity.ErrRegistrationNotFound),
		errors.Is(err, entity.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrAlreadyRegistered),
		errors.Is(err, entity.ErrEventFull),
		errors.Is(err, entity.ErrUsernameTaken):
		return http.StatusConflict
	case errors.Is(err, entity.ErrInvalidInput),
		errors.Is(err, entity.ErrInvalidDateRange):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	status := statusForError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		// Internal details stay in the logs.
		message = "internal server error"
	}
	c.JSON(status, gin.H{"error": message})
}
