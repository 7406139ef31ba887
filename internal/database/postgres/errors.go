package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/campushub/event-registration/internal/entity"
)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// isUnavailable classifies transient connectivity failures, which callers
// may retry, as opposed to definitive outcomes like Conflict or NotFound.
func isUnavailable(err error) bool {
	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, driver.ErrBadConn) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		class := pqErr.Code.Class()
		// 08: connection exception, 57: operator intervention (shutdown),
		// 53: insufficient resources
		return class == "08" || class == "57" || class == "53"
	}
	return false
}

// storageErr wraps a driver error, folding connectivity failures into
// entity.ErrStorageUnavailable so upper layers see a stable category.
func storageErr(op string, err error) error {
	if isUnavailable(err) {
		return fmt.Errorf("%s: %w: %s", op, entity.ErrStorageUnavailable, shorten(err))
	}
	return fmt.Errorf("%s: %w", op, err)
}

func shorten(err error) string {
	s := err.Error()
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return s
}
