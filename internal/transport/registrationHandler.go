package transport

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campushub/event-registration/internal/entity"
	"github.com/campushub/event-registration/internal/service"
	"github.com/campushub/event-registration/internal/transport/middleware"
)

type RegistrationHandler struct {
	engine  service.RegistrationService
	queries service.RegistrationQueries
}

func NewRegistrationHandler(engine service.RegistrationService, queries service.RegistrationQueries) *RegistrationHandler {
	return &RegistrationHandler{engine: engine, queries: queries}
}

type RegisterRequest struct {
	EventID string `json:"eventId" binding:"required"`
}

func (h *RegistrationHandler) Register(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": entity.ErrUnauthenticated.Error()})
		return
	}

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reg, err := h.engine.Register(c.Request.Context(), identity.SubjectID, req.EventID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, reg)
}

func (h *RegistrationHandler) Cancel(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": entity.ErrUnauthenticated.Error()})
		return
	}

	if err := h.engine.Cancel(c.Request.Context(), identity.SubjectID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "registration cancelled"})
}

// GetMyRegistrations lists the caller's own registrations. An empty list is
// a valid outcome, not an error.
func (h *RegistrationHandler) GetMyRegistrations(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": entity.ErrUnauthenticated.Error()})
		return
	}

	regs, err := h.queries.ListOwn(c.Request.Context(), identity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, regs)
}

// GetAllRegistrations is the admin listing, optionally bounded by an
// inclusive [start, end] range on registeredAt.
func (h *RegistrationHandler) GetAllRegistrations(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": entity.ErrUnauthenticated.Error()})
		return
	}

	rng, err := parseDateRange(c.Query("start"), c.Query("end"))
	if err != nil {
		respondError(c, err)
		return
	}

	regs, err := h.queries.ListAll(c.Request.Context(), identity, rng)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, regs)
}

func (h *RegistrationHandler) GetAuditLog(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": entity.ErrUnauthenticated.Error()})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit <= 0 {
		limit = 100
	}

	records, err := h.queries.ListAudit(c.Request.Context(), identity, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, records)
}

// parseDateRange parses the optional start/end query parameters. Both must
// be present or both absent; values are RFC 3339 timestamps or plain dates.
func parseDateRange(start, end string) (*entity.DateRange, error) {
	if start == "" && end == "" {
		return nil, nil
	}
	if start == "" || end == "" {
		return nil, entity.ErrInvalidDateRange
	}

	startTime, err := parseTimestamp(start)
	if err != nil {
		return nil, entity.ErrInvalidDateRange
	}
	endTime, err := parseTimestamp(end)
	if err != nil {
		return nil, entity.ErrInvalidDateRange
	}

	rng := &entity.DateRange{Start: startTime, End: endTime}
	if err := rng.Validate(); err != nil {
		return nil, err
	}
	return rng, nil
}

func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
