package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushub/event-registration/internal/entity"
	"github.com/campushub/event-registration/internal/service"
	"github.com/campushub/event-registration/internal/transport/middleware"
)

// stubAuth maps fixed bearer tokens onto identities so handler tests can
// exercise the real Authenticate middleware.
type stubAuth struct{}

func (stubAuth) Signup(context.Context, *service.SignupRequest) (*entity.User, error) {
	panic("not used")
}

func (stubAuth) Login(context.Context, *service.LoginRequest) (*service.LoginResponse, error) {
	panic("not used")
}

func (stubAuth) Verify(token string) (*entity.Identity, error) {
	switch token {
	case "student-token":
		return &entity.Identity{SubjectID: "student-1", Role: entity.RoleStudent}, nil
	case "admin-token":
		return &entity.Identity{SubjectID: "admin-1", Role: entity.RoleAdmin}, nil
	default:
		return nil, entity.ErrUnauthenticated
	}
}

// stubEngine returns scripted results per call site.
type stubEngine struct {
	registerReg *entity.Registration
	registerErr error
	cancelErr   error
}

func (s *stubEngine) Register(context.Context, string, string) (*entity.Registration, error) {
	return s.registerReg, s.registerErr
}

func (s *stubEngine) Cancel(context.Context, string, string) error {
	return s.cancelErr
}

func (s *stubEngine) ListForStudent(context.Context, string) ([]*entity.Registration, error) {
	return []*entity.Registration{}, nil
}

func (s *stubEngine) ListAll(context.Context, *entity.DateRange) ([]*entity.Registration, error) {
	return []*entity.Registration{}, nil
}

type stubQueries struct {
	listAllRng  *entity.DateRange
	listAllRegs []*entity.Registration
	listAllErr  error
}

func (s *stubQueries) ListOwn(context.Context, entity.Identity) ([]*entity.Registration, error) {
	return []*entity.Registration{}, nil
}

func (s *stubQueries) ListAll(_ context.Context, _ entity.Identity, rng *entity.DateRange) ([]*entity.Registration, error) {
	s.listAllRng = rng
	return s.listAllRegs, s.listAllErr
}

func (s *stubQueries) ListAudit(context.Context, entity.Identity, int) ([]*entity.AuditRecord, error) {
	return []*entity.AuditRecord{}, nil
}

func newTestRouter(engine service.RegistrationService, queries service.RegistrationQueries) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	handler := NewRegistrationHandler(engine, queries)
	authed := router.Group("/api/v1", middleware.Authenticate(stubAuth{}))
	{
		registrations := authed.Group("/registrations", middleware.RequireRole(entity.RoleStudent))
		{
			registrations.POST("", handler.Register)
			registrations.DELETE("/:id", handler.Cancel)
			registrations.GET("/my", handler.GetMyRegistrations)
		}
		admin := authed.Group("/admin", middleware.RequireRole(entity.RoleAdmin))
		{
			admin.GET("/registrations", handler.GetAllRegistrations)
			admin.GET("/audit", handler.GetAuditLog)
		}
	}
	return router
}

func doRequest(router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var payload *bytes.Buffer
	if body != nil {
		raw, _ := json.Marshal(body)
		payload = bytes.NewBuffer(raw)
	} else {
		payload = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, payload)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRegistrationHandler_Register(t *testing.T) {
	t.Run("created registration uses the documented field names", func(t *testing.T) {
		registeredAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
		engine := &stubEngine{registerReg: &entity.Registration{
			ID:           "reg-1",
			StudentID:    "student-1",
			EventID:      "event-1",
			RegisteredAt: registeredAt,
		}}
		router := newTestRouter(engine, &stubQueries{})

		w := doRequest(router, http.MethodPost, "/api/v1/registrations", "student-token",
			gin.H{"eventId": "event-1"})

		require.Equal(t, http.StatusCreated, w.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "reg-1", body["id"])
		assert.Equal(t, "student-1", body["studentId"])
		assert.Equal(t, "event-1", body["eventId"])
		assert.Equal(t, registeredAt.Format(time.RFC3339), body["registeredAt"])
	})

	t.Run("missing token is unauthorized", func(t *testing.T) {
		router := newTestRouter(&stubEngine{}, &stubQueries{})
		w := doRequest(router, http.MethodPost, "/api/v1/registrations", "", gin.H{"eventId": "event-1"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("admin token on a student route is forbidden", func(t *testing.T) {
		router := newTestRouter(&stubEngine{}, &stubQueries{})
		w := doRequest(router, http.MethodPost, "/api/v1/registrations", "admin-token", gin.H{"eventId": "event-1"})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("missing eventId is a bad request", func(t *testing.T) {
		router := newTestRouter(&stubEngine{}, &stubQueries{})
		w := doRequest(router, http.MethodPost, "/api/v1/registrations", "student-token", gin.H{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("domain errors map onto stable statuses", func(t *testing.T) {
		tests := []struct {
			name string
			err  error
			want int
		}{
			{"duplicate registration", entity.ErrAlreadyRegistered, http.StatusConflict},
			{"event full", entity.ErrEventFull, http.StatusConflict},
			{"event not found", entity.ErrEventNotFound, http.StatusNotFound},
			{"storage unavailable", entity.ErrStorageUnavailable, http.StatusServiceUnavailable},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				router := newTestRouter(&stubEngine{registerErr: tt.err}, &stubQueries{})
				w := doRequest(router, http.MethodPost, "/api/v1/registrations", "student-token",
					gin.H{"eventId": "event-1"})

				assert.Equal(t, tt.want, w.Code)
				var body map[string]string
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, tt.err.Error(), body["error"])
			})
		}
	})

	t.Run("unexpected errors are masked", func(t *testing.T) {
		router := newTestRouter(&stubEngine{registerErr: assert.AnError}, &stubQueries{})
		w := doRequest(router, http.MethodPost, "/api/v1/registrations", "student-token",
			gin.H{"eventId": "event-1"})

		require.Equal(t, http.StatusInternalServerError, w.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "internal server error", body["error"])
	})
}

func TestRegistrationHandler_Cancel(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"owner cancels", nil, http.StatusOK},
		{"non-owner is forbidden", entity.ErrForbidden, http.StatusForbidden},
		{"unknown registration", entity.ErrRegistrationNotFound, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&stubEngine{cancelErr: tt.err}, &stubQueries{})
			w := doRequest(router, http.MethodDelete, "/api/v1/registrations/reg-1", "student-token", nil)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRegistrationHandler_GetAllRegistrations(t *testing.T) {
	t.Run("no range passes nil through", func(t *testing.T) {
		queries := &stubQueries{listAllRegs: []*entity.Registration{}}
		router := newTestRouter(&stubEngine{}, queries)

		w := doRequest(router, http.MethodGet, "/api/v1/admin/registrations", "admin-token", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Nil(t, queries.listAllRng)
		assert.Equal(t, "[]", w.Body.String())
	})

	t.Run("full range is parsed and forwarded", func(t *testing.T) {
		queries := &stubQueries{listAllRegs: []*entity.Registration{}}
		router := newTestRouter(&stubEngine{}, queries)

		w := doRequest(router, http.MethodGet,
			"/api/v1/admin/registrations?start=2024-01-01&end=2024-02-01", "admin-token", nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, queries.listAllRng)
		assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), queries.listAllRng.Start)
		assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), queries.listAllRng.End)
	})

	t.Run("range validation failures are bad requests", func(t *testing.T) {
		tests := []struct {
			name  string
			query string
		}{
			{"start without end", "?start=2024-01-01"},
			{"end without start", "?end=2024-02-01"},
			{"start after end", "?start=2024-02-01&end=2024-01-01"},
			{"unparseable timestamp", "?start=yesterday&end=2024-02-01"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				router := newTestRouter(&stubEngine{}, &stubQueries{})
				w := doRequest(router, http.MethodGet,
					"/api/v1/admin/registrations"+tt.query, "admin-token", nil)
				assert.Equal(t, http.StatusBadRequest, w.Code)
			})
		}
	})

	t.Run("student token on the admin route is forbidden", func(t *testing.T) {
		router := newTestRouter(&stubEngine{}, &stubQueries{})
		w := doRequest(router, http.MethodGet, "/api/v1/admin/registrations", "student-token", nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
