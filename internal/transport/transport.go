package transport

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campushub/event-registration/internal/entity"
	"github.com/campushub/event-registration/internal/service"
	"github.com/campushub/event-registration/internal/transport/middleware"
)

func InitRoutes(
	authService service.AuthService,
	authHandler *AuthHandler,
	eventHandler *EventHandler,
	registrationHandler *RegistrationHandler,
) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.Timeout(30 * time.Second))

	api := router.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
		}

		events := api.Group("/events")
		{
			events.GET("", eventHandler.GetAllEvents)
			events.GET("/:id", eventHandler.GetEvent)

			adminOnly := events.Group("", middleware.Authenticate(authService), middleware.RequireRole(entity.RoleAdmin))
			{
				adminOnly.POST("", eventHandler.CreateEvent)
				adminOnly.PUT("/:id", eventHandler.UpdateEvent)
				adminOnly.DELETE("/:id", eventHandler.DeleteEvent)
			}
		}

		registrations := api.Group("/registrations",
			middleware.Authenticate(authService),
			middleware.RequireRole(entity.RoleStudent),
		)
		{
			registrations.POST("", registrationHandler.Register)
			registrations.DELETE("/:id", registrationHandler.Cancel)
			registrations.GET("/my", registrationHandler.GetMyRegistrations)
		}

		admin := api.Group("/admin",
			middleware.Authenticate(authService),
			middleware.RequireRole(entity.RoleAdmin),
		)
		{
			admin.GET("/registrations", registrationHandler.GetAllRegistrations)
			admin.GET("/audit", registrationHandler.GetAuditLog)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return router
}
