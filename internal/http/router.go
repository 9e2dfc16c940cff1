// README: Gin router; wires middleware and module handlers under /api.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shuttle/internal/http/handlers"
	"shuttle/internal/http/middleware"
	"shuttle/internal/modules/dispatch"
	"shuttle/internal/modules/location"
	"shuttle/internal/modules/place"
	"shuttle/internal/modules/shift"
	"shuttle/internal/modules/trip"
)

type RouterDeps struct {
	Trips     *trip.Service
	Shifts    *shift.Service
	Dispatch  *dispatch.Service
	Places    *place.Service
	Locations location.Cache
	JWTSecret string
	Log       *zap.Logger
}

func NewRouter(deps RouterDeps) http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(middleware.Recovery(deps.Log), middleware.Logging(deps.Log))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	api := r.Group("/api", middleware.Auth(deps.JWTSecret))

	tripHandler := handlers.NewTripHandler(deps.Trips, deps.Dispatch)
	api.POST("/trips", tripHandler.Create)
	api.GET("/trips/:id", tripHandler.Get)
	api.PATCH("/trips/:id", tripHandler.Update)
	api.DELETE("/trips/:id", tripHandler.Delete)
	api.POST("/trips/:id/cancel", tripHandler.Cancel)
	api.POST("/trips/:id/assign", tripHandler.Assign)
	api.POST("/trips/:id/advance", tripHandler.Advance)
	api.POST("/trips/:id/needs-assignment", tripHandler.NeedsAssignment)
	api.GET("/riders/:id/trips/active", tripHandler.ActiveForRider)
	api.GET("/riders/:id/trips/upcoming", tripHandler.UpcomingForRider)

	shiftHandler := handlers.NewShiftHandler(deps.Shifts)
	api.POST("/shifts", shiftHandler.Create)
	api.GET("/shifts", shiftHandler.List)
	api.GET("/shifts/:id", shiftHandler.Get)
	api.PATCH("/shifts/:id", shiftHandler.Update)
	api.DELETE("/shifts/:id", shiftHandler.Delete)
	api.POST("/shifts/:id/events", shiftHandler.UpsertEvent)
	api.POST("/shifts/:id/events/:eventID/move", shiftHandler.MoveEvent)
	api.DELETE("/shifts/:id/events/:eventID", shiftHandler.RemoveEvent)
	api.POST("/shifts/:id/driver", shiftHandler.AssignDriver)
	api.DELETE("/shifts/:id/driver", shiftHandler.RemoveDriver)

	driverHandler := handlers.NewDriverHandler(deps.Dispatch, deps.Shifts, deps.Locations)
	api.GET("/drivers/:id/trips", driverHandler.Trips)
	api.GET("/drivers/:id/shifts", driverHandler.Shifts)
	api.PUT("/drivers/:id/location", driverHandler.UpdateLocation)
	api.GET("/drivers/:id/location", driverHandler.Location)

	placeHandler := handlers.NewPlaceHandler(deps.Places)
	api.POST("/places", placeHandler.Create)
	api.GET("/places/:id", placeHandler.Get)
	api.PATCH("/places/:id", placeHandler.Update)
	api.DELETE("/places/:id", placeHandler.Delete)
	api.GET("/zones/:id/places", placeHandler.ListByZone)

	return r
}
