// README: Driver-facing handlers (work queue, shifts, location reporting).
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"shuttle/internal/http/middleware"
	"shuttle/internal/modules/dispatch"
	"shuttle/internal/modules/location"
	"shuttle/internal/modules/shift"
	"shuttle/internal/types"
)

type DriverHandler struct {
	dispatch  *dispatch.Service
	shifts    *shift.Service
	locations location.Cache
}

func NewDriverHandler(dispatchSvc *dispatch.Service, shifts *shift.Service, locations location.Cache) *DriverHandler {
	return &DriverHandler{dispatch: dispatchSvc, shifts: shifts, locations: locations}
}

// Trips handles GET /api/drivers/:id/trips, returning the trips on the
// driver's current shift sorted by primary constraint time.
func (h *DriverHandler) Trips(c *gin.Context) {
	driverID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	trips, err := h.dispatch.TripsForDriver(c.Request.Context(), driverID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, trips)
}

// Shifts handles GET /api/drivers/:id/shifts.
func (h *DriverHandler) Shifts(c *gin.Context) {
	driverID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	shifts, err := h.shifts.ListByDriver(c.Request.Context(), driverID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, shifts)
}

type locationUpdateReq struct {
	Position types.Point `json:"position"`
}

// UpdateLocation handles PUT /api/drivers/:id/location. Only the
// authenticated driver may report their own position.
func (h *DriverHandler) UpdateLocation(c *gin.Context) {
	driverID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if uid := middleware.CallerUID(c); uid != "" && uid != driverID.String() {
		writeError(c, http.StatusForbidden, "forbidden: id does not match authenticated user")
		return
	}
	var req locationUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	fix := location.Fix{DriverID: driverID, Position: req.Position, RecordedAt: time.Now()}
	if err := h.locations.Set(c.Request.Context(), fix); err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": "ok"})
}

// Location handles GET /api/drivers/:id/location.
func (h *DriverHandler) Location(c *gin.Context) {
	driverID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	fix, err := h.locations.Get(c.Request.Context(), driverID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, fix)
}
