// README: Place creation and lookup handlers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"shuttle/internal/modules/place"
	"shuttle/internal/types"
)

type PlaceHandler struct {
	places *place.Service
}

func NewPlaceHandler(svc *place.Service) *PlaceHandler {
	return &PlaceHandler{places: svc}
}

type createPlaceReq struct {
	ZoneID   *uuid.UUID   `json:"zone_id"`
	Name     string       `json:"name"`
	Address  string       `json:"address"`
	Position *types.Point `json:"position"`
}

func (h *PlaceHandler) Create(c *gin.Context) {
	var req createPlaceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	p, err := h.places.Create(c.Request.Context(), place.CreateCommand{
		ZoneID:   req.ZoneID,
		Name:     req.Name,
		Address:  req.Address,
		Position: req.Position,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, p)
}

func (h *PlaceHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	p, err := h.places.Get(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, p)
}

type updatePlaceReq struct {
	ZoneID   *uuid.UUID   `json:"zone_id"`
	Name     *string      `json:"name"`
	Address  *string      `json:"address"`
	Position *types.Point `json:"position"`
}

func (h *PlaceHandler) Update(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req updatePlaceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	p, err := h.places.Update(c.Request.Context(), place.UpdateCommand{
		ID:       id,
		ZoneID:   req.ZoneID,
		Name:     req.Name,
		Address:  req.Address,
		Position: req.Position,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, p)
}

func (h *PlaceHandler) Delete(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.places.Delete(c.Request.Context(), id); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListByZone handles GET /api/zones/:id/places.
func (h *PlaceHandler) ListByZone(c *gin.Context) {
	zoneID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	places, err := h.places.ListByZone(c.Request.Context(), zoneID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, places)
}
