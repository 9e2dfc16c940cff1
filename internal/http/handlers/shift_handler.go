// README: Shift lifecycle and timeline editing handlers.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"shuttle/internal/modules/shift"
	"shuttle/internal/modules/timeline"
)

type ShiftHandler struct {
	shifts *shift.Service
}

func NewShiftHandler(svc *shift.Service) *ShiftHandler {
	return &ShiftHandler{shifts: svc}
}

type createShiftReq struct {
	DriverID    *uuid.UUID `json:"driver_id"`
	ZoneID      uuid.UUID  `json:"zone_id"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	StartBuffer *int       `json:"start_buffer"`
	EndBuffer   *int       `json:"end_buffer"`
	CreatedBy   *uuid.UUID `json:"created_by"`
}

func (h *ShiftHandler) Create(c *gin.Context) {
	var req createShiftReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.ZoneID == uuid.Nil {
		writeError(c, http.StatusBadRequest, "zone_id is required")
		return
	}
	sh, err := h.shifts.Create(c.Request.Context(), shift.CreateCommand{
		DriverID:    req.DriverID,
		ZoneID:      req.ZoneID,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		StartBuffer: req.StartBuffer,
		EndBuffer:   req.EndBuffer,
		CreatedBy:   req.CreatedBy,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, sh)
}

func (h *ShiftHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	sh, err := h.shifts.Get(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, sh)
}

// List handles GET /api/shifts?active=true|false (active by default).
func (h *ShiftHandler) List(c *gin.Context) {
	active := c.DefaultQuery("active", "true") == "true"
	shifts, err := h.shifts.ListActive(c.Request.Context(), active)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, shifts)
}

type updateShiftReq struct {
	ZoneID      *uuid.UUID `json:"zone_id"`
	DriverID    *uuid.UUID `json:"driver_id"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	StartBuffer *int       `json:"start_buffer"`
	EndBuffer   *int       `json:"end_buffer"`
	Active      *bool      `json:"active"`
}

func (h *ShiftHandler) Update(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req updateShiftReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	sh, err := h.shifts.Update(c.Request.Context(), shift.UpdateCommand{
		ID:          id,
		ZoneID:      req.ZoneID,
		DriverID:    req.DriverID,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		StartBuffer: req.StartBuffer,
		EndBuffer:   req.EndBuffer,
		Active:      req.Active,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, sh)
}

func (h *ShiftHandler) Delete(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.shifts.Delete(c.Request.Context(), id); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type upsertEventReq struct {
	Event    timeline.Event `json:"event"`
	AnchorID *uuid.UUID     `json:"anchor_id"`
}

// UpsertEvent handles POST /api/shifts/:id/events.
func (h *ShiftHandler) UpsertEvent(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req upsertEventReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	anchor := uuid.Nil
	if req.AnchorID != nil {
		anchor = *req.AnchorID
	}
	sh, err := h.shifts.AddOrUpdateEvent(c.Request.Context(), id, req.Event, anchor)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, sh)
}

type moveEventReq struct {
	AnchorID uuid.UUID `json:"anchor_id"`
}

// MoveEvent handles POST /api/shifts/:id/events/:eventID/move.
func (h *ShiftHandler) MoveEvent(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	eventID, ok := pathUUID(c, "eventID")
	if !ok {
		return
	}
	var req moveEventReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	sh, err := h.shifts.MoveEvent(c.Request.Context(), id, eventID, req.AnchorID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, sh)
}

func (h *ShiftHandler) RemoveEvent(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	eventID, ok := pathUUID(c, "eventID")
	if !ok {
		return
	}
	sh, err := h.shifts.RemoveEvent(c.Request.Context(), id, eventID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, sh)
}

type assignDriverReq struct {
	DriverID uuid.UUID `json:"driver_id"`
}

func (h *ShiftHandler) AssignDriver(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req assignDriverReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.DriverID == uuid.Nil {
		writeError(c, http.StatusBadRequest, "driver_id is required")
		return
	}
	sh, err := h.shifts.AssignDriver(c.Request.Context(), id, req.DriverID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, sh)
}

func (h *ShiftHandler) RemoveDriver(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	sh, err := h.shifts.RemoveDriver(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, sh)
}
