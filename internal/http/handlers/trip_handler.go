// README: Trip intake, lifecycle, and rider-facing query handlers.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"shuttle/internal/modules/dispatch"
	"shuttle/internal/modules/trip"
	"shuttle/internal/types"
)

type TripHandler struct {
	trips    *trip.Service
	dispatch *dispatch.Service
}

func NewTripHandler(trips *trip.Service, dispatchSvc *dispatch.Service) *TripHandler {
	return &TripHandler{trips: trips, dispatch: dispatchSvc}
}

type constraintReq struct {
	Time time.Time `json:"time"`
	Kind string    `json:"kind"`
}

func (r *constraintReq) toDomain() *types.TimeConstraint {
	if r == nil {
		return nil
	}
	return &types.TimeConstraint{Time: r.Time, Kind: types.ConstraintKind(r.Kind)}
}

type createTripReq struct {
	RiderID             uuid.UUID      `json:"rider_id"`
	FromLocationID      uuid.UUID      `json:"from_location_id"`
	ToLocationID        uuid.UUID      `json:"to_location_id"`
	Type                string         `json:"type"`
	PassengerCount      int            `json:"passenger_count"`
	Primary             *constraintReq `json:"primary_constraint"`
	Secondary           *constraintReq `json:"secondary_constraint"`
	ShiftID             *uuid.UUID     `json:"shift_id"`
	Position            *int           `json:"position"`
	PartnerRequestID    *uuid.UUID     `json:"partner_request_id"`
	SpecialInstructions string         `json:"special_instructions"`
}

// Create handles POST /api/trips. When a shift id is supplied the trip is
// assigned to it immediately after intake.
func (h *TripHandler) Create(c *gin.Context) {
	var req createTripReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	t, err := h.trips.Request(c.Request.Context(), trip.RequestCommand{
		RiderID:             req.RiderID,
		FromLocationID:      req.FromLocationID,
		ToLocationID:        req.ToLocationID,
		Type:                trip.RequestType(req.Type),
		PassengerCount:      req.PassengerCount,
		Primary:             req.Primary.toDomain(),
		Secondary:           req.Secondary.toDomain(),
		ShiftID:             req.ShiftID,
		PartnerRequestID:    req.PartnerRequestID,
		SpecialInstructions: req.SpecialInstructions,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if req.ShiftID != nil {
		t, err = h.dispatch.AssignTripToShift(c.Request.Context(), t.ID, *req.ShiftID, req.Position)
		if err != nil {
			writeServiceError(c, err)
			return
		}
	}
	writeJSON(c, http.StatusCreated, t)
}

func (h *TripHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	t, err := h.trips.Get(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, t)
}

type updateTripReq struct {
	RiderID             *uuid.UUID     `json:"rider_id"`
	FromLocationID      *uuid.UUID     `json:"from_location_id"`
	ToLocationID        *uuid.UUID     `json:"to_location_id"`
	Type                *string        `json:"type"`
	PassengerCount      *int           `json:"passenger_count"`
	Primary             *constraintReq `json:"primary_constraint"`
	Secondary           *constraintReq `json:"secondary_constraint"`
	SpecialInstructions *string        `json:"special_instructions"`
}

func (h *TripHandler) Update(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req updateTripReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	cmd := trip.UpdateCommand{
		ID:                  id,
		RiderID:             req.RiderID,
		FromLocationID:      req.FromLocationID,
		ToLocationID:        req.ToLocationID,
		PassengerCount:      req.PassengerCount,
		Primary:             req.Primary.toDomain(),
		Secondary:           req.Secondary.toDomain(),
		SpecialInstructions: req.SpecialInstructions,
	}
	if req.Type != nil {
		rt := trip.RequestType(*req.Type)
		cmd.Type = &rt
	}
	t, err := h.trips.Update(c.Request.Context(), cmd)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, t)
}

type cancelTripReq struct {
	Reason string `json:"reason"`
}

func (h *TripHandler) Cancel(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req cancelTripReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	t, err := h.dispatch.Cancel(c.Request.Context(), id, trip.Status(req.Reason))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, t)
}

func (h *TripHandler) Delete(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.dispatch.Delete(c.Request.Context(), id); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TripHandler) NeedsAssignment(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	t, err := h.dispatch.SetNeedsAssignment(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, t)
}

type assignTripReq struct {
	ShiftID  uuid.UUID `json:"shift_id"`
	Position *int      `json:"position"`
}

func (h *TripHandler) Assign(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req assignTripReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	t, err := h.dispatch.AssignTripToShift(c.Request.Context(), id, req.ShiftID, req.Position)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, t)
}

type advanceTripReq struct {
	Transition string       `json:"transition"`
	Location   *types.Point `json:"location"`
}

// Advance handles POST /api/trips/:id/advance for the five progress steps.
func (h *TripHandler) Advance(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req advanceTripReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	t, err := h.dispatch.Advance(c.Request.Context(), id, dispatch.Transition(req.Transition), req.Location)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, t)
}

// ActiveForRider handles GET /api/riders/:id/trips/active.
func (h *TripHandler) ActiveForRider(c *gin.Context) {
	riderID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	t, err := h.trips.SelectActive(c.Request.Context(), riderID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, t)
}

// UpcomingForRider handles GET /api/riders/:id/trips/upcoming.
func (h *TripHandler) UpcomingForRider(c *gin.Context) {
	riderID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	trips, err := h.trips.Upcoming(c.Request.Context(), riderID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, trips)
}
