// README: Base handler utilities (JSON helpers, error mapping, id parsing).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"shuttle/internal/modules/dispatch"
	"shuttle/internal/modules/location"
	"shuttle/internal/modules/place"
	"shuttle/internal/modules/shift"
	"shuttle/internal/modules/timeline"
	"shuttle/internal/modules/trip"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, trip.ErrNotFound),
		errors.Is(err, shift.ErrNotFound),
		errors.Is(err, place.ErrNotFound),
		errors.Is(err, location.ErrNotFound),
		errors.Is(err, timeline.ErrEventNotFound),
		errors.Is(err, timeline.ErrAnchorNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, trip.ErrBadRequest),
		errors.Is(err, place.ErrBadRequest),
		errors.Is(err, dispatch.ErrInvalidReason),
		errors.Is(err, timeline.ErrSelfAnchor):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, trip.ErrInvalidState),
		errors.Is(err, trip.ErrConflict),
		errors.Is(err, shift.ErrConflict),
		errors.Is(err, shift.ErrHasTrips):
		writeError(c, http.StatusConflict, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

// pathUUID parses a uuid path param and writes a 400 on failure.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}
