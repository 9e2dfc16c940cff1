// README: End-to-end HTTP tests over the full router with in-memory stores.
package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	shuttlehttp "shuttle/internal/http"
	"shuttle/internal/modules/dispatch"
	"shuttle/internal/modules/location"
	"shuttle/internal/modules/place"
	"shuttle/internal/modules/shift"
	"shuttle/internal/modules/trip"
	"shuttle/internal/notify"
)

func newTestHandler(t *testing.T) nethttp.Handler {
	t.Helper()
	log := zap.NewNop()
	tripStore := trip.NewMemStore()
	shiftStore := shift.NewMemStore()
	placeStore := place.NewMemStore()
	placeSvc := place.NewService(placeStore, nil, log)
	return shuttlehttp.NewRouter(shuttlehttp.RouterDeps{
		Trips:     trip.NewService(tripStore, placeSvc, notify.Nop{}, log),
		Shifts:    shift.NewService(shiftStore, notify.Nop{}, log),
		Dispatch:  dispatch.NewService(tripStore, shiftStore, nil, notify.Nop{}, log),
		Places:    placeSvc,
		Locations: location.NewMemCache(5*time.Minute, time.Now),
		JWTSecret: "",
		Log:       log,
	})
}

func doJSON(t *testing.T, h nethttp.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	h := newTestHandler(t)
	w := doJSON(t, h, nethttp.MethodGet, "/health", nil)
	if w.Code != nethttp.StatusOK {
		t.Fatalf("health returned %d", w.Code)
	}
}

func TestTripLifecycleOverHTTP(t *testing.T) {
	h := newTestHandler(t)

	// a shift to dispatch onto
	w := doJSON(t, h, nethttp.MethodPost, "/api/shifts", map[string]any{"zone_id": uuid.New()})
	if w.Code != nethttp.StatusCreated {
		t.Fatalf("create shift: %d %s", w.Code, w.Body.String())
	}
	var sh struct {
		ID uuid.UUID `json:"id"`
	}
	decode(t, w, &sh)

	w = doJSON(t, h, nethttp.MethodPost, "/api/trips", map[string]any{
		"rider_id":         uuid.New(),
		"from_location_id": uuid.New(),
		"to_location_id":   uuid.New(),
		"passenger_count":  2,
		"primary_constraint": map[string]any{
			"time": time.Now().Add(time.Hour).Format(time.RFC3339),
			"kind": "PICKUP_AT",
		},
		"shift_id": sh.ID,
	})
	if w.Code != nethttp.StatusCreated {
		t.Fatalf("create trip: %d %s", w.Code, w.Body.String())
	}
	var tr struct {
		ID      uuid.UUID  `json:"id"`
		Status  string     `json:"status"`
		ShiftID *uuid.UUID `json:"shift_id"`
	}
	decode(t, w, &tr)
	if tr.Status != string(trip.StatusDriverAssigned) {
		t.Fatalf("trip with shift id should come back assigned, got %s", tr.Status)
	}
	if tr.ShiftID == nil || *tr.ShiftID != sh.ID {
		t.Fatal("trip not bound to the shift")
	}

	for _, transition := range []string{"DRIVER_EN_ROUTE", "PICKUP_ARRIVAL", "PICKUP_COMPLETE", "DROPOFF_ARRIVAL", "DROPOFF_COMPLETE"} {
		w = doJSON(t, h, nethttp.MethodPost, fmt.Sprintf("/api/trips/%s/advance", tr.ID), map[string]any{
			"transition": transition,
		})
		if w.Code != nethttp.StatusOK {
			t.Fatalf("%s: %d %s", transition, w.Code, w.Body.String())
		}
	}

	w = doJSON(t, h, nethttp.MethodGet, "/api/trips/"+tr.ID.String(), nil)
	decode(t, w, &tr)
	if tr.Status != string(trip.StatusComplete) {
		t.Fatalf("final status = %s, want TRIP_COMPLETE", tr.Status)
	}

	// terminal trips reject further transitions
	w = doJSON(t, h, nethttp.MethodPost, fmt.Sprintf("/api/trips/%s/advance", tr.ID), map[string]any{
		"transition": "DRIVER_EN_ROUTE",
	})
	if w.Code != nethttp.StatusConflict {
		t.Fatalf("advance after completion: %d, want 409", w.Code)
	}
}

func TestCancelOverHTTP(t *testing.T) {
	h := newTestHandler(t)

	w := doJSON(t, h, nethttp.MethodPost, "/api/trips", map[string]any{
		"rider_id":         uuid.New(),
		"from_location_id": uuid.New(),
		"to_location_id":   uuid.New(),
	})
	var tr struct {
		ID uuid.UUID `json:"id"`
	}
	decode(t, w, &tr)

	w = doJSON(t, h, nethttp.MethodPost, fmt.Sprintf("/api/trips/%s/cancel", tr.ID), map[string]any{
		"reason": "NOT_A_REASON",
	})
	if w.Code != nethttp.StatusBadRequest {
		t.Fatalf("bad reason: %d, want 400", w.Code)
	}

	w = doJSON(t, h, nethttp.MethodPost, fmt.Sprintf("/api/trips/%s/cancel", tr.ID), map[string]any{
		"reason": "CANCEL_BY_RIDER",
	})
	if w.Code != nethttp.StatusOK {
		t.Fatalf("cancel: %d %s", w.Code, w.Body.String())
	}
}

func TestDriverLocationOverHTTP(t *testing.T) {
	h := newTestHandler(t)
	driverID := uuid.New()

	w := doJSON(t, h, nethttp.MethodGet, "/api/drivers/"+driverID.String()+"/location", nil)
	if w.Code != nethttp.StatusNotFound {
		t.Fatalf("unknown driver location: %d, want 404", w.Code)
	}

	w = doJSON(t, h, nethttp.MethodPut, "/api/drivers/"+driverID.String()+"/location", map[string]any{
		"position": map[string]float64{"lat": 40.44, "lng": -79.99},
	})
	if w.Code != nethttp.StatusOK {
		t.Fatalf("report location: %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, h, nethttp.MethodGet, "/api/drivers/"+driverID.String()+"/location", nil)
	if w.Code != nethttp.StatusOK {
		t.Fatalf("read location: %d", w.Code)
	}
	var fix struct {
		Position struct {
			Lat float64 `json:"lat"`
		} `json:"position"`
	}
	decode(t, w, &fix)
	if fix.Position.Lat != 40.44 {
		t.Fatalf("lat = %v, want 40.44", fix.Position.Lat)
	}
}

func TestRiderActiveTripOverHTTP(t *testing.T) {
	h := newTestHandler(t)
	riderID := uuid.New()

	w := doJSON(t, h, nethttp.MethodGet, "/api/riders/"+riderID.String()+"/trips/active", nil)
	if w.Code != nethttp.StatusNotFound {
		t.Fatalf("no active trip: %d, want 404", w.Code)
	}

	w = doJSON(t, h, nethttp.MethodPost, "/api/trips", map[string]any{
		"rider_id":         riderID,
		"from_location_id": uuid.New(),
		"to_location_id":   uuid.New(),
		"primary_constraint": map[string]any{
			"time": time.Now().Add(30 * time.Minute).Format(time.RFC3339),
			"kind": "PICKUP_AT",
		},
	})
	if w.Code != nethttp.StatusCreated {
		t.Fatalf("create trip: %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, h, nethttp.MethodGet, "/api/riders/"+riderID.String()+"/trips/active", nil)
	if w.Code != nethttp.StatusOK {
		t.Fatalf("active trip: %d %s", w.Code, w.Body.String())
	}
}
