package handlers

import (
	"net/http"

	"sensorpanel/backend/services/panel-service/internal/display"
)

// NewDisplayHandler returns GET /api/display handler. Slots never written
// yet are reported as empty strings.
func NewDisplayHandler(snap display.Snapshotter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out := make(map[string]string, len(display.Slots))
		for _, slot := range display.Slots {
			out[slot] = ""
		}
		for slot, text := range snap.Snapshot() {
			out[slot] = text
		}
		writeJSON(w, http.StatusOK, out)
	}
}
