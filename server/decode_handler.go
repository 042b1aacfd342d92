package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"glyphtone/core/glyph"
)

// decodeRequest carries a tag payload to inspect.
type decodeRequest struct {
	Payload string `json:"payload"`
}

// decodeResponse summarizes the decoded matrix. The full matrix is only
// included on request; a three-minute export is over ten thousand rows.
type decodeResponse struct {
	Frames   int          `json:"frames"`
	Zones    int          `json:"zones"`
	Duration float64      `json:"duration"`
	Matrix   glyph.Matrix `json:"matrix,omitempty"`
}

// DecodeHandler runs the inverse pipeline on a tag payload. It exists so
// device-import failures can be debugged against what a file actually
// carries.
func (h *APIHandler) DecodeHandler(w http.ResponseWriter, r *http.Request) {
	var req decodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if req.Payload == "" {
		respondError(w, http.StatusBadRequest, fmt.Errorf("missing payload"))
		return
	}

	csvText, err := glyph.DecodeTag(req.Payload)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	matrix, err := glyph.DecodeCSV(csvText)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	resp := decodeResponse{
		Frames:   len(matrix),
		Zones:    glyph.ZoneCount,
		Duration: float64(len(matrix)) / glyph.FrameRate,
	}
	if r.URL.Query().Get("full") == "true" {
		resp.Matrix = matrix
	}
	respondJSON(w, http.StatusOK, resp)
}
