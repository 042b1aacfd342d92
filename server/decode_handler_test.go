package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"glyphtone/config"
	"glyphtone/core/glyph"
	"glyphtone/model"
)

func testHandler() *APIHandler {
	return &APIHandler{cfg: &config.Config{}}
}

func encodedPayload(t *testing.T) (string, int) {
	t.Helper()
	tracks := []model.TrackPerformance{{
		Track:    "A",
		Zones:    []int{0},
		Segments: []model.Segment{{Start: 0, End: 1}},
	}}
	matrix, err := glyph.Rasterize(tracks, 2.0)
	if err != nil {
		t.Fatalf("Rasterize: %v", err)
	}
	csvText, err := glyph.EncodeCSV(matrix)
	if err != nil {
		t.Fatalf("EncodeCSV: %v", err)
	}
	payload, err := glyph.EncodeTag(csvText)
	if err != nil {
		t.Fatalf("EncodeTag: %v", err)
	}
	return payload, len(matrix)
}

func postDecode(t *testing.T, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	rr := httptest.NewRecorder()
	testHandler().DecodeHandler(rr, req)
	return rr
}

func TestDecodeHandler(t *testing.T) {
	payload, frames := encodedPayload(t)
	body, _ := json.Marshal(decodeRequest{Payload: payload})

	rr := postDecode(t, "/api/decode", string(body))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	var resp decodeResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Frames != frames {
		t.Errorf("frames = %d, want %d", resp.Frames, frames)
	}
	if resp.Zones != glyph.ZoneCount {
		t.Errorf("zones = %d, want %d", resp.Zones, glyph.ZoneCount)
	}
	if resp.Matrix != nil {
		t.Error("matrix included without full=true")
	}
}

func TestDecodeHandlerFullMatrix(t *testing.T) {
	payload, frames := encodedPayload(t)
	body, _ := json.Marshal(decodeRequest{Payload: payload})

	rr := postDecode(t, "/api/decode?full=true", string(body))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	var resp decodeResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Matrix) != frames {
		t.Fatalf("matrix rows = %d, want %d", len(resp.Matrix), frames)
	}
	if resp.Matrix[0][0] != glyph.MaxBrightness {
		t.Errorf("matrix[0][0] = %d, want %d", resp.Matrix[0][0], glyph.MaxBrightness)
	}
}

func TestDecodeHandlerBadInput(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"not json", "{"},
		{"empty payload", `{"payload":""}`},
		{"not base64", `{"payload":"!!!!\n"}`},
		{"not zlib", `{"payload":"QUJDRA\n"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := postDecode(t, "/api/decode", tc.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rr.Code)
			}

			var resp errorResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if resp.Error == "" {
				t.Error("error message missing")
			}
		})
	}
}

func TestDecodeHandlerWrongShape(t *testing.T) {
	// Valid transform, but rows carry 25 values instead of 26.
	row := strings.Repeat("0,", 25) + "\r\n"
	payload, err := glyph.EncodeTag(row)
	if err != nil {
		t.Fatalf("EncodeTag: %v", err)
	}

	body := fmt.Sprintf(`{"payload":%q}`, payload)
	rr := postDecode(t, "/api/decode", body)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}
