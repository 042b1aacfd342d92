package server

import (
	"net/http"

	"github.com/gorilla/websocket"

	"glyphtone/core/glyph"
	"glyphtone/logger"
	"glyphtone/model"
)

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// previewBatchSize is one second of frames per websocket message.
const previewBatchSize = glyph.FrameRate

type previewError struct {
	Error string `json:"error"`
}

type previewBatch struct {
	Offset int          `json:"offset"`
	Total  int          `json:"total"`
	Frames glyph.Matrix `json:"frames"`
}

// PreviewHandler streams a rasterized performance over a websocket so the
// editor can play back the light pattern without running an export. The
// client sends one performance document and receives the matrix in
// one-second batches followed by a close frame.
func (h *APIHandler) PreviewHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("websocket upgrade failed", logger.ErrorField(err))
		return
	}
	defer conn.Close()

	var perf model.Performance
	if err := conn.ReadJSON(&perf); err != nil {
		logger.Warn("invalid preview request", logger.ErrorField(err))
		conn.WriteJSON(previewError{Error: "invalid performance document"})
		return
	}

	matrix, err := glyph.Rasterize(perf.Tracks, perf.Duration)
	if err != nil {
		logger.Warn("preview rasterize failed",
			logger.String("performance", perf.Name),
			logger.ErrorField(err))
		conn.WriteJSON(previewError{Error: err.Error()})
		return
	}

	total := len(matrix)
	for offset := 0; offset < total; offset += previewBatchSize {
		end := offset + previewBatchSize
		if end > total {
			end = total
		}
		batch := previewBatch{
			Offset: offset,
			Total:  total,
			Frames: matrix[offset:end],
		}
		if err := conn.WriteJSON(batch); err != nil {
			logger.Debug("preview client gone", logger.ErrorField(err))
			return
		}
	}

	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"))
}
