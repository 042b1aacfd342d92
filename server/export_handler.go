package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"glyphtone/core/composer"
	"glyphtone/core/glyph"
	"glyphtone/logger"
	"glyphtone/model"
	"glyphtone/storage"
)

// exportResponse is the record plus the URL the tagged file can be fetched
// from.
type exportResponse struct {
	*model.ExportRecord
	DownloadURL string `json:"downloadUrl"`
}

// ExportHandler accepts an audio upload plus a performance document and
// runs the full export pipeline.
func (h *APIHandler) ExportHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Errorf("invalid multipart form: %w", err))
		return
	}

	audioFile, audioHeader, err := r.FormFile("audio")
	if err != nil {
		respondError(w, http.StatusBadRequest, errors.New("missing audio file"))
		return
	}
	defer audioFile.Close()

	perfJSON := r.FormValue("performance")
	if perfJSON == "" {
		respondError(w, http.StatusBadRequest, errors.New("missing performance document"))
		return
	}
	var perf model.Performance
	if err := json.Unmarshal([]byte(perfJSON), &perf); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Errorf("invalid performance document: %w", err))
		return
	}

	// Park the upload on disk under its sanitized original name so the
	// export keeps the "<base>_glyphed.ogg" naming.
	exportID := uuid.New().String()
	uploadDir := filepath.Join(h.cfg.UploadDir, exportID)
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Errorf("failed to create upload dir: %w", err))
		return
	}
	defer os.RemoveAll(uploadDir)

	audioPath := filepath.Join(uploadDir, safeFileName(audioHeader.Filename))
	dst, err := os.Create(audioPath)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Errorf("failed to store upload: %w", err))
		return
	}
	if _, err := io.Copy(dst, audioFile); err != nil {
		dst.Close()
		respondError(w, http.StatusInternalServerError, fmt.Errorf("failed to store upload: %w", err))
		return
	}
	dst.Close()

	title := r.FormValue("title")
	if title == "" {
		title = perf.Name
	}

	result, err := h.comp.Compose(r.Context(), composer.Request{
		AudioPath:   audioPath,
		OutputDir:   uploadDir,
		Performance: &perf,
		Title:       title,
		Album:       r.FormValue("album"),
		Artist:      r.FormValue("artist"),
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, glyph.ErrInvalidSegment) || errors.Is(err, glyph.ErrMatrixShape) {
			status = http.StatusBadRequest
		}
		logger.Error("export failed",
			logger.String("audio", audioHeader.Filename),
			logger.ErrorField(err))
		respondError(w, status, err)
		return
	}

	objectPath := fmt.Sprintf("exports/%s/%s", exportID, result.FileName)
	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()
	if err := storage.UploadFile(ctx, h.cfg.MinioBucket, objectPath, result.OutputPath, "audio/ogg"); err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	record := &model.ExportRecord{
		UUID:       exportID,
		Title:      title,
		Album:      r.FormValue("album"),
		Artist:     r.FormValue("artist"),
		FileName:   result.FileName,
		ObjectPath: objectPath,
		Duration:   result.Duration,
		FrameCount: result.FrameCount,
	}
	if record.Title == "" {
		record.Title = glyph.DefaultTitle
	}
	if _, err := h.exportRepo.CreateExport(record); err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	logger.Info("export finished",
		logger.String("uuid", record.UUID),
		logger.String("file", record.FileName),
		logger.Int("frames", record.FrameCount),
		logger.Float64("duration", record.Duration))

	respondJSON(w, http.StatusCreated, exportResponse{
		ExportRecord: record,
		DownloadURL:  fmt.Sprintf("/api/exports/%s/download", record.UUID),
	})
}

// ListExportsHandler returns recent export records.
func (h *APIHandler) ListExportsHandler(w http.ResponseWriter, r *http.Request) {
	records, err := h.exportRepo.ListExports(50)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, records)
}

// GetExportHandler returns one export record.
func (h *APIHandler) GetExportHandler(w http.ResponseWriter, r *http.Request) {
	record, err := h.lookupExport(w, r)
	if record == nil || err != nil {
		return
	}
	respondJSON(w, http.StatusOK, record)
}

// DownloadExportHandler streams the tagged file from object storage.
func (h *APIHandler) DownloadExportHandler(w http.ResponseWriter, r *http.Request) {
	record, err := h.lookupExport(w, r)
	if record == nil || err != nil {
		return
	}

	w.Header().Set("Content-Type", "audio/ogg")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", record.FileName))

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()
	if err := storage.StreamObject(ctx, h.cfg.MinioBucket, record.ObjectPath, w); err != nil {
		logger.Error("failed to stream export",
			logger.String("uuid", record.UUID),
			logger.ErrorField(err))
	}
}

// lookupExport resolves the {uuid} route variable, writing the error
// response itself on failure.
func (h *APIHandler) lookupExport(w http.ResponseWriter, r *http.Request) (*model.ExportRecord, error) {
	id := mux.Vars(r)["uuid"]
	record, err := h.exportRepo.GetExportByUUID(id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return nil, err
	}
	if record == nil {
		respondError(w, http.StatusNotFound, fmt.Errorf("export %s not found", id))
		return nil, nil
	}
	return record, nil
}
