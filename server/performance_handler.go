package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"glyphtone/core/midiimport"
	"glyphtone/logger"
	"glyphtone/model"
)

// PerformancesHandler lists saved compositions or creates a new one.
func (h *APIHandler) PerformancesHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		records, err := h.perfRepo.List()
		if err != nil {
			respondError(w, http.StatusInternalServerError, err)
			return
		}
		respondJSON(w, http.StatusOK, records)
	case http.MethodPost:
		var perf model.Performance
		if err := json.NewDecoder(r.Body).Decode(&perf); err != nil {
			respondError(w, http.StatusBadRequest, fmt.Errorf("invalid performance document: %w", err))
			return
		}
		if perf.Name == "" {
			respondError(w, http.StatusBadRequest, errors.New("performance name is required"))
			return
		}
		record, err := model.NewPerformanceRecord(&perf)
		if err != nil {
			respondError(w, http.StatusBadRequest, err)
			return
		}
		if err := h.perfRepo.Create(record); err != nil {
			respondError(w, http.StatusInternalServerError, err)
			return
		}
		logger.Info("performance saved",
			logger.Int64("id", record.ID),
			logger.String("name", record.Name))
		respondJSON(w, http.StatusCreated, record)
	default:
		respondError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
	}
}

// PerformanceHandler fetches, replaces or deletes one saved composition.
func (h *APIHandler) PerformanceHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, errors.New("invalid performance id"))
		return
	}

	record, err := h.perfRepo.GetByID(id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	if record == nil {
		respondError(w, http.StatusNotFound, fmt.Errorf("performance %d not found", id))
		return
	}

	switch r.Method {
	case http.MethodGet:
		perf, err := record.Snapshot()
		if err != nil {
			respondError(w, http.StatusInternalServerError, err)
			return
		}
		respondJSON(w, http.StatusOK, perf)
	case http.MethodPut:
		var perf model.Performance
		if err := json.NewDecoder(r.Body).Decode(&perf); err != nil {
			respondError(w, http.StatusBadRequest, fmt.Errorf("invalid performance document: %w", err))
			return
		}
		updated, err := model.NewPerformanceRecord(&perf)
		if err != nil {
			respondError(w, http.StatusBadRequest, err)
			return
		}
		updated.ID = record.ID
		updated.CreatedAt = record.CreatedAt
		if updated.Name == "" {
			updated.Name = record.Name
		}
		if err := h.perfRepo.Update(updated); err != nil {
			respondError(w, http.StatusInternalServerError, err)
			return
		}
		respondJSON(w, http.StatusOK, updated)
	case http.MethodDelete:
		if err := h.perfRepo.Delete(id); err != nil {
			respondError(w, http.StatusInternalServerError, err)
			return
		}
		respondJSON(w, http.StatusNoContent, nil)
	default:
		respondError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
	}
}

// ImportMIDIHandler converts an uploaded Standard MIDI File into a
// performance snapshot the editor can load.
func (h *APIHandler) ImportMIDIHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Errorf("invalid multipart form: %w", err))
		return
	}

	midiFile, _, err := r.FormFile("midi")
	if err != nil {
		respondError(w, http.StatusBadRequest, errors.New("missing midi file"))
		return
	}
	defer midiFile.Close()

	var fade float64
	if v := r.FormValue("fade"); v != "" {
		fade, err = strconv.ParseFloat(v, 64)
		if err != nil || fade < 0 {
			respondError(w, http.StatusBadRequest, errors.New("invalid fade value"))
			return
		}
	}

	perf, err := midiimport.ReadPerformance(midiFile, midiimport.Options{Fade: fade})
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Errorf("midi import failed: %w", err))
		return
	}
	respondJSON(w, http.StatusOK, perf)
}
