package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"glyphtone/config"
	"glyphtone/core/auth"
	"glyphtone/core/composer"
	"glyphtone/logger"
	"glyphtone/repository"
)

// MaxUploadSize caps multipart uploads (audio plus performance document).
const MaxUploadSize = 100 << 20 // 100 MB

// APIHandler handles all API requests.
type APIHandler struct {
	exportRepo repository.ExportRepository
	perfRepo   repository.PerformanceRepository
	comp       *composer.Composer
	cfg        *config.Config
}

// NewAPIHandler creates a new API handler.
func NewAPIHandler(
	exportRepo repository.ExportRepository,
	perfRepo repository.PerformanceRepository,
	comp *composer.Composer,
	cfg *config.Config,
) *APIHandler {
	return &APIHandler{
		exportRepo: exportRepo,
		perfRepo:   perfRepo,
		comp:       comp,
		cfg:        cfg,
	}
}

var nonAlphaNumeric = regexp.MustCompile(`[^a-zA-Z0-9_\-\.]`)

// safeFileName strips anything shell- or path-hostile from an uploaded
// file name, keeping the base for the exported "<base>_glyphed.ogg" name.
func safeFileName(name string) string {
	name = strings.TrimSpace(name)
	name = nonAlphaNumeric.ReplaceAllString(name, "_")
	if name == "" || strings.Trim(name, "._") == "" {
		name = "input.ogg"
	}
	return name
}

// errorResponse is the JSON error body. Stage names the pipeline step that
// failed so device-import problems can be traced.
type errorResponse struct {
	Error string `json:"error"`
	Stage string `json:"stage,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			logger.Error("failed to encode response", logger.ErrorField(err))
		}
	}
}

func respondError(w http.ResponseWriter, status int, err error) {
	body := errorResponse{Error: err.Error()}
	var stageErr *composer.Error
	if errors.As(err, &stageErr) {
		body.Stage = string(stageErr.Stage)
	}
	respondJSON(w, status, body)
}

// AuthMiddleware enforces bearer-token auth when an API secret is
// configured. Without a secret the endpoint stays open, matching the
// single-user localhost deployment.
func (h *APIHandler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.cfg.APISecret == "" {
			next(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			respondError(w, http.StatusUnauthorized, errors.New("missing bearer token"))
			return
		}
		client, err := auth.VerifyToken(h.cfg.APISecret, token)
		if err != nil {
			logger.Warn("rejected API token", logger.ErrorField(err))
			respondError(w, http.StatusUnauthorized, errors.New("invalid token"))
			return
		}
		logger.Debug("authenticated request", logger.String("client", client))
		next(w, r)
	}
}
