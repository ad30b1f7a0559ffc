package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	t "github.com/ahmadnish/lets-vibe/internal/types"
)

// generateRequest is the shared body of the generate and orchestrate
// endpoints.
type generateRequest struct {
	ProjectIdea         string          `json:"project_idea"`
	SpecialInstructions string          `json:"special_instructions,omitempty"`
	Contributors        []t.Contributor `json:"contributors"`
}

// decodeAndValidate parses the body and enforces the request contract:
// a non-blank idea and at least one contributor.
func decodeAndValidate(r *http.Request) (generateRequest, string) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, "invalid json body"
	}
	if strings.TrimSpace(req.ProjectIdea) == "" {
		return req, "project_idea is required"
	}
	if len(req.Contributors) == 0 {
		return req, "at least one contributor is required"
	}
	return req, ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// HandleHealth is a liveness probe.
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
