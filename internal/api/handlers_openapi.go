package api

import (
	"encoding/json"
	"net/http"
)

// handleOpenAPISpec serves a minimal OpenAPI 3.0 description of the
// route table (spec §6 EXPANSION).
func (s *Server) handleOpenAPISpec(w http.ResponseWriter, r *http.Request) {
	spec := map[string]interface{}{
		"openapi": "3.0.3",
		"info": map[string]interface{}{
			"title":       "periodiq API",
			"description": "Tracking-driven periodical download orchestrator",
			"version":     "1.0.0",
		},
		"servers": []map[string]interface{}{
			{"url": "/api/v1"},
		},
		"components": map[string]interface{}{
			"securitySchemes": map[string]interface{}{
				"bearerAuth": map[string]interface{}{
					"type":         "http",
					"scheme":       "bearer",
					"bearerFormat": "JWT",
				},
			},
		},
		"security": []map[string]interface{}{
			{"bearerAuth": []string{}},
		},
		"paths": buildAPIPaths(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(spec)
}

func buildAPIPaths() map[string]interface{} {
	paths := map[string]interface{}{}

	merge := func(path, method string, e map[string]interface{}) {
		if p, ok := paths[path].(map[string]interface{}); ok {
			p[method] = e
		} else {
			paths[path] = map[string]interface{}{method: e}
		}
	}
	endpoint := func(summary, tag, description string) map[string]interface{} {
		return map[string]interface{}{
			"summary":     summary,
			"tags":        []string{tag},
			"description": description,
			"responses": map[string]interface{}{
				"200": map[string]interface{}{"description": "OK"},
			},
		}
	}

	merge("/status", "get", endpoint("Status", "status", "Scheduler + Monitor counters snapshot"))
	merge("/auth/login", "post", endpoint("Login", "auth", "Authenticate with username and password"))
	merge("/auth/change-password", "post", endpoint("Change Password", "auth", "Change the configured password"))

	merge("/tracking", "get", endpoint("List Tracking", "tracking", "List tracking records"))
	merge("/tracking", "post", endpoint("Create Tracking", "tracking", "Create a tracking record"))
	merge("/tracking/{id}", "patch", endpoint("Update Tracking", "tracking", "Update a tracking record"))
	merge("/tracking/{id}", "delete", endpoint("Delete Tracking", "tracking", "Delete a tracking record"))
	merge("/tracking/{id}/search", "post", endpoint("Preview Search", "tracking", "Search and filter without submitting"))
	merge("/tracking/{id}/download", "post", endpoint("Trigger Download", "tracking", "Run the full Orchestrator for this tracking record"))

	merge("/submissions", "get", endpoint("List Submissions", "submissions", "Read model over Submission, filterable by tracking id and state"))
	merge("/library", "get", endpoint("List Library", "library", "Read model over LibraryEntry, filterable by title/category/language"))
	merge("/import", "post", endpoint("Manual Import", "import", "Import a single file outside of the Monitor's hand-off"))

	return paths
}
