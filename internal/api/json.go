package api

import (
	"encoding/json"
	"net/http"
)

// problemTypeBase prefixes the machine-readable problem identifiers
// served by this API.
const problemTypeBase = "https://sweepnav.dev/problems/"

var problemSlugs = map[int]string{
	http.StatusBadRequest:         "invalid-request",
	http.StatusNotFound:           "not-found",
	http.StatusTooManyRequests:    "rate-limited",
	http.StatusServiceUnavailable: "not-ready",
}

// Problem is an RFC 7807 problem-details body. Type identifies the
// problem class, Instance the request path it occurred on.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

func problemType(status int) string {
	slug, ok := problemSlugs[status]
	if !ok {
		slug = "internal"
	}
	return problemTypeBase + slug
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeProblem(w http.ResponseWriter, status int, title, detail, instance string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Problem{
		Type:     problemType(status),
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: instance,
	})
}
