package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWriteProblemBody(t *testing.T) {
	rr := httptest.NewRecorder()
	writeProblem(rr, http.StatusNotFound, "Not Found", "no such run", "/v1/runs/x")

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Fatalf("content type %q", ct)
	}
	var p Problem
	if err := json.Unmarshal(rr.Body.Bytes(), &p); err != nil {
		t.Fatal(err)
	}
	if p.Type != problemTypeBase+"not-found" {
		t.Fatalf("type %q", p.Type)
	}
	if p.Status != 404 || p.Title != "Not Found" || p.Instance != "/v1/runs/x" {
		t.Fatalf("problem %+v", p)
	}
}

func TestProblemTypeFallsBackToInternal(t *testing.T) {
	if got := problemType(http.StatusInternalServerError); got != problemTypeBase+"internal" {
		t.Fatalf("type %q", got)
	}
	if got := problemType(http.StatusBadRequest); got != problemTypeBase+"invalid-request" {
		t.Fatalf("type %q", got)
	}
}
