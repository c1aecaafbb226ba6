package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"penguinclass/ml"
)

func TestHandleHealth(t *testing.T) {
	_, mux := newTestAPI(t, ml.NewStore(nil))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var payload map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if payload["status"] != "ok" {
		t.Fatalf("unexpected status: %v", payload["status"])
	}
	if payload["model_loaded"] != false {
		t.Fatalf("expected model_loaded false, got %v", payload["model_loaded"])
	}
}

func TestHandleRoot(t *testing.T) {
	_, mux := newTestAPI(t, ml.NewStore(nil))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var payload map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if payload["message"] == "" || payload["version"] == "" {
		t.Fatalf("missing fields: %v", payload)
	}
}

func TestHandleModel(t *testing.T) {
	store := trainedStore(t)
	_, mux := newTestAPI(t, store)

	req := httptest.NewRequest(http.MethodGet, "/api/model", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var info ml.ArtifactInfo
	if err := json.Unmarshal(w.Body.Bytes(), &info); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(info.FeatureColumns) != len(store.Current().Schema()) {
		t.Fatalf("unexpected feature columns: %v", info.FeatureColumns)
	}
	if len(info.SpeciesClasses) != 3 {
		t.Fatalf("unexpected species classes: %v", info.SpeciesClasses)
	}
}

func TestHandleModelNotLoaded(t *testing.T) {
	_, mux := newTestAPI(t, ml.NewStore(nil))

	req := httptest.NewRequest(http.MethodGet, "/api/model", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

func TestHandleHistory(t *testing.T) {
	_, mux := newTestAPI(t, ml.NewStore(nil))

	req := httptest.NewRequest(http.MethodGet, "/api/predictions?limit=5", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var payload map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if payload["count"].(float64) != 0 {
		t.Fatalf("expected empty history, got %v", payload)
	}
}
