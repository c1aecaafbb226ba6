package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"penguinclass/db"
	"penguinclass/ml"
)

// Overridable in tests so handler tests run without a database.
var (
	savePrediction   = db.SavePrediction
	queryPredictions = db.QueryPredictions
)

// API holds the serving dependencies: the classifier store, the prediction
// cache, and the websocket feed. Handlers read the store's current classifier
// per request; the instance never changes under them.
type API struct {
	store  *ml.Store
	cache  *lru.Cache[string, ml.Prediction]
	hub    *PredictionHub
	logger *zap.Logger
}

func NewAPI(store *ml.Store, hub *PredictionHub, cacheSize int, logger *zap.Logger) (*API, error) {
	if cacheSize <= 0 {
		cacheSize = 256
	}
	cache, err := lru.New[string, ml.Prediction](cacheSize)
	if err != nil {
		return nil, err
	}
	return &API{store: store, cache: cache, hub: hub, logger: logger}, nil
}

func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", a.handleRoot)
	mux.HandleFunc("GET /api/health", a.handleHealth)
	mux.HandleFunc("POST /api/predict", a.handlePredict)
	mux.HandleFunc("GET /api/model", a.handleModel)
	mux.HandleFunc("GET /api/predictions", a.handleHistory)
	if a.hub != nil {
		mux.HandleFunc("GET /api/ws/predictions", a.hub.HandleWS)
	}
}

func (a *API) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Penguin Species Classification API",
		"version": "1.0.0",
		"health":  "/api/health",
	})
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"model_loaded": a.store.Current() != nil,
	})
}

// predictRequest is the boundary schema. Required fields are pointers so a
// missing field is distinguishable from zero.
type predictRequest struct {
	BillLengthMM    *float64 `json:"bill_length_mm"`
	BillDepthMM     *float64 `json:"bill_depth_mm"`
	FlipperLengthMM *float64 `json:"flipper_length_mm"`
	BodyMassG       *float64 `json:"body_mass_g"`
	Sex             string   `json:"sex"`
	Island          string   `json:"island"`
	Year            int      `json:"year"`
}

type predictResponse struct {
	Species    string  `json:"species"`
	Confidence float64 `json:"confidence"`
}

func (a *API) handlePredict(w http.ResponseWriter, r *http.Request) {
	classifier := a.store.Current()
	if classifier == nil {
		writeError(w, http.StatusServiceUnavailable, "model not loaded")
		return
	}

	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			writeError(w, http.StatusUnprocessableEntity, "invalid type for field "+typeErr.Field)
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	record, err := req.toRecord()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	key := cacheKey(record)
	if prediction, ok := a.cache.Get(key); ok {
		writeJSON(w, http.StatusOK, predictResponse{Species: prediction.Species, Confidence: prediction.Confidence})
		return
	}

	prediction, err := classifier.Classify(record)
	if err != nil {
		// Detail stays in the log; clients get a generic classification.
		a.logger.Warn("prediction failed",
			zap.String("request_id", GetRequestID(r.Context())),
			zap.Error(err))
		if errors.Is(err, ml.ErrUnknownCategory) {
			writeError(w, http.StatusUnprocessableEntity, "unrecognized categorical value")
			return
		}
		writeError(w, http.StatusInternalServerError, "prediction failed")
		return
	}

	a.cache.Add(key, prediction)
	if err := savePrediction(db.PredictionRow{
		Species:         prediction.Species,
		Confidence:      prediction.Confidence,
		BillLengthMM:    record.BillLengthMM,
		BillDepthMM:     record.BillDepthMM,
		FlipperLengthMM: record.FlipperLengthMM,
		BodyMassG:       record.BodyMassG,
		Sex:             record.Sex,
		Island:          record.Island,
		Year:            record.Year,
	}); err != nil {
		a.logger.Warn("failed to log prediction", zap.Error(err))
	}
	if a.hub != nil {
		a.hub.Broadcast(PredictionEvent{
			Species:    prediction.Species,
			Confidence: prediction.Confidence,
			Timestamp:  time.Now(),
		})
	}

	writeJSON(w, http.StatusOK, predictResponse{Species: prediction.Species, Confidence: prediction.Confidence})
}

func (req predictRequest) toRecord() (ml.MeasurementRecord, error) {
	required := []struct {
		name  string
		value *float64
	}{
		{"bill_length_mm", req.BillLengthMM},
		{"bill_depth_mm", req.BillDepthMM},
		{"flipper_length_mm", req.FlipperLengthMM},
		{"body_mass_g", req.BodyMassG},
	}
	for _, field := range required {
		if field.value == nil {
			return ml.MeasurementRecord{}, fmt.Errorf("missing required field %s", field.name)
		}
		if math.IsNaN(*field.value) || math.IsInf(*field.value, 0) {
			return ml.MeasurementRecord{}, fmt.Errorf("field %s must be finite", field.name)
		}
	}
	if req.Year < 0 {
		return ml.MeasurementRecord{}, errors.New("field year must not be negative")
	}

	return ml.MeasurementRecord{
		BillLengthMM:    *req.BillLengthMM,
		BillDepthMM:     *req.BillDepthMM,
		FlipperLengthMM: *req.FlipperLengthMM,
		BodyMassG:       *req.BodyMassG,
		Sex:             req.Sex,
		Island:          req.Island,
		Year:            req.Year,
	}, nil
}

func cacheKey(record ml.MeasurementRecord) string {
	return fmt.Sprintf("%g|%g|%g|%g|%s|%s|%d",
		record.BillLengthMM, record.BillDepthMM, record.FlipperLengthMM,
		record.BodyMassG, record.Sex, record.Island, record.Year)
}

func (a *API) handleModel(w http.ResponseWriter, r *http.Request) {
	classifier := a.store.Current()
	if classifier == nil {
		writeError(w, http.StatusServiceUnavailable, "model not loaded")
		return
	}
	writeJSON(w, http.StatusOK, classifier.Info())
}

func (a *API) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	predictions, err := queryPredictions(limit)
	if err != nil {
		a.logger.Warn("failed to query predictions", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count": len(predictions),
		"data":  predictions,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
