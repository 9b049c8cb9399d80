package weights

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/fitstats/internal/db"
	"github.com/2beens/fitstats/internal/telemetry/metrics"
	"github.com/2beens/fitstats/internal/telemetry/tracing"
	"github.com/2beens/fitstats/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=weights_mocks_test.go -package=weights_test

type weightsRepo interface {
	History(ctx context.Context, userID int64) ([]WeightRecord, error)
	Add(ctx context.Context, record WeightRecord) (*WeightRecord, error)
}

// StatsResponse is the weight tracking screen summary: callout values
// plus the trend line series. HasData tells the frontend whether to
// render the stats or the "no data yet" placeholder.
type StatsResponse struct {
	HasData     bool          `json:"hasData"`
	Latest      *WeightRecord `json:"latest,omitempty"`
	MinKg       float64       `json:"minKg"`
	MaxKg       float64       `json:"maxKg"`
	NetChangeKg float64       `json:"netChangeKg"`
	Trend       []TrendPoint  `json:"trend"`
}

type Handler struct {
	repo     weightsRepo
	analyzer *Analyzer
	metrics  *metrics.Manager
}

func NewHandler(repo weightsRepo, metrics *metrics.Manager) *Handler {
	return &Handler{
		repo:     repo,
		analyzer: NewAnalyzer(),
		metrics:  metrics,
	}
}

func (handler *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.weights.history")
	defer span.End()

	userID, err := userIDFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	records, err := handler.repo.History(ctx, userID)
	if err != nil {
		log.Errorf("failed to get weight history for user %d: %s", userID, err)
		if errors.Is(err, db.ErrConnectionFailed) {
			http.Error(w, "storage unreachable", http.StatusServiceUnavailable)
			return
		}
		http.Error(w, "failed to get weight history", http.StatusInternalServerError)
		return
	}

	recordsJson, err := json.Marshal(records)
	if err != nil {
		log.Errorf("failed to marshal weight history: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, recordsJson, http.StatusOK)
}

func (handler *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.weights.stats")
	defer span.End()

	userID, err := userIDFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	records, err := handler.repo.History(ctx, userID)
	if err != nil {
		log.Errorf("failed to get weight history for user %d: %s", userID, err)
		if errors.Is(err, db.ErrConnectionFailed) {
			http.Error(w, "storage unreachable", http.StatusServiceUnavailable)
			return
		}
		http.Error(w, "failed to get weight stats", http.StatusInternalServerError)
		return
	}

	stats := StatsResponse{
		Trend: handler.analyzer.TrendSeries(records),
	}
	if latest, ok := handler.analyzer.Latest(records); ok {
		stats.HasData = true
		stats.Latest = &latest
	}
	if minKg, maxKg, ok := handler.analyzer.Extremes(records); ok {
		stats.MinKg = minKg
		stats.MaxKg = maxKg
	}
	stats.NetChangeKg = handler.analyzer.NetChange(records)

	statsJson, err := json.Marshal(stats)
	if err != nil {
		log.Errorf("failed to marshal weight stats: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, statsJson, http.StatusOK)
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.weights.add")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var record WeightRecord
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		log.Tracef("new weight record, unmarshal json params: %s", err)
		http.Error(w, "add weight record failed", http.StatusBadRequest)
		return
	}

	if record.UserID <= 0 {
		http.Error(w, "error, invalid user id", http.StatusBadRequest)
		return
	}
	if record.WeightKg <= 0 {
		http.Error(w, "error, weight must be positive", http.StatusBadRequest)
		return
	}

	if record.RecordedAt.IsZero() {
		record.RecordedAt = time.Now()
	}

	addedRecord, err := handler.repo.Add(ctx, record)
	if err != nil {
		log.Errorf("failed to add weight record for user %d: %s", record.UserID, err)
		switch {
		case pkg.IsForeignKeyViolationError(err):
			http.Error(w, "error, unknown user", http.StatusBadRequest)
		case pkg.IsCheckViolationError(err):
			http.Error(w, "error, invalid weight record", http.StatusBadRequest)
		case errors.Is(err, db.ErrConnectionFailed):
			http.Error(w, "storage unreachable", http.StatusServiceUnavailable)
		default:
			http.Error(w, "error, failed to add weight record", http.StatusInternalServerError)
		}
		return
	}

	handler.metrics.CounterWeightRecords.Inc()

	addedRecordJson, err := json.Marshal(addedRecord)
	if err != nil {
		log.Errorf("failed to marshal added weight record: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	log.Debugf("new weight record added: %s", addedRecordJson)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, addedRecordJson, http.StatusCreated)
}

func userIDFromRequest(r *http.Request) (int64, error) {
	idStr := mux.Vars(r)["id"]
	if idStr == "" {
		return 0, errors.New("error, user id empty")
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return 0, errors.New("error, user id NaN")
	}
	return id, nil
}
