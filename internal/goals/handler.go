package goals

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/fitstats/internal/db"
	"github.com/2beens/fitstats/internal/telemetry/tracing"
	"github.com/2beens/fitstats/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=goals_mocks_test.go -package=goals_test

type goalsRepo interface {
	ListByUser(ctx context.Context, userID int64) ([]Goal, error)
}

// GoalCard is a goal enriched with its computed progress, the way the
// goals screen renders it: the raw percentage plus a value capped to
// the [0, 100] progress bar range.
type GoalCard struct {
	Goal
	ProgressPercent        float64 `json:"progressPercent"`
	ProgressPercentClamped float64 `json:"progressPercentClamped"`
}

type ListResponse struct {
	Goals       []GoalCard `json:"goals"`
	ActiveCount int        `json:"activeCount"`
}

type Handler struct {
	repo     goalsRepo
	analyzer *Analyzer
}

func NewHandler(repo goalsRepo) *Handler {
	return &Handler{
		repo:     repo,
		analyzer: NewAnalyzer(),
	}
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.list")
	defer span.End()

	userID, err := userIDFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	goals, err := handler.repo.ListByUser(ctx, userID)
	if err != nil {
		log.Errorf("failed to get goals for user %d: %s", userID, err)
		if errors.Is(err, db.ErrConnectionFailed) {
			http.Error(w, "storage unreachable", http.StatusServiceUnavailable)
			return
		}
		http.Error(w, "failed to get goals", http.StatusInternalServerError)
		return
	}

	cards := make([]GoalCard, 0, len(goals))
	for _, goal := range goals {
		progress := handler.analyzer.ProgressPercent(goal)
		cards = append(cards, GoalCard{
			Goal:                   goal,
			ProgressPercent:        progress,
			ProgressPercentClamped: handler.analyzer.ClampProgress(progress),
		})
	}

	listResponse := ListResponse{
		Goals:       cards,
		ActiveCount: handler.analyzer.ActiveCount(goals),
	}

	listResponseJson, err := json.Marshal(listResponse)
	if err != nil {
		log.Errorf("failed to marshal goals: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, listResponseJson, http.StatusOK)
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
