package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/fitstats/internal/db"
	"github.com/2beens/fitstats/internal/goals"
	"github.com/2beens/fitstats/internal/telemetry/tracing"
	"github.com/2beens/fitstats/internal/users"
	"github.com/2beens/fitstats/internal/weights"
	"github.com/2beens/fitstats/internal/workouts"
	"github.com/2beens/fitstats/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=dashboard_mocks_test.go -package=dashboard_test

type usersRepo interface {
	Get(ctx context.Context, id int64) (*users.User, error)
}

type weightsRepo interface {
	History(ctx context.Context, userID int64) ([]weights.WeightRecord, error)
}

type workoutsRepo interface {
	History(ctx context.Context, userID int64) ([]workouts.WorkoutSession, error)
}

type goalsRepo interface {
	ListByUser(ctx context.Context, userID int64) ([]goals.Goal, error)
}

// SummaryResponse is everything the overview screen renders for the
// selected user: the weight and workout callouts plus the two charts.
type SummaryResponse struct {
	User                users.User             `json:"user"`
	HasWeightData       bool                   `json:"hasWeightData"`
	LatestWeightKg      float64                `json:"latestWeightKg"`
	WeightNetChangeKg   float64                `json:"weightNetChangeKg"`
	TotalWorkouts       int                    `json:"totalWorkouts"`
	TotalCaloriesBurned int                    `json:"totalCaloriesBurned"`
	TotalDurationMin    int                    `json:"totalDurationMin"`
	ActiveGoals         int                    `json:"activeGoals"`
	DurationByDay       []workouts.DayDuration `json:"durationByDay"`
	WorkoutsByCategory  map[string]int         `json:"workoutsByCategory"`
}

// Handler assembles the overview screen from the other domains. It owns
// no storage of its own - just the repos it reads through and the
// analyzers it aggregates with.
type Handler struct {
	usersRepo    usersRepo
	weightsRepo  weightsRepo
	workoutsRepo workoutsRepo
	goalsRepo    goalsRepo

	weightsAnalyzer  *weights.Analyzer
	workoutsAnalyzer *workouts.Analyzer
	goalsAnalyzer    *goals.Analyzer
}

func NewHandler(
	usersRepo usersRepo,
	weightsRepo weightsRepo,
	workoutsRepo workoutsRepo,
	goalsRepo goalsRepo,
) *Handler {
	return &Handler{
		usersRepo:        usersRepo,
		weightsRepo:      weightsRepo,
		workoutsRepo:     workoutsRepo,
		goalsRepo:        goalsRepo,
		weightsAnalyzer:  weights.NewAnalyzer(),
		workoutsAnalyzer: workouts.NewAnalyzer(),
		goalsAnalyzer:    goals.NewAnalyzer(),
	}
}

func (handler *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.dashboard.summary")
	defer span.End()

	vars := mux.Vars(r)
	idStr := vars["id"]
	if idStr == "" {
		http.Error(w, "error, user id empty", http.StatusBadRequest)
		return
	}
	userID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		http.Error(w, "error, user id NaN", http.StatusBadRequest)
		return
	}

	user, err := handler.usersRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		log.Errorf("dashboard summary, failed to get user %d: %s", userID, err)
		writeFetchError(w, err)
		return
	}

	weightRecords, err := handler.weightsRepo.History(ctx, userID)
	if err != nil {
		log.Errorf("dashboard summary, failed to get weight history for user %d: %s", userID, err)
		writeFetchError(w, err)
		return
	}

	sessions, err := handler.workoutsRepo.History(ctx, userID)
	if err != nil {
		log.Errorf("dashboard summary, failed to get workout history for user %d: %s", userID, err)
		writeFetchError(w, err)
		return
	}

	userGoals, err := handler.goalsRepo.ListByUser(ctx, userID)
	if err != nil {
		log.Errorf("dashboard summary, failed to get goals for user %d: %s", userID, err)
		writeFetchError(w, err)
		return
	}

	summary := SummaryResponse{
		User:                *user,
		WeightNetChangeKg:   handler.weightsAnalyzer.NetChange(weightRecords),
		TotalWorkouts:       handler.workoutsAnalyzer.TotalWorkouts(sessions),
		TotalCaloriesBurned: handler.workoutsAnalyzer.TotalCaloriesBurned(sessions),
		TotalDurationMin:    handler.workoutsAnalyzer.TotalDuration(sessions),
		ActiveGoals:         handler.goalsAnalyzer.ActiveCount(userGoals),
		DurationByDay:       handler.workoutsAnalyzer.DurationByDay(sessions),
		WorkoutsByCategory:  handler.workoutsAnalyzer.WorkoutsByCategory(sessions),
	}
	if latest, ok := handler.weightsAnalyzer.Latest(weightRecords); ok {
		summary.HasWeightData = true
		summary.LatestWeightKg = latest.WeightKg
	}

	summaryJson, err := json.Marshal(summary)
	if err != nil {
		log.Errorf("failed to marshal dashboard summary: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, summaryJson, http.StatusOK)
}

func writeFetchError(w http.ResponseWriter, err error) {
	if errors.Is(err, db.ErrConnectionFailed) {
		http.Error(w, "storage unreachable", http.StatusServiceUnavailable)
		return
	}
	http.Error(w, "failed to get dashboard summary", http.StatusInternalServerError)
}
