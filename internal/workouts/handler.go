package workouts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/fitstats/internal/db"
	"github.com/2beens/fitstats/internal/telemetry/metrics"
	"github.com/2beens/fitstats/internal/telemetry/tracing"
	"github.com/2beens/fitstats/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=workouts_mocks_test.go -package=workouts_test

type workoutsRepo interface {
	History(ctx context.Context, userID int64) ([]WorkoutSession, error)
	Add(ctx context.Context, session WorkoutSession) (*WorkoutSession, error)
	ExerciseTypes(ctx context.Context) ([]ExerciseType, error)
}

// StatsResponse is the workout log screen summary: callouts plus the
// per-exercise, per-day, per-category and per-intensity series.
type StatsResponse struct {
	TotalWorkouts         int                `json:"totalWorkouts"`
	TotalCaloriesBurned   int                `json:"totalCaloriesBurned"`
	TotalDurationMin      int                `json:"totalDurationMin"`
	CaloriesByExercise    []ExerciseCalories `json:"caloriesByExercise"`
	DurationByDay         []DayDuration      `json:"durationByDay"`
	WorkoutsByCategory    map[string]int     `json:"workoutsByCategory"`
	IntensityDistribution map[Intensity]int  `json:"intensityDistribution"`
}

type Handler struct {
	repo     workoutsRepo
	analyzer *Analyzer
	metrics  *metrics.Manager
}

func NewHandler(repo workoutsRepo, metrics *metrics.Manager) *Handler {
	return &Handler{
		repo:     repo,
		analyzer: NewAnalyzer(),
		metrics:  metrics,
	}
}

func (handler *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.history")
	defer span.End()

	userID, err := userIDFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sessions, err := handler.repo.History(ctx, userID)
	if err != nil {
		log.Errorf("failed to get workout history for user %d: %s", userID, err)
		if errors.Is(err, db.ErrConnectionFailed) {
			http.Error(w, "storage unreachable", http.StatusServiceUnavailable)
			return
		}
		http.Error(w, "failed to get workout history", http.StatusInternalServerError)
		return
	}

	sessionsJson, err := json.Marshal(sessions)
	if err != nil {
		log.Errorf("failed to marshal workout history: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, sessionsJson, http.StatusOK)
}

func (handler *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.stats")
	defer span.End()

	userID, err := userIDFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sessions, err := handler.repo.History(ctx, userID)
	if err != nil {
		log.Errorf("failed to get workout history for user %d: %s", userID, err)
		if errors.Is(err, db.ErrConnectionFailed) {
			http.Error(w, "storage unreachable", http.StatusServiceUnavailable)
			return
		}
		http.Error(w, "failed to get workout stats", http.StatusInternalServerError)
		return
	}

	stats := StatsResponse{
		TotalWorkouts:         handler.analyzer.TotalWorkouts(sessions),
		TotalCaloriesBurned:   handler.analyzer.TotalCaloriesBurned(sessions),
		TotalDurationMin:      handler.analyzer.TotalDuration(sessions),
		CaloriesByExercise:    handler.analyzer.CaloriesByExercise(sessions),
		DurationByDay:         handler.analyzer.DurationByDay(sessions),
		WorkoutsByCategory:    handler.analyzer.WorkoutsByCategory(sessions),
		IntensityDistribution: handler.analyzer.IntensityDistribution(sessions),
	}

	statsJson, err := json.Marshal(stats)
	if err != nil {
		log.Errorf("failed to marshal workout stats: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, statsJson, http.StatusOK)
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.add")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var session WorkoutSession
	if err := json.NewDecoder(r.Body).Decode(&session); err != nil {
		log.Tracef("new workout session, unmarshal json params: %s", err)
		http.Error(w, "add workout session failed", http.StatusBadRequest)
		return
	}

	if session.UserID <= 0 {
		http.Error(w, "error, invalid user id", http.StatusBadRequest)
		return
	}
	if session.ExerciseTypeID <= 0 {
		http.Error(w, "error, invalid exercise type id", http.StatusBadRequest)
		return
	}
	if session.DurationMin <= 0 {
		http.Error(w, "error, duration must be positive", http.StatusBadRequest)
		return
	}
	if session.CaloriesBurned < 0 {
		http.Error(w, "error, calories must not be negative", http.StatusBadRequest)
		return
	}

	session.Intensity = Intensity(strings.ToLower(session.Intensity.String()))
	if !session.Intensity.IsValid() {
		http.Error(w, "error, invalid intensity", http.StatusBadRequest)
		return
	}

	if session.SessionDate.IsZero() {
		session.SessionDate = time.Now()
	}

	addedSession, err := handler.repo.Add(ctx, session)
	if err != nil {
		log.Errorf("failed to add workout session for user %d: %s", session.UserID, err)
		switch {
		case pkg.IsForeignKeyViolationError(err):
			http.Error(w, "error, unknown user or exercise type", http.StatusBadRequest)
		case pkg.IsCheckViolationError(err):
			http.Error(w, "error, invalid workout session", http.StatusBadRequest)
		case errors.Is(err, db.ErrConnectionFailed):
			http.Error(w, "storage unreachable", http.StatusServiceUnavailable)
		default:
			http.Error(w, "error, failed to add workout session", http.StatusInternalServerError)
		}
		return
	}

	handler.metrics.CounterWorkoutSessions.Inc()

	addedSessionJson, err := json.Marshal(addedSession)
	if err != nil {
		log.Errorf("failed to marshal added workout session: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	log.Debugf("new workout session added: %s", addedSessionJson)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, addedSessionJson, http.StatusCreated)
}

// HandleExerciseTypes serves the catalog behind the workout entry
// form's exercise picker.
func (handler *Handler) HandleExerciseTypes(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.exerciseTypes")
	defer span.End()

	exerciseTypes, err := handler.repo.ExerciseTypes(ctx)
	if err != nil {
		log.Errorf("failed to get exercise types: %s", err)
		if errors.Is(err, db.ErrConnectionFailed) {
			http.Error(w, "storage unreachable", http.StatusServiceUnavailable)
			return
		}
		http.Error(w, "failed to get exercise types", http.StatusInternalServerError)
		return
	}

	exerciseTypesJson, err := json.Marshal(exerciseTypes)
	if err != nil {
		log.Errorf("failed to marshal exercise types: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, exerciseTypesJson, http.StatusOK)
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
