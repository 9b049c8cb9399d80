package workouts

import (
	"context"
	"errors"

	"github.com/2beens/fitstats/internal/db"
	"github.com/2beens/fitstats/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// History returns all workout sessions of a user, joined with the
// exercise catalog for display names, newest first.
func (r *Repo) History(ctx context.Context, userID int64) (_ []WorkoutSession, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.history")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int64("user.id", userID))

	rows, err := r.db.Query(
		ctx,
		`SELECT
				w.id, w.user_id, w.exercise_type_id, et.name, et.category,
				w.duration_minutes, w.calories_burned, w.intensity, w.session_date, w.notes
			FROM workout_sessions w
			JOIN exercise_types et ON w.exercise_type_id = et.id
			WHERE w.user_id = $1
			ORDER BY w.session_date DESC, w.id DESC;`,
		userID,
	)
	if err != nil {
		return nil, db.QueryError(err)
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, db.QueryError(err)
	}

	sessions, err := rows2sessions(rows)
	if err != nil {
		return nil, db.QueryError(err)
	}

	span.SetAttributes(attribute.Int("sessions.count", len(sessions)))
	return sessions, nil
}

// Add stores a new workout session and returns it with the assigned ID
// and the exercise name and category resolved from the catalog. A single
// statement, so the write stays atomic per call.
func (r *Repo) Add(ctx context.Context, session WorkoutSession) (_ *WorkoutSession, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`WITH inserted AS (
				INSERT INTO workout_sessions
					(user_id, exercise_type_id, duration_minutes, calories_burned, intensity, session_date, notes)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				RETURNING id, exercise_type_id
			)
			SELECT i.id, et.name, et.category
			FROM inserted i
			JOIN exercise_types et ON i.exercise_type_id = et.id;`,
		session.UserID, session.ExerciseTypeID, session.DurationMin,
		session.CaloriesBurned, session.Intensity.String(), session.SessionDate, session.Notes,
	)
	if err != nil {
		return nil, db.WriteError(err)
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, db.WriteError(err)
	}

	if !rows.Next() {
		return nil, db.WriteError(errors.New("no rows returned"))
	}

	if err := rows.Scan(&session.ID, &session.ExerciseName, &session.Category); err != nil {
		return nil, db.WriteError(err)
	}

	span.SetAttributes(attribute.Int64("session.id", session.ID))
	return &session, nil
}

// ExerciseTypes returns the full exercise catalog, grouped by category.
func (r *Repo) ExerciseTypes(ctx context.Context) (_ []ExerciseType, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.exerciseTypes")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT id, name, category, calories_per_min
			FROM exercise_types
			ORDER BY category, name;`,
	)
	if err != nil {
		return nil, db.QueryError(err)
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, db.QueryError(err)
	}

	var exerciseTypes []ExerciseType
	for rows.Next() {
		var et ExerciseType
		if err := rows.Scan(&et.ID, &et.Name, &et.Category, &et.CaloriesPerMin); err != nil {
			return nil, db.QueryError(err)
		}
		exerciseTypes = append(exerciseTypes, et)
	}

	if exerciseTypes == nil {
		exerciseTypes = make([]ExerciseType, 0)
	}

	span.SetAttributes(attribute.Int("exercise_types.count", len(exerciseTypes)))
	return exerciseTypes, nil
}

func rows2sessions(rows pgx.Rows) ([]WorkoutSession, error) {
	var sessions []WorkoutSession
	for rows.Next() {
		var session WorkoutSession
		var intensity string
		var notes *string
		if err := rows.Scan(
			&session.ID, &session.UserID, &session.ExerciseTypeID,
			&session.ExerciseName, &session.Category,
			&session.DurationMin, &session.CaloriesBurned,
			&intensity, &session.SessionDate, &notes,
		); err != nil {
			return nil, err
		}

		session.Intensity = Intensity(intensity)
		if notes != nil {
			session.Notes = *notes
		}

		sessions = append(sessions, session)
	}

	if sessions == nil {
		sessions = make([]WorkoutSession, 0)
	}

	return sessions, nil
}
