package goals

import (
	"context"
	"time"

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

// ListByUser returns all goals of a user. Goals are read-only in this
// service - they get provisioned together with the rest of the seed data.
func (r *Repo) ListByUser(ctx context.Context, userID int64) (_ []Goal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.goals.listByUser")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int64("user.id", userID))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, goal_type, target_value, current_value, target_date, status
			FROM goals
			WHERE user_id = $1
			ORDER BY id;`,
		userID,
	)
	if err != nil {
		return nil, db.QueryError(err)
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, db.QueryError(err)
	}

	goals, err := rows2goals(rows)
	if err != nil {
		return nil, db.QueryError(err)
	}

	span.SetAttributes(attribute.Int("goals.count", len(goals)))
	return goals, nil
}

func rows2goals(rows pgx.Rows) ([]Goal, error) {
	var goals []Goal
	for rows.Next() {
		var goal Goal
		var targetDate *time.Time
		var status string
		if err := rows.Scan(
			&goal.ID, &goal.UserID, &goal.GoalType,
			&goal.TargetValue, &goal.CurrentValue,
			&targetDate, &status,
		); err != nil {
			return nil, err
		}

		goal.TargetDate = targetDate
		goal.Status = GoalStatus(status)

		goals = append(goals, goal)
	}

	if goals == nil {
		goals = make([]Goal, 0)
	}

	return goals, nil
}
