package weights

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

// History returns all weight records of a user, ordered ascending by
// recorded date. No records is not an error - an empty slice comes back.
func (r *Repo) History(ctx context.Context, userID int64) (_ []WeightRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.weights.history")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int64("user.id", userID))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, weight_kg, recorded_date, notes
			FROM weight_records
			WHERE user_id = $1
			ORDER BY recorded_date, id;`,
		userID,
	)
	if err != nil {
		return nil, db.QueryError(err)
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, db.QueryError(err)
	}

	records, err := rows2records(rows)
	if err != nil {
		return nil, db.QueryError(err)
	}

	span.SetAttributes(attribute.Int("records.count", len(records)))
	return records, nil
}

// Add stores a new weight record and returns it with the assigned ID.
func (r *Repo) Add(ctx context.Context, record WeightRecord) (_ *WeightRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.weights.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`INSERT INTO weight_records (user_id, weight_kg, recorded_date, notes)
			VALUES ($1, $2, $3, $4)
			RETURNING id;`,
		record.UserID, record.WeightKg, record.RecordedAt, record.Notes,
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

	var id int64
	if err := rows.Scan(&id); err != nil {
		return nil, db.WriteError(err)
	}

	span.SetAttributes(attribute.Int64("record.id", id))

	record.ID = id
	return &record, nil
}

func rows2records(rows pgx.Rows) ([]WeightRecord, error) {
	var records []WeightRecord
	for rows.Next() {
		var record WeightRecord
		var notes *string
		if err := rows.Scan(
			&record.ID, &record.UserID, &record.WeightKg,
			&record.RecordedAt, &notes,
		); err != nil {
			return nil, err
		}

		if notes != nil {
			record.Notes = *notes
		}

		records = append(records, record)
	}

	if records == nil {
		records = make([]WeightRecord, 0)
	}

	return records, nil
}
