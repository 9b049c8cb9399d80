package users

import (
	"context"
	"errors"

	"github.com/2beens/fitstats/internal/db"
	"github.com/2beens/fitstats/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var ErrUserNotFound = errors.New("user not found")

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// List returns all users, ordered by username.
func (r *Repo) List(ctx context.Context) (_ []User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT id, username, email, age, height_cm FROM users ORDER BY username;`,
	)
	if err != nil {
		return nil, db.QueryError(err)
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, db.QueryError(err)
	}

	users, err := rows2users(rows)
	if err != nil {
		return nil, db.QueryError(err)
	}

	span.SetAttributes(attribute.Int("users.count", len(users)))
	return users, nil
}

func (r *Repo) Get(ctx context.Context, id int64) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int64("id", id))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, username, email, age, height_cm FROM users WHERE id = $1;`,
		id,
	)
	if err != nil {
		return nil, db.QueryError(err)
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, db.QueryError(err)
	}

	users, err := rows2users(rows)
	if err != nil {
		return nil, db.QueryError(err)
	}

	if len(users) != 1 {
		return nil, ErrUserNotFound
	}

	return &users[0], nil
}

func rows2users(rows pgx.Rows) ([]User, error) {
	var users []User
	for rows.Next() {
		var user User
		var age *int
		var heightCm *float64
		if err := rows.Scan(&user.ID, &user.Username, &user.Email, &age, &heightCm); err != nil {
			return nil, err
		}

		if age != nil {
			user.Age = *age
		}
		if heightCm != nil {
			user.HeightCm = *heightCm
		}

		users = append(users, user)
	}

	if users == nil {
		users = make([]User, 0)
	}

	return users, nil
}
