package tracker

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"viktresan/internal/models"
)

// PostgresWeightRepo stores weight entries in the weight_entries table.
type PostgresWeightRepo struct {
	db *sqlx.DB
}

func NewPostgresWeightRepo(db *sqlx.DB) *PostgresWeightRepo {
	return &PostgresWeightRepo{db: db}
}

func (r *PostgresWeightRepo) Insert(ctx context.Context, userID int, weight float64, date time.Time, public bool) (models.WeightEntry, error) {
	var entry models.WeightEntry
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO weight_entries (user_id, weight, entry_date, public)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, weight, entry_date, public, created_at`,
		userID, weight, date, public).StructScan(&entry)
	return entry, err
}

func (r *PostgresWeightRepo) PriorTo(ctx context.Context, userID int, date time.Time) (*models.WeightEntry, error) {
	var entry models.WeightEntry
	err := r.db.GetContext(ctx, &entry, `
		SELECT id, user_id, weight, entry_date, public, created_at
		FROM weight_entries
		WHERE user_id=$1 AND entry_date < $2
		ORDER BY entry_date DESC, id DESC
		LIMIT 1`, userID, date)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *PostgresWeightRepo) Latest(ctx context.Context, userID int) (*models.WeightEntry, error) {
	var entry models.WeightEntry
	err := r.db.GetContext(ctx, &entry, `
		SELECT id, user_id, weight, entry_date, public, created_at
		FROM weight_entries
		WHERE user_id=$1
		ORDER BY entry_date DESC, id DESC
		LIMIT 1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *PostgresWeightRepo) List(ctx context.Context, userID int) ([]models.WeightEntry, error) {
	var entries []models.WeightEntry
	err := r.db.SelectContext(ctx, &entries, `
		SELECT id, user_id, weight, entry_date, public, created_at
		FROM weight_entries
		WHERE user_id=$1
		ORDER BY entry_date DESC, id DESC`, userID)
	return entries, err
}

func (r *PostgresWeightRepo) Delete(ctx context.Context, userID, entryID int) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM weight_entries WHERE user_id=$1 AND id=$2`, userID, entryID)
	if err != nil {
		return false, err
	}
	rows, _ := res.RowsAffected()
	return rows > 0, nil
}

// PostgresProfileRepo reads and conditionally updates the profiles table.
type PostgresProfileRepo struct {
	db *sqlx.DB
}

func NewPostgresProfileRepo(db *sqlx.DB) *PostgresProfileRepo {
	return &PostgresProfileRepo{db: db}
}

func (r *PostgresProfileRepo) Get(ctx context.Context, userID int) (*models.Profile, error) {
	var p models.Profile
	err := r.db.GetContext(ctx, &p, `
		SELECT user_id, first_name, last_name, start_weight, goal_weight, stars, public, created_at, updated_at
		FROM profiles WHERE user_id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PostgresProfileRepo) RaiseStars(ctx context.Context, userID, stars int) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE profiles SET stars=$2, updated_at=NOW()
		WHERE user_id=$1 AND stars < $2`, userID, stars)
	if err != nil {
		return false, err
	}
	rows, _ := res.RowsAffected()
	return rows > 0, nil
}
