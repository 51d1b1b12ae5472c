package sharing

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"viktresan/internal/services"
)

// PostgresGrantRepo stores grants in profile_access. The composite primary
// key plus ON CONFLICT DO NOTHING gives the upsert law for free.
type PostgresGrantRepo struct {
	db *sqlx.DB
}

func NewPostgresGrantRepo(db *sqlx.DB) *PostgresGrantRepo {
	return &PostgresGrantRepo{db: db}
}

func (r *PostgresGrantRepo) Upsert(ctx context.Context, profileID, viewerID int) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO profile_access (profile_id, viewer_id) VALUES ($1, $2)
		ON CONFLICT (profile_id, viewer_id) DO NOTHING`, profileID, viewerID)
	return err
}

func (r *PostgresGrantRepo) Delete(ctx context.Context, profileID, viewerID int) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM profile_access WHERE profile_id=$1 AND viewer_id=$2`, profileID, viewerID)
	return err
}

func (r *PostgresGrantRepo) ViewerIDs(ctx context.Context, profileID int) ([]int, error) {
	var ids []int
	err := r.db.SelectContext(ctx, &ids, `
		SELECT viewer_id FROM profile_access WHERE profile_id=$1 ORDER BY created_at`, profileID)
	return ids, err
}

// PostgresAccountDirectory finds accounts by email through the blind index
// and decrypts stored emails for display. This keeps provider-admin style
// email lookups server-side only.
type PostgresAccountDirectory struct {
	db     *sqlx.DB
	encSvc *services.EncryptionService
}

func NewPostgresAccountDirectory(db *sqlx.DB, encSvc *services.EncryptionService) *PostgresAccountDirectory {
	return &PostgresAccountDirectory{db: db, encSvc: encSvc}
}

func (d *PostgresAccountDirectory) IDByEmail(ctx context.Context, email string) (int, error) {
	var id int
	err := d.db.GetContext(ctx, &id, `
		SELECT id FROM users WHERE email_blind_index=$1`, d.encSvc.EmailBlindIndex(email))
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (d *PostgresAccountDirectory) EmailByID(ctx context.Context, accountID int) (string, error) {
	var encrypted string
	err := d.db.GetContext(ctx, &encrypted, `SELECT email FROM users WHERE id=$1`, accountID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return d.encSvc.DecryptEmail(encrypted)
}

// PostgresProfileDirectory lists readable profiles with their latest weight.
type PostgresProfileDirectory struct {
	db *sqlx.DB
}

func NewPostgresProfileDirectory(db *sqlx.DB) *PostgresProfileDirectory {
	return &PostgresProfileDirectory{db: db}
}

func (d *PostgresProfileDirectory) VisibleTo(ctx context.Context, viewerID int) ([]VisibleProfile, error) {
	// UNION already removes duplicates; the service dedups again so the
	// in-memory directory used in tests does not have to.
	var rows []VisibleProfile
	err := d.db.SelectContext(ctx, &rows, `
		SELECT p.user_id, p.first_name, p.last_name, p.stars, w.weight AS latest_weight, w.entry_date AS latest_date
		FROM (
			SELECT user_id FROM profiles WHERE public = true
			UNION
			SELECT profile_id AS user_id FROM profile_access WHERE viewer_id = $1
		) v
		JOIN profiles p ON p.user_id = v.user_id
		LEFT JOIN LATERAL (
			SELECT weight, entry_date FROM weight_entries
			WHERE user_id = p.user_id
			ORDER BY entry_date DESC, id DESC
			LIMIT 1
		) w ON true
		ORDER BY p.stars DESC, p.first_name`, viewerID)
	return rows, err
}
