package postgres

import (
	"GreenPay/internal/core/domain"
	"GreenPay/internal/core/ports"
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

type submissionRepository struct {
	db     *DB
	secSvc ports.SecurityPort // submitter_name is encrypted at rest
	log    zerolog.Logger
}

var _ ports.SubmissionRepository = (*submissionRepository)(nil)

// NewSubmissionRepository creates the Postgres-backed record store.
func NewSubmissionRepository(db *DB, secSvc ports.SecurityPort, baseLogger *zerolog.Logger) ports.SubmissionRepository {
	return &submissionRepository{
		db:     db,
		secSvc: secSvc,
		log:    baseLogger.With().Str("component", "submission_repo").Logger(),
	}
}

const submissionQueryCols = `
	id, submitter_id, submitter_name, species, latitude, longitude,
	status, created_at, decided_at
`

// Create encrypts the display name and inserts a pending row.
func (r *submissionRepository) Create(ctx context.Context, sub domain.NewSubmission) (*domain.Submission, error) {
	encName, err := r.secSvc.EncryptString(sub.SubmitterName)
	if err != nil {
		r.log.Error().Err(err).Int64("submitter_id", sub.SubmitterID).Msg("Failed to encrypt submitter name")
		return nil, domain.PersistenceError("encrypt submitter name", err)
	}

	query := `
		INSERT INTO submissions (submitter_id, submitter_name, species, latitude, longitude, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + submissionQueryCols

	row := r.db.pool.QueryRow(ctx, query,
		sub.SubmitterID,
		encName,
		sub.Species,
		sub.Latitude,
		sub.Longitude,
		domain.StatusPending,
	)
	created, err := r.scanSubmission(row)
	if err != nil {
		r.log.Error().Err(err).Int64("submitter_id", sub.SubmitterID).Msg("Failed to insert submission")
		return nil, domain.PersistenceError("create submission", err)
	}
	return created, nil
}

// GetByID returns domain.ErrNotFound for unknown ids.
func (r *submissionRepository) GetByID(ctx context.Context, id int64) (*domain.Submission, error) {
	query := `SELECT ` + submissionQueryCols + ` FROM submissions WHERE id = $1`

	sub, err := r.scanSubmission(r.db.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.log.Info().Int64("submission_id", id).Msg("Submission not found")
			return nil, domain.ErrNotFound
		}
		return nil, domain.PersistenceError("get submission", err)
	}
	return sub, nil
}

// SetStatus is a compare-and-set: the row changes only while it is still
// pending, so concurrent deciders cannot both win.
func (r *submissionRepository) SetStatus(ctx context.Context, id int64, status domain.SubmissionStatus) (*domain.Submission, error) {
	if !status.IsTerminal() {
		return nil, domain.ErrInvalidTransition
	}

	query := `
		UPDATE submissions
		SET status = $2, decided_at = now()
		WHERE id = $1 AND status = $3
		RETURNING ` + submissionQueryCols

	sub, err := r.scanSubmission(r.db.pool.QueryRow(ctx, query, id, status, domain.StatusPending))
	if err == nil {
		return sub, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		r.log.Error().Err(err).Int64("submission_id", id).Msg("Failed to update submission status")
		return nil, domain.PersistenceError("set submission status", err)
	}

	// Nothing matched: either the id is unknown or the row is already decided.
	var exists bool
	err = r.db.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM submissions WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return nil, domain.PersistenceError("check submission", err)
	}
	if !exists {
		return nil, domain.ErrNotFound
	}
	return nil, domain.ErrInvalidTransition
}

// ListByStatus returns the oldest submissions with the given status first.
func (r *submissionRepository) ListByStatus(ctx context.Context, status domain.SubmissionStatus, limit int) ([]*domain.Submission, error) {
	query := `SELECT ` + submissionQueryCols + ` FROM submissions
		WHERE status = $1 ORDER BY created_at, id LIMIT $2`
	return r.list(ctx, "list submissions by status", query, status, limit)
}

// ListBySubmitter returns one user's submissions, newest first.
func (r *submissionRepository) ListBySubmitter(ctx context.Context, submitterID int64, limit int) ([]*domain.Submission, error) {
	query := `SELECT ` + submissionQueryCols + ` FROM submissions
		WHERE submitter_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2`
	return r.list(ctx, "list submissions by submitter", query, submitterID, limit)
}

func (r *submissionRepository) list(ctx context.Context, op, query string, args ...any) ([]*domain.Submission, error) {
	rows, err := r.db.pool.Query(ctx, query, args...)
	if err != nil {
		r.log.Error().Err(err).Msg("Failed to " + op)
		return nil, domain.PersistenceError(op, err)
	}
	defer rows.Close()

	var subs []*domain.Submission
	for rows.Next() {
		sub, err := r.scanSubmission(rows)
		if err != nil {
			return nil, domain.PersistenceError(op, err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.PersistenceError(op, err)
	}
	return subs, nil
}

// scanSubmission scans one row and decrypts the display name.
func (r *submissionRepository) scanSubmission(row pgx.Row) (*domain.Submission, error) {
	var sub domain.Submission
	var encName string

	err := row.Scan(
		&sub.ID,
		&sub.SubmitterID,
		&encName,
		&sub.Species,
		&sub.Latitude,
		&sub.Longitude,
		&sub.Status,
		&sub.CreatedAt,
		&sub.DecidedAt,
	)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			r.log.Error().Err(err).Msg("Failed to scan submission row")
		}
		return nil, err
	}

	name, err := r.secSvc.DecryptString(encName)
	if err != nil {
		r.log.Error().Err(err).Int64("submission_id", sub.ID).Msg("Failed to decrypt submitter name (tampered?)")
		return nil, err
	}
	sub.SubmitterName = name
	return &sub, nil
}
