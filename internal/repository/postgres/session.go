package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"ffbot/internal/domain"
)

// SessionRepo implements repository.SessionRepository on PostgreSQL
type SessionRepo struct {
	db *sql.DB
}

// NewSessionRepo creates a new session repository
func NewSessionRepo(db *sql.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// Get loads the user's session
func (r *SessionRepo) Get(ctx context.Context, userID int64) (*domain.Session, error) {
	var (
		state    string
		payload  []byte
		promptID int
	)
	query := `SELECT state, payload, prompt_id FROM dialog_sessions WHERE user_id = $1`
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&state, &payload, &promptID)

	if err == sql.ErrNoRows {
		// No dialog in progress
		return &domain.Session{}, nil
	}
	if err != nil {
		return nil, err
	}

	stage, err := domain.DecodeStage(domain.StateTag(state), payload)
	if err != nil {
		return nil, fmt.Errorf("session of user %d: %w", userID, err)
	}

	return &domain.Session{Stage: stage, PromptID: promptID}, nil
}

// Save upserts the user's session
func (r *SessionRepo) Save(ctx context.Context, userID int64, s *domain.Session) error {
	if s.Idle() {
		return r.Clear(ctx, userID)
	}

	tag, payload, err := domain.EncodeStage(s.Stage)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO dialog_sessions (user_id, state, payload, prompt_id, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (user_id)
		DO UPDATE SET state = EXCLUDED.state,
			payload = EXCLUDED.payload,
			prompt_id = EXCLUDED.prompt_id,
			updated_at = NOW()
	`
	_, err = r.db.ExecContext(ctx, query, userID, string(tag), payload, s.PromptID)
	return err
}

// Clear deletes the user's session
func (r *SessionRepo) Clear(ctx context.Context, userID int64) error {
	query := `DELETE FROM dialog_sessions WHERE user_id = $1`
	_, err := r.db.ExecContext(ctx, query, userID)
	return err
}

// CleanStale drops sessions untouched for longer than the given number of days
func (r *SessionRepo) CleanStale(ctx context.Context, days int) (int64, error) {
	query := `DELETE FROM dialog_sessions WHERE updated_at < NOW() - make_interval(days => $1)`
	res, err := r.db.ExecContext(ctx, query, days)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
