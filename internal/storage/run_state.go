package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// RunState is what survives between runs for one reference profile.
// Zero age bounds mean they were never set.
type RunState struct {
	ReferenceID int64 `db:"reference_id"`
	AgeFrom     int   `db:"desired_age_from"`
	AgeTo       int   `db:"desired_age_to"`
	Offset      int   `db:"current_offset"`
}

// InitRunState creates the state row for the reference unless it already exists.
func (s *Storage) InitRunState(ctx context.Context, referenceID int64, startOffset int) error {
	query := `
		INSERT INTO run_state (reference_id, desired_age_from, desired_age_to, current_offset)
		VALUES ($1, 0, 0, $2)
		ON CONFLICT (reference_id) DO NOTHING
	`
	if _, err := s.db.ExecContext(ctx, query, referenceID, startOffset); err != nil {
		return fmt.Errorf("init run state: %w", err)
	}

	return nil
}

func (s *Storage) RunState(ctx context.Context, referenceID int64) (*RunState, error) {
	var state RunState
	query := `
		SELECT reference_id, desired_age_from, desired_age_to, current_offset
		FROM run_state
		WHERE reference_id = $1
	`
	if err := s.db.GetContext(ctx, &state, query, referenceID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRunStateNotFound
		}
		return nil, fmt.Errorf("get run state: %w", err)
	}

	return &state, nil
}

func (s *Storage) SaveRunState(ctx context.Context, state *RunState) error {
	query := `
		UPDATE run_state
		SET desired_age_from = :desired_age_from,
			desired_age_to = :desired_age_to,
			current_offset = :current_offset
		WHERE reference_id = :reference_id
	`
	result, err := s.db.NamedExecContext(ctx, query, state)
	if err != nil {
		return fmt.Errorf("save run state: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrRunStateNotFound
	}

	s.logger.Debug("run state saved",
		zap.Int64("reference_id", state.ReferenceID),
		zap.Int("offset", state.Offset),
	)

	return nil
}
