package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/roster"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/database"
)

type rosterRepository struct {
	db *database.DB
}

func NewRosterRepository(db *database.DB) roster.Provider {
	return &rosterRepository{db: db}
}

// ListActiveUsers implements roster.Provider.
func (r *rosterRepository) ListActiveUsers(ctx context.Context, orgID string) ([]roster.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, COALESCE(branch, ''), COALESCE(role, '')
		FROM users
		WHERE organization_id = $1
		  AND active = TRUE
		ORDER BY name
	`

	rows, err := q.Query(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", database.ClassifyError(err))
	}
	defer rows.Close()

	var users []roster.User
	for rows.Next() {
		var u roster.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Branch, &u.Role); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read users: %w", database.ClassifyError(err))
	}

	return users, nil
}

type targetRepository struct {
	db *database.DB
}

func NewTargetRepository(db *database.DB) roster.TargetProvider {
	return &targetRepository{db: db}
}

// GetUserTarget implements roster.TargetProvider. Users without an
// explicit target fall back to the 8-hour default.
func (r *targetRepository) GetUserTarget(ctx context.Context, userID string) (roster.Target, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT daily_target_hours
		FROM user_targets
		WHERE user_id = $1
	`

	var target roster.Target
	err := q.QueryRow(ctx, query, userID).Scan(&target.HoursWorked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return roster.Target{HoursWorked: roster.DefaultTargetHours}, nil
		}
		return roster.Target{}, fmt.Errorf("failed to get user target: %w", database.ClassifyError(err))
	}

	return target, nil
}
