package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/weixin008/dutyroster/pkg/core/calendar"
	"github.com/weixin008/dutyroster/pkg/core/model"
)

// GetAssignmentsByRange retrieves assignments with duty dates in [from, to]
func (d *DB) GetAssignmentsByRange(ctx context.Context, from, to time.Time) ([]*model.Assignment, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, duty_date, shift_id, role_id, assignee_kind, assignee_id, status, note
		FROM assignment
		WHERE duty_date >= $1 AND duty_date <= $2
		ORDER BY duty_date
	`, calendar.Midnight(from), calendar.Midnight(to))
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	defer rows.Close()

	var assignments []*model.Assignment
	for rows.Next() {
		var a model.Assignment
		var kind, assigneeID *string
		if err := rows.Scan(&a.ID, &a.Date, &a.ShiftID, &a.RoleID, &kind, &assigneeID, &a.Status, &a.Note); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		if kind != nil && assigneeID != nil {
			a.Assignee = model.Assignee{Kind: model.AssigneeKind(*kind), ID: *assigneeID}
		}
		a.Date = calendar.Midnight(a.Date)
		assignments = append(assignments, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assignments: %w", err)
	}

	return assignments, nil
}

// InsertAssignments writes assignment records in one transaction
func (d *DB) InsertAssignments(ctx context.Context, assignments []*model.Assignment) error {
	if len(assignments) == 0 {
		return nil
	}

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, a := range assignments {
		var kind, assigneeID *string
		if !a.Assignee.IsZero() {
			k := string(a.Assignee.Kind)
			kind = &k
			assigneeID = &a.Assignee.ID
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO assignment (id, duty_date, shift_id, role_id, assignee_kind, assignee_id, status, note)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, a.ID, calendar.Midnight(a.Date), a.ShiftID, a.RoleID, kind, assigneeID, a.Status, a.Note)
		if err != nil {
			return fmt.Errorf("failed to insert assignment: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// DeleteAssignmentsByRange removes assignments with duty dates in [from, to]
func (d *DB) DeleteAssignmentsByRange(ctx context.Context, from, to time.Time) error {
	_, err := d.pool.Exec(ctx, `
		DELETE FROM assignment WHERE duty_date >= $1 AND duty_date <= $2
	`, calendar.Midnight(from), calendar.Midnight(to))
	if err != nil {
		return fmt.Errorf("failed to delete assignments: %w", err)
	}
	return nil
}
