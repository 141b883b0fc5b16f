package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/weixin008/dutyroster/pkg/core/model"
	"github.com/weixin008/dutyroster/pkg/db"
)

const roleColumns = `id, name, by_position, by_tags, by_department, kind, required, rotation_order, rotation_mode`

// GetRoles retrieves all duty-role records
func (d *DB) GetRoles(ctx context.Context) ([]*model.Role, error) {
	rows, err := d.pool.Query(ctx, `SELECT `+roleColumns+` FROM duty_role`)
	if err != nil {
		return nil, fmt.Errorf("failed to query roles: %w", err)
	}
	defer rows.Close()

	var roles []*model.Role
	for rows.Next() {
		var r model.Role
		if err := rows.Scan(&r.ID, &r.Name, &r.ByPosition, &r.ByTags, &r.ByDepartment,
			&r.Kind, &r.Required, &r.RotationOrder, &r.RotationMode); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating roles: %w", err)
	}

	return roles, nil
}

// GetRole retrieves one duty role by id
func (d *DB) GetRole(ctx context.Context, id string) (*model.Role, error) {
	var r model.Role
	err := d.pool.QueryRow(ctx, `SELECT `+roleColumns+` FROM duty_role WHERE id = $1`, id).
		Scan(&r.ID, &r.Name, &r.ByPosition, &r.ByTags, &r.ByDepartment,
			&r.Kind, &r.Required, &r.RotationOrder, &r.RotationMode)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, db.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query role: %w", err)
	}
	return &r, nil
}

// GetShifts retrieves all shift definitions
func (d *DB) GetShifts(ctx context.Context) ([]*model.Shift, error) {
	rows, err := d.pool.Query(ctx, `SELECT id, name, start_time, end_time FROM shift`)
	if err != nil {
		return nil, fmt.Errorf("failed to query shifts: %w", err)
	}
	defer rows.Close()

	var shifts []*model.Shift
	for rows.Next() {
		var s model.Shift
		if err := rows.Scan(&s.ID, &s.Name, &s.StartTime, &s.EndTime); err != nil {
			return nil, fmt.Errorf("failed to scan shift: %w", err)
		}
		shifts = append(shifts, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shifts: %w", err)
	}

	return shifts, nil
}

// GetShift retrieves one shift by id
func (d *DB) GetShift(ctx context.Context, id string) (*model.Shift, error) {
	var s model.Shift
	err := d.pool.QueryRow(ctx, `SELECT id, name, start_time, end_time FROM shift WHERE id = $1`, id).
		Scan(&s.ID, &s.Name, &s.StartTime, &s.EndTime)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, db.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query shift: %w", err)
	}
	return &s, nil
}

const ruleColumns = `id, name, period, work_days, shift_ids, role_ids, rotation_mode, cycle_length,
	max_consecutive_days, min_rest_hours, max_weekly_hours, forbidden_role_combos, org_type`

// GetRules retrieves all generation rules
func (d *DB) GetRules(ctx context.Context) ([]*model.Rule, error) {
	rows, err := d.pool.Query(ctx, `SELECT `+ruleColumns+` FROM generation_rule`)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}
	defer rows.Close()

	var rules []*model.Rule
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rules: %w", err)
	}

	return rules, nil
}

// GetRule retrieves one generation rule by id
func (d *DB) GetRule(ctx context.Context, id string) (*model.Rule, error) {
	rows, err := d.pool.Query(ctx, `SELECT `+ruleColumns+` FROM generation_rule WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query rule: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("error reading rule: %w", err)
		}
		return nil, db.ErrNotFound
	}
	return scanRule(rows)
}

func scanRule(rows pgx.Rows) (*model.Rule, error) {
	var r model.Rule
	var workDays []int32
	var combos []byte
	if err := rows.Scan(&r.ID, &r.Name, &r.Period, &workDays, &r.ShiftIDs, &r.RoleIDs,
		&r.Mode, &r.CycleLength, &r.Constraints.MaxConsecutiveDays, &r.Constraints.MinRestHours,
		&r.Constraints.MaxWeeklyHours, &combos, &r.OrgType); err != nil {
		return nil, fmt.Errorf("failed to scan rule: %w", err)
	}

	for _, d := range workDays {
		r.WorkDays = append(r.WorkDays, time.Weekday(d))
	}
	if len(combos) > 0 {
		if err := json.Unmarshal(combos, &r.Constraints.ForbiddenRoleCombos); err != nil {
			return nil, fmt.Errorf("failed to decode forbidden role combos: %w", err)
		}
	}

	return &r, nil
}
