package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/weixin008/dutyroster/pkg/core/model"
	"github.com/weixin008/dutyroster/pkg/db"
)

const personColumns = `id, name, level, status, status_start, status_end, is_long_term, tags, department_id, position`

// GetPersons retrieves all personnel records
func (d *DB) GetPersons(ctx context.Context) ([]*model.Person, error) {
	rows, err := d.pool.Query(ctx, `SELECT `+personColumns+` FROM person`)
	if err != nil {
		return nil, fmt.Errorf("failed to query persons: %w", err)
	}
	defer rows.Close()

	var persons []*model.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		persons = append(persons, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating persons: %w", err)
	}

	return persons, nil
}

// GetPerson retrieves one person by id
func (d *DB) GetPerson(ctx context.Context, id string) (*model.Person, error) {
	rows, err := d.pool.Query(ctx, `SELECT `+personColumns+` FROM person WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query person: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("error reading person: %w", err)
		}
		return nil, db.ErrNotFound
	}
	return scanPerson(rows)
}

func scanPerson(rows pgx.Rows) (*model.Person, error) {
	var p model.Person
	if err := rows.Scan(&p.ID, &p.Name, &p.Level, &p.Status, &p.StatusStart, &p.StatusEnd,
		&p.IsLongTerm, &p.Tags, &p.DepartmentID, &p.Position); err != nil {
		return nil, fmt.Errorf("failed to scan person: %w", err)
	}
	return &p, nil
}

const groupColumns = `id, name, kind, member_ids, applicable_roles, rotation_order`

// GetGroups retrieves all duty-group records
func (d *DB) GetGroups(ctx context.Context) ([]*model.Group, error) {
	rows, err := d.pool.Query(ctx, `SELECT `+groupColumns+` FROM duty_group`)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups: %w", err)
	}
	defer rows.Close()

	var groups []*model.Group
	for rows.Next() {
		var g model.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.Kind, &g.MemberIDs, &g.ApplicableRoles, &g.RotationOrder); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, &g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating groups: %w", err)
	}

	return groups, nil
}

// GetGroup retrieves one duty group by id
func (d *DB) GetGroup(ctx context.Context, id string) (*model.Group, error) {
	var g model.Group
	err := d.pool.QueryRow(ctx, `SELECT `+groupColumns+` FROM duty_group WHERE id = $1`, id).
		Scan(&g.ID, &g.Name, &g.Kind, &g.MemberIDs, &g.ApplicableRoles, &g.RotationOrder)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, db.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query group: %w", err)
	}
	return &g, nil
}
