package groups

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/gavel-oj/gavel/pkg/errs"
)

// PostgresService implements group storage and the membership ledger using
// PostgreSQL
type PostgresService struct {
	db *sql.DB
}

// NewPostgresService creates a new PostgresService
func NewPostgresService(db *sql.DB) *PostgresService {
	return &PostgresService{db: db}
}

// FindByUUID retrieves a group by UUID
func (s *PostgresService) FindByUUID(ctx context.Context, id uuid.UUID) (*Group, error) {
	query := `SELECT uuid, name, member_count FROM user_groups WHERE uuid = $1`
	group := &Group{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(&group.UUID, &group.Name, &group.MemberCount)
	if err == sql.ErrNoRows {
		return nil, errs.NewNotFound("UserGroup", errs.Match{"uuid": id.String()})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return group, nil
}

// FindByName retrieves a group by name
func (s *PostgresService) FindByName(ctx context.Context, name string) (*Group, error) {
	query := `SELECT uuid, name, member_count FROM user_groups WHERE name = $1`
	group := &Group{}
	err := s.db.QueryRowContext(ctx, query, name).Scan(&group.UUID, &group.Name, &group.MemberCount)
	if err == sql.ErrNoRows {
		return nil, errs.NewNotFound("UserGroup", errs.Match{"name": name})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return group, nil
}

// CreateGroup creates a new, empty group. Names are unique.
func (s *PostgresService) CreateGroup(ctx context.Context, name string) (*Group, error) {
	if !IsValidName(name) {
		return nil, errs.NewInvalidInput("name", name)
	}

	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM user_groups WHERE name = $1)`, name,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check group name: %w", err)
	}
	if exists {
		return nil, errs.NewDuplicate("UserGroup", errs.Match{"name": name})
	}

	group := &Group{Name: name}
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO user_groups (name, member_count) VALUES ($1, 0) RETURNING uuid`,
		name,
	).Scan(&group.UUID)
	if err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}
	return group, nil
}

// Join adds the user to the group. It inserts the ledger row, appends the
// group to the user's cache and bumps the member count in one transaction.
// Returns false when the user was already a member.
func (s *PostgresService) Join(ctx context.Context, userUUID, groupUUID uuid.UUID) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	cached, err := lockUserGroups(ctx, tx, userUUID)
	if err != nil {
		return false, err
	}
	if err := lockGroup(ctx, tx, groupUUID); err != nil {
		return false, err
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO user_group_members (user_id, group_id)
		VALUES ($1, $2)
		ON CONFLICT (group_id, user_id) DO NOTHING
	`, userUUID, groupUUID)
	if err != nil {
		return false, fmt.Errorf("failed to insert membership: %w", err)
	}
	inserted, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check membership insert: %w", err)
	}
	if inserted == 0 {
		return false, nil
	}

	cached = append(cached, groupUUID)
	if err := writeUserGroups(ctx, tx, userUUID, cached); err != nil {
		return false, err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE user_groups SET member_count = member_count + 1 WHERE uuid = $1`,
		groupUUID,
	); err != nil {
		return false, fmt.Errorf("failed to update member count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit join: %w", err)
	}
	return true, nil
}

// Leave removes the user from the group, reversing everything Join did.
// Returns false when the user was not a member.
func (s *PostgresService) Leave(ctx context.Context, userUUID, groupUUID uuid.UUID) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	cached, err := lockUserGroups(ctx, tx, userUUID)
	if err != nil {
		return false, err
	}
	if err := lockGroup(ctx, tx, groupUUID); err != nil {
		return false, err
	}

	result, err := tx.ExecContext(ctx,
		`DELETE FROM user_group_members WHERE user_id = $1 AND group_id = $2`,
		userUUID, groupUUID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete membership: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check membership delete: %w", err)
	}
	if deleted == 0 {
		return false, nil
	}

	kept := cached[:0]
	for _, g := range cached {
		if g != groupUUID {
			kept = append(kept, g)
		}
	}
	if err := writeUserGroups(ctx, tx, userUUID, kept); err != nil {
		return false, err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE user_groups SET member_count = member_count - 1 WHERE uuid = $1`,
		groupUUID,
	); err != nil {
		return false, fmt.Errorf("failed to update member count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit leave: %w", err)
	}
	return true, nil
}

// DeleteGroup removes the group, its ledger rows, and its UUID from every
// member's cache, all in one transaction. Permission controls elsewhere may
// still reference the UUID; a vanished group simply never matches.
func (s *PostgresService) DeleteGroup(ctx context.Context, groupUUID uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if err := lockGroup(ctx, tx, groupUUID); err != nil {
		return err
	}

	// JSONB '-' removes the string element from each member's cache
	if _, err := tx.ExecContext(ctx, `
		UPDATE users
		SET groups = groups - $2::text
		WHERE uuid IN (SELECT user_id FROM user_group_members WHERE group_id = $1)
	`, groupUUID, groupUUID.String()); err != nil {
		return fmt.Errorf("failed to clean member caches: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM user_group_members WHERE group_id = $1`, groupUUID,
	); err != nil {
		return fmt.Errorf("failed to delete memberships: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM user_groups WHERE uuid = $1`, groupUUID,
	); err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}
	return nil
}

// ResolveGroup resolves a raw identifier (UUID string or group name) to a
// group UUID for permission-control normalization. A malformed or unknown
// identifier resolves to found=false rather than an error.
func (s *PostgresService) ResolveGroup(ctx context.Context, id string) (uuid.UUID, bool, error) {
	var row *sql.Row
	if parsed, err := uuid.Parse(id); err == nil {
		row = s.db.QueryRowContext(ctx, `SELECT uuid FROM user_groups WHERE uuid = $1`, parsed)
	} else {
		row = s.db.QueryRowContext(ctx, `SELECT uuid FROM user_groups WHERE name = $1`, id)
	}

	var out uuid.UUID
	err := row.Scan(&out)
	if err == sql.ErrNoRows {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("failed to resolve group: %w", err)
	}
	return out, true, nil
}

// lockUserGroups locks the user row and returns its cached group list
func lockUserGroups(ctx context.Context, tx *sql.Tx, userUUID uuid.UUID) ([]uuid.UUID, error) {
	var groupsJSON []byte
	err := tx.QueryRowContext(ctx,
		`SELECT groups FROM users WHERE uuid = $1 FOR UPDATE`, userUUID,
	).Scan(&groupsJSON)
	if err == sql.ErrNoRows {
		return nil, errs.NewNotFound("User", errs.Match{"uuid": userUUID.String()})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock user: %w", err)
	}

	var cached []uuid.UUID
	if err := json.Unmarshal(groupsJSON, &cached); err != nil {
		return nil, fmt.Errorf("failed to unmarshal groups cache: %w", err)
	}
	return cached, nil
}

// lockGroup locks the group row for the duration of the transaction
func lockGroup(ctx context.Context, tx *sql.Tx, groupUUID uuid.UUID) error {
	var one int
	err := tx.QueryRowContext(ctx,
		`SELECT 1 FROM user_groups WHERE uuid = $1 FOR UPDATE`, groupUUID,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return errs.NewNotFound("UserGroup", errs.Match{"uuid": groupUUID.String()})
	}
	if err != nil {
		return fmt.Errorf("failed to lock group: %w", err)
	}
	return nil
}

// writeUserGroups stores the cache list back on the user row
func writeUserGroups(ctx context.Context, tx *sql.Tx, userUUID uuid.UUID, cached []uuid.UUID) error {
	groupsJSON, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("failed to marshal groups cache: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET groups = $2 WHERE uuid = $1`, userUUID, groupsJSON,
	); err != nil {
		return fmt.Errorf("failed to update groups cache: %w", err)
	}
	return nil
}
