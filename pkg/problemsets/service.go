package problemsets

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/gavel-oj/gavel/pkg/errs"
	"github.com/gavel-oj/gavel/pkg/permission"
)

const setColumns = `uuid, problem_count, name, url_name, permission_control, own_user`

// PostgresService implements problem set storage using PostgreSQL
type PostgresService struct {
	db *sql.DB
}

// NewPostgresService creates a new PostgresService
func NewPostgresService(db *sql.DB) *PostgresService {
	return &PostgresService{db: db}
}

func scanSet(row *sql.Row) (*ProblemSet, error) {
	set := &ProblemSet{}
	var name, urlName sql.NullString
	var pcJSON []byte
	var ownUser uuid.NullUUID
	err := row.Scan(&set.UUID, &set.ProblemCount, &name, &urlName, &pcJSON, &ownUser)
	if err != nil {
		return nil, err
	}
	if name.Valid {
		set.Name = name.String
	}
	if urlName.Valid {
		set.UrlName = urlName.String
	}
	if ownUser.Valid {
		set.OwnUser = ownUser.UUID
	}
	if pcJSON != nil {
		pair := &PermissionControlPair{}
		if err := json.Unmarshal(pcJSON, pair); err != nil {
			return nil, fmt.Errorf("failed to unmarshal permission control: %w", err)
		}
		set.PermissionControl = pair
	}
	return set, nil
}

// FindByUUID retrieves a problem set by UUID
func (s *PostgresService) FindByUUID(ctx context.Context, id uuid.UUID) (*ProblemSet, error) {
	query := `SELECT ` + setColumns + ` FROM problem_sets WHERE uuid = $1`
	set, err := scanSet(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errs.NewNotFound("ProblemSet", errs.Match{"uuid": id.String()})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get problem set: %w", err)
	}
	return set, nil
}

// FindByUrlName retrieves a global problem set by URL name
func (s *PostgresService) FindByUrlName(ctx context.Context, urlName string) (*ProblemSet, error) {
	query := `SELECT ` + setColumns + ` FROM problem_sets WHERE url_name = $1`
	set, err := scanSet(s.db.QueryRowContext(ctx, query, urlName))
	if err == sql.ErrNoRows {
		return nil, errs.NewNotFound("ProblemSet", errs.Match{"urlName": urlName})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get problem set: %w", err)
	}
	return set, nil
}

// FindByOwnUser retrieves a user's private problem set
func (s *PostgresService) FindByOwnUser(ctx context.Context, ownUser uuid.UUID) (*ProblemSet, error) {
	query := `SELECT ` + setColumns + ` FROM problem_sets WHERE own_user = $1`
	set, err := scanSet(s.db.QueryRowContext(ctx, query, ownUser))
	if err == sql.ErrNoRows {
		return nil, errs.NewNotFound("ProblemSet", errs.Match{"ownUser": ownUser.String()})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get problem set: %w", err)
	}
	return set, nil
}

// CreateGlobal creates a global problem set with a unique URL name. Both
// permission controls start fully closed (allow-list polarity, no guests,
// empty sets).
func (s *PostgresService) CreateGlobal(ctx context.Context, name, urlName string) (*ProblemSet, error) {
	if !IsValidName(name) {
		return nil, errs.NewInvalidInput("name", name)
	}
	if !IsValidUrlName(urlName) {
		return nil, errs.NewInvalidInput("urlName", urlName)
	}

	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM problem_sets WHERE url_name = $1)`, urlName,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check url name: %w", err)
	}
	if exists {
		return nil, errs.NewDuplicate("ProblemSet", errs.Match{"urlName": urlName})
	}

	set := &ProblemSet{
		Name:    name,
		UrlName: urlName,
		PermissionControl: &PermissionControlPair{
			List:   &permission.PermissionControl{UserUUIDs: []uuid.UUID{}, GroupUUIDs: []uuid.UUID{}},
			Modify: &permission.PermissionControl{UserUUIDs: []uuid.UUID{}, GroupUUIDs: []uuid.UUID{}},
		},
	}
	pcJSON, err := json.Marshal(set.PermissionControl)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal permission control: %w", err)
	}

	query := `
		INSERT INTO problem_sets (problem_count, name, url_name, permission_control)
		VALUES (0, $1, $2, $3)
		RETURNING uuid
	`
	if err := s.db.QueryRowContext(ctx, query, name, urlName, pcJSON).Scan(&set.UUID); err != nil {
		return nil, fmt.Errorf("failed to create problem set: %w", err)
	}
	return set, nil
}

// CreatePrivate creates the owner-only set for a user. Each user has at most
// one; creating a second is a duplicate.
func (s *PostgresService) CreatePrivate(ctx context.Context, ownUser uuid.UUID) (*ProblemSet, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM problem_sets WHERE own_user = $1)`, ownUser,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check owner: %w", err)
	}
	if exists {
		return nil, errs.NewDuplicate("ProblemSet", errs.Match{"ownUser": ownUser.String()})
	}

	set := &ProblemSet{OwnUser: ownUser}
	query := `
		INSERT INTO problem_sets (problem_count, own_user)
		VALUES (0, $1)
		RETURNING uuid
	`
	if err := s.db.QueryRowContext(ctx, query, ownUser).Scan(&set.UUID); err != nil {
		return nil, fmt.Errorf("failed to create private problem set: %w", err)
	}
	return set, nil
}

// Delete removes a global, empty problem set. Private sets and sets that
// still contain problems cannot be deleted.
func (s *PostgresService) Delete(ctx context.Context, set *ProblemSet) error {
	if set.IsPrivate() {
		return errs.NewInvalidInput("uuid", set.UUID.String())
	}
	if set.ProblemCount > 0 {
		return errs.NewInvalidInput("problemCount", set.ProblemCount)
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM problem_sets WHERE uuid = $1`, set.UUID)
	if err != nil {
		return fmt.Errorf("failed to delete problem set: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete: %w", err)
	}
	if rows == 0 {
		return errs.NewNotFound("ProblemSet", errs.Match{"uuid": set.UUID.String()})
	}
	return nil
}

// UpdatePermissionControl normalizes the submitted list/modify pair and
// persists it. Guests can never hold modify; a modify.guestAllow request is
// rejected before anything is normalized or written.
func (s *PostgresService) UpdatePermissionControl(ctx context.Context, set *ProblemSet, input *WirePair, resolver permission.Resolver, maxUsers, maxGroups int) error {
	if set.IsPrivate() {
		return errs.NewInvalidInput("uuid", set.UUID.String())
	}
	if input == nil || input.List == nil || input.Modify == nil {
		return errs.NewInvalidInput("permissionControl", nil)
	}
	if input.Modify.GuestAllow {
		return errs.NewInvalidInput("modify.guestAllow", true)
	}

	list, err := permission.Normalize(ctx, input.List, resolver, maxUsers, maxGroups)
	if err != nil {
		return err
	}
	modify, err := permission.Normalize(ctx, input.Modify, resolver, maxUsers, maxGroups)
	if err != nil {
		return err
	}

	pair := &PermissionControlPair{List: list, Modify: modify}
	pcJSON, err := json.Marshal(pair)
	if err != nil {
		return fmt.Errorf("failed to marshal permission control: %w", err)
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE problem_sets SET permission_control = $2 WHERE uuid = $1`,
		set.UUID, pcJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to update permission control: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update: %w", err)
	}
	if rows == 0 {
		return errs.NewNotFound("ProblemSet", errs.Match{"uuid": set.UUID.String()})
	}

	set.PermissionControl = pair
	return nil
}
