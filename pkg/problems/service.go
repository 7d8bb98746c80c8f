package problems

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/gavel-oj/gavel/pkg/errs"
	"github.com/gavel-oj/gavel/pkg/permission"
)

const problemColumns = `uuid, id, name, permission_control, problem_set, own_user, submit_count, accepted_count, type, detail`

// PostgresService implements problem storage using PostgreSQL
type PostgresService struct {
	db *sql.DB
}

// NewPostgresService creates a new PostgresService
func NewPostgresService(db *sql.DB) *PostgresService {
	return &PostgresService{db: db}
}

func scanProblem(row *sql.Row) (*Problem, error) {
	problem := &Problem{}
	var pcJSON []byte
	var detail uuid.NullUUID
	err := row.Scan(
		&problem.UUID, &problem.ID, &problem.Name, &pcJSON,
		&problem.ProblemSet, &problem.OwnUser,
		&problem.SubmitCount, &problem.AcceptedCount, &problem.Type, &detail,
	)
	if err != nil {
		return nil, err
	}
	if detail.Valid {
		problem.Detail = detail.UUID
	}
	triple := &PermissionControlTriple{}
	if err := json.Unmarshal(pcJSON, triple); err != nil {
		return nil, fmt.Errorf("failed to unmarshal permission control: %w", err)
	}
	problem.PermissionControl = triple
	return problem, nil
}

// FindByUUID retrieves a problem by UUID
func (s *PostgresService) FindByUUID(ctx context.Context, id uuid.UUID) (*Problem, error) {
	query := `SELECT ` + problemColumns + ` FROM problems WHERE uuid = $1`
	problem, err := scanProblem(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errs.NewNotFound("Problem", errs.Match{"uuid": id.String()})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get problem: %w", err)
	}
	return problem, nil
}

// FindByProblemSetAndID retrieves a problem by its set and per-set ID
func (s *PostgresService) FindByProblemSetAndID(ctx context.Context, problemSet uuid.UUID, id int) (*Problem, error) {
	query := `SELECT ` + problemColumns + ` FROM problems WHERE problem_set = $1 AND id = $2`
	problem, err := scanProblem(s.db.QueryRowContext(ctx, query, problemSet, id))
	if err == sql.ErrNoRows {
		return nil, errs.NewNotFound("Problem", errs.Match{"problemSet": problemSet.String(), "id": id})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get problem: %w", err)
	}
	return problem, nil
}

// Create adds a problem to a set. The per-set ID is the set's incremented
// problemCount; assigning the ID and bumping the counter happen in one
// transaction so concurrent creates cannot collide.
func (s *PostgresService) Create(ctx context.Context, problemSet, ownUser uuid.UUID, name, problemType string) (*Problem, error) {
	if !IsValidName(name) {
		return nil, errs.NewInvalidInput("name", name)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	var problemCount int
	err = tx.QueryRowContext(ctx,
		`SELECT problem_count FROM problem_sets WHERE uuid = $1 FOR UPDATE`, problemSet,
	).Scan(&problemCount)
	if err == sql.ErrNoRows {
		return nil, errs.NewNotFound("ProblemSet", errs.Match{"uuid": problemSet.String()})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock problem set: %w", err)
	}

	closed := func() *permission.PermissionControl {
		return &permission.PermissionControl{UserUUIDs: []uuid.UUID{}, GroupUUIDs: []uuid.UUID{}}
	}
	problem := &Problem{
		ID:         problemCount + 1,
		Name:       name,
		ProblemSet: problemSet,
		OwnUser:    ownUser,
		Type:       problemType,
		PermissionControl: &PermissionControlTriple{
			View:   closed(),
			Submit: closed(),
			Modify: closed(),
		},
	}
	pcJSON, err := json.Marshal(problem.PermissionControl)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal permission control: %w", err)
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO problems (id, name, permission_control, problem_set, own_user, submit_count, accepted_count, type)
		VALUES ($1, $2, $3, $4, $5, 0, 0, $6)
		RETURNING uuid
	`, problem.ID, problem.Name, pcJSON, problem.ProblemSet, problem.OwnUser, problem.Type).Scan(&problem.UUID)
	if err != nil {
		return nil, fmt.Errorf("failed to create problem: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE problem_sets SET problem_count = $2 WHERE uuid = $1`,
		problemSet, problem.ID,
	); err != nil {
		return nil, fmt.Errorf("failed to update problem count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit create: %w", err)
	}
	return problem, nil
}

// UpdatePermissionControl normalizes the submitted view/submit/modify triple
// and persists it. As with problem sets, guests can never hold modify.
func (s *PostgresService) UpdatePermissionControl(ctx context.Context, problem *Problem, input *WireTriple, resolver permission.Resolver, maxUsers, maxGroups int) error {
	if input == nil || input.View == nil || input.Submit == nil || input.Modify == nil {
		return errs.NewInvalidInput("permissionControl", nil)
	}
	if input.Modify.GuestAllow {
		return errs.NewInvalidInput("modify.guestAllow", true)
	}

	view, err := permission.Normalize(ctx, input.View, resolver, maxUsers, maxGroups)
	if err != nil {
		return err
	}
	submit, err := permission.Normalize(ctx, input.Submit, resolver, maxUsers, maxGroups)
	if err != nil {
		return err
	}
	modify, err := permission.Normalize(ctx, input.Modify, resolver, maxUsers, maxGroups)
	if err != nil {
		return err
	}

	triple := &PermissionControlTriple{View: view, Submit: submit, Modify: modify}
	pcJSON, err := json.Marshal(triple)
	if err != nil {
		return fmt.Errorf("failed to marshal permission control: %w", err)
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE problems SET permission_control = $2 WHERE uuid = $1`,
		problem.UUID, pcJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to update permission control: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update: %w", err)
	}
	if rows == 0 {
		return errs.NewNotFound("Problem", errs.Match{"uuid": problem.UUID.String()})
	}

	problem.PermissionControl = triple
	return nil
}
