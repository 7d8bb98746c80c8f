package users

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/gavel-oj/gavel/pkg/errs"
)

const userColumns = `uuid, user_name, email, description, password_hash, is_admin, register_ip, register_time, privileges, groups`

// PostgresService implements user storage using PostgreSQL
type PostgresService struct {
	db *sql.DB
}

// NewPostgresService creates a new PostgresService
func NewPostgresService(db *sql.DB) *PostgresService {
	return &PostgresService{db: db}
}

func scanUser(row *sql.Row) (*User, error) {
	user := &User{}
	var registerIP sql.NullString
	var privilegesJSON, groupsJSON []byte
	err := row.Scan(
		&user.UUID, &user.UserName, &user.Email, &user.Description,
		&user.PasswordHash, &user.IsAdmin, &registerIP, &user.RegisterTime,
		&privilegesJSON, &groupsJSON,
	)
	if err != nil {
		return nil, err
	}
	if registerIP.Valid {
		user.RegisterIP = registerIP.String
	}
	if err := json.Unmarshal(privilegesJSON, &user.Privileges); err != nil {
		return nil, fmt.Errorf("failed to unmarshal privileges: %w", err)
	}
	if err := json.Unmarshal(groupsJSON, &user.Groups); err != nil {
		return nil, fmt.Errorf("failed to unmarshal groups: %w", err)
	}
	return user, nil
}

// FindByUUID retrieves a user by UUID
func (s *PostgresService) FindByUUID(ctx context.Context, id uuid.UUID) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE uuid = $1`
	user, err := scanUser(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errs.NewNotFound("User", errs.Match{"uuid": id.String()})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// FindByUserName retrieves a user by user name
func (s *PostgresService) FindByUserName(ctx context.Context, userName string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_name = $1`
	user, err := scanUser(s.db.QueryRowContext(ctx, query, userName))
	if err == sql.ErrNoRows {
		return nil, errs.NewNotFound("User", errs.Match{"userName": userName})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// FindByEmail retrieves a user by email
func (s *PostgresService) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(s.db.QueryRowContext(ctx, query, email))
	if err == sql.ErrNoRows {
		return nil, errs.NewNotFound("User", errs.Match{"email": email})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// Register creates a new user account. User names and emails must be unique;
// the UNIQUE constraints back up the pre-checks under concurrency.
func (s *PostgresService) Register(ctx context.Context, userName, email, password, registerIP string) (*User, error) {
	if !IsValidUserName(userName) {
		return nil, errs.NewInvalidInput("userName", userName)
	}
	if !IsValidEmail(email) {
		return nil, errs.NewInvalidInput("email", email)
	}
	if password == "" {
		return nil, errs.NewInvalidInput("password", "")
	}

	if err := s.checkAvailable(ctx, userName, email); err != nil {
		return nil, err
	}

	user := &User{
		UserName:     userName,
		Email:        email,
		RegisterIP:   registerIP,
		RegisterTime: time.Now(),
		Privileges:   []Privilege{},
		Groups:       []uuid.UUID{},
	}
	if err := user.SetPassword(password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	query := `
		INSERT INTO users (user_name, email, description, password_hash, is_admin, register_ip, register_time, privileges, groups)
		VALUES ($1, $2, '', $3, FALSE, $4, $5, '[]', '[]')
		RETURNING uuid
	`
	err := s.db.QueryRowContext(ctx, query,
		user.UserName, user.Email, user.PasswordHash, user.RegisterIP, user.RegisterTime,
	).Scan(&user.UUID)
	if err != nil {
		if dup := duplicateMatch(err, userName, email); dup != nil {
			return nil, dup
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// checkAvailable reports a duplicate error when the user name or email is
// already taken
func (s *PostgresService) checkAvailable(ctx context.Context, userName, email string) error {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE user_name = $1)`, userName,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check user name: %w", err)
	}
	if exists {
		return errs.NewDuplicate("User", errs.Match{"userName": userName})
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return errs.NewDuplicate("User", errs.Match{"email": email})
	}
	return nil
}

// duplicateMatch maps a unique-violation error to the wire-level duplicate
// error naming the conflicting field.
func duplicateMatch(err error, userName, email string) error {
	pqErr, ok := err.(*pq.Error)
	if !ok || pqErr.Code != "23505" {
		return nil
	}
	switch pqErr.Constraint {
	case "users_email_key":
		return errs.NewDuplicate("User", errs.Match{"email": email})
	default:
		return errs.NewDuplicate("User", errs.Match{"userName": userName})
	}
}

// Save persists mutable user fields (description, admin flag, privileges).
// The groups cache is written by the membership ledger, not here.
func (s *PostgresService) Save(ctx context.Context, user *User) error {
	privilegesJSON, err := json.Marshal(user.Privileges)
	if err != nil {
		return fmt.Errorf("failed to marshal privileges: %w", err)
	}

	query := `
		UPDATE users
		SET email = $2, description = $3, password_hash = $4, is_admin = $5, privileges = $6
		WHERE uuid = $1
	`
	result, err := s.db.ExecContext(ctx, query,
		user.UUID, user.Email, user.Description, user.PasswordHash, user.IsAdmin, privilegesJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update: %w", err)
	}
	if rows == 0 {
		return errs.NewNotFound("User", errs.Match{"uuid": user.UUID.String()})
	}
	return nil
}

// ResolveUser resolves a raw identifier (UUID string or user name) to a user
// UUID for permission-control normalization. A malformed or unknown
// identifier resolves to found=false rather than an error.
func (s *PostgresService) ResolveUser(ctx context.Context, id string) (uuid.UUID, bool, error) {
	var query string
	if parsed, err := uuid.Parse(id); err == nil {
		query = `SELECT uuid FROM users WHERE uuid = $1`
		var out uuid.UUID
		err := s.db.QueryRowContext(ctx, query, parsed).Scan(&out)
		if err == sql.ErrNoRows {
			return uuid.Nil, false, nil
		}
		if err != nil {
			return uuid.Nil, false, fmt.Errorf("failed to resolve user: %w", err)
		}
		return out, true, nil
	}

	query = `SELECT uuid FROM users WHERE user_name = $1`
	var out uuid.UUID
	err := s.db.QueryRowContext(ctx, query, id).Scan(&out)
	if err == sql.ErrNoRows {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("failed to resolve user: %w", err)
	}
	return out, true, nil
}
