package store

import (
	"context"

	"storefront/internal/models"
)

const userSelect = `
	SELECT u.id, u.name, u.email, u.password_hash, u.address, u.nif,
		u.user_type_id, ut.label AS user_type, u.created_at
	FROM users u
	LEFT JOIN user_types ut ON ut.id = u.user_type_id`

// ListUsers returns all users
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	err := s.db.SelectContext(ctx, &users, userSelect+" ORDER BY u.id DESC")
	return users, err
}

// GetUser retrieves a user by ID
func (s *Store) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := s.db.GetContext(ctx, &user, userSelect+" WHERE u.id = $1", id); err != nil {
		return nil, mapError(err)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email, ignoring case
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.GetContext(ctx, &user, userSelect+" WHERE LOWER(u.email) = LOWER($1)", email); err != nil {
		return nil, mapError(err)
	}
	return &user, nil
}

// CreateUser inserts a user. A duplicate email yields ErrConflict.
func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	err := s.db.QueryRowxContext(ctx, `
		INSERT INTO users (name, email, password_hash, address, nif, user_type_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		u.Name, u.Email, u.PasswordHash, u.Address, u.NIF, u.UserTypeID,
	).Scan(&u.ID, &u.CreatedAt)
	return mapError(err)
}

// UpdateUser overwrites profile fields and role. The password is left alone.
func (s *Store) UpdateUser(ctx context.Context, u *models.User) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET name = $1, email = $2, address = $3, nif = $4, user_type_id = $5 WHERE id = $6",
		u.Name, u.Email, u.Address, u.NIF, u.UserTypeID, u.ID)
	return expectAffected(res, err)
}

func (s *Store) UpdateUserPassword(ctx context.Context, id int64, hash string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE users SET password_hash = $1 WHERE id = $2", hash, id)
	return expectAffected(res, err)
}

func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE id = $1", id)
	return expectAffected(res, err)
}

// ListUserTypes returns all roles
func (s *Store) ListUserTypes(ctx context.Context) ([]models.UserType, error) {
	types := []models.UserType{}
	err := s.db.SelectContext(ctx, &types, "SELECT id, label FROM user_types ORDER BY id")
	return types, err
}

func (s *Store) GetUserType(ctx context.Context, id int64) (*models.UserType, error) {
	var ut models.UserType
	if err := s.db.GetContext(ctx, &ut, "SELECT id, label FROM user_types WHERE id = $1", id); err != nil {
		return nil, mapError(err)
	}
	return &ut, nil
}

// GetUserTypeByLabel looks a role up by label, ignoring case
func (s *Store) GetUserTypeByLabel(ctx context.Context, label string) (*models.UserType, error) {
	var ut models.UserType
	err := s.db.GetContext(ctx, &ut,
		"SELECT id, label FROM user_types WHERE LOWER(label) = LOWER($1) ORDER BY id LIMIT 1", label)
	if err != nil {
		return nil, mapError(err)
	}
	return &ut, nil
}

func (s *Store) CreateUserType(ctx context.Context, ut *models.UserType) error {
	err := s.db.QueryRowxContext(ctx,
		"INSERT INTO user_types (label) VALUES ($1) RETURNING id", ut.Label).Scan(&ut.ID)
	return mapError(err)
}

func (s *Store) UpdateUserType(ctx context.Context, ut *models.UserType) error {
	res, err := s.db.ExecContext(ctx, "UPDATE user_types SET label = $1 WHERE id = $2", ut.Label, ut.ID)
	return expectAffected(res, err)
}

func (s *Store) DeleteUserType(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM user_types WHERE id = $1", id)
	return expectAffected(res, err)
}
