package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("user not found")
var ErrEmailTaken = errors.New("email already registered")

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) Create(ctx context.Context, u User) (User, error) {
	err := r.DB.QueryRow(ctx, `
		INSERT INTO users(name, email, password, is_staff, is_active)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO NOTHING
		RETURNING id`,
		u.Name, u.Email, u.Password, u.IsStaff, u.IsActive,
	).Scan(&u.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrEmailTaken
	}
	if err != nil {
		return User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (User, error) {
	var u User
	err := r.DB.QueryRow(ctx, `
		SELECT id, name, email, password, is_staff, is_active
		FROM users WHERE email=$1`, email,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.IsStaff, &u.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("select user by email: %w", err)
	}
	return u, nil
}

func (r *Repo) GetByID(ctx context.Context, id int64) (User, error) {
	var u User
	err := r.DB.QueryRow(ctx, `
		SELECT id, name, email, password, is_staff, is_active
		FROM users WHERE id=$1`, id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.IsStaff, &u.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("select user by id: %w", err)
	}
	return u, nil
}

func (r *Repo) GetAll(ctx context.Context) ([]User, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, name, email, password, is_staff, is_active
		FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.IsStaff, &u.IsActive); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *Repo) Update(ctx context.Context, id int64, f UpdateFields) (User, error) {
	u, err := r.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if f.Name != nil {
		u.Name = *f.Name
	}
	if f.Email != nil {
		u.Email = *f.Email
	}
	if f.Password != nil {
		u.Password = *f.Password
	}
	if f.IsStaff != nil {
		u.IsStaff = *f.IsStaff
	}
	if f.IsActive != nil {
		u.IsActive = *f.IsActive
	}

	ct, err := r.DB.Exec(ctx, `
		UPDATE users SET name=$2, email=$3, password=$4, is_staff=$5, is_active=$6
		WHERE id=$1`,
		u.ID, u.Name, u.Email, u.Password, u.IsStaff, u.IsActive)
	if err != nil {
		return User{}, fmt.Errorf("update user: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (r *Repo) Delete(ctx context.Context, id int64) (User, error) {
	u, err := r.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if _, err := r.DB.Exec(ctx, `DELETE FROM users WHERE id=$1`, id); err != nil {
		return User{}, fmt.Errorf("delete user: %w", err)
	}
	return u, nil
}
