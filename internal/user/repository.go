package user

import (
	"context"
	"database/sql"

	"clinic-booking-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, u *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	ListDoctors(ctx context.Context, specialization string) ([]*User, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const userColumns = `
	id, email, password_hash, full_name, phone, role,
	specialization, experience_years, consultation_fee, rating, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*User, error) {
	var u User
	if err := s.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Phone, &u.Role,
		&u.Specialization, &u.ExperienceYears, &u.ConsultationFee, &u.Rating, &u.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) Create(ctx context.Context, u *User) error {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "User"),
		zap.String("method", "Create"),
	)

	const q = `
		INSERT INTO users (email, password_hash, full_name, phone, role, specialization)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, q,
		u.Email, u.PasswordHash, u.FullName, u.Phone, u.Role, u.Specialization,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		log.Error("insert user failed", zap.String("email", u.Email), zap.Error(err))
	}
	return err
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	q := `SELECT` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRowContext(ctx, q, email))
}

func (r *repository) FindByID(ctx context.Context, id int64) (*User, error) {
	q := `SELECT` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, q, id))
}

func (r *repository) ListDoctors(ctx context.Context, specialization string) ([]*User, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "User"),
		zap.String("method", "ListDoctors"),
	)

	q := `SELECT` + userColumns + `
		FROM users
		WHERE role = 'doctor'
		  AND ($1::text = '' OR specialization = $1)
		ORDER BY rating DESC, full_name
	`

	rows, err := r.db.QueryContext(ctx, q, specialization)
	if err != nil {
		log.Error("query failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var res []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			log.Error("scan failed", zap.Error(err))
			return nil, err
		}
		res = append(res, u)
	}
	return res, rows.Err()
}
