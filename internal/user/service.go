package user

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"clinic-booking-be/internal/apperror"
	"clinic-booking-be/internal/auth"
	"clinic-booking-be/internal/db"
	"clinic-booking-be/internal/logger"
	"clinic-booking-be/internal/session"

	"go.uber.org/zap"
)

type Service interface {
	Register(ctx context.Context, input RegisterInput) (string, *User, error)
	Login(ctx context.Context, email, password string) (string, *User, error)
	Me(ctx context.Context, sess session.Session) (*User, error)

	GetUser(ctx context.Context, id int64) (*User, error)
	GetDoctor(ctx context.Context, id int64) (*Doctor, error)
	ListDoctors(ctx context.Context, specialization string) ([]*Doctor, error)
}

type service struct {
	repo       Repository
	issuer     *auth.Issuer
	defaultFee int64
}

func NewService(repo Repository, issuer *auth.Issuer, defaultFee int64) Service {
	return &service{repo: repo, issuer: issuer, defaultFee: defaultFee}
}

func (s *service) Register(ctx context.Context, input RegisterInput) (string, *User, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("service", "User"),
		zap.String("method", "Register"),
	)

	if input.Role == "" {
		input.Role = session.RolePatient
	}
	if input.Role != session.RolePatient && input.Role != session.RoleDoctor {
		return "", nil, ErrInvalidRole
	}

	hashed, err := auth.HashPassword(input.Password)
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		return "", nil, err
	}

	u := &User{
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: hashed,
		FullName:     input.FullName,
		Phone:        input.Phone,
		Role:         input.Role,
	}
	if input.Role == session.RoleDoctor && input.Specialization != "" {
		specialty := input.Specialization
		u.Specialization = &specialty
	}

	if err := s.repo.Create(ctx, u); err != nil {
		if db.IsUniqueViolation(err, "users_email_key") {
			return "", nil, ErrEmailExists
		}
		log.Error("failed to create user", zap.String("email", u.Email), zap.Error(err))
		return "", nil, err
	}

	token, err := s.issuer.Generate(u.Session())
	if err != nil {
		log.Error("failed to generate jwt", zap.Int64("user_id", u.ID), zap.Error(err))
		return "", nil, err
	}

	log.Info("user registered", zap.Int64("user_id", u.ID), zap.String("role", string(u.Role)))
	return token, u, nil
}

func (s *service) Login(ctx context.Context, email, password string) (string, *User, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("service", "User"),
		zap.String("method", "Login"),
	)

	u, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Error("lookup failed", zap.Error(err))
			return "", nil, err
		}
		log.Info("email not found")
		return "", nil, ErrInvalidCredentials
	}

	if !auth.CheckPasswordHash(password, u.PasswordHash) {
		log.Info("password mismatch", zap.Int64("user_id", u.ID))
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.issuer.Generate(u.Session())
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

func (s *service) Me(ctx context.Context, sess session.Session) (*User, error) {
	if err := sess.Require(); err != nil {
		return nil, err
	}
	return s.GetUser(ctx, sess.UserID)
}

func (s *service) GetUser(ctx context.Context, id int64) (*User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}

func (s *service) GetDoctor(ctx context.Context, id int64) (*Doctor, error) {
	u, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDoctorNotFound
	}
	if err != nil {
		return nil, err
	}
	if u.Role != session.RoleDoctor {
		return nil, ErrDoctorNotFound
	}
	return u.AsDoctor(s.defaultFee), nil
}

func (s *service) ListDoctors(ctx context.Context, specialization string) ([]*Doctor, error) {
	users, err := s.repo.ListDoctors(ctx, strings.TrimSpace(specialization))
	if err != nil {
		return nil, apperror.Wrap(apperror.New(apperror.KindInternal, "failed to list doctors"), err)
	}

	doctors := make([]*Doctor, 0, len(users))
	for _, u := range users {
		doctors = append(doctors, u.AsDoctor(s.defaultFee))
	}
	return doctors, nil
}
