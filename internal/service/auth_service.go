package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/boxline/boxline-backend/internal/logger"
	"github.com/boxline/boxline-backend/internal/model"
	"github.com/boxline/boxline-backend/internal/policy"
	"github.com/boxline/boxline-backend/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

const maxVoucherEmails = 5

type RegisterInput struct {
	Email         string
	Password      string
	DisplayName   string
	Role          model.Role
	VoucherEmails []string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*model.User, error)
	Login(ctx context.Context, email, password string) (string, *model.User, error)
	// ResolvePrincipal turns a bearer token into the Principal every core
	// call receives explicitly.
	ResolvePrincipal(ctx context.Context, tokenString string) (*policy.Principal, error)
}

type authService struct {
	db        *gorm.DB
	log       *logger.Logger
	userRepo  repository.UserRepository
	jwtSecret []byte
	accessTTL time.Duration
}

func NewAuthService(db *gorm.DB, log *logger.Logger, jwtSecret string, accessTTL time.Duration) AuthService {
	return &authService{
		db:        db,
		log:       log.With("service", "AuthService"),
		userRepo:  repository.NewUserRepository(db),
		jwtSecret: []byte(jwtSecret),
		accessTTL: accessTTL,
	}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, badRequest("invalid email")
	}
	if len(in.Password) < 8 {
		return nil, badRequest("password must be at least 8 characters")
	}
	if in.Role != model.RoleShipper && in.Role != model.RoleClient {
		return nil, badRequest("role must be SHIPPER or CLIENT")
	}
	if len(in.VoucherEmails) > maxVoucherEmails {
		return nil, badRequest("too many voucher emails")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		UID:          uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  strings.TrimSpace(in.DisplayName),
		Role:         in.Role,
	}
	// Shippers go through the vouching flow; clients stay unverified until
	// an admin intervenes.
	user.VerificationStatus = model.VerificationUnverified
	if in.Role == model.RoleShipper {
		user.VerificationStatus = model.VerificationPendingVouch
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := repository.NewUserRepository(tx)
		if err := users.Create(ctx, user); err != nil {
			return err
		}
		reqs := make([]*model.VouchRequest, 0, len(in.VoucherEmails))
		for _, ve := range in.VoucherEmails {
			ve = strings.ToLower(strings.TrimSpace(ve))
			if ve == "" || ve == email {
				continue
			}
			reqs = append(reqs, &model.VouchRequest{
				RequesterUserUID: user.UID,
				VoucherEmail:     ve,
				Status:           model.VouchStatusPending,
			})
		}
		return repository.NewVouchRepository(tx).CreateBatch(ctx, reqs)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("user registered", "uid", user.UID, "role", user.Role, "vouchers", len(in.VoucherEmails))
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	// System accounts are synthetic actors for background work; a session
	// must never be minted for one.
	if user.IsSystemUser {
		return "", nil, ErrForbidden
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.UID,
		"email": user.Email,
		"role":  string(user.Role),
		"iat":   now.Unix(),
		"exp":   now.Add(s.accessTTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *authService) ResolvePrincipal(ctx context.Context, tokenString string) (*policy.Principal, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrUnauthenticated
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrUnauthenticated
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, ErrUnauthenticated
	}
	// Role and verification state come from the row, not the token, so
	// revocations and promotions take effect on the next request.
	user, err := s.userRepo.FindByUID(ctx, sub)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	if user.IsSystemUser {
		return nil, ErrUnauthenticated
	}
	return &policy.Principal{
		UID:          user.UID,
		Role:         user.Role,
		Email:        user.Email,
		IsSystemUser: user.IsSystemUser,
		Verification: user.VerificationStatus,
	}, nil
}
