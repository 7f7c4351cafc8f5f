package services

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/athujoshi24/legendary-panel/internal/models"
	"github.com/athujoshi24/legendary-panel/internal/repository"
	appErr "github.com/athujoshi24/legendary-panel/pkg/errors"
	"github.com/athujoshi24/legendary-panel/pkg/logger"
	"github.com/athujoshi24/legendary-panel/pkg/utils"
	"github.com/athujoshi24/legendary-panel/pkg/validation"
)

// AuthService is the identity store: it creates accounts and turns
// credentials or tokens into users.
type AuthService interface {
	CreateUser(ctx context.Context, email, password string, fields UserFields) (*models.User, error)
	CreateSuperuser(ctx context.Context, email, password string, fields UserFields) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	IssueToken(user *models.User) (string, time.Duration, error)
	ResolveToken(ctx context.Context, token string) (*models.User, error)

	GetUser(ctx context.Context, id uint) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, id uint, input *UpdateProfileInput) (*models.User, error)
	DeleteUser(ctx context.Context, id uint) error
}

// UserFields are the optional attributes set when an account is created.
type UserFields struct {
	Name    string
	IsStaff bool
}

type UpdateProfileInput struct {
	Name     *string
	Password *string
}

type newUserInput struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"omitempty,min=8,max=128"`
	Name     string `json:"name" validate:"max=255"`
}

type profileInput struct {
	Name     *string `json:"name" validate:"omitempty,max=255"`
	Password *string `json:"password" validate:"omitempty,min=8,max=128"`
}

type authService struct {
	userRepo   repository.UserRepository
	validate   *validation.Validator
	hmacSecret []byte
	tokenTTL   time.Duration
}

func NewAuthService(userRepo repository.UserRepository, secret []byte, tokenTTL time.Duration) AuthService {
	return &authService{
		userRepo:   userRepo,
		validate:   validation.New(),
		hmacSecret: secret,
		tokenTTL:   tokenTTL,
	}
}

var _ AuthService = (*authService)(nil)

func errInvalidCredentials() error {
	return appErr.New(appErr.CodeUnauthorized, "unable to authenticate with provided credentials")
}

// NormalizeEmail trims the address and lower-cases its domain part.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + strings.ToLower(email[at:])
}

// CreateUser stores a new account. An empty password leaves the account
// without a usable password.
func (s *authService) CreateUser(ctx context.Context, email, password string, fields UserFields) (*models.User, error) {
	in := newUserInput{Email: NormalizeEmail(email), Password: password, Name: strings.TrimSpace(fields.Name)}
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	user := &models.User{
		Email:   in.Email,
		Name:    in.Name,
		IsStaff: fields.IsStaff,
	}
	if password != "" {
		ph, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, appErr.Wrap(err, appErr.CodeInternal, "hash password failed")
		}
		user.PasswordHash = string(ph)
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.L().Info("user created", zap.Uint("user_id", user.ID), zap.Bool("usable_password", user.HasUsablePassword()))
	return user, nil
}

func (s *authService) CreateSuperuser(ctx context.Context, email, password string, fields UserFields) (*models.User, error) {
	user, err := s.CreateUser(ctx, email, password, fields)
	if err != nil {
		return nil, err
	}
	user.IsStaff = true
	user.IsSuperuser = true
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	logger.L().Info("superuser flags set", zap.Uint("user_id", user.ID))
	return user, nil
}

// Authenticate checks an email/password pair. Every failure reason yields
// the same unauthorized error.
func (s *authService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	if err := s.userRepo.GetByEmail(ctx, NormalizeEmail(email), &user); err != nil {
		if appErr.IsCode(err, appErr.CodeNotFound) {
			return nil, errInvalidCredentials()
		}
		return nil, err
	}

	if !user.IsActive || !user.HasUsablePassword() {
		return nil, errInvalidCredentials()
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logger.L().Info("password mismatch", zap.Uint("user_id", user.ID))
		return nil, errInvalidCredentials()
	}
	return &user, nil
}

// IssueToken signs an HS256 token whose subject is the user id.
func (s *authService) IssueToken(user *models.User) (string, time.Duration, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(user.ID), 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	})

	tokenString, err := token.SignedString(s.hmacSecret)
	if err != nil {
		return "", 0, appErr.Wrap(err, appErr.CodeInternal, "sign token failed")
	}
	return tokenString, s.tokenTTL, nil
}

func (s *authService) ResolveToken(ctx context.Context, token string) (*models.User, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.hmacSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		logger.L().Info("token rejected", zap.String("token_fp", utils.Fingerprint(token)), zap.Error(err))
		return nil, appErr.Wrap(err, appErr.CodeUnauthorized, "invalid token")
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeUnauthorized, "invalid token")
	}

	var user models.User
	if err := s.userRepo.GetByID(ctx, uint(id), &user); err != nil {
		if appErr.IsCode(err, appErr.CodeNotFound) {
			return nil, appErr.New(appErr.CodeUnauthorized, "invalid token")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, appErr.New(appErr.CodeUnauthorized, "user inactive or deleted")
	}
	return &user, nil
}

func (s *authService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.userRepo.GetByID(ctx, id, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *authService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.userRepo.GetByEmail(ctx, NormalizeEmail(email), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *authService) UpdateProfile(ctx context.Context, id uint, input *UpdateProfileInput) (*models.User, error) {
	if err := s.validate.Struct(profileInput{Name: input.Name, Password: input.Password}); err != nil {
		return nil, err
	}

	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.Password != nil {
		ph, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, appErr.Wrap(err, appErr.CodeInternal, "hash password failed")
		}
		user.PasswordHash = string(ph)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	logger.L().Info("profile updated", zap.Uint("user_id", id), zap.Bool("password_changed", input.Password != nil))
	return user, nil
}

// DeleteUser removes the account and everything it owns.
func (s *authService) DeleteUser(ctx context.Context, id uint) error {
	if err := s.userRepo.DeleteCascade(ctx, id); err != nil {
		return err
	}
	logger.L().Info("user deleted", zap.Uint("user_id", id))
	return nil
}
