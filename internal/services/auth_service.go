package services

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	intconfig "caravan/internal/config"
	"caravan/internal/domain"
	"caravan/internal/domain/models"
	"caravan/internal/repositories"
	"caravan/internal/utils"
)

var errBadCredentials = domain.UnauthorizedError{Msg: "correo o contraseña incorrectos"}

// AuthService issues admin tokens. Admin rights are the allow-list, checked on
// login and again on every authorized request.
type AuthService struct {
	DB        *sql.DB
	Secret    []byte
	TTL       time.Duration
	RequestID string
	Now       func() time.Time
}

// AdminClaims are the JWT claims of an admin session.
type AdminClaims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// LoginResult is returned by Login.
type LoginResult struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	User      models.AdminUser `json:"user"`
}

func (s AuthService) repo() repositories.AdminRepository {
	if s.DB != nil {
		return repositories.AdminRepository{DB: s.DB}
	}
	return repositories.AdminRepository{DB: intconfig.DB}
}

func (s AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s AuthService) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return 12 * time.Hour
}

// Login checks the password and the allow-list and returns a signed token.
func (s AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return LoginResult{}, domain.ValidationError{Field: "email", Msg: "correo y contraseña son obligatorios"}
	}
	user, err := s.repo().GetByEmail(ctx, email)
	if domain.IsNotFound(err) {
		return LoginResult{}, errBadCredentials
	}
	if err != nil {
		return LoginResult{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return LoginResult{}, errBadCredentials
	}
	if err := s.checkAllowed(ctx, user.Email); err != nil {
		return LoginResult{}, err
	}

	exp := s.now().Add(s.ttl())
	token, err := s.sign(user, exp)
	if err != nil {
		return LoginResult{}, domain.InternalError{Msg: "no se pudo generar el token", Err: err}
	}
	utils.LogEvent(s.RequestID, "auth", "login", "email="+user.Email)
	return LoginResult{Token: token, ExpiresAt: exp, User: user}, nil
}

func (s AuthService) sign(u models.AdminUser, exp time.Time) (string, error) {
	claims := AdminClaims{
		UserID: u.ID,
		Email:  u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Email,
			IssuedAt:  jwt.NewNumericDate(s.now()),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
}

// ParseToken validates signature and expiry.
func (s AuthService) ParseToken(raw string) (AdminClaims, error) {
	var claims AdminClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return s.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return AdminClaims{}, domain.UnauthorizedError{Msg: "sesión inválida o expirada", Err: err}
	}
	return claims, nil
}

// Authorize validates the token and re-checks the allow-list.
func (s AuthService) Authorize(ctx context.Context, raw string) (domain.RequestContext, error) {
	claims, err := s.ParseToken(raw)
	if err != nil {
		return domain.RequestContext{}, err
	}
	if err := s.checkAllowed(ctx, claims.Email); err != nil {
		return domain.RequestContext{}, err
	}
	return domain.RequestContext{UserID: claims.UserID, Email: claims.Email}, nil
}

func (s AuthService) checkAllowed(ctx context.Context, email string) error {
	ok, err := s.repo().IsAllowed(ctx, email)
	if err != nil {
		return err
	}
	if !ok {
		return domain.UnauthorizedError{Msg: "el correo no tiene permisos de administrador"}
	}
	return nil
}

// EnsureAdmin creates the account when missing and puts the email on the allow-list.
func (s AuthService) EnsureAdmin(ctx context.Context, name, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || len(password) < 8 {
		return domain.ValidationError{Field: "password", Msg: "se requiere correo y una contraseña de al menos 8 caracteres"}
	}
	repo := s.repo()
	_, err := repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
	case domain.IsNotFound(err):
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		if _, err := repo.Create(ctx, models.AdminUser{Name: name, Email: email, PasswordHash: string(hash)}); err != nil {
			return err
		}
	default:
		return err
	}
	return repo.Allow(ctx, email)
}

func (s AuthService) AllowedEmails(ctx context.Context) ([]string, error) {
	return s.repo().ListAllowed(ctx)
}

func (s AuthService) AllowEmail(ctx context.Context, email string) error {
	if !strings.Contains(email, "@") {
		return domain.ValidationError{Field: "email", Msg: "correo inválido"}
	}
	return s.repo().Allow(ctx, email)
}

// RevokeEmail removes an email from the allow-list. Admins cannot revoke themselves.
func (s AuthService) RevokeEmail(ctx context.Context, actor domain.RequestContext, email string) error {
	if strings.EqualFold(strings.TrimSpace(email), actor.Email) {
		return domain.ConflictError{Resource: "administrador", Msg: "no puede revocar su propio acceso"}
	}
	return s.repo().Revoke(ctx, email)
}
