package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/example/room-booking/internal/persistence"
)

// Auth defaults.
const (
	DefaultCodeTTL  = 60 * time.Second
	DefaultTokenTTL = 24 * time.Hour
	tokenIssuer     = "room-booking"
)

// AuthServiceConfig wires an AuthService.
type AuthServiceConfig struct {
	Users         persistence.UserRepository
	Notifier      Notifier
	Secret        []byte
	CodeTTL       time.Duration
	TokenTTL      time.Duration
	HashParams    Argon2idParams
	CodeGenerator func() (string, error)
	Now           func() time.Time
	Logger        *slog.Logger
}

// AuthService runs the e-mail verification code login and validates the
// access tokens it issues.
type AuthService struct {
	users      persistence.UserRepository
	notifier   Notifier
	secret     []byte
	codeTTL    time.Duration
	tokenTTL   time.Duration
	hashParams Argon2idParams
	generate   func() (string, error)
	codes      *codeStore
	now        func() time.Time
	logger     *slog.Logger
}

// accessClaims is the JWT payload. Subject carries the user's e-mail.
type accessClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// NewAuthService constructs an AuthService with the provided dependencies.
func NewAuthService(cfg AuthServiceConfig) *AuthService {
	if cfg.CodeTTL <= 0 {
		cfg.CodeTTL = DefaultCodeTTL
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = DefaultTokenTTL
	}
	if cfg.HashParams == (Argon2idParams{}) {
		cfg.HashParams = DefaultArgon2idParams
	}
	if cfg.CodeGenerator == nil {
		cfg.CodeGenerator = GenerateCode
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &AuthService{
		users:      cfg.Users,
		notifier:   cfg.Notifier,
		secret:     cfg.Secret,
		codeTTL:    cfg.CodeTTL,
		tokenTTL:   cfg.TokenTTL,
		hashParams: cfg.HashParams,
		generate:   cfg.CodeGenerator,
		codes:      newCodeStore(0, cfg.Now),
		now:        cfg.Now,
		logger:     defaultLogger(cfg.Logger),
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// RequestCode issues a verification code for a known user and mails it. A
// new request replaces any code still pending for the address.
func (s *AuthService) RequestCode(ctx context.Context, email string) (err error) {
	if s == nil {
		return fmt.Errorf("AuthService is nil")
	}

	email = normalizeEmail(email)
	logger := s.loggerWith(ctx, "RequestCode", "email", email)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "verification code request failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "verification code issued")
	}()

	if email == "" {
		vErr := &ValidationError{}
		vErr.add("email", "email is required")
		return vErr
	}

	if _, err = s.users.GetUser(ctx, email); err != nil {
		return mapRepoError(err)
	}

	code, err := s.generate()
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}
	hash, err := HashCode(code, s.hashParams)
	if err != nil {
		return fmt.Errorf("hash code: %w", err)
	}
	s.codes.Put(email, hash, s.codeTTL)

	if s.notifier != nil {
		if nErr := s.notifier.Notify(ctx, Notification{Kind: NotifyVerificationCode, Recipient: email, Code: code}); nErr != nil {
			s.codes.Delete(email)
			return &NotificationError{Kind: NotifyVerificationCode, Recipient: email, Err: nErr}
		}
	}
	return nil
}

// VerifyCode exchanges a pending code for an access token. A code is usable
// once.
func (s *AuthService) VerifyCode(ctx context.Context, email, code string) (result LoginResult, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}

	email = normalizeEmail(email)
	logger := s.loggerWith(ctx, "VerifyCode", "email", email)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "verification failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("role", result.User.Role).InfoContext(ctx, "verification succeeded")
	}()

	hash, ok := s.codes.Get(email)
	if !ok || strings.TrimSpace(code) == "" {
		err = ErrInvalidCode
		return
	}
	if vErr := VerifyCode(hash, code); vErr != nil {
		if !errors.Is(vErr, ErrInvalidCode) {
			logger.WarnContext(ctx, "stored code hash unreadable", "error", vErr)
		}
		err = ErrInvalidCode
		return
	}
	s.codes.Delete(email)

	stored, err := s.users.GetUser(ctx, email)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	user := toUser(stored)

	token, expiresAt, err := s.issueToken(user)
	if err != nil {
		return
	}

	result = LoginResult{User: user, Token: token, ExpiresAt: expiresAt}
	return
}

func (s *AuthService) issueToken(user User) (string, time.Time, error) {
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("token secret not configured")
	}
	now := s.now()
	expiresAt := now.Add(s.tokenTTL)
	claims := accessClaims{
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ValidateToken verifies an access token and returns the principal it names.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (principal Principal, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}

	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		err = ErrInvalidToken
		return
	}

	claims := &accessClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if _, pErr := parser.ParseWithClaims(trimmed, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}); pErr != nil {
		s.loggerWith(ctx, "ValidateToken").DebugContext(ctx, "token rejected", "error", pErr)
		err = ErrInvalidToken
		return
	}

	if !claims.VerifyExpiresAt(s.now(), true) || !claims.VerifyIssuer(tokenIssuer, true) || claims.Subject == "" {
		err = ErrInvalidToken
		return
	}

	principal = Principal{UserID: claims.Subject, Role: ParseRole(claims.Role)}
	return
}
