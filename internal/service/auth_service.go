package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenIssuer   = "inkwell-api"
	tokenAudience = "inkwell-client"
)

// AuthService issues access tokens.
type AuthService struct {
	userRepo  repository.UserRepository
	users     *UserService
	jwtSecret string
	tokenTTL  time.Duration
	clock     clockwork.Clock
}

// Me is the identity returned by /auth/me.
type Me struct {
	UserID uint   `json:"userId"`
	Login  string `json:"login"`
	Email  string `json:"email"`
}

func NewAuthService(userRepo repository.UserRepository, users *UserService, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}
	return &AuthService{
		userRepo:  userRepo,
		users:     users,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		clock:     clockwork.NewRealClock(),
	}
}

func (s *AuthService) Register(ctx context.Context, in CreateUserInput) (*models.User, error) {
	return s.users.CreateUser(ctx, in)
}

// Login checks the credentials and returns a signed access token.
// Unknown users, wrong passwords and banned users all get the same 401.
func (s *AuthService) Login(ctx context.Context, loginOrEmail, password string) (string, error) {
	user, err := s.userRepo.GetByLoginOrEmail(ctx, loginOrEmail)
	if err != nil {
		return "", err
	}
	if user == nil || user.IsBanned {
		return "", models.NewUnauthorizedError("Invalid credentials")
	}
	if cmpErr := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); cmpErr != nil {
		return "", models.NewUnauthorizedError("Invalid credentials")
	}

	token, err := s.GenerateToken(user)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return token, nil
}

func (s *AuthService) Me(ctx context.Context, userID uint) (Me, error) {
	var me Me
	err := cache.Aside(ctx, cache.UserKey(userID), &me, cache.UserTTL, func() error {
		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		me = Me{UserID: user.ID, Login: user.Login, Email: user.Email}
		return nil
	})
	if err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			return Me{}, models.NewUnauthorizedError("User no longer exists")
		}
		return Me{}, err
	}
	return me, nil
}

// GenerateToken creates an HS256 access token for the user.
func (s *AuthService) GenerateToken(user *models.User) (string, error) {
	if s.jwtSecret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := utcNow(s.clock)
	claims := jwt.MapClaims{
		"sub":   strconv.FormatUint(uint64(user.ID), 10),
		"login": user.Login,
		"iss":   tokenIssuer,
		"aud":   tokenAudience,
		"exp":   now.Add(s.tokenTTL).Unix(),
		"iat":   now.Unix(),
		"nbf":   now.Unix(),
		"jti":   fmt.Sprintf("%d-%s", now.Unix(), uuid.New().String()[:8]),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}
