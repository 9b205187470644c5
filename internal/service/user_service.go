package service

import (
	"context"
	"fmt"
	"strings"

	"inkwell/internal/cache"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/validation"

	"github.com/jonboulle/clockwork"
	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	userRepo repository.UserRepository
	clock    clockwork.Clock
}

// CreateUserInput is the payload for registration and super-admin user creation.
type CreateUserInput struct {
	Login    string `json:"login"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

type BanUserInput struct {
	IsBanned  bool   `json:"isBanned"`
	BanReason string `json:"banReason"`
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo, clock: clockwork.NewRealClock()}
}

func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error) {
	in.Login = strings.TrimSpace(in.Login)
	in.Email = strings.TrimSpace(in.Email)

	var errs fieldErrors
	errs.check("login", validation.ValidateLogin(in.Login))
	errs.check("password", validation.ValidatePassword(in.Password))
	errs.check("email", validation.ValidateEmail(in.Email))
	if err := errs.err(); err != nil {
		return nil, err
	}

	loginTaken, emailTaken, err := s.userRepo.Taken(ctx, in.Login, in.Email)
	if err != nil {
		return nil, err
	}
	if loginTaken {
		errs.check("login", fmt.Errorf("login is already taken"))
	}
	if emailTaken {
		errs.check("email", fmt.Errorf("email is already registered"))
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Login:    in.Login,
		Email:    in.Email,
		Password: string(hashed),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context, filter repository.UserFilter) (models.Page[models.SAUserView], error) {
	users, total, err := s.userRepo.List(ctx, filter)
	if err != nil {
		return models.Page[models.SAUserView]{}, err
	}
	views := make([]models.SAUserView, 0, len(users))
	for i := range users {
		views = append(views, users[i].ToSAView())
	}
	return pageOf(views, filter.PageQuery, total), nil
}

func (s *UserService) DeleteUser(ctx context.Context, id uint) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	cache.InvalidateUser(ctx, id)
	return nil
}

// BanUser bans or unbans a user everywhere. The reason is only required when banning.
func (s *UserService) BanUser(ctx context.Context, id uint, in BanUserInput) error {
	if in.IsBanned {
		if err := validation.ValidateBanReason(in.BanReason); err != nil {
			return models.NewFieldValidationError("banReason", err.Error())
		}
	}

	res, err := s.userRepo.SetBan(ctx, id, in.IsBanned, strings.TrimSpace(in.BanReason), utcNow(s.clock))
	if err != nil {
		return err
	}
	cache.InvalidateUser(ctx, id)

	middleware.Logger.InfoContext(ctx, "user ban updated",
		"target_user_id", id,
		"banned", in.IsBanned,
		"comments", res.Comments,
		"post_ledgers", res.Posts,
		"comment_ledgers", res.Replies,
	)
	return nil
}
