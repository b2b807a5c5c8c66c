package serviceimpl

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"taskmanager-api/domain/apperrors"
	"taskmanager-api/domain/dto"
	"taskmanager-api/domain/models"
	"taskmanager-api/domain/ports"
	"taskmanager-api/domain/repositories"
	"taskmanager-api/domain/services"
	"taskmanager-api/pkg/logger"
	"taskmanager-api/pkg/utils"
)

// ErrInvalidCredentials is returned by IssueTokens for an unknown username or
// a wrong password; the two cases are not told apart.
var ErrInvalidCredentials = errors.New("no active account found with the given credentials")

const msgDuplicateUsername = "A user with that username already exists."

type TokenSettings struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type UserServiceImpl struct {
	userRepo  repositories.UserRepository
	taskCache ports.TaskCachePort
	tokens    TokenSettings
}

func NewUserService(userRepo repositories.UserRepository, taskCache ports.TaskCachePort, tokens TokenSettings) services.UserService {
	return &UserServiceImpl{
		userRepo:  userRepo,
		taskCache: taskCache,
		tokens:    tokens,
	}
}

func (s *UserServiceImpl) Register(ctx context.Context, req *dto.CreateUserRequest) (*models.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.FirstName = strings.TrimSpace(req.FirstName)

	if err := utils.ValidateStruct(req); err != nil {
		verr := apperrors.NewValidationError()
		for field, msg := range utils.GetValidationErrors(err) {
			verr.Add(field, msg)
		}
		return nil, verr
	}
	if strings.IndexFunc(req.Username, unicode.IsSpace) >= 0 {
		verr := apperrors.NewValidationError()
		verr.Add("username", "Enter a valid username.")
		return nil, verr
	}

	existing, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil && !errors.Is(err, repositories.ErrRecordNotFound) {
		logger.ErrorContext(ctx, "Failed to look up username", "error", err)
		return nil, err
	}
	if existing != nil {
		logger.WarnContext(ctx, "Username already exists", "username", req.Username)
		return nil, apperrors.Conflictf(msgDuplicateUsername)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to hash password", "error", err)
		return nil, err
	}

	now := time.Now()
	user := &models.User{
		ID:        uuid.New(),
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  string(hashedPassword),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration of the same name.
		if errors.Is(err, repositories.ErrDuplicateKey) {
			logger.WarnContext(ctx, "Username already exists", "username", req.Username)
			return nil, apperrors.Conflictf(msgDuplicateUsername)
		}
		logger.ErrorContext(ctx, "Failed to create user in database", "error", err)
		return nil, err
	}

	logger.InfoContext(ctx, "User created successfully", "user_id", user.ID, "username", user.Username)
	return user, nil
}

func (s *UserServiceImpl) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// DeleteAccount removes the user and every task they own once the current
// password is confirmed.
func (s *UserServiceImpl) DeleteAccount(ctx context.Context, userID uuid.UUID, req *dto.DeleteUserRequest) error {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		logger.WarnContext(ctx, "Account deletion rejected - invalid password", "user_id", userID)
		verr := apperrors.NewValidationError()
		verr.Add("current_password", "Invalid password.")
		return verr
	}

	taskIDs, err := s.userRepo.Delete(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		logger.ErrorContext(ctx, "Failed to delete user", "user_id", userID, "error", err)
		return err
	}

	for _, id := range taskIDs {
		if err := s.taskCache.Invalidate(ctx, id); err != nil {
			logger.WarnContext(ctx, "Task cache invalidation failed", "task_id", id, "error", err)
		}
	}

	logger.InfoContext(ctx, "User deleted", "user_id", userID, "tasks_removed", len(taskIDs))
	return nil
}

func (s *UserServiceImpl) IssueTokens(ctx context.Context, req *dto.TokenCreateRequest) (*dto.TokenPairResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			logger.WarnContext(ctx, "Login failed - username not found", "username", req.Username)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		logger.WarnContext(ctx, "Login failed - invalid password", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	access, err := utils.GenerateToken(user.ID, user.Username, utils.TokenTypeAccess, s.tokens.Secret, s.tokens.AccessTTL)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to generate access token", "user_id", user.ID, "error", err)
		return nil, err
	}
	refresh, err := utils.GenerateToken(user.ID, user.Username, utils.TokenTypeRefresh, s.tokens.Secret, s.tokens.RefreshTTL)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to generate refresh token", "user_id", user.ID, "error", err)
		return nil, err
	}

	logger.InfoContext(ctx, "User logged in successfully", "user_id", user.ID)
	return &dto.TokenPairResponse{Access: access, Refresh: refresh}, nil
}

func (s *UserServiceImpl) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	identity, err := utils.ParseTokenOfType(refreshToken, s.tokens.Secret, utils.TokenTypeRefresh)
	if err != nil {
		return "", err
	}

	// The account may have been removed after the refresh token was issued.
	if _, err := s.userRepo.GetByID(ctx, identity.ID); err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return "", utils.ErrInvalidToken
		}
		return "", err
	}

	return utils.GenerateToken(identity.ID, identity.Username, utils.TokenTypeAccess, s.tokens.Secret, s.tokens.AccessTTL)
}

func (s *UserServiceImpl) VerifyToken(ctx context.Context, token string) error {
	_, err := utils.ParseToken(token, s.tokens.Secret)
	return err
}

func (s *UserServiceImpl) ResolveActor(ctx context.Context, accessToken string) (*models.Actor, error) {
	identity, err := utils.ParseTokenOfType(accessToken, s.tokens.Secret, utils.TokenTypeAccess)
	if err != nil {
		return nil, err
	}
	return &models.Actor{UserID: identity.ID, Username: identity.Username}, nil
}
