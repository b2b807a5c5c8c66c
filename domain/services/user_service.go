package services

import (
	"context"

	"github.com/google/uuid"
	"taskmanager-api/domain/dto"
	"taskmanager-api/domain/models"
)

type UserService interface {
	Register(ctx context.Context, req *dto.CreateUserRequest) (*models.User, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error)
	DeleteAccount(ctx context.Context, userID uuid.UUID, req *dto.DeleteUserRequest) error

	// Token issuance
	IssueTokens(ctx context.Context, req *dto.TokenCreateRequest) (*dto.TokenPairResponse, error)
	RefreshAccessToken(ctx context.Context, refreshToken string) (string, error)
	VerifyToken(ctx context.Context, token string) error

	// ResolveActor turns a bearer access token into the calling identity.
	ResolveActor(ctx context.Context, accessToken string) (*models.Actor, error)
}
