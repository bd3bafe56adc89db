package service

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"go-storefront/internal/apperr"
	"go-storefront/internal/domain"
)

// UserAdminService backs the back-office user directory views.
type UserAdminService struct {
	users domain.UserRepository
	log   *zap.Logger
}

func NewUserAdminService(users domain.UserRepository, log *zap.Logger) *UserAdminService {
	return &UserAdminService{users: users, log: log}
}

type UserPage struct {
	Total int64             `json:"total"`
	Items []domain.Identity `json:"items"`
}

func (s *UserAdminService) List(ctx context.Context, q string, offset, limit int64) (*UserPage, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	users, total, err := s.users.List(ctx, q, offset, limit)
	if err != nil {
		return nil, apperr.Internal("list users failed", err)
	}
	page := &UserPage{Total: total, Items: make([]domain.Identity, 0, len(users))}
	for i := range users {
		page.Items = append(page.Items, users[i].Identity())
	}
	return page, nil
}

func (s *UserAdminService) Ban(ctx context.Context, id string) error {
	if id == "" {
		return apperr.Invalid("missing id")
	}
	if err := s.users.Ban(ctx, id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperr.NotFound("user not found")
		}
		return apperr.Internal("ban user failed", err)
	}
	s.log.Info("user banned", zap.String("user_id", id))
	return nil
}
