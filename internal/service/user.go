package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"pken.app/survey-gateway/common/logger"
	"pken.app/survey-gateway/internal/wordpress"
)

type UserService interface {
	Me(ctx context.Context, lineID string) (*wordpress.User, error)
	Register(ctx context.Context, req wordpress.RegisterRequest) (json.RawMessage, error)
}

type userService struct {
	wp wordpress.Client
}

func NewUserService(wp wordpress.Client) UserService {
	return &userService{wp: wp}
}

func (s *userService) Me(ctx context.Context, lineID string) (*wordpress.User, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{LineID: &lineID, Component: "survey.service.user"})

	user, err := s.wp.Me(ctx, lineID)
	if err != nil {
		slog.WarnContext(ctx, "failed to look up user", "error", err)
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	return user, nil
}

func (s *userService) Register(ctx context.Context, req wordpress.RegisterRequest) (json.RawMessage, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{LineID: &req.LineID, Component: "survey.service.user"})

	result, err := s.wp.Register(ctx, req)
	if err != nil {
		slog.ErrorContext(ctx, "failed to register user",
			"error", err,
			"grade", req.Grade,
			"class", req.Class,
		)
		return nil, fmt.Errorf("registering user: %w", err)
	}

	slog.InfoContext(ctx, "user registered", "grade", req.Grade, "class", req.Class)
	return result, nil
}
