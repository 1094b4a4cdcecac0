package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/contentwell/contentwell/internal/models"
	"github.com/contentwell/contentwell/internal/repository"
)

type ContentService interface {
	Get(ctx context.Context, userID, itemID int64) (*models.ContentItem, error)
	UpdateText(ctx context.Context, userID, itemID int64, text string) error
	Approve(ctx context.Context, userID, itemID int64) error
	Remove(ctx context.Context, userID, itemID int64) error
}

type contentService struct {
	ci repository.ContentItemRepository
}

func NewContentService(ci repository.ContentItemRepository) ContentService {
	return &contentService{
		ci: ci,
	}
}

func (s *contentService) owned(ctx context.Context, userID, itemID int64) error {
	isUsers, err := s.ci.CheckByUserID(ctx, itemID, userID)
	if err != nil {
		return err
	}
	if !isUsers {
		err = errors.New("content item not found")
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (s *contentService) Get(ctx context.Context, userID, itemID int64) (*models.ContentItem, error) {
	if err := s.owned(ctx, userID, itemID); err != nil {
		return nil, err
	}
	return s.ci.GetByID(ctx, itemID)
}

func (s *contentService) UpdateText(ctx context.Context, userID, itemID int64, text string) error {
	if err := s.owned(ctx, userID, itemID); err != nil {
		return err
	}

	if text == "" {
		return errors.New("text is required")
	}

	return s.ci.UpdateText(ctx, itemID, text)
}

// Approve moves a draft item into approved; published items stay put.
func (s *contentService) Approve(ctx context.Context, userID, itemID int64) error {
	if err := s.owned(ctx, userID, itemID); err != nil {
		return err
	}

	item, err := s.ci.GetByID(ctx, itemID)
	if err != nil {
		return err
	}

	if item.Status == models.ContentStatusPublished {
		return errors.New("item is already published")
	}

	return s.ci.UpdateStatus(ctx, itemID, models.ContentStatusApproved)
}

func (s *contentService) Remove(ctx context.Context, userID, itemID int64) error {
	if err := s.owned(ctx, userID, itemID); err != nil {
		return err
	}
	return s.ci.Remove(ctx, itemID)
}
