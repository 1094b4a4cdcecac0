package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/contentwell/contentwell/internal/models"
	"github.com/contentwell/contentwell/internal/repository"
	"github.com/contentwell/contentwell/internal/transfer"
)

// TaskEnqueuer hands work to the background queue. The queue package
// implements it.
type TaskEnqueuer interface {
	EnqueueGenerate(ctx context.Context, campaignID int64) error
	EnqueuePublish(ctx context.Context, itemID int64) error
}

type CampaignService interface {
	Create(ctx context.Context, userID int64, c *transfer.CampaignCreation) (int64, error)
	List(ctx context.Context, userID int64) ([]*models.Campaign, error)
	Get(ctx context.Context, userID, campaignID int64) (*models.Campaign, []*models.ContentItem, error)
	Remove(ctx context.Context, userID, campaignID int64) error
}

type campaignService struct {
	c  repository.CampaignRepository
	ci repository.ContentItemRepository
	q  TaskEnqueuer
}

func NewCampaignService(c repository.CampaignRepository, ci repository.ContentItemRepository, q TaskEnqueuer) CampaignService {
	return &campaignService{
		c:  c,
		ci: ci,
		q:  q,
	}
}

// Create validates the request, persists the campaign in generating state
// and enqueues the generation task.
func (s *campaignService) Create(ctx context.Context, userID int64, c *transfer.CampaignCreation) (int64, error) {
	var err error

	if userID == 0 {
		err = errors.New("User not found")
		slog.Info(err.Error())
		return 0, err
	}

	if c.Name == "" || c.ProductName == "" || c.Description == "" {
		err = errors.New("name, product name and description are required")
		slog.Info(err.Error())
		return 0, err
	}

	if len(c.ContentTypes) == 0 {
		err = errors.New("at least one content type is required")
		slog.Info(err.Error())
		return 0, err
	}

	for _, ct := range c.ContentTypes {
		switch ct {
		case models.ContentTypeBlogPost, models.ContentTypeSocialPost, models.ContentTypeWebpageCopy, models.ContentTypeEmailCopy:
		default:
			return 0, fmt.Errorf("unknown content type: %s", ct)
		}
	}

	for _, p := range c.Platforms {
		if !models.KnownPlatform(p) {
			return 0, fmt.Errorf("unknown platform: %s", p)
		}
	}

	workflow := c.Workflow
	if workflow == "" {
		workflow = models.WorkflowReview
	}
	if workflow != models.WorkflowReview && workflow != models.WorkflowAuto {
		return 0, fmt.Errorf("unknown workflow: %s", workflow)
	}

	campaign := &models.Campaign{
		UserID:         userID,
		Name:           c.Name,
		ProductName:    c.ProductName,
		Description:    c.Description,
		TargetAudience: c.TargetAudience,
		Tone:           c.Tone,
		ContentTypes:   strings.Join(c.ContentTypes, ","),
		Platforms:      strings.Join(c.Platforms, ","),
		Workflow:       workflow,
		Status:         models.CampaignStatusGenerating,
	}

	campaignID, err := s.c.Create(ctx, nil, campaign)
	if err != nil {
		return 0, err
	}

	if err := s.q.EnqueueGenerate(ctx, campaignID); err != nil {
		slog.Info(err.Error())
		if uerr := s.c.UpdateStatus(ctx, campaignID, models.CampaignStatusFailed, "failed to enqueue generation"); uerr != nil {
			slog.Info(uerr.Error())
		}
		return 0, err
	}

	return campaignID, nil
}

func (s *campaignService) List(ctx context.Context, userID int64) ([]*models.Campaign, error) {
	return s.c.ListByUserID(ctx, userID)
}

func (s *campaignService) Get(ctx context.Context, userID, campaignID int64) (*models.Campaign, []*models.ContentItem, error) {
	isUsers, err := s.c.CheckByUserID(ctx, campaignID, userID)
	if err != nil {
		return nil, nil, err
	}
	if !isUsers {
		return nil, nil, errors.New("campaign not found")
	}

	campaign, err := s.c.GetByID(ctx, campaignID)
	if err != nil {
		return nil, nil, err
	}

	items, err := s.ci.ListByCampaignID(ctx, campaignID)
	if err != nil {
		return nil, nil, err
	}

	return campaign, items, nil
}

func (s *campaignService) Remove(ctx context.Context, userID, campaignID int64) error {
	isUsers, err := s.c.CheckByUserID(ctx, campaignID, userID)
	if err != nil {
		return err
	}
	if !isUsers {
		return errors.New("campaign not found")
	}

	return s.c.Remove(ctx, campaignID)
}
