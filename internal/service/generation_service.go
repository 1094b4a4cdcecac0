package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	config "github.com/contentwell/contentwell/configs"
	"github.com/contentwell/contentwell/internal/models"
	"github.com/contentwell/contentwell/internal/repository"
	"github.com/contentwell/contentwell/internal/transfer"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	gonanoid "github.com/matoous/go-nanoid/v2"
	openai "github.com/sashabaranov/go-openai"
)

// openaiClient is the slice of the OpenAI API the generator uses.
type openaiClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
	CreateImage(ctx context.Context, req openai.ImageRequest) (openai.ImageResponse, error)
}

// imageStore persists generated images and hands back permanent URLs.
type imageStore interface {
	Upload(ctx context.Context, key string, file []byte, filetype string) error
	PublicURL(key string) string
}

type GenerationService interface {
	GenerateCampaign(ctx context.Context, campaignID int64) error
	RegenerateText(ctx context.Context, userID int64, r *transfer.RegenerateRequest) error
	RegenerateImage(ctx context.Context, userID int64, r *transfer.RegenerateRequest) error
}

type generationService struct {
	cfg    config.Config
	client openaiClient
	store  imageStore
	c      repository.CampaignRepository
	ci     repository.ContentItemRepository
	st     repository.SettingsRepository
	q      TaskEnqueuer

	// Image requests are serialized to stay inside provider rate limits.
	imageMu sync.Mutex
}

func NewGenerationService(
	cfg config.Config,
	client openaiClient,
	store imageStore,
	c repository.CampaignRepository,
	ci repository.ContentItemRepository,
	st repository.SettingsRepository,
	q TaskEnqueuer) GenerationService {
	return &generationService{
		cfg:    cfg,
		client: client,
		store:  store,
		c:      c,
		ci:     ci,
		st:     st,
		q:      q,
	}
}

// GenerateCampaign runs the full generation pass for one campaign: a single
// chat completion produces every requested piece, images are generated and
// stored afterwards, then items are written in the workflow's starting
// status. Any failure before the first item is written marks the campaign
// failed; an image failure only leaves that item without an image.
func (s *generationService) GenerateCampaign(ctx context.Context, campaignID int64) error {
	campaign, err := s.c.GetByID(ctx, campaignID)
	if err != nil {
		return err
	}

	settings, _, err := s.st.GetByUserID(ctx, campaign.UserID)
	if err != nil {
		return s.fail(ctx, campaignID, err)
	}

	prompt := buildCampaignPrompt(campaign, settings)

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.cfg.OpenAI.TextModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: generationSystemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		slog.Info(err.Error())
		return s.fail(ctx, campaignID, fmt.Errorf("chat completion failed: %w", err))
	}

	if len(resp.Choices) == 0 {
		return s.fail(ctx, campaignID, errors.New("no completion returned"))
	}

	generated, err := parseGeneratedItems(resp.Choices[0].Message.Content)
	if err != nil {
		slog.Info(err.Error())
		return s.fail(ctx, campaignID, err)
	}

	startStatus := models.ContentStatusDraft
	if campaign.Workflow == models.WorkflowAuto {
		startStatus = models.ContentStatusApproved
	}

	for _, g := range generated {
		imageURL := ""
		if g.ImagePrompt != "" {
			imageURL, err = s.generateImage(ctx, g.ImagePrompt)
			if err != nil {
				slog.Info(fmt.Sprintf("image generation failed for campaign %d: %v", campaignID, err))
				imageURL = ""
			}
		}

		item := &models.ContentItem{
			CampaignID:    campaign.ID,
			UserID:        campaign.UserID,
			ContentType:   g.Type,
			Subtype:       g.Subtype,
			Platform:      g.Platform,
			GeneratedText: g.Text,
			ImagePrompt:   g.ImagePrompt,
			ImageURL:      imageURL,
			Status:        startStatus,
		}

		itemID, err := s.ci.Create(ctx, nil, item)
		if err != nil {
			return s.fail(ctx, campaignID, err)
		}

		if campaign.Workflow == models.WorkflowAuto && g.Platform != "" {
			if err := s.q.EnqueuePublish(ctx, itemID); err != nil {
				slog.Info(err.Error())
			}
		}
	}

	return s.c.UpdateStatus(ctx, campaignID, models.CampaignStatusReady, "")
}

func (s *generationService) fail(ctx context.Context, campaignID int64, cause error) error {
	if err := s.c.UpdateStatus(ctx, campaignID, models.CampaignStatusFailed, cause.Error()); err != nil {
		slog.Info(err.Error())
	}
	return cause
}

// RegenerateText rewrites one item's text, optionally steered by extra
// instructions, and resets it to draft for another review.
func (s *generationService) RegenerateText(ctx context.Context, userID int64, r *transfer.RegenerateRequest) error {
	item, campaign, err := s.ownedItem(ctx, userID, r.ItemID)
	if err != nil {
		return err
	}

	settings, _, err := s.st.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}

	prompt := buildRegeneratePrompt(campaign, settings, item, r.Instructions)

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.cfg.OpenAI.TextModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: regenerateSystemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		slog.Info(err.Error())
		return fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return errors.New("no completion returned")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return errors.New("empty completion returned")
	}

	if err := s.ci.UpdateText(ctx, item.ID, text); err != nil {
		return err
	}

	return s.ci.UpdateStatus(ctx, item.ID, models.ContentStatusDraft)
}

// RegenerateImage replaces one item's image from a new or existing prompt.
func (s *generationService) RegenerateImage(ctx context.Context, userID int64, r *transfer.RegenerateRequest) error {
	item, _, err := s.ownedItem(ctx, userID, r.ItemID)
	if err != nil {
		return err
	}

	prompt := r.ImagePrompt
	if prompt == "" {
		prompt = item.ImagePrompt
	}
	if prompt == "" {
		return errors.New("no image prompt available for this item")
	}

	imageURL, err := s.generateImage(ctx, prompt)
	if err != nil {
		return err
	}

	return s.ci.UpdateImage(ctx, item.ID, prompt, imageURL)
}

func (s *generationService) ownedItem(ctx context.Context, userID, itemID int64) (*models.ContentItem, *models.Campaign, error) {
	isUsers, err := s.ci.CheckByUserID(ctx, itemID, userID)
	if err != nil {
		return nil, nil, err
	}
	if !isUsers {
		return nil, nil, errors.New("content item not found")
	}

	item, err := s.ci.GetByID(ctx, itemID)
	if err != nil {
		return nil, nil, err
	}

	campaign, err := s.c.GetByID(ctx, item.CampaignID)
	if err != nil {
		return nil, nil, err
	}

	return item, campaign, nil
}

func (s *generationService) generateImage(ctx context.Context, prompt string) (string, error) {
	s.imageMu.Lock()
	defer s.imageMu.Unlock()

	resp, err := s.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         prompt,
		Model:          s.cfg.OpenAI.ImageModel,
		N:              1,
		Size:           openai.CreateImageSize1024x1024,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return "", fmt.Errorf("image generation failed: %w", err)
	}

	if len(resp.Data) == 0 {
		return "", errors.New("no image returned")
	}

	imageData, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return "", fmt.Errorf("error decoding image data: %w", err)
	}

	fileType, err := filetype.Match(imageData)
	if err != nil || fileType == types.Unknown {
		return "", fmt.Errorf("unsupported file type: %w", err)
	}

	id, err := gonanoid.New()
	if err != nil {
		return "", err
	}
	key := id + "." + fileType.Extension

	if err := s.store.Upload(ctx, key, imageData, fileType.MIME.Value); err != nil {
		return "", fmt.Errorf("error uploading image: %w", err)
	}

	return s.store.PublicURL(key), nil
}

const generationSystemPrompt = `You are a marketing copywriter. You respond only with a JSON array, no prose and no markdown fences. Each element has the fields "type", "subtype", "platform", "text" and "image_prompt". "type" is one of "blog_post", "social_post", "webpage_copy" or "email_copy". For social posts, "platform" names the target network and "subtype" may describe the post style; for other types both may be empty. "image_prompt" is a visual description for an accompanying image, or empty when no image fits.`

const regenerateSystemPrompt = `You are a marketing copywriter. Respond only with the rewritten copy, no commentary and no markdown fences.`

func buildCampaignPrompt(campaign *models.Campaign, settings *models.Settings) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Create marketing content for the product %q.\n", campaign.ProductName)
	fmt.Fprintf(&b, "Product description: %s\n", campaign.Description)
	if campaign.TargetAudience != "" {
		fmt.Fprintf(&b, "Target audience: %s\n", campaign.TargetAudience)
	}

	tone := campaign.Tone
	if tone == "" && settings != nil {
		tone = settings.DefaultTone
	}
	if tone != "" {
		fmt.Fprintf(&b, "Tone: %s\n", tone)
	}

	if settings != nil {
		if settings.BrandVoice != "" {
			fmt.Fprintf(&b, "Brand voice: %s\n", settings.BrandVoice)
		}
		if settings.DefaultCTA != "" {
			fmt.Fprintf(&b, "Preferred call to action: %s\n", settings.DefaultCTA)
		}
	}

	fmt.Fprintf(&b, "Content types to produce: %s\n", campaign.ContentTypes)
	if campaign.Platforms != "" {
		fmt.Fprintf(&b, "For each social post, produce one variant per platform from: %s\n", campaign.Platforms)
	}

	b.WriteString("Return one array element per piece of content.")
	return b.String()
}

func buildRegeneratePrompt(campaign *models.Campaign, settings *models.Settings, item *models.ContentItem, instructions string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Rewrite the following %s for the product %q.\n", item.ContentType, campaign.ProductName)
	fmt.Fprintf(&b, "Product description: %s\n", campaign.Description)
	if item.Platform != "" {
		fmt.Fprintf(&b, "Target platform: %s\n", item.Platform)
	}
	if settings != nil && settings.BrandVoice != "" {
		fmt.Fprintf(&b, "Brand voice: %s\n", settings.BrandVoice)
	}
	if instructions != "" {
		fmt.Fprintf(&b, "Additional instructions: %s\n", instructions)
	}
	fmt.Fprintf(&b, "\nCurrent copy:\n%s", item.GeneratedText)

	return b.String()
}

// parseGeneratedItems enforces the response contract. Markdown fences are
// tolerated and stripped; anything else that fails to parse fails the call.
func parseGeneratedItems(raw string) ([]transfer.GeneratedItem, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var items []transfer.GeneratedItem
	if err := json.Unmarshal([]byte(cleaned), &items); err != nil {
		return nil, fmt.Errorf("failed to parse generated content: %w", err)
	}

	if len(items) == 0 {
		return nil, errors.New("generation returned no content")
	}

	for i, item := range items {
		switch item.Type {
		case models.ContentTypeBlogPost, models.ContentTypeSocialPost, models.ContentTypeWebpageCopy, models.ContentTypeEmailCopy:
		default:
			return nil, fmt.Errorf("generated item %d has unknown type %q", i, item.Type)
		}
		if item.Text == "" {
			return nil, fmt.Errorf("generated item %d has no text", i)
		}
		if item.Platform != "" && !models.KnownPlatform(item.Platform) {
			return nil, fmt.Errorf("generated item %d targets unknown platform %q", i, item.Platform)
		}
	}

	return items, nil
}
