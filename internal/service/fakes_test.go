package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/contentwell/contentwell/internal/models"
	openai "github.com/sashabaranov/go-openai"
)

type fakeCampaignRepo struct {
	campaigns map[int64]*models.Campaign
	nextID    int64

	statusUpdates []string
	lastError     string
}

func newFakeCampaignRepo() *fakeCampaignRepo {
	return &fakeCampaignRepo{campaigns: make(map[int64]*models.Campaign), nextID: 1}
}

func (r *fakeCampaignRepo) Create(_ context.Context, _ *sql.Tx, campaign *models.Campaign) (int64, error) {
	campaign.ID = r.nextID
	r.nextID++
	r.campaigns[campaign.ID] = campaign
	return campaign.ID, nil
}

func (r *fakeCampaignRepo) GetByID(_ context.Context, id int64) (*models.Campaign, error) {
	c, ok := r.campaigns[id]
	if !ok {
		return nil, errors.New("campaign not found")
	}
	return c, nil
}

func (r *fakeCampaignRepo) ListByUserID(_ context.Context, userID int64) ([]*models.Campaign, error) {
	var out []*models.Campaign
	for _, c := range r.campaigns {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCampaignRepo) CheckByUserID(_ context.Context, campaignID, userID int64) (bool, error) {
	c, ok := r.campaigns[campaignID]
	return ok && c.UserID == userID, nil
}

func (r *fakeCampaignRepo) UpdateStatus(_ context.Context, id int64, status, errorMessage string) error {
	if c, ok := r.campaigns[id]; ok {
		c.Status = status
		c.ErrorMessage = errorMessage
	}
	r.statusUpdates = append(r.statusUpdates, status)
	r.lastError = errorMessage
	return nil
}

func (r *fakeCampaignRepo) Remove(_ context.Context, id int64) error {
	delete(r.campaigns, id)
	return nil
}

type fakeContentRepo struct {
	items  map[int64]*models.ContentItem
	nextID int64

	published map[int64]string
	statuses  map[int64]string
	createErr error
}

func newFakeContentRepo() *fakeContentRepo {
	return &fakeContentRepo{
		items:     make(map[int64]*models.ContentItem),
		nextID:    1,
		published: make(map[int64]string),
		statuses:  make(map[int64]string),
	}
}

func (r *fakeContentRepo) add(item *models.ContentItem) *models.ContentItem {
	if item.ID == 0 {
		item.ID = r.nextID
		r.nextID++
	}
	r.items[item.ID] = item
	return item
}

func (r *fakeContentRepo) Create(_ context.Context, _ *sql.Tx, item *models.ContentItem) (int64, error) {
	if r.createErr != nil {
		return 0, r.createErr
	}
	return r.add(item).ID, nil
}

func (r *fakeContentRepo) GetByID(_ context.Context, id int64) (*models.ContentItem, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, errors.New("content item not found")
	}
	return item, nil
}

func (r *fakeContentRepo) ListByCampaignID(_ context.Context, campaignID int64) ([]*models.ContentItem, error) {
	var out []*models.ContentItem
	for _, item := range r.items {
		if item.CampaignID == campaignID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *fakeContentRepo) CheckByUserID(_ context.Context, itemID, userID int64) (bool, error) {
	item, ok := r.items[itemID]
	return ok && item.UserID == userID, nil
}

func (r *fakeContentRepo) UpdateText(_ context.Context, id int64, text string) error {
	if item, ok := r.items[id]; ok {
		item.GeneratedText = text
	}
	return nil
}

func (r *fakeContentRepo) UpdateImage(_ context.Context, id int64, imagePrompt, imageURL string) error {
	if item, ok := r.items[id]; ok {
		item.ImagePrompt = imagePrompt
		item.ImageURL = imageURL
	}
	return nil
}

func (r *fakeContentRepo) UpdateStatus(_ context.Context, id int64, status string) error {
	if item, ok := r.items[id]; ok {
		item.Status = status
	}
	r.statuses[id] = status
	return nil
}

func (r *fakeContentRepo) SetPublished(_ context.Context, id int64, providerPostID string) error {
	if item, ok := r.items[id]; ok {
		item.Status = models.ContentStatusPublished
		item.PublishedPostID = providerPostID
	}
	r.published[id] = providerPostID
	return nil
}

func (r *fakeContentRepo) Remove(_ context.Context, id int64) error {
	delete(r.items, id)
	return nil
}

type fakeCredentialRepo struct {
	creds  map[int64]*models.Credential
	nextID int64

	statuses map[int64]string
	upserted []*models.Credential
}

func newFakeCredentialRepo() *fakeCredentialRepo {
	return &fakeCredentialRepo{
		creds:    make(map[int64]*models.Credential),
		nextID:   1,
		statuses: make(map[int64]string),
	}
}

func (r *fakeCredentialRepo) add(cred *models.Credential) *models.Credential {
	if cred.ID == 0 {
		cred.ID = r.nextID
		r.nextID++
	}
	r.creds[cred.ID] = cred
	return cred
}

func (r *fakeCredentialRepo) Upsert(_ context.Context, _ *sql.Tx, cred *models.Credential) (int64, error) {
	r.upserted = append(r.upserted, cred)
	return r.add(cred).ID, nil
}

func (r *fakeCredentialRepo) GetByID(_ context.Context, id int64) (*models.Credential, bool, error) {
	cred, ok := r.creds[id]
	if !ok {
		return nil, false, nil
	}
	return cred, true, nil
}

func (r *fakeCredentialRepo) GetByUserAndPlatform(_ context.Context, userID int64, platform string) (*models.Credential, bool, error) {
	for _, cred := range r.creds {
		if cred.UserID == userID && cred.Platform == platform {
			return cred, true, nil
		}
	}
	return nil, false, nil
}

func (r *fakeCredentialRepo) ListInfoByUserID(_ context.Context, userID int64) ([]*models.Credential, error) {
	var out []*models.Credential
	for _, cred := range r.creds {
		if cred.UserID == userID {
			out = append(out, cred)
		}
	}
	return out, nil
}

func (r *fakeCredentialRepo) ListExpiringBefore(_ context.Context, deadline time.Time) ([]*models.Credential, error) {
	var out []*models.Credential
	for _, cred := range r.creds {
		if !cred.TokenExpiresAt.IsZero() && cred.TokenExpiresAt.Before(deadline) {
			out = append(out, cred)
		}
	}
	return out, nil
}

func (r *fakeCredentialRepo) CheckByUserID(_ context.Context, credentialID, userID int64) (bool, error) {
	cred, ok := r.creds[credentialID]
	return ok && cred.UserID == userID, nil
}

func (r *fakeCredentialRepo) UpdateToken(_ context.Context, id int64, accessToken, refreshToken string, expiresAt time.Time) error {
	if cred, ok := r.creds[id]; ok {
		cred.AccessToken = accessToken
		cred.RefreshToken = refreshToken
		cred.TokenExpiresAt = expiresAt
	}
	return nil
}

func (r *fakeCredentialRepo) SetStatus(_ context.Context, id int64, status string) error {
	if cred, ok := r.creds[id]; ok {
		cred.Status = status
	}
	r.statuses[id] = status
	return nil
}

func (r *fakeCredentialRepo) Remove(_ context.Context, id int64) error {
	delete(r.creds, id)
	return nil
}

type fakeHistoryRepo struct {
	rows []*models.PublishHistory
}

func (r *fakeHistoryRepo) Create(_ context.Context, history *models.PublishHistory) (int64, error) {
	r.rows = append(r.rows, history)
	return int64(len(r.rows)), nil
}

func (r *fakeHistoryRepo) ListByUserID(_ context.Context, userID int64) ([]*models.PublishHistory, error) {
	var out []*models.PublishHistory
	for _, row := range r.rows {
		if row.UserID == userID {
			out = append(out, row)
		}
	}
	return out, nil
}

type fakeSettingsRepo struct {
	settings map[int64]*models.Settings
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{settings: make(map[int64]*models.Settings)}
}

func (r *fakeSettingsRepo) GetByUserID(_ context.Context, userID int64) (*models.Settings, bool, error) {
	s, ok := r.settings[userID]
	if !ok {
		return nil, false, nil
	}
	return s, true, nil
}

func (r *fakeSettingsRepo) Upsert(_ context.Context, settings *models.Settings, userID int64) error {
	settings.UserID = userID
	r.settings[userID] = settings
	return nil
}

type fakeLeadRepo struct {
	leads []*models.Lead
}

func (r *fakeLeadRepo) CreateBatch(_ context.Context, leads []*models.Lead) (int, error) {
	r.leads = append(r.leads, leads...)
	return len(leads), nil
}

func (r *fakeLeadRepo) ListByBatchID(_ context.Context, userID int64, batchID string) ([]*models.Lead, error) {
	var out []*models.Lead
	for _, lead := range r.leads {
		if lead.UserID == userID && lead.BatchID == batchID {
			out = append(out, lead)
		}
	}
	return out, nil
}

func (r *fakeLeadRepo) ListBatchIDs(_ context.Context, userID int64) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, lead := range r.leads {
		if lead.UserID == userID && !seen[lead.BatchID] {
			seen[lead.BatchID] = true
			out = append(out, lead.BatchID)
		}
	}
	return out, nil
}

func (r *fakeLeadRepo) RemoveBatch(_ context.Context, userID int64, batchID string) error {
	kept := r.leads[:0]
	for _, lead := range r.leads {
		if lead.UserID != userID || lead.BatchID != batchID {
			kept = append(kept, lead)
		}
	}
	r.leads = kept
	return nil
}

type fakePublisher struct {
	postID string
	err    error
	calls  int
}

func (p *fakePublisher) Publish(_ context.Context, _ *models.ContentItem, _ *models.Credential) (string, error) {
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	return p.postID, nil
}

type fakeEnqueuer struct {
	generated []int64
	published []int64
	err       error
}

func (q *fakeEnqueuer) EnqueueGenerate(_ context.Context, campaignID int64) error {
	if q.err != nil {
		return q.err
	}
	q.generated = append(q.generated, campaignID)
	return nil
}

func (q *fakeEnqueuer) EnqueuePublish(_ context.Context, itemID int64) error {
	if q.err != nil {
		return q.err
	}
	q.published = append(q.published, itemID)
	return nil
}

type fakeOpenAI struct {
	completion    string
	completionErr error
	imageB64      string
	imageErr      error
	imageCalls    int
}

func (f *fakeOpenAI) CreateChatCompletion(_ context.Context, _ openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	if f.completionErr != nil {
		return openai.ChatCompletionResponse{}, f.completionErr
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: f.completion}},
		},
	}, nil
}

func (f *fakeOpenAI) CreateImage(_ context.Context, _ openai.ImageRequest) (openai.ImageResponse, error) {
	f.imageCalls++
	if f.imageErr != nil {
		return openai.ImageResponse{}, f.imageErr
	}
	return openai.ImageResponse{
		Data: []openai.ImageResponseDataInner{{B64JSON: f.imageB64}},
	}, nil
}

type fakeImageStore struct {
	uploads map[string][]byte
}

func newFakeImageStore() *fakeImageStore {
	return &fakeImageStore{uploads: make(map[string][]byte)}
}

func (s *fakeImageStore) Upload(_ context.Context, key string, file []byte, _ string) error {
	s.uploads[key] = file
	return nil
}

func (s *fakeImageStore) PublicURL(key string) string {
	return "https://images.example.com/" + key
}
