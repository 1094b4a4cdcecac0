package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	config "github.com/contentwell/contentwell/configs"
	"github.com/contentwell/contentwell/internal/transfer"
)

// smartleadLeadChunk caps one AddLeads request, per the provider's limit.
const smartleadLeadChunk = 100

type SmartleadService interface {
	CreateCampaign(ctx context.Context, name string) (int64, error)
	SaveSequence(ctx context.Context, campaignID int64, subject, body string) error
	AddLeads(ctx context.Context, campaignID int64, leads []transfer.SmartleadLead) (*transfer.SmartleadAddLeadsResponse, error)
	StartCampaign(ctx context.Context, campaignID int64) error
}

type smartleadService struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewSmartleadService(cfg config.Config) SmartleadService {
	return &smartleadService{
		apiKey:  cfg.Smartlead.APIKey,
		baseURL: cfg.Smartlead.BaseURL,
		client:  http.DefaultClient,
	}
}

func (s *smartleadService) CreateCampaign(ctx context.Context, name string) (int64, error) {
	payload := map[string]string{"name": name}

	var result transfer.SmartleadCampaignResponse
	if err := s.post(ctx, "/campaigns/create", payload, &result); err != nil {
		return 0, err
	}

	if !result.OK || result.ID == 0 {
		return 0, errors.New("SmartLead did not return a campaign ID")
	}

	return result.ID, nil
}

func (s *smartleadService) SaveSequence(ctx context.Context, campaignID int64, subject, body string) error {
	sequence := transfer.SmartleadSequence{
		SeqNumber: 1,
		Subject:   subject,
		EmailBody: body,
	}
	sequence.SeqDelayDetails.DelayInDays = 1

	payload := map[string]interface{}{
		"sequences": []transfer.SmartleadSequence{sequence},
	}

	var result transfer.SmartleadStatusResponse
	if err := s.post(ctx, fmt.Sprintf("/campaigns/%d/sequences", campaignID), payload, &result); err != nil {
		return err
	}

	if !result.OK {
		return errors.New("SmartLead rejected the sequence")
	}

	return nil
}

// AddLeads uploads in chunks and sums the per-chunk counts.
func (s *smartleadService) AddLeads(ctx context.Context, campaignID int64, leads []transfer.SmartleadLead) (*transfer.SmartleadAddLeadsResponse, error) {
	total := &transfer.SmartleadAddLeadsResponse{OK: true}

	for start := 0; start < len(leads); start += smartleadLeadChunk {
		end := start + smartleadLeadChunk
		if end > len(leads) {
			end = len(leads)
		}

		payload := transfer.SmartleadAddLeadsRequest{LeadList: leads[start:end]}

		var result transfer.SmartleadAddLeadsResponse
		if err := s.post(ctx, fmt.Sprintf("/campaigns/%d/leads", campaignID), payload, &result); err != nil {
			return nil, err
		}

		total.UploadCount += result.UploadCount
		total.AlreadyAdded += result.AlreadyAdded
		total.InvalidCount += result.InvalidCount
	}

	return total, nil
}

func (s *smartleadService) StartCampaign(ctx context.Context, campaignID int64) error {
	payload := map[string]string{"status": "START"}

	var result transfer.SmartleadStatusResponse
	if err := s.post(ctx, fmt.Sprintf("/campaigns/%d/status", campaignID), payload, &result); err != nil {
		return err
	}

	if !result.OK {
		return errors.New("SmartLead did not start the campaign")
	}

	return nil
}

func (s *smartleadService) post(ctx context.Context, path string, payload, result interface{}) error {
	if s.apiKey == "" {
		err := errors.New("SmartLead API key is not configured")
		slog.Info(err.Error())
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error marshalling payload: %w", err)
	}

	requestURL := fmt.Sprintf("%s%s?api_key=%s", s.baseURL, path, s.apiKey)

	req, err := http.NewRequestWithContext(ctx, "POST", requestURL, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("error response from SmartLead: %s (status code: %d)", respBody, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("error parsing response: %w", err)
	}

	return nil
}
