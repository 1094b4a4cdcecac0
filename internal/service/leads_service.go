package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"strings"

	"github.com/contentwell/contentwell/internal/models"
	"github.com/contentwell/contentwell/internal/repository"
	"github.com/contentwell/contentwell/internal/transfer"
	"github.com/google/uuid"
)

const leadImportMaxErrors = 20

type LeadsService interface {
	ImportCSV(ctx context.Context, userID int64, r io.Reader) (*transfer.LeadImportSummary, error)
	ListBatches(ctx context.Context, userID int64) ([]string, error)
	ListBatch(ctx context.Context, userID int64, batchID string) ([]*models.Lead, error)
	RemoveBatch(ctx context.Context, userID int64, batchID string) error
	Push(ctx context.Context, userID int64, r *transfer.LeadPushRequest) (int64, error)
}

type leadsService struct {
	l  repository.LeadRepository
	ci repository.ContentItemRepository
	sl SmartleadService
}

func NewLeadsService(l repository.LeadRepository, ci repository.ContentItemRepository, sl SmartleadService) LeadsService {
	return &leadsService{
		l:  l,
		ci: ci,
		sl: sl,
	}
}

// leadColumns maps header spellings onto canonical lead fields. Matching is
// case-insensitive after trimming.
var leadColumns = map[string]string{
	"first name":       "first_name",
	"firstname":        "first_name",
	"first_name":       "first_name",
	"fname":            "first_name",
	"given name":       "first_name",
	"last name":        "last_name",
	"lastname":         "last_name",
	"last_name":        "last_name",
	"lname":            "last_name",
	"surname":          "last_name",
	"email":            "email",
	"e-mail":           "email",
	"email address":    "email",
	"e-mail address":   "email",
	"company":          "company",
	"company name":     "company",
	"organization":     "company",
	"organisation":     "company",
	"title":            "title",
	"job title":        "title",
	"position":         "title",
	"role":             "title",
	"phone":            "phone",
	"phone number":     "phone",
	"mobile":           "phone",
	"telephone":        "phone",
	"website":          "website",
	"web site":         "website",
	"url":              "website",
	"linkedin":         "linkedin_url",
	"linkedin url":     "linkedin_url",
	"linkedin profile": "linkedin_url",
}

var requiredLeadFields = []string{"first_name", "last_name", "email", "company", "title"}

// ImportCSV parses the upload, skips rows with missing required fields or a
// malformed email, and stores the rest under a fresh batch ID. The summary
// always satisfies Imported + Invalid = Total.
func (s *leadsService) ImportCSV(ctx context.Context, userID int64, r io.Reader) (*transfer.LeadImportSummary, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	columns := make(map[string]int)
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if field, ok := leadColumns[key]; ok {
			if _, exists := columns[field]; !exists {
				columns[field] = i
			}
		}
	}

	for _, field := range requiredLeadFields {
		if _, ok := columns[field]; !ok {
			return nil, fmt.Errorf("missing required column: %s", field)
		}
	}

	batchID := uuid.NewString()
	summary := &transfer.LeadImportSummary{BatchID: batchID}

	var leads []*models.Lead
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}

		summary.Total++

		lead, rowErr := buildLead(userID, batchID, columns, record)
		if rowErr != nil {
			summary.Invalid++
			if len(summary.Errors) < leadImportMaxErrors {
				summary.Errors = append(summary.Errors, fmt.Sprintf("row %d: %v", summary.Total, rowErr))
			}
			continue
		}

		leads = append(leads, lead)
	}

	if len(leads) > 0 {
		inserted, err := s.l.CreateBatch(ctx, leads)
		if err != nil {
			return nil, err
		}
		summary.Imported = inserted
		// Rows deduplicated on insert still count against the import.
		summary.Invalid += len(leads) - inserted
	}

	return summary, nil
}

func buildLead(userID int64, batchID string, columns map[string]int, record []string) (*models.Lead, error) {
	field := func(name string) string {
		i, ok := columns[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	lead := &models.Lead{
		UserID:      userID,
		BatchID:     batchID,
		FirstName:   field("first_name"),
		LastName:    field("last_name"),
		Email:       field("email"),
		Company:     field("company"),
		Title:       field("title"),
		Phone:       field("phone"),
		Website:     field("website"),
		LinkedinURL: field("linkedin_url"),
	}

	for _, required := range requiredLeadFields {
		if field(required) == "" {
			return nil, fmt.Errorf("missing %s", required)
		}
	}

	if _, err := mail.ParseAddress(lead.Email); err != nil {
		return nil, fmt.Errorf("invalid email %q", lead.Email)
	}

	return lead, nil
}

func (s *leadsService) ListBatches(ctx context.Context, userID int64) ([]string, error) {
	return s.l.ListBatchIDs(ctx, userID)
}

func (s *leadsService) ListBatch(ctx context.Context, userID int64, batchID string) ([]*models.Lead, error) {
	return s.l.ListByBatchID(ctx, userID, batchID)
}

func (s *leadsService) RemoveBatch(ctx context.Context, userID int64, batchID string) error {
	return s.l.RemoveBatch(ctx, userID, batchID)
}

// Push sends one imported batch through SmartLead: create the campaign, save
// the email item as the first sequence step, upload the leads, start.
func (s *leadsService) Push(ctx context.Context, userID int64, r *transfer.LeadPushRequest) (int64, error) {
	if r.BatchID == "" || r.CampaignName == "" || r.Subject == "" {
		return 0, errors.New("batch ID, campaign name and subject are required")
	}

	isUsers, err := s.ci.CheckByUserID(ctx, r.EmailItemID, userID)
	if err != nil {
		return 0, err
	}
	if !isUsers {
		return 0, errors.New("content item not found")
	}

	item, err := s.ci.GetByID(ctx, r.EmailItemID)
	if err != nil {
		return 0, err
	}

	if item.ContentType != models.ContentTypeEmailCopy {
		return 0, fmt.Errorf("content item %d is not email copy", r.EmailItemID)
	}

	leads, err := s.l.ListByBatchID(ctx, userID, r.BatchID)
	if err != nil {
		return 0, err
	}
	if len(leads) == 0 {
		return 0, errors.New("lead batch is empty")
	}

	campaignID, err := s.sl.CreateCampaign(ctx, r.CampaignName)
	if err != nil {
		return 0, err
	}

	if err := s.sl.SaveSequence(ctx, campaignID, r.Subject, item.GeneratedText); err != nil {
		return 0, err
	}

	slLeads := make([]transfer.SmartleadLead, 0, len(leads))
	for _, lead := range leads {
		slLeads = append(slLeads, transfer.SmartleadLead{
			FirstName:       lead.FirstName,
			LastName:        lead.LastName,
			Email:           lead.Email,
			CompanyName:     lead.Company,
			Title:           lead.Title,
			PhoneNumber:     lead.Phone,
			Website:         lead.Website,
			LinkedinProfile: lead.LinkedinURL,
		})
	}

	if _, err := s.sl.AddLeads(ctx, campaignID, slLeads); err != nil {
		return 0, err
	}

	if err := s.sl.StartCampaign(ctx, campaignID); err != nil {
		return 0, err
	}

	return campaignID, nil
}
