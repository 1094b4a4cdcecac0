package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/contentwell/contentwell/internal/transfer"
)

func newTestSmartlead(t *testing.T, handler http.Handler) (*smartleadService, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &smartleadService{
		apiKey:  "test-key",
		baseURL: srv.URL,
		client:  srv.Client(),
	}, srv
}

func TestSmartleadCreateCampaign(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/campaigns/create", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("api_key") != "test-key" {
			t.Errorf("api_key query missing")
		}
		var payload map[string]string
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("bad payload: %v", err)
		}
		if payload["name"] != "Outreach" {
			t.Errorf("campaign name: got %q", payload["name"])
		}
		json.NewEncoder(w).Encode(transfer.SmartleadCampaignResponse{OK: true, ID: 555})
	})

	s, _ := newTestSmartlead(t, mux)

	id, err := s.CreateCampaign(context.Background(), "Outreach")
	if err != nil {
		t.Fatalf("CreateCampaign error: %v", err)
	}
	if id != 555 {
		t.Fatalf("campaign ID: got %d want 555", id)
	}
}

func TestSmartleadCreateCampaign_NoID(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/campaigns/create", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(transfer.SmartleadCampaignResponse{OK: false})
	})

	s, _ := newTestSmartlead(t, mux)

	if _, err := s.CreateCampaign(context.Background(), "Outreach"); err == nil {
		t.Fatalf("expected error for missing campaign ID, got nil")
	}
}

func TestSmartleadSaveSequence(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/campaigns/555/sequences", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Sequences []transfer.SmartleadSequence `json:"sequences"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("bad payload: %v", err)
		}
		if len(payload.Sequences) != 1 {
			t.Errorf("sequences: got %d want 1", len(payload.Sequences))
		}
		seq := payload.Sequences[0]
		if seq.SeqNumber != 1 || seq.Subject != "Hello" || seq.EmailBody != "Body" {
			t.Errorf("unexpected sequence: %+v", seq)
		}
		json.NewEncoder(w).Encode(transfer.SmartleadStatusResponse{OK: true})
	})

	s, _ := newTestSmartlead(t, mux)

	if err := s.SaveSequence(context.Background(), 555, "Hello", "Body"); err != nil {
		t.Fatalf("SaveSequence error: %v", err)
	}
}

func TestSmartleadAddLeads_Chunking(t *testing.T) {
	t.Parallel()

	var requests int
	mux := http.NewServeMux()
	mux.HandleFunc("/campaigns/555/leads", func(w http.ResponseWriter, r *http.Request) {
		requests++
		var payload transfer.SmartleadAddLeadsRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("bad payload: %v", err)
		}
		if len(payload.LeadList) > smartleadLeadChunk {
			t.Errorf("chunk of %d exceeds the limit", len(payload.LeadList))
		}
		json.NewEncoder(w).Encode(transfer.SmartleadAddLeadsResponse{
			OK:          true,
			UploadCount: len(payload.LeadList),
		})
	})

	s, _ := newTestSmartlead(t, mux)

	leads := make([]transfer.SmartleadLead, 250)
	for i := range leads {
		leads[i] = transfer.SmartleadLead{Email: fmt.Sprintf("lead%d@example.com", i)}
	}

	result, err := s.AddLeads(context.Background(), 555, leads)
	if err != nil {
		t.Fatalf("AddLeads error: %v", err)
	}

	if requests != 3 {
		t.Fatalf("requests: got %d want 3", requests)
	}
	if result.UploadCount != 250 {
		t.Fatalf("upload count: got %d want 250", result.UploadCount)
	}
}

func TestSmartleadStartCampaign(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/campaigns/555/status", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("bad payload: %v", err)
		}
		if payload["status"] != "START" {
			t.Errorf("status: got %q want START", payload["status"])
		}
		json.NewEncoder(w).Encode(transfer.SmartleadStatusResponse{OK: true})
	})

	s, _ := newTestSmartlead(t, mux)

	if err := s.StartCampaign(context.Background(), 555); err != nil {
		t.Fatalf("StartCampaign error: %v", err)
	}
}

func TestSmartlead_MissingAPIKey(t *testing.T) {
	t.Parallel()

	s := &smartleadService{client: http.DefaultClient}

	if _, err := s.CreateCampaign(context.Background(), "Outreach"); err == nil {
		t.Fatalf("expected error without an API key, got nil")
	}
}

func TestSmartlead_ErrorResponse(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/campaigns/create", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"plan limit reached"}`, http.StatusForbidden)
	})

	s, _ := newTestSmartlead(t, mux)

	if _, err := s.CreateCampaign(context.Background(), "Outreach"); err == nil {
		t.Fatalf("expected error for a 403 response, got nil")
	}
}
