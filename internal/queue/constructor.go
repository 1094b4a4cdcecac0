package queue

import (
	"github.com/contentwell/contentwell/internal/service"
)

const (
	TaskTypeGenerateCampaign = "campaign:generate"
	TaskTypePublishItem      = "content:publish"
)

type GenerateCampaignPayload struct {
	CampaignID int64 `json:"campaign_id"`
}

type PublishItemPayload struct {
	ItemID int64 `json:"item_id"`
}

// Queue holds the services the worker handlers dispatch into.
type Queue struct {
	gen service.GenerationService
	pub service.PublishService
}

func NewQueue(gen service.GenerationService, pub service.PublishService) *Queue {
	return &Queue{
		gen: gen,
		pub: pub,
	}
}
