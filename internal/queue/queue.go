package queue

import (
	"context"
	"encoding/json"
	"log"

	"github.com/hibiken/asynq"
)

// Client wraps the asynq client with typed enqueue calls. It satisfies
// service.TaskEnqueuer.
type Client struct {
	asynqClient *asynq.Client
}

func NewClient(asynqClient *asynq.Client) *Client {
	return &Client{asynqClient: asynqClient}
}

func (c *Client) EnqueueGenerate(ctx context.Context, campaignID int64) error {
	payload := GenerateCampaignPayload{CampaignID: campaignID}

	taskPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypeGenerateCampaign, taskPayload)

	_, err = c.asynqClient.EnqueueContext(ctx, task, asynq.MaxRetry(3))
	if err != nil {
		return err
	}

	log.Printf("Task scheduled: %+v", payload)
	return nil
}

func (c *Client) EnqueuePublish(ctx context.Context, itemID int64) error {
	payload := PublishItemPayload{ItemID: itemID}

	taskPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypePublishItem, taskPayload)

	_, err = c.asynqClient.EnqueueContext(ctx, task, asynq.MaxRetry(3))
	if err != nil {
		return err
	}

	log.Printf("Task scheduled: %+v", payload)
	return nil
}
