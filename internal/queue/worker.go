package queue

import (
	"context"
	"encoding/json"
	"log"

	"github.com/hibiken/asynq"
)

func (j *Queue) HandleGenerateCampaignTask(ctx context.Context, task *asynq.Task) error {
	var payload GenerateCampaignPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	if err := j.gen.GenerateCampaign(ctx, payload.CampaignID); err != nil {
		log.Printf("Error generating campaign %d: %v", payload.CampaignID, err)
		return err
	}

	return nil
}

func (j *Queue) HandlePublishItemTask(ctx context.Context, task *asynq.Task) error {
	var payload PublishItemPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	if err := j.pub.Publish(ctx, payload.ItemID); err != nil {
		log.Printf("Error publishing item %d: %v", payload.ItemID, err)
		return err
	}

	return nil
}
