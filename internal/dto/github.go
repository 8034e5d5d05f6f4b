package dto

import "github.com/yukikurage/corepm/internal/services"

// WebhookResponse is the acknowledgement of a webhook delivery
type WebhookResponse struct {
	Status  string   `json:"status"`
	Reason  string   `json:"reason,omitempty"`
	TaskID  *uint64  `json:"task_id,omitempty"`
	LinkIDs []uint64 `json:"link_ids,omitempty"`
}

func ToWebhookResponse(r *services.WebhookResult) WebhookResponse {
	return WebhookResponse{
		Status:  r.Status,
		Reason:  r.Reason,
		TaskID:  r.TaskID,
		LinkIDs: r.LinkIDs,
	}
}
