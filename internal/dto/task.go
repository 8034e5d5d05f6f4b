package dto

import "github.com/yukikurage/corepm/internal/services"

// TaskDraftDTO is an AI suggested task that has not been saved
type TaskDraftDTO struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Estimation  string `json:"estimation"`
}

// GenerateTasksResponse wraps the drafts produced from free text
type GenerateTasksResponse struct {
	Tasks []TaskDraftDTO `json:"tasks"`
}

func ToGenerateTasksResponse(drafts []services.TaskDraft) GenerateTasksResponse {
	out := make([]TaskDraftDTO, len(drafts))
	for i, d := range drafts {
		out[i] = TaskDraftDTO{Title: d.Title, Description: d.Description, Estimation: d.Estimation}
	}
	return GenerateTasksResponse{Tasks: out}
}
