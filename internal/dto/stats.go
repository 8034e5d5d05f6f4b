package dto

import "github.com/yukikurage/corepm/internal/services"

// TypeStatsDTO describes how the work-items of a type are spread over statuses
type TypeStatsDTO struct {
	TypeID        uint64         `json:"type_id"`
	TypeName      string         `json:"type_name"`
	Workflow      []string       `json:"workflow"`
	TotalItems    int            `json:"total_items"`
	ItemsByStatus map[string]int `json:"items_by_status"`
}

// MigrationResultDTO reports a finished type migration
type MigrationResultDTO struct {
	SourceTypeID  uint64 `json:"source_type_id"`
	TargetTypeID  uint64 `json:"target_type_id"`
	MigratedCount int    `json:"migrated_count"`
}

// TeamStatsDTO describes a team's tasks
type TeamStatsDTO struct {
	TeamID           uint64         `json:"team_id"`
	TeamName         string         `json:"team_name"`
	TaskCount        int            `json:"task_count"`
	TaskTypeCount    int64          `json:"task_type_count"`
	IsUnassignedTeam bool           `json:"is_unassigned_team"`
	TasksByStatus    map[string]int `json:"tasks_by_status"`
}

// DeleteTeamResponse reports what happened to a deleted team's tasks
type DeleteTeamResponse struct {
	TeamID          uint64  `json:"team_id"`
	TasksDeleted    int     `json:"tasks_deleted"`
	TasksReassigned int     `json:"tasks_reassigned"`
	ReassignedTo    *uint64 `json:"reassigned_to"`
}

func ToTypeStatsDTO(s *services.TypeStats) TypeStatsDTO {
	return TypeStatsDTO{
		TypeID:        s.TypeID,
		TypeName:      s.TypeName,
		Workflow:      s.Workflow,
		TotalItems:    s.TotalItems,
		ItemsByStatus: s.ItemsByStatus,
	}
}

func ToMigrationResultDTO(r *services.MigrationResult) MigrationResultDTO {
	return MigrationResultDTO{
		SourceTypeID:  r.SourceTypeID,
		TargetTypeID:  r.TargetTypeID,
		MigratedCount: r.MigratedCount,
	}
}

func ToTeamStatsDTO(s *services.TeamStats) TeamStatsDTO {
	return TeamStatsDTO{
		TeamID:           s.TeamID,
		TeamName:         s.TeamName,
		TaskCount:        s.TaskCount,
		TaskTypeCount:    s.TaskTypeCount,
		IsUnassignedTeam: s.IsUnassignedTeam,
		TasksByStatus:    s.TasksByStatus,
	}
}

func ToDeleteTeamResponse(r *services.DeleteTeamResult) DeleteTeamResponse {
	return DeleteTeamResponse{
		TeamID:          r.TeamID,
		TasksDeleted:    r.TasksDeleted,
		TasksReassigned: r.TasksReassigned,
		ReassignedTo:    r.ReassignedTo,
	}
}
