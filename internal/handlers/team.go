package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/corepm/internal/dto"
	apierrors "github.com/yukikurage/corepm/internal/errors"
	"github.com/yukikurage/corepm/internal/models"
	"github.com/yukikurage/corepm/internal/services"
	"github.com/yukikurage/corepm/internal/utils"
)

// TeamHandler serves teams and their members
type TeamHandler struct {
	teamService *services.TeamService
}

func NewTeamHandler(teamService *services.TeamService) *TeamHandler {
	return &TeamHandler{teamService: teamService}
}

func (h *TeamHandler) ListTeams(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	teams, total, err := h.teamService.ListTeams(c.Request.Context(), params)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPage(teams, total, params))
}

func (h *TeamHandler) GetTeam(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	team, err := h.teamService.GetTeam(c.Request.Context(), id)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, team)
}

// GetTeamBySlug looks a team up by its slug
func (h *TeamHandler) GetTeamBySlug(c *gin.Context) {
	team, err := h.teamService.GetTeamBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, team)
}

func (h *TeamHandler) CreateTeam(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required"`
		Slug        string `json:"slug"`
		Description string `json:"description"`
		Color       string `json:"color"`
	}
	if !bindJSON(c, &req) {
		return
	}

	team, err := h.teamService.CreateTeam(c.Request.Context(), services.CreateTeamInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Color:       req.Color,
	})
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, team)
}

func (h *TeamHandler) UpdateTeam(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Name        *string `json:"name"`
		Slug        *string `json:"slug"`
		Description *string `json:"description"`
		Color       *string `json:"color"`
	}
	if !bindJSON(c, &req) {
		return
	}

	team, err := h.teamService.UpdateTeam(c.Request.Context(), id, services.UpdateTeamInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Color:       req.Color,
	})
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, team)
}

// DeleteTeam deletes a team. Its tasks move to reassign_tasks_to (or the
// unassigned team) unless delete_tasks=true.
func (h *TeamHandler) DeleteTeam(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var query struct {
		ReassignTasksTo *uint64 `form:"reassign_tasks_to"`
		DeleteTasks     bool    `form:"delete_tasks"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		apierrors.BadRequest(c, "Invalid query parameters")
		return
	}

	result, err := h.teamService.DeleteTeam(c.Request.Context(), id, services.DeleteTeamInput{
		ReassignTasksTo: query.ReassignTasksTo,
		DeleteTasks:     query.DeleteTasks,
	})
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToDeleteTeamResponse(result))
}

func (h *TeamHandler) GetStats(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	stats, err := h.teamService.GetStats(c.Request.Context(), id)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTeamStatsDTO(stats))
}

func (h *TeamHandler) ListMembers(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	members, err := h.teamService.ListMembers(c.Request.Context(), id)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTeamMemberDTOs(members))
}

func (h *TeamHandler) AddMember(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		UserID uint64 `json:"user_id" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}

	member, err := h.teamService.AddMember(c.Request.Context(), id, req.UserID)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToTeamMemberDTOs([]models.TeamMember{*member})[0])
}

func (h *TeamHandler) RemoveMember(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	userID, ok := parseID(c, "user_id")
	if !ok {
		return
	}
	if err := h.teamService.RemoveMember(c.Request.Context(), id, userID); err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
