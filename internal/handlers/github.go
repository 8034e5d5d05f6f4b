package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/go-github/v82/github"
	"github.com/yukikurage/corepm/internal/dto"
	apierrors "github.com/yukikurage/corepm/internal/errors"
	"github.com/yukikurage/corepm/internal/models"
	"github.com/yukikurage/corepm/internal/services"
	"github.com/yukikurage/corepm/internal/utils"
	"go.uber.org/zap"
)

const maxWebhookBody = 5 << 20

// GitHubHandler receives webhooks and manages task links
type GitHubHandler struct {
	githubService *services.GitHubService
	log           *zap.Logger
}

func NewGitHubHandler(githubService *services.GitHubService, log *zap.Logger) *GitHubHandler {
	return &GitHubHandler{githubService: githubService, log: log}
}

// Webhook handles a GitHub delivery. The raw body is needed for the signature check.
func (h *GitHubHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		apierrors.BadRequest(c, "Failed to read request body")
		return
	}

	result, err := h.githubService.HandleWebhook(
		c.Request.Context(),
		c.GetHeader(github.EventTypeHeader),
		c.GetHeader(github.SHA256SignatureHeader),
		payload,
	)
	if err != nil {
		h.log.Warn("webhook rejected",
			zap.String("delivery", c.GetHeader(github.DeliveryIDHeader)),
			zap.Error(err))
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToWebhookResponse(result))
}

// ListLinks returns links, optionally for one ?task_id=
func (h *GitHubHandler) ListLinks(c *gin.Context) {
	taskID, ok := queryID(c, "task_id")
	if !ok {
		return
	}
	params := utils.GetPaginationParams(c)
	links, total, err := h.githubService.ListLinks(c.Request.Context(), taskID, params)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPage(links, total, params))
}

func (h *GitHubHandler) GetLink(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	link, err := h.githubService.GetLink(c.Request.Context(), id)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, link)
}

func (h *GitHubHandler) CreateLink(c *gin.Context) {
	var req struct {
		TaskID          uint64                `json:"task_id" binding:"required"`
		LinkType        models.GitHubLinkType `json:"link_type" binding:"required"`
		RepositoryOwner string                `json:"repository_owner" binding:"required"`
		RepositoryName  string                `json:"repository_name" binding:"required"`
		URL             string                `json:"url" binding:"required"`
		PRNumber        *int                  `json:"pr_number"`
		PRTitle         string                `json:"pr_title"`
		PRStatus        *models.PRStatus      `json:"pr_status"`
		BranchName      string                `json:"branch_name"`
		CommitSHA       string                `json:"commit_sha"`
	}
	if !bindJSON(c, &req) {
		return
	}

	link, err := h.githubService.CreateLink(c.Request.Context(), services.CreateLinkInput{
		TaskID:          req.TaskID,
		LinkType:        req.LinkType,
		RepositoryOwner: req.RepositoryOwner,
		RepositoryName:  req.RepositoryName,
		URL:             req.URL,
		PRNumber:        req.PRNumber,
		PRTitle:         req.PRTitle,
		PRStatus:        req.PRStatus,
		BranchName:      req.BranchName,
		CommitSHA:       req.CommitSHA,
	})
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, link)
}

func (h *GitHubHandler) DeleteLink(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.githubService.DeleteLink(c.Request.Context(), id); err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
