package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/go-github/v82/github"
	"github.com/yukikurage/corepm/internal/models"
	"github.com/yukikurage/corepm/internal/repository"
	"github.com/yukikurage/corepm/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Webhook outcomes
const (
	WebhookStatusLinked  = "linked"
	WebhookStatusUpdated = "updated"
	WebhookStatusIgnored = "ignored"
)

const sha256SignaturePrefix = "sha256="

// WebhookResult describes how an inbound webhook delivery was handled
type WebhookResult struct {
	Status  string
	Reason  string
	TaskID  *uint64
	LinkIDs []uint64
}

// GitHubServiceConfig holds the settings of the GitHub link reconciler
type GitHubServiceConfig struct {
	TicketPrefix  string
	WebhookSecret string
}

// GitHubService links pull requests to tasks and manages GitHub links
type GitHubService struct {
	store    *repository.Store
	log      *zap.Logger
	secret   []byte
	ticketRe *regexp.Regexp
}

// NewGitHubService creates a new GitHubService.
// The ticket pattern is the literal prefix followed by "-" and digits, with no word boundary.
func NewGitHubService(store *repository.Store, log *zap.Logger, cfg GitHubServiceConfig) *GitHubService {
	return &GitHubService{
		store:    store,
		log:      log,
		secret:   []byte(cfg.WebhookSecret),
		ticketRe: regexp.MustCompile(regexp.QuoteMeta(cfg.TicketPrefix) + `-\d+`),
	}
}

// ExtractTicketID returns the first ticket id found in title, then in body.
func (s *GitHubService) ExtractTicketID(title, body string) (string, bool) {
	if id := s.ticketRe.FindString(title); id != "" {
		return id, true
	}
	if id := s.ticketRe.FindString(body); id != "" {
		return id, true
	}
	return "", false
}

// VerifySignature checks the X-Hub-Signature-256 value of a delivery.
// Only sha256= signatures are accepted. Without a configured secret every delivery is accepted.
func (s *GitHubService) VerifySignature(signature string, payload []byte) error {
	if len(s.secret) == 0 {
		return nil
	}
	if !strings.HasPrefix(signature, sha256SignaturePrefix) {
		s.log.Warn("rejected webhook delivery without sha256 signature")
		return authenticationError("invalid webhook signature")
	}
	if err := github.ValidateSignature(signature, payload, s.secret); err != nil {
		s.log.Warn("rejected webhook delivery", zap.Error(err))
		return authenticationError("invalid webhook signature")
	}
	return nil
}

// HandleWebhook verifies and processes a webhook delivery.
// Only pull_request events change state; everything else is acknowledged as ignored.
func (s *GitHubService) HandleWebhook(ctx context.Context, eventType, signature string, payload []byte) (*WebhookResult, error) {
	if err := s.VerifySignature(signature, payload); err != nil {
		return nil, err
	}

	if eventType != "pull_request" {
		return ignored(fmt.Sprintf("event %q is not handled", eventType)), nil
	}

	event, err := github.ParseWebHook(eventType, payload)
	if err != nil {
		return nil, validationError("invalid webhook payload", map[string]interface{}{"error": err.Error()})
	}
	prEvent, ok := event.(*github.PullRequestEvent)
	if !ok || prEvent.GetPullRequest() == nil {
		return nil, validationError("invalid pull_request payload", nil)
	}

	result, err := s.handlePullRequest(ctx, prEvent)
	if err != nil {
		return nil, err
	}

	s.log.Info("processed pull_request webhook",
		zap.String("action", prEvent.GetAction()),
		zap.String("repository", prEvent.GetRepo().GetFullName()),
		zap.Int("pr_number", pullRequestNumber(prEvent)),
		zap.String("status", result.Status),
		zap.String("reason", result.Reason),
	)
	return result, nil
}

func (s *GitHubService) handlePullRequest(ctx context.Context, event *github.PullRequestEvent) (*WebhookResult, error) {
	switch action := event.GetAction(); action {
	case "opened", "reopened":
		return s.linkPullRequest(ctx, event)
	case "closed", "edited", "synchronize", "converted_to_draft", "ready_for_review":
		return s.updatePullRequestLinks(ctx, event)
	default:
		return ignored(fmt.Sprintf("action %q is not handled", action)), nil
	}
}

// linkPullRequest creates a link for the task named in the PR title or body.
// Repeated deliveries create additional links.
func (s *GitHubService) linkPullRequest(ctx context.Context, event *github.PullRequestEvent) (*WebhookResult, error) {
	pr := event.GetPullRequest()
	ticketID, found := s.ExtractTicketID(pr.GetTitle(), pr.GetBody())
	if !found {
		return ignored("no ticket id found in pull request"), nil
	}

	var result *WebhookResult
	err := s.store.Transaction(ctx, func(repos *repository.Repositories) error {
		task, err := repos.Tasks.FindByDisplayID(ticketID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				result = ignored(fmt.Sprintf("task %s not found", ticketID))
				return nil
			}
			return fmt.Errorf("failed to find task: %w", err)
		}

		number := pullRequestNumber(event)
		status := pullRequestStatus(pr)
		link := &models.GitHubLink{
			TaskID:          task.ID,
			LinkType:        models.GitHubLinkTypePullRequest,
			RepositoryOwner: event.GetRepo().GetOwner().GetLogin(),
			RepositoryName:  event.GetRepo().GetName(),
			URL:             pr.GetHTMLURL(),
			PRNumber:        &number,
			PRTitle:         pr.GetTitle(),
			PRStatus:        &status,
			BranchName:      pr.GetHead().GetRef(),
			CommitSHA:       pr.GetHead().GetSHA(),
		}
		if err := repos.GitHubLinks.Create(link); err != nil {
			return fmt.Errorf("failed to create github link: %w", err)
		}

		taskID := task.ID
		result = &WebhookResult{Status: WebhookStatusLinked, TaskID: &taskID, LinkIDs: []uint64{link.ID}}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// updatePullRequestLinks refreshes status and title of every link for the PR.
func (s *GitHubService) updatePullRequestLinks(ctx context.Context, event *github.PullRequestEvent) (*WebhookResult, error) {
	pr := event.GetPullRequest()
	owner := event.GetRepo().GetOwner().GetLogin()
	name := event.GetRepo().GetName()
	number := pullRequestNumber(event)

	var result *WebhookResult
	err := s.store.Transaction(ctx, func(repos *repository.Repositories) error {
		links, err := repos.GitHubLinks.FindByPR(owner, name, number)
		if err != nil {
			return fmt.Errorf("failed to find github links: %w", err)
		}
		if len(links) == 0 {
			result = ignored(fmt.Sprintf("no link for %s/%s#%d", owner, name, number))
			return nil
		}

		status := pullRequestStatus(pr)
		result = &WebhookResult{Status: WebhookStatusUpdated}
		for i := range links {
			link := &links[i]
			link.PRStatus = &status
			if title := pr.GetTitle(); title != "" {
				link.PRTitle = title
			}
			if sha := pr.GetHead().GetSHA(); sha != "" {
				link.CommitSHA = sha
			}
			if err := repos.GitHubLinks.Update(link); err != nil {
				return fmt.Errorf("failed to update github link: %w", err)
			}
			result.LinkIDs = append(result.LinkIDs, link.ID)
		}
		taskID := links[0].TaskID
		result.TaskID = &taskID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CreateLinkInput represents input for creating a link by hand
type CreateLinkInput struct {
	TaskID          uint64
	LinkType        models.GitHubLinkType
	RepositoryOwner string
	RepositoryName  string
	URL             string
	PRNumber        *int
	PRTitle         string
	PRStatus        *models.PRStatus
	BranchName      string
	CommitSHA       string
}

// CreateLink attaches a GitHub link to a task
func (s *GitHubService) CreateLink(ctx context.Context, input CreateLinkInput) (*models.GitHubLink, error) {
	if !input.LinkType.Valid() {
		return nil, validationError("unknown link type", map[string]interface{}{"link_type": input.LinkType})
	}
	if input.PRStatus != nil && !input.PRStatus.Valid() {
		return nil, validationError("unknown pull request status", map[string]interface{}{"pr_status": *input.PRStatus})
	}
	if strings.TrimSpace(input.RepositoryOwner) == "" || strings.TrimSpace(input.RepositoryName) == "" {
		return nil, validationError("repository owner and name are required", nil)
	}
	if input.LinkType == models.GitHubLinkTypePullRequest && input.PRNumber == nil {
		return nil, validationError("pull request links need a pr_number", nil)
	}

	link := &models.GitHubLink{
		TaskID:          input.TaskID,
		LinkType:        input.LinkType,
		RepositoryOwner: input.RepositoryOwner,
		RepositoryName:  input.RepositoryName,
		URL:             input.URL,
		PRNumber:        input.PRNumber,
		PRTitle:         input.PRTitle,
		PRStatus:        input.PRStatus,
		BranchName:      input.BranchName,
		CommitSHA:       input.CommitSHA,
	}

	err := s.store.Transaction(ctx, func(repos *repository.Repositories) error {
		exists, err := repos.Tasks.Exists(input.TaskID)
		if err != nil {
			return fmt.Errorf("failed to find task: %w", err)
		}
		if !exists {
			return notFound("Task", input.TaskID)
		}
		if err := repos.GitHubLinks.Create(link); err != nil {
			return fmt.Errorf("failed to create github link: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return link, nil
}

// GetLink returns a GitHub link
func (s *GitHubService) GetLink(ctx context.Context, id uint64) (*models.GitHubLink, error) {
	link, err := s.store.Repos(ctx).GitHubLinks.FindByID(id)
	if err != nil {
		return nil, lookupError(err, "GitHubLink", id)
	}
	return link, nil
}

// ListLinks returns links, optionally for a single task
func (s *GitHubService) ListLinks(ctx context.Context, taskID uint64, page utils.PaginationParams) ([]models.GitHubLink, int64, error) {
	links, total, err := s.store.Repos(ctx).GitHubLinks.List(repository.GitHubLinkFilter{TaskID: taskID, Page: page})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list github links: %w", err)
	}
	return links, total, nil
}

// DeleteLink deletes a GitHub link
func (s *GitHubService) DeleteLink(ctx context.Context, id uint64) error {
	return s.store.Transaction(ctx, func(repos *repository.Repositories) error {
		if _, err := repos.GitHubLinks.FindByID(id); err != nil {
			return lookupError(err, "GitHubLink", id)
		}
		if err := repos.GitHubLinks.Delete(id); err != nil {
			return fmt.Errorf("failed to delete github link: %w", err)
		}
		return nil
	})
}

// pullRequestStatus derives the link status: merged, then draft, then closed, else open.
func pullRequestStatus(pr *github.PullRequest) models.PRStatus {
	switch {
	case pr.GetMerged():
		return models.PRStatusMerged
	case pr.GetDraft():
		return models.PRStatusDraft
	case pr.GetState() == "closed":
		return models.PRStatusClosed
	default:
		return models.PRStatusOpen
	}
}

func pullRequestNumber(event *github.PullRequestEvent) int {
	if n := event.GetNumber(); n != 0 {
		return n
	}
	return event.GetPullRequest().GetNumber()
}

func ignored(reason string) *WebhookResult {
	return &WebhookResult{Status: WebhookStatusIgnored, Reason: reason}
}
