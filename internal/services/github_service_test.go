package services

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/google/go-github/v82/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/corepm/internal/models"
	"go.uber.org/zap"
)

const testWebhookSecret = "s3cret"

type prPayload struct {
	action string
	number int
	title  string
	body   string
	state  string
	merged bool
	draft  bool
}

func (p prPayload) marshal(t *testing.T) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"action": p.action,
		"number": p.number,
		"pull_request": map[string]interface{}{
			"number":   p.number,
			"title":    p.title,
			"body":     p.body,
			"state":    p.state,
			"merged":   p.merged,
			"draft":    p.draft,
			"html_url": "https://github.com/acme/core/pull/42",
			"head":     map[string]interface{}{"ref": "feature/login", "sha": "abc123"},
		},
		"repository": map[string]interface{}{
			"name":      "core",
			"full_name": "acme/core",
			"owner":     map[string]interface{}{"login": "acme"},
		},
	})
	require.NoError(t, err)
	return body
}

func sign(payload []byte) string {
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func newTestGitHubService(env serviceTestEnv) *GitHubService {
	return NewGitHubService(env.store, zap.NewNop(), GitHubServiceConfig{
		TicketPrefix:  testTicketPrefix,
		WebhookSecret: testWebhookSecret,
	})
}

func TestGitHubService_ExtractTicketID(t *testing.T) {
	svc := NewGitHubService(nil, zap.NewNop(), GitHubServiceConfig{TicketPrefix: "CORE"})

	tests := []struct {
		name  string
		title string
		body  string
		want  string
		found bool
	}{
		{"title", "CORE-12: fix login", "", "CORE-12", true},
		{"title wins over body", "CORE-1 first", "closes CORE-2", "CORE-1", true},
		{"body", "fix login", "Implements CORE-7.", "CORE-7", true},
		{"first in title", "CORE-3 and CORE-4", "", "CORE-3", true},
		{"no boundary before prefix", "XCORE-12", "", "CORE-12", true},
		{"case sensitive", "core-12", "", "", false},
		{"digits required", "CORE-", "", "", false},
		{"nothing", "", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := svc.ExtractTicketID(tt.title, tt.body)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.want, got)
		})
	}

	dotted := NewGitHubService(nil, zap.NewNop(), GitHubServiceConfig{TicketPrefix: "A.B"})
	_, found := dotted.ExtractTicketID("AxB-1", "")
	assert.False(t, found)
}

func TestGitHubService_PullRequestStatus(t *testing.T) {
	tests := []struct {
		name string
		pr   *github.PullRequest
		want models.PRStatus
	}{
		{"open", &github.PullRequest{State: github.Ptr("open")}, models.PRStatusOpen},
		{"draft", &github.PullRequest{State: github.Ptr("open"), Draft: github.Ptr(true)}, models.PRStatusDraft},
		{"closed", &github.PullRequest{State: github.Ptr("closed")}, models.PRStatusClosed},
		{"merged", &github.PullRequest{State: github.Ptr("closed"), Merged: github.Ptr(true)}, models.PRStatusMerged},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pullRequestStatus(tt.pr))
		})
	}
}

func TestGitHubService_WebhookLifecycle(t *testing.T) {
	env := setupServiceTestEnv(t)
	svc := newTestGitHubService(env)
	team, tt := env.createTeamWithType(t, "Platform", "Todo")
	task := env.createTask(t, team.ID, tt.ID, "Login", "")
	require.Equal(t, "CORE-1", task.DisplayID)

	opened := prPayload{action: "opened", number: 42, title: "CORE-1: login page", state: "open"}.marshal(t)
	result, err := svc.HandleWebhook(env.ctx, "pull_request", sign(opened), opened)
	require.NoError(t, err)
	assert.Equal(t, WebhookStatusLinked, result.Status)
	require.NotNil(t, result.TaskID)
	assert.Equal(t, task.ID, *result.TaskID)
	require.Len(t, result.LinkIDs, 1)

	link, err := svc.GetLink(env.ctx, result.LinkIDs[0])
	require.NoError(t, err)
	assert.Equal(t, models.GitHubLinkTypePullRequest, link.LinkType)
	assert.Equal(t, "acme", link.RepositoryOwner)
	assert.Equal(t, "core", link.RepositoryName)
	require.NotNil(t, link.PRNumber)
	assert.Equal(t, 42, *link.PRNumber)
	require.NotNil(t, link.PRStatus)
	assert.Equal(t, models.PRStatusOpen, *link.PRStatus)
	assert.Equal(t, "feature/login", link.BranchName)

	merged := prPayload{action: "closed", number: 42, title: "CORE-1: login page", state: "closed", merged: true}.marshal(t)
	result, err = svc.HandleWebhook(env.ctx, "pull_request", sign(merged), merged)
	require.NoError(t, err)
	assert.Equal(t, WebhookStatusUpdated, result.Status)
	assert.Equal(t, []uint64{link.ID}, result.LinkIDs)

	link, err = svc.GetLink(env.ctx, link.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PRStatusMerged, *link.PRStatus)

	links, total, err := svc.ListLinks(env.ctx, task.ID, paginationAll())
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, links, 1)

	// Deleting the task removes its links.
	require.NoError(t, env.tasks.DeleteTask(env.ctx, task.ID))
	_, err = svc.GetLink(env.ctx, link.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGitHubService_WebhookIgnored(t *testing.T) {
	env := setupServiceTestEnv(t)
	svc := newTestGitHubService(env)

	tests := []struct {
		name      string
		eventType string
		payload   []byte
		reason    string
	}{
		{
			name:      "unknown task",
			eventType: "pull_request",
			payload:   prPayload{action: "opened", number: 1, title: "CORE-9 fix", state: "open"}.marshal(t),
			reason:    "task CORE-9 not found",
		},
		{
			name:      "no ticket id",
			eventType: "pull_request",
			payload:   prPayload{action: "opened", number: 1, title: "fix typo", state: "open"}.marshal(t),
			reason:    "no ticket id found in pull request",
		},
		{
			name:      "unhandled action",
			eventType: "pull_request",
			payload:   prPayload{action: "labeled", number: 1, title: "CORE-1", state: "open"}.marshal(t),
			reason:    `action "labeled" is not handled`,
		},
		{
			name:      "unlinked pull request",
			eventType: "pull_request",
			payload:   prPayload{action: "closed", number: 7, title: "CORE-1", state: "closed"}.marshal(t),
			reason:    "no link for acme/core#7",
		},
		{
			name:      "other event",
			eventType: "push",
			payload:   []byte(`{"ref":"refs/heads/main"}`),
			reason:    `event "push" is not handled`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.HandleWebhook(env.ctx, tt.eventType, sign(tt.payload), tt.payload)
			require.NoError(t, err)
			assert.Equal(t, WebhookStatusIgnored, result.Status)
			assert.Equal(t, tt.reason, result.Reason)
			assert.Nil(t, result.TaskID)
		})
	}
}

func TestGitHubService_WebhookSignature(t *testing.T) {
	env := setupServiceTestEnv(t)
	svc := newTestGitHubService(env)
	payload := prPayload{action: "opened", number: 1, title: "CORE-1", state: "open"}.marshal(t)

	_, err := svc.HandleWebhook(env.ctx, "pull_request", "", payload)
	require.ErrorIs(t, err, ErrAuthentication)

	_, err = svc.HandleWebhook(env.ctx, "pull_request", "sha256=deadbeef", payload)
	require.ErrorIs(t, err, ErrAuthentication)

	open := NewGitHubService(env.store, zap.NewNop(), GitHubServiceConfig{TicketPrefix: testTicketPrefix})
	result, err := open.HandleWebhook(env.ctx, "pull_request", "", payload)
	require.NoError(t, err)
	assert.Equal(t, WebhookStatusIgnored, result.Status)

	_, err = open.HandleWebhook(env.ctx, "pull_request", "", []byte("{not json"))
	require.ErrorIs(t, err, ErrValidation)
}

func TestGitHubService_WebhookRejectsSHA1Signature(t *testing.T) {
	env := setupServiceTestEnv(t)
	svc := newTestGitHubService(env)
	payload := prPayload{action: "opened", number: 1, title: "CORE-1", state: "open"}.marshal(t)

	mac := hmac.New(sha1.New, []byte(testWebhookSecret))
	mac.Write(payload)
	legacy := "sha1=" + hex.EncodeToString(mac.Sum(nil))

	result, err := svc.HandleWebhook(env.ctx, "pull_request", legacy, payload)
	require.ErrorIs(t, err, ErrAuthentication)
	assert.Nil(t, result)

	// The same payload with a sha256 signature is accepted.
	result, err = svc.HandleWebhook(env.ctx, "pull_request", sign(payload), payload)
	require.NoError(t, err)
	assert.Equal(t, WebhookStatusIgnored, result.Status)
}

func TestGitHubService_CreateLink(t *testing.T) {
	env := setupServiceTestEnv(t)
	svc := newTestGitHubService(env)
	team, tt := env.createTeamWithType(t, "Platform", "Todo")
	task := env.createTask(t, team.ID, tt.ID, "Login", "")

	_, err := svc.CreateLink(env.ctx, CreateLinkInput{TaskID: task.ID, LinkType: "issue", RepositoryOwner: "acme", RepositoryName: "core"})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateLink(env.ctx, CreateLinkInput{TaskID: task.ID, LinkType: models.GitHubLinkTypePullRequest, RepositoryOwner: "acme", RepositoryName: "core"})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateLink(env.ctx, CreateLinkInput{TaskID: 9999, LinkType: models.GitHubLinkTypeBranch, RepositoryOwner: "acme", RepositoryName: "core"})
	require.ErrorIs(t, err, ErrNotFound)

	link, err := svc.CreateLink(env.ctx, CreateLinkInput{
		TaskID:          task.ID,
		LinkType:        models.GitHubLinkTypeBranch,
		RepositoryOwner: "acme",
		RepositoryName:  "core",
		BranchName:      "feature/login",
	})
	require.NoError(t, err)
	assert.Nil(t, link.PRNumber)

	require.NoError(t, svc.DeleteLink(env.ctx, link.ID))
	require.ErrorIs(t, svc.DeleteLink(env.ctx, link.ID), ErrNotFound)
}
