package models

import (
	"time"
)

type GitHubLinkType string

const (
	GitHubLinkTypePullRequest GitHubLinkType = "pull_request"
	GitHubLinkTypeBranch      GitHubLinkType = "branch"
	GitHubLinkTypeCommit      GitHubLinkType = "commit"
)

// Valid reports whether t is a known link type.
func (t GitHubLinkType) Valid() bool {
	return t == GitHubLinkTypePullRequest || t == GitHubLinkTypeBranch || t == GitHubLinkTypeCommit
}

type PRStatus string

const (
	PRStatusOpen   PRStatus = "open"
	PRStatusClosed PRStatus = "closed"
	PRStatusMerged PRStatus = "merged"
	PRStatusDraft  PRStatus = "draft"
)

// Valid reports whether s is a known pull request status.
func (s PRStatus) Valid() bool {
	switch s {
	case PRStatusOpen, PRStatusClosed, PRStatusMerged, PRStatusDraft:
		return true
	}
	return false
}

type GitHubLink struct {
	ID              uint64         `gorm:"primarykey" json:"id"`
	TaskID          uint64         `gorm:"not null;index" json:"task_id"`
	LinkType        GitHubLinkType `gorm:"type:varchar(20);not null" json:"link_type"`
	RepositoryOwner string         `gorm:"type:varchar(255);not null;index:idx_github_links_pr,priority:1" json:"repository_owner"`
	RepositoryName  string         `gorm:"type:varchar(255);not null;index:idx_github_links_pr,priority:2" json:"repository_name"`
	URL             string         `gorm:"type:varchar(500);not null" json:"url"`
	PRNumber        *int           `gorm:"index:idx_github_links_pr,priority:3" json:"pr_number"`
	PRTitle         string         `gorm:"type:varchar(500)" json:"pr_title"`
	PRStatus        *PRStatus      `gorm:"type:varchar(20)" json:"pr_status"`
	BranchName      string         `gorm:"type:varchar(255)" json:"branch_name"`
	CommitSHA       string         `gorm:"type:varchar(64)" json:"commit_sha"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// TableName keeps "GitHub" as one word in the table and index names.
func (GitHubLink) TableName() string {
	return "github_links"
}
