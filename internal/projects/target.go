package projects

import (
	"context"

	"github.com/google/go-github/v54/github"

	"github.com/temirov/issuebot/internal/githubapp"
)

const (
	getIssueOperationNameConstant       = githubapp.OperationName("GetIssue")
	getPullRequestOperationNameConstant = githubapp.OperationName("GetPullRequest")
	targetKindIssueValueConstant        = "issue"
	targetKindPullRequestValueConstant  = "pull_request"
)

// TargetKind distinguishes issues from pull requests.
type TargetKind string

// Target kinds.
const (
	TargetKindIssue       TargetKind = TargetKind(targetKindIssueValueConstant)
	TargetKindPullRequest TargetKind = TargetKind(targetKindPullRequestValueConstant)
)

// TargetRef identifies the issue or pull request attached to a project.
type TargetRef struct {
	Kind   TargetKind
	Number int
	NodeID string
}

// IssueGetter is the subset of the go-github issues service used for lookups.
type IssueGetter interface {
	Get(getContext context.Context, owner string, repository string, number int) (*github.Issue, *github.Response, error)
}

// PullRequestGetter is the subset of the go-github pull requests service used for lookups.
type PullRequestGetter interface {
	Get(getContext context.Context, owner string, repository string, number int) (*github.PullRequest, *github.Response, error)
}

// TargetLookup resolves human-facing numbers into node ids.
type TargetLookup struct {
	issues       IssueGetter
	pullRequests PullRequestGetter
}

// NewTargetLookup creates a lookup over the provided services.
func NewTargetLookup(issues IssueGetter, pullRequests PullRequestGetter) *TargetLookup {
	return &TargetLookup{issues: issues, pullRequests: pullRequests}
}

// LookupIssue fetches the issue by number within owner/repository.
func (lookup *TargetLookup) LookupIssue(lookupContext context.Context, repository RepositoryRef, number int) (TargetRef, error) {
	issue, response, getError := lookup.issues.Get(lookupContext, repository.Owner, repository.Name, number)
	if getError != nil {
		return TargetRef{}, githubapp.ClassifyResponseError(getIssueOperationNameConstant, response, getError)
	}
	if len(issue.GetNodeID()) == 0 {
		return TargetRef{}, githubapp.ResponseDecodingError{Operation: getIssueOperationNameConstant, Cause: ErrNodeIDMissing}
	}
	return TargetRef{Kind: TargetKindIssue, Number: number, NodeID: issue.GetNodeID()}, nil
}

// LookupPullRequest fetches the pull request by number within owner/repository.
func (lookup *TargetLookup) LookupPullRequest(lookupContext context.Context, repository RepositoryRef, number int) (TargetRef, error) {
	pullRequest, response, getError := lookup.pullRequests.Get(lookupContext, repository.Owner, repository.Name, number)
	if getError != nil {
		return TargetRef{}, githubapp.ClassifyResponseError(getPullRequestOperationNameConstant, response, getError)
	}
	if len(pullRequest.GetNodeID()) == 0 {
		return TargetRef{}, githubapp.ResponseDecodingError{Operation: getPullRequestOperationNameConstant, Cause: ErrNodeIDMissing}
	}
	return TargetRef{Kind: TargetKindPullRequest, Number: number, NodeID: pullRequest.GetNodeID()}, nil
}
