package graphql

import (
	"context"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/shurcooL/githubv4"
	"go.uber.org/zap"
)

// DefaultGraphQLURL is the public GitHub GraphQL endpoint.
const DefaultGraphQLURL = "https://api.github.com/graphql"

const (
	logMessageAttachingIssueConstant       = "attaching issue to project"
	logMessageAttachingPullRequestConstant = "attaching pull request to project"
	logMessageAttachedConstant             = "project attachment mutation completed"
	logFieldNodeIDConstant                 = "node_id"
	logFieldProjectIDConstant              = "project_id"
	logFieldMutationConstant               = "mutation"
	updateIssueMutationNameConstant        = "updateIssue"
	updatePullRequestMutationNameConstant  = "updatePullRequest"
	mutationFailedTemplateConstant         = "%s mutation failed"
	mutationErrorsTemplateConstant         = "%s mutation failed: errors=%s"
	emptyNodeIDMessageTemplateConstant     = "%s requires non-empty node ids"
)

// UpdateIssueInput mirrors the GraphQL input object of the same name.
type UpdateIssueInput struct {
	ID         githubv4.ID   `json:"id"`
	ProjectIDs []githubv4.ID `json:"projectIds"`
}

// UpdatePullRequestInput mirrors the GraphQL input object of the same name.
type UpdatePullRequestInput struct {
	PullRequestID githubv4.ID   `json:"pullRequestId"`
	ProjectIDs    []githubv4.ID `json:"projectIds"`
}

// Mutator attaches issues and pull requests to classic projects.
type Mutator interface {
	AttachIssue(mutationContext context.Context, issueNodeID string, projectNodeID string) error
	AttachPullRequest(mutationContext context.Context, pullRequestNodeID string, projectNodeID string) error
}

// ProjectMutator issues project attachment mutations through githubv4.
type ProjectMutator struct {
	client *githubv4.Client
	logger *zap.Logger
}

// NewProjectMutator creates a mutator; httpClient must already carry the installation token.
func NewProjectMutator(logger *zap.Logger, httpClient *http.Client, graphQLURL string) *ProjectMutator {
	if logger == nil {
		logger = zap.NewNop()
	}

	capturingClient := newCapturingHTTPClient(httpClient)
	trimmedURL := strings.TrimSpace(graphQLURL)
	if len(trimmedURL) == 0 || trimmedURL == DefaultGraphQLURL {
		return &ProjectMutator{client: githubv4.NewClient(capturingClient), logger: logger}
	}

	return &ProjectMutator{client: githubv4.NewEnterpriseClient(trimmedURL, capturingClient), logger: logger}
}

// AttachIssue runs updateIssue with projectIds set to the single project.
func (mutator *ProjectMutator) AttachIssue(mutationContext context.Context, issueNodeID string, projectNodeID string) error {
	if len(issueNodeID) == 0 || len(projectNodeID) == 0 {
		return errors.Errorf(emptyNodeIDMessageTemplateConstant, updateIssueMutationNameConstant)
	}

	mutator.logger.Debug(
		logMessageAttachingIssueConstant,
		zap.String(logFieldNodeIDConstant, issueNodeID),
		zap.String(logFieldProjectIDConstant, projectNodeID),
	)

	var mutation struct {
		UpdateIssue struct {
			Issue struct {
				ID githubv4.ID
			}
		} `graphql:"updateIssue(input: $input)"`
	}

	input := UpdateIssueInput{
		ID:         githubv4.ID(issueNodeID),
		ProjectIDs: []githubv4.ID{githubv4.ID(projectNodeID)},
	}

	return mutator.mutate(mutationContext, updateIssueMutationNameConstant, &mutation, input)
}

// AttachPullRequest runs updatePullRequest with projectIds set to the single project.
func (mutator *ProjectMutator) AttachPullRequest(mutationContext context.Context, pullRequestNodeID string, projectNodeID string) error {
	if len(pullRequestNodeID) == 0 || len(projectNodeID) == 0 {
		return errors.Errorf(emptyNodeIDMessageTemplateConstant, updatePullRequestMutationNameConstant)
	}

	mutator.logger.Debug(
		logMessageAttachingPullRequestConstant,
		zap.String(logFieldNodeIDConstant, pullRequestNodeID),
		zap.String(logFieldProjectIDConstant, projectNodeID),
	)

	var mutation struct {
		UpdatePullRequest struct {
			PullRequest struct {
				ID githubv4.ID
			}
		} `graphql:"updatePullRequest(input: $input)"`
	}

	input := UpdatePullRequestInput{
		PullRequestID: githubv4.ID(pullRequestNodeID),
		ProjectIDs:    []githubv4.ID{githubv4.ID(projectNodeID)},
	}

	return mutator.mutate(mutationContext, updatePullRequestMutationNameConstant, &mutation, input)
}

// mutate surfaces non-2xx statuses and GraphQL errors arrays alike.
// A 2xx response with errors fails with the serialized errors array in the message.
func (mutator *ProjectMutator) mutate(mutationContext context.Context, mutationName string, mutation any, input githubv4.Input) error {
	captureContext, capture := withResponseCapture(mutationContext)
	if mutationError := mutator.client.Mutate(captureContext, mutation, input, nil); mutationError != nil {
		if errorsPayload := capture.errorsPayload(); len(errorsPayload) > 0 {
			return errors.Wrapf(mutationError, mutationErrorsTemplateConstant, mutationName, errorsPayload)
		}
		return errors.Wrapf(mutationError, mutationFailedTemplateConstant, mutationName)
	}

	mutator.logger.Info(logMessageAttachedConstant, zap.String(logFieldMutationConstant, mutationName))
	return nil
}
