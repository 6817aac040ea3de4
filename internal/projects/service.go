package projects

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/issuebot/internal/githubapp"
	"github.com/temirov/issuebot/internal/githubauth"
	"github.com/temirov/issuebot/internal/graphql"
)

const (
	projectNameFieldNameConstant          = "project"
	issueNumberFieldNameConstant          = "issue"
	pullRequestNumberFieldNameConstant    = "pull-request"
	targetRequiredFieldNameConstant       = "target"
	projectNameMissingMessageConstant     = "project name must be non-empty"
	negativeNumberMessageConstant         = "number must be positive"
	targetRequiredMessageConstant         = "one of --issue or --pull-request is required"
	logMessageAttachmentStartedConstant   = "adding to project"
	logMessageBothTargetsConstant         = "both issue and pull request supplied; using the issue"
	logMessageNoTargetConstant            = "neither issue nor pull request supplied; nothing to attach"
	logMessageTargetResolvedConstant      = "target resolved"
	logMessageAttachmentCompletedConstant = "added to project"
	logFieldRepositoryConstant            = "repository"
	logFieldOrganizationConstant          = "organization"
	logFieldProjectConstant               = "project"
	logFieldInstallationIDConstant        = "installation_id"
	logFieldTargetKindConstant            = "target_kind"
	logFieldTargetNumberConstant          = "target_number"
	logFieldIssueNumberConstant           = "issue_number"
	logFieldPullRequestNumberConstant     = "pull_request_number"
)

// AttachmentRequest describes one add_to_project invocation.
type AttachmentRequest struct {
	Repository        string
	ProjectName       string
	IssueNumber       int
	PullRequestNumber int
}

// AttachmentResult reports what was resolved and whether a mutation ran.
type AttachmentResult struct {
	Project ProjectRef
	Target  *TargetRef
	Mutated bool
}

// MutatorFactory builds the GraphQL mutator for an installation-authenticated client.
type MutatorFactory func(logger *zap.Logger, httpClient *http.Client, graphQLURL string) graphql.Mutator

// ServiceSettings configures endpoints and behavior for Service.
// A nil MutatorFactory selects graphql.NewProjectMutator.
type ServiceSettings struct {
	APIBaseURL     string
	GraphQLURL     string
	HTTPClient     *http.Client
	RequireTarget  bool
	ProjectState   string
	MutatorFactory MutatorFactory
}

// Executor runs attachments; Service is the production implementation.
type Executor interface {
	AddToProject(executionContext context.Context, credential githubauth.AppCredential, request AttachmentRequest) (AttachmentResult, error)
}

// Service orchestrates token minting, project resolution, target lookup and the mutation.
type Service struct {
	logger   *zap.Logger
	minter   githubapp.TokenMinter
	settings ServiceSettings
}

// NewService constructs a Service; the minter is required.
func NewService(logger *zap.Logger, minter githubapp.TokenMinter, settings ServiceSettings) (*Service, error) {
	if minter == nil {
		return nil, ErrMinterNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if settings.MutatorFactory == nil {
		settings.MutatorFactory = newProjectMutator
	}
	return &Service{logger: logger, minter: minter, settings: settings}, nil
}

// AddToProject attaches the requested issue or pull request to the named classic project.
// Input is validated before any request is made; with no target the project is still resolved and nothing is mutated.
func (service *Service) AddToProject(executionContext context.Context, credential githubauth.AppCredential, request AttachmentRequest) (AttachmentResult, error) {
	repository, targetKind, validationError := service.validate(request)
	if validationError != nil {
		return AttachmentResult{}, validationError
	}

	service.logger.Info(
		logMessageAttachmentStartedConstant,
		zap.String(logFieldRepositoryConstant, repository.String()),
		zap.String(logFieldProjectConstant, request.ProjectName),
		zap.Int(logFieldIssueNumberConstant, request.IssueNumber),
		zap.Int(logFieldPullRequestNumberConstant, request.PullRequestNumber),
	)

	installationToken, mintError := service.minter.MintInstallationToken(executionContext, credential, repository.Owner)
	if mintError != nil {
		return AttachmentResult{}, mintError
	}

	installationHTTPClient := githubapp.NewInstallationHTTPClient(executionContext, installationToken, service.settings.HTTPClient)
	restClient, clientError := githubapp.NewRESTClient(installationHTTPClient, service.settings.APIBaseURL)
	if clientError != nil {
		return AttachmentResult{}, clientError
	}

	projectResolver := NewProjectResolver(service.logger, restClient.Organizations, service.settings.ProjectState)
	project, resolveError := projectResolver.ResolveProject(executionContext, repository.Owner, request.ProjectName)
	if resolveError != nil {
		return AttachmentResult{}, resolveError
	}

	result := AttachmentResult{Project: project}
	if len(targetKind) == 0 {
		service.logger.Warn(
			logMessageNoTargetConstant,
			zap.String(logFieldRepositoryConstant, repository.String()),
			zap.String(logFieldProjectConstant, project.Name),
		)
		return result, nil
	}

	targetLookup := NewTargetLookup(restClient.Issues, restClient.PullRequests)
	projectMutator := service.settings.MutatorFactory(service.logger, installationHTTPClient, service.settings.GraphQLURL)

	var target TargetRef
	var lookupError error
	switch targetKind {
	case TargetKindIssue:
		target, lookupError = targetLookup.LookupIssue(executionContext, repository, request.IssueNumber)
	default:
		target, lookupError = targetLookup.LookupPullRequest(executionContext, repository, request.PullRequestNumber)
	}
	if lookupError != nil {
		return AttachmentResult{}, lookupError
	}
	result.Target = &target

	service.logger.Debug(
		logMessageTargetResolvedConstant,
		zap.String(logFieldTargetKindConstant, string(target.Kind)),
		zap.Int(logFieldTargetNumberConstant, target.Number),
	)

	var mutationError error
	switch target.Kind {
	case TargetKindIssue:
		mutationError = projectMutator.AttachIssue(executionContext, target.NodeID, project.NodeID)
	default:
		mutationError = projectMutator.AttachPullRequest(executionContext, target.NodeID, project.NodeID)
	}
	if mutationError != nil {
		return AttachmentResult{}, mutationError
	}
	result.Mutated = true

	service.logger.Info(
		logMessageAttachmentCompletedConstant,
		zap.String(logFieldOrganizationConstant, repository.Owner),
		zap.String(logFieldRepositoryConstant, repository.String()),
		zap.String(logFieldProjectConstant, project.Name),
		zap.Int64(logFieldInstallationIDConstant, installationToken.InstallationID),
		zap.String(logFieldTargetKindConstant, string(target.Kind)),
		zap.Int(logFieldTargetNumberConstant, target.Number),
	)

	return result, nil
}

// validate returns the parsed repository and the selected target kind, empty when no target was supplied.
func (service *Service) validate(request AttachmentRequest) (RepositoryRef, TargetKind, error) {
	repository, parseError := ParseRepository(request.Repository)
	if parseError != nil {
		return RepositoryRef{}, "", parseError
	}

	if len(strings.TrimSpace(request.ProjectName)) == 0 {
		return RepositoryRef{}, "", InvalidInputError{FieldName: projectNameFieldNameConstant, Message: projectNameMissingMessageConstant}
	}
	if request.IssueNumber < 0 {
		return RepositoryRef{}, "", InvalidInputError{FieldName: issueNumberFieldNameConstant, Message: negativeNumberMessageConstant}
	}
	if request.PullRequestNumber < 0 {
		return RepositoryRef{}, "", InvalidInputError{FieldName: pullRequestNumberFieldNameConstant, Message: negativeNumberMessageConstant}
	}

	switch {
	case request.IssueNumber > 0:
		if request.PullRequestNumber > 0 {
			service.logger.Warn(
				logMessageBothTargetsConstant,
				zap.Int(logFieldIssueNumberConstant, request.IssueNumber),
				zap.Int(logFieldPullRequestNumberConstant, request.PullRequestNumber),
			)
		}
		return repository, TargetKindIssue, nil
	case request.PullRequestNumber > 0:
		return repository, TargetKindPullRequest, nil
	case service.settings.RequireTarget:
		return RepositoryRef{}, "", InvalidInputError{FieldName: targetRequiredFieldNameConstant, Message: targetRequiredMessageConstant}
	default:
		return repository, "", nil
	}
}

func newProjectMutator(logger *zap.Logger, httpClient *http.Client, graphQLURL string) graphql.Mutator {
	return graphql.NewProjectMutator(logger, httpClient, graphQLURL)
}
