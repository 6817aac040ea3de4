package projects

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/issuebot/internal/githubapp"
	"github.com/temirov/issuebot/internal/githubauth"
)

const (
	addToProjectCommandUseConstant              = "add_to_project <owner/repo> <project>"
	addToProjectCommandAliasConstant            = "add-to-project"
	addToProjectCommandShortDescriptionConstant = "Add an issue or pull request to a classic organization project"
	addToProjectCommandLongDescriptionConstant  = "add_to_project authenticates as a GitHub App, finds the classic project by exact name in the repository owner's organization, and attaches the issue or pull request to it."
	commandExecutionErrorTemplateConstant       = "add_to_project failed: %w"
	issueFlagNameConstant                       = "issue"
	issueFlagDescriptionConstant                = "Issue number to add to the project"
	pullRequestFlagNameConstant                 = "pull-request"
	pullRequestFlagDescriptionConstant          = "Pull request number to add to the project"
	requireTargetFlagNameConstant               = "require-target"
	requireTargetFlagDescriptionConstant        = "Fail when neither --issue nor --pull-request is supplied"
	repositoryArgumentIndexConstant             = 0
	projectArgumentIndexConstant                = 1
	addToProjectArgumentCountConstant           = 2
	logMessageNotAttachedConstant               = "no target attached"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current add_to_project configuration.
type ConfigurationProvider func() Configuration

// ConnectionProvider returns the GitHub connection settings.
type ConnectionProvider func() ConnectionSettings

// AppCredentialLoader loads the GitHub App identity.
type AppCredentialLoader interface {
	LoadAppCredential(loadContext context.Context, configuration githubauth.CredentialConfiguration) (githubauth.AppCredential, error)
}

// ServiceResolver creates executors for the command.
type ServiceResolver interface {
	Resolve(logger *zap.Logger, settings ServiceSettings) (Executor, error)
}

// CommandBuilder assembles the add_to_project command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	ConnectionProvider    ConnectionProvider
	CredentialLoader      AppCredentialLoader
	ServiceResolver       ServiceResolver
	HTTPClient            *http.Client
	Clock                 githubapp.Clock
}

// Build constructs the add_to_project command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	addToProjectCommand := &cobra.Command{
		Use:     addToProjectCommandUseConstant,
		Aliases: []string{addToProjectCommandAliasConstant},
		Short:   addToProjectCommandShortDescriptionConstant,
		Long:    addToProjectCommandLongDescriptionConstant,
		Args:    cobra.ExactArgs(addToProjectArgumentCountConstant),
		RunE:    builder.runAddToProject,
	}

	addToProjectCommand.Flags().Int(issueFlagNameConstant, 0, issueFlagDescriptionConstant)
	addToProjectCommand.Flags().Int(pullRequestFlagNameConstant, 0, pullRequestFlagDescriptionConstant)
	addToProjectCommand.Flags().Bool(requireTargetFlagNameConstant, false, requireTargetFlagDescriptionConstant)

	return addToProjectCommand, nil
}

func (builder *CommandBuilder) runAddToProject(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()
	connection := builder.resolveConnection()

	attachmentRequest, requestError := builder.parseAttachmentRequest(command, arguments)
	if requestError != nil {
		return requestError
	}
	if _, repositoryError := ParseRepository(attachmentRequest.Repository); repositoryError != nil {
		return repositoryError
	}

	if command.Flags().Changed(requireTargetFlagNameConstant) {
		requireTargetValue, requireTargetError := command.Flags().GetBool(requireTargetFlagNameConstant)
		if requireTargetError != nil {
			return requireTargetError
		}
		configuration.RequireTarget = requireTargetValue
	}

	executionContext := command.Context()
	if executionContext == nil {
		executionContext = context.Background()
	}

	credential, credentialError := builder.resolveCredentialLoader().LoadAppCredential(executionContext, githubauth.CredentialConfiguration{
		AppID:            connection.AppID,
		PrivateKeySource: connection.PrivateKeySource,
	})
	if credentialError != nil {
		return credentialError
	}

	logger := builder.resolveLogger()
	executor, serviceError := builder.resolveService(logger, ServiceSettings{
		APIBaseURL:    connection.APIBaseURL,
		GraphQLURL:    connection.GraphQLURL,
		HTTPClient:    builder.HTTPClient,
		RequireTarget: configuration.RequireTarget,
		ProjectState:  configuration.ProjectState,
	})
	if serviceError != nil {
		return serviceError
	}

	result, executionError := executor.AddToProject(executionContext, credential, attachmentRequest)
	if executionError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, executionError)
	}
	if !result.Mutated {
		logger.Debug(logMessageNotAttachedConstant, zap.String(logFieldProjectConstant, result.Project.Name))
	}

	return nil
}

func (builder *CommandBuilder) parseAttachmentRequest(command *cobra.Command, arguments []string) (AttachmentRequest, error) {
	issueNumber, issueFlagError := command.Flags().GetInt(issueFlagNameConstant)
	if issueFlagError != nil {
		return AttachmentRequest{}, issueFlagError
	}

	pullRequestNumber, pullRequestFlagError := command.Flags().GetInt(pullRequestFlagNameConstant)
	if pullRequestFlagError != nil {
		return AttachmentRequest{}, pullRequestFlagError
	}

	return AttachmentRequest{
		Repository:        arguments[repositoryArgumentIndexConstant],
		ProjectName:       arguments[projectArgumentIndexConstant],
		IssueNumber:       issueNumber,
		PullRequestNumber: pullRequestNumber,
	}, nil
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}

	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}

	return logger
}

func (builder *CommandBuilder) resolveConfiguration() Configuration {
	configuration := DefaultConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}
	return configuration.Sanitize()
}

func (builder *CommandBuilder) resolveConnection() ConnectionSettings {
	connection := ConnectionSettings{}
	if builder.ConnectionProvider != nil {
		connection = builder.ConnectionProvider()
	}
	return connection.Sanitize()
}

func (builder *CommandBuilder) resolveCredentialLoader() AppCredentialLoader {
	if builder.CredentialLoader != nil {
		return builder.CredentialLoader
	}
	return githubauth.NewCredentialLoader(nil)
}

func (builder *CommandBuilder) resolveService(logger *zap.Logger, settings ServiceSettings) (Executor, error) {
	if builder.ServiceResolver != nil {
		return builder.ServiceResolver.Resolve(logger, settings)
	}

	defaultResolver := &DefaultServiceResolver{Clock: builder.Clock}
	return defaultResolver.Resolve(logger, settings)
}
