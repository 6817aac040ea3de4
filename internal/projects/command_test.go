package projects_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/issuebot/internal/githubauth"
	"github.com/temirov/issuebot/internal/projects"
)

const (
	commandRepositoryArgumentConstant = "acme/widgets"
	commandProjectArgumentConstant    = "Roadmap"
	commandAPIBaseURLConstant         = "https://github.example.com/api/v3/"
	commandGraphQLURLConstant         = "https://github.example.com/api/graphql"
	commandAppIDConstant              = "4242"
	commandPrivateKeySourceConstant   = "file:/etc/issuebot/key.pem"
)

type stubCredentialLoader struct {
	credential             githubauth.AppCredential
	failure                error
	recordedConfigurations []githubauth.CredentialConfiguration
}

func (loader *stubCredentialLoader) LoadAppCredential(_ context.Context, configuration githubauth.CredentialConfiguration) (githubauth.AppCredential, error) {
	loader.recordedConfigurations = append(loader.recordedConfigurations, configuration)
	if loader.failure != nil {
		return githubauth.AppCredential{}, loader.failure
	}
	return loader.credential, nil
}

type stubExecutor struct {
	result              projects.AttachmentResult
	failure             error
	recordedCredentials []githubauth.AppCredential
	recordedRequests    []projects.AttachmentRequest
}

func (executor *stubExecutor) AddToProject(_ context.Context, credential githubauth.AppCredential, request projects.AttachmentRequest) (projects.AttachmentResult, error) {
	executor.recordedCredentials = append(executor.recordedCredentials, credential)
	executor.recordedRequests = append(executor.recordedRequests, request)
	return executor.result, executor.failure
}

type stubServiceResolver struct {
	executor         *stubExecutor
	recordedSettings []projects.ServiceSettings
}

func (resolver *stubServiceResolver) Resolve(_ *zap.Logger, settings projects.ServiceSettings) (projects.Executor, error) {
	resolver.recordedSettings = append(resolver.recordedSettings, settings)
	return resolver.executor, nil
}

type commandHarness struct {
	builder          *projects.CommandBuilder
	credentialLoader *stubCredentialLoader
	serviceResolver  *stubServiceResolver
}

func newCommandHarness(configuration projects.Configuration) commandHarness {
	credentialLoader := &stubCredentialLoader{credential: githubauth.AppCredential{AppID: 4242, PrivateKey: "pem"}}
	serviceResolver := &stubServiceResolver{executor: &stubExecutor{result: projects.AttachmentResult{Mutated: true}}}
	builder := &projects.CommandBuilder{
		LoggerProvider: func() *zap.Logger { return zap.NewNop() },
		ConfigurationProvider: func() projects.Configuration {
			return configuration
		},
		ConnectionProvider: func() projects.ConnectionSettings {
			return projects.ConnectionSettings{
				APIBaseURL:       " " + commandAPIBaseURLConstant,
				GraphQLURL:       commandGraphQLURLConstant,
				AppID:            commandAppIDConstant,
				PrivateKeySource: commandPrivateKeySourceConstant,
			}
		},
		CredentialLoader: credentialLoader,
		ServiceResolver:  serviceResolver,
	}
	return commandHarness{builder: builder, credentialLoader: credentialLoader, serviceResolver: serviceResolver}
}

func (harness commandHarness) execute(testInstance *testing.T, arguments []string) error {
	testInstance.Helper()

	command, buildError := harness.builder.Build()
	require.NoError(testInstance, buildError)
	command.SetContext(context.Background())
	command.SetArgs(arguments)
	command.SetOut(io.Discard)
	command.SetErr(io.Discard)
	return command.Execute()
}

func TestCommandBuilderPassesRequestAndSettings(testInstance *testing.T) {
	testInstance.Parallel()

	testCases := []struct {
		name                  string
		configuration         projects.Configuration
		arguments             []string
		expectedRequest       projects.AttachmentRequest
		expectedRequireTarget bool
		expectedProjectState  string
	}{
		{
			name:      "issue_flag",
			arguments: []string{commandRepositoryArgumentConstant, commandProjectArgumentConstant, "--issue", "5"},
			expectedRequest: projects.AttachmentRequest{
				Repository:  commandRepositoryArgumentConstant,
				ProjectName: commandProjectArgumentConstant,
				IssueNumber: 5,
			},
		},
		{
			name:      "both_flags",
			arguments: []string{commandRepositoryArgumentConstant, commandProjectArgumentConstant, "--issue", "5", "--pull-request", "7"},
			expectedRequest: projects.AttachmentRequest{
				Repository:        commandRepositoryArgumentConstant,
				ProjectName:       commandProjectArgumentConstant,
				IssueNumber:       5,
				PullRequestNumber: 7,
			},
		},
		{
			name:          "configuration_values",
			configuration: projects.Configuration{RequireTarget: true, ProjectState: " open "},
			arguments:     []string{commandRepositoryArgumentConstant, commandProjectArgumentConstant, "--pull-request", "7"},
			expectedRequest: projects.AttachmentRequest{
				Repository:        commandRepositoryArgumentConstant,
				ProjectName:       commandProjectArgumentConstant,
				PullRequestNumber: 7,
			},
			expectedRequireTarget: true,
			expectedProjectState:  "open",
		},
		{
			name:          "flag_overrides_configuration",
			configuration: projects.Configuration{RequireTarget: true},
			arguments:     []string{commandRepositoryArgumentConstant, commandProjectArgumentConstant, "--require-target=false"},
			expectedRequest: projects.AttachmentRequest{
				Repository:  commandRepositoryArgumentConstant,
				ProjectName: commandProjectArgumentConstant,
			},
			expectedRequireTarget: false,
		},
		{
			name:      "require_target_flag",
			arguments: []string{commandRepositoryArgumentConstant, commandProjectArgumentConstant, "--require-target", "--issue", "5"},
			expectedRequest: projects.AttachmentRequest{
				Repository:  commandRepositoryArgumentConstant,
				ProjectName: commandProjectArgumentConstant,
				IssueNumber: 5,
			},
			expectedRequireTarget: true,
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			testInstance.Parallel()

			harness := newCommandHarness(testCase.configuration)
			require.NoError(testInstance, harness.execute(testInstance, testCase.arguments))

			require.Equal(testInstance, []githubauth.CredentialConfiguration{{
				AppID:            commandAppIDConstant,
				PrivateKeySource: commandPrivateKeySourceConstant,
			}}, harness.credentialLoader.recordedConfigurations)

			require.Len(testInstance, harness.serviceResolver.recordedSettings, 1)
			recordedSettings := harness.serviceResolver.recordedSettings[0]
			require.Equal(testInstance, commandAPIBaseURLConstant, recordedSettings.APIBaseURL)
			require.Equal(testInstance, commandGraphQLURLConstant, recordedSettings.GraphQLURL)
			require.Equal(testInstance, testCase.expectedRequireTarget, recordedSettings.RequireTarget)
			require.Equal(testInstance, testCase.expectedProjectState, recordedSettings.ProjectState)

			executor := harness.serviceResolver.executor
			require.Equal(testInstance, []projects.AttachmentRequest{testCase.expectedRequest}, executor.recordedRequests)
			require.Equal(testInstance, harness.credentialLoader.credential, executor.recordedCredentials[0])
		})
	}
}

func TestCommandBuilderFailures(testInstance *testing.T) {
	testInstance.Parallel()

	credentialFailure := githubauth.ConfigurationError{Setting: "app_id", Message: "BOT_APP_ID is not set"}
	executionFailure := errors.New("mutation failed")

	testCases := []struct {
		name                    string
		arguments               []string
		credentialFailure       error
		executionFailure        error
		expectedCredentialCalls int
		expectedServiceCalls    int
		assertError             func(testInstance *testing.T, executionError error)
	}{
		{
			name:      "missing_arguments",
			arguments: []string{commandRepositoryArgumentConstant},
			assertError: func(testInstance *testing.T, executionError error) {
				require.ErrorContains(testInstance, executionError, "accepts 2 arg(s)")
			},
		},
		{
			name:      "malformed_repository",
			arguments: []string{"acme", commandProjectArgumentConstant, "--issue", "5"},
			assertError: func(testInstance *testing.T, executionError error) {
				require.ErrorAs(testInstance, executionError, &projects.InvalidInputError{})
			},
		},
		{
			name:                    "credential_failure",
			arguments:               []string{commandRepositoryArgumentConstant, commandProjectArgumentConstant, "--issue", "5"},
			credentialFailure:       credentialFailure,
			expectedCredentialCalls: 1,
			assertError: func(testInstance *testing.T, executionError error) {
				require.ErrorAs(testInstance, executionError, &githubauth.ConfigurationError{})
			},
		},
		{
			name:                    "execution_failure",
			arguments:               []string{commandRepositoryArgumentConstant, commandProjectArgumentConstant, "--issue", "5"},
			executionFailure:        executionFailure,
			expectedCredentialCalls: 1,
			expectedServiceCalls:    1,
			assertError: func(testInstance *testing.T, executionError error) {
				require.ErrorIs(testInstance, executionError, executionFailure)
				require.ErrorContains(testInstance, executionError, "add_to_project failed")
			},
		},
		{
			name:      "non_numeric_issue",
			arguments: []string{commandRepositoryArgumentConstant, commandProjectArgumentConstant, "--issue", "five"},
			assertError: func(testInstance *testing.T, executionError error) {
				require.ErrorContains(testInstance, executionError, "invalid argument")
			},
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			testInstance.Parallel()

			harness := newCommandHarness(projects.Configuration{})
			harness.credentialLoader.failure = testCase.credentialFailure
			harness.serviceResolver.executor.failure = testCase.executionFailure

			executionError := harness.execute(testInstance, testCase.arguments)
			require.Error(testInstance, executionError)
			testCase.assertError(testInstance, executionError)
			require.Len(testInstance, harness.credentialLoader.recordedConfigurations, testCase.expectedCredentialCalls)
			require.Len(testInstance, harness.serviceResolver.recordedSettings, testCase.expectedServiceCalls)
		})
	}
}

func TestCommandBuilderRegistersAlias(testInstance *testing.T) {
	testInstance.Parallel()

	builder := projects.CommandBuilder{}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	require.Equal(testInstance, "add_to_project", command.Name())
	require.Contains(testInstance, command.Aliases, "add-to-project")
	require.NotNil(testInstance, command.Flags().Lookup("issue"))
	require.NotNil(testInstance, command.Flags().Lookup("pull-request"))
	require.NotNil(testInstance, command.Flags().Lookup("require-target"))
}
