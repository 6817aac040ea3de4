package githubapp

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v54/github"
	"go.uber.org/zap"

	"github.com/temirov/issuebot/internal/githubauth"
)

const (
	logMessageAssertionSignedConstant      = "signed app assertion"
	logMessageListingInstallationsConstant = "listing app installations"
	logMessageInstallationFoundConstant    = "installation resolved"
	logMessageTokenIssuedConstant          = "installation token issued"
	logFieldAppIDConstant                  = "app_id"
	logFieldOrganizationConstant           = "organization"
	logFieldInstallationIDConstant         = "installation_id"
	logFieldPageConstant                   = "page"
	logFieldExpiresAtConstant              = "expires_at"
)

// InstallationToken is a bearer credential scoped to one organization installation.
type InstallationToken struct {
	Token          string
	InstallationID int64
	ExpiresAt      time.Time
}

// MinterConfiguration configures where and how installation tokens are requested.
type MinterConfiguration struct {
	APIBaseURL string
	HTTPClient *http.Client
	Clock      Clock
}

// TokenMinter exchanges an app credential for an installation token.
type TokenMinter interface {
	MintInstallationToken(mintContext context.Context, credential githubauth.AppCredential, organization string) (InstallationToken, error)
}

// InstallationTokenMinter talks to the GitHub App endpoints through go-github.
type InstallationTokenMinter struct {
	logger        *zap.Logger
	configuration MinterConfiguration
	signer        AssertionSigner
}

// NewInstallationTokenMinter constructs a minter; a nil logger disables logging.
func NewInstallationTokenMinter(logger *zap.Logger, configuration MinterConfiguration) *InstallationTokenMinter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstallationTokenMinter{
		logger:        logger,
		configuration: configuration,
		signer:        AssertionSigner{Clock: configuration.Clock},
	}
}

// MintInstallationToken signs an assertion, finds the installation whose account login equals organization, and requests its access token.
func (minter *InstallationTokenMinter) MintInstallationToken(mintContext context.Context, credential githubauth.AppCredential, organization string) (InstallationToken, error) {
	assertion, signingError := minter.signer.Sign(credential)
	if signingError != nil {
		return InstallationToken{}, signingError
	}
	minter.logger.Debug(logMessageAssertionSignedConstant, zap.Int64(logFieldAppIDConstant, credential.AppID))

	restClient, clientError := NewRESTClient(newAssertionHTTPClient(assertion, minter.configuration.HTTPClient), minter.configuration.APIBaseURL)
	if clientError != nil {
		return InstallationToken{}, clientError
	}

	installationID, lookupError := minter.findInstallation(mintContext, restClient, organization)
	if lookupError != nil {
		return InstallationToken{}, lookupError
	}

	issuedToken, response, issueError := restClient.Apps.CreateInstallationToken(mintContext, installationID, nil)
	if issueError != nil {
		return InstallationToken{}, ClassifyResponseError(createTokenOperationNameConstant, response, issueError)
	}
	if issuedToken == nil || len(strings.TrimSpace(issuedToken.GetToken())) == 0 {
		return InstallationToken{}, ResponseDecodingError{Operation: createTokenOperationNameConstant, Cause: ErrTokenMissing}
	}

	installationToken := InstallationToken{
		Token:          issuedToken.GetToken(),
		InstallationID: installationID,
		ExpiresAt:      issuedToken.GetExpiresAt().Time,
	}

	minter.logger.Info(
		logMessageTokenIssuedConstant,
		zap.String(logFieldOrganizationConstant, organization),
		zap.Int64(logFieldInstallationIDConstant, installationID),
		zap.Time(logFieldExpiresAtConstant, installationToken.ExpiresAt),
	)

	return installationToken, nil
}

func (minter *InstallationTokenMinter) findInstallation(lookupContext context.Context, restClient *github.Client, organization string) (int64, error) {
	var listOptions *github.ListOptions
	for {
		pageNumber := 1
		if listOptions != nil {
			pageNumber = listOptions.Page
		}
		minter.logger.Debug(logMessageListingInstallationsConstant, zap.Int(logFieldPageConstant, pageNumber))

		installations, response, listError := restClient.Apps.ListInstallations(lookupContext, listOptions)
		if listError != nil {
			return 0, ClassifyResponseError(listInstallationsOperationNameConstant, response, listError)
		}

		for _, installation := range installations {
			if installation.GetAccount().GetLogin() == organization {
				minter.logger.Debug(
					logMessageInstallationFoundConstant,
					zap.String(logFieldOrganizationConstant, organization),
					zap.Int64(logFieldInstallationIDConstant, installation.GetID()),
				)
				return installation.GetID(), nil
			}
		}

		if response == nil || response.NextPage == 0 {
			return 0, InstallationNotFoundError{Organization: organization}
		}
		listOptions = &github.ListOptions{Page: response.NextPage}
	}
}
