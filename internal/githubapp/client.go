package githubapp

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v54/github"
	"golang.org/x/oauth2"
)

const (
	// DefaultAPIBaseURL is the public GitHub REST endpoint.
	DefaultAPIBaseURL = "https://api.github.com/"
	// MachineManPreviewMediaType is the media type GitHub App endpoints are called with.
	MachineManPreviewMediaType = "application/vnd.github.machine-man-preview+json"

	authorizationHeaderNameConstant = "Authorization"
	acceptHeaderNameConstant        = "Accept"
	bearerPrefixConstant            = "Bearer "
	trailingSlashConstant           = "/"
	invalidBaseURLTemplateConstant  = "invalid GitHub API base URL %q: %w"
)

// assertionTransport authenticates every request as the app itself.
type assertionTransport struct {
	assertion SignedAssertion
	base      http.RoundTripper
}

func (transport *assertionTransport) RoundTrip(request *http.Request) (*http.Response, error) {
	authenticatedRequest := request.Clone(request.Context())
	authenticatedRequest.Header.Set(authorizationHeaderNameConstant, bearerPrefixConstant+string(transport.assertion))
	authenticatedRequest.Header.Set(acceptHeaderNameConstant, MachineManPreviewMediaType)

	baseTransport := transport.base
	if baseTransport == nil {
		baseTransport = http.DefaultTransport
	}
	return baseTransport.RoundTrip(authenticatedRequest)
}

// NewRESTClient builds a go-github client rooted at apiBaseURL.
func NewRESTClient(httpClient *http.Client, apiBaseURL string) (*github.Client, error) {
	trimmedBaseURL := strings.TrimSpace(apiBaseURL)
	if len(trimmedBaseURL) == 0 {
		trimmedBaseURL = DefaultAPIBaseURL
	}
	if !strings.HasSuffix(trimmedBaseURL, trailingSlashConstant) {
		trimmedBaseURL += trailingSlashConstant
	}

	parsedBaseURL, parseError := url.Parse(trimmedBaseURL)
	if parseError != nil {
		return nil, fmt.Errorf(invalidBaseURLTemplateConstant, apiBaseURL, parseError)
	}

	client := github.NewClient(httpClient)
	client.BaseURL = parsedBaseURL
	return client, nil
}

// NewInstallationHTTPClient returns an HTTP client that presents the installation token as a bearer credential.
// A nil baseClient selects the default HTTP client.
func NewInstallationHTTPClient(clientContext context.Context, token InstallationToken, baseClient *http.Client) *http.Client {
	if clientContext == nil {
		clientContext = context.Background()
	}
	if baseClient != nil {
		clientContext = context.WithValue(clientContext, oauth2.HTTPClient, baseClient)
	}

	tokenSource := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token.Token})
	return oauth2.NewClient(clientContext, tokenSource)
}

func newAssertionHTTPClient(assertion SignedAssertion, baseClient *http.Client) *http.Client {
	var baseTransport http.RoundTripper
	if baseClient != nil {
		baseTransport = baseClient.Transport
	}
	return &http.Client{Transport: &assertionTransport{assertion: assertion, base: baseTransport}}
}
