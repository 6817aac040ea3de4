package githubapp

import (
	"errors"
	"fmt"

	"github.com/google/go-github/v54/github"
)

const (
	operationErrorMessageTemplateConstant   = "%s operation failed"
	operationErrorWithCauseTemplateConstant = "%s operation failed: %s"
	responseDecodingErrorTemplateConstant   = "%s response decoding failed: %s"
	installationNotFoundTemplateConstant    = "organization %s not found in installations"
	assertionSigningErrorTemplateConstant   = "unable to sign app assertion: %s"
	tokenMissingMessageConstant             = "access token missing from response"
	listInstallationsOperationNameConstant  = OperationName("ListInstallations")
	createTokenOperationNameConstant        = OperationName("CreateInstallationToken")
)

// OperationName describes a named GitHub App API call.
type OperationName string

var (
	// ErrTokenMissing indicates a successful token-issuance response without a token.
	ErrTokenMissing = errors.New(tokenMissingMessageConstant)
)

// OperationError wraps transport failures and non-2xx responses.
type OperationError struct {
	Operation OperationName
	Cause     error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	if operationError.Cause == nil {
		return fmt.Sprintf(operationErrorMessageTemplateConstant, operationError.Operation)
	}
	return fmt.Sprintf(operationErrorWithCauseTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// ResponseDecodingError indicates a 2xx response whose body could not be used.
type ResponseDecodingError struct {
	Operation OperationName
	Cause     error
}

// Error describes the decoding failure.
func (decodingError ResponseDecodingError) Error() string {
	return fmt.Sprintf(responseDecodingErrorTemplateConstant, decodingError.Operation, decodingError.Cause)
}

// Unwrap exposes the underlying cause.
func (decodingError ResponseDecodingError) Unwrap() error {
	return decodingError.Cause
}

// InstallationNotFoundError reports that the app is not installed on the organization.
type InstallationNotFoundError struct {
	Organization string
}

// Error describes the missing installation.
func (notFoundError InstallationNotFoundError) Error() string {
	return fmt.Sprintf(installationNotFoundTemplateConstant, notFoundError.Organization)
}

// AssertionSigningError reports an unusable private key or signing failure.
type AssertionSigningError struct {
	Cause error
}

// Error describes the signing failure.
func (signingError AssertionSigningError) Error() string {
	return fmt.Sprintf(assertionSigningErrorTemplateConstant, signingError.Cause)
}

// Unwrap exposes the underlying cause.
func (signingError AssertionSigningError) Unwrap() error {
	return signingError.Cause
}

// ClassifyResponseError separates undecodable 2xx bodies from transport and status failures.
func ClassifyResponseError(operation OperationName, response *github.Response, requestError error) error {
	if response != nil && response.Response != nil && response.StatusCode >= 200 && response.StatusCode < 300 {
		return ResponseDecodingError{Operation: operation, Cause: requestError}
	}
	return OperationError{Operation: operation, Cause: requestError}
}
