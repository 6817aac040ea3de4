package projects

import (
	"errors"
	"fmt"
)

const (
	invalidInputErrorTemplateConstant    = "%s: %s"
	projectNotFoundErrorTemplateConstant = "organization %s project %s not found"
	nodeIDMissingMessageConstant         = "node id missing from response"
	serviceNotConfiguredMessageConstant  = "token minter not configured"
)

var (
	// ErrNodeIDMissing indicates an issue or pull request payload without a node id.
	ErrNodeIDMissing = errors.New(nodeIDMissingMessageConstant)
	// ErrMinterNotConfigured indicates the service was constructed without a token minter.
	ErrMinterNotConfigured = errors.New(serviceNotConfiguredMessageConstant)
)

// InvalidInputError surfaces validation issues detected before any request is sent.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// ProjectNotFoundError reports that no classic project carries the requested name.
type ProjectNotFoundError struct {
	Organization string
	ProjectName  string
}

// Error describes the missing project.
func (notFoundError ProjectNotFoundError) Error() string {
	return fmt.Sprintf(projectNotFoundErrorTemplateConstant, notFoundError.Organization, notFoundError.ProjectName)
}
