package projects

import "strings"

const (
	repositoryFieldNameConstant           = "repository"
	repositorySeparatorConstant           = "/"
	repositoryFormatMessageConstant       = "expected owner/repo"
	repositoryEmptySegmentMessageConstant = "owner and repository name must be non-empty"
)

// RepositoryRef names a repository by owner and name.
type RepositoryRef struct {
	Owner string
	Name  string
}

// String renders the reference as owner/name.
func (reference RepositoryRef) String() string {
	return reference.Owner + repositorySeparatorConstant + reference.Name
}

// ParseRepository splits an owner/repo slug; exactly one separator is accepted.
func ParseRepository(slug string) (RepositoryRef, error) {
	trimmedSlug := strings.TrimSpace(slug)
	if strings.Count(trimmedSlug, repositorySeparatorConstant) != 1 {
		return RepositoryRef{}, InvalidInputError{FieldName: repositoryFieldNameConstant, Message: repositoryFormatMessageConstant}
	}

	owner, name, _ := strings.Cut(trimmedSlug, repositorySeparatorConstant)
	if len(owner) == 0 || len(name) == 0 {
		return RepositoryRef{}, InvalidInputError{FieldName: repositoryFieldNameConstant, Message: repositoryEmptySegmentMessageConstant}
	}

	return RepositoryRef{Owner: owner, Name: name}, nil
}
