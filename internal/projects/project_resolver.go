package projects

import (
	"context"
	"strings"

	"github.com/google/go-github/v54/github"
	"go.uber.org/zap"

	"github.com/temirov/issuebot/internal/githubapp"
)

const (
	listProjectsOperationNameConstant  = githubapp.OperationName("ListOrganizationProjects")
	logMessageListingProjectsConstant  = "listing organization projects"
	logMessageProjectResolvedConstant  = "project resolved"
	logFieldProjectNameConstant        = "project"
	logFieldProjectNodeIDConstant      = "project_id"
	logFieldProjectPageConstant        = "page"
	logFieldOrganizationNameConstant   = "organization"
	logFieldProjectStateFilterConstant = "state"
	projectsPerPageConstant            = 100
)

// ProjectRef identifies a classic project by name and node id.
type ProjectRef struct {
	Name   string
	NodeID string
}

// OrganizationProjectLister is the subset of the go-github organizations service used for lookups.
type OrganizationProjectLister interface {
	ListProjects(listContext context.Context, organization string, options *github.ProjectListOptions) ([]*github.Project, *github.Response, error)
}

// ProjectResolver finds classic organization projects by exact name.
type ProjectResolver struct {
	logger       *zap.Logger
	lister       OrganizationProjectLister
	projectState string
}

// NewProjectResolver creates a resolver; projectState narrows the listing when non-empty.
func NewProjectResolver(logger *zap.Logger, lister OrganizationProjectLister, projectState string) *ProjectResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProjectResolver{
		logger:       logger,
		lister:       lister,
		projectState: strings.TrimSpace(projectState),
	}
}

// ResolveProject pages through the organization's projects and returns the first case-sensitive name match.
func (resolver *ProjectResolver) ResolveProject(resolveContext context.Context, organization string, projectName string) (ProjectRef, error) {
	listOptions := &github.ProjectListOptions{
		State:       resolver.projectState,
		ListOptions: github.ListOptions{PerPage: projectsPerPageConstant},
	}
	for {
		resolver.logger.Debug(
			logMessageListingProjectsConstant,
			zap.String(logFieldOrganizationNameConstant, organization),
			zap.String(logFieldProjectStateFilterConstant, resolver.projectState),
			zap.Int(logFieldProjectPageConstant, listOptions.Page),
		)

		organizationProjects, response, listError := resolver.lister.ListProjects(resolveContext, organization, listOptions)
		if listError != nil {
			return ProjectRef{}, githubapp.ClassifyResponseError(listProjectsOperationNameConstant, response, listError)
		}

		for _, organizationProject := range organizationProjects {
			if organizationProject.GetName() != projectName {
				continue
			}
			projectReference := ProjectRef{Name: organizationProject.GetName(), NodeID: organizationProject.GetNodeID()}
			if len(projectReference.NodeID) == 0 {
				return ProjectRef{}, githubapp.ResponseDecodingError{Operation: listProjectsOperationNameConstant, Cause: ErrNodeIDMissing}
			}
			resolver.logger.Info(
				logMessageProjectResolvedConstant,
				zap.String(logFieldProjectNameConstant, projectReference.Name),
				zap.String(logFieldProjectNodeIDConstant, projectReference.NodeID),
			)
			return projectReference, nil
		}

		if response == nil || response.NextPage == 0 {
			return ProjectRef{}, ProjectNotFoundError{Organization: organization, ProjectName: projectName}
		}
		listOptions.Page = response.NextPage
	}
}
