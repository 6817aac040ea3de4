package projects

import (
	"go.uber.org/zap"

	"github.com/temirov/issuebot/internal/githubapp"
)

// DefaultServiceResolver builds services backed by the GitHub App token minter.
type DefaultServiceResolver struct {
	Clock githubapp.Clock
}

// Resolve creates an Executor that mints tokens against settings.APIBaseURL.
func (resolver *DefaultServiceResolver) Resolve(logger *zap.Logger, settings ServiceSettings) (Executor, error) {
	minter := githubapp.NewInstallationTokenMinter(logger, githubapp.MinterConfiguration{
		APIBaseURL: settings.APIBaseURL,
		HTTPClient: settings.HTTPClient,
		Clock:      resolver.Clock,
	})
	return NewService(logger, minter, settings)
}
