package projects

import "strings"

const (
	requireTargetConfigurationKeyConstant    = "require_target"
	projectStateConfigurationKeyConstant     = "project_state"
	apiBaseURLConfigurationKeyConstant       = "api_base_url"
	graphQLURLConfigurationKeyConstant       = "graphql_url"
	appIDConfigurationKeyConstant            = "app_id"
	privateKeySourceConfigurationKeyConstant = "private_key_source"
	configurationKeySeparatorConstant        = "."
)

// Configuration stores add_to_project options.
type Configuration struct {
	RequireTarget bool   `mapstructure:"require_target"`
	ProjectState  string `mapstructure:"project_state"`
}

// ConnectionSettings describes the GitHub endpoints and app identity.
type ConnectionSettings struct {
	APIBaseURL       string `mapstructure:"api_base_url"`
	GraphQLURL       string `mapstructure:"graphql_url"`
	AppID            string `mapstructure:"app_id"`
	PrivateKeySource string `mapstructure:"private_key_source"`
}

// DefaultConfiguration supplies baseline values for add_to_project.
func DefaultConfiguration() Configuration {
	return Configuration{}
}

// DefaultConfigurationValues returns viper defaults for Configuration rooted at prefix.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultConfiguration()
	return map[string]any{
		joinConfigurationKey(prefix, requireTargetConfigurationKeyConstant): defaults.RequireTarget,
		joinConfigurationKey(prefix, projectStateConfigurationKeyConstant):  defaults.ProjectState,
	}
}

// DefaultConnectionValues returns viper defaults for ConnectionSettings rooted at prefix.
func DefaultConnectionValues(prefix string, apiBaseURL string, graphQLURL string, privateKeySource string) map[string]any {
	return map[string]any{
		joinConfigurationKey(prefix, apiBaseURLConfigurationKeyConstant):       apiBaseURL,
		joinConfigurationKey(prefix, graphQLURLConfigurationKeyConstant):       graphQLURL,
		joinConfigurationKey(prefix, appIDConfigurationKeyConstant):            "",
		joinConfigurationKey(prefix, privateKeySourceConfigurationKeyConstant): privateKeySource,
	}
}

// Sanitize trims configured values.
func (configuration Configuration) Sanitize() Configuration {
	sanitized := configuration
	sanitized.ProjectState = strings.TrimSpace(configuration.ProjectState)
	return sanitized
}

// Sanitize trims connection values.
func (settings ConnectionSettings) Sanitize() ConnectionSettings {
	return ConnectionSettings{
		APIBaseURL:       strings.TrimSpace(settings.APIBaseURL),
		GraphQLURL:       strings.TrimSpace(settings.GraphQLURL),
		AppID:            strings.TrimSpace(settings.AppID),
		PrivateKeySource: strings.TrimSpace(settings.PrivateKeySource),
	}
}

func joinConfigurationKey(prefix string, key string) string {
	trimmedPrefix := strings.TrimSpace(prefix)
	if len(trimmedPrefix) == 0 {
		return key
	}
	return trimmedPrefix + configurationKeySeparatorConstant + key
}
