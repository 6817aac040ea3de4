package githubauth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Environment variables consulted for the GitHub App identity.
const (
	EnvAppID      = "BOT_APP_ID"
	EnvPrivateKey = "BOT_PRIVATE_KEY"
)

// DefaultPrivateKeySource reads the private key from EnvPrivateKey.
const DefaultPrivateKeySource = environmentSecretSourceTypeValueConstant + secretSourceSeparatorConstant + EnvPrivateKey

const (
	appIDSettingNameConstant                = "app_id"
	privateKeySourceSettingNameConstant     = "private_key_source"
	privateKeySettingNameConstant           = "private_key"
	appIDMissingMessageTemplateConstant     = "%s is not set"
	appIDInvalidMessageTemplateConstant     = "app id %q is not a positive integer"
	configurationErrorTemplateConstant      = "configuration error for %s: %s"
	configurationErrorCauseTemplateConstant = "configuration error for %s: %v"
)

// AppCredential identifies the GitHub App used to mint installation tokens.
type AppCredential struct {
	AppID      int64
	PrivateKey string
}

// CredentialConfiguration carries the raw credential settings loaded by the CLI.
type CredentialConfiguration struct {
	AppID            string `mapstructure:"app_id"`
	PrivateKeySource string `mapstructure:"private_key_source"`
}

// ConfigurationError reports a missing or malformed credential setting.
type ConfigurationError struct {
	Setting string
	Message string
	Cause   error
}

// Error describes the configuration failure.
func (configurationError ConfigurationError) Error() string {
	if configurationError.Cause != nil {
		return fmt.Sprintf(configurationErrorCauseTemplateConstant, configurationError.Setting, configurationError.Cause)
	}
	return fmt.Sprintf(configurationErrorTemplateConstant, configurationError.Setting, configurationError.Message)
}

// Unwrap exposes the underlying cause.
func (configurationError ConfigurationError) Unwrap() error {
	return configurationError.Cause
}

// CredentialLoader resolves an AppCredential from configuration and secret sources.
type CredentialLoader struct {
	SecretResolver SecretResolver
}

// NewCredentialLoader constructs a loader backed by the process environment and file system when resolver is nil.
func NewCredentialLoader(resolver SecretResolver) *CredentialLoader {
	if resolver == nil {
		resolver = NewSecretResolver(nil, nil)
	}
	return &CredentialLoader{SecretResolver: resolver}
}

// LoadAppCredential validates the configured app id and resolves the private key.
func (loader *CredentialLoader) LoadAppCredential(loadContext context.Context, configuration CredentialConfiguration) (AppCredential, error) {
	appID, appIDError := ParseAppID(configuration.AppID)
	if appIDError != nil {
		return AppCredential{}, appIDError
	}

	privateKeySourceValue := strings.TrimSpace(configuration.PrivateKeySource)
	if len(privateKeySourceValue) == 0 {
		privateKeySourceValue = DefaultPrivateKeySource
	}

	privateKeySource, sourceParseError := ParseSecretSource(privateKeySourceValue)
	if sourceParseError != nil {
		return AppCredential{}, ConfigurationError{Setting: privateKeySourceSettingNameConstant, Cause: sourceParseError}
	}

	resolver := loader.SecretResolver
	if resolver == nil {
		resolver = NewSecretResolver(nil, nil)
	}

	privateKey, resolveError := resolver.ResolveSecret(loadContext, privateKeySource)
	if resolveError != nil {
		return AppCredential{}, ConfigurationError{Setting: privateKeySettingNameConstant, Cause: resolveError}
	}

	return AppCredential{AppID: appID, PrivateKey: privateKey}, nil
}

// ParseAppID converts the textual app id into its numeric form.
func ParseAppID(appIDValue string) (int64, error) {
	trimmedValue := strings.TrimSpace(appIDValue)
	if len(trimmedValue) == 0 {
		return 0, ConfigurationError{Setting: appIDSettingNameConstant, Message: fmt.Sprintf(appIDMissingMessageTemplateConstant, EnvAppID)}
	}

	appID, parseError := strconv.ParseInt(trimmedValue, 10, 64)
	if parseError != nil {
		return 0, ConfigurationError{Setting: appIDSettingNameConstant, Cause: errors.Join(fmt.Errorf(appIDInvalidMessageTemplateConstant, trimmedValue), parseError)}
	}
	if appID <= 0 {
		return 0, ConfigurationError{Setting: appIDSettingNameConstant, Message: fmt.Sprintf(appIDInvalidMessageTemplateConstant, trimmedValue)}
	}

	return appID, nil
}
