package githubauth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

const (
	secretSourceSeparatorConstant               = ":"
	environmentSecretSourceTypeValueConstant    = "env"
	fileSecretSourceTypeValueConstant           = "file"
	secretSourceMissingErrorMessageConstant     = "secret source must be provided"
	secretSourceFormatTemplateConstant          = "secret source %q must be declared as env:NAME or file:PATH"
	secretReferenceMissingTemplateConstant      = "secret source %q names no %s"
	environmentReferenceDescriptionConstant     = "environment variable"
	fileReferenceDescriptionConstant            = "file path"
	environmentSecretMissingTemplateConstant    = "environment variable %s is not set"
	fileReadErrorTemplateConstant               = "unable to read secret file %s: %w"
	fileSecretEmptyErrorTemplateConstant        = "secret file %s is empty"
	unsupportedSecretSourceTypeTemplateConstant = "unsupported secret source type %q"
)

// SecretSourceType enumerates where a secret can be read from.
type SecretSourceType string

// Secret source types.
const (
	SecretSourceTypeEnvironment SecretSourceType = SecretSourceType(environmentSecretSourceTypeValueConstant)
	SecretSourceTypeFile        SecretSourceType = SecretSourceType(fileSecretSourceTypeValueConstant)
)

// SecretSource points at the app private key.
type SecretSource struct {
	Type      SecretSourceType
	Reference string
}

// SecretResolver reads the secret a SecretSource points at.
type SecretResolver interface {
	ResolveSecret(resolutionContext context.Context, source SecretSource) (string, error)
}

// EnvironmentLookup obtains an environment variable value.
type EnvironmentLookup func(key string) (string, bool)

// FileReader reads the contents of a file path.
type FileReader func(path string) ([]byte, error)

// NewSecretResolver creates a resolver; nil functions fall back to the process environment and filesystem.
func NewSecretResolver(environmentLookup EnvironmentLookup, fileReader FileReader) SecretResolver {
	return NewSecretResolverWithHomeDirectory(environmentLookup, fileReader, nil)
}

// NewSecretResolverWithHomeDirectory also overrides the home directory used to expand ~ in file paths.
func NewSecretResolverWithHomeDirectory(environmentLookup EnvironmentLookup, fileReader FileReader, homeDirectoryProvider HomeDirectoryProvider) SecretResolver {
	if environmentLookup == nil {
		environmentLookup = os.LookupEnv
	}
	if fileReader == nil {
		fileReader = os.ReadFile
	}

	return &secretResolver{
		environmentLookup: environmentLookup,
		fileReader:        fileReader,
		homeExpander:      newHomeDirectoryExpander(homeDirectoryProvider),
	}
}

// ParseSecretSource interprets "env:BOT_PRIVATE_KEY" or "file:~/keys/app.pem". The type prefix is required.
func ParseSecretSource(sourceValue string) (SecretSource, error) {
	trimmedValue := strings.TrimSpace(sourceValue)
	if len(trimmedValue) == 0 {
		return SecretSource{}, errors.New(secretSourceMissingErrorMessageConstant)
	}

	sourceTypeValue, reference, separatorFound := strings.Cut(trimmedValue, secretSourceSeparatorConstant)
	if !separatorFound {
		return SecretSource{}, fmt.Errorf(secretSourceFormatTemplateConstant, trimmedValue)
	}
	reference = strings.TrimSpace(reference)

	sourceType := SecretSourceType(strings.ToLower(strings.TrimSpace(sourceTypeValue)))
	var referenceDescription string
	switch sourceType {
	case SecretSourceTypeEnvironment:
		referenceDescription = environmentReferenceDescriptionConstant
	case SecretSourceTypeFile:
		referenceDescription = fileReferenceDescriptionConstant
	default:
		return SecretSource{}, fmt.Errorf(unsupportedSecretSourceTypeTemplateConstant, sourceType)
	}
	if len(reference) == 0 {
		return SecretSource{}, fmt.Errorf(secretReferenceMissingTemplateConstant, trimmedValue, referenceDescription)
	}

	return SecretSource{Type: sourceType, Reference: reference}, nil
}

type secretResolver struct {
	environmentLookup EnvironmentLookup
	fileReader        FileReader
	homeExpander      *homeDirectoryExpander
}

// ResolveSecret returns the trimmed secret; blank secrets count as missing.
func (resolver *secretResolver) ResolveSecret(_ context.Context, source SecretSource) (string, error) {
	switch source.Type {
	case SecretSourceTypeEnvironment:
		value, _ := resolver.environmentLookup(source.Reference)
		trimmedValue := strings.TrimSpace(value)
		if len(trimmedValue) == 0 {
			return "", fmt.Errorf(environmentSecretMissingTemplateConstant, source.Reference)
		}
		return trimmedValue, nil
	case SecretSourceTypeFile:
		secretPath := resolver.homeExpander.expand(source.Reference)
		contents, readError := resolver.fileReader(secretPath)
		if readError != nil {
			return "", fmt.Errorf(fileReadErrorTemplateConstant, secretPath, readError)
		}
		trimmedValue := strings.TrimSpace(string(contents))
		if len(trimmedValue) == 0 {
			return "", fmt.Errorf(fileSecretEmptyErrorTemplateConstant, secretPath)
		}
		return trimmedValue, nil
	default:
		return "", fmt.Errorf(unsupportedSecretSourceTypeTemplateConstant, source.Type)
	}
}
