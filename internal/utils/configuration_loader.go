package utils

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	environmentKeySeparatorOldConstant              = "."
	environmentKeySeparatorNewConstant              = "_"
	configurationReadErrorTemplateConstant          = "failed to read configuration: %w"
	configurationUnmarshalErrorTemplateConstant     = "failed to parse configuration: %w"
	embeddedConfigurationMergeErrorTemplateConstant = "failed to merge embedded configuration: %w"
	environmentBindingErrorTemplateConstant         = "failed to bind environment variables for %s: %w"
	listSeparatorConstant                           = ","
)

// ConfigurationLoader wraps Viper to load the embedded defaults, an optional configuration file, and environment overrides.
type ConfigurationLoader struct {
	configurationName         string
	configurationType         string
	environmentPrefix         string
	searchPaths               []string
	environmentKeyReplacer    *strings.Replacer
	environmentBindings       map[string][]string
	embeddedConfiguration     []byte
	embeddedConfigurationType string
}

// LoadedConfiguration surfaces metadata about the resolved configuration.
type LoadedConfiguration struct {
	ConfigFileUsed string
}

// NewConfigurationLoader creates a loader that searches known paths and respects an environment prefix.
func NewConfigurationLoader(configurationName string, configurationType string, environmentPrefix string, searchPaths []string) *ConfigurationLoader {
	duplicatedSearchPaths := make([]string, len(searchPaths))
	copy(duplicatedSearchPaths, searchPaths)

	return &ConfigurationLoader{
		configurationName:      configurationName,
		configurationType:      configurationType,
		environmentPrefix:      environmentPrefix,
		searchPaths:            duplicatedSearchPaths,
		environmentKeyReplacer: strings.NewReplacer(environmentKeySeparatorOldConstant, environmentKeySeparatorNewConstant),
		environmentBindings:    map[string][]string{},
	}
}

// SetEmbeddedConfiguration stores embedded configuration data merged before user-provided configuration files.
func (loader *ConfigurationLoader) SetEmbeddedConfiguration(configurationData []byte, configurationType string) {
	if loader == nil {
		return
	}

	loader.embeddedConfiguration = nil
	loader.embeddedConfigurationType = strings.TrimSpace(configurationType)

	if len(configurationData) == 0 {
		return
	}

	duplicatedData := make([]byte, len(configurationData))
	copy(duplicatedData, configurationData)
	loader.embeddedConfiguration = duplicatedData
}

// BindEnvironmentVariables maps a configuration key onto unprefixed environment variable names.
// Names are consulted in the order given, after the prefixed automatic variable.
func (loader *ConfigurationLoader) BindEnvironmentVariables(configurationKey string, environmentVariableNames ...string) {
	if loader == nil {
		return
	}

	trimmedKey := strings.TrimSpace(configurationKey)
	if len(trimmedKey) == 0 {
		return
	}

	sanitizedNames := make([]string, 0, len(environmentVariableNames))
	for _, environmentVariableName := range environmentVariableNames {
		trimmedName := strings.TrimSpace(environmentVariableName)
		if len(trimmedName) == 0 {
			continue
		}
		sanitizedNames = append(sanitizedNames, trimmedName)
	}

	if len(sanitizedNames) == 0 {
		delete(loader.environmentBindings, trimmedKey)
		return
	}

	loader.environmentBindings[trimmedKey] = sanitizedNames
}

// LoadConfiguration populates targetConfiguration using configuration files, defaults, and environment variables.
func (loader *ConfigurationLoader) LoadConfiguration(configurationFilePath string, defaultValues map[string]any, targetConfiguration any) (LoadedConfiguration, error) {
	viperInstance := viper.New()
	viperInstance.SetConfigName(loader.configurationName)
	viperInstance.SetConfigType(loader.configurationType)

	if len(loader.embeddedConfiguration) > 0 {
		configurationType := loader.configurationType
		if len(loader.embeddedConfigurationType) > 0 {
			configurationType = loader.embeddedConfigurationType
		}

		viperInstance.SetConfigType(configurationType)
		mergeError := viperInstance.MergeConfig(bytes.NewReader(loader.embeddedConfiguration))
		if mergeError != nil {
			return LoadedConfiguration{}, fmt.Errorf(embeddedConfigurationMergeErrorTemplateConstant, mergeError)
		}

		viperInstance.SetConfigType(loader.configurationType)
	}

	for _, searchPath := range loader.searchPaths {
		viperInstance.AddConfigPath(searchPath)
	}

	viperInstance.SetEnvPrefix(loader.environmentPrefix)
	if loader.environmentKeyReplacer != nil {
		viperInstance.SetEnvKeyReplacer(loader.environmentKeyReplacer)
	}
	viperInstance.AutomaticEnv()

	if bindingError := loader.applyEnvironmentBindings(viperInstance); bindingError != nil {
		return LoadedConfiguration{}, bindingError
	}

	for defaultKey, defaultValue := range defaultValues {
		viperInstance.SetDefault(defaultKey, defaultValue)
	}

	if len(configurationFilePath) > 0 {
		viperInstance.SetConfigFile(configurationFilePath)
	}

	readError := viperInstance.MergeInConfig()
	if readError != nil {
		var notFoundError viper.ConfigFileNotFoundError
		if !errors.As(readError, &notFoundError) {
			return LoadedConfiguration{}, fmt.Errorf(configurationReadErrorTemplateConstant, readError)
		}
	}

	decodeHook := mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(listSeparatorConstant),
	)
	unmarshalError := viperInstance.Unmarshal(targetConfiguration, viper.DecodeHook(decodeHook))
	if unmarshalError != nil {
		return LoadedConfiguration{}, fmt.Errorf(configurationUnmarshalErrorTemplateConstant, unmarshalError)
	}

	return LoadedConfiguration{ConfigFileUsed: viperInstance.ConfigFileUsed()}, nil
}

func (loader *ConfigurationLoader) applyEnvironmentBindings(viperInstance *viper.Viper) error {
	configurationKeys := make([]string, 0, len(loader.environmentBindings))
	for configurationKey := range loader.environmentBindings {
		configurationKeys = append(configurationKeys, configurationKey)
	}
	sort.Strings(configurationKeys)

	for _, configurationKey := range configurationKeys {
		bindingArguments := append([]string{configurationKey}, loader.environmentBindings[configurationKey]...)
		if bindError := viperInstance.BindEnv(bindingArguments...); bindError != nil {
			return fmt.Errorf(environmentBindingErrorTemplateConstant, configurationKey, bindError)
		}
	}

	return nil
}
