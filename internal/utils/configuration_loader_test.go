package utils_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/issuebot/internal/utils"
)

const (
	testEnvironmentPrefixConstant                  = "TESTISSUEBOT"
	testCommonSectionKeyConstant                   = "common"
	testLogLevelKeyConstant                        = testCommonSectionKeyConstant + ".log_level"
	testGitHubAppIDKeyConstant                     = "github.app_id"
	testDefaultLogLevelConstant                    = "info"
	testConfiguredLogLevelConstant                 = "debug"
	testOverriddenLogLevelConstant                 = "error"
	testFileLogLevelConstant                       = "warn"
	testEmbeddedLogLevelConstant                   = "debug"
	testConfigFileNameConstant                     = "config.yaml"
	testConfigContentTemplateConstant              = "common:\n  log_level: %s\n"
	testLogLevelEnvironmentVariableConstant        = "TESTISSUEBOT_COMMON_LOG_LEVEL"
	testBoundEnvironmentVariableConstant           = "TESTISSUEBOT_BOUND_APP_ID"
	testPrefixedAppIDEnvironmentVariableConstant   = "TESTISSUEBOT_GITHUB_APP_ID"
	testBoundAppIDValueConstant                    = "12345"
	testPrefixedAppIDValueConstant                 = "67890"
	testCaseEmbeddedMessageConstant                = "embedded configuration merges"
	testCaseDefaultsMessageConstant                = "defaults are applied"
	testCaseFileMessageConstant                    = "config file overrides defaults"
	testCaseEnvironmentMessageConstant             = "environment overrides file"
	testConfigurationNameConstant                  = "config"
	testConfigurationTypeConstant                  = "yaml"
	configurationLoaderSubtestNameTemplateConstant = "%d_%s"
)

type configurationFixture struct {
	Common configurationCommonFixture `mapstructure:"common"`
	GitHub configurationGitHubFixture `mapstructure:"github"`
}

type configurationCommonFixture struct {
	LogLevel string `mapstructure:"log_level"`
}

type configurationGitHubFixture struct {
	AppID string `mapstructure:"app_id"`
}

func TestConfigurationLoaderLoadConfiguration(testInstance *testing.T) {
	testCases := []struct {
		name                string
		embeddedLogLevel    string
		fileLogLevel        string
		environmentLogLevel string
		expectedLogLevel    string
	}{
		{
			name:             testCaseEmbeddedMessageConstant,
			embeddedLogLevel: testEmbeddedLogLevelConstant,
			expectedLogLevel: testEmbeddedLogLevelConstant,
		},
		{
			name:             testCaseDefaultsMessageConstant,
			embeddedLogLevel: testDefaultLogLevelConstant,
			expectedLogLevel: testDefaultLogLevelConstant,
		},
		{
			name:             testCaseFileMessageConstant,
			embeddedLogLevel: testDefaultLogLevelConstant,
			fileLogLevel:     testConfiguredLogLevelConstant,
			expectedLogLevel: testConfiguredLogLevelConstant,
		},
		{
			name:                testCaseEnvironmentMessageConstant,
			embeddedLogLevel:    testDefaultLogLevelConstant,
			fileLogLevel:        testFileLogLevelConstant,
			environmentLogLevel: testOverriddenLogLevelConstant,
			expectedLogLevel:    testOverriddenLogLevelConstant,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(configurationLoaderSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			tempDirectory := testInstance.TempDir()
			configurationFilePath := ""
			if len(testCase.fileLogLevel) > 0 {
				configurationFilePath = filepath.Join(tempDirectory, testConfigFileNameConstant)
				configurationContent := fmt.Sprintf(testConfigContentTemplateConstant, testCase.fileLogLevel)
				writeError := os.WriteFile(configurationFilePath, []byte(configurationContent), 0o600)
				require.NoError(testInstance, writeError)
			}

			if len(testCase.environmentLogLevel) > 0 {
				testInstance.Setenv(testLogLevelEnvironmentVariableConstant, testCase.environmentLogLevel)
			}

			configurationLoader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, []string{tempDirectory})
			configurationLoader.SetEmbeddedConfiguration([]byte(fmt.Sprintf(testConfigContentTemplateConstant, testCase.embeddedLogLevel)), testConfigurationTypeConstant)

			defaultValues := map[string]any{
				testLogLevelKeyConstant: testDefaultLogLevelConstant,
			}

			loadedConfiguration := configurationFixture{}
			metadata, loadError := configurationLoader.LoadConfiguration(configurationFilePath, defaultValues, &loadedConfiguration)
			require.NoError(testInstance, loadError)
			require.Equal(testInstance, testCase.expectedLogLevel, loadedConfiguration.Common.LogLevel)

			if len(configurationFilePath) > 0 {
				require.Equal(testInstance, configurationFilePath, metadata.ConfigFileUsed)
			} else {
				require.Empty(testInstance, metadata.ConfigFileUsed)
			}
		})
	}
}

func TestConfigurationLoaderEnvironmentBindings(testInstance *testing.T) {
	testCases := []struct {
		name                string
		environmentSettings map[string]string
		expectedAppID       string
	}{
		{
			name:                "bound_variable_populates_key",
			environmentSettings: map[string]string{testBoundEnvironmentVariableConstant: testBoundAppIDValueConstant},
			expectedAppID:       testBoundAppIDValueConstant,
		},
		{
			name: "prefixed_variable_takes_precedence",
			environmentSettings: map[string]string{
				testBoundEnvironmentVariableConstant:         testBoundAppIDValueConstant,
				testPrefixedAppIDEnvironmentVariableConstant: testPrefixedAppIDValueConstant,
			},
			expectedAppID: testPrefixedAppIDValueConstant,
		},
		{
			name:                "unset_variables_keep_default",
			environmentSettings: map[string]string{},
			expectedAppID:       "",
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(configurationLoaderSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			for environmentName, environmentValue := range testCase.environmentSettings {
				testInstance.Setenv(environmentName, environmentValue)
			}

			configurationLoader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, []string{testInstance.TempDir()})
			configurationLoader.BindEnvironmentVariables(testGitHubAppIDKeyConstant, testBoundEnvironmentVariableConstant)

			defaultValues := map[string]any{
				testLogLevelKeyConstant:    testDefaultLogLevelConstant,
				testGitHubAppIDKeyConstant: "",
			}

			loadedConfiguration := configurationFixture{}
			_, loadError := configurationLoader.LoadConfiguration("", defaultValues, &loadedConfiguration)
			require.NoError(testInstance, loadError)
			require.Equal(testInstance, testCase.expectedAppID, loadedConfiguration.GitHub.AppID)
		})
	}
}

func TestConfigurationLoaderMissingExplicitFile(testInstance *testing.T) {
	configurationLoader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, nil)

	missingFilePath := filepath.Join(testInstance.TempDir(), testConfigFileNameConstant)
	loadedConfiguration := configurationFixture{}
	_, loadError := configurationLoader.LoadConfiguration(missingFilePath, map[string]any{}, &loadedConfiguration)
	require.Error(testInstance, loadError)
}

type upperCaseValue string

func (value *upperCaseValue) UnmarshalText(text []byte) error {
	*value = upperCaseValue(strings.ToUpper(string(text)))
	return nil
}

type decodedFixture struct {
	Settings struct {
		Timeout time.Duration  `mapstructure:"timeout"`
		States  []string       `mapstructure:"states"`
		Label   upperCaseValue `mapstructure:"label"`
	} `mapstructure:"settings"`
}

func TestConfigurationLoaderDecodeHooks(testInstance *testing.T) {
	configurationLoader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, nil)
	configurationLoader.SetEmbeddedConfiguration([]byte("settings:\n  timeout: 90s\n  states: open,closed\n  label: roadmap\n"), testConfigurationTypeConstant)

	loadedConfiguration := decodedFixture{}
	_, loadError := configurationLoader.LoadConfiguration("", map[string]any{}, &loadedConfiguration)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, 90*time.Second, loadedConfiguration.Settings.Timeout)
	require.Equal(testInstance, []string{"open", "closed"}, loadedConfiguration.Settings.States)
	require.Equal(testInstance, upperCaseValue("ROADMAP"), loadedConfiguration.Settings.Label)
}
