// Package utils exposes reusable helpers consumed by the issuebot commands.
//
// ConfigurationLoader layers embedded defaults, an optional configuration file,
// prefixed environment variables, and explicit environment bindings through
// Viper. LoggerFactory builds zap loggers for the structured and console
// formats.
package utils
