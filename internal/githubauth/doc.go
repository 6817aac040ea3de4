// Package githubauth loads the GitHub App identity used by issuebot.
//
// The app id comes from configuration (BOT_APP_ID by default) and the private
// key from a secret source declaration such as "env:BOT_PRIVATE_KEY" or
// "file:/path/to/key.pem". Every failure is reported as a ConfigurationError
// before any request reaches GitHub.
package githubauth
