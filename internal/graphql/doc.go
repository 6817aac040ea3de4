// Package graphql issues the GitHub GraphQL mutations that attach issues and
// pull requests to classic projects.
package graphql
