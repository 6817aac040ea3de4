// Package githubtest provides an in-process fake of the GitHub REST and GraphQL
// endpoints together with key material for exercising GitHub App flows in tests.
package githubtest
