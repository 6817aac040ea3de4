// Package projects attaches issues and pull requests to classic organization projects.
//
// Service mints an installation token for the repository owner, resolves the project by exact
// name, looks up the target's node id and runs the matching GraphQL mutation. CommandBuilder
// exposes the flow as the add_to_project cobra command.
package projects
