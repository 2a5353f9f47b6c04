// Package scriptrunner executes script snippets in isolated child
// processes and serves the operation over the Model Context Protocol.
package scriptrunner

// Version is the scriptrunner release, reported to MCP clients.
const Version = "v0.1.0"
