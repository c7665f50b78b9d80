// Package mcpserver exposes the record store to agents as a read-only MCP
// server.
//
// Tools:
//   - scan_collection: paginated scan of one collection
//   - get_usecase: fetch one use case record
//   - search_usecases: keyword search over a tenant's use cases
//
// Each agent role from the prompts package is published as an MCP prompt
// whose text lists the collections the agent may read. No tool writes.
package mcpserver
