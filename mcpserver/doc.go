// Package mcpserver provides the Model Context Protocol (MCP) server implementation.
//
// The mcpserver package implements an MCP-compliant server that exposes the
// lesson sandbox over MCP. It uses the mark3labs/mcp-go library to handle
// the protocol details and provides the execute_lesson_code tool as the
// primary interface, plus list_contexts for discovering the configured
// lesson contexts and their limits.
//
// The server supports both stdio and HTTP transports as configured by the
// application configuration.
//
// Usage:
//
//	srv, err := mcpserver.New(cfg, logger, box)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = srv.ServeStdio() // or srv.ServeHTTP()
package mcpserver
