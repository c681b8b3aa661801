// Package main is the entry point for the lessonbox MCP server.
//
// The lessonbox server implements a configurable Model Context Protocol (MCP)
// server that validates and executes learner-submitted lesson code under a
// per-context allow-list policy, with captured output streams and hard
// execution deadlines. The server supports both stdio and HTTP transports.
//
// The application uses Uber's fx framework for dependency injection and lifecycle
// management, with zap for structured logging and viper for configuration.
package main
