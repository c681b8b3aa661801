// Package main is the entry point for the lessonbox MCP server.
//
// The lessonbox server exposes the textbook's code validation and restricted
// execution sandbox over the Model Context Protocol (MCP). Submitted lesson
// code is statically validated against a per-context allow-list policy and
// then executed in a restricted environment (a throwaway Python interpreter
// or an embedded goja VM) with captured output and hard deadlines. The
// server supports both stdio and HTTP transports.
//
// The application uses Uber's fx framework for dependency injection and
// lifecycle management, with zap for structured logging and viper for
// configuration.
package main

import (
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/devanik21/lessonbox/config"
	"github.com/devanik21/lessonbox/logger"
	"github.com/devanik21/lessonbox/mcpserver"
	"github.com/devanik21/lessonbox/policy"
	"github.com/devanik21/lessonbox/sandbox"
)

// newRegistry builds the policy registry from the configured base limits and
// the optional contexts file.
func newRegistry(cfg *config.Config) (*policy.Registry, error) {
	return policy.BuildRegistry(cfg.BasePolicy(), cfg.Sandbox.ContextsFile)
}

// newRunner creates the execution backend selected in the configuration.
func newRunner(cfg *config.Config, log *zap.Logger) (sandbox.Runner, error) {
	return sandbox.NewRunner(log, cfg.Sandbox.Backend, cfg.Sandbox.PythonBin)
}

func main() {
	app := fx.New(
		// Provide dependencies
		fx.Provide(
			// Config
			config.New,

			// Logger with configuration
			logger.NewFromConfig,

			// Policy registry and execution backend
			newRegistry,
			newRunner,

			// Governed sandbox facade
			sandbox.NewGovernor,
			sandbox.New,

			// MCP Server
			mcpserver.New,
		),

		// Start the appropriate transport based on config
		fx.Invoke(
			func(cfg *config.Config, server *mcpserver.MCPServer) {
				switch cfg.Server.Transport {
				case "stdio":
					// Use fx to run this as a background task
					go func() {
						if err := server.ServeStdio(); err != nil {
							panic(err)
						}
					}()
				case "http":
					go func() {
						if err := server.ServeHTTP(); err != nil {
							panic(err)
						}
					}()
				default:
					panic("unsupported transport: " + cfg.Server.Transport)
				}
			},
		),

		// Use the application logger for fx logs
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
	)

	// Start the application
	app.Run()
}
