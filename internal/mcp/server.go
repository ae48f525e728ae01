// Package mcp exposes the item database over the Model Context Protocol.
package mcp

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	"github.com/AIxMath/Acorn-MCP/internal/store"
)

// Server manages the MCP server lifecycle.
type Server struct {
	store *store.Store
	mcp   *server.MCPServer
}

// NewServer creates an MCP server backed by st and registers every tool.
func NewServer(st *store.Store, version string) *Server {
	mcpServer := server.NewMCPServer(
		"acorn-mcp",
		version,
		server.WithToolCapabilities(true),
	)

	AddTheoremTools(mcpServer, st)
	AddDefinitionTools(mcpServer, st)
	AddSyntaxTools(mcpServer)

	return &Server{store: st, mcp: mcpServer}
}

// Serve starts the MCP server on stdio and blocks until shutdown.
func (s *Server) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting MCP server on stdio...")
		if err := server.ServeStdio(s.mcp); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-sigCh:
		log.Printf("Received shutdown signal, stopping gracefully...")
		return nil
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
