// Package service provides the business logic layer for the bomber grid game.
//
// The service package implements:
//   - Multi-session game management
//   - Level loading through a ConfigManager
//   - Command parsing, execution and event reporting
//   - Bulk command runs with stop diagnostics
//   - Paginated command history
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages level loading and validation.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP/terminal)
// and the game engine. Each session owns its own engine instance; the service
// serializes all commands so an engine is never driven from two goroutines.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	sessionInfo, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Command(ctx, sessionInfo.ID, "plant", false)
//	result, err = gameService.Detonate(ctx, sessionInfo.ID)
//
// Errors:
//
// Lookups of unknown sessions and levels wrap ErrSessionNotFound and
// ErrConfigNotFound. Text that does not parse as a command wraps
// ErrInvalidCommand. A command the engine rejects is not an error: it comes
// back as a CommandResult with Success false and a Reason.
package service
