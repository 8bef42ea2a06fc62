// Package backend provides the Timepass API server.

// This package contains the main application entry point. The actual API
// documentation is organized into subpackages:

// - internal/handlers: HTTP request handlers for all API endpoints
// - internal/models: Data models and database schemas
// - internal/auth: Authentication and authorization services
// - internal/stories: Story lifecycle, viewer state machine, reconciliation
// - internal/feed: Post, reel and comment services
// - internal/chat: Two-party messaging with unread counters
// - internal/search: Validated search and recent-search tracking
// - internal/storage: Media sinks (S3 and external host)
// - internal/database: Database connection and migrations
// - internal/notifications: Fire-and-forget notification writes
// - internal/middleware: HTTP middleware (request ids, logging, metrics)
// - internal/seed: Development data seeding

// See the individual package documentation for detailed API reference.
package backend
