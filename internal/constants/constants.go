package constants

// Context keys shared between middleware and handlers.
const (
	ContextKeyPrincipal = "principal"
	ContextKeyLogger    = "logger"
	ContextKeyRequestID = "request_id"
)

const HeaderRequestID = "X-Request-ID"

// Pagination limits.
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

const MinPasswordLength = 8

// TokenType is reported alongside every issued access token.
const TokenType = "bearer"
