package utils

import "time"

// ContextKey is the type for request-scoped context values
type ContextKey string

// Request-scoped context keys set by handlers for flows and audit logging
const (
	RequestIDKey  ContextKey = "request_id"
	UserAgentKey  ContextKey = "user_agent"
	IPAddressKey  ContextKey = "ip_address"
	EndpointKey   ContextKey = "endpoint"
	TimeoutKey    ContextKey = "timeout"
	CancelFuncKey ContextKey = "cancel_func"
)

// Permission strings enforced by the commissions router
const (
	PermissionCommissionsRead   = "commissions:read"
	PermissionCommissionsManage = "commissions:manage"
)

// DateLayout is the wire format for period bounds
const DateLayout = "2006-01-02"

// CalculationCacheTTL bounds staleness of cached calculation results
const CalculationCacheTTL = 60 * time.Second

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)
