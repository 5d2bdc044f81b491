// Package errors provides error codes for report notification delivery
package errors

// ErrorCode represents a delivery error code
type ErrorCode string

// Configuration Error Codes
const (
	// ErrInvalidRecipientConfig indicates the recipient config JSON could not be parsed
	ErrInvalidRecipientConfig ErrorCode = "INVALID_RECIPIENT_CONFIG"

	// ErrMissingTarget indicates the recipient config has no usable target
	ErrMissingTarget ErrorCode = "MISSING_TARGET"

	// ErrUnsupportedRecipient indicates no channel is registered for a recipient type
	ErrUnsupportedRecipient ErrorCode = "UNSUPPORTED_RECIPIENT"
)

// Upstream Error Codes
const (
	// ErrReportGeneration indicates the report pipeline produced errors instead of content
	ErrReportGeneration ErrorCode = "REPORT_GENERATION_FAILED"
)

// Transport Error Codes
const (
	// ErrNetworkTimeout indicates the request did not complete in time
	ErrNetworkTimeout ErrorCode = "NETWORK_TIMEOUT"

	// ErrConnectionFailed indicates connection failure
	ErrConnectionFailed ErrorCode = "CONNECTION_FAILED"

	// ErrDNSResolutionFailed indicates DNS resolution failed
	ErrDNSResolutionFailed ErrorCode = "DNS_RESOLUTION_FAILED"

	// ErrSSLError indicates an SSL/TLS error
	ErrSSLError ErrorCode = "SSL_ERROR"

	// ErrCancelled indicates the caller cancelled the delivery
	ErrCancelled ErrorCode = "CANCELLED"

	// ErrTransport indicates any other failure to complete the request
	ErrTransport ErrorCode = "TRANSPORT_ERROR"
)

// HTTP Error Codes
const (
	// ErrHTTPStatus indicates the endpoint answered with a non-2xx status
	ErrHTTPStatus ErrorCode = "HTTP_STATUS_ERROR"
)

// Internal Error Codes
const (
	// ErrPayloadEncoding indicates the envelope could not be serialized
	ErrPayloadEncoding ErrorCode = "PAYLOAD_ENCODING_FAILED"

	// ErrInternal indicates an internal error
	ErrInternal ErrorCode = "INTERNAL_ERROR"
)

// Category groups error codes by where the failure originated
type Category string

const (
	CategoryConfiguration Category = "configuration"
	CategoryUpstream      Category = "upstream"
	CategoryTransport     Category = "transport"
	CategoryHTTP          Category = "http"
	CategoryInternal      Category = "internal"
	CategoryUnknown       Category = "unknown"
)

// ErrorCodeInfo provides information about an error code
type ErrorCodeInfo struct {
	Code        ErrorCode `json:"code"`
	Category    Category  `json:"category"`
	Description string    `json:"description"`
}

// GetErrorCodeInfo returns information about an error code
func GetErrorCodeInfo(code ErrorCode) ErrorCodeInfo {
	info, exists := errorCodeInfoMap[code]
	if !exists {
		return ErrorCodeInfo{
			Code:        code,
			Category:    CategoryUnknown,
			Description: "Unknown error code",
		}
	}
	return info
}

// GetCategory returns the category of an error code
func GetCategory(code ErrorCode) Category {
	return GetErrorCodeInfo(code).Category
}

// Error code information mapping
var errorCodeInfoMap = map[ErrorCode]ErrorCodeInfo{
	ErrInvalidRecipientConfig: {
		Code:        ErrInvalidRecipientConfig,
		Category:    CategoryConfiguration,
		Description: "Recipient configuration is not valid JSON",
	},
	ErrMissingTarget: {
		Code:        ErrMissingTarget,
		Category:    CategoryConfiguration,
		Description: "Recipient configuration has no target",
	},
	ErrUnsupportedRecipient: {
		Code:        ErrUnsupportedRecipient,
		Category:    CategoryConfiguration,
		Description: "No channel registered for recipient type",
	},
	ErrReportGeneration: {
		Code:        ErrReportGeneration,
		Category:    CategoryUpstream,
		Description: "Report or alert generation failed",
	},
	ErrNetworkTimeout: {
		Code:        ErrNetworkTimeout,
		Category:    CategoryTransport,
		Description: "Request timed out",
	},
	ErrConnectionFailed: {
		Code:        ErrConnectionFailed,
		Category:    CategoryTransport,
		Description: "Connection failed",
	},
	ErrDNSResolutionFailed: {
		Code:        ErrDNSResolutionFailed,
		Category:    CategoryTransport,
		Description: "DNS resolution failed",
	},
	ErrSSLError: {
		Code:        ErrSSLError,
		Category:    CategoryTransport,
		Description: "TLS handshake or certificate verification failed",
	},
	ErrCancelled: {
		Code:        ErrCancelled,
		Category:    CategoryTransport,
		Description: "Delivery cancelled by caller",
	},
	ErrTransport: {
		Code:        ErrTransport,
		Category:    CategoryTransport,
		Description: "Request could not be completed",
	},
	ErrHTTPStatus: {
		Code:        ErrHTTPStatus,
		Category:    CategoryHTTP,
		Description: "Endpoint returned a non-2xx status",
	},
	ErrPayloadEncoding: {
		Code:        ErrPayloadEncoding,
		Category:    CategoryInternal,
		Description: "Payload serialization failed",
	},
	ErrInternal: {
		Code:        ErrInternal,
		Category:    CategoryInternal,
		Description: "Internal error",
	},
}
