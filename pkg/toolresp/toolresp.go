// Package toolresp defines the JSON envelope returned by every tool handler.
//
// Handler failures never surface as transport-level errors: each tool returns
// one text payload containing a JSON object with a "success" boolean and, on
// failure, an "error" message plus a classified "kind". Clients and tests can
// branch on the kind instead of string-matching the message.
package toolresp

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// Kind classifies a failed tool call.
type Kind string

const (
	// KindValidation marks input errors detected before any warehouse call.
	KindValidation Kind = "validation"
	// KindUpstream marks warehouse/query failures; the driver message is
	// passed through verbatim.
	KindUpstream Kind = "upstream"
	// KindNotFound marks lookups that resolved to nothing.
	KindNotFound Kind = "not_found"
)

// Envelope is the failure shape. Success payloads marshal their own structs
// with Success=true folded in (see JSON).
type Envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Kind    Kind   `json:"kind,omitempty"`
}

// JSON marshals v indented and wraps it in a single MCP text content. A
// marshal failure is reported as an upstream error rather than panicking.
func JSON(v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return Errorf(KindUpstream, "encode result: %v", err)
	}
	return mcp.NewToolResultText(string(data))
}

// Error returns a failure envelope with the given kind and message.
func Error(kind Kind, msg string) *mcp.CallToolResult {
	return JSON(Envelope{Success: false, Error: msg, Kind: kind})
}

// Errorf formats a failure envelope message.
func Errorf(kind Kind, format string, args ...any) *mcp.CallToolResult {
	return Error(kind, fmt.Sprintf(format, args...))
}

// Required returns the canonical missing-argument failure for a field.
func Required(field string) *mcp.CallToolResult {
	return Error(KindValidation, field+" is required")
}

// Upstream converts a warehouse error into a failure envelope, keeping the
// underlying message verbatim.
func Upstream(err error) *mcp.CallToolResult {
	return Error(KindUpstream, err.Error())
}

// Text wraps freeform report text (the narrative tools bypass the JSON
// envelope by design).
func Text(s string) *mcp.CallToolResult {
	return mcp.NewToolResultText(s)
}
