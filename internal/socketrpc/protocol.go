package socketrpc

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// JSON-RPC 2.0 Method Reference
//
// The socket RPC server is the local admin channel of the invitation
// service. Guests never reach it; the TUI dashboard and scripts on the host do.
//
//   Method                  Params                           Result
//   ────────────────────    ──────────────────────────────   ──────────────────────
//   AdminSummary            {Password: string}               admin.Summary
//   ListRSVPs               {Password: string}               []model.RSVP
//   ListGuestbook           {Limit: int}                     []model.GuestbookEntry
//   ListPhotos              {Limit: int}                     []model.Photo
//   DeleteGuestbookEntry    {Password: string, ID: string}   true
//   DeletePhoto             {Password: string, ID: string}   true
//
// ListGuestbook and ListPhotos accept empty or null params (default limit).
//
// Error codes follow JSON-RPC 2.0:
//   -32700  Parse error (malformed JSON)
//   -32601  Method not found
//   -32602  Invalid params
//   -32603  Internal error (marshal failure)
//   -32000  Application error (query failure)
//   -32001  Unauthorized (wrong admin password)
//   -32004  Not found

const (
	CodeParseError     = -32700
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternal       = -32603
	CodeApplication    = -32000
	CodeUnauthorized   = -32001
	CodeNotFound       = -32004
)

// Request is a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

// Response is a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError represents a JSON-RPC 2.0 error object.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string { return e.Message }

// DefaultSocketPath returns the default Unix socket path.
// It prefers $XDG_RUNTIME_DIR/invite/invite.sock, falling back to
// ~/.local/state/invite/invite.sock.
func DefaultSocketPath() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "invite", "invite.sock")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "/tmp/invite.sock"
	}
	return filepath.Join(home, ".local", "state", "invite", "invite.sock")
}
