package socketrpc

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/heyojules/invite/internal/admin"
	"github.com/heyojules/invite/internal/model"

	"go.uber.org/zap"
)

const (
	// scannerInitBufSize is the initial buffer size for the per-connection scanner (1 MB).
	scannerInitBufSize = 1024 * 1024
	// scannerMaxTokenSize is the maximum token size the scanner will accept (10 MB).
	scannerMaxTokenSize = 10 * 1024 * 1024
)

// Store is the slice of model.Backend the admin channel reads and prunes.
type Store interface {
	model.RSVPReader
	ListGuestbook(limit int) ([]model.GuestbookEntry, error)
	DeleteGuestbookEntry(id string) error
	ListPhotos(limit int) ([]model.Photo, error)
	DeletePhoto(id string) error
}

// Authorizer checks the admin password.
type Authorizer interface {
	Check(password string) error
}

// Server exposes the admin operations over a Unix domain socket using JSON-RPC 2.0.
type Server struct {
	socketPath string
	store      Store
	auth       Authorizer
	logger     *zap.Logger
	listener   net.Listener
	wg         sync.WaitGroup
	quit       chan struct{}
	stopOnce   sync.Once
}

// NewServer creates a new socket RPC server. A nil logger discards output.
func NewServer(socketPath string, store Store, auth Authorizer, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		socketPath: socketPath,
		store:      store,
		auth:       auth,
		logger:     logger.Named("socketrpc"),
		quit:       make(chan struct{}),
	}
}

// Start begins listening on the Unix socket and accepting connections.
func (s *Server) Start() error {
	// Ensure the parent directory exists.
	if err := os.MkdirAll(filepath.Dir(s.socketPath), 0700); err != nil {
		return fmt.Errorf("socketrpc: mkdir: %w", err)
	}

	// Remove stale socket if it exists.
	if _, err := os.Stat(s.socketPath); err == nil {
		conn, dialErr := net.DialTimeout("unix", s.socketPath, 500*time.Millisecond)
		if dialErr != nil {
			// Socket file exists but nobody is listening, so it is stale.
			os.Remove(s.socketPath)
		} else {
			conn.Close()
			return fmt.Errorf("socketrpc: another server is already listening on %s", s.socketPath)
		}
	}

	ln, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("socketrpc: listen: %w", err)
	}
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		ln.Close()
		return fmt.Errorf("socketrpc: chmod: %w", err)
	}
	s.listener = ln

	s.wg.Add(1)
	go s.acceptLoop()

	s.logger.Info("listening", zap.String("socket", s.socketPath))
	return nil
}

// Stop closes the listener, waits for connections to drain, and removes the socket file.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.quit)
		if s.listener != nil {
			s.listener.Close()
		}
		s.wg.Wait()
		os.Remove(s.socketPath)
	})
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.quit:
				return
			default:
				s.logger.Warn("accept error", zap.Error(err))
				// Continue on transient errors (e.g., fd limit) instead of
				// killing the entire accept loop.
				continue
			}
		}
		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	// Unblock the scanner when the server stops.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-s.quit:
			conn.Close()
		case <-done:
		}
	}()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, scannerInitBufSize), scannerMaxTokenSize)
	encoder := json.NewEncoder(conn)

	for scanner.Scan() {
		var req Request
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
			resp := Response{JSONRPC: "2.0", ID: 0, Error: &RPCError{Code: CodeParseError, Message: "parse error"}}
			encoder.Encode(resp)
			continue
		}

		resp := s.dispatch(req)
		if err := encoder.Encode(resp); err != nil {
			return
		}
	}
}

func (s *Server) dispatch(req Request) Response {
	resp := Response{JSONRPC: "2.0", ID: req.ID}

	fail := func(err error) Response {
		code := CodeApplication
		switch {
		case errors.Is(err, admin.ErrUnauthorized):
			code = CodeUnauthorized
		case errors.Is(err, model.ErrNotFound):
			code = CodeNotFound
		}
		resp.Error = &RPCError{Code: code, Message: err.Error()}
		return resp
	}

	marshalResult := func(v interface{}, err error) Response {
		if err != nil {
			return fail(err)
		}
		data, merr := json.Marshal(v)
		if merr != nil {
			resp.Error = &RPCError{Code: CodeInternal, Message: merr.Error()}
			return resp
		}
		resp.Result = data
		return resp
	}

	invalidParams := func(err error) Response {
		resp.Error = &RPCError{Code: CodeInvalidParams, Message: fmt.Sprintf("invalid params: %v", err)}
		return resp
	}

	authorize := func(password string) error {
		if s.auth == nil {
			return admin.ErrUnauthorized
		}
		if err := s.auth.Check(password); err != nil {
			s.logger.Warn("admin password rejected", zap.String("method", req.Method))
			return err
		}
		return nil
	}

	switch req.Method {
	case "AdminSummary":
		var p struct{ Password string }
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return invalidParams(err)
		}
		if err := authorize(p.Password); err != nil {
			return fail(err)
		}
		rows, err := s.store.ListRSVPs()
		if err != nil {
			return fail(err)
		}
		return marshalResult(admin.Summarize(rows), nil)

	case "ListRSVPs":
		var p struct{ Password string }
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return invalidParams(err)
		}
		if err := authorize(p.Password); err != nil {
			return fail(err)
		}
		return marshalResult(s.store.ListRSVPs())

	case "ListGuestbook":
		var p struct{ Limit int }
		// Allow empty/null params for defaults; only reject genuinely malformed JSON.
		if err := json.Unmarshal(req.Params, &p); err != nil && len(req.Params) > 0 {
			return invalidParams(err)
		}
		return marshalResult(s.store.ListGuestbook(p.Limit))

	case "ListPhotos":
		var p struct{ Limit int }
		if err := json.Unmarshal(req.Params, &p); err != nil && len(req.Params) > 0 {
			return invalidParams(err)
		}
		return marshalResult(s.store.ListPhotos(p.Limit))

	case "DeleteGuestbookEntry", "DeletePhoto":
		var p struct {
			Password string
			ID       string
		}
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return invalidParams(err)
		}
		if p.ID == "" {
			return invalidParams(errors.New("ID is required"))
		}
		if err := authorize(p.Password); err != nil {
			return fail(err)
		}
		del := s.store.DeleteGuestbookEntry
		if req.Method == "DeletePhoto" {
			del = s.store.DeletePhoto
		}
		if err := del(p.ID); err != nil {
			return fail(err)
		}
		s.logger.Info("record deleted", zap.String("method", req.Method), zap.String("id", p.ID))
		return marshalResult(true, nil)

	default:
		resp.Error = &RPCError{Code: CodeMethodNotFound, Message: fmt.Sprintf("method not found: %s", req.Method)}
		return resp
	}
}
