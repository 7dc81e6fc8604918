package transport

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/roach88/navegante/internal/dispatch"
)

const maxLineBytes = 4 << 20

// StdioServer serves JSON-lines requests from a reader and writes one
// response line per request, in request order.
type StdioServer struct {
	handler *Handler
	logger  *slog.Logger
}

// NewStdioServer creates a StdioServer. A nil logger discards output.
func NewStdioServer(h *Handler, logger *slog.Logger) *StdioServer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &StdioServer{handler: h, logger: logger}
}

// Serve reads requests from r until EOF or ctx is canceled.
// Blank lines are skipped. A line that is not an envelope gets a
// BAD_REQUEST response and the loop continues.
func (s *StdioServer) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	out := &lineWriter{enc: json.NewEncoder(w)}

	lines := make(chan []byte)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		for scanner.Scan() {
			line := append([]byte(nil), scanner.Bytes()...)
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				if err := <-scanErr; err != nil {
					return fmt.Errorf("read requests: %w", err)
				}
				return nil
			}
			if len(bytes.TrimSpace(line)) == 0 {
				continue
			}
			if err := out.write(s.handleLine(ctx, line)); err != nil {
				return fmt.Errorf("write response: %w", err)
			}
		}
	}
}

func (s *StdioServer) handleLine(ctx context.Context, line []byte) Response {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		s.logger.Warn("malformed request line", "error", err)
		return badRequest(nil, fmt.Sprintf("malformed request: %v", err))
	}
	if req.Op == "" {
		return badRequest(req.ID, "missing op")
	}
	resp := s.handler.Handle(ctx, req)
	if resp.Error != nil && resp.Error.Code == string(dispatch.CodeInternal) {
		s.logger.Error("operation panicked", "op", req.Op, "error", resp.Error.Message)
	}
	return resp
}

type lineWriter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// write emits resp as one line; json.Encoder appends the newline.
func (w *lineWriter) write(resp Response) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.enc.Encode(resp)
}
