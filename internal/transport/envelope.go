// Package transport carries operations across the process boundary.
//
// Two carriers share one envelope: JSON lines over a reader/writer pair
// (a UI that spawns the backend talks over stdin/stdout) and a loopback
// HTTP API. Both decode the operation, dispatch it and answer with a
// Response whose shape does not depend on the carrier.
package transport

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/navegante/internal/dispatch"
)

// Request is one inbound operation.
type Request struct {
	// ID is echoed back verbatim. Any JSON value is accepted.
	ID   json.RawMessage `json:"id,omitempty"`
	Op   string          `json:"op"`
	Args json.RawMessage `json:"args,omitempty"`
}

// Response is the outcome of one operation.
type Response struct {
	ID     json.RawMessage `json:"id"`
	Status string          `json:"status"` // "ok" or "error"
	Data   any             `json:"data,omitempty"`
	Error  *ErrorBody      `json:"error,omitempty"`
}

// ErrorBody describes a failed operation.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Dispatcher executes typed requests.
type Dispatcher interface {
	Dispatch(ctx context.Context, req dispatch.Request) (any, error)
}

// IDGenerator produces request ids for requests that arrive without one.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 request ids.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Handler decodes, dispatches and wraps results in a Response.
type Handler struct {
	dispatcher Dispatcher
	ids        IDGenerator
}

// NewHandler creates a Handler. A nil ids uses UUIDv7Generator.
func NewHandler(d Dispatcher, ids IDGenerator) *Handler {
	if ids == nil {
		ids = UUIDv7Generator{}
	}
	return &Handler{dispatcher: d, ids: ids}
}

// Handle executes req. It never returns an error: failures are carried
// in the Response. A panic inside the operation becomes an INTERNAL
// failure so one bad request cannot take down a long-lived server.
func (h *Handler) Handle(ctx context.Context, req Request) (resp Response) {
	id := req.ID
	if len(id) == 0 || string(id) == "null" {
		id = h.newID()
	}
	resp = Response{ID: id}
	defer func() {
		if r := recover(); r != nil {
			resp = failed(Response{ID: id}, &dispatch.Error{
				Code:    dispatch.CodeInternal,
				Op:      dispatch.Op(req.Op),
				Message: fmt.Sprintf("internal error: %v", r),
			})
		}
	}()

	typed, err := dispatch.Decode(req.Op, req.Args)
	if err != nil {
		return failed(resp, err)
	}
	result, err := h.dispatcher.Dispatch(dispatch.WithRequestID(ctx, idString(id)), typed)
	if err != nil {
		return failed(resp, err)
	}
	resp.Status = "ok"
	resp.Data = result
	return resp
}

func (h *Handler) newID() json.RawMessage {
	data, _ := json.Marshal(h.ids.Generate())
	return data
}

func failed(resp Response, err error) Response {
	resp.Status = "error"
	resp.Error = &ErrorBody{Code: string(dispatch.CodeOf(err)), Message: err.Error()}
	return resp
}

// badRequest is the response for input that is not an envelope at all.
func badRequest(id json.RawMessage, msg string) Response {
	if len(id) == 0 {
		id = json.RawMessage("null")
	}
	return Response{
		ID:     id,
		Status: "error",
		Error:  &ErrorBody{Code: string(dispatch.CodeBadRequest), Message: msg},
	}
}

// idString renders id for logs: strings unquoted, anything else as raw JSON.
func idString(id json.RawMessage) string {
	var s string
	if err := json.Unmarshal(id, &s); err == nil {
		return s
	}
	return string(id)
}
