package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/navegante/internal/dispatch"
	"github.com/roach88/navegante/internal/store"
	"github.com/roach88/navegante/internal/testutil"
)

// Harness executes scenario steps against one dispatcher.
type Harness struct {
	store      *store.Store
	dispatcher *dispatch.Dispatcher
	logger     *slog.Logger
	seq        int64
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Execution flow:
//  1. Create fresh in-memory database
//  2. Execute setup steps (each must succeed)
//  3. Execute flow steps and check expect clauses
//  4. Evaluate assertions against the trace and the store
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests
	h := &Harness{
		store: st,
		dispatcher: dispatch.New(st,
			dispatch.WithClock(testutil.NewStepClock(time.Time{}, time.Minute)),
			dispatch.WithLogger(logger),
		),
		logger: logger,
	}

	ctx := context.Background()
	result := NewResult()

	if err := h.executeSetup(ctx, scenario.Setup, result); err != nil {
		return nil, fmt.Errorf("failed to execute setup: %w", err)
	}
	if err := h.executeFlow(ctx, scenario.Flow, result); err != nil {
		return nil, fmt.Errorf("failed to execute flow: %w", err)
	}

	actx := &AssertionContext{Store: st, Ctx: ctx}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}

	return result, nil
}

// executeSetup runs all setup steps. A failing setup step aborts the run.
func (h *Harness) executeSetup(ctx context.Context, setup []Step, result *Result) error {
	for i, step := range setup {
		event, err := h.execute(ctx, "setup", step)
		if err != nil {
			return fmt.Errorf("setup step %d: %w", i, err)
		}
		result.AddTrace(event)
		if event.Status != "ok" {
			return fmt.Errorf("setup step %d (%s) failed with %s", i, step.Op, event.Code)
		}
	}
	return nil
}

// executeFlow runs all flow steps and records expect mismatches as errors.
func (h *Harness) executeFlow(ctx context.Context, flow []Step, result *Result) error {
	for i, step := range flow {
		event, err := h.execute(ctx, "flow", step)
		if err != nil {
			return fmt.Errorf("flow step %d: %w", i, err)
		}
		result.AddTrace(event)

		if step.Expect == nil {
			continue
		}
		if msg := checkExpect(step.Expect, event); msg != "" {
			result.AddError(fmt.Sprintf("flow[%d] %s: %s", i, step.Op, msg))
		}

		h.logger.Info("flow step completed",
			"step", i,
			"op", step.Op,
			"status", event.Status,
			"code", event.Code,
		)
	}
	return nil
}

// execute runs one step the way a transport would: args are encoded to
// JSON and decoded by the dispatcher catalog.
func (h *Harness) execute(ctx context.Context, phase string, step Step) (TraceEvent, error) {
	var raw json.RawMessage
	if step.Args != nil {
		data, err := json.Marshal(step.Args)
		if err != nil {
			return TraceEvent{}, fmt.Errorf("encode args: %w", err)
		}
		raw = data
	}

	h.seq++
	event := TraceEvent{Seq: h.seq, Phase: phase, Op: step.Op, Status: "ok"}
	if raw != nil {
		args, err := normalize(raw)
		if err != nil {
			return TraceEvent{}, err
		}
		event.Args = args
	}

	req, err := dispatch.Decode(step.Op, raw)
	var result any
	if err == nil {
		result, err = h.dispatcher.Dispatch(ctx, req)
	}
	if err != nil {
		event.Status = "error"
		event.Code = string(dispatch.CodeOf(err))
		return event, nil
	}

	data, err := json.Marshal(result)
	if err != nil {
		return TraceEvent{}, fmt.Errorf("encode result: %w", err)
	}
	if event.Data, err = normalize(data); err != nil {
		return TraceEvent{}, err
	}
	return event, nil
}

// checkExpect returns a description of the mismatch, or "" if event meets e.
func checkExpect(e *ExpectClause, event TraceEvent) string {
	if event.Status != e.Status {
		if event.Code != "" {
			return fmt.Sprintf("expected status %s, got %s (%s)", e.Status, event.Status, event.Code)
		}
		return fmt.Sprintf("expected status %s, got %s", e.Status, event.Status)
	}
	if e.Code != "" && e.Code != event.Code {
		return fmt.Sprintf("expected code %s, got %s", e.Code, event.Code)
	}
	if e.Data != nil {
		want, err := normalizeValue(e.Data)
		if err != nil {
			return fmt.Sprintf("invalid expected data: %v", err)
		}
		if !matchValue(event.Data, want) {
			return fmt.Sprintf("expected data %s, got %s", compact(want), compact(event.Data))
		}
	}
	return ""
}

// normalize decodes JSON into plain maps, slices, float64, string and bool
// so that values from YAML and from results compare uniformly.
func normalize(data []byte) (any, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}
	return v, nil
}

func normalizeValue(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return normalize(data)
}

func compact(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
