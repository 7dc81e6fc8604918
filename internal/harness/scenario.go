package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Scenario is a sequence of operations with expected outcomes.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Setup runs before the flow. Every setup step must succeed.
	Setup []Step `yaml:"setup,omitempty"`

	// Flow is the main sequence. Each step may carry an expect clause.
	Flow []Step `yaml:"flow"`

	// Assertions validate the final trace and store state.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one operation.
type Step struct {
	// Op is the operation wire name (e.g. "add-section").
	Op string `yaml:"op"`

	// Args are the operation arguments: a mapping, a bare value or absent.
	Args any `yaml:"args,omitempty"`

	// Expect specifies the expected outcome. If nil, success is assumed
	// but not enforced.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected outcome of a flow step.
type ExpectClause struct {
	// Status is "ok" or "error". Defaults to "error" when Code is set,
	// "ok" otherwise.
	Status string `yaml:"status,omitempty"`

	// Code is the expected failure code (e.g. "IN_USE").
	Code string `yaml:"code,omitempty"`

	// Data is matched against the result as JSON. Mappings match as a
	// subset; sequences must have the same length.
	Data any `yaml:"data,omitempty"`
}

// Assertion validates trace or final state.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Op is the operation name (trace_contains, trace_count).
	Op string `yaml:"op,omitempty"`

	// Args are the expected arguments (trace_contains), subset match.
	Args map[string]any `yaml:"args,omitempty"`

	// Ops is the expected operation order (trace_order).
	Ops []string `yaml:"ops,omitempty"`

	// Table is the store table (final_state, row_count).
	Table string `yaml:"table,omitempty"`

	// Where filters rows by exact column values (final_state, row_count).
	Where map[string]any `yaml:"where,omitempty"`

	// Expect contains expected column values (final_state), subset match.
	Expect map[string]any `yaml:"expect,omitempty"`

	// Count is the expected number (trace_count, row_count).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalState    = "final_state"
	AssertRowCount      = "row_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// FindScenarios returns the .yaml and .yml files under dir, sorted.
// A non-empty filter is a glob matched against the file name without extension.
func FindScenarios(dir, filter string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if filter != "" {
			name := filepath.Base(path)
			matched, err := filepath.Match(filter, name[:len(name)-len(ext)])
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	sort.Strings(files)
	return files, err
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Setup {
		if step.Op == "" {
			return fmt.Errorf("setup[%d]: op is required", i)
		}
		if step.Expect != nil {
			return fmt.Errorf("setup[%d]: expect is not allowed in setup", i)
		}
	}

	for i := range s.Flow {
		step := &s.Flow[i]
		if step.Op == "" {
			return fmt.Errorf("flow[%d]: op is required", i)
		}
		if step.Expect == nil {
			continue
		}
		if step.Expect.Status == "" {
			step.Expect.Status = "ok"
			if step.Expect.Code != "" {
				step.Expect.Status = "error"
			}
		}
		switch step.Expect.Status {
		case "ok":
			if step.Expect.Code != "" {
				return fmt.Errorf("flow[%d].expect: code is only valid with status error", i)
			}
		case "error":
			if step.Expect.Data != nil {
				return fmt.Errorf("flow[%d].expect: data is only valid with status ok", i)
			}
		default:
			return fmt.Errorf("flow[%d].expect: status must be ok or error, got %q", i, step.Expect.Status)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Ops) == 0 {
			return fmt.Errorf("assertions[%d]: ops list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertFinalState:
		if a.Table == "" {
			return fmt.Errorf("assertions[%d]: table is required for final_state", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	case AssertRowCount:
		if a.Table == "" {
			return fmt.Errorf("assertions[%d]: table is required for row_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for row_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
