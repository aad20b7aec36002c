package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines one shopping-session test.
type Scenario struct {
	// Name uniquely identifies this scenario. Doubles as the golden file
	// name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// PageSize overrides the query engine page size. Zero keeps the
	// engine default.
	PageSize int `yaml:"page_size,omitempty"`

	// DebounceMS overrides the quiet period in milliseconds. Zero keeps
	// the engine default.
	DebounceMS int `yaml:"debounce_ms,omitempty"`

	// SubmitDelayMS overrides the simulated payment latency in
	// milliseconds. Zero keeps the machine default.
	SubmitDelayMS int `yaml:"submit_delay_ms,omitempty"`

	// Catalog is the canned product set the scripted remote serves.
	Catalog []CatalogItem `yaml:"catalog"`

	// Steps is the shopper's action sequence.
	Steps []Step `yaml:"steps"`

	// Assertions validate the trace and final state.
	Assertions []Assertion `yaml:"assertions"`
}

// CatalogItem is one canned product. Variant options are derived from
// the category the same way production fetches derive them.
type CatalogItem struct {
	ID       int     `yaml:"id"`
	Title    string  `yaml:"title"`
	Price    float64 `yaml:"price"`
	Category string  `yaml:"category"`
	Stock    int     `yaml:"stock,omitempty"`
}

// Step ops.
const (
	OpSearch         = "search"          // value: search text
	OpCategory       = "category"        // value: category slug
	OpRefresh        = "refresh"         // immediate query, no debounce
	OpNextPage       = "next_page"       // append the page at the cursor
	OpSort           = "sort"            // value: none|asc|desc
	OpAdvance        = "advance"         // ms: move the clock forward
	OpAdd            = "add"             // product_id (+ optional color/size)
	OpUpdateQuantity = "update_quantity" // line_id, quantity
	OpRemove         = "remove"          // line_id
	OpClear          = "clear"
	OpBegin          = "begin"
	OpBack           = "back"
	OpField          = "field" // field, value
	OpForm           = "form"  // fields: full form map
	OpSubmit         = "submit"
)

// Step is one shopper action.
type Step struct {
	Op string `yaml:"op"`

	Value     string            `yaml:"value,omitempty"`
	MS        int               `yaml:"ms,omitempty"`
	ProductID int               `yaml:"product_id,omitempty"`
	Color     string            `yaml:"color,omitempty"`
	Size      string            `yaml:"size,omitempty"`
	LineID    string            `yaml:"line_id,omitempty"`
	Quantity  int               `yaml:"quantity,omitempty"`
	Field     string            `yaml:"field,omitempty"`
	Fields    map[string]string `yaml:"fields,omitempty"`

	// MustFail marks a step whose guard is expected to reject it (for
	// example submitting with an invalid form). The run fails if the
	// step unexpectedly succeeds.
	MustFail bool `yaml:"must_fail,omitempty"`
}

// Assertion types.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalState    = "final_state"
)

// Assertion validates the trace or the final state.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Op is the trace op (trace_contains, trace_count).
	Op string `yaml:"op,omitempty"`

	// Detail is a subset match over the event detail (trace_contains).
	Detail map[string]any `yaml:"detail,omitempty"`

	// Ops is the expected op order (trace_order). Ops need not be
	// consecutive in the trace.
	Ops []string `yaml:"ops,omitempty"`

	// Count is the expected number of occurrences (trace_count).
	Count int `yaml:"count,omitempty"`

	// Expect is a subset match over the final state (final_state).
	// Keys: step, cart_lines, cart_total, orders, order_id, visible,
	// total, has_more.
	Expect map[string]any `yaml:"expect,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected so typos fail loudly instead of silently validating nothing.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

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

var validOps = map[string]bool{
	OpSearch: true, OpCategory: true, OpRefresh: true, OpNextPage: true,
	OpSort: true, OpAdvance: true, OpAdd: true, OpUpdateQuantity: true,
	OpRemove: true, OpClear: true, OpBegin: true, OpBack: true,
	OpField: true, OpForm: true, OpSubmit: true,
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	seen := make(map[int]bool, len(s.Catalog))
	for i, item := range s.Catalog {
		if item.ID <= 0 {
			return fmt.Errorf("catalog[%d]: id must be positive", i)
		}
		if seen[item.ID] {
			return fmt.Errorf("catalog[%d]: duplicate id %d", i, item.ID)
		}
		seen[item.ID] = true
		if item.Title == "" {
			return fmt.Errorf("catalog[%d]: title is required", i)
		}
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

// validateStep checks per-op required fields.
func validateStep(index int, step *Step) error {
	if !validOps[step.Op] {
		return fmt.Errorf("steps[%d]: unknown op %q", index, step.Op)
	}

	switch step.Op {
	case OpSearch, OpCategory, OpSort:
		// Empty value is legal for search (cleared text).
	case OpAdvance:
		if step.MS <= 0 {
			return fmt.Errorf("steps[%d]: advance requires ms > 0", index)
		}
	case OpAdd:
		if step.ProductID <= 0 {
			return fmt.Errorf("steps[%d]: add requires product_id", index)
		}
	case OpUpdateQuantity:
		if step.LineID == "" {
			return fmt.Errorf("steps[%d]: update_quantity requires line_id", index)
		}
	case OpRemove:
		if step.LineID == "" {
			return fmt.Errorf("steps[%d]: remove requires line_id", index)
		}
	case OpField:
		if step.Field == "" {
			return fmt.Errorf("steps[%d]: field requires field", index)
		}
	case OpForm:
		if len(step.Fields) == 0 {
			return fmt.Errorf("steps[%d]: form requires fields", index)
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
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
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
