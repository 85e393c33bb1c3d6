package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/polyquery/internal/fixtures"
	"github.com/roach88/polyquery/internal/querysql"
	"github.com/roach88/polyquery/internal/resolver"
)

// Scenario defines a verification scenario: seed cases, then run named
// queries and check the matching case codes.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Fixtures lists fixture files (.yaml, .yml or .cue) to seed.
	// Paths are relative to the scenario file location.
	Fixtures []string `yaml:"fixtures,omitempty"`

	// Cases are seeded after the fixture files.
	Cases []fixtures.CaseSpec `yaml:"cases,omitempty"`

	// Steps run in order against the seeded store.
	Steps []Step `yaml:"steps"`
}

// Step runs one named query.
type Step struct {
	// Name describes the step. Defaults to "<index>-<query>".
	Name string `yaml:"name,omitempty"`

	// Query is a resolver op name, e.g. "code-or-nid".
	Query string `yaml:"query"`

	// Criteria are the op's inputs. Absent criteria add no clause.
	Criteria resolver.Criteria `yaml:"criteria,omitempty"`

	// Mode is "strict" (default) or "lenient".
	Mode string `yaml:"mode,omitempty"`

	// ExpectCodes lists the case codes the query must return, in any order.
	// Ignored when ExpectError is set.
	ExpectCodes []string `yaml:"expect_codes"`

	// ExpectError is a substring of the error the step must fail with.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// Fixture paths are resolved relative to the scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	base := filepath.Dir(path)
	for i, fixturePath := range scenario.Fixtures {
		if !filepath.IsAbs(fixturePath) {
			scenario.Fixtures[i] = filepath.Join(base, fixturePath)
		}
	}

	if err := validateFixturePaths(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return scenario, nil
}

// ParseScenario parses scenario YAML. Fixture paths are left as written.
func ParseScenario(data []byte) (*Scenario, error) {
	// Parse YAML with strict field validation (catches typos like "step:" vs "steps:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
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

	for i := range s.Steps {
		step := &s.Steps[i]
		if step.Query == "" {
			return fmt.Errorf("steps[%d]: query is required", i)
		}
		if _, ok := resolver.Lookup(step.Query); !ok {
			return fmt.Errorf("steps[%d]: unknown query %q", i, step.Query)
		}
		if _, err := querysql.ParseMode(step.Mode); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
		if step.Name == "" {
			step.Name = fmt.Sprintf("%d-%s", i, step.Query)
		}
	}

	return nil
}

func validateFixturePaths(s *Scenario) error {
	for _, p := range s.Fixtures {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return fmt.Errorf("fixture file not found: %s", p)
		}
	}
	return nil
}
