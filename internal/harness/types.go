package harness

// StepResult is the outcome of one scenario step.
type StepResult struct {
	Name  string `json:"name"`
	Query string `json:"query"`
	Mode  string `json:"mode"`

	// SQL and Args are empty when compilation failed.
	SQL  string `json:"sql,omitempty"`
	Args []any  `json:"args,omitempty"`

	// Portable is false when the query uses outer joins, OR or sub-selects.
	Portable bool `json:"portable"`

	// Codes are the case codes returned, ordered by case id.
	Codes []string `json:"codes"`

	// Error is the compile or execution error, if any.
	Error string `json:"error,omitempty"`

	Pass bool `json:"pass"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: every step passed.
	Pass bool `json:"pass"`

	// Seeded is the number of cases saved before the steps ran.
	Seeded int `json:"seeded"`

	Steps []StepResult `json:"steps"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Steps:  []StepResult{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
