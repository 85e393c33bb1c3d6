package fixtures

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// Load error codes.
const (
	ErrCodeRead      = "E_FIXTURE_READ"
	ErrCodeFormat    = "E_FIXTURE_FORMAT"
	ErrCodeParse     = "E_FIXTURE_PARSE"
	ErrCodeSchema    = "E_FIXTURE_SCHEMA"
	ErrCodeDecode    = "E_FIXTURE_DECODE"
	ErrCodeNoFixture = "E_FIXTURE_EMPTY"
)

// LoadError reports a fixture file that could not be loaded.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadFile reads a fixture file, choosing the format by extension
// (.yaml, .yml or .cue).
func LoadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, &LoadError{Code: ErrCodeRead, Message: err.Error()}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(data)
	case ".cue":
		return LoadCUE(data, path)
	default:
		return File{}, &LoadError{
			Code:    ErrCodeFormat,
			Message: fmt.Sprintf("unsupported fixture format %q: use .yaml, .yml or .cue", filepath.Ext(path)),
		}
	}
}

// LoadYAML decodes a YAML fixture document. Unknown fields are rejected.
func LoadYAML(data []byte) (File, error) {
	var f File
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&f); err != nil {
		return File{}, &LoadError{Code: ErrCodeParse, Message: fmt.Sprintf("parsing YAML: %v", err)}
	}
	if len(f.Cases) == 0 {
		return File{}, &LoadError{Code: ErrCodeNoFixture, Message: "no cases in fixture"}
	}
	return f, nil
}

// LoadCUE compiles a CUE fixture, unifies it with the fixture schema and
// decodes the result. filename is used in error positions.
func LoadCUE(data []byte, filename string) (File, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return File{}, &LoadError{Code: ErrCodeSchema, Message: fmt.Sprintf("building schema: %v", err)}
	}

	value := ctx.CompileBytes(data, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return File{}, cueLoadError(ErrCodeParse, err)
	}

	unified := schema.LookupPath(cue.ParsePath("#File")).Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return File{}, cueLoadError(ErrCodeSchema, err)
	}

	var f File
	if err := unified.Decode(&f); err != nil {
		return File{}, cueLoadError(ErrCodeDecode, err)
	}
	if len(f.Cases) == 0 {
		return File{}, &LoadError{Code: ErrCodeNoFixture, Message: "no cases in fixture"}
	}
	return f, nil
}

// cueLoadError keeps the position of the first CUE error.
func cueLoadError(code string, err error) *LoadError {
	le := &LoadError{Code: code, Message: err.Error()}
	var cerr cueerrors.Error
	if errors.As(err, &cerr) {
		le.Pos = cerr.Position()
		le.Message = cerr.Error()
	}
	return le
}
