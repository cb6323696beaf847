package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const schemaURL = "project-x.schema.json"

var (
	//go:embed schema/project-x.schema.json
	schemaBytes []byte

	compiledSchema *jsonschema.Schema
	compileOnce    sync.Once
	compileErr     error
	printer        = message.NewPrinter(language.English)
)

type (
	// ValidationError lists every schema violation found in a configuration.
	ValidationError struct {
		Issues []Issue
	}

	// Issue is a single schema violation.
	Issue struct {
		// Path is the instance location, e.g. /remote/environments/0/name
		Path string

		// Message is the human readable description
		Message string

		// Keyword is the failing schema keyword
		Keyword string
	}
)

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		path := issue.Path
		if path == "" {
			path = "/"
		}
		msgs[i] = path + ": " + issue.Message
	}

	return "invalid project config: " + strings.Join(msgs, "; ")
}

func getSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaBytes))
		if err != nil {
			compileErr = errors.Wrap(err, "failed to unmarshal schema")
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			compileErr = errors.Wrap(err, "failed to add schema resource")
			return
		}

		compiledSchema, compileErr = c.Compile(schemaURL)
		compileErr = errors.Wrap(compileErr, "failed to compile schema")
	})

	return compiledSchema, compileErr
}

// Validate checks decoded configuration settings against the embedded JSON
// schema. Violations are reported as a *ValidationError.
func Validate(settings map[string]any) error {
	schema, err := getSchema()
	if err != nil {
		return err
	}

	// round trip through JSON so numbers are json.Number as the validator expects
	data, err := json.Marshal(settings)
	if err != nil {
		return errors.Wrap(err, "failed to encode settings")
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return errors.Wrap(err, "failed to prepare settings for validation")
	}

	err = schema.Validate(inst)
	if err == nil {
		return nil
	}

	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return errors.Wrap(err, "failed to validate settings")
	}

	return &ValidationError{Issues: issues(verr)}
}

func issues(ve *jsonschema.ValidationError) []Issue {
	var out []Issue
	collect(ve, &out)

	if len(out) == 0 {
		return []Issue{{Message: ve.Error()}}
	}

	seen := make(map[Issue]bool, len(out))
	uniq := out[:0]
	for _, issue := range out {
		if !seen[issue] {
			seen[issue] = true
			uniq = append(uniq, issue)
		}
	}

	return uniq
}

// collect walks the error tree and keeps leaf errors only.
func collect(ve *jsonschema.ValidationError, out *[]Issue) {
	if len(ve.Causes) > 0 {
		for _, cause := range ve.Causes {
			collect(cause, out)
		}
		return
	}

	if ve.ErrorKind == nil {
		return
	}

	keyword := ""
	if kw := ve.ErrorKind.KeywordPath(); len(kw) > 0 {
		keyword = kw[len(kw)-1]
	}

	switch keyword {
	case "", "oneOf", "anyOf", "allOf", "$ref":
		return
	}

	path := ""
	if len(ve.InstanceLocation) > 0 {
		path = "/" + strings.Join(ve.InstanceLocation, "/")
	}

	*out = append(*out, Issue{
		Path:    path,
		Message: ve.ErrorKind.LocalizedString(printer),
		Keyword: keyword,
	})
}
