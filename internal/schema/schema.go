// Package schema validates raw content payloads against the content JSON schema
// before they are stored.
package schema

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed content.schema.json
var contentSchema []byte

// ErrInvalidPayload is wrapped by every *PayloadError.
var ErrInvalidPayload = errors.New("invalid content payload")

// Issue is a single schema violation.
type Issue struct {
	Location string `json:"location"`
	Message  string `json:"message"`
}

// PayloadError lists the violations found in a payload.
type PayloadError struct {
	Issues []Issue
}

func (e *PayloadError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		location := issue.Location
		if location == "" {
			location = "#"
		}
		parts = append(parts, fmt.Sprintf("%s: %s", location, issue.Message))
	}
	if len(parts) == 0 {
		return ErrInvalidPayload.Error()
	}
	return strings.Join(parts, "; ")
}

func (e *PayloadError) Unwrap() error {
	return ErrInvalidPayload
}

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func contentValidator() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource("content.schema.json", bytes.NewReader(contentSchema)); err != nil {
			compileErr = fmt.Errorf("adding content schema: %w", err)
			return
		}
		compiled, compileErr = compiler.Compile("content.schema.json")
	})
	return compiled, compileErr
}

// Validate checks payload, a decoded JSON value, against the content schema.
// Violations are reported as a *PayloadError.
func Validate(payload any) error {
	s, err := contentValidator()
	if err != nil {
		return err
	}
	if err := s.Validate(payload); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return &PayloadError{Issues: collectIssues(verr)}
		}
		return fmt.Errorf("validating payload: %w", err)
	}
	return nil
}

// Issues returns the violations carried by err, if any.
func Issues(err error) []Issue {
	var perr *PayloadError
	if errors.As(err, &perr) {
		return perr.Issues
	}
	return nil
}

func collectIssues(err *jsonschema.ValidationError) []Issue {
	issues := []Issue{}
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if len(node.Causes) == 0 {
			issues = append(issues, Issue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return issues
}
