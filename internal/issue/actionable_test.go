// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *ActionableError
		expected string
	}{
		{
			name:     "operation only",
			err:      &ActionableError{Operation: "stage assets"},
			expected: "failed to stage assets",
		},
		{
			name:     "operation with resource",
			err:      &ActionableError{Operation: "verify pseudo-package", Resource: "holoviews/tests"},
			expected: "failed to verify pseudo-package: holoviews/tests",
		},
		{
			name: "full context",
			err: &ActionableError{
				Operation: "verify pseudo-package",
				Resource:  "holoviews/notebooks",
				Cause:     errors.New("directory is empty"),
			},
			expected: "failed to verify pseudo-package: holoviews/notebooks: directory is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestActionableError_Unwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("permission denied")
	err := WrapWithContext(cause, "copy file", "doc/a/fig.png")
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
	if WrapWithContext(nil, "copy file", "x") != nil {
		t.Error("WrapWithContext(nil) should return nil")
	}
}

func TestActionableError_Format(t *testing.T) {
	t.Parallel()

	err := &ActionableError{
		Operation:   "verify pseudo-package",
		Resource:    "holoviews/assets",
		Suggestions: []string{"Populate doc/", "Check project.doc_dir"},
		Cause: &ActionableError{
			Operation: "read directory",
			Cause:     errors.New("no such file or directory"),
		},
	}

	plain := err.Format(false)
	for _, want := range []string{"holoviews/assets", "• Populate doc/", "• Check project.doc_dir"} {
		if !strings.Contains(plain, want) {
			t.Errorf("Format(false) missing %q\n%s", want, plain)
		}
	}
	if strings.Contains(plain, "Error chain:") {
		t.Errorf("Format(false) should not include the error chain\n%s", plain)
	}

	verbose := err.Format(true)
	for _, want := range []string{"Error chain:", "1. failed to read directory", "2. no such file or directory"} {
		if !strings.Contains(verbose, want) {
			t.Errorf("Format(true) missing %q\n%s", want, verbose)
		}
	}
}

func TestErrorContext_Build(t *testing.T) {
	t.Parallel()

	if NewErrorContext().WithResource("x").Build() != nil {
		t.Error("Build() without operation should return nil")
	}
	if NewErrorContext().BuildError() != nil {
		t.Error("BuildError() without operation should return nil")
	}

	cause := errors.New("boom")
	ae := NewErrorContext().
		WithOperation("build distribution").
		WithResource("dist").
		WithSuggestion("Check permissions").
		Wrap(cause).
		Build()
	if ae == nil {
		t.Fatal("Build() returned nil")
	}
	if ae.Operation != "build distribution" || ae.Resource != "dist" || !ae.HasSuggestions() {
		t.Errorf("unexpected error %+v", ae)
	}
	if !errors.Is(ae, cause) {
		t.Error("built error should wrap the cause")
	}
}
