// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *ActionableError
		want string
	}{
		{
			name: "operation only",
			err:  &ActionableError{Operation: "list devices"},
			want: "failed to list devices",
		},
		{
			name: "with resource",
			err:  &ActionableError{Operation: "read module.prop", Resource: "demo/module.prop"},
			want: "failed to read module.prop (demo/module.prop)",
		},
		{
			name: "with cause",
			err: &ActionableError{
				Operation: "push module archive",
				Resource:  "/sdcard/demo.zip",
				Cause:     errors.New("exit code 1"),
			},
			want: "failed to push module archive (/sdcard/demo.zip): exit code 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestActionableError_Format(t *testing.T) {
	t.Parallel()

	root := errors.New("device offline")
	ae := &ActionableError{
		Operation:   "reboot device",
		Suggestions: []string{"Reconnect the cable", "Run 'magimod devices'"},
		Cause:       fmt.Errorf("adb reboot: %w", root),
	}

	plain := ae.Format(false)
	if !strings.Contains(plain, "\n  • Reconnect the cable") || !strings.Contains(plain, "\n  • Run 'magimod devices'") {
		t.Errorf("Format(false) missing suggestions:\n%s", plain)
	}
	if strings.Contains(plain, "Error chain") {
		t.Error("Format(false) should not include the error chain")
	}

	verbose := ae.Format(true)
	if !strings.Contains(verbose, "Error chain:\n  1. adb reboot: device offline\n  2. device offline") {
		t.Errorf("Format(true) chain wrong:\n%s", verbose)
	}
}

func TestErrorContext_Build(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	ctx := NewErrorContext().
		WithOperation("build module archive").
		WithResource("demo").
		WithSuggestion("one").
		WithSuggestions("two", "three").
		WithIssue(ArchiveFailedId).
		Wrap(cause)

	ae := ctx.Build()
	if ae == nil {
		t.Fatal("Build() returned nil")
	}
	if ae.Operation != "build module archive" || ae.Resource != "demo" || ae.IssueID != ArchiveFailedId {
		t.Errorf("Build() = %+v", ae)
	}
	if len(ae.Suggestions) != 3 {
		t.Errorf("Suggestions = %v", ae.Suggestions)
	}
	if !errors.Is(ae, cause) {
		t.Error("ActionableError should unwrap to its cause")
	}

	ctx.WithSuggestion("four")
	if len(ae.Suggestions) != 3 {
		t.Error("built error must not share suggestions with the builder")
	}
}

func TestErrorContext_BuildWithoutOperation(t *testing.T) {
	t.Parallel()

	ctx := NewErrorContext().Wrap(errors.New("x"))
	if ctx.Build() != nil {
		t.Error("Build() without operation should return nil")
	}
	if err := ctx.BuildError(); err != nil {
		t.Errorf("BuildError() = %v, want untyped nil", err)
	}
}

func TestWrapWithContext(t *testing.T) {
	t.Parallel()

	if WrapWithContext(nil, "op", "res") != nil {
		t.Error("WrapWithContext(nil) should return nil")
	}
	ae := WrapWithContext(errors.New("x"), "op", "res")
	if ae.Error() != "failed to op (res): x" {
		t.Errorf("Error() = %q", ae.Error())
	}
}

func TestIDOf(t *testing.T) {
	t.Parallel()

	inner := NewErrorContext().WithOperation("inner").WithIssue(ADBNotFoundId).Wrap(errors.New("x")).BuildError()
	outer := NewErrorContext().WithOperation("outer").Wrap(inner).BuildError()

	tests := []struct {
		name string
		err  error
		want Id
	}{
		{"nil", nil, 0},
		{"plain error", errors.New("x"), 0},
		{"direct", inner, ADBNotFoundId},
		{"nested without id on outer", outer, ADBNotFoundId},
		{"wrapped with fmt", fmt.Errorf("ctx: %w", inner), ADBNotFoundId},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IDOf(tt.err); got != tt.want {
				t.Errorf("IDOf() = %d, want %d", got, tt.want)
			}
		})
	}
}
