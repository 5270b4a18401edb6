package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"testing"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name    string
		err     *Error
		kind    Kind
		message string
	}{
		{"NotFound", NotFound("season not found"), ErrNotFound, "season not found"},
		{"NotFoundf", NotFoundf("season %s not found", "2031"), ErrNotFound, "season 2031 not found"},
		{"Validation", Validation("award is required"), ErrValidation, "award is required"},
		{"Validationf", Validationf("at most %d drafts, got %d", 25, 30), ErrValidation, "at most 25 drafts, got 30"},
		{"Conflict", Conflict("batch already submitted"), ErrConflict, "batch already submitted"},
		{"Conflictf", Conflictf("page %q exists", "p1"), ErrConflict, `page "p1" exists`},
		{"InvalidInput", InvalidInput("missing payload"), ErrInvalidInput, "missing payload"},
		{"InvalidInputf", InvalidInputf("unknown section %q", "finals"), ErrInvalidInput, `unknown section "finals"`},
		{"Internalf", Internalf("projection failed for %s", "west"), ErrInternal, "projection failed for west"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", tt.err.Kind, tt.kind)
			}
			if tt.err.Message != tt.message {
				t.Errorf("Message = %q, want %q", tt.err.Message, tt.message)
			}
			if tt.err.Err != nil {
				t.Errorf("expected no wrapped error, got %v", tt.err.Err)
			}
			if tt.err.Error() != tt.message {
				t.Errorf("Error() = %q, want %q", tt.err.Error(), tt.message)
			}
		})
	}
}

func TestWrappingConstructors(t *testing.T) {
	cause := fmt.Errorf("dial tcp: connection refused")

	tests := []struct {
		name string
		err  *Error
		kind Kind
		text string
	}{
		{"Internal", Internal(cause), ErrInternal, "internal error: dial tcp: connection refused"},
		{"Unavailable", Unavailable("contest API unavailable", cause), ErrUnavailable, "contest API unavailable: dial tcp: connection refused"},
		{"Wrap", Wrap(cause, ErrInvalidInput, "invalid payload"), ErrInvalidInput, "invalid payload: dial tcp: connection refused"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", tt.err.Kind, tt.kind)
			}
			if tt.err.Error() != tt.text {
				t.Errorf("Error() = %q, want %q", tt.err.Error(), tt.text)
			}
			if tt.err.Unwrap() != cause {
				t.Error("expected Unwrap to return the cause")
			}
			if !stderrors.Is(tt.err, cause) {
				t.Error("expected errors.Is to find the cause")
			}
		})
	}
}

func TestWrapWithNilError(t *testing.T) {
	err := Wrap(nil, ErrNotFound, "no such page")
	if err.Error() != "no such page" {
		t.Errorf("Error() = %q", err.Error())
	}
	if err.Unwrap() != nil {
		t.Error("expected nil Unwrap")
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"direct", NotFound("x"), ErrNotFound},
		{"wrapped by fmt", fmt.Errorf("mount: %w", Unavailable("down", io.EOF)), ErrUnavailable},
		{"outermost app error wins", Wrap(Validation("inner"), ErrConflict, "outer"), ErrConflict},
		{"plain error", io.EOF, ErrInternal},
		{"nil", nil, ErrInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIs(t *testing.T) {
	wrapped := fmt.Errorf("load season: %w", Unavailable("contest API unavailable", io.ErrUnexpectedEOF))

	if !Is(wrapped, ErrUnavailable) {
		t.Error("expected wrapped unavailable error to match")
	}
	if Is(wrapped, ErrNotFound) {
		t.Error("expected kind mismatch")
	}
	if Is(nil, ErrInternal) {
		t.Error("nil is no error of any kind")
	}
	if Is(io.EOF, ErrInternal) {
		t.Error("plain errors carry no kind")
	}
}

func TestKindString(t *testing.T) {
	tests := map[Kind]string{
		ErrInternal:     "internal",
		ErrNotFound:     "not_found",
		ErrValidation:   "validation",
		ErrConflict:     "conflict",
		ErrInvalidInput: "invalid_input",
		ErrUnavailable:  "unavailable",
		Kind(42):        "kind(42)",
	}
	for kind, want := range tests {
		if kind.String() != want {
			t.Errorf("Kind(%d).String() = %q, want %q", int(kind), kind.String(), want)
		}
	}
}

func TestErrorsAs(t *testing.T) {
	err := fmt.Errorf("dispatch: %w", InvalidInputf("unknown action %q", "dunk"))

	var appErr *Error
	if !stderrors.As(err, &appErr) {
		t.Fatal("expected errors.As to find *Error")
	}
	if appErr.Message != `unknown action "dunk"` {
		t.Errorf("Message = %q", appErr.Message)
	}

	if stderrors.As(io.EOF, &appErr) {
		t.Error("expected errors.As to fail for plain errors")
	}
}

func TestErrorImplementsErrorInterface(t *testing.T) {
	var _ error = (*Error)(nil)
}
