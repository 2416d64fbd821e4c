package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			"without cause",
			New(ErrCodeInvalidSheetURL, "no sheet id in %q", "http://x"),
			`INVALID_SHEET_URL: no sheet id in "http://x"`,
		},
		{
			"with cause",
			Wrap(ErrCodeNetwork, stderrors.New("connection refused"), "fetch failed"),
			"NETWORK_ERROR: fetch failed: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIs(t *testing.T) {
	err := New(ErrCodeRowRender, "row 3 failed")

	if !Is(err, ErrCodeRowRender) {
		t.Error("Is() = false for matching code")
	}
	if Is(err, ErrCodeNetwork) {
		t.Error("Is() = true for non-matching code")
	}
	if Is(stderrors.New("plain"), ErrCodeRowRender) {
		t.Error("Is() = true for non-Error type")
	}

	// Wrapped in a plain fmt chain, the code should still be found.
	wrapped := fmt.Errorf("outer: %w", err)
	if !Is(wrapped, ErrCodeRowRender) {
		t.Error("Is() = false for code behind fmt.Errorf %%w")
	}
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("root cause")
	err := Wrap(ErrCodeInternal, cause, "something broke")

	if !stderrors.Is(err, cause) {
		t.Error("errors.Is() should find the wrapped cause")
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeTimeout, "slow")); got != ErrCodeTimeout {
		t.Errorf("GetCode() = %q, want %q", got, ErrCodeTimeout)
	}
	if got := GetCode(stderrors.New("plain")); got != "" {
		t.Errorf("GetCode() = %q, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodeInvalidTemplate, "template must be a PNG")
	if got := UserMessage(err); got != "template must be a PNG" {
		t.Errorf("UserMessage() = %q", got)
	}
	if strings.Contains(UserMessage(err), string(ErrCodeInvalidTemplate)) {
		t.Error("UserMessage() should not contain the code")
	}

	plain := stderrors.New("plain failure")
	if got := UserMessage(plain); got != "plain failure" {
		t.Errorf("UserMessage(plain) = %q", got)
	}
}
