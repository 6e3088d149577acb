package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrBridge               = errors.New("bridge error")
	ErrHostUnavailable      = errors.New("host application unavailable")
	ErrNoSelection          = errors.New("no shape selected")
	ErrUnsupportedSelection = errors.New("unsupported selection")
	ErrValidation           = errors.New("validation error")
	ErrConfiguration        = errors.New("configuration error")
	ErrNotFound             = errors.New("not found")
	ErrTimeout              = errors.New("timeout")
	ErrInternal             = errors.New("internal error")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrInternal
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Hint maps an error to the next-step suggestion the CLI prints beneath the
// failure message. Empty when no suggestion applies.
func Hint(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrHostUnavailable):
		return "start the presentation application and retry"
	case errors.Is(err, ErrNoSelection):
		return "select exactly one shape in the open document"
	case errors.Is(err, ErrUnsupportedSelection):
		return "select a single vector shape (not text or a picture frame)"
	case errors.Is(err, ErrTimeout):
		return "the host did not respond in time; retry or raise the bridge timeout"
	case errors.Is(err, ErrConfiguration):
		return "run 'shapes config show' to inspect the active configuration"
	case errors.Is(err, ErrNotFound):
		return "run 'shapes list --all' to see stored shapes"
	default:
		return ""
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
