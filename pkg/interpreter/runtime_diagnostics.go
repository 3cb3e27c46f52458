package interpreter

import (
	"errors"
	"fmt"
	"strings"

	"rpn/interpreter-go/pkg/runtime"
	"rpn/interpreter-go/pkg/token"
)

// RuntimeDiagnostic is a failure prepared for display.
type RuntimeDiagnostic struct {
	Kind     runtime.ErrorKind
	Message  string
	Location token.Position
}

// BuildRuntimeDiagnostic extracts kind, message and location from err.
func BuildRuntimeDiagnostic(err error) RuntimeDiagnostic {
	if err == nil {
		return RuntimeDiagnostic{}
	}
	var rerr *runtime.Error
	if errors.As(err, &rerr) {
		return RuntimeDiagnostic{Kind: rerr.Kind, Message: rerr.Error(), Location: rerr.Pos}
	}
	return RuntimeDiagnostic{Message: err.Error()}
}

// DescribeRuntimeDiagnostic formats a diagnostic for CLI output.
func DescribeRuntimeDiagnostic(diag RuntimeDiagnostic) string {
	message := strings.TrimSpace(diag.Message)
	prefix := "runtime: "
	if diag.Kind == runtime.KindMalformedInput {
		prefix = "syntax: "
	}
	if location := diag.Location.String(); location != "" {
		return fmt.Sprintf("%s%s %s", prefix, location, message)
	}
	return prefix + message
}

// Describe is DescribeRuntimeDiagnostic(BuildRuntimeDiagnostic(err)).
func Describe(err error) string {
	return DescribeRuntimeDiagnostic(BuildRuntimeDiagnostic(err))
}
