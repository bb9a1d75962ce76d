package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/matsen/bizgraph/internal/config"
	"github.com/matsen/bizgraph/internal/source"
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v any) error {
	return writeJSON(os.Stdout, v)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputHuman writes a human-readable string to stdout.
func outputHuman(format string, args ...any) {
	fmt.Printf(format, args...)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// exitCodeFor maps an error to the exit code it should produce.
func exitCodeFor(err error) int {
	var apiErr *source.APIError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, config.ErrInvalidConfig):
		return ExitConfigError
	case errors.As(err, &apiErr),
		errors.Is(err, source.ErrNotFound),
		errors.Is(err, source.ErrNetworkError),
		errors.Is(err, source.ErrInvalidResponse),
		errors.Is(err, source.ErrRateLimited):
		return ExitDataError
	default:
		return ExitError
	}
}
