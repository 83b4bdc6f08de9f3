package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"golang.org/x/term"
)

const (
	// ExitSuccess is returned when the command succeeds.
	ExitSuccess = 0
	// ExitNotFound is returned when the requested products/reviews are not available.
	ExitNotFound = 1
	// ExitInvalidArgs is returned when the command input is invalid.
	ExitInvalidArgs = 2
	// ExitUpstream is returned when a store or backend fails.
	ExitUpstream = 3
	// ExitInternal is returned for unexpected internal failures.
	ExitInternal = 4
	// ExitForbidden is returned when a user touches a review they do not own.
	ExitForbidden = 5
	// ExitUnauthenticated is returned when a command needs a signed-in user.
	ExitUnauthenticated = 6
)

const (
	codeInvalidArgs     = "INVALID_ARGS"
	codeNotFound        = "NOT_FOUND"
	codeUpstream        = "UPSTREAM_ERROR"
	codeInternal        = "INTERNAL_ERROR"
	codeForbidden       = "FORBIDDEN"
	codeUnauthenticated = "UNAUTHENTICATED"
)

type cliError struct {
	Code        string
	Message     string
	Suggestions []string
	ExitCode    int
}

func (e *cliError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func newCLIError(code string, exit int, message string, suggestions ...string) *cliError {
	return &cliError{Code: code, Message: message, Suggestions: suggestions, ExitCode: exit}
}

func invalidArgsError(message string, suggestions ...string) error {
	return newCLIError(codeInvalidArgs, ExitInvalidArgs, message, suggestions...)
}

func notFoundError(message string, suggestions ...string) error {
	return newCLIError(codeNotFound, ExitNotFound, message, suggestions...)
}

var upstreamSuggestions = []string{"Retry in a moment.", "Run with --verbose to see store diagnostics."}

func upstreamError(action string, err error) error {
	return newCLIError(codeUpstream, ExitUpstream, fmt.Sprintf("%s: %v", action, err), upstreamSuggestions...)
}

// storeError reports a failed catalog read or write. Repository errors
// already name the operation.
func storeError(err error) error {
	return newCLIError(codeUpstream, ExitUpstream, err.Error(), upstreamSuggestions...)
}

func forbiddenError(message string, suggestions ...string) error {
	return newCLIError(codeForbidden, ExitForbidden, message, suggestions...)
}

func unauthenticatedError(message string) error {
	return newCLIError(codeUnauthenticated, ExitUnauthenticated, message, "flowr login NAME", "flowr whoami")
}

type jsonErrorPayload struct {
	Error jsonErrorBody `json:"error"`
}

type jsonErrorBody struct {
	Code        string   `json:"code"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions,omitempty"`
	ExitCode    int      `json:"exitCode"`
}

func printCLIErrorJSON(w io.Writer, err *cliError) error {
	if err == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(jsonErrorPayload{Error: jsonErrorBody(*err)})
}

func formatCLIErrorText(err *cliError) string {
	if err == nil {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "error[%s]: %s", strings.ToLower(err.Code), err.Message)
	if len(err.Suggestions) > 0 {
		b.WriteString("\nsuggestions:")
		for _, s := range err.Suggestions {
			b.WriteString("\n  " + s)
		}
	}
	return b.String()
}

// Cobra reports argument problems only as text, so untyped errors are
// classified by these markers.
var (
	argErrorMarkers = []string{
		"requires an argument for flag",
		"flag needs an argument",
		"required flag(s)",
		"invalid argument",
		"accepts ",
		"requires at least",
	}
	notFoundMarkers = []string{"no product", "no review"}
	upstreamMarkers = []string{
		"unexpected status",
		"executing request",
		"decoding response",
		"opening catalog",
		"opening state",
		"fetching products",
		"fetching reviews",
	}
)

func classifyCLIError(err error) *cliError {
	if err == nil {
		return nil
	}

	var typed *cliError
	if errors.As(err, &typed) {
		return typed
	}

	msg := strings.TrimSpace(err.Error())
	lower := strings.ToLower(msg)

	switch {
	case strings.Contains(msg, "unknown command"):
		return usageError(msg, commandHint(msg), "flowr categories", "flowr product ID")
	case strings.Contains(msg, "unknown flag"):
		return usageError(msg, flagHint(msg),
			"flowr --category flower --region CA",
			"flowr --feel relaxed --sort potency")
	case containsAny(msg, argErrorMarkers):
		return usageError(msg, "", "flowr --help", "flowr review add PRODUCT --rating 4")
	case containsAny(lower, notFoundMarkers):
		return newCLIError(codeNotFound, ExitNotFound, msg)
	case containsAny(lower, upstreamMarkers):
		return newCLIError(codeUpstream, ExitUpstream, msg, "Retry in a moment.")
	default:
		return newCLIError(codeInternal, ExitInternal, msg, "Run `flowr --help` for usage details.")
	}
}

func usageError(msg, hint string, examples ...string) *cliError {
	if hint != "" {
		examples = append([]string{hint}, examples...)
	}
	return newCLIError(codeInvalidArgs, ExitInvalidArgs, msg, examples...)
}

func commandHint(msg string) string {
	bad := offendingToken(msg, "unknown command")
	if bad == "" {
		return ""
	}
	if name, ok := nearest(strings.ToLower(bad), knownCommands, 2); ok {
		return fmt.Sprintf("Did you mean `%s`?", name)
	}
	return ""
}

func flagHint(msg string) string {
	bad := offendingToken(msg, "unknown flag")
	if bad == "" {
		return ""
	}
	if name, ok := resolveFlagName(strings.TrimLeft(bad, "-")); ok {
		return fmt.Sprintf("Try `--%s`.", name)
	}
	return ""
}

func containsAny(s string, markers []string) bool {
	return slices.ContainsFunc(markers, func(m string) bool { return strings.Contains(s, m) })
}

func isTTY(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

func hasJSONPreference(args []string) bool {
	return slices.ContainsFunc(args, func(arg string) bool {
		return arg == "--json" || strings.HasPrefix(arg, "--json=")
	})
}

func hasHelpRequest(args []string) bool {
	return slices.Contains(args, "-h") || slices.Contains(args, "--help")
}

// shouldAutoJSON switches piped output to JSON unless the caller chose a
// format or asked for help text.
func shouldAutoJSON(args []string, stdoutIsTTY bool) bool {
	if stdoutIsTTY || len(args) == 0 {
		return false
	}
	if hasJSONPreference(args) || hasHelpRequest(args) {
		return false
	}
	switch firstCommand(args) {
	case "completion", "help":
		return false
	default:
		return true
	}
}

// knownShorthands maps single-character shorthands to whether they take a value.
var knownShorthands = map[byte]bool{
	'q': true,  // --query
	'c': true,  // --category
	'r': true,  // --region
	'n': true,  // --limit
	'v': false, // --verbose
}

// firstCommand returns the first positional argument, skipping flag values.
func firstCommand(args []string) string {
	skip := false
	for _, arg := range args {
		switch {
		case skip:
			skip = false
		case arg == "--":
			return ""
		case !strings.HasPrefix(arg, "-"):
			return arg
		case strings.HasPrefix(arg, "--"):
			name, value := splitFlag(strings.TrimPrefix(arg, "--"))
			skip = knownFlags[name].takesValue && value == ""
		default:
			skip = isShorthandWithValue(arg)
		}
	}
	return ""
}

type quickStartJSON struct {
	Name     string   `json:"name"`
	Usage    string   `json:"usage"`
	Examples []string `json:"examples"`
}

func printQuickStart(w io.Writer, asJSON bool) error {
	help := quickStartJSON{
		Name:  "flowr",
		Usage: "flowr list [flags] | flowr [categories|product|suggest|review|tui] [args] [flags]",
		Examples: []string{
			"flowr list --category flower --region CA --limit 10",
			"flowr product blue-dream-3g",
			"flowr suggest feels \"relaxed, gi\"",
		},
	}

	if asJSON {
		return json.NewEncoder(w).Encode(help)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\nusage: %s\nexamples:\n", help.Name, help.Usage)
	for _, ex := range help.Examples {
		fmt.Fprintf(&b, "  %s\n", ex)
	}
	b.WriteString("flags: --query --category --region --feel --activity --sort --limit --json\n")
	_, err := io.WriteString(w, b.String())
	return err
}
