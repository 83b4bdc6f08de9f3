package cmd

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

type flagSpec struct {
	takesValue bool
}

var knownFlags = map[string]flagSpec{
	"json":      {},
	"query":     {takesValue: true},
	"category":  {takesValue: true},
	"region":    {takesValue: true},
	"feel":      {takesValue: true},
	"activity":  {takesValue: true},
	"sort":      {takesValue: true},
	"limit":     {takesValue: true},
	"rating":    {takesValue: true},
	"feels":     {takesValue: true},
	"thc":       {takesValue: true},
	"body":      {takesValue: true},
	"config":    {takesValue: true},
	"verbose":   {},
	"ephemeral": {},
	"help":      {},
}

var knownCommands = []string{
	"list",
	"categories",
	"product",
	"compare",
	"suggest",
	"vocab",
	"review",
	"login",
	"logout",
	"whoami",
	"import",
	"tui",
	"completion",
	"help",
}

var flagAliases = map[string]string{
	"search":  "query",
	"name":    "query",
	"cat":     "category",
	"type":    "category",
	"state":   "region",
	"effect":  "feel",
	"mood":    "feel",
	"use":     "activity",
	"order":   "sort",
	"max":     "limit",
	"stars":   "rating",
	"score":   "rating",
	"potency": "thc",
	"text":    "body",
	"comment": "body",
	"debug":   "verbose",
	"memory":  "ephemeral",
}

// argRewriter repairs near-miss flag and command syntax before cobra parses
// the arguments. Every rewrite leaves a note for stderr.
type argRewriter struct {
	out   []string
	notes []string

	command      string
	nestedDone   bool
	bareFlags    bool
	pendingValue bool
	passthrough  bool
}

type rewriteResult struct {
	token      string
	note       string
	takesValue bool
	command    bool
}

func normalizeCLIArgs(args []string) ([]string, []string) {
	rw := &argRewriter{
		out:       make([]string, 0, len(args)),
		notes:     make([]string, 0, 2),
		bareFlags: true,
	}
	for i, tok := range args {
		rw.feed(tok, i == len(args)-1)
	}
	return rw.out, rw.notes
}

func (rw *argRewriter) feed(tok string, last bool) {
	if rw.passthrough || rw.pendingValue {
		rw.pendingValue = false
		rw.out = append(rw.out, tok)
		return
	}
	if tok == "--" {
		rw.passthrough = true
		rw.out = append(rw.out, tok)
		return
	}

	res := rw.rewrite(tok)
	if res.note != "" {
		rw.notes = append(rw.notes, res.note)
	}
	rw.out = append(rw.out, res.token)

	if res.command {
		if rw.command == "" {
			rw.command = res.token
			rw.bareFlags = bareFlagRewriteAllowed(res.token)
			return
		}
		rw.nestedDone = true
	}
	if last {
		return
	}
	if (res.takesValue && !strings.Contains(res.token, "=")) || isShorthandWithValue(tok) {
		rw.pendingValue = true
	}
}

func (rw *argRewriter) canTakeCommand() bool {
	if rw.command == "" {
		return true
	}
	return allowsNestedCommandArg(rw.command) && !rw.nestedDone
}

func (rw *argRewriter) rewrite(tok string) rewriteResult {
	switch {
	case strings.HasPrefix(tok, "--"):
		return rewriteFlag(tok, strings.TrimPrefix(tok, "--"))
	case len(tok) > 2 && tok[0] == '-':
		return rewriteFlag(tok, tok[1:])
	case strings.HasPrefix(tok, "-"):
		// Shorthands (-c, -n) and a lone "-" pass through.
		return rewriteResult{token: tok}
	}

	if strings.Contains(tok, "=") {
		if res := rewriteFlag(tok, tok); res.token != tok {
			return res
		}
	}

	if rw.canTakeCommand() {
		if name, ok := resolveCommand(tok); ok {
			res := rewriteResult{token: name, command: true}
			if name != tok {
				res.note = fmt.Sprintf("interpreted command `%s` as `%s`; use `%s` next time.", tok, name, name)
			}
			return res
		}
	}

	if rw.bareFlags {
		if canonical, ok := resolveFlagName(tok); ok {
			return rewritten(tok, "--"+canonical, knownFlags[canonical].takesValue)
		}
	}
	return rewriteResult{token: tok}
}

// rewriteFlag resolves body ("name" or "name=value") to a canonical long flag.
// Unknown names leave tok untouched for cobra to reject.
func rewriteFlag(tok, body string) rewriteResult {
	name, value := splitFlag(body)
	canonical, ok := resolveFlagName(name)
	if !ok {
		return rewriteResult{token: tok}
	}
	return rewritten(tok, "--"+canonical+value, knownFlags[canonical].takesValue)
}

func rewritten(from, to string, takesValue bool) rewriteResult {
	res := rewriteResult{token: to, takesValue: takesValue}
	if from != to {
		res.note = fmt.Sprintf("interpreted `%s` as `%s`; use `%s` next time.", from, to, to)
	}
	return res
}

func isShorthandWithValue(tok string) bool {
	if len(tok) != 2 || tok[0] != '-' {
		return false
	}
	return knownShorthands[tok[1]]
}

// bareFlagRewriteAllowed lists commands without positional arguments, where
// a bare `json` can only mean `--json`.
func bareFlagRewriteAllowed(command string) bool {
	switch command {
	case "list", "categories", "tui", "logout", "whoami":
		return true
	default:
		return false
	}
}

// allowsNestedCommandArg lists commands whose argument names another command.
func allowsNestedCommandArg(command string) bool {
	return command == "help" || command == "completion"
}

func resolveFlagName(raw string) (string, bool) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "_", "-")

	if canonical, ok := flagAliases[name]; ok {
		return canonical, true
	}
	if _, ok := knownFlags[name]; ok {
		return name, true
	}
	return nearest(name, slices.Sorted(maps.Keys(knownFlags)), 2)
}

func resolveCommand(raw string) (string, bool) {
	name := strings.ToLower(strings.TrimSpace(raw))
	if slices.Contains(knownCommands, name) {
		return name, true
	}
	return nearest(name, knownCommands, 2)
}

func explainCLIError(err error) string {
	return formatCLIErrorText(classifyCLIError(err))
}

func splitFlag(value string) (string, string) {
	name, rest, ok := strings.Cut(value, "=")
	if !ok {
		return value, ""
	}
	return name, "=" + rest
}

// offendingToken pulls the flag or command cobra rejected out of msg.
func offendingToken(msg, marker string) string {
	_, rest, found := strings.Cut(msg, marker)
	if !found {
		return ""
	}
	rest = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(rest), ":"))

	for _, quote := range []string{`"`, "`"} {
		if strings.HasPrefix(rest, quote) {
			if val, _, ok := strings.Cut(rest[1:], quote); ok {
				return val
			}
		}
	}
	if fields := strings.Fields(rest); len(fields) > 0 {
		return strings.Trim(fields[0], "\"`")
	}
	return ""
}

// nearest returns the candidate closest to target within maxDist edits.
// Ties go to the alphabetically first candidate.
func nearest(target string, candidates []string, maxDist int) (string, bool) {
	best, bestDist := "", maxDist+1
	for _, c := range candidates {
		d := editDistance(target, c)
		if d < bestDist || (d == bestDist && c < best) {
			best, bestDist = c, d
		}
	}
	if bestDist > maxDist {
		return "", false
	}
	return best, true
}

// editDistance is the Levenshtein distance between a and b, in runes.
func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	row := make([]int, len(rb)+1)
	for j := range row {
		row[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		diag := row[0]
		row[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			above := row[j]
			row[j] = min(above+1, row[j-1]+1, diag+cost)
			diag = above
		}
	}
	return row[len(rb)]
}
