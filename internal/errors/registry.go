package errors

import "sort"

// Registered codes.
const (
	CodeCycle         = "B001"
	CodeCompute       = "B002"
	CodeContextMisuse = "B003"

	CodeConfigRead     = "C001"
	CodeConfigParse    = "C002"
	CodeConfigEnv      = "C003"
	CodeConfigInvalid  = "C004"
	CodeInspectorServe = "I001"
	CodePresence       = "P001"
)

// Template defines a registered diagnostic.
type Template struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
	DocURL     string
}

const docBase = "https://github.com/vango-dev/bindvar/blob/main/docs/errors.md#"

// registry maps codes to their templates.
var registry = map[string]Template{
	// ============================================
	// Binding Engine (B001-B099)
	// ============================================

	CodeCycle: {
		Category:   CategoryBinding,
		Message:    "Dependency cycle detected",
		Detail:     "A cell read itself during its own evaluation, either directly or through other cells. The cell keeps its previous value and stays dirty until the cycle is broken.",
		Suggestion: "Break the cycle by replacing one binding in the loop with a constant (Set)",
		DocURL:     docBase + "b001",
	},
	CodeCompute: {
		Category:   CategoryBinding,
		Message:    "Computation failed",
		Detail:     "A computation returned an error or recorded a fault with ctx.Fail. The cell keeps its previous value and is retried on the next read.",
		Suggestion: "Check the wrapped error; faults in upstream cells propagate to every cell that reads them",
		DocURL:     docBase + "b002",
	},
	CodeContextMisuse: {
		Category:   CategoryBinding,
		Message:    "Tracking context used after its computation returned",
		Detail:     "A *binding.Context escaped its computation, for example into a goroutine or a stored closure, and was used later.",
		Suggestion: "Read cells with Get outside a computation; only call Use with the context passed to the current computation",
		DocURL:     docBase + "b003",
	},

	// ============================================
	// Configuration (C001-C099)
	// ============================================

	CodeConfigRead: {
		Category:   CategoryConfig,
		Message:    "Cannot read config file",
		Detail:     "The configuration file could not be opened.",
		Suggestion: "Check the --config path, or omit it to run with defaults",
		DocURL:     docBase + "c001",
	},
	CodeConfigParse: {
		Category:   CategoryConfig,
		Message:    "Invalid config file",
		Detail:     "The configuration file is not valid JSON or YAML for its extension.",
		Suggestion: "Use .json for JSON files and .yaml or .yml for YAML files",
		DocURL:     docBase + "c002",
	},
	CodeConfigEnv: {
		Category:   CategoryConfig,
		Message:    "Invalid environment override",
		Detail:     "A BINDVAR_* environment variable could not be parsed into its setting.",
		Suggestion: "Durations use Go syntax such as 250ms or 15s; booleans are true or false",
		DocURL:     docBase + "c003",
	},
	CodeConfigInvalid: {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		DocURL:   docBase + "c004",
	},

	// ============================================
	// Runtime Services (I001, P001)
	// ============================================

	CodeInspectorServe: {
		Category:   CategoryInspect,
		Message:    "Inspector server failed",
		Detail:     "The inspector HTTP server stopped with an error.",
		Suggestion: "Check that inspector.addr is free, or set BINDVAR_INSPECTOR_ADDR",
		DocURL:     docBase + "i001",
	},
	CodePresence: {
		Category: CategoryPresence,
		Message:  "Presence service failed",
		Detail:   "The presence publisher could not be started.",
		DocURL:   docBase + "p001",
	},
}

// Codes returns all registered codes, sorted.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Lookup returns the template for a code.
func Lookup(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}
