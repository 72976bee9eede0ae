package errors

// Template defines a registered error type.
type Template struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]Template{
	// Configuration (E100-E199)
	"E100": {
		Category: CategoryConfig,
		Message:  "Config file not found",
		Detail:   "The configuration file passed with --config does not exist.",
	},
	"E101": {
		Category: CategoryConfig,
		Message:  "Config file could not be parsed",
		Detail:   "The configuration file is not valid JSON or YAML.",
	},
	"E102": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "A configuration value is out of range or missing.",
	},
	"E103": {
		Category: CategoryConfig,
		Message:  "Unsupported config format",
		Detail:   "Config files must end in .json, .yaml or .yml.",
	},

	// CLI (E200-E299)
	"E200": {
		Category: CategoryCLI,
		Message:  "Invalid parameter argument",
		Detail:   "Parameters are written as key=value; repeat a key to build a list.",
	},

	// Runtime (E300-E399)
	"E300": {
		Category: CategoryRuntime,
		Message:  "Server failed",
		Detail:   "The query params server stopped with an error.",
	},
}

// Lookup returns the template registered for code.
func Lookup(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}
