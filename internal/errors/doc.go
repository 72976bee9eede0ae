// Package errors provides structured, actionable error messages for the
// queryparams command line tools.
//
// Each error has a unique code (e.g., "E101") that maps to a short message
// and a longer explanation. Callers add detail and a suggestion:
//
//	err := errors.New("E101").
//	    WithDetail("queryparams.yaml: line 3: mapping values are not allowed").
//	    WithSuggestion("Check the YAML indentation").
//	    Wrap(parseErr)
//
//	fmt.Fprintln(os.Stderr, err.(*errors.Error).Format())
package errors
