// Package errors provides coded, actionable diagnostics for the bindvar CLI.
//
// Every diagnostic has a code that maps to a short message, an explanation,
// a suggested fix and a documentation link:
//
//   - B001-B003: binding engine (cycles, failed computations, context misuse)
//   - C001-C004: configuration loading and validation
//   - I001: inspector server
//   - P001: presence service
//
// Engine errors are converted with FromError:
//
//	if _, err := label.Get(); err != nil {
//	    errors.PrintError(errors.FromError(err, errors.CodeCompute))
//	}
//	// ERROR B001: Dependency cycle detected
//	//
//	//   A cell read itself during its own evaluation, either directly or
//	//   through other cells. ...
//	//
//	//   Cause: binding: compute label: binding: dependency cycle at label
package errors
