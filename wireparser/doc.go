// Package wireparser implements the WireScript compiler front end.
//
// WireScript is a Lisp-flavored language for describing UI wireframes: a
// document is one (wire ...) form holding screens, reusable components,
// named layouts, metadata, and includes of other files. This package turns
// source text into a WireDocument that a renderer can consume, and contains
// everything editor tooling needs along the way.
//
// The front end is layered:
//
//   - Tokenizer: converts source text into a flat token stream with full
//     source spans; strings are decoded, comments stripped.
//   - Parser: two passes. A symbol-collection scan records every component
//     name first so forward references work, then recursive descent builds
//     the document, recording errors and resynchronizing instead of giving
//     up on the first malformed form.
//   - Include resolver: optional, host-driven loading of included files with
//     cycle detection and last-wins merging of components and layouts.
//   - Validator: rule-based checks split into blocking errors and advisory
//     warnings.
//   - Formatter: an always-succeeding pretty-printer that balances truncated
//     mid-edit input by synthesizing the missing closing parens.
//
// Usage:
//
//	result := wireparser.Parse(src)
//	if !result.Success {
//	    for _, e := range result.Errors {
//	        fmt.Println(e)
//	    }
//	}
//	report := wireparser.Validate(result.Document)
//	fmt.Println(report.Valid)
//
// Parse, Validate, and Format are pure and safe for concurrent use. Compile
// suspends only when a resolver is supplied and include forms are present.
package wireparser
