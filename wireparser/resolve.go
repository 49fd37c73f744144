package wireparser

import (
	"context"
	"fmt"
)

// maxIncludeDepth bounds the include chain; exceeding it fails the branch.
const maxIncludeDepth = 100

// ResolvedInclude is a ResolveFunc's answer: the included file's content plus
// the canonical absolute path that identifies it for cycle detection. Two
// spellings of the same file must resolve to the same path.
type ResolvedInclude struct {
	Content      string
	ResolvedPath string
}

// ResolveFunc loads one included file. includePath is the raw path written in
// the include form; fromPath is the absolute path of the file containing it.
// Any error is interpreted as "cannot resolve include".
type ResolveFunc func(ctx context.Context, includePath, fromPath string) (ResolvedInclude, error)

// CompileOptions configures Compile.
type CompileOptions struct {
	// FilePath is the absolute path of the entry source, passed to the
	// resolver as the fromPath of the entry file's own includes.
	FilePath string

	// Resolver loads included files. When nil, include forms are parsed but
	// left unresolved and Compile returns without blocking.
	Resolver ResolveFunc
}

// Compile parses source text and, when a resolver is supplied, resolves
// includes depth-first in declaration order, merging included components and
// layouts into the document. Resolution is strictly sequential: last-wins
// merge precedence and cycle detection both depend on ordering. The context
// is handed to the resolver only; a compile with no resolver never suspends.
//
// After resolution the document's Includes list is empty and the document
// must contain at least one screen; included files themselves may be
// screenless libraries.
func Compile(ctx context.Context, src string, opts CompileOptions) *ParseResult {
	res := Parse(src)
	if res.Document == nil || opts.Resolver == nil {
		return res
	}

	r := &includeResolver{resolve: opts.Resolver}
	r.resolveFile(ctx, res.Document, opts.FilePath, []string{opts.FilePath}, 0)

	res.Document.Includes = nil
	if len(res.Document.Screens) == 0 {
		r.errs = append(r.errs, &ParseError{
			Message: "document has no screens",
			Pos:     res.Document.Loc.Start,
		})
	}

	res.Errors = append(res.Errors, r.errs...)
	res.Success = len(res.Errors) == 0
	return res
}

type includeResolver struct {
	resolve ResolveFunc
	errs    []*ParseError
}

// resolveFile merges doc's includes into doc. Precedence, highest first: the
// file's own definitions, later includes, earlier includes, then anything an
// included file pulled in below itself. stack holds the resolved paths of the
// current branch, entry file first.
func (r *includeResolver) resolveFile(ctx context.Context, doc *WireDocument, filePath string, stack []string, depth int) {
	if len(doc.Includes) == 0 {
		return
	}

	components := make(map[string]*ComponentDef)
	layouts := make(map[string]*LayoutNode)

	for _, inc := range doc.Includes {
		sub, err := r.loadInclude(ctx, inc, filePath, stack, depth)
		if err != nil {
			r.errs = append(r.errs, &ParseError{
				Message: err.Error(),
				Pos:     inc.Loc.Start,
				Cause:   err,
			})
			continue
		}
		for name, def := range sub.Components {
			components[name] = def
		}
		for name, lay := range sub.Layouts {
			layouts[name] = lay
		}
	}

	// The file's own definitions overwrite whatever its includes brought in.
	for name, def := range doc.Components {
		components[name] = def
	}
	for name, lay := range doc.Layouts {
		layouts[name] = lay
	}
	doc.Components = components
	doc.Layouts = layouts
}

// loadInclude resolves, parses, and recursively include-resolves one included
// file. Failure of any step fails the whole branch; siblings are unaffected.
func (r *includeResolver) loadInclude(ctx context.Context, inc *IncludeDecl, fromPath string, stack []string, depth int) (*WireDocument, error) {
	if depth >= maxIncludeDepth {
		return nil, fmt.Errorf("include depth exceeds %d at %q", maxIncludeDepth, inc.Path)
	}

	resolved, err := r.resolve(ctx, inc.Path, fromPath)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve include %q: %w", inc.Path, err)
	}
	for _, key := range stack {
		if key == resolved.ResolvedPath {
			return nil, fmt.Errorf("circular include %q", inc.Path)
		}
	}

	sub := Parse(resolved.Content)
	if sub.Document == nil {
		return nil, includeParseError(inc.Path, sub.Errors)
	}
	if len(sub.Errors) > 0 {
		return nil, includeParseError(inc.Path, sub.Errors)
	}

	branch := make([]string, len(stack), len(stack)+1)
	copy(branch, stack)
	branch = append(branch, resolved.ResolvedPath)
	r.resolveFile(ctx, sub.Document, resolved.ResolvedPath, branch, depth+1)

	return sub.Document, nil
}

func includeParseError(path string, errs []*ParseError) error {
	if len(errs) == 0 {
		return fmt.Errorf("included file %q is not a wire document", path)
	}
	return fmt.Errorf("parse error in included file %q: %w", path, errs[0])
}
