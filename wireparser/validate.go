package wireparser

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/exp/maps"
)

// Severity represents the severity level of a validation diagnostic.
type Severity int

const (
	// SeverityError means the document cannot be handed to a renderer.
	SeverityError Severity = iota
	// SeverityWarning flags something suspicious that does not block a build.
	SeverityWarning
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "ERROR"
	case SeverityWarning:
		return "WARNING"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// Diagnostic is a single validation finding.
type Diagnostic struct {
	Rule     string   // rule identifier (e.g. "screen_id_unique")
	Severity Severity // ERROR or WARNING
	Message  string   // human-readable description
	Pos      Position // source location, zero when not tied to one form
	Fix      string   // suggested fix (optional)
}

func (d Diagnostic) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s: %s", d.Severity, d.Rule, d.Message)
	if d.Pos.Line > 0 {
		fmt.Fprintf(&b, " (line %d, col %d)", d.Pos.Line, d.Pos.Column)
	}
	if d.Fix != "" {
		fmt.Fprintf(&b, " -- fix: %s", d.Fix)
	}
	return b.String()
}

// ValidateRule is the interface for a single validation rule.
type ValidateRule interface {
	Name() string
	Apply(doc *WireDocument) []Diagnostic
}

// ValidationResult splits a validation run into blocking errors and advisory
// warnings. Valid is true exactly when Errors is empty.
type ValidationResult struct {
	Valid    bool
	Errors   []Diagnostic
	Warnings []Diagnostic
}

// ValidationError is returned by ValidateOrError when error-severity
// diagnostics exist.
type ValidationError struct {
	Diagnostics []Diagnostic
}

func (e *ValidationError) Error() string {
	var msgs []string
	for _, d := range e.Diagnostics {
		msgs = append(msgs, d.String())
	}
	return fmt.Sprintf("validation failed with %d error(s):\n  %s", len(e.Diagnostics), strings.Join(msgs, "\n  "))
}

// Validate runs all built-in rules (and any extra rules) against a parsed,
// include-resolved document. Warnings tolerate what a later include merge or
// a forward definition could still satisfy; errors are unconditional.
func Validate(doc *WireDocument, extra ...ValidateRule) *ValidationResult {
	rules := builtInRules()
	rules = append(rules, extra...)

	res := &ValidationResult{}
	for _, rule := range rules {
		for _, d := range rule.Apply(doc) {
			if d.Severity == SeverityError {
				res.Errors = append(res.Errors, d)
			} else {
				res.Warnings = append(res.Warnings, d)
			}
		}
	}
	res.Valid = len(res.Errors) == 0
	return res
}

// ValidateOrError runs Validate and returns a *ValidationError if any
// error-severity diagnostics are found.
func ValidateOrError(doc *WireDocument, extra ...ValidateRule) (*ValidationResult, error) {
	res := Validate(doc, extra...)
	if !res.Valid {
		return res, &ValidationError{Diagnostics: res.Errors}
	}
	return res, nil
}

// builtInRules returns the standard rule set.
func builtInRules() []ValidateRule {
	return []ValidateRule{
		screenIDUniqueRule{},
		overlayIDUniqueRule{},
		actionKnownRule{},
		paramRefDeclaredRule{},
		elementKnownRule{},
		layoutDeclaredRule{},
		navTargetExistsRule{},
		flagRecognizedRule{},
	}
}

// --- Helper functions ---

// forEachElement visits every element in the document: screen roots, overlay
// roots, component bodies, and layout bodies, nested children and repeat
// bodies included. Component and layout visit order is sorted by name so
// diagnostics come out deterministically.
func forEachElement(doc *WireDocument, fn func(*ElementNode)) {
	for _, s := range doc.Screens {
		walkElementTree(s.Root, fn)
		for _, ov := range s.Overlays {
			walkElementTree(ov.Root, fn)
		}
	}
	compNames := maps.Keys(doc.Components)
	slices.Sort(compNames)
	for _, name := range compNames {
		walkElementTree(doc.Components[name].Body, fn)
	}
	layoutNames := maps.Keys(doc.Layouts)
	slices.Sort(layoutNames)
	for _, name := range layoutNames {
		walkElementTree(doc.Layouts[name].Body, fn)
	}
}

func walkElementTree(el *ElementNode, fn func(*ElementNode)) {
	if el == nil {
		return
	}
	fn(el)
	for _, child := range el.Children {
		switch n := child.(type) {
		case *ElementNode:
			walkElementTree(n, fn)
		case *RepeatNode:
			walkElementTree(n.Body, fn)
		}
	}
}

func sortedPropNames(el *ElementNode) []string {
	names := maps.Keys(el.Props)
	slices.Sort(names)
	return names
}

func overlaysOf(doc *WireDocument) []*OverlayNode {
	var out []*OverlayNode
	for _, s := range doc.Screens {
		out = append(out, s.Overlays...)
	}
	return out
}

// --- Rule implementations ---

// screen_id_unique: Screen ids must be unique within a document. Every
// occurrence after the first is one error.
type screenIDUniqueRule struct{}

func (screenIDUniqueRule) Name() string { return "screen_id_unique" }

func (screenIDUniqueRule) Apply(doc *WireDocument) []Diagnostic {
	seen := make(map[string]bool, len(doc.Screens))
	var diags []Diagnostic
	for _, s := range doc.Screens {
		if seen[s.ID] {
			diags = append(diags, Diagnostic{
				Rule:     "screen_id_unique",
				Severity: SeverityError,
				Message:  fmt.Sprintf("duplicate screen id %q", s.ID),
				Pos:      s.Loc.Start,
				Fix:      fmt.Sprintf("rename one of the screens with id %q", s.ID),
			})
			continue
		}
		seen[s.ID] = true
	}
	return diags
}

// overlay_id_unique: Overlay ids must be unique document-wide, since #id
// navigation targets carry no screen qualifier.
type overlayIDUniqueRule struct{}

func (overlayIDUniqueRule) Name() string { return "overlay_id_unique" }

func (overlayIDUniqueRule) Apply(doc *WireDocument) []Diagnostic {
	seen := make(map[string]bool)
	var diags []Diagnostic
	for _, ov := range overlaysOf(doc) {
		if seen[ov.ID] {
			diags = append(diags, Diagnostic{
				Rule:     "overlay_id_unique",
				Severity: SeverityError,
				Message:  fmt.Sprintf("duplicate overlay id %q", ov.ID),
				Pos:      ov.Loc.Start,
				Fix:      fmt.Sprintf("rename one of the overlays with id %q", ov.ID),
			})
			continue
		}
		seen[ov.ID] = true
	}
	return diags
}

// action_known: Action navigation targets must name a recognized action. The
// parser only produces known actions, so this mostly guards documents built
// or rewritten programmatically.
type actionKnownRule struct{}

func (actionKnownRule) Name() string { return "action_known" }

func (actionKnownRule) Apply(doc *WireDocument) []Diagnostic {
	var diags []Diagnostic
	forEachElement(doc, func(el *ElementNode) {
		for _, name := range sortedPropNames(el) {
			v := el.Props[name]
			if v.Kind == PropActionRef && !navActions[v.Str] {
				diags = append(diags, Diagnostic{
					Rule:     "action_known",
					Severity: SeverityError,
					Message:  fmt.Sprintf("unknown action :%s in navigation target", v.Str),
					Pos:      el.Loc.Start,
					Fix:      "use one of :close, :back, :submit",
				})
			}
		}
	})
	return diags
}

// param_ref_declared: Every $ref must be declared by the enclosing component's
// params or by a repeat :as variable in scope. Screens, overlays, and layouts
// start with an empty scope.
type paramRefDeclaredRule struct{}

func (paramRefDeclaredRule) Name() string { return "param_ref_declared" }

func (paramRefDeclaredRule) Apply(doc *WireDocument) []Diagnostic {
	var diags []Diagnostic

	for _, s := range doc.Screens {
		diags = append(diags, checkParamScope(s.Root, nil, fmt.Sprintf("screen %q", s.ID))...)
		for _, ov := range s.Overlays {
			diags = append(diags, checkParamScope(ov.Root, nil, fmt.Sprintf("%s %q", ov.Kind, ov.ID))...)
		}
	}
	compNames := maps.Keys(doc.Components)
	slices.Sort(compNames)
	for _, name := range compNames {
		def := doc.Components[name]
		scope := make(map[string]bool, len(def.Params))
		for _, p := range def.Params {
			scope[p] = true
		}
		diags = append(diags, checkParamScope(def.Body, scope, fmt.Sprintf("component %q", name))...)
	}
	layoutNames := maps.Keys(doc.Layouts)
	slices.Sort(layoutNames)
	for _, name := range layoutNames {
		diags = append(diags, checkParamScope(doc.Layouts[name].Body, nil, fmt.Sprintf("layout %q", name))...)
	}
	return diags
}

func checkParamScope(el *ElementNode, scope map[string]bool, where string) []Diagnostic {
	if el == nil {
		return nil
	}
	var diags []Diagnostic
	undeclared := func(name string, pos Position) {
		diags = append(diags, Diagnostic{
			Rule:     "param_ref_declared",
			Severity: SeverityError,
			Message:  fmt.Sprintf("unknown param $%s in %s", name, where),
			Pos:      pos,
			Fix:      fmt.Sprintf("declare $%s as a component param or repeat :as variable", name),
		})
	}

	if el.Content != nil && el.Content.Kind == PropParamRef && !scope[el.Content.Str] {
		undeclared(el.Content.Str, el.Loc.Start)
	}
	for _, name := range sortedPropNames(el) {
		if v := el.Props[name]; v.Kind == PropParamRef && !scope[v.Str] {
			undeclared(v.Str, el.Loc.Start)
		}
	}
	for _, child := range el.Children {
		switch n := child.(type) {
		case *ElementNode:
			diags = append(diags, checkParamScope(n, scope, where)...)
		case *RepeatNode:
			// The count is evaluated outside the loop, so the :as variable is
			// not in scope for it.
			if n.CountParam != "" && !scope[n.CountParam] {
				undeclared(n.CountParam, n.Loc.Start)
			}
			bodyScope := scope
			if n.Var != "" {
				bodyScope = make(map[string]bool, len(scope)+1)
				for k := range scope {
					bodyScope[k] = true
				}
				bodyScope[n.Var] = true
			}
			diags = append(diags, checkParamScope(n.Body, bodyScope, where)...)
		}
	}
	return diags
}

// element_known: Element types should exist in the registry or among defined
// components. Skipped entirely while includes are unresolved, since the
// missing definition may live in an included file.
type elementKnownRule struct{}

func (elementKnownRule) Name() string { return "element_known" }

func (elementKnownRule) Apply(doc *WireDocument) []Diagnostic {
	if len(doc.Includes) > 0 {
		return nil
	}
	var diags []Diagnostic
	forEachElement(doc, func(el *ElementNode) {
		if _, builtin := LookupElement(el.Type); builtin {
			return
		}
		if _, ok := doc.Components[el.Type]; ok {
			return
		}
		diags = append(diags, Diagnostic{
			Rule:     "element_known",
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("unknown element type %q", el.Type),
			Pos:      el.Loc.Start,
			Fix:      fmt.Sprintf("define component %q or use a built-in element", el.Type),
		})
	})
	return diags
}

// layout_declared: A screen's :layout must reference a declared layout.
// Skipped while includes are unresolved.
type layoutDeclaredRule struct{}

func (layoutDeclaredRule) Name() string { return "layout_declared" }

func (layoutDeclaredRule) Apply(doc *WireDocument) []Diagnostic {
	if len(doc.Includes) > 0 {
		return nil
	}
	var diags []Diagnostic
	for _, s := range doc.Screens {
		if s.Layout == "" || doc.Layouts[s.Layout] != nil {
			continue
		}
		diags = append(diags, Diagnostic{
			Rule:     "layout_declared",
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("screen %q references undeclared layout %q", s.ID, s.Layout),
			Pos:      s.Loc.Start,
			Fix:      fmt.Sprintf("declare (layout %s ...) or drop the :layout prop", s.Layout),
		})
	}
	return diags
}

// nav_target_exists: Screen and overlay navigation targets should point at
// ids that exist. Screens and overlays never merge from includes, so this
// runs even while includes are unresolved.
type navTargetExistsRule struct{}

func (navTargetExistsRule) Name() string { return "nav_target_exists" }

func (navTargetExistsRule) Apply(doc *WireDocument) []Diagnostic {
	screens := make(map[string]bool, len(doc.Screens))
	for _, s := range doc.Screens {
		screens[s.ID] = true
	}
	overlays := make(map[string]bool)
	for _, ov := range overlaysOf(doc) {
		overlays[ov.ID] = true
	}

	var diags []Diagnostic
	forEachElement(doc, func(el *ElementNode) {
		for _, name := range sortedPropNames(el) {
			switch v := el.Props[name]; v.Kind {
			case PropScreenRef:
				if !screens[v.Str] {
					diags = append(diags, Diagnostic{
						Rule:     "nav_target_exists",
						Severity: SeverityWarning,
						Message:  fmt.Sprintf("navigation target screen %q not found", v.Str),
						Pos:      el.Loc.Start,
						Fix:      fmt.Sprintf("add (screen %s ...) or fix the target", v.Str),
					})
				}
			case PropOverlayRef:
				if !overlays[v.Str] {
					diags = append(diags, Diagnostic{
						Rule:     "nav_target_exists",
						Severity: SeverityWarning,
						Message:  fmt.Sprintf("navigation target overlay #%s not found", v.Str),
						Pos:      el.Loc.Start,
						Fix:      fmt.Sprintf("add an overlay with id %q or fix the target", v.Str),
					})
				}
			}
		}
	})
	return diags
}

// nonFlagPropNames are prop names that never make sense as bare flags but are
// common enough that a stray flag usage should not drown out real findings.
var nonFlagPropNames = map[string]bool{
	"to":          true,
	"layout":      true,
	"viewport":    true,
	"count":       true,
	"as":          true,
	"src":         true,
	"href":        true,
	"placeholder": true,
	"value":       true,
	"label":       true,
	"title":       true,
}

// flag_recognized: A bare flag on a built-in element should be one of the
// element's declared props. Component calls take free-form props and are not
// checked.
type flagRecognizedRule struct{}

func (flagRecognizedRule) Name() string { return "flag_recognized" }

func (flagRecognizedRule) Apply(doc *WireDocument) []Diagnostic {
	var diags []Diagnostic
	forEachElement(doc, func(el *ElementNode) {
		if el.IsComponent {
			return
		}
		spec, ok := LookupElement(el.Type)
		if !ok {
			return
		}
		for _, name := range sortedPropNames(el) {
			v := el.Props[name]
			if v.Kind != PropBool || v.Raw != "" {
				continue
			}
			if _, known := spec.Props[name]; known || nonFlagPropNames[name] {
				continue
			}
			diags = append(diags, Diagnostic{
				Rule:     "flag_recognized",
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("unrecognized flag :%s on element %q", name, el.Type),
				Pos:      el.Loc.Start,
				Fix:      fmt.Sprintf("element %q does not declare a :%s prop", el.Type, name),
			})
		}
	})
	return diags
}
