package wireparser

// Position tracks a single point in the source text.
type Position struct {
	Line   int // 1-based line number
	Column int // 1-based column number
	Offset int // 0-based byte offset into source
}

// SourceLocation spans a form from its opening delimiter through the end of
// its closing delimiter. End is exclusive.
type SourceLocation struct {
	Start Position
	End   Position
}

// WireDocument is the root of a parsed wireframe document. The parser creates
// it; the include resolver is the only mutator afterwards (merging components
// and layouts, clearing Includes).
type WireDocument struct {
	Meta       map[string]PropValue
	Includes   []*IncludeDecl
	Components map[string]*ComponentDef
	Layouts    map[string]*LayoutNode
	Screens    []*ScreenNode
	Loc        SourceLocation
}

// Screen returns the screen with the given id, or nil if not found.
func (d *WireDocument) Screen(id string) *ScreenNode {
	for _, s := range d.Screens {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// Component returns the component definition with the given name, or nil.
func (d *WireDocument) Component(name string) *ComponentDef {
	return d.Components[name]
}

// Layout returns the layout with the given name, or nil.
func (d *WireDocument) Layout(name string) *LayoutNode {
	return d.Layouts[name]
}

// IncludeDecl records one (include "path") form awaiting resolution.
type IncludeDecl struct {
	Path string
	Loc  SourceLocation
}

// ScreenNode is one screen of the document: a unique id, an optional display
// name, an optional viewport tag (mobile/tablet/desktop), an optional layout
// reference, exactly one root element, and any overlays declared inside it.
type ScreenNode struct {
	ID       string
	Name     string
	Viewport string
	Layout   string
	Root     *ElementNode
	Overlays []*OverlayNode
	Loc      SourceLocation
}

// OverlayNode is a modal, drawer, or popover attached to a screen. Overlay ids
// are unique document-wide so navigation can target them with #id.
type OverlayNode struct {
	ID    string
	Kind  string // "modal", "drawer", or "popover"
	Title string
	Root  *ElementNode
	Loc   SourceLocation
}

// ComponentDef is a reusable element tree declared with (define name $p ... body).
type ComponentDef struct {
	Name   string
	Params []string
	Body   *ElementNode
	Loc    SourceLocation
}

// LayoutNode is a named wrapper tree declared with (layout name body).
type LayoutNode struct {
	Name string
	Body *ElementNode
	Loc  SourceLocation
}

// ChildNode is either an *ElementNode or a *RepeatNode.
type ChildNode interface {
	childNode()
	Location() SourceLocation
}

// ElementNode is a single element form: a built-in element or a component
// call. Content is nil when absent, otherwise a string literal or a param ref.
type ElementNode struct {
	Type        string
	Content     *PropValue
	Props       map[string]PropValue
	Children    []ChildNode
	IsComponent bool
	Loc         SourceLocation
}

func (*ElementNode) childNode() {}

// Location returns the element's source span.
func (e *ElementNode) Location() SourceLocation { return e.Loc }

// Prop returns the named prop value and whether it is present.
func (e *ElementNode) Prop(name string) (PropValue, bool) {
	v, ok := e.Props[name]
	return v, ok
}

// RepeatNode repeats its body a literal number of times or a count deferred to
// a param ref. Expansion happens at render time, never here.
type RepeatNode struct {
	Count      int    // literal count; meaningful only when CountParam is empty
	CountParam string // param name for a deferred count
	Var        string // optional :as loop variable
	Body       *ElementNode
	Loc        SourceLocation
}

func (*RepeatNode) childNode() {}

// Location returns the repeat form's source span.
func (r *RepeatNode) Location() SourceLocation { return r.Loc }
