package wireparser

// PropKind classifies how a property's raw token should be coerced.
type PropKind int

const (
	KindAny PropKind = iota
	KindBool
	KindNumber
	KindString
	KindNavigation
)

// PropSpec describes one property accepted by a builtin element.
type PropSpec struct {
	Kind    PropKind
	Default any
}

// ElementSpec describes a builtin element: whether it takes inline content,
// whether it may hold children, and the properties it understands.
type ElementSpec struct {
	ContentAllowed  bool
	ChildrenAllowed bool
	Props           map[string]PropSpec
}

// LookupElement returns the builtin spec for an element type name. The second
// return is false for component calls and unknown types.
func LookupElement(name string) (ElementSpec, bool) {
	spec, ok := builtinElements[name]
	return spec, ok
}

// BuiltinElementNames returns the names of all registered builtin elements.
// Order is unspecified.
func BuiltinElementNames() []string {
	names := make([]string, 0, len(builtinElements))
	for name := range builtinElements {
		names = append(names, name)
	}
	return names
}

var layoutProps = map[string]PropSpec{
	"gap":     {Kind: KindNumber},
	"pad":     {Kind: KindNumber},
	"align":   {Kind: KindString},
	"justify": {Kind: KindString},
	"w":       {Kind: KindString},
	"h":       {Kind: KindString},
	"grow":    {Kind: KindBool},
	"wrap":    {Kind: KindBool},
	"scroll":  {Kind: KindBool},
	"to":      {Kind: KindNavigation},
}

var inputProps = map[string]PropSpec{
	"placeholder": {Kind: KindString},
	"value":       {Kind: KindString},
	"label":       {Kind: KindString},
	"disabled":    {Kind: KindBool},
	"required":    {Kind: KindBool},
	"w":           {Kind: KindString},
}

func mergeProps(base map[string]PropSpec, extra map[string]PropSpec) map[string]PropSpec {
	out := make(map[string]PropSpec, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

var builtinElements = map[string]ElementSpec{
	// Containers.
	"box":     {ChildrenAllowed: true, Props: layoutProps},
	"row":     {ChildrenAllowed: true, Props: layoutProps},
	"col":     {ChildrenAllowed: true, Props: layoutProps},
	"card":    {ChildrenAllowed: true, Props: mergeProps(layoutProps, map[string]PropSpec{"title": {Kind: KindString}})},
	"list":    {ChildrenAllowed: true, Props: mergeProps(layoutProps, map[string]PropSpec{"ordered": {Kind: KindBool}})},
	"form":    {ChildrenAllowed: true, Props: mergeProps(layoutProps, map[string]PropSpec{"action": {Kind: KindNavigation}})},
	"header":  {ChildrenAllowed: true, Props: layoutProps},
	"sidebar": {ChildrenAllowed: true, Props: mergeProps(layoutProps, map[string]PropSpec{"side": {Kind: KindString}})},
	"nav":     {ChildrenAllowed: true, Props: layoutProps},
	"section": {ChildrenAllowed: true, Props: mergeProps(layoutProps, map[string]PropSpec{"title": {Kind: KindString}})},
	"grid":    {ChildrenAllowed: true, Props: mergeProps(layoutProps, map[string]PropSpec{"cols": {Kind: KindNumber}, "rows": {Kind: KindNumber}})},
	"table": {ChildrenAllowed: true, Props: mergeProps(layoutProps, map[string]PropSpec{
		"cols":    {Kind: KindNumber},
		"headers": {Kind: KindString},
		"striped": {Kind: KindBool},
	})},
	"tabs": {ChildrenAllowed: true, Props: layoutProps},

	// Leaves with inline content.
	"text":     {ContentAllowed: true, Props: textProps},
	"title":    {ContentAllowed: true, Props: textProps},
	"subtitle": {ContentAllowed: true, Props: textProps},
	"button": {ContentAllowed: true, Props: map[string]PropSpec{
		"to":       {Kind: KindNavigation},
		"variant":  {Kind: KindString, Default: "primary"},
		"disabled": {Kind: KindBool},
		"w":        {Kind: KindString},
		"icon":     {Kind: KindString},
	}},
	"link": {ContentAllowed: true, Props: map[string]PropSpec{
		"to":       {Kind: KindNavigation},
		"external": {Kind: KindBool},
	}},
	"badge": {ContentAllowed: true, Props: map[string]PropSpec{
		"variant": {Kind: KindString, Default: "default"},
	}},
	"chip": {ContentAllowed: true, Props: map[string]PropSpec{
		"variant":   {Kind: KindString},
		"removable": {Kind: KindBool},
	}},
	"crumb": {ContentAllowed: true, Props: map[string]PropSpec{
		"to": {Kind: KindNavigation},
	}},
	"tab": {ContentAllowed: true, ChildrenAllowed: true, Props: map[string]PropSpec{
		"active": {Kind: KindBool},
		"to":     {Kind: KindNavigation},
	}},

	// Form controls.
	"input": {Props: mergeProps(inputProps, map[string]PropSpec{
		"type": {Kind: KindString, Default: "text"},
	})},
	"textarea": {Props: mergeProps(inputProps, map[string]PropSpec{
		"rows": {Kind: KindNumber, Default: float64(3)},
	})},
	"checkbox": {ContentAllowed: true, Props: map[string]PropSpec{
		"checked":  {Kind: KindBool},
		"disabled": {Kind: KindBool},
	}},
	"radio": {ContentAllowed: true, Props: map[string]PropSpec{
		"checked": {Kind: KindBool},
		"group":   {Kind: KindString},
	}},
	"select": {Props: mergeProps(inputProps, map[string]PropSpec{
		"options": {Kind: KindString},
	})},
	"toggle": {ContentAllowed: true, Props: map[string]PropSpec{
		"on":       {Kind: KindBool},
		"disabled": {Kind: KindBool},
	}},
	"slider": {Props: map[string]PropSpec{
		"min":   {Kind: KindNumber, Default: float64(0)},
		"max":   {Kind: KindNumber, Default: float64(100)},
		"value": {Kind: KindNumber},
		"label": {Kind: KindString},
	}},

	// Media and decoration.
	"image": {Props: map[string]PropSpec{
		"src": {Kind: KindString},
		"alt": {Kind: KindString},
		"w":   {Kind: KindString},
		"h":   {Kind: KindString},
	}},
	"icon": {ContentAllowed: true, Props: map[string]PropSpec{
		"size": {Kind: KindNumber},
	}},
	"avatar": {Props: map[string]PropSpec{
		"src":  {Kind: KindString},
		"name": {Kind: KindString},
		"size": {Kind: KindNumber},
	}},
	"divider": {Props: map[string]PropSpec{
		"vertical": {Kind: KindBool},
	}},
	"spacer": {Props: map[string]PropSpec{
		"size": {Kind: KindNumber, Default: float64(1)},
		"grow": {Kind: KindBool},
	}},
	"progress": {Props: map[string]PropSpec{
		"value": {Kind: KindNumber},
		"max":   {Kind: KindNumber, Default: float64(100)},
		"label": {Kind: KindString},
	}},

	// Component plumbing.
	"slot": {Props: map[string]PropSpec{
		"name": {Kind: KindString},
	}},

	// Synthetic wrapper for top-level repeat forms.
	"repeat-container": {ChildrenAllowed: true, Props: layoutProps},
}

var textProps = map[string]PropSpec{
	"size":  {Kind: KindString},
	"bold":  {Kind: KindBool},
	"dim":   {Kind: KindBool},
	"align": {Kind: KindString},
	"w":     {Kind: KindString},
}
