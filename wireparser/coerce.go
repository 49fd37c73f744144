package wireparser

import (
	"strconv"
	"strings"
)

// PropValueKind names the runtime type of a parsed property value.
type PropValueKind string

const (
	PropBool       PropValueKind = "bool"
	PropNumber     PropValueKind = "number"
	PropString     PropValueKind = "string"
	PropParamRef   PropValueKind = "param"
	PropScreenRef  PropValueKind = "screen"
	PropOverlayRef PropValueKind = "overlay"
	PropActionRef  PropValueKind = "action"
	PropURLRef     PropValueKind = "url"
)

// PropValue is the tagged value a property or inline content carries. Bool
// and Number hold the payload for their kinds; Str holds it for every other
// kind (the string text, the referenced param/screen/overlay/action name, or
// the URL). Raw preserves the source literal before coercion; a bare flag has
// an empty Raw.
type PropValue struct {
	Kind   PropValueKind
	Bool   bool
	Number float64
	Str    string
	Raw    string
}

// BoolValue constructs a bool prop value.
func BoolValue(b bool) PropValue {
	raw := "false"
	if b {
		raw = "true"
	}
	return PropValue{Kind: PropBool, Bool: b, Raw: raw}
}

// NumberValue constructs a number prop value.
func NumberValue(n float64) PropValue {
	return PropValue{Kind: PropNumber, Number: n, Raw: strconv.FormatFloat(n, 'g', -1, 64)}
}

// StringValue constructs a string prop value.
func StringValue(s string) PropValue {
	return PropValue{Kind: PropString, Str: s, Raw: s}
}

// ParamValue constructs a param-ref prop value for $name.
func ParamValue(name string) PropValue {
	return PropValue{Kind: PropParamRef, Str: name, Raw: "$" + name}
}

// navActions is the fixed set of keyword navigation actions.
var navActions = map[string]bool{
	"close":  true,
	"back":   true,
	"submit": true,
}

// urlPrefixes mark a navigation string as an external URL target rather than
// a screen id.
var urlPrefixes = []string{
	"http://", "https://", "ftp://", "ftps://",
	"mailto:", "tel:", "file://", "data:", "//",
}

func isURLLike(s string) bool {
	for _, p := range urlPrefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// coerceProp converts a parsed value toward the schema kind, best effort. A
// mismatch that cannot be converted leaves the value untouched; param refs
// always pass through so components can be instantiated with any argument.
func coerceProp(v PropValue, kind PropKind) PropValue {
	if v.Kind == PropParamRef {
		return v
	}
	switch kind {
	case KindBool:
		return coerceBool(v)
	case KindNumber:
		return coerceNumber(v)
	case KindString:
		return coerceString(v)
	case KindNavigation:
		return coerceNavigation(v)
	}
	return v
}

func coerceBool(v PropValue) PropValue {
	switch v.Kind {
	case PropBool:
		return v
	case PropNumber:
		return PropValue{Kind: PropBool, Bool: v.Number != 0, Raw: v.Raw}
	case PropString:
		switch strings.ToLower(v.Str) {
		case "true", "t", "1":
			return PropValue{Kind: PropBool, Bool: true, Raw: v.Raw}
		case "false", "nil", "0":
			return PropValue{Kind: PropBool, Bool: false, Raw: v.Raw}
		}
	}
	return v
}

func coerceNumber(v PropValue) PropValue {
	switch v.Kind {
	case PropNumber:
		return v
	case PropString:
		if n, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64); err == nil {
			return PropValue{Kind: PropNumber, Number: n, Raw: v.Raw}
		}
	case PropBool:
		n := 0.0
		if v.Bool {
			n = 1.0
		}
		return PropValue{Kind: PropNumber, Number: n, Raw: v.Raw}
	}
	return v
}

func coerceString(v PropValue) PropValue {
	switch v.Kind {
	case PropString:
		return v
	case PropNumber:
		return PropValue{Kind: PropString, Str: formatNumber(v.Number), Raw: v.Raw}
	case PropBool:
		s := "false"
		if v.Bool {
			s = "true"
		}
		return PropValue{Kind: PropString, Str: s, Raw: v.Raw}
	}
	return v
}

// coerceNavigation classifies a value under the navigation target grammar.
// Hash refs arrive pre-classified as overlay targets and param refs pass
// through before we get here, so only strings need sorting into URL vs
// screen-id targets.
func coerceNavigation(v PropValue) PropValue {
	switch v.Kind {
	case PropOverlayRef, PropActionRef, PropScreenRef, PropURLRef:
		return v
	case PropString:
		if isURLLike(v.Str) {
			return PropValue{Kind: PropURLRef, Str: v.Str, Raw: v.Raw}
		}
		return PropValue{Kind: PropScreenRef, Str: v.Str, Raw: v.Raw}
	}
	return v
}

// formatNumber renders a float the way the source would have written it:
// integral values without a trailing ".0".
func formatNumber(n float64) string {
	if n == float64(int64(n)) {
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}
