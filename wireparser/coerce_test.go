package wireparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPropValueConstructors(t *testing.T) {
	b := BoolValue(true)
	assert.Equal(t, PropBool, b.Kind)
	assert.True(t, b.Bool)
	assert.Equal(t, "true", b.Raw)

	n := NumberValue(2.5)
	assert.Equal(t, PropNumber, n.Kind)
	assert.Equal(t, 2.5, n.Number)

	s := StringValue("hello")
	assert.Equal(t, PropString, s.Kind)
	assert.Equal(t, "hello", s.Str)

	p := ParamValue("title")
	assert.Equal(t, PropParamRef, p.Kind)
	assert.Equal(t, "title", p.Str)
	assert.Equal(t, "$title", p.Raw)
}

func TestCoerceBool(t *testing.T) {
	tests := []struct {
		in   PropValue
		want bool
	}{
		{StringValue("true"), true},
		{StringValue("T"), true},
		{StringValue("1"), true},
		{StringValue("false"), false},
		{StringValue("NIL"), false},
		{StringValue("0"), false},
		{NumberValue(0), false},
		{NumberValue(2), true},
		{BoolValue(true), true},
	}
	for _, tt := range tests {
		got := coerceProp(tt.in, KindBool)
		assert.Equal(t, PropBool, got.Kind, "input: %+v", tt.in)
		assert.Equal(t, tt.want, got.Bool, "input: %+v", tt.in)
	}

	// Unconvertible strings stay as written.
	got := coerceProp(StringValue("maybe"), KindBool)
	assert.Equal(t, PropString, got.Kind)
	assert.Equal(t, "maybe", got.Str)
}

func TestCoerceNumber(t *testing.T) {
	tests := []struct {
		in   PropValue
		want float64
	}{
		{StringValue("16"), 16},
		{StringValue(" 2.5 "), 2.5},
		{StringValue("-8"), -8},
		{BoolValue(true), 1},
		{BoolValue(false), 0},
		{NumberValue(7), 7},
	}
	for _, tt := range tests {
		got := coerceProp(tt.in, KindNumber)
		assert.Equal(t, PropNumber, got.Kind, "input: %+v", tt.in)
		assert.Equal(t, tt.want, got.Number, "input: %+v", tt.in)
	}

	got := coerceProp(StringValue("wide"), KindNumber)
	assert.Equal(t, PropString, got.Kind)
	assert.Equal(t, "wide", got.Str)
}

func TestCoerceString(t *testing.T) {
	tests := []struct {
		in   PropValue
		want string
	}{
		{NumberValue(16), "16"},
		{NumberValue(2.5), "2.5"},
		{NumberValue(-3), "-3"},
		{BoolValue(true), "true"},
		{BoolValue(false), "false"},
		{StringValue("as-is"), "as-is"},
	}
	for _, tt := range tests {
		got := coerceProp(tt.in, KindString)
		assert.Equal(t, PropString, got.Kind, "input: %+v", tt.in)
		assert.Equal(t, tt.want, got.Str, "input: %+v", tt.in)
	}
}

func TestCoerceNavigation(t *testing.T) {
	tests := []struct {
		in   string
		want PropValueKind
	}{
		{"https://example.com", PropURLRef},
		{"http://example.com/a/b", PropURLRef},
		{"mailto:hi@example.com", PropURLRef},
		{"tel:+15550100", PropURLRef},
		{"//cdn.example.com/app.js", PropURLRef},
		{"data:image/png;base64,xyz", PropURLRef},
		{"checkout", PropScreenRef},
		{"order-details", PropScreenRef},
		{"http:/missing-slash", PropScreenRef},
	}
	for _, tt := range tests {
		got := coerceProp(StringValue(tt.in), KindNavigation)
		assert.Equal(t, tt.want, got.Kind, "input: %s", tt.in)
		assert.Equal(t, tt.in, got.Str, "input: %s", tt.in)
	}
}

func TestCoerceNavigationKeepsRefs(t *testing.T) {
	overlay := PropValue{Kind: PropOverlayRef, Str: "confirm", Raw: "#confirm"}
	assert.Equal(t, overlay, coerceProp(overlay, KindNavigation))

	action := PropValue{Kind: PropActionRef, Str: "back", Raw: ":back"}
	assert.Equal(t, action, coerceProp(action, KindNavigation))
}

func TestCoerceParamRefPassesThrough(t *testing.T) {
	p := ParamValue("count")
	for _, kind := range []PropKind{KindBool, KindNumber, KindString, KindNavigation, KindAny} {
		got := coerceProp(p, kind)
		assert.Equal(t, PropParamRef, got.Kind, "kind: %d", kind)
		assert.Equal(t, "count", got.Str, "kind: %d", kind)
	}
}

func TestCoerceAnyLeavesValueAlone(t *testing.T) {
	v := StringValue("anything")
	assert.Equal(t, v, coerceProp(v, KindAny))
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{16, "16"},
		{0, "0"},
		{-3, "-3"},
		{1000000, "1000000"},
		{2.5, "2.5"},
		{0.1, "0.1"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatNumber(tt.in), "input: %v", tt.in)
	}
}
