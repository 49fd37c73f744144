package wireparser

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapResolver serves includes from an in-memory file map. Paths normalize by
// stripping a leading "./" so two spellings of a file share one resolved path.
func mapResolver(files map[string]string) ResolveFunc {
	return func(_ context.Context, includePath, _ string) (ResolvedInclude, error) {
		norm := strings.TrimPrefix(includePath, "./")
		content, ok := files[norm]
		if !ok {
			return ResolvedInclude{}, fmt.Errorf("no such file")
		}
		return ResolvedInclude{Content: content, ResolvedPath: "/" + norm}, nil
	}
}

func compileWith(t *testing.T, entry string, files map[string]string) *ParseResult {
	t.Helper()
	return Compile(context.Background(), entry, CompileOptions{
		FilePath: "/entry.ws",
		Resolver: mapResolver(files),
	})
}

func TestCompileMergesIncludedDefinitions(t *testing.T) {
	res := compileWith(t, `(wire
		(include "lib.ws")
		(screen home "Home" :layout shell (user-card)))`,
		map[string]string{
			"lib.ws": `(wire
				(define user-card (card (text "hi")))
				(layout shell (col (slot))))`,
		})

	require.True(t, res.Success, "errors: %v", res.Errors)
	doc := res.Document
	assert.Empty(t, doc.Includes)
	require.NotNil(t, doc.Component("user-card"))
	assert.Equal(t, "card", doc.Component("user-card").Body.Type)
	require.NotNil(t, doc.Layout("shell"))
}

func TestCompileOwnDefinitionWins(t *testing.T) {
	res := compileWith(t, `(wire
		(include "one.ws")
		(include "two.ws")
		(define brand (text "entry"))
		(screen a "A" (brand)))`,
		map[string]string{
			"one.ws": `(wire (define brand (text "one")))`,
			"two.ws": `(wire (define brand (text "two")))`,
		})

	require.True(t, res.Success, "errors: %v", res.Errors)
	brand := res.Document.Component("brand")
	require.NotNil(t, brand)
	assert.Equal(t, "entry", brand.Body.Content.Str)
}

func TestCompileLaterIncludeWins(t *testing.T) {
	res := compileWith(t, `(wire
		(include "one.ws")
		(include "two.ws")
		(screen a "A" (brand)))`,
		map[string]string{
			"one.ws": `(wire (define brand (text "one")))`,
			"two.ws": `(wire (define brand (text "two")))`,
		})

	require.True(t, res.Success, "errors: %v", res.Errors)
	assert.Equal(t, "two", res.Document.Component("brand").Body.Content.Str)
}

func TestCompileIncludingFileBeatsItsOwnIncludes(t *testing.T) {
	res := compileWith(t, `(wire
		(include "mid.ws")
		(screen a "A" (brand)))`,
		map[string]string{
			"mid.ws":  `(wire (include "deep.ws") (define brand (text "mid")))`,
			"deep.ws": `(wire (define brand (text "deep")) (define extra (box)))`,
		})

	require.True(t, res.Success, "errors: %v", res.Errors)
	assert.Equal(t, "mid", res.Document.Component("brand").Body.Content.Str)
	// Uncontested definitions flow all the way up.
	require.NotNil(t, res.Document.Component("extra"))
}

func TestCompileScreensAndMetaNeverMerge(t *testing.T) {
	res := compileWith(t, `(wire
		(include "lib.ws")
		(screen home "Home" (box)))`,
		map[string]string{
			"lib.ws": `(wire
				(meta :brand "LibCo")
				(define x (box))
				(screen lib-screen "Lib" (box)))`,
		})

	require.True(t, res.Success, "errors: %v", res.Errors)
	require.Len(t, res.Document.Screens, 1)
	assert.Equal(t, "home", res.Document.Screens[0].ID)
	assert.Nil(t, res.Document.Screen("lib-screen"))
	_, hasBrand := res.Document.Meta["brand"]
	assert.False(t, hasBrand)
}

func TestCompileDirectCycle(t *testing.T) {
	entry := `(wire (include "b.ws") (screen a "A" (box)))`
	res := Compile(context.Background(), entry, CompileOptions{
		FilePath: "/a.ws",
		Resolver: mapResolver(map[string]string{
			"a.ws": entry,
			"b.ws": `(wire (include "a.ws") (define x (box)))`,
		}),
	})

	assert.False(t, res.Success)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Message, `circular include "a.ws"`)
	// The cycle kills that one branch, not the rest of the merge.
	require.NotNil(t, res.Document.Component("x"))
}

func TestCompileIndirectCycle(t *testing.T) {
	entry := `(wire (include "b.ws") (screen a "A" (box)))`
	res := Compile(context.Background(), entry, CompileOptions{
		FilePath: "/a.ws",
		Resolver: mapResolver(map[string]string{
			"a.ws": entry,
			"b.ws": `(wire (include "c.ws"))`,
			"c.ws": `(wire (include "a.ws"))`,
		}),
	})

	assert.False(t, res.Success)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Message, "circular include")
}

func TestCompileSelfIncludeDifferentSpelling(t *testing.T) {
	entry := `(wire (include "./entry.ws") (screen a "A" (box)))`
	res := compileWith(t, entry, map[string]string{"entry.ws": entry})

	assert.False(t, res.Success)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Message, `circular include "./entry.ws"`)
}

func TestCompileMissingIncludeKeepsSiblings(t *testing.T) {
	res := compileWith(t, `(wire
		(include "nope.ws")
		(include "lib.ws")
		(screen a "A" (box)))`,
		map[string]string{
			"lib.ws": `(wire (define x (box)))`,
		})

	assert.False(t, res.Success)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Message, `cannot resolve include "nope.ws"`)
	// The failed include does not block the one after it.
	require.NotNil(t, res.Document.Component("x"))
}

func TestCompileIncludedFileParseError(t *testing.T) {
	res := compileWith(t, `(wire
		(include "bad.ws")
		(screen a "A" (box)))`,
		map[string]string{
			"bad.ws": `(wire (define broken`,
		})

	assert.False(t, res.Success)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Message, `parse error in included file "bad.ws"`)
	assert.Nil(t, res.Document.Component("broken"))
}

func TestCompileErrorPositionAtIncludeForm(t *testing.T) {
	res := compileWith(t, "(wire\n  (include \"nope.ws\")\n  (screen a \"A\" (box)))", nil)

	require.Len(t, res.Errors, 1)
	assert.Equal(t, 2, res.Errors[0].Pos.Line)
	assert.Equal(t, 3, res.Errors[0].Pos.Column)
}

func TestCompileRequiresScreens(t *testing.T) {
	res := compileWith(t, `(wire (define x (box)))`, nil)

	assert.False(t, res.Success)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Message, "document has no screens")
}

func TestCompileWithoutResolverLeavesIncludes(t *testing.T) {
	res := Compile(context.Background(), `(wire
		(include "lib.ws")
		(screen a "A" (box)))`, CompileOptions{})

	assert.True(t, res.Success)
	require.Len(t, res.Document.Includes, 1)
	assert.Equal(t, "lib.ws", res.Document.Includes[0].Path)
}

func TestCompileDepthLimit(t *testing.T) {
	files := make(map[string]string)
	for i := 1; i <= maxIncludeDepth+2; i++ {
		files[fmt.Sprintf("f%d.ws", i)] = fmt.Sprintf(`(wire (include "f%d.ws"))`, i+1)
	}
	files[fmt.Sprintf("f%d.ws", maxIncludeDepth+3)] = `(wire (define deep (box)))`

	res := compileWith(t, `(wire (include "f1.ws") (screen a "A" (box)))`, files)

	assert.False(t, res.Success)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Message, "include depth exceeds")
}

func TestCompileResolverReceivesFromPath(t *testing.T) {
	files := map[string]string{
		"mid.ws":  `(wire (include "deep.ws"))`,
		"deep.ws": `(wire (define x (box)))`,
	}
	var fromPaths []string
	resolver := func(_ context.Context, includePath, fromPath string) (ResolvedInclude, error) {
		fromPaths = append(fromPaths, fromPath)
		return ResolvedInclude{Content: files[includePath], ResolvedPath: "/" + includePath}, nil
	}

	res := Compile(context.Background(), `(wire (include "mid.ws") (screen a "A" (box)))`, CompileOptions{
		FilePath: "/entry.ws",
		Resolver: resolver,
	})

	require.True(t, res.Success, "errors: %v", res.Errors)
	assert.Equal(t, []string{"/entry.ws", "/mid.ws"}, fromPaths)
}
