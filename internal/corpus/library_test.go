package corpus

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	forgeerrors "github.com/kchia/component-forge/internal/errors"
)

const buttonPattern = `{
	"id": "shadcn-button",
	"name": "Button",
	"category": "form",
	"description": "A clickable button with multiple variants and sizes",
	"framework": "react",
	"library": "shadcn/ui",
	"metadata": {
		"props": [{"name": "variant", "type": "string"}, {"name": "size", "type": "string"}, "disabled"],
		"variants": ["primary", "secondary", "ghost"],
		"a11y": ["aria-label", "keyboard-navigation"]
	}
}`

const cardPattern = `{
	"id": "shadcn-card",
	"name": "Card",
	"category": "layout",
	"description": "A content container with header and footer sections",
	"metadata": {
		"props": ["title"],
		"variants": ["outlined"]
	}
}`

func writeLibrary(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "patterns.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFile_ArrayForm(t *testing.T) {
	path := writeLibrary(t, "["+buttonPattern+","+cardPattern+"]")

	lib, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 2, lib.Len())
	p, ok := lib.Get("shadcn-button")
	require.True(t, ok)
	assert.Equal(t, "Button", p.Name)
}

func TestLoadFile_WrappedForm(t *testing.T) {
	path := writeLibrary(t, `{"patterns": [`+buttonPattern+`]}`)

	lib, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, lib.Len())
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.Equal(t, forgeerrors.ErrCodeCorpusNotFound, forgeerrors.GetCode(err))
}

func TestLoadFile_Malformed(t *testing.T) {
	path := writeLibrary(t, "not json at all")

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Equal(t, forgeerrors.ErrCodeCorpusInvalid, forgeerrors.GetCode(err))
}

func TestNewLibrary_DuplicateID(t *testing.T) {
	_, err := NewLibrary([]Pattern{
		{ID: "btn", Name: "Button"},
		{ID: "btn", Name: "Button Again"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate pattern id")
}

func TestNewLibrary_SortedByID(t *testing.T) {
	lib, err := NewLibrary([]Pattern{
		{ID: "zeta", Name: "Z"},
		{ID: "alpha", Name: "A"},
	})
	require.NoError(t, err)

	ps := lib.Patterns()
	assert.Equal(t, "alpha", ps[0].ID)
	assert.Equal(t, "zeta", ps[1].ID)
}

func TestPattern_MetadataNames(t *testing.T) {
	path := writeLibrary(t, "["+buttonPattern+"]")
	lib, err := LoadFile(path)
	require.NoError(t, err)

	p, _ := lib.Get("shadcn-button")

	props, err := p.Props()
	require.NoError(t, err)
	assert.Equal(t, []string{"variant", "size", "disabled"}, props)

	variants, err := p.Variants()
	require.NoError(t, err)
	assert.Equal(t, []string{"primary", "secondary", "ghost"}, variants)

	a11y, err := p.A11yFeatures()
	require.NoError(t, err)
	assert.Equal(t, []string{"aria-label", "keyboard-navigation"}, a11y)
}

func TestPattern_MalformedMetadata(t *testing.T) {
	p := Pattern{
		ID:   "broken",
		Name: "Broken",
		Metadata: map[string]any{
			"props": "not-a-list",
		},
	}

	_, err := p.Props()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not a list")

	// Document skips the malformed section instead of failing
	doc := p.Document()
	assert.Contains(t, doc, "Broken")
	assert.NotContains(t, doc, "not-a-list")
}

func TestPattern_Document(t *testing.T) {
	path := writeLibrary(t, "["+buttonPattern+"]")
	lib, err := LoadFile(path)
	require.NoError(t, err)

	p, _ := lib.Get("shadcn-button")
	doc := p.Document()

	assert.Contains(t, doc, "Button")
	assert.Contains(t, doc, "form")
	assert.Contains(t, doc, "variant")
	assert.Contains(t, doc, "primary")
	assert.Contains(t, doc, "aria-label")
}

func TestStore_Reload(t *testing.T) {
	path := writeLibrary(t, "["+buttonPattern+"]")

	store, err := NewStore(path)
	require.NoError(t, err)
	assert.Equal(t, 1, store.Snapshot().Len())

	var reloaded *Library
	store.OnReload(func(lib *Library) { reloaded = lib })

	require.NoError(t, os.WriteFile(path, []byte("["+buttonPattern+","+cardPattern+"]"), 0644))
	require.NoError(t, store.Reload())

	assert.Equal(t, 2, store.Snapshot().Len())
	require.NotNil(t, reloaded)
	assert.Equal(t, 2, reloaded.Len())
}

func TestStore_ReloadFailureKeepsSnapshot(t *testing.T) {
	path := writeLibrary(t, "["+buttonPattern+"]")

	store, err := NewStore(path)
	require.NoError(t, err)
	old := store.Snapshot()

	require.NoError(t, os.WriteFile(path, []byte("corrupt"), 0644))
	require.Error(t, store.Reload())

	// Previous snapshot still served
	assert.Same(t, old, store.Snapshot())
}

func TestStore_WatchReloadsOnWrite(t *testing.T) {
	path := writeLibrary(t, "["+buttonPattern+"]")

	store, err := NewStore(path)
	require.NoError(t, err)

	reloaded := make(chan *Library, 1)
	store.OnReload(func(lib *Library) {
		select {
		case reloaded <- lib:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = store.Watch(ctx, 50*time.Millisecond) }()

	// Give the watcher time to register before writing
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("["+buttonPattern+","+cardPattern+"]"), 0644))

	select {
	case lib := <-reloaded:
		assert.Equal(t, 2, lib.Len())
	case <-time.After(3 * time.Second):
		t.Fatal("library was not reloaded after file change")
	}
}

func TestPropExtractor_InterfaceProps(t *testing.T) {
	code := `
import * as React from "react"

interface ButtonProps {
  variant?: "primary" | "secondary"
  size?: "sm" | "lg"
  disabled?: boolean
  onClick?: () => void
}

export function Button({ variant, size, disabled, onClick }: ButtonProps) {
  return <button disabled={disabled} onClick={onClick}>click</button>
}
`
	extractor := NewPropExtractor()
	defer extractor.Close()

	props, err := extractor.Extract(context.Background(), code)
	require.NoError(t, err)
	assert.Equal(t, []string{"variant", "size", "disabled", "onClick"}, props)
}

func TestPropExtractor_TypeAliasProps(t *testing.T) {
	code := `
type CardProps = {
  title: string
  footer?: React.ReactNode
}

export const Card = ({ title, footer }: CardProps) => <div>{title}{footer}</div>
`
	extractor := NewPropExtractor()
	defer extractor.Close()

	props, err := extractor.Extract(context.Background(), code)
	require.NoError(t, err)
	assert.Equal(t, []string{"title", "footer"}, props)
}

func TestEnrichProps_FillsMissingMetadata(t *testing.T) {
	lib, err := NewLibrary([]Pattern{
		{
			ID:   "badge",
			Name: "Badge",
			Code: "interface BadgeProps {\n  label: string\n  tone?: string\n}\nexport const Badge = (p: BadgeProps) => <span>{p.label}</span>",
		},
		{
			ID:       "curated",
			Name:     "Curated",
			Code:     "interface CuratedProps { ignored: string }",
			Metadata: map[string]any{"props": []any{"kept"}},
		},
	})
	require.NoError(t, err)

	n := EnrichProps(context.Background(), lib)
	assert.Equal(t, 1, n)

	badge, _ := lib.Get("badge")
	props, err := badge.Props()
	require.NoError(t, err)
	assert.Equal(t, []string{"label", "tone"}, props)

	curated, _ := lib.Get("curated")
	props, err = curated.Props()
	require.NoError(t, err)
	assert.Equal(t, []string{"kept"}, props, "curated metadata is not overwritten")
}
