package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	forgeerrors "github.com/kchia/component-forge/internal/errors"
)

func TestValidateRequiresComponentType(t *testing.T) {
	tests := []struct {
		name          string
		componentType string
		wantErr       bool
	}{
		{name: "present", componentType: "Button", wantErr: false},
		{name: "missing", componentType: "", wantErr: true},
		{name: "whitespace only", componentType: "   ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &Requirement{ComponentType: tt.componentType}
			err := req.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, forgeerrors.ErrCodeRequirementInvalid, forgeerrors.GetCode(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBuildQueryRejectsInvalidRequirement(t *testing.T) {
	_, err := BuildQuery(&Requirement{Description: "a clickable thing"})

	require.Error(t, err)
	assert.Equal(t, forgeerrors.ErrCodeRequirementInvalid, forgeerrors.GetCode(err))
}

func TestBuildQueryLexicalBag(t *testing.T) {
	req := &Requirement{
		ComponentType: "Button",
		Props:         []string{"variant", "size", "disabled"},
		Variants:      []string{"primary", "secondary"},
		Accessibility: []string{"aria-label"},
		Description:   "primary action button",
	}

	query, err := BuildQuery(req)
	require.NoError(t, err)

	// Order follows the requirement fields, duplicates collapse
	// case-insensitively keeping the first casing seen.
	assert.Equal(t,
		"Button variant size disabled primary secondary aria-label action",
		query.Lexical)
}

func TestBuildQueryLexicalBagDeduplicates(t *testing.T) {
	req := &Requirement{
		ComponentType: "Badge",
		Props:         []string{"Variant", "variant", " "},
		Variants:      []string{"VARIANT"},
	}

	query, err := BuildQuery(req)
	require.NoError(t, err)

	assert.Equal(t, "Badge Variant", query.Lexical)
}

func TestBuildQuerySemanticSentence(t *testing.T) {
	tests := []struct {
		name string
		req  Requirement
		want string
	}{
		{
			name: "full requirement",
			req: Requirement{
				ComponentType: "Button",
				Props:         []string{"variant", "size"},
				Variants:      []string{"primary", "ghost"},
				Accessibility: []string{"aria-label"},
				Description:   "Used for primary page actions.",
			},
			want: "A Button component with props variant, size, supporting variants primary, ghost, with accessibility features aria-label. Used for primary page actions.",
		},
		{
			name: "component type only",
			req:  Requirement{ComponentType: "Card"},
			want: "A Card component",
		},
		{
			name: "props only",
			req: Requirement{
				ComponentType: "Input",
				Props:         []string{"placeholder"},
			},
			want: "A Input component with props placeholder",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, err := BuildQuery(&tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, query.Semantic)
		})
	}
}

func TestBuildQuerySetsFilters(t *testing.T) {
	query, err := BuildQuery(&Requirement{ComponentType: "  Button  "})
	require.NoError(t, err)

	assert.Equal(t, "Button", query.Filters.ComponentType)
}
