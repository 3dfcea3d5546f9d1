package storage

import (
	"errors"
	"testing"

	"github.com/aiseo/brand-visibility/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugifyID(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Adobe Commerce", "adobe-commerce"},
		{"  BigCommerce  ", "bigcommerce"},
		{"Wix.com", "wix-com"},
		{"Square / Weebly", "square-weebly"},
		{"!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, SlugifyID(tt.input))
		})
	}
}

func TestNormalizeBrandSpec(t *testing.T) {
	existing := []models.Brand{
		{ID: "shopify", DisplayName: "Shopify", Kind: models.BrandPrimary},
		{ID: "wix", DisplayName: "Wix", Kind: models.BrandCompetitor},
	}

	tests := []struct {
		name      string
		spec      BrandSpec
		expected  models.Brand
		wantField string
	}{
		{
			name: "Minimal spec gets defaults",
			spec: BrandSpec{DisplayName: "  Adobe Commerce "},
			expected: models.Brand{
				ID:          "adobe-commerce",
				DisplayName: "Adobe Commerce",
				Kind:        models.BrandCompetitor,
				Color:       defaultBrandColor,
				Variations:  []string{"Adobe Commerce"},
			},
		},
		{
			name: "Variations trimmed and de-duplicated",
			spec: BrandSpec{ID: "woo", DisplayName: "WooCommerce", Color: "#7f54b3", Variations: []string{" Woo ", "woo", "", "WooCommerce"}},
			expected: models.Brand{
				ID:          "woo",
				DisplayName: "WooCommerce",
				Kind:        models.BrandCompetitor,
				Color:       "#7f54b3",
				Variations:  []string{"Woo", "WooCommerce"},
			},
		},
		{
			name:      "Empty name",
			spec:      BrandSpec{DisplayName: "   "},
			wantField: "name",
		},
		{
			name:      "Invalid id",
			spec:      BrandSpec{ID: "Big_Commerce", DisplayName: "BigCommerce"},
			wantField: "id",
		},
		{
			name:      "Name without slug characters",
			spec:      BrandSpec{DisplayName: "???"},
			wantField: "id",
		},
		{
			name:      "Duplicate id",
			spec:      BrandSpec{DisplayName: "Wix"},
			wantField: "id",
		},
		{
			name:      "Second primary",
			spec:      BrandSpec{DisplayName: "Squarespace", Kind: models.BrandPrimary},
			wantField: "type",
		},
		{
			name:      "Unknown kind",
			spec:      BrandSpec{DisplayName: "Squarespace", Kind: "partner"},
			wantField: "type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			brand, err := NormalizeBrandSpec(tt.spec, existing)
			if tt.wantField != "" {
				var verr *ValidationError
				require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
				assert.Equal(t, tt.wantField, verr.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, brand)
		})
	}
}

func TestNormalizeBrandSpec_FirstPrimary(t *testing.T) {
	brand, err := NormalizeBrandSpec(BrandSpec{DisplayName: "Shopify", Kind: models.BrandPrimary}, nil)
	require.NoError(t, err)
	assert.Equal(t, models.BrandPrimary, brand.Kind)
}

func TestValidateImport(t *testing.T) {
	existing := []models.Brand{
		{ID: "shopify", Kind: models.BrandPrimary},
		{ID: "wix", Kind: models.BrandCompetitor},
	}

	tests := []struct {
		name    string
		brands  []models.Brand
		field   string
		wantErr bool
	}{
		{"Upsert of existing brands", existing, "", false},
		{"New competitor", []models.Brand{{ID: "bigc", Kind: models.BrandCompetitor}}, "", false},
		{"Primary moves to another brand", []models.Brand{
			{ID: "shopify", Kind: models.BrandCompetitor},
			{ID: "wix", Kind: models.BrandPrimary},
		}, "", false},
		{"Second primary", []models.Brand{{ID: "wix", Kind: models.BrandPrimary}}, "type", true},
		{"Two primaries in the import", []models.Brand{
			{ID: "a", Kind: models.BrandPrimary},
			{ID: "b", Kind: models.BrandPrimary},
		}, "type", true},
		{"Invalid id", []models.Brand{{ID: "Big Commerce", Kind: models.BrandCompetitor}}, "id", true},
		{"Empty id", []models.Brand{{Kind: models.BrandCompetitor}}, "id", true},
		{"Repeated id", []models.Brand{{ID: "bigc"}, {ID: "bigc"}}, "id", true},
		{"Unknown type", []models.Brand{{ID: "bigc", Kind: "partner"}}, "type", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateImport(tt.brands, existing)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}
