package storage

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/aiseo/brand-visibility/internal/models"
)

var (
	brandIDPattern = regexp.MustCompile(`^[a-z0-9-]+$`)
	slugSeparators = regexp.MustCompile(`[^a-z0-9]+`)
)

const defaultBrandColor = "#8b5cf6"

// BrandSpec is the caller-supplied description of a brand to create
type BrandSpec struct {
	ID          string           `json:"id"`
	DisplayName string           `json:"name"`
	Kind        models.BrandKind `json:"type"`
	Color       string           `json:"color"`
	Variations  []string         `json:"variations"`
}

// ValidationError reports a rejected field on the write path
type ValidationError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// SlugifyID derives a brand id from a display name ("Adobe Commerce" -> "adobe-commerce")
func SlugifyID(name string) string {
	slug := slugSeparators.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

// NormalizeBrandSpec validates spec against the existing brands and returns
// the brand to persist. Variations are trimmed and de-duplicated
// case-insensitively; an empty list falls back to the display name.
func NormalizeBrandSpec(spec BrandSpec, existing []models.Brand) (models.Brand, error) {
	name := strings.TrimSpace(spec.DisplayName)
	if name == "" {
		return models.Brand{}, &ValidationError{Field: "name", Reason: "must not be empty"}
	}

	id := strings.TrimSpace(spec.ID)
	if id == "" {
		id = SlugifyID(name)
	}
	if !brandIDPattern.MatchString(id) {
		return models.Brand{}, &ValidationError{Field: "id", Reason: "must match [a-z0-9-]+"}
	}

	kind := spec.Kind
	if kind == "" {
		kind = models.BrandCompetitor
	}
	if kind != models.BrandPrimary && kind != models.BrandCompetitor {
		return models.Brand{}, &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown brand type %q", kind)}
	}

	for _, b := range existing {
		if b.ID == id {
			return models.Brand{}, &ValidationError{Field: "id", Reason: fmt.Sprintf("brand %q already exists", id)}
		}
		if kind == models.BrandPrimary && b.Kind == models.BrandPrimary {
			return models.Brand{}, &ValidationError{Field: "type", Reason: fmt.Sprintf("primary brand already set to %q", b.ID)}
		}
	}

	color := strings.TrimSpace(spec.Color)
	if color == "" {
		color = defaultBrandColor
	}

	return models.Brand{
		ID:          id,
		DisplayName: name,
		Kind:        kind,
		Color:       color,
		Variations:  normalizeVariations(spec.Variations, name),
	}, nil
}

// ValidateImport checks brands arriving in an import. Imported brands replace
// existing ones with the same id, and the merged collection may hold at most
// one primary brand.
func ValidateImport(brands, existing []models.Brand) error {
	kinds := make(map[string]models.BrandKind, len(existing)+len(brands))
	for _, b := range existing {
		kinds[b.ID] = b.Kind
	}

	seen := make(map[string]struct{}, len(brands))
	for _, b := range brands {
		if !brandIDPattern.MatchString(b.ID) {
			return &ValidationError{Field: "id", Reason: fmt.Sprintf("brand id %q must match [a-z0-9-]+", b.ID)}
		}
		if _, dup := seen[b.ID]; dup {
			return &ValidationError{Field: "id", Reason: fmt.Sprintf("brand %q appears twice", b.ID)}
		}
		seen[b.ID] = struct{}{}
		if b.Kind != "" && b.Kind != models.BrandPrimary && b.Kind != models.BrandCompetitor {
			return &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown brand type %q", b.Kind)}
		}
		kinds[b.ID] = b.Kind
	}

	var primary string
	for id, kind := range kinds {
		if kind != models.BrandPrimary {
			continue
		}
		if primary != "" {
			if id < primary {
				id, primary = primary, id
			}
			return &ValidationError{Field: "type", Reason: fmt.Sprintf("brands %q and %q are both primary", primary, id)}
		}
		primary = id
	}

	return nil
}

func normalizeVariations(variations []string, displayName string) []string {
	seen := make(map[string]struct{}, len(variations))
	out := make([]string, 0, len(variations))

	for _, v := range variations {
		v = strings.TrimSpace(v)
		key := strings.ToLower(v)
		if v == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}

	if len(out) == 0 {
		out = append(out, displayName)
	}
	return out
}
