package objects

import (
	"fmt"
	"net/url"
)

// InventoryObject is an immutable entry from a documentation site's
// inventory, normalized to a common shape regardless of which processor
// produced it (spec.md §3).
type InventoryObject struct {
	// Name is the stable identifier from the source inventory.
	Name string
	// URI is relative to LocationURL's base and resolves to the
	// object's content page.
	URI string
	// InventoryType tags the originating format, e.g.
	// "sphinx_objects_inv" or "mkdocs_search_index".
	InventoryType string
	// LocationURL is the absolute URL of the inventory file this object
	// was read from. MkDocs search-index locations are relative to the
	// site root rather than to the index file, so MkDocs objects carry
	// the site location with a trailing slash instead.
	LocationURL string
	// DisplayName overrides Name for presentation when set.
	DisplayName string
	// Specifics carries opaque format-specific metadata (domain, role,
	// priority, project, version for Sphinx; object_type for MkDocs).
	Specifics map[string]string

	renderer SpecificsRenderer
}

// NewInventoryObject validates and constructs an InventoryObject. It
// enforces the invariants from spec.md §3: Name and InventoryType are
// non-empty, and Specifics keys are strings (guaranteed by the map type
// itself — Go gives us that for free).
func NewInventoryObject(name, uri, inventoryType, locationURL, displayName string, specifics map[string]string, renderer SpecificsRenderer) (InventoryObject, error) {
	if name == "" {
		return InventoryObject{}, fmt.Errorf("inventory object name must not be empty")
	}
	if inventoryType == "" {
		return InventoryObject{}, fmt.Errorf("inventory object %q: inventory_type must not be empty", name)
	}
	if specifics == nil {
		specifics = map[string]string{}
	}
	if renderer == nil {
		renderer = NewGenericRenderer(inventoryType)
	}
	return InventoryObject{
		Name:          name,
		URI:           uri,
		InventoryType: inventoryType,
		LocationURL:   locationURL,
		DisplayName:   displayName,
		Specifics:     specifics,
		renderer:      renderer,
	}, nil
}

// EffectiveDisplayName returns DisplayName when set, else Name.
func (o InventoryObject) EffectiveDisplayName() string {
	if o.DisplayName != "" {
		return o.DisplayName
	}
	return o.Name
}

// ContentURL resolves URI against LocationURL's base, per spec.md §3's
// "uri resolvable against location_url's base" invariant.
func (o InventoryObject) ContentURL() (string, error) {
	base, err := url.Parse(o.LocationURL)
	if err != nil {
		return "", fmt.Errorf("inventory object %q: invalid location_url: %w", o.Name, err)
	}
	ref, err := url.Parse(o.URI)
	if err != nil {
		return "", fmt.Errorf("inventory object %q: invalid uri: %w", o.Name, err)
	}
	return base.ResolveReference(ref).String(), nil
}

// RenderAsJSON renders the object to the exhaustive field set from
// spec.md §6.
func (o InventoryObject) RenderAsJSON() map[string]any {
	out := map[string]any{
		"name":           o.Name,
		"uri":            o.URI,
		"inventory_type": o.InventoryType,
		"location_url":   o.LocationURL,
		"specifics":      o.Specifics,
	}
	if o.DisplayName != "" {
		out["display_name"] = o.DisplayName
	}
	return out
}

// RenderAsMarkdown renders the object as Markdown lines. When
// revealInternals is false, format-specific specifics are omitted.
func (o InventoryObject) RenderAsMarkdown(revealInternals bool) []string {
	lines := []string{fmt.Sprintf("### %s", o.EffectiveDisplayName())}
	if o.DisplayName != "" && o.DisplayName != o.Name {
		lines = append(lines, fmt.Sprintf("- name: `%s`", o.Name))
	}
	lines = append(lines, fmt.Sprintf("- uri: `%s`", o.URI))
	if revealInternals {
		lines = append(lines, o.renderSpecificsMarkdown()...)
	}
	return lines
}

// renderSpecificsMarkdown delegates to the attached renderer, falling
// back to alphabetical rendering when none was supplied.
func (o InventoryObject) renderSpecificsMarkdown() []string {
	r := o.renderer
	if r == nil {
		r = NewGenericRenderer(o.InventoryType)
	}
	return r.RenderSpecificsMarkdown(o.Specifics)
}
