package geo

import (
	"strings"

	"jobetl/internal/models"
)

// SourceKind selects the location encoding a feed uses.
type SourceKind int

const (
	// SourceDescriptive fragments are free-text names like "Austin, TX" or "Remote".
	SourceDescriptive SourceKind = iota
	// SourceStructured fragments are administrative parts, coarsest first.
	SourceStructured
)

// String returns the source kind name.
func (k SourceKind) String() string {
	switch k {
	case SourceDescriptive:
		return "descriptive"
	case SourceStructured:
		return "structured"
	default:
		return "unknown"
	}
}

var ignoredCityParts = []string{"county", "district"}

// Normalizer maps location fragments onto the catalog. It holds no mutable state.
type Normalizer struct {
	catalog *Catalog
}

// NewNormalizer creates a normalizer backed by catalog.
func NewNormalizer(catalog *Catalog) *Normalizer {
	return &Normalizer{catalog: catalog}
}

// Normalize dispatches on kind. Descriptive sources yield zero or more
// locations (one per fragment); structured sources describe a single place.
func (n *Normalizer) Normalize(kind SourceKind, fragments []string) []models.NormalizedLocation {
	if kind == SourceStructured {
		return n.NormalizeStructured(fragments)
	}

	return n.NormalizeDescriptive(fragments)
}

// NormalizeDescriptive resolves each free-text place name independently.
func (n *Normalizer) NormalizeDescriptive(names []string) []models.NormalizedLocation {
	out := make([]models.NormalizedLocation, 0, len(names))

	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}

		out = append(out, n.describe(name))
	}

	return out
}

func (n *Normalizer) describe(name string) models.NormalizedLocation {
	if strings.Contains(strings.ToLower(name), "remote") {
		return models.RemoteLocation()
	}

	if code, ok := n.catalog.CountryCode(name); ok {
		loc := models.NormalizedLocation{CountryCode: models.StringPtr(code)}
		if n.catalog.IsCityState(code) {
			country, _ := n.catalog.Country(code)
			loc.City = models.StringPtr(country.DisplayName())
		}

		return loc
	}

	parts := strings.Split(name, ",")
	if len(parts) != 2 {
		return models.NormalizedLocation{City: models.StringPtr(name)}
	}

	city := strings.TrimSpace(parts[0])
	region := strings.TrimSpace(parts[1])
	loc := models.NormalizedLocation{City: n.city(city)}

	switch {
	case region == "":
	case n.isUSState(region):
		code := n.usStateCode(region)
		loc.CountryCode = models.StringPtr("US")
		loc.SubdivisionCode = models.StringPtr("US-" + code)
	default:
		if code, ok := n.catalog.CountryCode(region); ok {
			loc.CountryCode = models.StringPtr(code)
		} else {
			loc.CountryCode = models.StringPtr(region)
		}
	}

	return loc
}

func (n *Normalizer) isUSState(region string) bool {
	return n.usStateCode(region) != ""
}

func (n *Normalizer) usStateCode(region string) string {
	if code, ok := n.catalog.USStateCode(region); ok {
		return code
	}

	if code, ok := n.catalog.USStateByName(region); ok {
		return code
	}

	return ""
}

// NormalizeStructured resolves an ordered list like ["US", "Kansas", "Johnson County", "Lenexa"].
func (n *Normalizer) NormalizeStructured(parts []string) []models.NormalizedLocation {
	if len(parts) == 0 {
		return []models.NormalizedLocation{}
	}

	countryRaw := parts[0]

	var loc models.NormalizedLocation
	if code, ok := n.catalog.CountryCode(countryRaw); ok {
		loc.CountryCode = models.StringPtr(code)
	}

	if len(parts) < 2 {
		return []models.NormalizedLocation{loc}
	}

	stateRaw := parts[1]
	if code, ok := n.catalog.USStateByName(stateRaw); ok {
		loc.SubdivisionCode = models.StringPtr("US-" + code)
	} else if isUpperCode(stateRaw) {
		loc.SubdivisionCode = models.StringPtr("US-" + stateRaw)
	}

	for i := len(parts) - 1; i >= 1; i-- {
		part := parts[i]
		if part == countryRaw || part == stateRaw || containsAny(strings.ToLower(part), ignoredCityParts) {
			continue
		}

		loc.City = n.city(part)

		break
	}

	return []models.NormalizedLocation{loc}
}

// NormalizeCity applies the city alias table; it is a fixed point after one pass.
func (n *Normalizer) NormalizeCity(city string) string {
	return n.catalog.CanonicalCity(strings.TrimSpace(city))
}

func (n *Normalizer) city(city string) *string {
	if strings.TrimSpace(city) == "" {
		return nil
	}

	return models.StringPtr(n.catalog.CanonicalCity(city))
}

// Resolved reports whether loc carries a country code the catalog knows.
// The remote sentinel counts as resolved.
func (n *Normalizer) Resolved(loc models.NormalizedLocation) bool {
	if loc.IsRemote() {
		return true
	}

	if loc.CountryCode == nil {
		return false
	}

	_, ok := n.catalog.Country(*loc.CountryCode)

	return ok
}

func isUpperCode(s string) bool {
	if len(s) != 2 {
		return false
	}

	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}

	return true
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}

	return false
}
