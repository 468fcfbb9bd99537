package geo

import (
	"testing"

	"jobetl/internal/models"
)

func newTestNormalizer(t *testing.T) *Normalizer {
	t.Helper()

	catalog, err := DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog failed: %v", err)
	}

	return NewNormalizer(catalog)
}

func loc(country, subdivision, city string) models.NormalizedLocation {
	var l models.NormalizedLocation
	if country != "" {
		l.CountryCode = models.StringPtr(country)
	}

	if subdivision != "" {
		l.SubdivisionCode = models.StringPtr(subdivision)
	}

	if city != "" {
		l.City = models.StringPtr(city)
	}

	return l
}

func equalLocation(a, b models.NormalizedLocation) bool {
	return equalPtr(a.CountryCode, b.CountryCode) &&
		equalPtr(a.SubdivisionCode, b.SubdivisionCode) &&
		equalPtr(a.City, b.City)
}

func equalPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}

	return *a == *b
}

func format(l models.NormalizedLocation) string {
	show := func(p *string) string {
		if p == nil {
			return "<nil>"
		}

		return *p
	}

	return "{" + show(l.CountryCode) + ", " + show(l.SubdivisionCode) + ", " + show(l.City) + "}"
}

func TestNormalizeDescriptive(t *testing.T) {
	n := newTestNormalizer(t)

	tests := []struct {
		name  string
		input string
		want  models.NormalizedLocation
	}{
		{"US city with state code", "Austin, TX", loc("US", "US-TX", "Austin")},
		{"US city with state name", "Austin, Texas", loc("US", "US-TX", "Austin")},
		{"city state", "Singapore", loc("SG", "", "Singapore")},
		{"city state lower case", "hong kong", loc("HK", "", "Hong Kong")},
		{"vatican", "Vatican City", loc("VA", "", "Vatican City")},
		{"bare country", "Canada", loc("CA", "", "")},
		{"country alias", "UK", loc("GB", "", "")},
		{"turkey alias", "Turkey", loc("TR", "", "")},
		{"diacritics folded", "Türkiye", loc("TR", "", "")},
		{"alpha3", "USA", loc("US", "", "")},
		{"city with country", "Berlin, Germany", loc("DE", "", "Berlin")},
		{"city alias", "New York, NY", loc("US", "US-NY", "New York City")},
		{"nyc alias", "NYC, NY", loc("US", "US-NY", "New York City")},
		{"unknown region kept verbatim", "Toronto, ON", loc("ON", "", "Toronto")},
		{"fallback for three parts", "Springfield, IL, USA", loc("", "", "Springfield, IL, USA")},
		{"fallback for no comma", "Somewhere Unknown", loc("", "", "Somewhere Unknown")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.Normalize(SourceDescriptive, []string{tt.input})
			if len(got) != 1 {
				t.Fatalf("Normalize(%q) returned %d locations, want 1", tt.input, len(got))
			}

			if !equalLocation(got[0], tt.want) {
				t.Errorf("Normalize(%q) = %s, want %s", tt.input, format(got[0]), format(tt.want))
			}
		})
	}
}

func TestNormalizeDescriptive_Remote(t *testing.T) {
	n := newTestNormalizer(t)

	for _, input := range []string{"Remote", "Flexible / Remote", "REMOTE, US", "fully remote (EU)"} {
		got := n.NormalizeDescriptive([]string{input})
		if len(got) != 1 {
			t.Fatalf("NormalizeDescriptive(%q) returned %d locations, want 1", input, len(got))
		}

		if !got[0].IsRemote() {
			t.Errorf("NormalizeDescriptive(%q) = %s, want remote sentinel", input, format(got[0]))
		}
	}
}

func TestNormalizeDescriptive_SkipsBlankAndKeepsOrder(t *testing.T) {
	n := newTestNormalizer(t)

	got := n.NormalizeDescriptive([]string{"", "   ", "Austin, TX", "Remote"})
	if len(got) != 2 {
		t.Fatalf("got %d locations, want 2", len(got))
	}

	if models.Deref(got[0].City) != "Austin" {
		t.Errorf("first city = %q, want Austin", models.Deref(got[0].City))
	}

	if !got[1].IsRemote() {
		t.Errorf("second location = %s, want remote sentinel", format(got[1]))
	}
}

func TestNormalizeStructured(t *testing.T) {
	n := newTestNormalizer(t)

	tests := []struct {
		name  string
		input []string
		want  models.NormalizedLocation
	}{
		{"full path", []string{"US", "Kansas", "Johnson County", "Lenexa"}, loc("US", "US-KS", "Lenexa")},
		{"two letter state", []string{"US", "TX", "Austin"}, loc("US", "US-TX", "Austin")},
		{"district skipped", []string{"US", "Washington", "District of Columbia", "Washington"}, loc("US", "US-WA", "")},
		{"city alias", []string{"US", "New York", "New York"}, loc("US", "US-NY", "")},
		{"country only", []string{"US"}, loc("US", "", "")},
		{"state only", []string{"US", "Kansas"}, loc("US", "US-KS", "")},
		{"unknown state", []string{"UK", "London", "Camden"}, loc("GB", "", "Camden")},
		{"unknown country", []string{"Atlantis", "Kansas", "Lenexa"}, loc("", "US-KS", "Lenexa")},
		{"city alias applied", []string{"US", "New York", "Manhattan", "NYC"}, loc("US", "US-NY", "New York City")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.Normalize(SourceStructured, tt.input)
			if len(got) != 1 {
				t.Fatalf("Normalize(%v) returned %d locations, want 1", tt.input, len(got))
			}

			if !equalLocation(got[0], tt.want) {
				t.Errorf("Normalize(%v) = %s, want %s", tt.input, format(got[0]), format(tt.want))
			}
		})
	}
}

func TestNormalizeStructured_Empty(t *testing.T) {
	n := newTestNormalizer(t)

	if got := n.NormalizeStructured(nil); len(got) != 0 {
		t.Errorf("NormalizeStructured(nil) returned %d locations, want 0", len(got))
	}
}

func TestNormalizeStructured_SingleElementHasNoSubdivision(t *testing.T) {
	n := newTestNormalizer(t)

	for _, input := range []string{"US", "GB", "Germany", "KS", "nowhere"} {
		got := n.NormalizeStructured([]string{input})
		if len(got) != 1 {
			t.Fatalf("NormalizeStructured([%q]) returned %d locations, want 1", input, len(got))
		}

		if got[0].SubdivisionCode != nil {
			t.Errorf("NormalizeStructured([%q]) subdivision = %q, want nil", input, *got[0].SubdivisionCode)
		}
	}
}

func TestNormalizeCity_FixedPoint(t *testing.T) {
	n := newTestNormalizer(t)

	for _, city := range []string{"nyc", "New York", "new york", "Austin", "Berlin"} {
		once := n.NormalizeCity(city)
		twice := n.NormalizeCity(once)

		if once != twice {
			t.Errorf("NormalizeCity(%q) = %q, second pass = %q", city, once, twice)
		}
	}
}

func TestResolved(t *testing.T) {
	n := newTestNormalizer(t)

	tests := []struct {
		name string
		loc  models.NormalizedLocation
		want bool
	}{
		{"known country", loc("US", "US-TX", "Austin"), true},
		{"remote", models.RemoteLocation(), true},
		{"verbatim region", loc("ON", "", "Toronto"), false},
		{"no country", loc("", "", "Somewhere"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.Resolved(tt.loc); got != tt.want {
				t.Errorf("Resolved(%s) = %v, want %v", format(tt.loc), got, tt.want)
			}
		})
	}
}
