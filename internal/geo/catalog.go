// Package geo resolves free-text and structured location fragments into
// normalized {country_code, subdivision_code, city} triples.
package geo

import (
	"embed"
	"errors"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed data/countries.yaml data/regions.yaml
var dataFS embed.FS

// Catalog loading errors.
var (
	ErrEmptyCatalog   = errors.New("country catalog is empty")
	ErrUnknownAlias   = errors.New("alias points to a country missing from the catalog")
	ErrInvalidCountry = errors.New("country entry requires alpha2 and name")
)

// Country is one ISO 3166-1 entry.
type Country struct {
	Alpha2   string `yaml:"alpha2"`
	Alpha3   string `yaml:"alpha3"`
	Name     string `yaml:"name"`
	Official string `yaml:"official"`
	Common   string `yaml:"common"`
}

// DisplayName returns the common name when one exists, otherwise the ISO name.
func (c Country) DisplayName() string {
	if c.Common != "" {
		return c.Common
	}

	return c.Name
}

type countryFile struct {
	Countries []Country `yaml:"countries"`
}

type regionFile struct {
	USSubdivisions map[string]string `yaml:"us_subdivisions"`
	CountryAliases map[string]string `yaml:"country_aliases"`
	CityStates     []string          `yaml:"city_states"`
	CityAliases    map[string]string `yaml:"city_aliases"`
}

// Catalog holds the immutable lookup tables used by the Normalizer.
// It is safe for concurrent use because nothing mutates it after loading.
type Catalog struct {
	countries      map[string]Country
	countryKeys    map[string]string
	countryAliases map[string]string
	usStateCodes   map[string]string
	usStateNames   map[string]string
	cityStates     map[string]struct{}
	cityAliases    map[string]string
}

var defaultCatalog = sync.OnceValues(func() (*Catalog, error) {
	countries, err := dataFS.ReadFile("data/countries.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded countries: %w", err)
	}

	regions, err := dataFS.ReadFile("data/regions.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded regions: %w", err)
	}

	return ParseCatalog(countries, regions)
})

// DefaultCatalog returns the embedded catalog, parsed once per process.
func DefaultCatalog() (*Catalog, error) {
	return defaultCatalog()
}

// ParseCatalog builds a Catalog from the YAML country and region documents.
func ParseCatalog(countriesYAML, regionsYAML []byte) (*Catalog, error) {
	var cf countryFile
	if err := yaml.Unmarshal(countriesYAML, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse countries YAML: %w", err)
	}

	var rf regionFile
	if err := yaml.Unmarshal(regionsYAML, &rf); err != nil {
		return nil, fmt.Errorf("failed to parse regions YAML: %w", err)
	}

	if len(cf.Countries) == 0 {
		return nil, ErrEmptyCatalog
	}

	c := &Catalog{
		countries:      make(map[string]Country, len(cf.Countries)),
		countryKeys:    make(map[string]string, len(cf.Countries)*4),
		countryAliases: make(map[string]string, len(rf.CountryAliases)),
		usStateCodes:   make(map[string]string, len(rf.USSubdivisions)),
		usStateNames:   make(map[string]string, len(rf.USSubdivisions)),
		cityStates:     make(map[string]struct{}, len(rf.CityStates)),
		cityAliases:    make(map[string]string, len(rf.CityAliases)),
	}

	for i, country := range cf.Countries {
		if country.Alpha2 == "" || country.Name == "" {
			return nil, fmt.Errorf("%w: countries[%d]", ErrInvalidCountry, i)
		}

		c.countries[country.Alpha2] = country
	}

	// Codes are indexed before names so a name never shadows a code.
	for _, country := range cf.Countries {
		c.addKey(country.Alpha2, country.Alpha2)
		c.addKey(country.Alpha3, country.Alpha2)
	}

	for _, country := range cf.Countries {
		c.addKey(country.Name, country.Alpha2)
		c.addKey(country.Official, country.Alpha2)
		c.addKey(country.Common, country.Alpha2)
	}

	for alias, code := range rf.CountryAliases {
		if _, ok := c.countries[code]; !ok {
			return nil, fmt.Errorf("%w: %s -> %s", ErrUnknownAlias, alias, code)
		}

		c.countryAliases[lookupKey(alias)] = code
	}

	for code, name := range rf.USSubdivisions {
		c.usStateCodes[code] = name
		c.usStateNames[lookupKey(name)] = code
	}

	for _, code := range rf.CityStates {
		c.cityStates[code] = struct{}{}
	}

	for alias, canonical := range rf.CityAliases {
		c.cityAliases[lookupKey(alias)] = canonical
	}

	return c, nil
}

func (c *Catalog) addKey(value, alpha2 string) {
	key := lookupKey(value)
	if key == "" {
		return
	}

	if _, exists := c.countryKeys[key]; !exists {
		c.countryKeys[key] = alpha2
	}
}

// CountryCode resolves a free-text country name or code to ISO alpha-2.
// The alias table is consulted before the catalog.
func (c *Catalog) CountryCode(name string) (string, bool) {
	key := lookupKey(name)
	if key == "" {
		return "", false
	}

	if code, ok := c.countryAliases[key]; ok {
		return code, true
	}

	code, ok := c.countryKeys[key]

	return code, ok
}

// Country returns the catalog entry for an alpha-2 code.
func (c *Catalog) Country(alpha2 string) (Country, bool) {
	country, ok := c.countries[alpha2]

	return country, ok
}

// IsCityState reports whether alpha2 names a country that is its own city.
func (c *Catalog) IsCityState(alpha2 string) bool {
	_, ok := c.cityStates[alpha2]

	return ok
}

// USStateCode matches a two-letter US subdivision code exactly.
func (c *Catalog) USStateCode(code string) (string, bool) {
	if _, ok := c.usStateCodes[code]; ok {
		return code, true
	}

	return "", false
}

// USStateByName matches a US subdivision by its name.
func (c *Catalog) USStateByName(name string) (string, bool) {
	code, ok := c.usStateNames[lookupKey(name)]

	return code, ok
}

// CanonicalCity applies the city alias table. Unknown names are returned unchanged.
func (c *Catalog) CanonicalCity(city string) string {
	if canonical, ok := c.cityAliases[lookupKey(city)]; ok {
		return canonical
	}

	return city
}
