package models

// RemoteMarker is written into every field of the remote/flexible sentinel location.
const RemoteMarker = "Flexible/Remote"

// NormalizedLocation is a canonical {country, subdivision, city} triple.
// Nil fields serialize as JSON null.
type NormalizedLocation struct {
	CountryCode     *string `json:"country_code"`
	SubdivisionCode *string `json:"subdivision_code"`
	City            *string `json:"city"`
}

// RemoteLocation returns the Flexible/Remote sentinel triple.
func RemoteLocation() NormalizedLocation {
	return NormalizedLocation{
		CountryCode:     StringPtr(RemoteMarker),
		SubdivisionCode: StringPtr(RemoteMarker),
		City:            StringPtr(RemoteMarker),
	}
}

// IsRemote reports whether l is the remote sentinel.
func (l NormalizedLocation) IsRemote() bool {
	return Deref(l.CountryCode) == RemoteMarker &&
		Deref(l.SubdivisionCode) == RemoteMarker &&
		Deref(l.City) == RemoteMarker
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}

// Deref returns the pointed-to string or "" for nil.
func Deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}
