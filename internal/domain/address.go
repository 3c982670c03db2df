package domain

import "strings"

// StructuredAddress is an address represented as discrete fields.
type StructuredAddress struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
}

// Address is the tagged union of the two address shapes orders carry:
// a free-text string and/or a structured object. Either part may be
// empty, but a usable address has at least one of them.
type Address struct {
	Raw        string
	Structured *StructuredAddress
}

// Empty reports whether the address carries no information at all.
func (a Address) Empty() bool {
	return strings.TrimSpace(a.Raw) == "" && a.Structured == nil
}

// City derives the matching city from the address. The structured city
// wins when present; otherwise the raw string is split on commas: with
// three or more parts the second is assumed to be the city ("street,
// city, state, zip"), with fewer the last part is taken. Purely
// syntactic, no geocoding.
func (a Address) City() (string, bool) {
	if a.Structured != nil {
		if c := strings.TrimSpace(a.Structured.City); c != "" {
			return c, true
		}
	}
	raw := strings.TrimSpace(a.Raw)
	if raw == "" {
		return "", false
	}
	parts := strings.Split(raw, ",")
	if len(parts) >= 3 {
		if c := strings.TrimSpace(parts[1]); c != "" {
			return c, true
		}
		return "", false
	}
	if c := strings.TrimSpace(parts[len(parts)-1]); c != "" {
		return c, true
	}
	return "", false
}

// Formatted returns a display string for the address. For structured
// addresses it synthesizes "street, city, state, zip"; otherwise the
// raw string is returned as-is.
func (a Address) Formatted() string {
	if a.Structured == nil {
		return a.Raw
	}
	parts := make([]string, 0, 4)
	for _, p := range []string{a.Structured.Street, a.Structured.City, a.Structured.State, a.Structured.ZipCode} {
		if s := strings.TrimSpace(p); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return a.Raw
	}
	return strings.Join(parts, ", ")
}
