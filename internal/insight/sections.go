package insight

import "strings"

// Sections is a reply split at the dashboard markers.
type Sections struct {
	Product string `json:"product" yaml:"product"`
	Person  string `json:"person" yaml:"person"`
	// Other is whatever the model wrote outside both blocks, or the whole
	// text when no marker was found.
	Other string `json:"other,omitempty" yaml:"other,omitempty"`
}

// SplitSections separates the product and salesperson blocks of a reply.
// Markers may be wrapped in bold or quotes; those decorations are dropped.
func SplitSections(text string) Sections {
	pi := strings.Index(text, ProductMarker)
	si := strings.Index(text, PersonMarker)
	if pi < 0 && si < 0 {
		return Sections{Other: strings.TrimSpace(text)}
	}
	var s Sections
	cut := func(from, to int) string {
		if to < 0 || to < from {
			to = len(text)
		}
		return clean(text[from:to])
	}
	switch {
	case pi >= 0 && si >= 0 && pi < si:
		s.Other = clean(text[:pi])
		s.Product = cut(pi+len(ProductMarker), si)
		s.Person = cut(si+len(PersonMarker), -1)
	case pi >= 0 && si >= 0:
		s.Other = clean(text[:si])
		s.Person = cut(si+len(PersonMarker), pi)
		s.Product = cut(pi+len(ProductMarker), -1)
	case pi >= 0:
		s.Other = clean(text[:pi])
		s.Product = cut(pi+len(ProductMarker), -1)
	default:
		s.Other = clean(text[:si])
		s.Person = cut(si+len(PersonMarker), -1)
	}
	return s
}

func clean(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "*'\":")
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, "*'\"")
	return strings.TrimSpace(s)
}
