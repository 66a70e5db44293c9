// Package detector maps semantic invoice roles (date, product, quantity, price,
// total, client) to the column headers of an arbitrary tabular export.
package detector

import (
	"strings"
)

// Role identifies the semantic meaning of a column
type Role string

const (
	RoleDate     Role = "date"
	RoleProduct  Role = "product"
	RoleQuantity Role = "quantity"
	RolePrice    Role = "price"
	RoleTotal    Role = "total"
	RoleClient   Role = "client"
)

// Roles lists every role in detection order
var Roles = []Role{RoleDate, RoleProduct, RoleQuantity, RolePrice, RoleTotal, RoleClient}

// Mapping tells which header resolves each role. An empty string means unresolved.
type Mapping struct {
	DateField     string `json:"dateField" yaml:"date"`
	ProductField  string `json:"productField" yaml:"product"`
	QuantityField string `json:"quantityField" yaml:"quantity"`
	PriceField    string `json:"priceField,omitempty" yaml:"price,omitempty"`
	TotalField    string `json:"totalField,omitempty" yaml:"total,omitempty"`
	ClientField   string `json:"clientField,omitempty" yaml:"client,omitempty"`
}

// Field returns the header mapped to role
func (m Mapping) Field(role Role) string {
	switch role {
	case RoleDate:
		return m.DateField
	case RoleProduct:
		return m.ProductField
	case RoleQuantity:
		return m.QuantityField
	case RolePrice:
		return m.PriceField
	case RoleTotal:
		return m.TotalField
	case RoleClient:
		return m.ClientField
	}
	return ""
}

// WithField returns a copy of m with role pointed at header
func (m Mapping) WithField(role Role, header string) Mapping {
	switch role {
	case RoleDate:
		m.DateField = header
	case RoleProduct:
		m.ProductField = header
	case RoleQuantity:
		m.QuantityField = header
	case RolePrice:
		m.PriceField = header
	case RoleTotal:
		m.TotalField = header
	case RoleClient:
		m.ClientField = header
	}
	return m
}

// Merge overlays every non-empty field of override on top of m
func (m Mapping) Merge(override Mapping) Mapping {
	for _, role := range Roles {
		if h := override.Field(role); h != "" {
			m = m.WithField(role, h)
		}
	}
	return m
}

// Unresolved returns the roles with no header assigned
func (m Mapping) Unresolved() []Role {
	var out []Role
	for _, role := range Roles {
		if m.Field(role) == "" {
			out = append(out, role)
		}
	}
	return out
}

// Detector resolves roles against headers using ordered synonym lists
type Detector struct {
	synonyms Synonyms
}

// New creates a detector backed by the given synonyms
func New(synonyms Synonyms) *Detector {
	return &Detector{synonyms: synonyms.clone()}
}

// NewDefault creates a detector with the built-in Spanish/English vocabulary
func NewDefault() *Detector {
	return New(DefaultSynonyms())
}

// Synonyms returns a copy of the detector's candidate lists
func (d *Detector) Synonyms() Synonyms {
	return d.synonyms.clone()
}

// Detect maps each role to the first header whose normalized form equals one
// of the role's candidates, scanning candidates in priority order.
func (d *Detector) Detect(headers []string) Mapping {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = NormalizeHeader(h)
	}

	var m Mapping
	for _, role := range Roles {
		m = m.WithField(role, findField(headers, normalized, d.synonyms[role]))
	}
	return m
}

// Detect runs detection with the default vocabulary
func Detect(headers []string) Mapping {
	return NewDefault().Detect(headers)
}

func findField(headers, normalized, candidates []string) string {
	for _, candidate := range candidates {
		for i, n := range normalized {
			if n == candidate {
				return headers[i]
			}
		}
	}
	return ""
}

// NormalizeHeader lower-cases and trims a header and joins its words with "_"
func NormalizeHeader(h string) string {
	return strings.Join(strings.Fields(strings.ToLower(h)), "_")
}
