package detector

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Synonyms holds, per role, the normalized header names recognised for it in
// priority order.
type Synonyms map[Role][]string

var ErrUnknownRole = errors.New("unknown role")

// DefaultSynonyms returns the built-in Spanish and English business vocabulary
func DefaultSynonyms() Synonyms {
	return Synonyms{
		RoleDate:     {"fecha", "date", "dia", "day", "fecha_factura", "invoice_date", "fecha_venta", "sale_date"},
		RoleProduct:  {"producto", "product", "item", "articulo", "descripcion", "description", "nombre_producto", "product_name"},
		RoleQuantity: {"cantidad", "quantity", "qty", "unidades", "units", "cant"},
		RolePrice:    {"precio", "price", "precio_unitario", "unit_price", "valor_unitario", "precio_unit"},
		RoleTotal:    {"total", "monto", "amount", "subtotal", "importe", "valor", "value", "total_venta"},
		RoleClient:   {"cliente", "client", "customer", "nombre_cliente", "client_name", "comprador", "buyer"},
	}
}

func (s Synonyms) clone() Synonyms {
	out := make(Synonyms, len(s))
	for role, list := range s {
		out[role] = append([]string(nil), list...)
	}
	return out
}

// Extend returns a copy of s with extra candidates appended after the existing
// ones. Candidates are normalized and duplicates within a role are dropped.
func (s Synonyms) Extend(extra Synonyms) (Synonyms, error) {
	out := s.clone()
	for role, list := range extra {
		if !validRole(role) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownRole, role)
		}
		seen := make(map[string]bool, len(out[role]))
		for _, c := range out[role] {
			seen[c] = true
		}
		for _, c := range list {
			n := NormalizeHeader(c)
			if n == "" || seen[n] {
				continue
			}
			seen[n] = true
			out[role] = append(out[role], n)
		}
	}
	return out, nil
}

// ReadSynonyms decodes a YAML document of role -> candidate list and appends it
// to the defaults.
//
//	date: [fecha_emision, data]
//	client: [razon_social]
func ReadSynonyms(r io.Reader) (Synonyms, error) {
	var extra Synonyms
	if err := yaml.NewDecoder(r).Decode(&extra); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode synonyms: %w", err)
	}
	return DefaultSynonyms().Extend(extra)
}

// LoadSynonyms reads a synonyms file. An empty path yields the defaults.
func LoadSynonyms(path string) (Synonyms, error) {
	if path == "" {
		return DefaultSynonyms(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open synonyms file: %w", err)
	}
	defer f.Close()
	return ReadSynonyms(f)
}

func validRole(role Role) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}
