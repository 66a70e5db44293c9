package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/FACorreiaa/invoice-insights/internal/domain/analytics/detector"
)

// ErrInvalidMapping is wrapped by every mapping validation failure
var ErrInvalidMapping = errors.New("invalid column mapping")

// ValidationError lists what is wrong with a mapping
type ValidationError struct {
	Missing     []detector.Role          `json:"missing,omitempty"`
	NeedsAmount bool                     `json:"needsAmount,omitempty"` // neither price nor total mapped
	Unknown     map[detector.Role]string `json:"unknown,omitempty"`     // role -> header absent from the file
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		names := make([]string, len(e.Missing))
		for i, r := range e.Missing {
			names[i] = string(r)
		}
		parts = append(parts, "missing "+strings.Join(names, ", "))
	}
	if e.NeedsAmount {
		parts = append(parts, "one of price or total is required")
	}
	for _, role := range detector.Roles {
		if h, ok := e.Unknown[role]; ok {
			parts = append(parts, fmt.Sprintf("unknown header %q for %s", h, role))
		}
	}
	return fmt.Sprintf("%s: %s", ErrInvalidMapping, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidMapping
}

// ValidateMapping checks that date, product and quantity are mapped, that at
// least one of price or total is mapped, and, when headers is non-nil, that
// every mapped header exists in it.
func ValidateMapping(headers []string, m detector.Mapping) error {
	verr := &ValidationError{}

	for _, role := range []detector.Role{detector.RoleDate, detector.RoleProduct, detector.RoleQuantity} {
		if m.Field(role) == "" {
			verr.Missing = append(verr.Missing, role)
		}
	}
	if m.PriceField == "" && m.TotalField == "" {
		verr.NeedsAmount = true
	}

	if headers != nil {
		known := make(map[string]bool, len(headers))
		for _, h := range headers {
			known[h] = true
		}
		for _, role := range detector.Roles {
			if h := m.Field(role); h != "" && !known[h] {
				if verr.Unknown == nil {
					verr.Unknown = make(map[detector.Role]string)
				}
				verr.Unknown[role] = h
			}
		}
	}

	if len(verr.Missing) == 0 && !verr.NeedsAmount && len(verr.Unknown) == 0 {
		return nil
	}
	return verr
}
