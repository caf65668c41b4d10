package parties

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalid wraps every input validation failure.
var ErrInvalid = errors.New("parties: invalid input")

// Standard 15-character GSTIN layout: state code, PAN, entity digit, Z, checksum.
var gstinPattern = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)

func (s *Service) validate(p Party) error {
	if strings.TrimSpace(p.Code) == "" {
		return fmt.Errorf("%w: party code is required", ErrInvalid)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: party name is required", ErrInvalid)
	}
	if p.Kind != KindVendor && p.Kind != KindCustomer {
		return fmt.Errorf("%w: party kind must be VENDOR or CUSTOMER", ErrInvalid)
	}
	if p.GSTIN != "" && !gstinPattern.MatchString(p.GSTIN) {
		return fmt.Errorf("%w: invalid GSTIN", ErrInvalid)
	}
	return nil
}
