package catalog

import (
	"errors"
	"net/http"
	"strings"

	"github.com/noah-isme/ytf-quote/internal/common"
)

// Service exposes catalog listings in the shape returned to API clients.
type Service struct {
	catalog *Catalog
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Catalog *Catalog
}

// UsageOptionsResult lists usage tiers for one license type.
type UsageOptionsResult struct {
	LicenseType         LicenseType   `json:"licenseType"`
	UsageSet            UsageSetID    `json:"usageSet"`
	AutoUsage           bool          `json:"autoUsage"`
	RequiresManualUsage bool          `json:"requiresManualUsage"`
	Options             []UsageOption `json:"options"`
}

// NewService constructs a Service, defaulting to the process-wide catalog.
func NewService(cfg ServiceConfig) *Service {
	c := cfg.Catalog
	if c == nil {
		c = Default()
	}
	return &Service{catalog: c}
}

// Catalog returns the reference data backing the service.
func (s *Service) Catalog() *Catalog {
	return s.catalog
}

// ListTypefaces returns every family with its variants.
func (s *Service) ListTypefaces() []Typeface {
	return s.catalog.Typefaces()
}

// ListBusinessSizes returns every licensee tier.
func (s *Service) ListBusinessSizes() []BusinessSize {
	return s.catalog.BusinessSizes()
}

// ListLicenseTypes returns the license types, narrowed to a tier when sizeParam is set.
func (s *Service) ListLicenseTypes(sizeParam string) ([]LicenseType, error) {
	if strings.TrimSpace(sizeParam) == "" {
		return s.catalog.LicenseTypes(), nil
	}
	size, ok := ParseBusinessSize(sizeParam)
	if !ok {
		return nil, badRequest("businessSize", "unknown business size", errors.New("catalog: unknown business size"))
	}
	return s.catalog.AvailableLicenseTypes(size), nil
}

// ListUsageOptions returns the usage tiers offered for a license type.
func (s *Service) ListUsageOptions(licenseParam string) (UsageOptionsResult, error) {
	id, ok := ParseLicenseType(licenseParam)
	if !ok {
		return UsageOptionsResult{}, badRequest("licenseType", "unknown license type", errors.New("catalog: unknown license type"))
	}
	lt, _ := s.catalog.LicenseType(id)
	set, _ := s.catalog.UsageSetFor(id)
	return UsageOptionsResult{
		LicenseType:         lt,
		UsageSet:            set,
		AutoUsage:           IsAutoUsage(id),
		RequiresManualUsage: lt.RequiresManualUsage,
		Options:             s.catalog.UsageOptions(set),
	}, nil
}

func badRequest(field, message string, err error) *common.AppError {
	return &common.AppError{
		Code:       "BAD_REQUEST",
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		Err:        err,
		Details: map[string]any{
			"field": field,
		},
	}
}
