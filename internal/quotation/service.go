package quotation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/ytf-quote/internal/catalog"
	"github.com/noah-isme/ytf-quote/internal/common"
	"github.com/noah-isme/ytf-quote/internal/obs"
	"github.com/noah-isme/ytf-quote/internal/pricing"
)

// ErrTooManyItems is returned when a draft would exceed the configured line limit.
var ErrTooManyItems = errors.New("too many line items")

// ErrItemNotFound indicates the line item does not belong to the draft.
var ErrItemNotFound = errors.New("line item not found")

const defaultMaxItems = 50

// Service manages quotation drafts on top of the reducer.
type Service struct {
	reducer     *Reducer
	store       *Store
	numberer    *Numberer
	logger      zerolog.Logger
	maxItems    int
	defaultSize catalog.BusinessSizeID
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Catalog             *catalog.Catalog
	Store               *Store
	Numberer            *Numberer
	Logger              zerolog.Logger
	MaxItems            int
	DefaultBusinessSize string
	DraftTTL            time.Duration
	NewID               func() uuid.UUID
}

// CreateInput describes a new draft.
type CreateInput struct {
	BusinessSize string  `json:"businessSize"`
	Client       *Client `json:"client,omitempty"`
}

// ItemPatch lists the fields to change on a line item. Nil fields are left as they are.
type ItemPatch struct {
	Family      *string `json:"typefaceFamily,omitempty"`
	Variant     *string `json:"typefaceVariant,omitempty"`
	LicenseType *string `json:"licenseType,omitempty"`
	Usage       *string `json:"usage,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p ItemPatch) Empty() bool {
	return p.Family == nil && p.Variant == nil && p.LicenseType == nil && p.Usage == nil
}

// PriceInput is a stateless single-line price request.
type PriceInput struct {
	Family       string `json:"typefaceFamily" validate:"required"`
	BusinessSize string `json:"businessSize" validate:"required"`
	LicenseType  string `json:"licenseType" validate:"required"`
	Usage        string `json:"usage"`
}

// PriceResult is the outcome of a price request.
type PriceResult struct {
	Family       string                 `json:"typefaceFamily"`
	Category     catalog.Category       `json:"category"`
	BusinessSize catalog.BusinessSizeID `json:"businessSize"`
	LicenseType  catalog.LicenseTypeID  `json:"licenseType"`
	Usage        string                 `json:"usage"`
	BasePrice    pricing.Money          `json:"basePrice"`
	Multiplier   pricing.Money          `json:"multiplier"`
	Amount       pricing.Money          `json:"amount"`
}

// TotalsInput carries upstream lines to be totalled.
type TotalsInput struct {
	BusinessSize string         `json:"businessSize" validate:"required"`
	Items        []ExternalLine `json:"items"`
}

// NewService constructs a Service.
func NewService(cfg ServiceConfig) *Service {
	s := &Service{
		store:    cfg.Store,
		numberer: cfg.Numberer,
		logger:   cfg.Logger,
		maxItems: cfg.MaxItems,
	}
	if s.store == nil {
		s.store = NewStore(cfg.DraftTTL)
	}
	if s.numberer == nil {
		s.numberer = &Numberer{}
	}
	if s.maxItems <= 0 {
		s.maxItems = defaultMaxItems
	}
	s.reducer = NewReducer(ReducerConfig{
		Catalog:        cfg.Catalog,
		OnUnknownUsage: s.unknownUsage,
		NewID:          cfg.NewID,
	})
	s.defaultSize = catalog.SizeIndividual
	if size, ok := catalog.ParseBusinessSize(cfg.DefaultBusinessSize); ok {
		s.defaultSize = size
	}
	return s
}

// Catalog returns the reference data used for pricing.
func (s *Service) Catalog() *catalog.Catalog {
	return s.reducer.Catalog()
}

// CheckStore writes, reads back and removes a throwaway draft.
func (s *Service) CheckStore(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	q := Quotation{ID: uuid.New()}
	s.store.Put(q)
	defer s.store.Delete(q.ID)
	got, err := s.store.Get(q.ID)
	if err != nil {
		return fmt.Errorf("draft store round-trip: %w", err)
	}
	if got.ID != q.ID {
		return errors.New("draft store returned a different draft")
	}
	return nil
}

// Create opens a new draft holding one default item.
func (s *Service) Create(ctx context.Context, in CreateInput) (Quotation, error) {
	_, span := otel.Tracer("quotation.Service").Start(ctx, "QuotationService.Create")
	defer span.End()

	size := s.defaultSize
	if strings.TrimSpace(in.BusinessSize) != "" {
		parsed, ok := catalog.ParseBusinessSize(in.BusinessSize)
		if !ok {
			return Quotation{}, invalid("businessSize", "Business size is not recognised")
		}
		size = parsed
	}
	q := s.reducer.New(size)
	q.Number, q.Date = s.numberer.Next()
	if in.Client != nil {
		q = s.reducer.Apply(q, ChangeClient{Client: *in.Client})
	}
	s.store.Put(q)

	span.SetAttributes(
		attribute.String("quotation.id", q.ID.String()),
		attribute.String("quotation.business_size", string(size)),
	)
	if obs.QuotationsCreatedTotal != nil {
		obs.QuotationsCreatedTotal.WithLabelValues(string(size)).Inc()
	}
	s.logger.Info().
		Str("quotation_id", q.ID.String()).
		Str("quotation_number", q.Number).
		Str("business_size", string(size)).
		Msg("quotation_created")
	return q, nil
}

// Get loads a draft.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Quotation, error) {
	q, err := s.store.Get(id)
	if err != nil {
		return Quotation{}, mapStoreError(err)
	}
	return q, nil
}

// Snapshot loads a draft and resolves it for display.
func (s *Service) Snapshot(ctx context.Context, id uuid.UUID) (Snapshot, error) {
	q, err := s.Get(ctx, id)
	if err != nil {
		return Snapshot{}, err
	}
	return NewSnapshot(s.Catalog(), q), nil
}

// Dispatch applies events to a draft in order and stores the result.
func (s *Service) Dispatch(ctx context.Context, id uuid.UUID, events ...Event) (Quotation, error) {
	ctx, span := otel.Tracer("quotation.Service").Start(ctx, "QuotationService.Dispatch")
	defer span.End()
	span.SetAttributes(
		attribute.String("quotation.id", id.String()),
		attribute.Int("quotation.events", len(events)),
	)
	q, err := s.store.Update(id, func(q Quotation) (Quotation, error) {
		return s.apply(ctx, q, events...)
	})
	if err != nil {
		span.RecordError(err)
		return Quotation{}, mapStoreError(err)
	}
	return q, nil
}

// AddItem appends a default line item and applies patch to it.
func (s *Service) AddItem(ctx context.Context, id uuid.UUID, patch ItemPatch) (Quotation, error) {
	ctx, span := otel.Tracer("quotation.Service").Start(ctx, "QuotationService.AddItem")
	defer span.End()
	q, err := s.store.Update(id, func(q Quotation) (Quotation, error) {
		next, err := s.apply(ctx, q, AddItem{})
		if err != nil {
			return Quotation{}, err
		}
		if patch.Empty() {
			return next, nil
		}
		added := next.Items[len(next.Items)-1]
		events, err := s.patchEvents(next, added, patch)
		if err != nil {
			return Quotation{}, err
		}
		return s.apply(ctx, next, events...)
	})
	if err != nil {
		span.RecordError(err)
		return Quotation{}, mapStoreError(err)
	}
	return q, nil
}

// UpdateItem validates patch against the catalog and applies it to one item.
func (s *Service) UpdateItem(ctx context.Context, id, itemID uuid.UUID, patch ItemPatch) (Quotation, error) {
	ctx, span := otel.Tracer("quotation.Service").Start(ctx, "QuotationService.UpdateItem")
	defer span.End()
	q, err := s.store.Update(id, func(q Quotation) (Quotation, error) {
		it, ok := q.Item(itemID)
		if !ok {
			return Quotation{}, ErrItemNotFound
		}
		events, err := s.patchEvents(q, it, patch)
		if err != nil {
			return Quotation{}, err
		}
		return s.apply(ctx, q, events...)
	})
	if err != nil {
		span.RecordError(err)
		return Quotation{}, mapStoreError(err)
	}
	return q, nil
}

// RemoveItem drops a line item. Removing the only item leaves the draft unchanged.
func (s *Service) RemoveItem(ctx context.Context, id, itemID uuid.UUID) (Quotation, error) {
	q, err := s.store.Update(id, func(q Quotation) (Quotation, error) {
		if _, ok := q.Item(itemID); !ok {
			return Quotation{}, ErrItemNotFound
		}
		return s.apply(ctx, q, RemoveItem{ItemID: itemID})
	})
	if err != nil {
		return Quotation{}, mapStoreError(err)
	}
	return q, nil
}

// ChangeBusinessSize moves a draft to another tier.
func (s *Service) ChangeBusinessSize(ctx context.Context, id uuid.UUID, size string) (Quotation, error) {
	parsed, ok := catalog.ParseBusinessSize(size)
	if !ok {
		return Quotation{}, invalid("businessSize", "Business size is not recognised")
	}
	return s.Dispatch(ctx, id, ChangeBusinessSize{Size: parsed})
}

// ChangeClient replaces the client block of a draft.
func (s *Service) ChangeClient(ctx context.Context, id uuid.UUID, client Client) (Quotation, error) {
	return s.Dispatch(ctx, id, ChangeClient{Client: client})
}

// Validate checks whether a draft is ready to be issued.
func (s *Service) Validate(ctx context.Context, id uuid.UUID) (Quotation, error) {
	_, span := otel.Tracer("quotation.Service").Start(ctx, "QuotationService.Validate")
	defer span.End()
	q, err := s.Get(ctx, id)
	if err != nil {
		return Quotation{}, err
	}
	result := "valid"
	defer func() {
		span.SetAttributes(attribute.String("quotation.validation", result))
		if obs.QuotationValidationTotal != nil {
			obs.QuotationValidationTotal.WithLabelValues(result).Inc()
		}
	}()
	if err := Validate(q); err != nil {
		result = "invalid"
		var verr *ValidationError
		if errors.As(err, &verr) {
			return q, unprocessable(verr)
		}
		return q, err
	}
	if obs.QuotationTotalAmount != nil {
		obs.QuotationTotalAmount.Observe(q.Total.InexactFloat64())
	}
	return q, nil
}

// Price computes the amount of a single line without touching any draft.
func (s *Service) Price(ctx context.Context, in PriceInput) (PriceResult, error) {
	if err := ValidateRequest(in); err != nil {
		return PriceResult{}, requestError(err)
	}
	c := s.Catalog()
	if _, ok := c.Typeface(in.Family); !ok {
		return PriceResult{}, invalid("typefaceFamily", "Typeface family is not in the catalog")
	}
	size, ok := catalog.ParseBusinessSize(in.BusinessSize)
	if !ok {
		return PriceResult{}, invalid("businessSize", "Business size is not recognised")
	}
	license, ok := catalog.ParseLicenseType(in.LicenseType)
	if !ok {
		return PriceResult{}, invalid("licenseType", "License type is not recognised")
	}
	if !c.IsLicenseAvailable(size, license) {
		return PriceResult{}, invalid("licenseType", "License type is not available for this business size")
	}
	usage := strings.TrimSpace(in.Usage)
	if catalog.IsAutoUsage(license) {
		usage = c.BusinessUsage(size)
	} else if set, ok := c.UsageSetFor(license); ok {
		if _, ok := c.UsageOption(set, usage); !ok {
			return PriceResult{}, invalid("usage", "Usage option is not recognised")
		}
	}
	calc := s.reducer.calculator
	category := calc.CategoryOf(in.Family)
	multiplier := calc.ResolveMultiplier(license, usage)
	return PriceResult{
		Family:       in.Family,
		Category:     category,
		BusinessSize: size,
		LicenseType:  license,
		Usage:        usage,
		BasePrice:    calc.BaseLicensePrice(category, size),
		Multiplier:   multiplier.Value,
		Amount:       calc.ItemPrice(in.Family, size, license, usage),
	}, nil
}

// Totals aggregates lines priced elsewhere. Malformed amounts count as zero.
func (s *Service) Totals(ctx context.Context, in TotalsInput) (Totals, error) {
	if err := ValidateRequest(in); err != nil {
		return Totals{}, requestError(err)
	}
	size, ok := catalog.ParseBusinessSize(in.BusinessSize)
	if !ok {
		return Totals{}, invalid("businessSize", "Business size is not recognised")
	}
	if len(in.Items) > s.maxItems {
		return Totals{}, tooManyItems(s.maxItems)
	}
	return AggregateExternal(in.Items, size), nil
}

func (s *Service) apply(ctx context.Context, q Quotation, events ...Event) (Quotation, error) {
	for _, ev := range events {
		if _, ok := ev.(AddItem); ok && len(q.Items) >= s.maxItems {
			return Quotation{}, ErrTooManyItems
		}
		q = s.reducer.Apply(q, ev)
		if obs.QuotationEventsTotal != nil {
			obs.QuotationEventsTotal.WithLabelValues(ev.Name()).Inc()
		}
		s.logger.Debug().
			Str("quotation_id", q.ID.String()).
			Str("event", ev.Name()).
			Str("subtotal", q.Subtotal.String()).
			Int("discount_percentage", q.Discount.Percentage).
			Str("total", q.Total.String()).
			Str("trace_id", traceID(ctx)).
			Msg("quotation_event")
	}
	return q, nil
}

// patchEvents turns a patch into reducer events, rejecting values the catalog cannot honour.
func (s *Service) patchEvents(q Quotation, it LineItem, patch ItemPatch) ([]Event, error) {
	c := s.Catalog()
	var events []Event
	family := it.Family
	variant := it.Variant
	if patch.Family != nil {
		tf, ok := c.Typeface(strings.TrimSpace(*patch.Family))
		if !ok {
			return nil, invalid("typefaceFamily", "Typeface family is not in the catalog")
		}
		family = tf.Family
		variant = tf.FirstVariant()
		events = append(events, ChangeTypefaceFamily{ItemID: it.ID, Family: tf.Family})
	}
	if patch.Variant != nil {
		v := strings.TrimSpace(*patch.Variant)
		tf, ok := c.Typeface(family)
		if !ok || !tf.HasVariant(v) {
			return nil, invalid("typefaceVariant", fmt.Sprintf("%s has no %q style", family, v))
		}
		if v != variant {
			events = append(events, ChangeVariant{ItemID: it.ID, Variant: v})
		}
	}
	license := it.LicenseType
	if patch.LicenseType != nil {
		parsed, ok := catalog.ParseLicenseType(*patch.LicenseType)
		if !ok {
			return nil, invalid("licenseType", "License type is not recognised")
		}
		if !c.IsLicenseAvailable(q.BusinessSize, parsed) {
			return nil, invalid("licenseType", "License type is not available for this business size")
		}
		license = parsed
		events = append(events, ChangeLicenseType{ItemID: it.ID, LicenseType: parsed})
	}
	if patch.Usage != nil {
		usage := strings.TrimSpace(*patch.Usage)
		if catalog.IsAutoUsage(license) {
			return nil, invalid("usage", "Usage is derived from the business size for this license type")
		}
		set, ok := c.UsageSetFor(license)
		if !ok {
			return nil, invalid("usage", "License type has no usage options")
		}
		if _, ok := c.UsageOption(set, usage); !ok {
			return nil, invalid("usage", "Usage option is not recognised")
		}
		events = append(events, ChangeUsage{ItemID: it.ID, Usage: usage})
	}
	return events, nil
}

func (s *Service) unknownUsage(license catalog.LicenseTypeID, usage string) {
	if obs.UnknownUsageTotal != nil {
		obs.UnknownUsageTotal.WithLabelValues(string(license)).Inc()
	}
	s.logger.Warn().
		Str("license_type", string(license)).
		Str("usage", usage).
		Msg("unknown usage id, pricing with neutral multiplier")
}

func traceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}

func mapStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case common.IsAppError(err):
		return err
	case errors.Is(err, ErrQuotationNotFound):
		return &common.AppError{Code: "NOT_FOUND", Message: "quotation not found", HTTPStatus: http.StatusNotFound, Err: err}
	case errors.Is(err, ErrItemNotFound):
		return &common.AppError{Code: "NOT_FOUND", Message: "line item not found", HTTPStatus: http.StatusNotFound, Err: err}
	case errors.Is(err, ErrTooManyItems):
		return tooManyItemsErr(err)
	default:
		return err
	}
}

func tooManyItems(limit int) *common.AppError {
	return tooManyItemsErr(fmt.Errorf("%w: limit %d", ErrTooManyItems, limit))
}

func tooManyItemsErr(err error) *common.AppError {
	return &common.AppError{
		Code:       "TOO_MANY_ITEMS",
		Message:    "quotation has reached the maximum number of items",
		HTTPStatus: http.StatusUnprocessableEntity,
		Err:        err,
	}
}

func invalid(field, message string) *common.AppError {
	return &common.AppError{
		Code:       "VALIDATION_FAILED",
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]string{field: message},
	}
}

func unprocessable(verr *ValidationError) *common.AppError {
	return &common.AppError{
		Code:       "VALIDATION_FAILED",
		Message:    "quotation is not ready to be issued",
		HTTPStatus: http.StatusUnprocessableEntity,
		Err:        verr,
		Details:    verr.Fields,
	}
}

func requestError(err error) error {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return &common.AppError{
			Code:       "VALIDATION_FAILED",
			Message:    "invalid request payload",
			HTTPStatus: http.StatusUnprocessableEntity,
			Err:        verr,
			Details:    verr.Fields,
		}
	}
	return err
}
