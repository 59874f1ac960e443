package customer

import (
	"agv-finance/internal/event"
	"agv-finance/internal/infrastructure/monitoring"
	"agv-finance/internal/pkg/apperrors"
	"agv-finance/internal/pkg/validation"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

var DocumentKinds = []string{"aadhar", "pan", "photo", "signature", "other"}

type ListResult struct {
	Customers []*Customer
	Total     int
	Page      int
	PerPage   int
}

type CustomerService interface {
	CreateCustomer(ctx context.Context, profile Profile) (*Customer, error)
	GetCustomer(ctx context.Context, customerID uuid.UUID) (*Customer, error)
	UpdateCustomer(ctx context.Context, customerID uuid.UUID, profile Profile) (*Customer, error)
	ListCustomers(ctx context.Context, filter ListFilter) (*ListResult, error)
	DeactivateCustomer(ctx context.Context, customerID uuid.UUID) error
	ReactivateCustomer(ctx context.Context, customerID uuid.UUID) error
	AttachDocument(ctx context.Context, customerID uuid.UUID, kind, storedName string) (*Customer, error)
}

var _ CustomerService = (*customerService)(nil)

type customerService struct {
	repo   CustomerRepository
	pub    event.EventPublisher
	logger *slog.Logger
}

func NewCustomerService(repo CustomerRepository, pub event.EventPublisher, logger *slog.Logger) CustomerService {
	if repo == nil {
		panic("customer repository cannot be nil")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerService, using default stderr handler")
	}
	if pub == nil {
		pub = event.NewNoopPublisher(logger)
	}
	return &customerService{
		repo:   repo,
		pub:    pub,
		logger: logger.With(slog.String("component", "customerService")),
	}
}

// ValidateProfile normalises every field and reports all failures at once.
func ValidateProfile(p Profile) (Profile, error) {
	fields := validation.Fields{}
	var err error

	p.Name, err = validation.Name(p.Name)
	fields.Check("name", err)
	p.Mobile, err = validation.Mobile(p.Mobile)
	fields.Check("mobile", err)
	p.AdditionalMobile, err = validation.OptionalMobile(p.AdditionalMobile)
	fields.Check("additional_mobile", err)
	p.Email, err = validation.Email(p.Email)
	fields.Check("email", err)
	p.PANNumber, err = validation.PAN(p.PANNumber)
	fields.Check("pan_number", err)
	p.AadhaarNumber, err = validation.Aadhaar(p.AadhaarNumber)
	fields.Check("aadhar_number", err)

	p.Address = strings.TrimSpace(p.Address)
	p.FatherName = strings.TrimSpace(p.FatherName)
	p.MotherName = strings.TrimSpace(p.MotherName)

	return p, fields.Err()
}

func payloadOf(c *Customer) event.CustomerEventPayload {
	return event.CustomerEventPayload{
		CustomerID: c.ID,
		Name:       c.Name,
		Mobile:     c.Mobile,
		Email:      c.Email,
		Status:     string(c.Status),
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

func (s *customerService) publishUpdated(ctx context.Context, c *Customer) {
	ev := event.CustomerUpdatedEvent{Timestamp: time.Now(), Payload: payloadOf(c)}
	if err := s.pub.PublishCustomerUpdated(ctx, ev); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish customer update event", slog.Any("error", err))
	}
}

func notFound(customerID uuid.UUID) error {
	return fmt.Errorf("%w: %w (id %s)", apperrors.ErrNotFound, ErrNotFound, customerID)
}

func (s *customerService) ensureMobileFree(ctx context.Context, mobile string, self uuid.UUID) error {
	existing, err := s.repo.FindByMobile(ctx, mobile)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to check mobile number: %w", err)
	}
	if existing.ID != self {
		s.logger.WarnContext(ctx, "Mobile number already registered", slog.String("customerID", existing.ID.String()))
		return fmt.Errorf("%w: %w", apperrors.ErrAlreadyExists, ErrDuplicateMobile)
	}
	return nil
}

func (s *customerService) CreateCustomer(ctx context.Context, profile Profile) (*Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to create new customer")

	profile, err := ValidateProfile(profile)
	if err != nil {
		s.logger.WarnContext(ctx, "Customer validation failed", slog.Any("error", err))
		return nil, err
	}

	if err := s.ensureMobileFree(ctx, profile.Mobile, uuid.Nil); err != nil {
		return nil, err
	}

	cust := NewCustomer(profile)
	if err := s.repo.Create(ctx, cust); err != nil {
		s.logger.ErrorContext(ctx, "Failed to save new customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save new customer: %w", err)
	}
	monitoring.RecordCustomerCreated()
	s.logger.InfoContext(ctx, "Customer created successfully", slog.String("customerID", cust.ID.String()))

	ev := event.CustomerCreatedEvent{Timestamp: time.Now(), Payload: payloadOf(cust)}
	if err := s.pub.PublishCustomerCreated(ctx, ev); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish customer created event", slog.Any("error", err))
	}
	return cust, nil
}

func (s *customerService) GetCustomer(ctx context.Context, customerID uuid.UUID) (*Customer, error) {
	cust, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Customer not found by repository", slog.String("customerID", customerID.String()))
			return nil, notFound(customerID)
		}
		s.logger.ErrorContext(ctx, "Failed to retrieve customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to retrieve customer %s: %w", customerID, err)
	}
	return cust, nil
}

func (s *customerService) UpdateCustomer(ctx context.Context, customerID uuid.UUID, profile Profile) (*Customer, error) {
	logCtx := s.logger.With(slog.String("customerID", customerID.String()))
	logCtx.InfoContext(ctx, "Attempting to update customer")

	profile, err := ValidateProfile(profile)
	if err != nil {
		logCtx.WarnContext(ctx, "Customer validation failed", slog.Any("error", err))
		return nil, err
	}

	cust, err := s.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if profile.Mobile != cust.Mobile {
		if err := s.ensureMobileFree(ctx, profile.Mobile, cust.ID); err != nil {
			return nil, err
		}
	}

	cust.Update(profile)
	if err := s.repo.Update(ctx, cust); err != nil {
		logCtx.ErrorContext(ctx, "Failed to update customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to update customer %s: %w", customerID, err)
	}
	logCtx.InfoContext(ctx, "Customer updated successfully")
	s.publishUpdated(ctx, cust)
	return cust, nil
}

func (s *customerService) ListCustomers(ctx context.Context, filter ListFilter) (*ListResult, error) {
	filter.Params = filter.Params.Normalize()
	filter.Query = strings.TrimSpace(filter.Query)

	customers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list customers", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return &ListResult{Customers: customers, Total: total, Page: filter.Page, PerPage: filter.PerPage}, nil
}

func (s *customerService) DeactivateCustomer(ctx context.Context, customerID uuid.UUID) error {
	logCtx := s.logger.With(slog.String("customerID", customerID.String()))

	cust, err := s.GetCustomer(ctx, customerID)
	if err != nil {
		return err
	}
	if !cust.IsActive() {
		logCtx.InfoContext(ctx, "Customer already inactive")
		return nil
	}

	open, err := s.repo.CountOpenLoans(ctx, customerID)
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to count open loans", slog.Any("error", err))
		return fmt.Errorf("failed to check loans of customer %s: %w", customerID, err)
	}
	if open > 0 {
		logCtx.WarnContext(ctx, "Refusing to deactivate customer with open loans", slog.Int("openLoans", open))
		return fmt.Errorf("%w: %w", apperrors.ErrConflict, ErrCannotDeactivateOpenLoan)
	}

	cust.Deactivate()
	if err := s.repo.Update(ctx, cust); err != nil {
		logCtx.ErrorContext(ctx, "Failed to deactivate customer", slog.Any("error", err))
		return fmt.Errorf("failed to deactivate customer %s: %w", customerID, err)
	}
	logCtx.InfoContext(ctx, "Customer deactivated")
	s.publishUpdated(ctx, cust)
	return nil
}

func (s *customerService) ReactivateCustomer(ctx context.Context, customerID uuid.UUID) error {
	cust, err := s.GetCustomer(ctx, customerID)
	if err != nil {
		return err
	}
	if cust.IsActive() {
		return nil
	}
	cust.Reactivate()
	if err := s.repo.Update(ctx, cust); err != nil {
		s.logger.ErrorContext(ctx, "Failed to reactivate customer", slog.Any("error", err))
		return fmt.Errorf("failed to reactivate customer %s: %w", customerID, err)
	}
	s.publishUpdated(ctx, cust)
	return nil
}

func (s *customerService) AttachDocument(ctx context.Context, customerID uuid.UUID, kind, storedName string) (*Customer, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	valid := false
	for _, k := range DocumentKinds {
		if k == kind {
			valid = true
			break
		}
	}
	if !valid {
		return nil, apperrors.NewValidationError("kind", "Invalid document kind. Valid kinds: "+strings.Join(DocumentKinds, ", "))
	}

	cust, err := s.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	cust.AttachDocument(kind, storedName)
	if err := s.repo.Update(ctx, cust); err != nil {
		s.logger.ErrorContext(ctx, "Failed to store document reference", slog.Any("error", err))
		return nil, fmt.Errorf("failed to attach document to customer %s: %w", customerID, err)
	}
	s.logger.InfoContext(ctx, "Document attached", slog.String("customerID", customerID.String()), slog.String("kind", kind))
	return cust, nil
}
