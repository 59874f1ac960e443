package customer_test

import (
	"agv-finance/internal/domain/customer"
	"agv-finance/internal/event/mocks"
	"agv-finance/internal/pkg/apperrors"
	"agv-finance/internal/pkg/pagination"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupTest() (*customer.MockCustomerRepository, *mocks.EventPublisher, customer.CustomerService) {
	mockRepo := new(customer.MockCustomerRepository)
	mockPub := new(mocks.EventPublisher)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := customer.NewCustomerService(mockRepo, mockPub, logger)
	return mockRepo, mockPub, service
}

func validProfile() customer.Profile {
	return customer.Profile{
		Name:          "  ravi kumar ",
		Mobile:        "098765 43210",
		Email:         "Ravi@Example.com",
		PANNumber:     "abcde1234f",
		AadhaarNumber: "1234 5678 9012",
		Address:       " 12 MG Road ",
	}
}

func TestCustomerService_CreateCustomer(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mockRepo, mockPub, service := setupTest()

		mockRepo.On("FindByMobile", ctx, "9876543210").Return(nil, apperrors.ErrNotFound).Once()
		mockRepo.On("Create", ctx, mock.MatchedBy(func(c *customer.Customer) bool {
			return c.Name == "Ravi Kumar" &&
				c.Mobile == "9876543210" &&
				c.Email == "ravi@example.com" &&
				c.PANNumber == "ABCDE1234F" &&
				c.AadhaarNumber == "123456789012" &&
				c.Address == "12 MG Road" &&
				c.Status == customer.StatusActive
		})).Return(nil).Once()
		mockPub.On("PublishCustomerCreated", ctx, mock.Anything).Return(nil).Once()

		created, err := service.CreateCustomer(ctx, validProfile())

		require.NoError(t, err)
		assert.Equal(t, "Ravi Kumar", created.Name)
		assert.NotEqual(t, uuid.Nil, created.ID)
		mockRepo.AssertExpectations(t)
		mockPub.AssertExpectations(t)
	})

	t.Run("Error - Validation reports every field", func(t *testing.T) {
		mockRepo, _, service := setupTest()

		_, err := service.CreateCustomer(ctx, customer.Profile{Name: "R", Mobile: "12345", PANNumber: "bad"})

		require.ErrorIs(t, err, apperrors.ErrValidation)
		var vErr *apperrors.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Contains(t, vErr.Fields, "name")
		assert.Contains(t, vErr.Fields, "mobile")
		assert.Contains(t, vErr.Fields, "pan_number")
		mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Error - Duplicate mobile", func(t *testing.T) {
		mockRepo, _, service := setupTest()
		existing := customer.NewCustomer(customer.Profile{Name: "Other", Mobile: "9876543210"})
		mockRepo.On("FindByMobile", ctx, "9876543210").Return(existing, nil).Once()

		_, err := service.CreateCustomer(ctx, validProfile())

		assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
		assert.ErrorIs(t, err, customer.ErrDuplicateMobile)
		mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Error - Repository failure", func(t *testing.T) {
		mockRepo, _, service := setupTest()
		dbError := errors.New("database connection failed")
		mockRepo.On("FindByMobile", ctx, "9876543210").Return(nil, apperrors.ErrNotFound).Once()
		mockRepo.On("Create", ctx, mock.AnythingOfType("*customer.Customer")).Return(dbError).Once()

		created, err := service.CreateCustomer(ctx, validProfile())

		assert.Nil(t, created)
		assert.ErrorIs(t, err, dbError)
		assert.Contains(t, err.Error(), "failed to save new customer")
	})

	t.Run("Publish failure does not fail creation", func(t *testing.T) {
		mockRepo, mockPub, service := setupTest()
		mockRepo.On("FindByMobile", ctx, "9876543210").Return(nil, apperrors.ErrNotFound).Once()
		mockRepo.On("Create", ctx, mock.Anything).Return(nil).Once()
		mockPub.On("PublishCustomerCreated", ctx, mock.Anything).Return(errors.New("broker down")).Once()

		_, err := service.CreateCustomer(ctx, validProfile())
		assert.NoError(t, err)
	})
}

func TestCustomerService_GetCustomer(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mockRepo, _, service := setupTest()
		expected := &customer.Customer{ID: id, Name: "Test", Status: customer.StatusActive}
		mockRepo.On("FindByID", ctx, id).Return(expected, nil).Once()

		cust, err := service.GetCustomer(ctx, id)
		assert.NoError(t, err)
		assert.Equal(t, expected, cust)
	})

	t.Run("Not found", func(t *testing.T) {
		mockRepo, _, service := setupTest()
		mockRepo.On("FindByID", ctx, id).Return(nil, apperrors.ErrNotFound).Once()

		_, err := service.GetCustomer(ctx, id)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		assert.ErrorIs(t, err, customer.ErrNotFound)
	})
}

func TestCustomerService_UpdateCustomer(t *testing.T) {
	ctx := context.Background()

	t.Run("Success with new mobile", func(t *testing.T) {
		mockRepo, mockPub, service := setupTest()
		existing := customer.NewCustomer(customer.Profile{Name: "Ravi Kumar", Mobile: "9123456789"})
		mockRepo.On("FindByID", ctx, existing.ID).Return(existing, nil).Once()
		mockRepo.On("FindByMobile", ctx, "9876543210").Return(nil, apperrors.ErrNotFound).Once()
		mockRepo.On("Update", ctx, existing).Return(nil).Once()
		mockPub.On("PublishCustomerUpdated", ctx, mock.Anything).Return(nil).Once()

		updated, err := service.UpdateCustomer(ctx, existing.ID, validProfile())

		require.NoError(t, err)
		assert.Equal(t, "9876543210", updated.Mobile)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Mobile taken by another customer", func(t *testing.T) {
		mockRepo, _, service := setupTest()
		existing := customer.NewCustomer(customer.Profile{Name: "Ravi Kumar", Mobile: "9123456789"})
		other := customer.NewCustomer(customer.Profile{Name: "Other", Mobile: "9876543210"})
		mockRepo.On("FindByID", ctx, existing.ID).Return(existing, nil).Once()
		mockRepo.On("FindByMobile", ctx, "9876543210").Return(other, nil).Once()

		_, err := service.UpdateCustomer(ctx, existing.ID, validProfile())
		assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestCustomerService_ListCustomers(t *testing.T) {
	ctx := context.Background()
	mockRepo, _, service := setupTest()
	rows := []*customer.Customer{{Name: "A"}, {Name: "B"}}
	mockRepo.On("List", ctx, customer.ListFilter{Query: "ravi", Params: pagination.Params{Page: 1, PerPage: 20}}).Return(rows, 2, nil).Once()

	res, err := service.ListCustomers(ctx, customer.ListFilter{Query: " ravi "})

	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	assert.Len(t, res.Customers, 2)
	assert.Equal(t, 20, res.PerPage)
}

func TestCustomerService_DeactivateCustomer(t *testing.T) {
	ctx := context.Background()

	t.Run("Refused while loans are open", func(t *testing.T) {
		mockRepo, _, service := setupTest()
		c := customer.NewCustomer(customer.Profile{Name: "Ravi", Mobile: "9876543210"})
		mockRepo.On("FindByID", ctx, c.ID).Return(c, nil).Once()
		mockRepo.On("CountOpenLoans", ctx, c.ID).Return(1, nil).Once()

		err := service.DeactivateCustomer(ctx, c.ID)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
		assert.ErrorIs(t, err, customer.ErrCannotDeactivateOpenLoan)
		assert.True(t, c.IsActive())
	})

	t.Run("Success", func(t *testing.T) {
		mockRepo, mockPub, service := setupTest()
		c := customer.NewCustomer(customer.Profile{Name: "Ravi", Mobile: "9876543210"})
		mockRepo.On("FindByID", ctx, c.ID).Return(c, nil).Once()
		mockRepo.On("CountOpenLoans", ctx, c.ID).Return(0, nil).Once()
		mockRepo.On("Update", ctx, c).Return(nil).Once()
		mockPub.On("PublishCustomerUpdated", ctx, mock.Anything).Return(nil).Once()

		require.NoError(t, service.DeactivateCustomer(ctx, c.ID))
		assert.Equal(t, customer.StatusInactive, c.Status)
	})

	t.Run("Already inactive is a no-op", func(t *testing.T) {
		mockRepo, _, service := setupTest()
		c := customer.NewCustomer(customer.Profile{Name: "Ravi", Mobile: "9876543210"})
		c.Deactivate()
		mockRepo.On("FindByID", ctx, c.ID).Return(c, nil).Once()

		assert.NoError(t, service.DeactivateCustomer(ctx, c.ID))
		mockRepo.AssertNotCalled(t, "CountOpenLoans", mock.Anything, mock.Anything)
	})
}

func TestCustomerService_ReactivateCustomer(t *testing.T) {
	ctx := context.Background()
	mockRepo, mockPub, service := setupTest()
	c := customer.NewCustomer(customer.Profile{Name: "Ravi", Mobile: "9876543210"})
	c.Deactivate()
	mockRepo.On("FindByID", ctx, c.ID).Return(c, nil).Once()
	mockRepo.On("Update", ctx, c).Return(nil).Once()
	mockPub.On("PublishCustomerUpdated", ctx, mock.Anything).Return(nil).Once()

	require.NoError(t, service.ReactivateCustomer(ctx, c.ID))
	assert.True(t, c.IsActive())
}

func TestCustomerService_AttachDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("Invalid kind", func(t *testing.T) {
		_, _, service := setupTest()
		_, err := service.AttachDocument(ctx, uuid.New(), "passport", "x.pdf")
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("Success", func(t *testing.T) {
		mockRepo, _, service := setupTest()
		c := customer.NewCustomer(customer.Profile{Name: "Ravi", Mobile: "9876543210"})
		mockRepo.On("FindByID", ctx, c.ID).Return(c, nil).Once()
		mockRepo.On("Update", ctx, c).Return(nil).Once()

		updated, err := service.AttachDocument(ctx, c.ID, " PAN ", "abc.pdf")
		require.NoError(t, err)
		assert.Equal(t, "abc.pdf", updated.Documents["pan"])
	})
}
