package customer

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewCustomer(t *testing.T) {
	c := NewCustomer(Profile{Name: "Ravi Kumar", Mobile: "9876543210", PANNumber: "ABCDE1234F"})

	assert.NotEqual(t, uuid.Nil, c.ID)
	assert.Equal(t, StatusActive, c.Status)
	assert.True(t, c.IsActive())
	assert.Equal(t, "ABCDE1234F", c.PANNumber)
	assert.NotNil(t, c.Documents)
	assert.Equal(t, c.CreatedAt, c.UpdatedAt)
}

func TestCustomerLifecycle(t *testing.T) {
	c := NewCustomer(Profile{Name: "Ravi Kumar", Mobile: "9876543210"})

	c.Deactivate()
	assert.Equal(t, StatusInactive, c.Status)
	assert.False(t, c.IsActive())

	c.Reactivate()
	assert.True(t, c.IsActive())

	c.Update(Profile{Name: "Ravi K", Mobile: "9123456789", Address: "12 MG Road"})
	assert.Equal(t, "Ravi K", c.Name)
	assert.Equal(t, "9123456789", c.Mobile)
	assert.Equal(t, "12 MG Road", c.Address)
	assert.False(t, c.UpdatedAt.Before(c.CreatedAt))
}

func TestAttachDocumentInitialisesMap(t *testing.T) {
	c := &Customer{}
	c.AttachDocument("pan", "f3a1.pdf")
	assert.Equal(t, map[string]string{"pan": "f3a1.pdf"}, c.Documents)
}
