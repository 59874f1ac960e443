package customer

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Customer is a borrower profile. Mobile is the natural key; PAN and
// Aadhaar are optional identity documents.
type Customer struct {
	ID               uuid.UUID         `json:"id"`
	Name             string            `json:"name"`
	Mobile           string            `json:"mobile"`
	AdditionalMobile string            `json:"additional_mobile,omitempty"`
	Email            string            `json:"email,omitempty"`
	Address          string            `json:"address,omitempty"`
	FatherName       string            `json:"father_name,omitempty"`
	MotherName       string            `json:"mother_name,omitempty"`
	AadhaarNumber    string            `json:"aadhar_number,omitempty"`
	PANNumber        string            `json:"pan_number,omitempty"`
	Documents        map[string]string `json:"documents,omitempty"`
	Status           Status            `json:"status"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// Profile carries the editable fields of a customer, already validated.
type Profile struct {
	Name             string
	Mobile           string
	AdditionalMobile string
	Email            string
	Address          string
	FatherName       string
	MotherName       string
	AadhaarNumber    string
	PANNumber        string
}

func NewCustomer(p Profile) *Customer {
	now := time.Now()
	c := &Customer{
		ID:        uuid.New(),
		Status:    StatusActive,
		Documents: map[string]string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	c.apply(p)
	return c
}

func (c *Customer) apply(p Profile) {
	c.Name = p.Name
	c.Mobile = p.Mobile
	c.AdditionalMobile = p.AdditionalMobile
	c.Email = p.Email
	c.Address = p.Address
	c.FatherName = p.FatherName
	c.MotherName = p.MotherName
	c.AadhaarNumber = p.AadhaarNumber
	c.PANNumber = p.PANNumber
}

func (c *Customer) Update(p Profile) {
	c.apply(p)
	c.UpdatedAt = time.Now()
}

func (c *Customer) IsActive() bool {
	return c.Status == StatusActive
}

func (c *Customer) Deactivate() {
	if c.Status != StatusInactive {
		c.Status = StatusInactive
		c.UpdatedAt = time.Now()
	}
}

func (c *Customer) Reactivate() {
	if c.Status != StatusActive {
		c.Status = StatusActive
		c.UpdatedAt = time.Now()
	}
}

// AttachDocument records the stored file name of an uploaded identity document.
func (c *Customer) AttachDocument(kind, storedName string) {
	if c.Documents == nil {
		c.Documents = map[string]string{}
	}
	c.Documents[kind] = storedName
	c.UpdatedAt = time.Now()
}
