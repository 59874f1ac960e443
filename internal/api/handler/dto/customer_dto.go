package dto

import (
	"agv-finance/internal/domain/customer"
	"agv-finance/internal/pkg/pagination"
	"time"
)

// CustomerRequest is the create and update payload. Domain rules normalise
// the values after these tags pass.
type CustomerRequest struct {
	Name             string `json:"name" validate:"required,personname"`
	Mobile           string `json:"mobile" validate:"required,mobile"`
	AdditionalMobile string `json:"additional_mobile" validate:"omitempty,mobile"`
	Email            string `json:"email" validate:"omitempty,email"`
	Address          string `json:"address" validate:"max=500"`
	FatherName       string `json:"father_name" validate:"max=100"`
	MotherName       string `json:"mother_name" validate:"max=100"`
	AadhaarNumber    string `json:"aadhar_number" validate:"omitempty,aadhaar"`
	PANNumber        string `json:"pan_number" validate:"omitempty,pan"`
}

func (r CustomerRequest) Profile() customer.Profile {
	return customer.Profile{
		Name:             r.Name,
		Mobile:           r.Mobile,
		AdditionalMobile: r.AdditionalMobile,
		Email:            r.Email,
		Address:          r.Address,
		FatherName:       r.FatherName,
		MotherName:       r.MotherName,
		AadhaarNumber:    r.AadhaarNumber,
		PANNumber:        r.PANNumber,
	}
}

type CustomerResponse struct {
	ID               string            `json:"id"`
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
	Status           string            `json:"status"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

func NewCustomerResponse(c *customer.Customer) CustomerResponse {
	if c == nil {
		return CustomerResponse{}
	}
	return CustomerResponse{
		ID:               c.ID.String(),
		Name:             c.Name,
		Mobile:           c.Mobile,
		AdditionalMobile: c.AdditionalMobile,
		Email:            c.Email,
		Address:          c.Address,
		FatherName:       c.FatherName,
		MotherName:       c.MotherName,
		AadhaarNumber:    c.AadhaarNumber,
		PANNumber:        c.PANNumber,
		Documents:        c.Documents,
		Status:           string(c.Status),
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

type CustomerListResponse struct {
	Customers  []CustomerResponse `json:"customers"`
	Pagination pagination.Meta    `json:"pagination"`
}

func NewCustomerListResponse(res *customer.ListResult) CustomerListResponse {
	out := CustomerListResponse{
		Customers:  make([]CustomerResponse, len(res.Customers)),
		Pagination: pagination.NewMeta(pagination.Params{Page: res.Page, PerPage: res.PerPage}, res.Total),
	}
	for i, c := range res.Customers {
		out.Customers[i] = NewCustomerResponse(c)
	}
	return out
}

type DocumentResponse struct {
	Kind     string           `json:"kind"`
	File     string           `json:"file"`
	Customer CustomerResponse `json:"customer"`
}
