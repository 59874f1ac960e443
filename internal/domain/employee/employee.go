package employee

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

var roleRank = map[Role]int{
	RoleEmployee: 1,
	RoleManager:  2,
	RoleAdmin:    3,
}

func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r grants everything min grants.
func (r Role) AtLeast(min Role) bool {
	return roleRank[r] >= roleRank[min] && r.Valid()
}

type Employee struct {
	ID        uuid.UUID  `json:"id"`
	Subject   string     `json:"auth0_user_id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      Role       `json:"role"`
	Phone     string     `json:"phone,omitempty"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

// Identity is the subset of identity provider claims used to sync employees.
type Identity struct {
	Subject string `json:"sub"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture,omitempty"`
}

// DisplayName falls back to the e-mail local part when the provider sends no name.
func (i Identity) DisplayName() string {
	if n := strings.TrimSpace(i.Name); n != "" {
		return n
	}
	local, _, _ := strings.Cut(i.Email, "@")
	return local
}

func NewEmployee(id Identity, now time.Time) *Employee {
	return &Employee{
		ID:        uuid.New(),
		Subject:   id.Subject,
		Name:      id.DisplayName(),
		Email:     strings.ToLower(strings.TrimSpace(id.Email)),
		Role:      RoleEmployee,
		IsActive:  true,
		CreatedAt: now,
		LastLogin: &now,
	}
}
