package auth

import (
	"strings"
)

// Role is the authorization key derived from a user's type label
type Role string

const (
	RoleClient   Role = "cliente"
	RoleSupplier Role = "fornecedor"
	RoleAdmin    Role = "admin"
	RoleManager  Role = "gestor"
	RoleNone     Role = ""
)

// ParseRole normalises a stored user type label. Unknown labels are kept
// lowercased so they never match a tier.
func ParseRole(label string) Role {
	return Role(strings.ToLower(strings.TrimSpace(label)))
}

// Principal is the authenticated caller attached to each request
type Principal struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
}

func (p *Principal) IsClient() bool {
	return p != nil && p.Role == RoleClient
}

func (p *Principal) IsSupplier() bool {
	return p != nil && p.Role == RoleSupplier
}

// IsStaff reports admin or manager
func (p *Principal) IsStaff() bool {
	return p != nil && (p.Role == RoleAdmin || p.Role == RoleManager)
}

func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// Tier is an access level a route requires
type Tier int

const (
	TierAuthenticated Tier = iota
	TierClient
	TierSupplier
	TierStaff
	TierAdmin
)

// Allows reports whether the principal may access the tier. A nil
// principal is never allowed.
func (p *Principal) Allows(t Tier) bool {
	if p == nil {
		return false
	}
	switch t {
	case TierAuthenticated:
		return true
	case TierClient:
		return p.IsClient()
	case TierSupplier:
		return p.IsSupplier()
	case TierStaff:
		return p.IsStaff()
	case TierAdmin:
		return p.IsAdmin()
	}
	return false
}

// DenialMessage is shown to callers who fail a tier check
func (t Tier) DenialMessage() string {
	switch t {
	case TierClient:
		return "Acesso reservado a clientes."
	case TierSupplier:
		return "Acesso reservado a fornecedores."
	case TierStaff:
		return "Acesso reservado a administradores e gestores."
	case TierAdmin:
		return "Acesso reservado a administradores."
	}
	return "Sessão inválida. Faça login."
}
