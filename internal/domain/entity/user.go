package entity

import "time"

// Role es el rol de un usuario dentro de la empresa. Tipo cerrado: las
// decisiones de autorización se toman con conjuntos de roles, nunca
// comparando strings sueltos.
type Role string

const (
	RoleOwner      Role = "owner"
	RoleManager    Role = "manager"
	RoleAccountant Role = "accountant"
	RoleClerk      Role = "clerk"
)

// ParseRole valida un rol persistido o recibido por API.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleOwner, RoleManager, RoleAccountant, RoleClerk:
		return Role(s), true
	}
	return "", false
}

// RoleSet es un conjunto de roles permitidos para una operación.
type RoleSet map[Role]struct{}

// NewRoleSet construye el conjunto a partir de los roles dados.
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

// Contains indica si el rol pertenece al conjunto.
func (s RoleSet) Contains(r Role) bool {
	_, ok := s[r]
	return ok
}

// ContainsAny indica si algún rol de other pertenece al conjunto.
func (s RoleSet) ContainsAny(other RoleSet) bool {
	for r := range other {
		if s.Contains(r) {
			return true
		}
	}
	return false
}

// User representa un usuario del sistema (pertenece a una Company).
type User struct {
	ID           string
	CompanyID    string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Role         Role
	Status       string // active, inactive, suspended
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
