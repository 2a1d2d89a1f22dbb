package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pataspro/petshop-api/internal/application/dto"
	"github.com/pataspro/petshop-api/internal/domain"
	"github.com/pataspro/petshop-api/internal/domain/entity"
	"github.com/pataspro/petshop-api/internal/domain/repository"
	"github.com/pataspro/petshop-api/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación: registro y login.
type AuthUseCase struct {
	userRepo    repository.UserRepository
	companyRepo repository.CompanyRepository
	jwtCfg      JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, companyRepo repository.CompanyRepository, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, companyRepo: companyRepo, jwtCfg: jwtCfg}
}

// RegisterUser crea un usuario: hashea password con bcrypt y persiste.
// Devuelve ErrEmailAlreadyExists si el email ya existe en esa company.
func (uc *AuthUseCase) RegisterUser(in dto.RegisterRequest) (*dto.UserResponse, error) {
	existing, _ := uc.userRepo.GetByEmailAndCompany(in.Email, in.CompanyID)
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	company, err := uc.companyRepo.GetByID(in.CompanyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound // empresa no existe
	}
	role := entity.RoleClerk
	if in.Role != "" {
		parsed, ok := entity.ParseRole(in.Role)
		if !ok {
			return nil, domain.ErrInvalidInput
		}
		role = parsed
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	name := in.Name
	if name == "" {
		name = in.Email
	}
	user := &entity.User{
		ID:           uuid.New().String(),
		CompanyID:    in.CompanyID,
		Email:        in.Email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         role,
		Status:       "active",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(user); err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// Login verifica email/password, genera JWT y retorna token + usuario.
func (uc *AuthUseCase) Login(in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.GetByEmailAndCompany(in.Email, in.CompanyID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if user.Status != "active" {
		return nil, domain.ErrForbidden
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.CompanyID, string(user.Role), uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token: token,
		User:  *toUserResponse(user),
	}, nil
}

func toUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        u.ID,
		CompanyID: u.CompanyID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      string(u.Role),
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
	}
}

// RoleResolver resuelve los roles efectivos de un usuario contra el almacén
// de usuarios. Es la implementación del puerto de autorización de los casos
// de uso fiscales.
type RoleResolver struct {
	userRepo repository.UserRepository
}

// NewRoleResolver construye el resolver.
func NewRoleResolver(userRepo repository.UserRepository) *RoleResolver {
	return &RoleResolver{userRepo: userRepo}
}

// ResolveRoles devuelve el conjunto de roles del usuario. Un usuario
// inexistente o inactivo resuelve a conjunto vacío, no a error: la decisión
// de rechazar corresponde al caso de uso.
func (r *RoleResolver) ResolveRoles(ctx context.Context, userID string) (entity.RoleSet, error) {
	user, err := r.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Status != "active" {
		return entity.NewRoleSet(), nil
	}
	return entity.NewRoleSet(user.Role), nil
}
