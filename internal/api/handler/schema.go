package handler

import "github.com/sandwichproject/admin-api/internal/core/domain"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Auth ---

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// --- Projects ---

type createProjectRequest struct {
	Title       string `json:"title"       validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Status      string `json:"status"      validate:"omitempty,oneof=planning active completed on-hold"`
	Priority    string `json:"priority"    validate:"omitempty,oneof=low medium high"`
	DueDate     string `json:"due_date"    validate:"omitempty,datetime=2006-01-02"`
	AssignedTo  *int64 `json:"assigned_to" validate:"omitempty,gt=0"`
	Category    string `json:"category"    validate:"max=100"`
}

type updateProjectRequest struct {
	Title       *string `json:"title"       validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Status      *string `json:"status"      validate:"omitempty,oneof=planning active completed on-hold"`
	Priority    *string `json:"priority"    validate:"omitempty,oneof=low medium high"`
	DueDate     *string `json:"due_date"    validate:"omitempty,datetime=2006-01-02"`
	AssignedTo  *int64  `json:"assigned_to" validate:"omitempty,gt=0"`
	Category    *string `json:"category"    validate:"omitempty,max=100"`
}

// --- Users & roles ---

type createUserRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Name     string `json:"name"     validate:"required,max=120"`
	Role     string `json:"role"     validate:"required,role"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type changeRoleRequest struct {
	Role string `json:"role" validate:"required,role"`
}

type roleResponse struct {
	Role        domain.Role         `json:"role"`
	DisplayName string              `json:"display_name"`
	Permissions []domain.Permission `json:"permissions"`
}
