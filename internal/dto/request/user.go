package request

// UpdateUserRequest only touches the fields that are present.
type UpdateUserRequest struct {
	Username *string `json:"username,omitempty" validate:"omitempty,min=3,max=150"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email,max=254"`
	Phone    *string `json:"phone_number,omitempty" validate:"omitempty,min=10,max=15"`
}

type ChangePasswordRequest struct {
	OldPassword  string `json:"old_password" validate:"required"`
	NewPassword1 string `json:"new_password1" validate:"required,min=8,max=128"`
	NewPassword2 string `json:"new_password2" validate:"required,eqfield=NewPassword1"`
}

type UserListRequest struct {
	PaginatedRequest
	Search   string
	IsActive *bool
}
