package request

type RegisterRequest struct {
	Username  string  `json:"username" validate:"required,min=3,max=150"`
	Email     string  `json:"email" validate:"required,email,max=254"`
	Phone     *string `json:"phone_number,omitempty" validate:"omitempty,min=10,max=15"`
	Password  string  `json:"password" validate:"required,min=8,max=128"`
	Password2 string  `json:"password2" validate:"required,eqfield=Password"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// VerifyCodeRequest completes a register or login challenge.
type VerifyCodeRequest struct {
	ChallengeID string `json:"challenge_id" validate:"required,uuid"`
	Email       string `json:"email" validate:"required,email"`
	Code        string `json:"code" validate:"required,min=4,max=10,numeric"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required,uuid"`
}

type VerifyTokenRequest struct {
	Token string `json:"token" validate:"required"`
}
