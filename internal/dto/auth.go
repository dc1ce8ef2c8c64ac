package dto

// RegisterRequest is the payload for self-registration.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone,omitempty" binding:"omitempty,max=20"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest is the payload for obtaining an access token.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries a signed access token for subsequent requests.
type LoginResponse struct {
	UserID      string `json:"userID"`
	Name        string `json:"name"`
	AccessToken string `json:"accessToken"`
}
