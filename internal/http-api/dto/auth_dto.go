package dto

type RegisterDTO struct {
	Email    string `json:"email" binding:"required,email"`
	Nick     string `json:"nick" binding:"required,max=255"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginDTO struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
