package dto

type TokenCreateRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type TokenPairResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type TokenRefreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

type TokenRefreshResponse struct {
	Access string `json:"access"`
}

type TokenVerifyRequest struct {
	Token string `json:"token" validate:"required"`
}
