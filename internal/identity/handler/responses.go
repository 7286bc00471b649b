package handler

// SignupResponse is the body of a successful POST /signup.
type SignupResponse struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
	Role    string `json:"role"`
}

// LoginResponse is the body of a successful POST /login.
type LoginResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}
