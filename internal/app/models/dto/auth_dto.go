package dto

// LoginRequest carries portal credentials. The password never touches the
// local database; it is forwarded to the portal digest and discarded.
type LoginRequest struct {
	ID       string `json:"id" binding:"required" example:"201701234"`
	Password string `json:"password" binding:"required"`
}

// SignupRequest uses the same credential pair; the portal session is also
// used to fetch the profile attributes recorded at signup.
type SignupRequest struct {
	ID       string `json:"id" binding:"required" example:"201701234"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is returned by both login and signup.
// SignUpRequired is set when the portal credentials check out but no local
// account exists yet.
type LoginResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	SignUpRequired bool   `json:"signUpRequired,omitempty"`
	Token          string `json:"token,omitempty"`
	Name           string `json:"name,omitempty"`
}
