package dids

type RegisterResponse struct {
	Did string `json:"did"`

	// Token is the bearer token the organization uses on all
	// authenticated routes.
	Token string `json:"token"`
}
