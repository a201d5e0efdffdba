// Package dto defines Data Transfer Objects for authentication.
package dto

// Operator roles carried in bearer tokens.
const (
	RoleViewer = "viewer"
	RoleAdmin  = "admin"
)

// Claims are the operator claims carried by bearer tokens.
type Claims struct {
	Operator string   `json:"operator"`
	Roles    []string `json:"roles"`
}

// HasRole reports whether the claims carry role. Admins hold every role.
func (c Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role || r == RoleAdmin {
			return true
		}
	}
	return false
}

// TokenResponse is an issued operator token.
//
// @Description Issued operator bearer token
type TokenResponse struct {
	Token     string `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	ExpiresIn int64  `json:"expires_in" example:"3600"`
} // @name TokenResponse
