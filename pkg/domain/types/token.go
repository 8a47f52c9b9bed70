package types

// GitHubToken is a bearer credential for GitHub. Values of this type are
// redacted by the logger.
type GitHubToken string

// String returns the raw token value
func (x GitHubToken) String() string { return string(x) }

// IsEmpty returns true if no token is configured
func (x GitHubToken) IsEmpty() bool { return x == "" }

// BearerHeader returns the Authorization header value for the token
func (x GitHubToken) BearerHeader() string { return "Bearer " + string(x) }
