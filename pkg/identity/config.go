package identity

import (
	"os"
	"strings"
)

// Mode selects where caller identity is read from.
type Mode string

const (
	// ModeHeader trusts X-Remote-User / X-Remote-Group set by a fronting proxy.
	ModeHeader Mode = "header"
	// ModeToken requires an HS256 bearer token; sub is the owner id.
	ModeToken Mode = "token"
)

// Config controls caller identification.
type Config struct {
	Mode       Mode
	AdminGroup string // group allowed to use administrative endpoints
	JWTSecret  string // HMAC key for ModeToken
	JWTIssuer  string // required iss claim when non-empty
}

// DefaultConfig returns header mode with the "greenstamp-admins" admin group.
func DefaultConfig() *Config {
	return &Config{
		Mode:       ModeHeader,
		AdminGroup: "greenstamp-admins",
	}
}

// ConfigFromEnv loads config from environment variables.
// GREENSTAMP_AUTH_MODE, GREENSTAMP_ADMIN_GROUP, GREENSTAMP_JWT_SECRET, GREENSTAMP_JWT_ISSUER
func ConfigFromEnv() *Config {
	cfg := DefaultConfig()

	if v := strings.ToLower(strings.TrimSpace(os.Getenv("GREENSTAMP_AUTH_MODE"))); v != "" {
		cfg.Mode = Mode(v)
	}
	if v := strings.TrimSpace(os.Getenv("GREENSTAMP_ADMIN_GROUP")); v != "" {
		cfg.AdminGroup = v
	}
	cfg.JWTSecret = os.Getenv("GREENSTAMP_JWT_SECRET")
	cfg.JWTIssuer = os.Getenv("GREENSTAMP_JWT_ISSUER")

	return cfg
}
