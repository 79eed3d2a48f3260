package identity

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/greenstamp/greenstamp-api/pkg/carbon"
)

// Header names read in ModeHeader.
const (
	HeaderUser  = "X-Remote-User"
	HeaderGroup = "X-Remote-Group"
)

// Resolver extracts the caller from a request. A request without
// credentials yields the zero Identity and a nil error; malformed or
// invalid credentials yield an error wrapping carbon.ErrUnauthenticated.
type Resolver interface {
	Resolve(r *http.Request) (Identity, error)
}

// HeaderResolver reads identity from proxy-set headers. X-Remote-Group is
// comma-separated.
type HeaderResolver struct{}

func (HeaderResolver) Resolve(r *http.Request) (Identity, error) {
	user := strings.TrimSpace(r.Header.Get(HeaderUser))
	if user == "" {
		return Identity{}, nil
	}
	return Identity{OwnerID: user, Groups: splitGroups(r.Header.Get(HeaderGroup))}, nil
}

func splitGroups(header string) []string {
	var groups []string
	for _, g := range strings.Split(header, ",") {
		if g = strings.TrimSpace(g); g != "" {
			groups = append(groups, g)
		}
	}
	return groups
}

// Claims are the token claims understood by TokenResolver.
type Claims struct {
	Groups []string `json:"groups,omitempty"`
	jwt.RegisteredClaims
}

// TokenResolver validates HS256 bearer tokens.
type TokenResolver struct {
	secret []byte
	parser *jwt.Parser
}

// NewTokenResolver creates a TokenResolver. An empty issuer disables the
// iss check.
func NewTokenResolver(secret, issuer string) (*TokenResolver, error) {
	if secret == "" {
		return nil, errors.New("token mode requires a JWT secret")
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	return &TokenResolver{secret: []byte(secret), parser: jwt.NewParser(opts...)}, nil
}

func (t *TokenResolver) Resolve(r *http.Request) (Identity, error) {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if auth == "" {
		return Identity{}, nil
	}
	raw, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok {
		return Identity{}, fmt.Errorf("%w: expected bearer token", carbon.ErrUnauthenticated)
	}

	var claims Claims
	_, err := t.parser.ParseWithClaims(strings.TrimSpace(raw), &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	})
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", carbon.ErrUnauthenticated, err)
	}
	if claims.Subject == "" {
		return Identity{}, fmt.Errorf("%w: token has no subject", carbon.ErrUnauthenticated)
	}
	return Identity{OwnerID: claims.Subject, Groups: claims.Groups}, nil
}

// NewResolver returns the Resolver for cfg.Mode.
func NewResolver(cfg *Config) (Resolver, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	switch cfg.Mode {
	case ModeHeader, "":
		return HeaderResolver{}, nil
	case ModeToken:
		return NewTokenResolver(cfg.JWTSecret, cfg.JWTIssuer)
	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.Mode)
	}
}
