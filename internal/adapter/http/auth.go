package httpadapter

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"sponsorhub/internal/config/configs"
	"sponsorhub/internal/core/domain"
)

// Claims is the bearer token payload: sub identifies the user, role is
// admin or sponsor, and sponsor_id scopes sponsor users.
type Claims struct {
	jwt.RegisteredClaims
	Role      string `json:"role"`
	SponsorID string `json:"sponsor_id,omitempty"`
}

// Authenticator turns HS256 bearer tokens into a domain.Principal.
type Authenticator struct {
	secret    []byte
	issuer    string
	anonymous bool
}

func NewAuthenticator(cfg configs.Auth) *Authenticator {
	return &Authenticator{secret: []byte(cfg.Secret), issuer: cfg.Issuer, anonymous: cfg.AllowAnonymousAdmin}
}

var errUnauthenticated = errors.New("missing bearer token")

// Principal resolves the caller of r.
func (a *Authenticator) Principal(r *http.Request) (domain.Principal, error) {
	raw := bearerToken(r)
	if raw == "" {
		if a.anonymous {
			return domain.Principal{UserID: "anonymous", Role: domain.RoleAdmin}, nil
		}
		return domain.Principal{}, errUnauthenticated
	}
	if len(a.secret) == 0 {
		return domain.Principal{}, errors.New("token verification is not configured")
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}
	var claims Claims
	if _, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, opts...); err != nil {
		return domain.Principal{}, err
	}

	p := domain.Principal{UserID: claims.Subject, Role: domain.Role(claims.Role), SponsorID: claims.SponsorID}
	switch {
	case p.UserID == "":
		return domain.Principal{}, errors.New("token has no subject")
	case p.Role == domain.RoleAdmin:
	case p.Role == domain.RoleSponsor && p.SponsorID != "":
	default:
		return domain.Principal{}, errors.New("token role is not recognised")
	}
	return p, nil
}

// Middleware attaches the principal to the request context or answers 401.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := a.Principal(r)
		if err != nil {
			w.Header().Set("WWW-Authenticate", `Bearer realm="sponsorhub"`)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"unauthorized","message":"valid bearer token required"}` + "\n"))
			return
		}
		next.ServeHTTP(w, r.WithContext(domain.WithPrincipal(r.Context(), p)))
	})
}

// IssueToken signs a token for p valid for ttl. Used by operators and tests.
func (a *Authenticator) IssueToken(p domain.Principal, ttl time.Duration, now time.Time) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role:      string(p.Role),
		SponsorID: p.SponsorID,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// bearerToken reads the Authorization header, falling back to the
// access_token query parameter for websocket clients.
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return strings.TrimSpace(r.URL.Query().Get("access_token"))
}
