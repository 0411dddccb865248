package configs

// Auth configures bearer token verification. Tokens are HS256 JWTs signed
// with Secret.
type Auth struct {
	Secret string `env:"SECRET"`
	// Issuer, when set, must match the iss claim.
	Issuer string `env:"ISSUER" envDefault:"sponsorhub"`
	// AllowAnonymousAdmin treats requests without a token as admin. Local
	// development only.
	AllowAnonymousAdmin bool `env:"ALLOW_ANONYMOUS_ADMIN" envDefault:"false"`
}
