package jwt

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v5"

	"github.com/apascualco/campusgate/internal/domain"
)

var ErrSecretNotConfigured = errors.New("jwt secret not configured")

var hmacMethods = []string{
	jwt.SigningMethodHS256.Alg(),
	jwt.SigningMethodHS384.Alg(),
	jwt.SigningMethodHS512.Alg(),
}

// Service validates access tokens issued by the auth service, HMAC signed
// with a secret both services share.
type Service struct {
	secret []byte
	parser *jwt.Parser
}

// NewService checks the iss claim only when issuer is set.
func NewService(secret, issuer string) *Service {
	opts := []jwt.ParserOption{jwt.WithValidMethods(hmacMethods)}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	return &Service{secret: []byte(secret), parser: jwt.NewParser(opts...)}
}

func (s *Service) Enabled() bool {
	return len(s.secret) > 0
}

// accessClaims shadows the registered sub claim: the auth service writes the
// user id as a number, older tokens as a numeric string.
type accessClaims struct {
	Subject userID `json:"sub"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	jwt.RegisteredClaims
}

type userID int64

// UnmarshalJSON keeps integers and integer strings. Anything else decodes to
// zero, which is then rejected as an invalid subject.
func (id *userID) UnmarshalJSON(b []byte) error {
	raw := string(bytes.Trim(b, `"`))
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		*id = userID(n)
		return nil
	}
	var f float64
	if json.Unmarshal(b, &f) == nil && f == float64(int64(f)) {
		*id = userID(f)
		return nil
	}
	*id = 0
	return nil
}

func (s *Service) ValidateAccessToken(tokenString string) (*domain.UserClaims, error) {
	if !s.Enabled() {
		return nil, ErrSecretNotConfigured
	}

	var claims accessClaims
	_, err := s.parser.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, tokenError(err, claims.Issuer)
	}

	return domain.NewUserClaims(int64(claims.Subject), claims.Email, claims.Role)
}

func tokenError(err error, issuer string) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return domain.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return domain.ErrTokenNotYetValid
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return domain.ErrTokenInvalidSignature
	case errors.Is(err, jwt.ErrTokenInvalidIssuer), errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return fmt.Errorf("%w: %q", domain.ErrTokenIssuerNotAllowed, issuer)
	default:
		return fmt.Errorf("%w: %v", domain.ErrTokenMalformed, err)
	}
}
