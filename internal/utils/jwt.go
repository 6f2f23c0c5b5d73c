package utils // package utils provides helper functions for token creation and hashing

import (
    "crypto/rand"   // secure random number generation
    "crypto/sha256" // SHA-256 hashing for refresh tokens
    "encoding/hex"  // hex encoding functions
    "errors"        // sentinel errors for reset-token validation
    "fmt"           // key derivation for reset tokens
    "time"          // expiration arithmetic

    "github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// AccessToken represents a signed JWT access token along with its expiry.
// The Token field contains the JWT string.  Access tokens are short-lived
// and carried in the Authorization header on protected endpoints.
type AccessToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// RefreshToken represents a long-lived token used to obtain new access
// tokens.  The Raw field is returned to the client; only its SHA-256 hash
// is stored server-side.
type RefreshToken struct {
    Raw string    // raw token string returned to the client
    Exp time.Time // UTC expiration time
}

// NewAccessToken builds and signs an HS256 JWT for a user.  Besides the
// standard sub/exp/iat claims it embeds the user's role, email and display
// name so clients can render the session without an extra round trip.
func NewAccessToken(secret string, userID uint64, role, email, name string, ttlMin int) (AccessToken, error) {
    exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
    claims := jwt.MapClaims{
        "sub":   userID,
        "role":  role,
        "email": email,
        "name":  name,
        "exp":   exp.Unix(),
        "iat":   time.Now().UTC().Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}

// NewRefreshToken returns a cryptographically secure random token (raw) and
// its expiration time.  The ttlDays parameter controls how many days the
// refresh token is valid.
func NewRefreshToken(ttlDays int) (RefreshToken, error) {
    raw, err := randomHex(48) // 48 bytes -> 96 hex chars
    if err != nil {
        return RefreshToken{}, err
    }
    return RefreshToken{
        Raw: raw,
        Exp: time.Now().UTC().Add(time.Duration(ttlDays) * 24 * time.Hour),
    }, nil
}

// HashRefreshRaw returns the SHA-256 hash of the raw refresh token as a hex
// string.  Storing only the hash prevents stolen database rows from being
// replayed as sessions.
func HashRefreshRaw(raw string) string {
    sum := sha256.Sum256([]byte(raw))
    return hex.EncodeToString(sum[:])
}

// ErrResetTokenInvalid is returned for tampered, expired or otherwise
// unusable password-reset tokens.  Callers must not distinguish the cases
// to the client, so a single sentinel is enough.
var ErrResetTokenInvalid = errors.New("invalid or expired reset token")

// resetKey derives the signing key for a user's reset token from the server
// secret and the user's current password hash.  Changing the password
// changes the key, which invalidates every previously issued reset token
// for that account.
func resetKey(secret, passwordHash string) []byte {
    sum := sha256.Sum256([]byte(secret + ":" + passwordHash))
    return sum[:]
}

// NewResetToken issues a short-lived single-purpose HS256 token for a
// password reset.  ttlMin bounds how long the token stays usable.
func NewResetToken(secret string, userID uint64, passwordHash string, ttlMin int) (string, error) {
    now := time.Now().UTC()
    claims := jwt.MapClaims{
        "sub":     userID,
        "purpose": "pwreset",
        "exp":     now.Add(time.Duration(ttlMin) * time.Minute).Unix(),
        "iat":     now.Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    return t.SignedString(resetKey(secret, passwordHash))
}

// ParseResetToken validates a reset token against the user's current
// password hash and returns the subject user ID.  Any failure collapses
// into ErrResetTokenInvalid.
func ParseResetToken(secret, passwordHash, raw string) (uint64, error) {
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
        }
        return resetKey(secret, passwordHash), nil
    })
    if err != nil || !tok.Valid {
        return 0, ErrResetTokenInvalid
    }
    claims, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return 0, ErrResetTokenInvalid
    }
    if p, _ := claims["purpose"].(string); p != "pwreset" {
        return 0, ErrResetTokenInvalid
    }
    sub, ok := claims["sub"].(float64)
    if !ok || sub <= 0 {
        return 0, ErrResetTokenInvalid
    }
    return uint64(sub), nil
}

// randomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
    buf := make([]byte, n)
    if _, err := rand.Read(buf); err != nil {
        return "", err
    }
    return hex.EncodeToString(buf), nil
}
