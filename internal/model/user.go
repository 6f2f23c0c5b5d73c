package model

import "time"

// Role is the coarse-grained authorization category attached to a user.
// Roles form a closed set; free-form strings are rejected at the boundary
// by ParseRole so a typo can never grant or deny access silently.
type Role string

const (
    RoleAdmin Role = "ADMIN" // administrator, full access
    RoleRH    Role = "RH"    // human resources staff
    RoleSG    Role = "SG"    // secretary general staff
)

// ParseRole validates a raw role string against the closed set.  The second
// return value reports whether the input named a known role.
func ParseRole(s string) (Role, bool) {
    switch Role(s) {
    case RoleAdmin, RoleRH, RoleSG:
        return Role(s), true
    }
    return "", false
}

// User represents an application user record as stored in the `users`
// table.  The email address is the identity key; there is no username.
// TempPassword holds the system-generated credential issued at account
// creation and is cleared once the user sets a real password.  Accounts
// are never hard-deleted; IsActive gates login instead.
//
// Fields:
//  ID           - primary key identifier of the user.
//  Email        - unique email address (identity key).
//  FirstName    - given name.
//  LastName     - family name.
//  PasswordHash - bcrypt hashed password.
//  Role         - closed enumeration (ADMIN, RH, SG).
//  TempPassword - temporary password, nil once replaced.
//  IsActive     - whether the account may log in.
//  CreatedAt    - timestamp of creation.
//  UpdatedAt    - timestamp of last update.
type User struct {
    ID           uint64    // users.id
    Email        string    // users.email
    FirstName    string    // users.first_name
    LastName     string    // users.last_name
    PasswordHash string    // users.password_hash
    Role         Role      // users.role
    TempPassword *string   // users.temp_password (nullable)
    IsActive     bool      // users.is_active
    CreatedAt    time.Time // users.created_at
    UpdatedAt    time.Time // users.updated_at
}

// FullName returns the display name used as document issuer and in mail.
func (u User) FullName() string {
    return u.FirstName + " " + u.LastName
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user and carries expiry and revocation
// metadata.  The plain token is never stored; only its SHA-256 hash.
type RefreshToken struct {
    ID        uint64     // refresh_tokens.id
    UserID    uint64     // refresh_tokens.user_id
    TokenHash string     // refresh_tokens.token_hash
    ExpiresAt time.Time  // refresh_tokens.expires_at
    RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
    CreatedAt time.Time  // refresh_tokens.created_at
}
