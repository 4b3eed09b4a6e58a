package model

import "time"

// Role names carried in the JWT "role" claim.
const (
    RoleCustomer = "CUSTOMER"
    RoleAdmin    = "ADMIN"
)

// Customer represents an account stored in the `customers` table.
// Administrators live in the same table with Role set to ADMIN.
//
// Fields:
//  ID           – primary key identifier.
//  Name         – display name used in booking views and receipts.
//  Email        – unique login email.
//  PasswordHash – bcrypt hashed password.
//  Role         – CUSTOMER or ADMIN.
type Customer struct {
    ID           uint64    // customers.id
    Name         string    // customers.name
    Email        string    // customers.email
    PasswordHash string    // customers.password_hash
    Role         string    // customers.role
    CreatedAt    time.Time // customers.created_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA-256 hash of the raw token is stored.
type RefreshToken struct {
    ID         uint64     // refresh_tokens.id
    CustomerID uint64     // refresh_tokens.customer_id
    TokenHash  string     // refresh_tokens.token_hash
    ExpiresAt  time.Time  // refresh_tokens.expires_at
    RevokedAt  *time.Time // refresh_tokens.revoked_at (nullable)
    CreatedAt  time.Time  // refresh_tokens.created_at
}
