package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/tellerdesk/internal/teller/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, and
// later a shared backend for multi-instance deployments) implement this. It
// exposes sub-repositories to keep concerns tidy and testable.
type Store interface {
	Users() Users
	RefreshTokens() RefreshTokens
	RevokedTokens() RevokedTokens
	Sessions() Sessions
	Accounts() Accounts
	Transactions() Transactions
	Offers() Offers
	ServiceRequests() ServiceRequests
	Branches() Branches
	AuditEvents() AuditEvents

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed. This is the
	// recommended way to handle multi-step operations that must be atomic
	// (e.g. refresh rotation, transfers).
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByUsername looks a user up within a tenant; used during login.
	GetUserByUsername(ctx context.Context, tenantID, username string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateUserRole changes a user's role.
	UpdateUserRole(ctx context.Context, userID string, role domain.Role) error

	// UpdateMFASecret sets the TOTP secret for a user.
	UpdateMFASecret(ctx context.Context, userID, secret string) error

	// EnableMFA marks TOTP as enabled (sets mfa_enabled timestamp).
	EnableMFA(ctx context.Context, userID string) error

	// DisableMFA clears mfa_enabled and mfa_secret.
	DisableMFA(ctx context.Context, userID string) error

	// IsEmpty returns true if there are no users.
	IsEmpty(ctx context.Context) (bool, error)
}

type RefreshTokens interface {
	// CreateRefreshToken stores a new refresh token record.
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// GetRefreshTokenByHash returns the record by the fingerprint of the
	// opaque value.
	GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error)

	// DeleteRefreshToken removes the record; rotation deletes the consumed
	// mapping so it can never validate again.
	DeleteRefreshToken(ctx context.Context, hash string) error

	// DeleteExpiredRefreshTokens is housekeeping.
	DeleteExpiredRefreshTokens(ctx context.Context) error
}

type RevokedTokens interface {
	// RevokeJTI adds a jti to the revocation set. Idempotent.
	RevokeJTI(ctx context.Context, t domain.RevokedToken) error

	// IsRevoked reports whether a jti is in the revocation set.
	IsRevoked(ctx context.Context, jti string) (bool, error)

	// DeleteExpiredRevocations drops entries whose tokens can no longer
	// verify anyway.
	DeleteExpiredRevocations(ctx context.Context) error
}

type Sessions interface {
	// GetSession returns the session and its full message history.
	GetSession(ctx context.Context, tenantID, userID, threadID string) (domain.Session, error)

	// CreateSession inserts a new session record with the sentinel handler.
	CreateSession(ctx context.Context, s domain.Session) error

	// SetActiveHandler updates the routing state for a thread.
	SetActiveHandler(ctx context.Context, tenantID, userID, threadID, handler string) error

	// AppendMessages appends to the session's message list.
	AppendMessages(ctx context.Context, tenantID, userID, threadID string, msgs []domain.Message) error
}

type Accounts interface {
	CreateAccount(ctx context.Context, a domain.Account) error
	GetAccountByID(ctx context.Context, id string) (domain.Account, error)

	// GetAccountByNumber looks up an account by its customer-facing number.
	GetAccountByNumber(ctx context.Context, tenantID, number string) (domain.Account, error)

	// ListAccountsByUser returns a user's accounts ordered by creation.
	ListAccountsByUser(ctx context.Context, tenantID, userID string) ([]domain.Account, error)

	// AdjustBalance applies a delta (cents) to the account balance.
	AdjustBalance(ctx context.Context, accountID string, deltaCents int64) error
}

type Transactions interface {
	CreateTransaction(ctx context.Context, t domain.Transaction) error

	// ListTransactions returns entries for an account within [from, to],
	// newest first.
	ListTransactions(ctx context.Context, accountID string, from, to time.Time) ([]domain.Transaction, error)
}

type Offers interface {
	CreateOffer(ctx context.Context, o domain.Offer) error

	// SearchOffers matches name/category/description against a keyword.
	SearchOffers(ctx context.Context, tenantID, keyword string) ([]domain.Offer, error)
}

type ServiceRequests interface {
	CreateServiceRequest(ctx context.Context, sr domain.ServiceRequest) error
	ListServiceRequestsByUser(ctx context.Context, tenantID, userID string) ([]domain.ServiceRequest, error)
}

type Branches interface {
	// ListBranches returns branches, optionally filtered by city.
	ListBranches(ctx context.Context, city string) ([]domain.Branch, error)
}

type AuditEvents interface {
	CreateAuditEvent(ctx context.Context, e domain.AuditEvent) error
	ListRecentAuditEvents(ctx context.Context, limit int) ([]domain.AuditEvent, error)
}
