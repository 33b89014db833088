package tenant

import (
	"context"
)

// Store is the slice of the relational tenant store the orchestrators
// need. All mutating calls take the transaction id returned by Begin so
// a failed run can be rolled back as one unit.
type Store interface {
	Begin(ctx context.Context) (string, error)
	Commit(ctx context.Context, txID string) error
	Rollback(ctx context.Context, txID string) error

	// InsertTenant allocates the tenant id with an insert-returning
	// inside the transaction. Two concurrent onboarding runs must never
	// observe the same id.
	InsertTenant(ctx context.Context, txID, name, provider, scope string) (int64, error)
	InsertProviderTenant(ctx context.Context, txID, provider string, id int64, defaultTeam string, minimumMinutes int) error
	InsertCategoryPermissions(ctx context.Context, txID, provider string, id int64, categories []string) error
	InsertIdentityLinkage(ctx context.Context, txID string, id int64, dbID int, host, cognitoURL, clientID, clientSecret string) error

	// DeleteTenant removes the shared row and reports the id and
	// provider it carried. A missing name yields ErrNotFound.
	DeleteTenant(ctx context.Context, txID, name string) (int64, string, error)
	DeleteProviderTenant(ctx context.Context, txID, provider string, id int64) error
	DeleteIdentityLinkage(ctx context.Context, txID string, id int64) error
}

// ObjectStore is the tenant asset storage surface.
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, body []byte) error
	UploadDirectory(ctx context.Context, dir, prefix string) error
	DeletePrefix(ctx context.Context, prefix string) (int, error)
}

// IdentityProvider resolves the user pool linkage for a tenant and can
// seed its first admin user.
type IdentityProvider interface {
	ResolveAppClient(ctx context.Context, userPoolID string) (domain, clientID, clientSecret string, err error)
	CreateAdminUser(ctx context.Context, userPoolID, username, email string) error
}

// FileFetcher downloads an authenticated file reference from the chat
// workspace, e.g. the uploaded tenant logo.
type FileFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Dispatcher starts a named CI workflow with the given inputs.
type Dispatcher interface {
	Dispatch(ctx context.Context, workflow string, inputs map[string]interface{}) error
}

// DashboardUpdater maintains the tenant variable on the monitoring
// dashboard. Failures here are advisory and never abort a run.
type DashboardUpdater interface {
	SetTenantVariable(ctx context.Context, label, value string) error
	RemoveTenantVariable(ctx context.Context, label string) error
}

// Reporter posts the orchestration milestone messages. Implementations
// must swallow their own failures.
type Reporter interface {
	OnboardStarted(ctx context.Context, name string)
	OnboardSucceeded(ctx context.Context, name string, id int64, url string)
	OnboardFailed(ctx context.Context, name string, cause error)
	OffboardStarted(ctx context.Context, name string)
	OffboardSucceeded(ctx context.Context, name string, id int64)
	OffboardFailed(ctx context.Context, name string, cause error)
}
