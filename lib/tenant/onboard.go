package tenant

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// OnboarderConfig carries the deployment constants an onboarding run
// needs beyond the submission itself.
type OnboarderConfig struct {
	// UserPoolID is the identity pool tenants authenticate against.
	UserPoolID string
	// SeedDir is the local directory holding per-provider seed assets
	// (deployment tree, weights.csv, v2/config.json). Empty disables
	// the asset steps.
	SeedDir string
	// Workflow is the CI workflow file dispatched to provision the
	// tenant infrastructure.
	Workflow string
	// AccessDomain is the apex domain tenants are served under.
	AccessDomain string
	// CognitoRegion is the region used to build the hosted auth URL.
	CognitoRegion string
}

// Onboarder sequences the external calls that turn a validated
// submission into a running tenant. Every mutating database call runs
// inside one transaction; any failure before commit rolls the whole
// run back.
type Onboarder struct {
	Store     Store
	Objects   ObjectStore
	Identity  IdentityProvider
	Files     FileFetcher
	CI        Dispatcher
	Dashboard DashboardUpdater
	Reporter  Reporter
	Catalog   *Catalog
	Config    OnboarderConfig
}

// Onboard runs the full onboarding sequence for one submission. The
// caller has already checked the shared-secret token.
func (o *Onboarder) Onboard(ctx context.Context, sub Submission) (Tenant, error) {
	name := strings.ToLower(strings.TrimSpace(sub.Subdomain))

	pc, sc, err := o.Catalog.Lookup(sub.Provider, sub.Scope)
	if err != nil {
		o.Reporter.OnboardFailed(ctx, name, err)
		return Tenant{}, err
	}

	o.Reporter.OnboardStarted(ctx, name)

	txID, err := o.Store.Begin(ctx)
	if err != nil {
		err = fmt.Errorf("beginning transaction: %w", err)
		o.Reporter.OnboardFailed(ctx, name, err)
		return Tenant{}, err
	}

	t, err := o.provision(ctx, txID, name, sub, pc, sc)
	if err != nil {
		if rbErr := o.Store.Rollback(ctx, txID); rbErr != nil {
			log.Printf("rollback after onboarding failure: %s", rbErr.Error())
		}
		o.Reporter.OnboardFailed(ctx, name, err)
		return Tenant{}, err
	}

	if err := o.Store.Commit(ctx, txID); err != nil {
		err = fmt.Errorf("committing transaction: %w", err)
		if rbErr := o.Store.Rollback(ctx, txID); rbErr != nil {
			log.Printf("rollback after commit failure: %s", rbErr.Error())
		}
		o.Reporter.OnboardFailed(ctx, name, err)
		return Tenant{}, err
	}

	if o.Dashboard != nil {
		if err := o.Dashboard.SetTenantVariable(ctx, name, strconv.FormatInt(t.ID, 10)); err != nil {
			log.Printf("dashboard tenant variable update failed for %s: %s", name, err.Error())
		}
	}

	url := fmt.Sprintf("https://%s.%s", name, o.Config.AccessDomain)
	o.Reporter.OnboardSucceeded(ctx, name, t.ID, url)
	return t, nil
}

// provision performs every step between Begin and Commit. Returning an
// error aborts the transaction.
func (o *Onboarder) provision(ctx context.Context, txID, name string, sub Submission, pc ProviderConfig, sc ScopeConfig) (Tenant, error) {
	id, err := o.Store.InsertTenant(ctx, txID, name, sub.Provider, sub.Scope)
	if err != nil {
		return Tenant{}, fmt.Errorf("allocating tenant id: %w", err)
	}
	log.Printf("allocated tenant id %d for %s", id, name)

	defaultTeam := sc.DefaultTeam
	if sub.DefaultTeam != "" {
		defaultTeam = normalizeOverride(sub.DefaultTeam)
	}
	if err := o.Store.InsertProviderTenant(ctx, txID, sub.Provider, id, defaultTeam, pc.MinimumMinutes); err != nil {
		return Tenant{}, fmt.Errorf("inserting provider tenant row: %w", err)
	}
	if err := o.Store.InsertCategoryPermissions(ctx, txID, sub.Provider, id, sc.Categories); err != nil {
		return Tenant{}, fmt.Errorf("inserting category permissions: %w", err)
	}

	domain, clientID, clientSecret, err := o.Identity.ResolveAppClient(ctx, o.Config.UserPoolID)
	if err != nil {
		return Tenant{}, fmt.Errorf("resolving user pool client: %w", err)
	}
	cognitoURL := fmt.Sprintf("https://%s.auth.%s.amazoncognito.com", domain, o.Config.CognitoRegion)
	if err := o.Store.InsertIdentityLinkage(ctx, txID, id, sc.DBID, name, cognitoURL, clientID, clientSecret); err != nil {
		return Tenant{}, fmt.Errorf("inserting identity linkage: %w", err)
	}

	logo, err := o.Files.Fetch(ctx, sub.LogoURL)
	if err != nil {
		return Tenant{}, fmt.Errorf("fetching logo: %w", err)
	}
	logoKey := fmt.Sprintf("deployments/%d/assets/club_image.png", id)
	if err := o.Objects.Upload(ctx, logoKey, "image/png", logo); err != nil {
		return Tenant{}, fmt.Errorf("uploading logo: %w", err)
	}

	if err := o.uploadSeedAssets(ctx, id, sub); err != nil {
		return Tenant{}, err
	}

	if sub.AdminEmail != "" {
		if err := o.Identity.CreateAdminUser(ctx, o.Config.UserPoolID, name+"-admin", sub.AdminEmail); err != nil {
			return Tenant{}, fmt.Errorf("creating admin user: %w", err)
		}
	}

	inputs := map[string]interface{}{
		"clientName": name,
		"clientId":   strconv.FormatInt(id, 10),
		"clientDbId": strconv.Itoa(sc.DBID),
	}
	if err := o.CI.Dispatch(ctx, o.Config.Workflow, inputs); err != nil {
		return Tenant{}, fmt.Errorf("dispatching provisioning workflow: %w", err)
	}

	return Tenant{ID: id, Name: name, Provider: sub.Provider, Scope: sub.Scope}, nil
}

// uploadSeedAssets copies the provider seed tree under the tenant
// prefix, writes the weights file, and uploads a mutated config
// document when the submission overrides any default.
func (o *Onboarder) uploadSeedAssets(ctx context.Context, id int64, sub Submission) error {
	if o.Config.SeedDir == "" {
		return nil
	}
	seed := filepath.Join(o.Config.SeedDir, sub.Provider)

	if err := o.Objects.UploadDirectory(ctx, seed, fmt.Sprintf("deployments/%d", id)); err != nil {
		return fmt.Errorf("uploading seed directory: %w", err)
	}

	weights, err := os.ReadFile(filepath.Join(seed, "weights.csv"))
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Printf("no weights file for provider %s, skipping", sub.Provider)
	case err != nil:
		return fmt.Errorf("reading weights file: %w", err)
	default:
		key := fmt.Sprintf("settings/weights/%d.csv", id)
		if err := o.Objects.Upload(ctx, key, "text/csv", weights); err != nil {
			return fmt.Errorf("uploading weights file: %w", err)
		}
	}

	if !hasOverrides(sub) {
		return nil
	}
	raw, err := os.ReadFile(filepath.Join(seed, "v2", "config.json"))
	if err != nil {
		return fmt.Errorf("reading default config: %w", err)
	}
	mutated, err := applyConfigOverrides(raw, sub.DefaultTeam, sub.DefaultCompetition, sub.DefaultSeason)
	if err != nil {
		return err
	}
	key := fmt.Sprintf("deployments/%d/v2/config.json", id)
	if err := o.Objects.Upload(ctx, key, "application/json", mutated); err != nil {
		return fmt.Errorf("uploading config document: %w", err)
	}
	return nil
}
