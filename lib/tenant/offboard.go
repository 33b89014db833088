package tenant

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
)

// OffboarderConfig carries the deployment constants for decommission
// runs.
type OffboarderConfig struct {
	// Workflow is the CI workflow file dispatched to tear down the
	// tenant infrastructure.
	Workflow string
}

// Offboarder removes a tenant by name: database rows, storage objects
// and downstream infrastructure. Database deletes run inside one
// transaction that is only committed once every other step succeeded.
type Offboarder struct {
	Store     Store
	Objects   ObjectStore
	CI        Dispatcher
	Dashboard DashboardUpdater
	Reporter  Reporter
	Config    OffboarderConfig
}

// Offboard tears down the named tenant. An unknown name is reported to
// the channel and returned as a nil error: it is a recoverable outcome,
// not a process failure.
func (o *Offboarder) Offboard(ctx context.Context, tenantName string) error {
	name := strings.ToLower(strings.TrimSpace(tenantName))
	if name == "" {
		err := fmt.Errorf("%w: empty tenant name", ErrValidation)
		o.Reporter.OffboardFailed(ctx, tenantName, err)
		return err
	}

	o.Reporter.OffboardStarted(ctx, name)

	txID, err := o.Store.Begin(ctx)
	if err != nil {
		err = fmt.Errorf("beginning transaction: %w", err)
		o.Reporter.OffboardFailed(ctx, name, err)
		return err
	}

	id, err := o.decommission(ctx, txID, name)
	if err != nil {
		if rbErr := o.Store.Rollback(ctx, txID); rbErr != nil {
			log.Printf("rollback after offboarding failure: %s", rbErr.Error())
		}
		o.Reporter.OffboardFailed(ctx, name, err)
		if errors.Is(err, ErrNotFound) {
			// Reported above; nothing was touched.
			return nil
		}
		return err
	}

	if err := o.Store.Commit(ctx, txID); err != nil {
		err = fmt.Errorf("committing transaction: %w", err)
		if rbErr := o.Store.Rollback(ctx, txID); rbErr != nil {
			log.Printf("rollback after commit failure: %s", rbErr.Error())
		}
		o.Reporter.OffboardFailed(ctx, name, err)
		return err
	}

	if o.Dashboard != nil {
		if err := o.Dashboard.RemoveTenantVariable(ctx, name); err != nil {
			log.Printf("dashboard tenant variable removal failed for %s: %s", name, err.Error())
		}
	}

	o.Reporter.OffboardSucceeded(ctx, name, id)
	return nil
}

func (o *Offboarder) decommission(ctx context.Context, txID, name string) (int64, error) {
	id, provider, err := o.Store.DeleteTenant(ctx, txID, name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, fmt.Errorf("%w: no tenant named %q", ErrNotFound, name)
		}
		return 0, fmt.Errorf("deleting tenant row: %w", err)
	}
	log.Printf("offboarding tenant %s with id %d (provider %s)", name, id, provider)

	if err := o.Store.DeleteProviderTenant(ctx, txID, provider, id); err != nil {
		return 0, fmt.Errorf("deleting provider tenant rows: %w", err)
	}
	if err := o.Store.DeleteIdentityLinkage(ctx, txID, id); err != nil {
		return 0, fmt.Errorf("deleting identity linkage: %w", err)
	}

	deleted, err := o.Objects.DeletePrefix(ctx, fmt.Sprintf("deployments/%d/", id))
	if err != nil {
		return 0, fmt.Errorf("deleting tenant objects: %w", err)
	}
	log.Printf("deleted %d objects for tenant %d", deleted, id)

	if _, err := o.Objects.DeletePrefix(ctx, fmt.Sprintf("settings/weights/%d.csv", id)); err != nil {
		return 0, fmt.Errorf("deleting weights file: %w", err)
	}

	inputs := map[string]interface{}{
		"clientName": name,
	}
	if err := o.CI.Dispatch(ctx, o.Config.Workflow, inputs); err != nil {
		return 0, fmt.Errorf("dispatching decommission workflow: %w", err)
	}

	return id, nil
}
