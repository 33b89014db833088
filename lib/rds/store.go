package rds

import (
	"context"
	"fmt"

	"tenantops/lib/tenant"
)

// Store implements the tenant store contract on top of the Data API
// client. The shared rows live in the public schema; provider-specific
// rows live in a schema named after the provider.
type Store struct {
	client *Client
}

func NewStore(client *Client) *Store {
	return &Store{client: client}
}

func (s *Store) Begin(ctx context.Context) (string, error) {
	return s.client.Begin(ctx)
}

func (s *Store) Commit(ctx context.Context, txID string) error {
	return s.client.Commit(ctx, txID)
}

func (s *Store) Rollback(ctx context.Context, txID string) error {
	return s.client.Rollback(ctx, txID)
}

// InsertTenant allocates the next tenant id with an insert-returning so
// concurrent onboarding runs can never read the same max value.
func (s *Store) InsertTenant(ctx context.Context, txID, name, provider, scope string) (int64, error) {
	res, err := s.client.Execute(ctx, txID, "public", `
		INSERT INTO tenant (name, data_provider_id, competition_scope)
		VALUES (:name, :data_provider_id, :competition_scope)
		RETURNING id
	`, map[string]interface{}{
		"name":              name,
		"data_provider_id":  provider,
		"competition_scope": scope,
	})
	if err != nil {
		return 0, err
	}
	var rows []struct {
		ID int64 `json:"id"`
	}
	if err := res.Decode(&rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, fmt.Errorf("%w: tenant insert returned no id", tenant.ErrExternalService)
	}
	return rows[0].ID, nil
}

func (s *Store) InsertProviderTenant(ctx context.Context, txID, provider string, id int64, defaultTeam string, minimumMinutes int) error {
	_, err := s.client.Execute(ctx, txID, provider, `
		INSERT INTO tenant (id, default_team, minimum_minutes)
		VALUES (:id, :default_team, :minimum_minutes)
	`, map[string]interface{}{
		"id":              id,
		"default_team":    defaultTeam,
		"minimum_minutes": minimumMinutes,
	})
	return err
}

func (s *Store) InsertCategoryPermissions(ctx context.Context, txID, provider string, id int64, categories []string) error {
	for _, category := range categories {
		_, err := s.client.Execute(ctx, txID, provider, `
			INSERT INTO tenant_competition_category (tenant_id, category)
			VALUES (:tenant_id, :category)
		`, map[string]interface{}{
			"tenant_id": id,
			"category":  category,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) InsertIdentityLinkage(ctx context.Context, txID string, id int64, dbID int, host, cognitoURL, clientID, clientSecret string) error {
	_, err := s.client.Execute(ctx, txID, "public", `
		INSERT INTO ids (tenant_id, db_id, host, cognito_url, cognito_client_id, cognito_client_secret)
		VALUES (:tenant_id, :db_id, :host, :cognito_url, :cognito_client_id, :cognito_client_secret)
	`, map[string]interface{}{
		"tenant_id":             id,
		"db_id":                 dbID,
		"host":                  host,
		"cognito_url":           cognitoURL,
		"cognito_client_id":     clientID,
		"cognito_client_secret": clientSecret,
	})
	return err
}

// DeleteTenant removes the shared row by name and reports the id and
// provider it carried.
func (s *Store) DeleteTenant(ctx context.Context, txID, name string) (int64, string, error) {
	res, err := s.client.Execute(ctx, txID, "public", `
		DELETE FROM tenant
		WHERE name = :name
		RETURNING id, data_provider_id
	`, map[string]interface{}{
		"name": name,
	})
	if err != nil {
		return 0, "", err
	}
	var rows []struct {
		ID       int64  `json:"id"`
		Provider string `json:"data_provider_id"`
	}
	if err := res.Decode(&rows); err != nil {
		return 0, "", err
	}
	if len(rows) == 0 {
		return 0, "", tenant.ErrNotFound
	}
	return rows[0].ID, rows[0].Provider, nil
}

func (s *Store) DeleteProviderTenant(ctx context.Context, txID, provider string, id int64) error {
	_, err := s.client.Execute(ctx, txID, provider, `
		DELETE FROM tenant_competition_category
		WHERE tenant_id = :tenant_id
	`, map[string]interface{}{
		"tenant_id": id,
	})
	if err != nil {
		return err
	}
	_, err = s.client.Execute(ctx, txID, provider, `
		DELETE FROM tenant
		WHERE id = :id
	`, map[string]interface{}{
		"id": id,
	})
	return err
}

func (s *Store) DeleteIdentityLinkage(ctx context.Context, txID string, id int64) error {
	_, err := s.client.Execute(ctx, txID, "public", `
		DELETE FROM ids
		WHERE tenant_id = :tenant_id
	`, map[string]interface{}{
		"tenant_id": id,
	})
	return err
}
