package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"tenantops/lib/tenant"
)

// Client maintains the tenant template variable on the monitoring
// dashboard through its HTTP API. Updates are read-modify-write with an
// optimistic version check: a concurrent writer bumps the version, the
// put is rejected, and we re-read and retry once.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	uid     string
}

func New(httpClient *http.Client, baseURL, apiKey, uid string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{http: httpClient, baseURL: baseURL, apiKey: apiKey, uid: uid}
}

// SetTenantVariable upserts one label/value option on the tenant
// variable.
func (c *Client) SetTenantVariable(ctx context.Context, label, value string) error {
	return c.update(ctx, func(options []interface{}) []interface{} {
		for _, opt := range options {
			if m, ok := opt.(map[string]interface{}); ok && m["text"] == label {
				m["value"] = value
				return options
			}
		}
		return append(options, map[string]interface{}{"text": label, "value": value})
	})
}

// RemoveTenantVariable deletes the option with the given label, if any.
func (c *Client) RemoveTenantVariable(ctx context.Context, label string) error {
	return c.update(ctx, func(options []interface{}) []interface{} {
		kept := options[:0]
		for _, opt := range options {
			if m, ok := opt.(map[string]interface{}); ok && m["text"] == label {
				continue
			}
			kept = append(kept, opt)
		}
		return kept
	})
}

func (c *Client) update(ctx context.Context, mutate func([]interface{}) []interface{}) error {
	err := c.tryUpdate(ctx, mutate)
	if err != nil && isVersionConflict(err) {
		log.Print("dashboard version conflict, retrying once")
		err = c.tryUpdate(ctx, mutate)
	}
	return err
}

func (c *Client) tryUpdate(ctx context.Context, mutate func([]interface{}) []interface{}) error {
	body, err := c.get(ctx)
	if err != nil {
		return err
	}

	board, ok := body["dashboard"].(map[string]interface{})
	if !ok {
		return fmt.Errorf("%w: dashboard body missing", tenant.ErrExternalService)
	}
	variable, err := tenantVariable(board)
	if err != nil {
		return err
	}
	options, _ := variable["options"].([]interface{})
	variable["options"] = mutate(options)

	return c.put(ctx, board)
}

// tenantVariable finds the template variable with id "tenant".
func tenantVariable(board map[string]interface{}) (map[string]interface{}, error) {
	templating, ok := board["templating"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: dashboard has no templating section", tenant.ErrExternalService)
	}
	list, ok := templating["list"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: dashboard has no variable list", tenant.ErrExternalService)
	}
	for _, item := range list {
		if m, ok := item.(map[string]interface{}); ok && m["id"] == "tenant" {
			return m, nil
		}
	}
	return nil, fmt.Errorf("%w: dashboard has no tenant variable", tenant.ErrExternalService)
}

func (c *Client) get(ctx context.Context) (map[string]interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/dashboards/uid/"+c.uid, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: dashboard get: %s", tenant.ErrExternalService, err.Error())
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: dashboard get returned %d", tenant.ErrExternalService, res.StatusCode)
	}
	var body map[string]interface{}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decoding dashboard: %s", tenant.ErrExternalService, err.Error())
	}
	return body, nil
}

func (c *Client) put(ctx context.Context, board map[string]interface{}) error {
	payload, err := json.Marshal(map[string]interface{}{
		"dashboard": board,
		"overwrite": false,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/dashboards/db", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: dashboard put: %s", tenant.ErrExternalService, err.Error())
	}
	defer res.Body.Close()
	io.Copy(io.Discard, res.Body)
	if res.StatusCode == http.StatusPreconditionFailed {
		return errVersionConflict
	}
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: dashboard put returned %d", tenant.ErrExternalService, res.StatusCode)
	}
	return nil
}

var errVersionConflict = fmt.Errorf("%w: dashboard version conflict", tenant.ErrExternalService)

func isVersionConflict(err error) bool {
	return err == errVersionConflict
}
