package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tenantops/lib/tenant"
)

// fakeGrafana serves the dashboard read and save endpoints. Saved
// bodies are recorded; the first conflictPuts saves are rejected with
// 412 to exercise the retry.
type fakeGrafana struct {
	t            *testing.T
	options      []map[string]interface{}
	gets         int
	saved        []map[string]interface{}
	conflictPuts int
}

func (f *fakeGrafana) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/dashboards/uid/", func(w http.ResponseWriter, r *http.Request) {
		f.gets++
		assert.Equal(f.t, "Bearer api-key", r.Header.Get("Authorization"))
		opts := make([]interface{}, 0, len(f.options))
		for _, o := range f.options {
			opts = append(opts, o)
		}
		body := map[string]interface{}{
			"dashboard": map[string]interface{}{
				"uid": "tenants",
				"templating": map[string]interface{}{
					"list": []interface{}{
						map[string]interface{}{"id": "region"},
						map[string]interface{}{"id": "tenant", "options": opts},
					},
				},
			},
		}
		json.NewEncoder(w).Encode(body)
	})
	mux.HandleFunc("/api/dashboards/db", func(w http.ResponseWriter, r *http.Request) {
		if f.conflictPuts > 0 {
			f.conflictPuts--
			w.WriteHeader(http.StatusPreconditionFailed)
			return
		}
		var payload map[string]interface{}
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(f.t, false, payload["overwrite"])
		f.saved = append(f.saved, payload)
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

func savedTenantOptions(t *testing.T, payload map[string]interface{}) []interface{} {
	t.Helper()
	board := payload["dashboard"].(map[string]interface{})
	list := board["templating"].(map[string]interface{})["list"].([]interface{})
	for _, item := range list {
		m := item.(map[string]interface{})
		if m["id"] == "tenant" {
			options, _ := m["options"].([]interface{})
			return options
		}
	}
	t.Fatal("saved dashboard has no tenant variable")
	return nil
}

func TestSetTenantVariableAppendsOption(t *testing.T) {
	fake := &fakeGrafana{t: t, options: []map[string]interface{}{
		{"text": "existing", "value": "existing.example.app"},
	}}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	client := New(srv.Client(), srv.URL, "api-key", "tenants")
	err := client.SetTenantVariable(context.Background(), "acme", "acme.example.app")
	require.NoError(t, err)

	require.Len(t, fake.saved, 1)
	options := savedTenantOptions(t, fake.saved[0])
	require.Len(t, options, 2)
	added := options[1].(map[string]interface{})
	assert.Equal(t, "acme", added["text"])
	assert.Equal(t, "acme.example.app", added["value"])
}

func TestSetTenantVariableUpdatesExistingOption(t *testing.T) {
	fake := &fakeGrafana{t: t, options: []map[string]interface{}{
		{"text": "acme", "value": "old.example.app"},
	}}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	client := New(srv.Client(), srv.URL, "api-key", "tenants")
	require.NoError(t, client.SetTenantVariable(context.Background(), "acme", "acme.example.app"))

	options := savedTenantOptions(t, fake.saved[0])
	require.Len(t, options, 1)
	assert.Equal(t, "acme.example.app", options[0].(map[string]interface{})["value"])
}

func TestRemoveTenantVariable(t *testing.T) {
	fake := &fakeGrafana{t: t, options: []map[string]interface{}{
		{"text": "acme", "value": "acme.example.app"},
		{"text": "other", "value": "other.example.app"},
	}}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	client := New(srv.Client(), srv.URL, "api-key", "tenants")
	require.NoError(t, client.RemoveTenantVariable(context.Background(), "acme"))

	options := savedTenantOptions(t, fake.saved[0])
	require.Len(t, options, 1)
	assert.Equal(t, "other", options[0].(map[string]interface{})["text"])
}

func TestVersionConflictRetriesOnce(t *testing.T) {
	fake := &fakeGrafana{t: t, conflictPuts: 1}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	client := New(srv.Client(), srv.URL, "api-key", "tenants")
	require.NoError(t, client.SetTenantVariable(context.Background(), "acme", "acme.example.app"))

	assert.Equal(t, 2, fake.gets)
	require.Len(t, fake.saved, 1)
}

func TestPersistentConflictFails(t *testing.T) {
	fake := &fakeGrafana{t: t, conflictPuts: 2}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	client := New(srv.Client(), srv.URL, "api-key", "tenants")
	err := client.SetTenantVariable(context.Background(), "acme", "acme.example.app")
	require.ErrorIs(t, err, tenant.ErrExternalService)
	assert.Empty(t, fake.saved)
}

func TestMissingTenantVariableFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"dashboard": map[string]interface{}{
				"templating": map[string]interface{}{"list": []interface{}{}},
			},
		})
	}))
	defer srv.Close()

	client := New(srv.Client(), srv.URL, "api-key", "tenants")
	err := client.SetTenantVariable(context.Background(), "acme", "acme.example.app")
	require.ErrorIs(t, err, tenant.ErrExternalService)
	assert.Contains(t, err.Error(), "no tenant variable")
}
