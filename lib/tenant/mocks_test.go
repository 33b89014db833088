package tenant

import (
	"context"
	"fmt"
)

// fakeStore records every call and can be told to fail at any step.
type fakeStore struct {
	nextID int64

	beginErr          error
	insertTenantErr   error
	insertProviderErr error
	insertCategoryErr error
	insertLinkageErr  error
	deleteTenantErr   error
	deleteProviderErr error
	deleteLinkageErr  error
	commitErr         error

	deleteTenantID       int64
	deleteTenantProvider string

	begun      bool
	committed  bool
	rolledBack bool
	calls      []string

	providerTenant struct {
		provider    string
		id          int64
		defaultTeam string
		minutes     int
	}
	categories []string
	linkage    struct {
		id         int64
		dbID       int
		host       string
		cognitoURL string
		clientID   string
		secret     string
	}
}

func (s *fakeStore) Begin(ctx context.Context) (string, error) {
	if s.beginErr != nil {
		return "", s.beginErr
	}
	s.begun = true
	s.calls = append(s.calls, "begin")
	return "tx-1", nil
}

func (s *fakeStore) Commit(ctx context.Context, txID string) error {
	if s.commitErr != nil {
		return s.commitErr
	}
	s.committed = true
	s.calls = append(s.calls, "commit")
	return nil
}

func (s *fakeStore) Rollback(ctx context.Context, txID string) error {
	s.rolledBack = true
	s.calls = append(s.calls, "rollback")
	return nil
}

func (s *fakeStore) InsertTenant(ctx context.Context, txID, name, provider, scope string) (int64, error) {
	if s.insertTenantErr != nil {
		return 0, s.insertTenantErr
	}
	s.calls = append(s.calls, fmt.Sprintf("insert tenant %s/%s/%s@%s", name, provider, scope, txID))
	return s.nextID, nil
}

func (s *fakeStore) InsertProviderTenant(ctx context.Context, txID, provider string, id int64, defaultTeam string, minimumMinutes int) error {
	if s.insertProviderErr != nil {
		return s.insertProviderErr
	}
	s.providerTenant.provider = provider
	s.providerTenant.id = id
	s.providerTenant.defaultTeam = defaultTeam
	s.providerTenant.minutes = minimumMinutes
	s.calls = append(s.calls, "insert provider tenant")
	return nil
}

func (s *fakeStore) InsertCategoryPermissions(ctx context.Context, txID, provider string, id int64, categories []string) error {
	if s.insertCategoryErr != nil {
		return s.insertCategoryErr
	}
	s.categories = append(s.categories, categories...)
	s.calls = append(s.calls, "insert categories")
	return nil
}

func (s *fakeStore) InsertIdentityLinkage(ctx context.Context, txID string, id int64, dbID int, host, cognitoURL, clientID, clientSecret string) error {
	if s.insertLinkageErr != nil {
		return s.insertLinkageErr
	}
	s.linkage.id = id
	s.linkage.dbID = dbID
	s.linkage.host = host
	s.linkage.cognitoURL = cognitoURL
	s.linkage.clientID = clientID
	s.linkage.secret = clientSecret
	s.calls = append(s.calls, "insert linkage")
	return nil
}

func (s *fakeStore) DeleteTenant(ctx context.Context, txID, name string) (int64, string, error) {
	if s.deleteTenantErr != nil {
		return 0, "", s.deleteTenantErr
	}
	s.calls = append(s.calls, "delete tenant "+name)
	return s.deleteTenantID, s.deleteTenantProvider, nil
}

func (s *fakeStore) DeleteProviderTenant(ctx context.Context, txID, provider string, id int64) error {
	if s.deleteProviderErr != nil {
		return s.deleteProviderErr
	}
	s.calls = append(s.calls, fmt.Sprintf("delete provider tenant %s/%d", provider, id))
	return nil
}

func (s *fakeStore) DeleteIdentityLinkage(ctx context.Context, txID string, id int64) error {
	if s.deleteLinkageErr != nil {
		return s.deleteLinkageErr
	}
	s.calls = append(s.calls, fmt.Sprintf("delete linkage %d", id))
	return nil
}

type fakeObjects struct {
	uploadErr    error
	uploadDirErr error
	deleteErr    error

	uploads     map[string]string // key -> content type
	uploadBPath map[string][]byte
	directories map[string]string // dir -> prefix
	deleted     []string
	deleteCount int
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{
		uploads:     map[string]string{},
		uploadBPath: map[string][]byte{},
		directories: map[string]string{},
	}
}

func (o *fakeObjects) Upload(ctx context.Context, key, contentType string, body []byte) error {
	if o.uploadErr != nil {
		return o.uploadErr
	}
	o.uploads[key] = contentType
	o.uploadBPath[key] = body
	return nil
}

func (o *fakeObjects) UploadDirectory(ctx context.Context, dir, prefix string) error {
	if o.uploadDirErr != nil {
		return o.uploadDirErr
	}
	o.directories[dir] = prefix
	return nil
}

func (o *fakeObjects) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	if o.deleteErr != nil {
		return 0, o.deleteErr
	}
	o.deleted = append(o.deleted, prefix)
	return o.deleteCount, nil
}

type fakeIdentity struct {
	resolveErr error
	createErr  error

	domain string
	client string
	secret string

	createdUsers []string
}

func (i *fakeIdentity) ResolveAppClient(ctx context.Context, userPoolID string) (string, string, string, error) {
	if i.resolveErr != nil {
		return "", "", "", i.resolveErr
	}
	return i.domain, i.client, i.secret, nil
}

func (i *fakeIdentity) CreateAdminUser(ctx context.Context, userPoolID, username, email string) error {
	if i.createErr != nil {
		return i.createErr
	}
	i.createdUsers = append(i.createdUsers, username+"<"+email+">")
	return nil
}

type fakeFiles struct {
	err  error
	body []byte
	urls []string
}

func (f *fakeFiles) Fetch(ctx context.Context, url string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.urls = append(f.urls, url)
	return f.body, nil
}

type fakeDispatcher struct {
	err       error
	workflows []string
	inputs    []map[string]interface{}
}

func (d *fakeDispatcher) Dispatch(ctx context.Context, workflow string, inputs map[string]interface{}) error {
	if d.err != nil {
		return d.err
	}
	d.workflows = append(d.workflows, workflow)
	d.inputs = append(d.inputs, inputs)
	return nil
}

type fakeDashboard struct {
	err     error
	set     map[string]string
	removed []string
}

func newFakeDashboard() *fakeDashboard {
	return &fakeDashboard{set: map[string]string{}}
}

func (d *fakeDashboard) SetTenantVariable(ctx context.Context, label, value string) error {
	if d.err != nil {
		return d.err
	}
	d.set[label] = value
	return nil
}

func (d *fakeDashboard) RemoveTenantVariable(ctx context.Context, label string) error {
	if d.err != nil {
		return d.err
	}
	d.removed = append(d.removed, label)
	return nil
}

type fakeReporter struct {
	events []string
}

func (r *fakeReporter) OnboardStarted(ctx context.Context, name string) {
	r.events = append(r.events, "onboard started "+name)
}

func (r *fakeReporter) OnboardSucceeded(ctx context.Context, name string, id int64, url string) {
	r.events = append(r.events, fmt.Sprintf("onboard succeeded %s %d %s", name, id, url))
}

func (r *fakeReporter) OnboardFailed(ctx context.Context, name string, cause error) {
	r.events = append(r.events, "onboard failed "+name+": "+cause.Error())
}

func (r *fakeReporter) OffboardStarted(ctx context.Context, name string) {
	r.events = append(r.events, "offboard started "+name)
}

func (r *fakeReporter) OffboardSucceeded(ctx context.Context, name string, id int64) {
	r.events = append(r.events, fmt.Sprintf("offboard succeeded %s %d", name, id))
}

func (r *fakeReporter) OffboardFailed(ctx context.Context, name string, cause error) {
	r.events = append(r.events, "offboard failed "+name+": "+cause.Error())
}
