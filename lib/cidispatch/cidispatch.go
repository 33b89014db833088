package cidispatch

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/go-github/v46/github"
	"golang.org/x/oauth2"

	"tenantops/lib/tenant"
)

// actionsAPI is the slice of the GitHub Actions service the dispatcher
// uses.
type actionsAPI interface {
	CreateWorkflowDispatchEventByFileName(ctx context.Context, owner, repo, workflowFileName string, event github.CreateWorkflowDispatchEventRequest) (*github.Response, error)
}

// Client dispatches workflow runs in one repository at a fixed ref.
type Client struct {
	actions actionsAPI
	owner   string
	repo    string
	ref     string
}

// New builds a dispatcher for "owner/name" using a static token, the
// same way the media handler builds its GitHub clients.
func New(ctx context.Context, token, repository, ref string) (*Client, error) {
	owner, name, ok := strings.Cut(repository, "/")
	if !ok {
		return nil, fmt.Errorf("%w: repository %q is not owner/name", tenant.ErrConfiguration, repository)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(ctx, ts)
	return &Client{
		actions: github.NewClient(tc).Actions,
		owner:   owner,
		repo:    name,
		ref:     ref,
	}, nil
}

// NewWithActions wires a prebuilt actions service, for tests.
func NewWithActions(actions actionsAPI, owner, repo, ref string) *Client {
	return &Client{actions: actions, owner: owner, repo: repo, ref: ref}
}

// Dispatch starts the named workflow file with the given inputs.
func (c *Client) Dispatch(ctx context.Context, workflow string, inputs map[string]interface{}) error {
	log.Printf("dispatching workflow %s on %s/%s@%s", workflow, c.owner, c.repo, c.ref)
	_, err := c.actions.CreateWorkflowDispatchEventByFileName(ctx, c.owner, c.repo, workflow, github.CreateWorkflowDispatchEventRequest{
		Ref:    c.ref,
		Inputs: inputs,
	})
	if err != nil {
		return fmt.Errorf("%w: workflow dispatch %s: %s", tenant.ErrExternalService, workflow, err.Error())
	}
	return nil
}
