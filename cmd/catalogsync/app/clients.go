package app

import (
	"context"
	"errors"

	"github.com/agentstation/catalogsync/internal/auth"
	"github.com/agentstation/catalogsync/pkg/catalog"
	"github.com/agentstation/catalogsync/pkg/catalog/datacatalog"
	"github.com/agentstation/catalogsync/pkg/constants"
	"github.com/agentstation/catalogsync/pkg/storage/gcs"
)

// Clients are the remote services a run talks to.
type Clients struct {
	Catalog catalog.Client
	Storage gcs.Backend

	closers []func() error
}

// OnClose registers fn to run when the clients are closed.
func (c *Clients) OnClose(fn func() error) {
	c.closers = append(c.closers, fn)
}

// Close releases every client.
func (c *Clients) Close() error {
	var errs []error
	for _, fn := range c.closers {
		errs = append(errs, fn())
	}
	return errors.Join(errs...)
}

// ClientFactory opens the clients for a project.
type ClientFactory func(ctx context.Context, projectID string) (*Clients, error)

// GoogleClients opens Data Catalog and Cloud Storage clients authenticated
// with Application Default Credentials.
func GoogleClients(ctx context.Context, projectID string) (*Clients, error) {
	opts, err := auth.ClientOptions(ctx, constants.CredentialsTimeout)
	if err != nil {
		return nil, err
	}

	dc, err := datacatalog.New(ctx, opts...)
	if err != nil {
		return nil, err
	}
	clients := &Clients{Catalog: dc}
	clients.OnClose(dc.Close)

	backend, err := gcs.NewClientBackend(ctx, projectID, opts...)
	if err != nil {
		_ = clients.Close()
		return nil, err
	}
	clients.Storage = backend
	clients.OnClose(backend.Close)

	return clients, nil
}
