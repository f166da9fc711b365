package googlecloud

import (
	"context"
	"fmt"
	"os"

	"cloud.google.com/go/datastore"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
)

// Client wraps the Google Cloud Datastore client to provide the dashboard's
// collection operations.
type Client struct {
	ds *datastore.Client
}

// Options select the Datastore endpoint and credentials. Empty fields keep the
// library defaults (application default credentials, public endpoint).
type Options struct {
	Endpoint    string
	AccessToken string
}

func (o Options) clientOptions() []option.ClientOption {
	var opts []option.ClientOption
	if o.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(o.Endpoint))
	}
	if o.AccessToken != "" {
		opts = append(opts, option.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: o.AccessToken})))
	}
	return opts
}

// NewClient creates a new Google Cloud Datastore client.
// When DATASTORE_EMULATOR_HOST is set the official client talks to the
// emulator and ignores the endpoint and token.
func NewClient(ctx context.Context, projectID string, opts Options) (*Client, error) {
	clientOpts := opts.clientOptions()
	if emulatorHost := os.Getenv("DATASTORE_EMULATOR_HOST"); emulatorHost != "" {
		clientOpts = nil
	}

	ds, err := datastore.NewClient(ctx, projectID, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create datastore client: %w", err)
	}

	return &Client{ds: ds}, nil
}

// Close closes the underlying datastore client.
func (c *Client) Close() error {
	return c.ds.Close()
}
