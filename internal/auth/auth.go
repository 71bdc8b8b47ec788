// Package auth resolves Google Cloud credentials into client options.
package auth

import (
	"context"
	"time"

	"cloud.google.com/go/auth"
	"cloud.google.com/go/auth/credentials"
	"google.golang.org/api/option"

	"github.com/agentstation/catalogsync/pkg/errors"
)

// Scopes requested for Data Catalog and Cloud Storage access.
var Scopes = []string{"https://www.googleapis.com/auth/cloud-platform"}

// Detect finds Application Default Credentials. DetectDefault does not take
// a context, so it runs in a goroutine bounded by timeout and ctx.
func Detect(ctx context.Context, timeout time.Duration) (*auth.Credentials, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type result struct {
		creds *auth.Credentials
		err   error
	}

	resultChan := make(chan result, 1)
	go func() {
		creds, err := credentials.DetectDefault(&credentials.DetectOptions{Scopes: Scopes})
		resultChan <- result{creds: creds, err: err}
	}()

	select {
	case res := <-resultChan:
		if res.err != nil {
			return nil, &errors.ConfigError{
				Component: "credentials",
				Message:   "no valid credentials found - run 'gcloud auth application-default login' or set GOOGLE_APPLICATION_CREDENTIALS",
				Err:       res.err,
			}
		}
		return res.creds, nil

	case <-time.After(timeout):
		return nil, &errors.ConfigError{
			Component: "credentials",
			Message:   "credential detection timed out (" + timeout.String() + ")",
		}

	case <-ctx.Done():
		return nil, &errors.ConfigError{
			Component: "credentials",
			Message:   "credential detection cancelled",
			Err:       ctx.Err(),
		}
	}
}

// ClientOptions returns the options shared by the catalog and storage
// clients.
func ClientOptions(ctx context.Context, timeout time.Duration) ([]option.ClientOption, error) {
	creds, err := Detect(ctx, timeout)
	if err != nil {
		return nil, err
	}
	return []option.ClientOption{option.WithAuthCredentials(creds)}, nil
}
