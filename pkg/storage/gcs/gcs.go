// Package gcs lists Cloud Storage buckets and objects as storage.Object
// observations.
package gcs

import (
	"context"
	"errors"
	"iter"
	"net/url"
	"strings"
	"time"

	gcstorage "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	pkgerrors "github.com/agentstation/catalogsync/pkg/errors"
	"github.com/agentstation/catalogsync/pkg/logging"
	"github.com/agentstation/catalogsync/pkg/storage"
)

// publicBaseURL is the host serving public object URLs.
const publicBaseURL = "https://storage.googleapis.com"

// Blob is the subset of object metadata the lister needs.
type Blob struct {
	Name    string
	Size    int64
	Created time.Time
	Updated time.Time
}

// Backend lists buckets and the blobs inside them.
type Backend interface {
	ListBuckets(ctx context.Context, prefix string) iter.Seq2[string, error]
	ListBlobs(ctx context.Context, bucket string) iter.Seq2[Blob, error]
}

// Lister implements storage.Lister for Cloud Storage.
type Lister struct {
	backend Backend
	prefix  string
}

// NewLister returns a lister over every bucket whose name starts with
// prefix. An empty prefix lists all buckets of the backend's project.
func NewLister(backend Backend, prefix string) *Lister {
	return &Lister{backend: backend, prefix: prefix}
}

// Objects implements storage.Lister. Buckets are walked one at a time and
// objects are yielded as they are read.
func (l *Lister) Objects(ctx context.Context) iter.Seq2[storage.Object, error] {
	return func(yield func(storage.Object, error) bool) {
		logger := logging.FromContext(ctx)
		logger.Info().Str("bucket_prefix", l.prefix).Msg("Listing buckets from Cloud Storage")

		for bucket, err := range l.backend.ListBuckets(ctx, l.prefix) {
			if err != nil {
				yield(storage.Object{}, pkgerrors.WrapResource("list", "buckets", l.prefix, err))
				return
			}

			bucketLog := logger.With().Str("bucket", bucket).Logger()
			bucketLog.Info().Msg("Reading files from bucket")

			count := 0
			for blob, err := range l.backend.ListBlobs(ctx, bucket) {
				if err != nil {
					yield(storage.Object{}, pkgerrors.WrapResource("list", "objects", bucket, err))
					return
				}
				count++
				if !yield(toObject(bucket, blob), nil) {
					return
				}
			}

			if count == 0 {
				bucketLog.Info().Msg("No files found on bucket")
			} else {
				bucketLog.Info().Int("files", count).Msg("Bucket read")
			}
		}
	}
}

func toObject(bucket string, blob Blob) storage.Object {
	return storage.Object{
		LinkedResource: LinkedResource(bucket, blob.Name),
		BucketName:     bucket,
		FileName:       blob.Name,
		FileType:       storage.FileType(blob.Name),
		PublicURL:      PublicURL(bucket, blob.Name),
		Size:           blob.Size,
		TimeCreated:    blob.Created,
		TimeUpdated:    blob.Updated,
		System:         storage.SystemCloudStorage,
	}
}

// LinkedResource returns the gs:// URI of an object.
func LinkedResource(bucket, name string) string {
	return "gs://" + bucket + "/" + name
}

// PublicURL returns the public HTTPS URL of an object. Path separators in
// the object name are kept and every other reserved character is
// percent-encoded, so only letters, digits and "-_.~" appear literally.
func PublicURL(bucket, name string) string {
	segments := strings.Split(name, "/")
	for i, s := range segments {
		segments[i] = strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
	}
	return publicBaseURL + "/" + bucket + "/" + strings.Join(segments, "/")
}

// ClientBackend is a Backend over the Cloud Storage client library.
type ClientBackend struct {
	client    *gcstorage.Client
	projectID string
}

// NewClientBackend creates a Cloud Storage client for the given project.
func NewClientBackend(ctx context.Context, projectID string, opts ...option.ClientOption) (*ClientBackend, error) {
	client, err := gcstorage.NewClient(ctx, opts...)
	if err != nil {
		return nil, pkgerrors.WrapResource("create", "storage client", projectID, err)
	}
	return &ClientBackend{client: client, projectID: projectID}, nil
}

// Close releases the underlying client.
func (b *ClientBackend) Close() error {
	return b.client.Close()
}

// ListBuckets implements Backend.
func (b *ClientBackend) ListBuckets(ctx context.Context, prefix string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		it := b.client.Buckets(ctx, b.projectID)
		it.Prefix = prefix
		for {
			attrs, err := it.Next()
			if errors.Is(err, iterator.Done) {
				return
			}
			if err != nil {
				yield("", err)
				return
			}
			if !yield(attrs.Name, nil) {
				return
			}
		}
	}
}

// ListBlobs implements Backend.
func (b *ClientBackend) ListBlobs(ctx context.Context, bucket string) iter.Seq2[Blob, error] {
	return func(yield func(Blob, error) bool) {
		it := b.client.Bucket(bucket).Objects(ctx, nil)
		for {
			attrs, err := it.Next()
			if errors.Is(err, iterator.Done) {
				return
			}
			if err != nil {
				yield(Blob{}, err)
				return
			}
			blob := Blob{
				Name:    attrs.Name,
				Size:    attrs.Size,
				Created: attrs.Created,
				Updated: attrs.Updated,
			}
			if !yield(blob, nil) {
				return
			}
		}
	}
}
