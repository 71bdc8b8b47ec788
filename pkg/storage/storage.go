// Package storage defines the observation record produced by object storage
// listers and the Lister interface the sync orchestrator consumes.
package storage

import (
	"context"
	"iter"
	"strings"
	"time"
)

// SystemCloudStorage is the source system tag for Cloud Storage objects.
const SystemCloudStorage = "cloud_storage"

// UnknownFileType is the file type of objects whose name has no extension.
const UnknownFileType = "unknown_file_type"

// Object is an immutable observation of one stored object.
type Object struct {
	LinkedResource string    `json:"linked_resource" yaml:"linked_resource"` // unique URI, the join key with catalog entries
	BucketName     string    `json:"bucket_name" yaml:"bucket_name"`
	FileName       string    `json:"file_name" yaml:"file_name"`
	FileType       string    `json:"file_type" yaml:"file_type"`
	PublicURL      string    `json:"public_url" yaml:"public_url"`
	Size           int64     `json:"size" yaml:"size"`
	TimeCreated    time.Time `json:"time_created" yaml:"time_created"`
	TimeUpdated    time.Time `json:"time_updated" yaml:"time_updated"`
	System         string    `json:"system" yaml:"system"`
}

// Lister enumerates stored objects. The returned sequence is lazy; objects
// are yielded in no particular order. A non-nil error ends the sequence.
type Lister interface {
	Objects(ctx context.Context) iter.Seq2[Object, error]
}

// ListerFunc adapts a function to the Lister interface.
type ListerFunc func(ctx context.Context) iter.Seq2[Object, error]

// Objects implements Lister.
func (f ListerFunc) Objects(ctx context.Context) iter.Seq2[Object, error] {
	return f(ctx)
}

// Static returns a Lister over a fixed set of objects.
func Static(objects ...Object) Lister {
	return ListerFunc(func(ctx context.Context) iter.Seq2[Object, error] {
		return func(yield func(Object, error) bool) {
			for _, obj := range objects {
				if err := ctx.Err(); err != nil {
					yield(Object{}, err)
					return
				}
				if !yield(obj, nil) {
					return
				}
			}
		}
	})
}

// FileType returns the text after the last '.' in name, or UnknownFileType.
func FileType(name string) string {
	if i := strings.LastIndex(name, "."); i != -1 {
		return name[i+1:]
	}
	return UnknownFileType
}
