// Package blob moves encoded files as whole objects between memory and a
// local path or an S3 object.
package blob

import (
	"context"
	"strings"
	"time"

	lerrors "github.com/wzqhbustb/colfile/storage/errors"
)

// Store reads and writes whole objects by key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
}

// Location is a parsed transport URI.
type Location struct {
	Scheme string // "file" or "s3"
	Bucket string // s3 only
	Key    string // object key or local path
}

// ParseLocation accepts "s3://bucket/key" and plain local paths.
func ParseLocation(uri string) (Location, error) {
	if rest, ok := strings.CutPrefix(uri, "s3://"); ok {
		bucket, key, _ := strings.Cut(rest, "/")
		if bucket == "" || key == "" {
			return Location{}, lerrors.InvalidArg("parse_location", "s3 uri needs a bucket and a key: "+uri)
		}
		return Location{Scheme: "s3", Bucket: bucket, Key: key}, nil
	}
	if uri == "" {
		return Location{}, lerrors.InvalidArg("parse_location", "empty path")
	}
	return Location{Scheme: "file", Key: strings.TrimPrefix(uri, "file://")}, nil
}

func (l Location) String() string {
	if l.Scheme == "s3" {
		return "s3://" + l.Bucket + "/" + l.Key
	}
	return l.Key
}

// S3Config configures S3 access. Credentials come from the environment.
type S3Config struct {
	Region         string
	Endpoint       string
	MaxRetries     int
	InitialBackoff time.Duration
}

// Open returns the store serving loc.
func Open(loc Location, cfg S3Config) (Store, error) {
	if loc.Scheme == "s3" {
		return NewS3Store(loc.Bucket, cfg)
	}
	return NewLocalStore(), nil
}

// ReadAll fetches the object at uri.
func ReadAll(ctx context.Context, uri string, cfg S3Config) ([]byte, error) {
	loc, err := ParseLocation(uri)
	if err != nil {
		return nil, err
	}
	store, err := Open(loc, cfg)
	if err != nil {
		return nil, err
	}
	return store.Get(ctx, loc.Key)
}

// WriteAll stores data at uri.
func WriteAll(ctx context.Context, uri string, data []byte, cfg S3Config) error {
	loc, err := ParseLocation(uri)
	if err != nil {
		return err
	}
	store, err := Open(loc, cfg)
	if err != nil {
		return err
	}
	return store.Put(ctx, loc.Key, data)
}
