// Package app is the demo application: storage drivers and the controllers
// that use them, wired through the container by AppServiceProvider.
package app

import (
	"errors"
	"path"
	"strings"
)

// ErrEmptyName is returned when a file is stored without a name.
var ErrEmptyName = errors.New("storage: empty file name")

// Storage is the file storage contract controllers depend on.
type Storage interface {
	// Driver names the backend, e.g. "s3".
	Driver() string

	// URL returns where name is (or would be) stored.
	URL(name string) (string, error)
}

// S3 stores files in an S3 bucket.
type S3 struct {
	Bucket string
	Region string
}

// NewS3 creates an S3 driver.
func NewS3(bucket, region string) *S3 {
	return &S3{Bucket: bucket, Region: region}
}

func (s *S3) Driver() string { return "s3" }

func (s *S3) URL(name string) (string, error) {
	name = strings.TrimLeft(name, "/")
	if name == "" {
		return "", ErrEmptyName
	}
	return "https://" + s.Bucket + ".s3." + s.Region + ".amazonaws.com/" + name, nil
}

// Local stores files below a root directory.
type Local struct {
	Root string
}

// NewLocal creates a Local driver.
func NewLocal(root string) *Local {
	return &Local{Root: root}
}

func (l *Local) Driver() string { return "local" }

func (l *Local) URL(name string) (string, error) {
	name = strings.TrimLeft(name, "/")
	if name == "" {
		return "", ErrEmptyName
	}
	return "file://" + path.Join(l.Root, name), nil
}
