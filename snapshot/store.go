package snapshot

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/tsbatch"
	"github.com/hupe1980/tsbatch/blobstore"
)

// Save encodes b and writes it to store as the blob name.
func Save(ctx context.Context, store blobstore.BlobStore, name string, b *tsbatch.Batch, optFns ...Option) error {
	var buf bytes.Buffer
	if err := Encode(ctx, &buf, b, optFns...); err != nil {
		return err
	}
	if err := store.Put(ctx, name, buf.Bytes()); err != nil {
		return fmt.Errorf("snapshot: save %q: %w", name, err)
	}
	return nil
}

// Load reads the snapshot name from store.
func Load(ctx context.Context, store blobstore.BlobStore, name string, optFns ...Option) (*tsbatch.Batch, error) {
	data, err := blobstore.ReadAll(ctx, store, name)
	if err != nil {
		return nil, fmt.Errorf("snapshot: load %q: %w", name, err)
	}
	return Decode(ctx, bytes.NewReader(data), optFns...)
}

// Publish saves b as name and then points the CURRENT blob at it.
//
// Readers using LoadCurrent observe either the previous or the new
// snapshot. The snapshot blob stays in place if updating the pointer fails.
func Publish(ctx context.Context, store blobstore.BlobStore, name string, b *tsbatch.Batch, optFns ...Option) error {
	if name == blobstore.CurrentName {
		return fmt.Errorf("snapshot: %q is reserved", name)
	}
	if err := Save(ctx, store, name, b, optFns...); err != nil {
		return err
	}
	if err := store.Put(ctx, blobstore.CurrentName, []byte(name)); err != nil {
		return fmt.Errorf("snapshot: publish %q: %w", name, err)
	}
	return nil
}

// LoadCurrent loads the snapshot the CURRENT blob points at. It returns an
// error wrapping blobstore.ErrNotFound if nothing was published yet.
func LoadCurrent(ctx context.Context, store blobstore.BlobStore, optFns ...Option) (*tsbatch.Batch, error) {
	current, err := blobstore.ReadAll(ctx, store, blobstore.CurrentName)
	if err != nil {
		return nil, fmt.Errorf("snapshot: read %s: %w", blobstore.CurrentName, err)
	}
	name := strings.TrimSpace(string(current))
	if name == "" {
		return nil, fmt.Errorf("%w: empty %s pointer", ErrCorrupt, blobstore.CurrentName)
	}
	return Load(ctx, store, name, optFns...)
}
