// Package ioutil wraps container file I/O with a pooled ring buffer for
// the read-accumulation path and a retry-backed open, adapting the
// teacher's network-streaming ring.Buffer (pkg/buffer/ring,
// internal/pool/ringbuffer) from its original connection-buffering role
// into a one-shot file-accumulation role for loading and saving encoded
// serial/binary containers.
package ioutil

import (
	"context"
	"os"

	"github.com/lk2023060901/gosave/internal/pool/ringbuffer"
	"github.com/lk2023060901/gosave/pkg/util/retry"
)

// ReadContainer reads the whole contents of path, retrying transient open
// failures (pkg/util/retry, cenkalti/backoff-style exponential sleep) and
// accumulating the file's bytes through a pooled ring.Buffer rather than
// allocating a fresh slice per read call.
func ReadContainer(ctx context.Context, path string) ([]byte, error) {
	var data []byte
	err := retry.Do(ctx, func() error {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		buf := ringbuffer.Get()
		defer ringbuffer.Put(buf)

		if _, err := buf.ReadFrom(f); err != nil {
			return err
		}
		data = append([]byte(nil), buf.Bytes()...)
		return nil
	}, retry.Attempts(3))
	return data, err
}

// WriteContainer writes data to path atomically-ish: it writes to a
// temporary sibling file, then renames over path, retrying the whole
// attempt on transient failure.
func WriteContainer(ctx context.Context, path string, data []byte) error {
	return retry.Do(ctx, func() error {
		tmp := path + ".tmp"
		f, err := os.Create(tmp)
		if err != nil {
			return err
		}
		if _, err := f.Write(data); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		return os.Rename(tmp, path)
	}, retry.Attempts(3))
}
