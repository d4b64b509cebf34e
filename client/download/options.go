package download

import (
	"errors"
	"io/fs"
)

const defaultPerm fs.FileMode = 0o644

// Option defines optional settings for persisting files.
//
// WithPerm sets the permission bits of the final file. Handle writes
// through a private temp file, so without it the result would keep the
// temp file's 0600 mode.
type Option func(*options) error

type options struct {
	perm fs.FileMode
}

func WithPerm(perm fs.FileMode) Option {
	return func(opts *options) error {
		if perm&^fs.ModePerm != 0 {
			return errors.New("perm must only contain permission bits")
		}

		opts.perm = perm
		return nil
	}
}
