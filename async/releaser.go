package async

import (
	"github.com/lhecker/threading/atomics"
)

// Releaser gives back a resource obtained from one of the primitives in this
// package. Only the first call to Release has an effect.
type Releaser interface {
	Release()
}

type releaser struct {
	released atomics.Boolean
	release  func()
}

func newReleaser(release func()) *releaser {
	return &releaser{release: release}
}

func (r *releaser) Release() {
	if r.released.TrySetTrue() {
		r.release()
	}
}
