package identify

import (
	"github.com/odvcencio/swhid/pkg/swhid"
)

// WalkFunc receives one identified object. rel is the object's path
// relative to the walk root, with forward slashes; the root itself is ".".
type WalkFunc func(rel string, id swhid.Identifier) error

// Walk identifies root and, when it is a directory, every object beneath
// it. fn is called depth-first in tree order, each directory after its
// children, so the root comes last. An error from fn stops the walk and is
// returned unchanged.
func (c *Computer) Walk(root string, fn WalkFunc) error {
	path, info, err := c.resolve(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		id, err := c.Compute(path)
		if err != nil {
			return err
		}
		return fn(".", id)
	}

	b, err := newTreeBuilder(c.s)
	if err != nil {
		return err
	}
	b.visit = visitFunc(fn)
	_, err = b.build(path, ".")
	return err
}
