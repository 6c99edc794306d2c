package database

import (
	"context"

	"github.com/koustreak/ddlgen/internal/errs"
)

var errUnsupportedDetection = errs.New(errs.ErrKindUnsupported, "auto-increment detection is not supported by this driver")

// Dedicated turns a catalog the caller already holds into a Source. Every
// Acquire hands out the same connection and Release on it is a no-op: the
// caller keeps ownership and releases cat itself.
func Dedicated(cat Catalog) Source {
	return dedicated{cat: cat}
}

type dedicated struct {
	cat Catalog
}

func (d dedicated) Acquire(context.Context) (Catalog, error) {
	return borrowed{Catalog: d.cat}, nil
}

// borrowed shadows Release so operations cannot close a caller's connection.
// AutoIncrementDetector is forwarded explicitly because embedding the
// interface hides it.
type borrowed struct {
	Catalog
}

func (borrowed) Release() {}

func (b borrowed) AutoIncrementColumns(ctx context.Context, ref TableRef) ([]string, error) {
	if p, ok := b.Catalog.(AutoIncrementDetector); ok {
		return p.AutoIncrementColumns(ctx, ref)
	}
	return nil, errUnsupportedDetection
}
