package dialect

import (
	"sort"
	"strings"

	"github.com/koustreak/ddlgen/internal/errs"
)

// constructors is filled once here and only read afterwards.
var constructors = map[Type]func() Generator{
	MySQL:      NewMySQL,
	DM:         NewDM,
	PostgreSQL: NewPostgreSQL,
}

// names accepted by ParseType besides the canonical identifiers.
var typeAliases = map[string]Type{
	"mariadb":  MySQL,
	"dameng":   DM,
	"postgres": PostgreSQL,
	"pg":       PostgreSQL,
}

// Resolve returns the generator for t.
func Resolve(t Type) (Generator, error) {
	newGen, ok := constructors[t]
	if !ok {
		return nil, errs.Newf(errs.ErrKindUnsupported, "unsupported database type: %s", t)
	}
	return newGen(), nil
}

// ParseType maps a user-supplied dialect name to its Type, ignoring case.
func ParseType(s string) (Type, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if t, ok := typeAliases[name]; ok {
		return t, nil
	}
	if _, ok := constructors[Type(name)]; ok {
		return Type(name), nil
	}
	return "", errs.Newf(errs.ErrKindUnsupported, "unsupported database type: %s", s)
}

// Supported lists the registered dialects in name order.
func Supported() []Type {
	types := make([]Type, 0, len(constructors))
	for t := range constructors {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
