// Package archive stores generated DDL scripts in object storage, one object
// per table and dialect, under <prefix>/<dialect>/<schema>/<table>.sql.
//
// Usage:
//
//	store, err := minio.New(ctx, storeCfg)
//	if err != nil { ... }
//	a := archive.New(store, storeCfg.Bucket, "ddl")
//	results, err := a.Export(ctx, generator, tables)
package archive

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"io"
	"path"
	"strings"

	"github.com/koustreak/ddlgen/internal/dialect"
	"github.com/koustreak/ddlgen/internal/errs"
	"github.com/koustreak/ddlgen/internal/filestore"
	"github.com/koustreak/ddlgen/internal/logger"
	"github.com/koustreak/ddlgen/internal/meta"
)

const (
	contentType = "application/sql"

	// defaultSchema names the directory of tables without a schema.
	defaultSchema = "_"
)

// Archive writes scripts through a filestore.Store. It holds no state
// besides its settings and is safe for concurrent use when the store is.
type Archive struct {
	store  filestore.Store
	bucket string
	prefix string
}

// Result reports what happened to one table's script.
type Result struct {
	Table   string `json:"table"`
	Key     string `json:"key"`
	ETag    string `json:"etag"`
	Skipped bool   `json:"skipped"` // stored object already had this content
}

// New returns an Archive writing to bucket under prefix.
func New(store filestore.Store, bucket, prefix string) *Archive {
	return &Archive{
		store:  store,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

// Key returns the object key for a table's script in dialect d.
func (a *Archive) Key(d dialect.Type, schema, table string) string {
	if schema == "" {
		schema = defaultSchema
	}
	return path.Join(a.prefix, string(d), schema, table+".sql")
}

// Export renders every table with g and stores the scripts. Tables without
// columns render nothing and are left out of the result.
func (a *Archive) Export(ctx context.Context, g dialect.Generator, tables []*meta.TableMeta) ([]Result, error) {
	if err := a.store.EnsureBucket(ctx, a.bucket); err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(tables))
	for _, t := range tables {
		script, err := dialect.CreateTableFor(g, t)
		if err != nil {
			return results, err
		}
		if script == "" {
			continue
		}

		r, err := a.Put(ctx, g.Type(), t.Schema, t.TableName, script)
		if err != nil {
			return results, err
		}
		results = append(results, r)
	}
	return results, nil
}

// Put stores one script. The upload is skipped when the stored object's
// ETag already equals the MD5 of the new content.
func (a *Archive) Put(ctx context.Context, d dialect.Type, schema, table, script string) (Result, error) {
	log := logger.FromContext(ctx)

	body := script + "\n"
	sum := md5.Sum([]byte(body))
	etag := hex.EncodeToString(sum[:])

	r := Result{Table: table, Key: a.Key(d, schema, table), ETag: etag}

	stat, err := a.store.StatObject(ctx, a.bucket, r.Key)
	switch {
	case err == nil && strings.EqualFold(stat.ETag, etag):
		r.Skipped = true
		log.DebugWith("archived script unchanged", map[string]any{"key": r.Key})
		return r, nil
	case err != nil && !errs.IsNotFound(err):
		return r, err
	}

	info, err := a.store.PutObject(ctx, a.bucket, r.Key, strings.NewReader(body), int64(len(body)),
		filestore.PutOptions{ContentType: contentType})
	if err != nil {
		return r, err
	}
	if info.ETag != "" {
		r.ETag = info.ETag
	}

	log.InfoWith("script archived", map[string]any{
		"bucket": a.bucket,
		"key":    r.Key,
		"bytes":  len(body),
	})
	return r, nil
}

// List returns the archived scripts of dialect d.
func (a *Archive) List(ctx context.Context, d dialect.Type) ([]filestore.ObjectInfo, error) {
	return a.store.ListObjects(ctx, a.bucket, filestore.ListOptions{
		Prefix:    path.Join(a.prefix, string(d)) + "/",
		Recursive: true,
	})
}

// Fetch reads back an archived script, without its trailing newline.
func (a *Archive) Fetch(ctx context.Context, d dialect.Type, schema, table string) (string, error) {
	obj, err := a.store.GetObject(ctx, a.bucket, a.Key(d, schema, table))
	if err != nil {
		return "", err
	}
	defer obj.Close()

	b, err := io.ReadAll(obj)
	if err != nil {
		return "", errs.Wrap(errs.ErrKindQueryFailed, "failed to read archived script", err)
	}
	return strings.TrimSuffix(string(b), "\n"), nil
}
