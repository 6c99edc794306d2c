package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/koustreak/ddlgen/internal/database"
	"github.com/koustreak/ddlgen/internal/dialect"
	"github.com/koustreak/ddlgen/internal/errs"
	"github.com/koustreak/ddlgen/internal/meta"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.opts.Ping != nil {
		if err := s.opts.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"error":  err.Error(),
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDialects(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"dialects": dialect.Supported(),
		"default":  s.opts.Dialect,
	})
}

func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	f := s.filter(r)
	f.TableNamePattern = q.Get("pattern")

	types := q["type"]
	if len(types) == 0 {
		types = s.opts.Types
	}

	names, err := s.in.ListTableNames(r.Context(), f, types...)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tables": names})
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	t, err := s.table(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if strings.EqualFold(r.URL.Query().Get("format"), "yaml") {
		writeYAML(w, http.StatusOK, t)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleColumns(w http.ResponseWriter, r *http.Request) {
	f := s.filter(r)
	cols, err := s.in.ColumnMeta(r.Context(), f.Catalog, f.Schema, chi.URLParam(r, "table"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if len(cols) == 0 {
		writeError(w, r, errs.Newf(errs.ErrKindNotFound, "table %s not found", chi.URLParam(r, "table")))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"columns": cols})
}

func (s *Server) handleDDL(w http.ResponseWriter, r *http.Request) {
	d := s.opts.Dialect
	if name := r.URL.Query().Get("dialect"); name != "" {
		parsed, err := dialect.ParseType(name)
		if err != nil {
			writeError(w, r, err)
			return
		}
		d = parsed
	}
	g, err := dialect.Resolve(d)
	if err != nil {
		writeError(w, r, err)
		return
	}

	t, err := s.table(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	script, err := dialect.CreateTableFor(g, t)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeText(w, http.StatusOK, script+"\n")
}

// table loads the table named in the path. The name goes to the catalog as
// a LIKE pattern, so the result is narrowed to the exact name.
func (s *Server) table(r *http.Request) (*meta.TableMeta, error) {
	name := chi.URLParam(r, "table")

	f := s.filter(r)
	f.TableNamePattern = name

	tables, err := s.in.TableMeta(r.Context(), f, s.tableTypes()...)
	if err != nil {
		return nil, err
	}
	for _, t := range tables {
		if t.TableName == name {
			return t, nil
		}
	}
	return nil, errs.Newf(errs.ErrKindNotFound, "table %s not found", name)
}

// tableTypes widens the configured types to views so single-table routes
// can describe them too.
func (s *Server) tableTypes() []string {
	if len(s.opts.Types) > 0 {
		return s.opts.Types
	}
	return []string{"TABLE", "VIEW"}
}

func (s *Server) filter(r *http.Request) database.Filter {
	f := s.opts.Filter
	if schema := r.URL.Query().Get("schema"); schema != "" {
		f.Schema = schema
	}
	return f
}
