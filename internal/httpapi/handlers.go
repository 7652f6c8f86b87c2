package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"taskflow/internal/export"
	"taskflow/internal/query"
	"taskflow/internal/store"
	"taskflow/internal/task"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter, err := query.ParseFilter(q.Get("filter"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	sortKey, err := query.ParseSort(q.Get("sort"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	tasks, st := s.store.Tasks(r.Context())
	setPersistError(w, st)

	view := query.Apply(tasks, query.Params{
		Filter:   filter,
		Search:   q.Get("search"),
		SortBy:   sortKey,
		Language: s.lang,
	}, s.now())
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var d task.Draft
	if err := decode(w, r, &d); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := d.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	created, st := s.store.Create(r.Context(), d)
	setPersistError(w, st)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	t, st := s.store.Find(r.Context(), id)
	setPersistError(w, st)
	if t == nil {
		writeNotFound(w, id)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var p task.Patch
	if err := decode(w, r, &p); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if p.IsEmpty() {
		writeError(w, http.StatusBadRequest, errors.New("nothing to change"))
		return
	}
	if err := p.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	id := chi.URLParam(r, "id")
	updated, st := s.store.Update(r.Context(), id, p)
	setPersistError(w, st)
	if updated == nil {
		writeNotFound(w, id)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	deleted, st := s.store.Delete(r.Context(), chi.URLParam(r, "id"))
	setPersistError(w, st)
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	toggled, st := s.store.ToggleComplete(r.Context(), id)
	setPersistError(w, st)
	if toggled == nil {
		writeNotFound(w, id)
		return
	}
	writeJSON(w, http.StatusOK, toggled)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	tasks, st := s.store.Tasks(r.Context())
	setPersistError(w, st)
	writeJSON(w, http.StatusOK, query.Summarize(tasks, s.now()))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	tasks, st := s.store.Tasks(r.Context())
	setPersistError(w, st)

	var buf bytes.Buffer
	if err := s.writeExport(&buf, format, tasks, s.now()); err != nil {
		s.log.Warn("export failed", "format", format, "error", err)
		writeError(w, http.StatusInternalServerError, fmt.Errorf("export %s: %w", format, err))
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="tasks.%s"`, format))
	w.Write(buf.Bytes())
}

// decode reads a JSON body. Fields the target does not know, such as the
// id or completed flag of a full task, are ignored.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func setPersistError(w http.ResponseWriter, st store.Status) {
	if !st.OK() {
		w.Header().Set(PersistErrorHeader, st.Err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeNotFound(w http.ResponseWriter, id string) {
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "task not found: " + id})
}
