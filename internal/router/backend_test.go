package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/oksasatya/course-admin/internal/domain/entity"
)

type failure struct {
	status  int
	message string
}

// backend is a minimal in-memory stand-in for the course platform REST API.
type backend struct {
	mu       sync.Mutex
	seq      int
	token    string
	data     map[string][]map[string]any
	fail     map[string]failure
	requests []string
	uploads  []string
	revenue  []entity.RevenuePoint
}

func newBackend(token string) *backend {
	return &backend{token: token, data: map[string][]map[string]any{}, fail: map[string]failure{}}
}

func (b *backend) seed(coll string, recs ...map[string]any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data[coll] = append(b.data[coll], recs...)
}

func (b *backend) failNext(key string, status int, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fail[key] = failure{status: status, message: message}
}

func (b *backend) saw(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, r := range b.requests {
		if r == key {
			return true
		}
	}
	return false
}

// rotate makes the backend reject the token it issued before.
func (b *backend) rotate(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.token = token
}

func (b *backend) record(coll, id string) map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.find(coll, id)
}

func (b *backend) uploaded() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.uploads...)
}

func write(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"message": message, "data": data})
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := r.Method + " " + r.URL.Path
	b.requests = append(b.requests, key)
	if f, ok := b.fail[key]; ok {
		delete(b.fail, key)
		write(w, f.status, f.message, nil)
		return
	}

	if key == "POST /user/login" {
		var req struct{ Email, Password string }
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "secret" {
			write(w, http.StatusUnauthorized, "invalid email or password", nil)
			return
		}
		role := entity.RoleAdmin
		if strings.HasPrefix(req.Email, "student") {
			role = entity.RoleStudent
		}
		write(w, http.StatusOK, "welcome", map[string]any{
			"token": b.token,
			"user":  map[string]any{"_id": "staff-1", "name": "Amal", "email": req.Email, "role": role},
		})
		return
	}
	if r.Header.Get("Authorization") != "Bearer "+b.token {
		write(w, http.StatusUnauthorized, "jwt expired", nil)
		return
	}
	if key == "GET /analytics/revenue" {
		write(w, http.StatusOK, "revenue", b.revenue)
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	coll, id := parts[0], ""
	if len(parts) > 1 {
		id = parts[1]
	}
	switch {
	case r.Method == http.MethodGet && id == "":
		out := b.data[coll]
		if out == nil {
			out = []map[string]any{}
		}
		write(w, http.StatusOK, "list", out)
	case r.Method == http.MethodGet:
		if rec := b.find(coll, id); rec != nil {
			write(w, http.StatusOK, "found", rec)
			return
		}
		write(w, http.StatusNotFound, coll+" not found", nil)
	case r.Method == http.MethodPost:
		rec := b.body(r)
		b.seq++
		rec["_id"] = fmt.Sprintf("%s-%d", coll, b.seq)
		b.data[coll] = append(b.data[coll], rec)
		write(w, http.StatusCreated, "created", rec)
	case r.Method == http.MethodPatch:
		rec := b.find(coll, id)
		if rec == nil {
			write(w, http.StatusNotFound, coll+" not found", nil)
			return
		}
		for k, v := range b.body(r) {
			rec[k] = v
		}
		write(w, http.StatusOK, "updated", rec)
	case r.Method == http.MethodDelete:
		recs := b.data[coll]
		for i, rec := range recs {
			if rec["_id"] == id {
				b.data[coll] = append(recs[:i], recs[i+1:]...)
				write(w, http.StatusOK, "deleted", nil)
				return
			}
		}
		write(w, http.StatusNotFound, coll+" not found", nil)
	default:
		write(w, http.StatusMethodNotAllowed, "method not allowed", nil)
	}
}

func (b *backend) find(coll, id string) map[string]any {
	for _, rec := range b.data[coll] {
		if rec["_id"] == id {
			return rec
		}
	}
	return nil
}

func (b *backend) body(r *http.Request) map[string]any {
	rec := map[string]any{}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			return rec
		}
		for k, v := range r.MultipartForm.Value {
			setField(rec, k, v[0])
		}
		for _, fhs := range r.MultipartForm.File {
			for _, fh := range fhs {
				b.uploads = append(b.uploads, fh.Filename)
			}
		}
		return rec
	}
	_ = json.NewDecoder(r.Body).Decode(&rec)
	return rec
}

// setField stores a flattened form value such as "title[en]" back into a
// nested record, reading numbers and booleans as such.
func setField(rec map[string]any, key, raw string) {
	var v any = raw
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		v = f
	} else if bv, err := strconv.ParseBool(raw); err == nil {
		v = bv
	}
	name, sub, nested := strings.Cut(key, "[")
	if !nested {
		rec[key] = v
		return
	}
	inner, _ := rec[name].(map[string]any)
	if inner == nil {
		inner = map[string]any{}
		rec[name] = inner
	}
	inner[strings.TrimSuffix(sub, "]")] = raw
}
