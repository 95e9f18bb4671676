package arvan

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	logrtesting "github.com/go-logr/logr/testing"
)

const apiPrefix = "/cdn/4.0/domains"

// fakeArvan is a minimal in-memory ArvanCloud domains API.
type fakeArvan struct {
	mu       sync.Mutex
	pages    [][]string // zone names per page
	records  map[string][]fakeRecord
	bodies   []map[string]interface{}
	calls    []string // "METHOD path?query" in order
	headers  http.Header
	override func(w http.ResponseWriter, r *http.Request) bool
	nextID   int
}

type fakeRecord struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Name string `json:"name"`
	Text string `json:"-"`
}

func newFakeArvan(zones ...string) *fakeArvan {
	return &fakeArvan{
		pages:   [][]string{zones},
		records: map[string][]fakeRecord{},
	}
}

func (f *fakeArvan) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	call := r.Method + " " + r.URL.Path
	if r.URL.RawQuery != "" {
		call += "?" + r.URL.RawQuery
	}
	f.calls = append(f.calls, call)
	f.headers = r.Header.Clone()
	override := f.override
	f.mu.Unlock()

	if override != nil && override(w, r) {
		return
	}

	path := strings.TrimPrefix(r.URL.Path, apiPrefix)
	switch {
	case path == "" || path == "/":
		f.handleZones(w, r)
	case strings.HasSuffix(path, "/dns-records") && r.Method == http.MethodPost:
		f.handleCreate(w, r, zoneFromPath(path))
	case strings.HasSuffix(path, "/dns-records") && r.Method == http.MethodGet:
		f.handleSearch(w, r, zoneFromPath(path))
	case strings.Contains(path, "/dns-records/") && r.Method == http.MethodDelete:
		f.handleDelete(w, r, zoneFromPath(path), path[strings.LastIndex(path, "/")+1:])
	default:
		http.NotFound(w, r)
	}
}

func zoneFromPath(path string) string {
	return strings.Split(strings.TrimPrefix(path, "/"), "/")[0]
}

func (f *fakeArvan) handleZones(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 || page > len(f.pages) {
		page = 1
	}
	data := []map[string]string{}
	for _, name := range f.pages[page-1] {
		data = append(data, map[string]string{"name": name})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": data,
		"meta": map[string]int{"current_page": page, "last_page": len(f.pages)},
	})
}

func (f *fakeArvan) handleCreate(w http.ResponseWriter, r *http.Request, zone string) {
	var body map[string]interface{}
	if err := readJSON(r, &body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.bodies = append(f.bodies, body)

	name, _ := body["name"].(string)
	text := ""
	if v, ok := body["value"].(map[string]interface{}); ok {
		text, _ = v["text"].(string)
	}
	for _, rec := range f.records[zone] {
		if rec.Name == name && rec.Text == text {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": "DNS record Already Exists"})
			return
		}
	}
	f.nextID++
	rec := fakeRecord{ID: fmt.Sprintf("rec-%d", f.nextID), Type: "txt", Name: name, Text: text}
	f.records[zone] = append(f.records[zone], rec)
	writeJSON(w, http.StatusCreated, map[string]interface{}{"data": rec})
}

func (f *fakeArvan) handleSearch(w http.ResponseWriter, r *http.Request, zone string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	search := r.URL.Query().Get("search")
	data := []fakeRecord{}
	for _, rec := range f.records[zone] {
		// Fuzzy like the real API: substring match.
		if strings.Contains(rec.Name, search) {
			data = append(data, rec)
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": data})
}

func (f *fakeArvan) handleDelete(w http.ResponseWriter, _ *http.Request, zone, id string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	recs := f.records[zone]
	for i, rec := range recs {
		if rec.ID == id {
			f.records[zone] = append(recs[:i], recs[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
			return
		}
	}
	http.Error(w, `{"message":"not found"}`, http.StatusNotFound)
}

func (f *fakeArvan) recordNames(zone string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var names []string
	for _, rec := range f.records[zone] {
		names = append(names, rec.Name)
	}
	return names
}

func (f *fakeArvan) createBodies() []map[string]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]interface{}(nil), f.bodies...)
}

func (f *fakeArvan) callsWithPrefix(prefix string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v interface{}) error {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// newTestProvider starts fake behind an httptest server and returns a provider pointed at it.
func newTestProvider(t *testing.T, fake *fakeArvan, extra map[string]string) *Provider {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	settings := map[string]string{
		"api_key":  "test-key",
		"base_url": srv.URL + apiPrefix,
	}
	for k, v := range extra {
		settings[k] = v
	}
	p, err := New(logrtesting.NewTestLogger(t), settings)
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	return p
}
