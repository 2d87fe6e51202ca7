// Package apitest serves an in-memory rendition of the Cosmere REST API for
// tests. Records are kept as decoded JSON objects so fixtures can mix the
// embedded and string-encoded forms of nested fields.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/billmal071/cosmere/internal/cosmere"
)

// BasePath is the API prefix the server mounts its routes under.
const BasePath = "/api/v1"

// Request is one recorded call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Auth   string
}

// Server is a fake Cosmere API on an httptest.Server.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	data     map[cosmere.Resource][]map[string]any
	links    Links
	token    string
	delays   map[string]time.Duration
	failures map[string]int
	empty    map[string]bool
	calls    map[string]int
	requests []Request
}

// New starts a server seeded with the default fixtures. It is closed when the
// test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := NewServer()
	t.Cleanup(s.Close)
	return s
}

// NewServer starts a seeded server; the caller closes it.
func NewServer() *Server {
	gin.SetMode(gin.TestMode)
	s := &Server{
		data:     Fixtures(),
		links:    LinkFixtures(),
		delays:   make(map[string]time.Duration),
		failures: make(map[string]int),
		empty:    make(map[string]bool),
		calls:    make(map[string]int),
	}
	s.Server = httptest.NewServer(s.router())
	return s
}

// URL returns the API root, suitable for api.base_url.
func (s *Server) URL() string { return s.Server.URL + BasePath }

// RequireToken makes every route answer 401 unless the request carries
// "Bearer <token>". An empty token turns enforcement off.
func (s *Server) RequireToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// SetDelay holds responses for path (relative to BasePath) for d, or until
// the client gives up.
func (s *Server) SetDelay(path string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays[path] = d
}

// Fail makes path answer status. A zero status clears the failure.
func (s *Server) Fail(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.failures, path)
		return
	}
	s.failures[path] = status
}

// SetEmpty makes path answer 200 with no body.
func (s *Server) SetEmpty(path string, on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.empty[path] = on
}

// Calls counts requests for method and path (relative to BasePath).
func (s *Server) Calls(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method+" "+path]
}

// Requests returns every recorded call in arrival order.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// LastRequest returns the most recent call to path.
func (s *Server) LastRequest(method, path string) (Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.requests) - 1; i >= 0; i-- {
		if r := s.requests[i]; r.Method == method && r.Path == path {
			return r, true
		}
	}
	return Request{}, false
}

// ResetCalls forgets recorded calls.
func (s *Server) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = make(map[string]int)
	s.requests = nil
}

// Put inserts or replaces a record.
func (s *Server) Put(r cosmere.Resource, rec map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := str(rec["id"])
	for i, existing := range s.data[r] {
		if str(existing["id"]) == id {
			s.data[r][i] = rec
			return
		}
	}
	s.data[r] = append(s.data[r], rec)
}

// Has reports whether a record exists.
func (s *Server) Has(r cosmere.Resource, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index(r, id) >= 0
}

// Count returns the number of records of r.
func (s *Server) Count(r cosmere.Resource) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data[r])
}

func (s *Server) router() http.Handler {
	router := gin.New()
	router.Use(gin.Recovery())
	api := router.Group(BasePath, s.record, s.authorize, s.inject)

	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "cosmere-api", "version": "test"})
	})
	api.GET("/search/global", s.search)

	for _, r := range cosmere.Resources {
		h := &resourceHandler{s: s, r: r}
		rg := api.Group(r.Path())
		rg.GET("", h.list)
		rg.GET("/:id", h.get)
		rg.POST("", h.create)
		rg.PUT("/:id", h.update)
		rg.DELETE("/:id", h.remove)
	}
	s.linkRoutes(api)
	return router
}

func relPath(c *gin.Context) string {
	return strings.TrimPrefix(c.Request.URL.Path, BasePath)
}

func (s *Server) record(c *gin.Context) {
	path := relPath(c)
	s.mu.Lock()
	s.calls[c.Request.Method+" "+path]++
	s.requests = append(s.requests, Request{
		Method: c.Request.Method,
		Path:   path,
		Query:  c.Request.URL.Query(),
		Auth:   c.GetHeader("Authorization"),
	})
	s.mu.Unlock()
	c.Next()
}

func (s *Server) authorize(c *gin.Context) {
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()
	if token == "" {
		c.Next()
		return
	}
	h := c.GetHeader("Authorization")
	if !strings.HasPrefix(strings.ToLower(h), "bearer ") || strings.TrimSpace(h[len("Bearer "):]) != token {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Not authenticated"})
		return
	}
	c.Next()
}

func (s *Server) inject(c *gin.Context) {
	path := relPath(c)
	s.mu.Lock()
	delay := s.delays[path]
	status := s.failures[path]
	empty := s.empty[path]
	s.mu.Unlock()

	if delay > 0 {
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-c.Request.Context().Done():
			timer.Stop()
			c.Abort()
			return
		}
	}
	if status != 0 {
		c.AbortWithStatusJSON(status, gin.H{"detail": fmt.Sprintf("injected failure (%d)", status)})
		return
	}
	if empty {
		c.Status(http.StatusOK)
		c.Abort()
		return
	}
	c.Next()
}

func (s *Server) index(r cosmere.Resource, id string) int {
	for i, rec := range s.data[r] {
		if str(rec["id"]) == id {
			return i
		}
	}
	return -1
}

type resourceHandler struct {
	s *Server
	r cosmere.Resource
}

func (h *resourceHandler) notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"detail": capitalize(h.r.Singular()) + " not found"})
}

func (h *resourceHandler) list(c *gin.Context) {
	skip := parseInt(c.Query("skip"), 0)
	limit := parseInt(c.Query("limit"), 20)
	if limit < 1 || limit > 100 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "limit must be between 1 and 100"})
		return
	}
	if skip < 0 {
		skip = 0
	}

	h.s.mu.Lock()
	var matched []map[string]any
	for _, rec := range h.s.data[h.r] {
		if h.matches(rec, c.Request.URL.Query()) {
			matched = append(matched, rec)
		}
	}
	h.s.mu.Unlock()

	total := len(matched)
	items := []map[string]any{}
	if skip < total {
		end := skip + limit
		if end > total {
			end = total
		}
		items = matched[skip:end]
	}
	c.JSON(http.StatusOK, gin.H{
		"items":    items,
		"total":    total,
		"skip":     skip,
		"limit":    limit,
		"has_next": skip+limit < total,
		"has_prev": skip > 0,
	})
}

func (h *resourceHandler) matches(rec map[string]any, q url.Values) bool {
	for key, values := range q {
		if key == "skip" || key == "limit" || len(values) == 0 || values[0] == "" {
			continue
		}
		if !match(h.r, rec, key, values[0]) {
			return false
		}
	}
	return true
}

func match(r cosmere.Resource, rec map[string]any, key, val string) bool {
	switch key {
	case "search":
		return containsFold(str(rec["name"]), val) || containsFold(str(rec["title"]), val)
	case "publication_year":
		return strings.HasPrefix(str(rec["publication_date"]), val)
	case "has_shard":
		return (str(rec["shard_id"]) != "") == (val == "true")
	case "magic_ability":
		return containsFold(text(rec["magic_abilities"]), val)
	case "affiliation":
		return containsFold(text(rec["affiliations"]), val)
	case "world_id":
		if r == cosmere.Characters {
			return str(rec["world_of_origin_id"]) == val
		}
	}
	if _, known := rec[key]; !known && !r.Recognizes(key) {
		// unknown parameters are ignored, like the real API
		return true
	}
	return strings.EqualFold(str(rec[key]), val)
}

func (h *resourceHandler) get(c *gin.Context) {
	h.s.mu.Lock()
	i := h.s.index(h.r, c.Param("id"))
	var rec map[string]any
	if i >= 0 {
		rec = h.s.data[h.r][i]
	}
	h.s.mu.Unlock()
	if rec == nil {
		h.notFound(c)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *resourceHandler) create(c *gin.Context) {
	var rec map[string]any
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "invalid json"})
		return
	}
	id := str(rec["id"])
	if id == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "id is required"})
		return
	}
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	if h.s.index(h.r, id) >= 0 {
		c.JSON(http.StatusConflict, gin.H{"detail": capitalize(h.r.Singular()) + " already exists"})
		return
	}
	now := time.Now().UTC().Format(time.RFC3339)
	rec["created_at"] = now
	rec["updated_at"] = now
	h.s.data[h.r] = append(h.s.data[h.r], rec)
	c.JSON(http.StatusCreated, rec)
}

func (h *resourceHandler) update(c *gin.Context) {
	var patch map[string]any
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "invalid json"})
		return
	}
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	i := h.s.index(h.r, c.Param("id"))
	if i < 0 {
		h.notFound(c)
		return
	}
	rec := make(map[string]any, len(h.s.data[h.r][i]))
	for k, v := range h.s.data[h.r][i] {
		rec[k] = v
	}
	for k, v := range patch {
		if k == "id" {
			continue
		}
		rec[k] = v
	}
	rec["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	h.s.data[h.r][i] = rec
	c.JSON(http.StatusOK, rec)
}

func (h *resourceHandler) remove(c *gin.Context) {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	i := h.s.index(h.r, c.Param("id"))
	if i < 0 {
		h.notFound(c)
		return
	}
	h.s.data[h.r] = append(h.s.data[h.r][:i:i], h.s.data[h.r][i+1:]...)
	c.Status(http.StatusNoContent)
}

func (s *Server) search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "q must not be empty"})
		return
	}
	size := parseInt(c.Query("size"), 20)

	s.mu.Lock()
	var hits []cosmere.SearchResult
	for _, r := range cosmere.Resources {
		for _, rec := range s.data[r] {
			name := str(rec["name"])
			if name == "" {
				name = str(rec["title"])
			}
			if !containsFold(name, q) {
				continue
			}
			score := 0.5
			if strings.HasPrefix(strings.ToLower(name), strings.ToLower(q)) {
				score = 1
			}
			desc := str(rec["description"])
			if desc == "" {
				desc = str(rec["biography"])
			}
			if desc == "" {
				desc = str(rec["summary"])
			}
			hits = append(hits, cosmere.SearchResult{
				ID:          str(rec["id"]),
				Name:        name,
				Type:        strings.ReplaceAll(r.Singular(), "-", "_"),
				Description: desc,
				Score:       score,
			})
		}
	}
	s.mu.Unlock()

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	total := len(hits)
	if len(hits) > size {
		hits = hits[:size]
	}
	if hits == nil {
		hits = []cosmere.SearchResult{}
	}
	c.JSON(http.StatusOK, gin.H{
		"items":    hits,
		"total":    total,
		"query":    q,
		"has_next": len(hits) == size,
		"has_prev": false,
	})
}

func parseInt(s string, def int) int {
	if strings.TrimSpace(s) == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func str(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// text renders a nested field the way the API may hold it: as its string
// form, or as the JSON encoding of the embedded value.
func text(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if v == nil {
		return ""
	}
	b, _ := json.Marshal(v)
	return string(b)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
