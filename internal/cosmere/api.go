package cosmere

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/billmal071/cosmere/internal/auth"
)

const (
	// DefaultTimeout bounds every request.
	DefaultTimeout = 10 * time.Second
	// DefaultSearchSize is the number of global search results requested.
	DefaultSearchSize = 20

	maxErrorBody = 4 << 10
)

// errEmptyBody marks a 2xx response with no content. Detail lookups treat it
// as not-found; list and search treat it as an empty result.
var errEmptyBody = fmt.Errorf("empty response: %w", ErrNotFound)

// TokenSource supplies the optional bearer token and clears it when the API
// rejects it.
type TokenSource interface {
	Token() (string, error)
	ClearToken() error
}

// Options configures an HTTPClient. Everything is injected; the client reads
// no ambient state.
type Options struct {
	BaseURL string
	Timeout time.Duration
	Tokens  TokenSource
	Logger  *zap.Logger
	// HTTPClient overrides the transport; its Timeout is replaced by Timeout.
	HTTPClient *http.Client
	// Dedupe lets concurrent identical GETs share one request.
	Dedupe bool
	Now    func() time.Time
}

// HTTPClient talks to the Cosmere REST API.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	log     *zap.Logger
	dedupe  bool
	group   singleflight.Group
	now     func() time.Time
}

// NewHTTPClient creates a new API client
func NewHTTPClient(opts Options) *HTTPClient {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	hc := &http.Client{}
	if opts.HTTPClient != nil {
		copied := *opts.HTTPClient
		hc = &copied
	}
	hc.Timeout = timeout

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &HTTPClient{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http:    hc,
		tokens:  opts.Tokens,
		log:     log.Named("api"),
		dedupe:  opts.Dedupe,
		now:     now,
	}
}

// BaseURL returns the configured API root.
func (c *HTTPClient) BaseURL() string { return c.baseURL }

// request performs one call and decodes a 2xx body into out (when non-nil).
func (c *HTTPClient) request(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var payload []byte
	if in != nil {
		if v, ok := in.(Validator); ok {
			if err := v.Validate(); err != nil {
				return fmt.Errorf("invalid %s payload: %w", strings.TrimPrefix(path, "/"), err)
			}
		}
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(in); err != nil {
			return err
		}
		payload = buf.Bytes()
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body []byte
	var err error
	if method == http.MethodGet && c.dedupe {
		var v any
		v, err, _ = c.group.Do(target, func() (any, error) {
			return c.roundTrip(ctx, method, path, target, nil)
		})
		if err == nil {
			body = v.([]byte)
		}
	} else {
		body, err = c.roundTrip(ctx, method, path, target, payload)
	}
	if err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return errEmptyBody
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *HTTPClient) roundTrip(ctx context.Context, method, path, target string, payload []byte) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := c.now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() == context.Canceled {
			return nil, ctx.Err()
		}
		c.log.Debug("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return nil, &NetworkError{Method: method, Path: path, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	c.log.Debug("request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", c.now().Sub(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := &APIError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(data),
		}
		if resp.StatusCode == http.StatusUnauthorized {
			c.clearToken("rejected by server")
		}
		return nil, apiErr
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Method: method, Path: path, Err: err}
	}
	return data, nil
}

// bearer returns the stored token, dropping one whose JWT expiry has passed.
func (c *HTTPClient) bearer() string {
	if c.tokens == nil {
		return ""
	}
	token, err := c.tokens.Token()
	if err != nil {
		c.log.Warn("failed to read auth token", zap.Error(err))
		return ""
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return ""
	}
	if auth.Inspect(token).Expired(c.now()) {
		c.clearToken("expired")
		return ""
	}
	return token
}

func (c *HTTPClient) clearToken(reason string) {
	if c.tokens == nil {
		return
	}
	if err := c.tokens.ClearToken(); err != nil {
		c.log.Warn("failed to clear auth token", zap.Error(err))
		return
	}
	c.log.Info("auth token cleared", zap.String("reason", reason))
}

// errorMessage extracts a human message from an error body. FastAPI-style
// {"detail": ...} bodies are preferred; plain text is used as-is.
func errorMessage(data []byte) string {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return ""
	}
	var body map[string]any
	if err := json.Unmarshal(data, &body); err == nil {
		for _, key := range []string{"detail", "error", "message"} {
			switch v := body[key].(type) {
			case string:
				if v != "" {
					return v
				}
			case nil:
			default:
				if b, err := json.Marshal(v); err == nil {
					return string(b)
				}
			}
		}
	}
	return Truncate(string(data), 200)
}

func entityPath(r Resource, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("%s id is required", r.Singular())
	}
	return r.Path() + "/" + url.PathEscape(id), nil
}

func list[T any](ctx context.Context, c *HTTPClient, r Resource, opts ListOptions) (*Page[T], error) {
	if err := opts.Filters.Validate(r); err != nil {
		return nil, err
	}
	page := &Page[T]{}
	if err := c.request(ctx, http.MethodGet, r.Path(), opts.Query(), nil, page); err != nil {
		if errors.Is(err, errEmptyBody) {
			return &Page[T]{Items: []T{}, Skip: opts.Skip, Limit: opts.Limit}, nil
		}
		return nil, err
	}
	if page.Items == nil {
		page.Items = []T{}
	}
	return page, nil
}

func get[T any](ctx context.Context, c *HTTPClient, r Resource, id string) (*T, error) {
	path, err := entityPath(r, id)
	if err != nil {
		return nil, err
	}
	out := new(T)
	if err := c.request(ctx, http.MethodGet, path, nil, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

func create[T any](ctx context.Context, c *HTTPClient, r Resource, in any) (*T, error) {
	out := new(T)
	if err := c.request(ctx, http.MethodPost, r.Path(), nil, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func update[T any](ctx context.Context, c *HTTPClient, r Resource, id string, in any) (*T, error) {
	path, err := entityPath(r, id)
	if err != nil {
		return nil, err
	}
	out := new(T)
	if err := c.request(ctx, http.MethodPut, path, nil, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func remove(ctx context.Context, c *HTTPClient, r Resource, id string) error {
	path, err := entityPath(r, id)
	if err != nil {
		return err
	}
	return c.request(ctx, http.MethodDelete, path, nil, nil, nil)
}

func (c *HTTPClient) ListCharacters(ctx context.Context, opts ListOptions) (*Page[Character], error) {
	return list[Character](ctx, c, Characters, opts)
}

func (c *HTTPClient) GetCharacter(ctx context.Context, id string) (*Character, error) {
	return get[Character](ctx, c, Characters, id)
}

func (c *HTTPClient) CreateCharacter(ctx context.Context, in CharacterCreate) (*Character, error) {
	return create[Character](ctx, c, Characters, in)
}

func (c *HTTPClient) UpdateCharacter(ctx context.Context, id string, in CharacterUpdate) (*Character, error) {
	return update[Character](ctx, c, Characters, id, in)
}

func (c *HTTPClient) DeleteCharacter(ctx context.Context, id string) error {
	return remove(ctx, c, Characters, id)
}

func (c *HTTPClient) ListBooks(ctx context.Context, opts ListOptions) (*Page[Book], error) {
	return list[Book](ctx, c, Books, opts)
}

func (c *HTTPClient) GetBook(ctx context.Context, id string) (*Book, error) {
	return get[Book](ctx, c, Books, id)
}

func (c *HTTPClient) CreateBook(ctx context.Context, in BookCreate) (*Book, error) {
	return create[Book](ctx, c, Books, in)
}

func (c *HTTPClient) UpdateBook(ctx context.Context, id string, in BookUpdate) (*Book, error) {
	return update[Book](ctx, c, Books, id, in)
}

func (c *HTTPClient) DeleteBook(ctx context.Context, id string) error {
	return remove(ctx, c, Books, id)
}

func (c *HTTPClient) ListWorlds(ctx context.Context, opts ListOptions) (*Page[World], error) {
	return list[World](ctx, c, Worlds, opts)
}

func (c *HTTPClient) GetWorld(ctx context.Context, id string) (*World, error) {
	return get[World](ctx, c, Worlds, id)
}

func (c *HTTPClient) CreateWorld(ctx context.Context, in WorldCreate) (*World, error) {
	return create[World](ctx, c, Worlds, in)
}

func (c *HTTPClient) UpdateWorld(ctx context.Context, id string, in WorldUpdate) (*World, error) {
	return update[World](ctx, c, Worlds, id, in)
}

func (c *HTTPClient) DeleteWorld(ctx context.Context, id string) error {
	return remove(ctx, c, Worlds, id)
}

func (c *HTTPClient) ListMagicSystems(ctx context.Context, opts ListOptions) (*Page[MagicSystem], error) {
	return list[MagicSystem](ctx, c, MagicSystems, opts)
}

func (c *HTTPClient) GetMagicSystem(ctx context.Context, id string) (*MagicSystem, error) {
	return get[MagicSystem](ctx, c, MagicSystems, id)
}

func (c *HTTPClient) CreateMagicSystem(ctx context.Context, in MagicSystemCreate) (*MagicSystem, error) {
	return create[MagicSystem](ctx, c, MagicSystems, in)
}

func (c *HTTPClient) UpdateMagicSystem(ctx context.Context, id string, in MagicSystemUpdate) (*MagicSystem, error) {
	return update[MagicSystem](ctx, c, MagicSystems, id, in)
}

func (c *HTTPClient) DeleteMagicSystem(ctx context.Context, id string) error {
	return remove(ctx, c, MagicSystems, id)
}

func (c *HTTPClient) ListSeries(ctx context.Context, opts ListOptions) (*Page[Series], error) {
	return list[Series](ctx, c, SeriesList, opts)
}

func (c *HTTPClient) GetSeries(ctx context.Context, id string) (*Series, error) {
	return get[Series](ctx, c, SeriesList, id)
}

func (c *HTTPClient) CreateSeries(ctx context.Context, in SeriesCreate) (*Series, error) {
	return create[Series](ctx, c, SeriesList, in)
}

func (c *HTTPClient) UpdateSeries(ctx context.Context, id string, in SeriesUpdate) (*Series, error) {
	return update[Series](ctx, c, SeriesList, id, in)
}

func (c *HTTPClient) DeleteSeries(ctx context.Context, id string) error {
	return remove(ctx, c, SeriesList, id)
}

func (c *HTTPClient) ListShards(ctx context.Context, opts ListOptions) (*Page[Shard], error) {
	return list[Shard](ctx, c, Shards, opts)
}

func (c *HTTPClient) GetShard(ctx context.Context, id string) (*Shard, error) {
	return get[Shard](ctx, c, Shards, id)
}

func (c *HTTPClient) CreateShard(ctx context.Context, in ShardCreate) (*Shard, error) {
	return create[Shard](ctx, c, Shards, in)
}

func (c *HTTPClient) UpdateShard(ctx context.Context, id string, in ShardUpdate) (*Shard, error) {
	return update[Shard](ctx, c, Shards, id, in)
}

func (c *HTTPClient) DeleteShard(ctx context.Context, id string) error {
	return remove(ctx, c, Shards, id)
}

// related fetches the records under a sub-resource of an entity. A bare
// array and a paginated envelope are both accepted; an empty body is an
// empty result.
func related[T any](ctx context.Context, c *HTTPClient, noun, prefix, id, suffix string) ([]T, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%s id is required", noun)
	}
	path := prefix + "/" + url.PathEscape(id) + suffix
	var raw json.RawMessage
	if err := c.request(ctx, http.MethodGet, path, nil, nil, &raw); err != nil {
		if errors.Is(err, errEmptyBody) {
			return []T{}, nil
		}
		return nil, err
	}
	return decodeItems[T](raw, path)
}

func decodeItems[T any](raw json.RawMessage, path string) ([]T, error) {
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		var page Page[T]
		if err := json.Unmarshal(raw, &page); err != nil {
			return nil, fmt.Errorf("failed to decode GET %s response: %w", path, err)
		}
		items = page.Items
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// CharacterRelationships lists the relationships of character id.
func (c *HTTPClient) CharacterRelationships(ctx context.Context, id string) ([]Relationship, error) {
	return related[Relationship](ctx, c, "character", Characters.Path(), id, "/relationships")
}

// CharacterAppearances lists the books character id appears in.
func (c *HTTPClient) CharacterAppearances(ctx context.Context, id string) ([]Book, error) {
	return related[Book](ctx, c, "character", Characters.Path(), id, "/appearances")
}

// WorldCharacters lists the characters originating on world id.
func (c *HTTPClient) WorldCharacters(ctx context.Context, id string) ([]Character, error) {
	return related[Character](ctx, c, "world", Worlds.Path(), id, "/characters")
}

// WorldMagicSystems lists the magic systems of world id.
func (c *HTTPClient) WorldMagicSystems(ctx context.Context, id string) ([]MagicSystem, error) {
	return related[MagicSystem](ctx, c, "world", Worlds.Path(), id, "/magic-systems")
}

// BooksBySeries lists the books of a series.
func (c *HTTPClient) BooksBySeries(ctx context.Context, seriesID string) ([]Book, error) {
	return related[Book](ctx, c, "series", Books.Path()+"/series", seriesID, "")
}

// BooksByWorld lists the books set on a world.
func (c *HTTPClient) BooksByWorld(ctx context.Context, worldID string) ([]Book, error) {
	return related[Book](ctx, c, "world", Books.Path()+"/world", worldID, "")
}

// GlobalSearch returns suggestion summaries across every entity type.
func (c *HTTPClient) GlobalSearch(ctx context.Context, query string, size int) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []SearchResult{}, nil
	}
	if size <= 0 {
		size = DefaultSearchSize
	}
	q := url.Values{}
	q.Set("q", query)
	q.Set("size", strconv.Itoa(size))

	var raw json.RawMessage
	if err := c.request(ctx, http.MethodGet, "/search/global", q, nil, &raw); err != nil {
		if errors.Is(err, errEmptyBody) {
			return []SearchResult{}, nil
		}
		return nil, err
	}
	return decodeSearchResults(raw)
}

// decodeSearchResults accepts a bare array or an envelope with "results" or
// "items", both of which the API has served.
func decodeSearchResults(raw json.RawMessage) ([]SearchResult, error) {
	var results []SearchResult
	if err := json.Unmarshal(raw, &results); err == nil {
		if results == nil {
			results = []SearchResult{}
		}
		return results, nil
	}
	var env struct {
		Results []SearchResult `json:"results"`
		Items   []SearchResult `json:"items"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("failed to decode search results: %w", err)
	}
	out := env.Results
	if out == nil {
		out = env.Items
	}
	if out == nil {
		out = []SearchResult{}
	}
	return out, nil
}

// Health checks the API health endpoint.
func (c *HTTPClient) Health(ctx context.Context) (*Health, error) {
	h := &Health{}
	if err := c.request(ctx, http.MethodGet, "/health", nil, nil, h); err != nil {
		return nil, err
	}
	return h, nil
}
