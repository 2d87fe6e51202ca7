package cosmere

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/billmal071/cosmere/internal/config"
)

// Client defines the interface for Cosmere API access
type Client interface {
	ListCharacters(ctx context.Context, opts ListOptions) (*Page[Character], error)
	GetCharacter(ctx context.Context, id string) (*Character, error)
	CreateCharacter(ctx context.Context, in CharacterCreate) (*Character, error)
	UpdateCharacter(ctx context.Context, id string, in CharacterUpdate) (*Character, error)
	DeleteCharacter(ctx context.Context, id string) error

	ListBooks(ctx context.Context, opts ListOptions) (*Page[Book], error)
	GetBook(ctx context.Context, id string) (*Book, error)
	CreateBook(ctx context.Context, in BookCreate) (*Book, error)
	UpdateBook(ctx context.Context, id string, in BookUpdate) (*Book, error)
	DeleteBook(ctx context.Context, id string) error

	ListWorlds(ctx context.Context, opts ListOptions) (*Page[World], error)
	GetWorld(ctx context.Context, id string) (*World, error)
	CreateWorld(ctx context.Context, in WorldCreate) (*World, error)
	UpdateWorld(ctx context.Context, id string, in WorldUpdate) (*World, error)
	DeleteWorld(ctx context.Context, id string) error

	ListMagicSystems(ctx context.Context, opts ListOptions) (*Page[MagicSystem], error)
	GetMagicSystem(ctx context.Context, id string) (*MagicSystem, error)
	CreateMagicSystem(ctx context.Context, in MagicSystemCreate) (*MagicSystem, error)
	UpdateMagicSystem(ctx context.Context, id string, in MagicSystemUpdate) (*MagicSystem, error)
	DeleteMagicSystem(ctx context.Context, id string) error

	ListSeries(ctx context.Context, opts ListOptions) (*Page[Series], error)
	GetSeries(ctx context.Context, id string) (*Series, error)
	CreateSeries(ctx context.Context, in SeriesCreate) (*Series, error)
	UpdateSeries(ctx context.Context, id string, in SeriesUpdate) (*Series, error)
	DeleteSeries(ctx context.Context, id string) error

	ListShards(ctx context.Context, opts ListOptions) (*Page[Shard], error)
	GetShard(ctx context.Context, id string) (*Shard, error)
	CreateShard(ctx context.Context, in ShardCreate) (*Shard, error)
	UpdateShard(ctx context.Context, id string, in ShardUpdate) (*Shard, error)
	DeleteShard(ctx context.Context, id string) error

	// Records linked to one entity
	CharacterRelationships(ctx context.Context, id string) ([]Relationship, error)
	CharacterAppearances(ctx context.Context, id string) ([]Book, error)
	WorldCharacters(ctx context.Context, id string) ([]Character, error)
	WorldMagicSystems(ctx context.Context, id string) ([]MagicSystem, error)
	BooksBySeries(ctx context.Context, seriesID string) ([]Book, error)
	BooksByWorld(ctx context.Context, worldID string) ([]Book, error)

	// GlobalSearch returns suggestion summaries matching query
	GlobalSearch(ctx context.Context, query string, size int) ([]SearchResult, error)

	// Health checks the API
	Health(ctx context.Context) (*Health, error)
}

var _ Client = (*HTTPClient)(nil)

// NewClient creates a Cosmere API client from the loaded configuration
func NewClient(cfg *config.Config, tokens TokenSource, log *zap.Logger) *HTTPClient {
	return NewHTTPClient(Options{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
		Tokens:  tokens,
		Logger:  log,
		Dedupe:  cfg.API.Dedupe,
	})
}

// Delete removes the entity id of resource r.
func Delete(ctx context.Context, c Client, r Resource, id string) error {
	switch r {
	case Characters:
		return c.DeleteCharacter(ctx, id)
	case Books:
		return c.DeleteBook(ctx, id)
	case Worlds:
		return c.DeleteWorld(ctx, id)
	case MagicSystems:
		return c.DeleteMagicSystem(ctx, id)
	case SeriesList:
		return c.DeleteSeries(ctx, id)
	case Shards:
		return c.DeleteShard(ctx, id)
	}
	return fmt.Errorf("unknown resource %q", r)
}
