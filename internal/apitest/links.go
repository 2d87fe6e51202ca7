package apitest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/billmal071/cosmere/internal/cosmere"
)

// Links are the join records behind the sub-resource routes. Characters,
// magic systems and books found by world or series are derived from the
// records themselves.
type Links struct {
	Relationships []map[string]any
	// Appearances maps a character id to the ids of the books it appears in.
	Appearances map[string][]string
}

// LinkFixtures returns a fresh copy of the seed join records.
func LinkFixtures() Links {
	return Links{
		Relationships: []map[string]any{
			{"character_id": "vin", "related_character_id": "kelsier", "relationship_type": "mentor", "description": "Taught her Allomancy", "book": "mistborn-1"},
			{"character_id": "kelsier", "related_character_id": "vin", "relationship_type": "student"},
			{"character_id": "kaladin", "related_character_id": "dalinar", "relationship_type": "sworn to", "book": "way-of-kings"},
			{"character_id": "jasnah", "related_character_id": "dalinar", "relationship_type": "niece"},
		},
		Appearances: map[string][]string{
			"vin":     {"mistborn-1", "mistborn-2"},
			"kelsier": {"mistborn-1"},
			"kaladin": {"way-of-kings"},
			"dalinar": {"way-of-kings"},
		},
	}
}

// Relate adds a relationship between two characters.
func (s *Server) Relate(from, to, kind string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.links.Relationships = append(s.links.Relationships, map[string]any{
		"character_id": from, "related_character_id": to, "relationship_type": kind,
	})
}

func (s *Server) linkRoutes(api *gin.RouterGroup) {
	api.GET("/characters/:id/relationships", s.relationships)
	api.GET("/characters/:id/appearances", s.appearances)
	api.GET("/worlds/:id/characters", s.owned(cosmere.Worlds, cosmere.Characters, "world_of_origin_id"))
	api.GET("/worlds/:id/magic-systems", s.owned(cosmere.Worlds, cosmere.MagicSystems, "world_id"))
	api.GET("/books/series/:id", s.owned(cosmere.SeriesList, cosmere.Books, "series_id"))
	api.GET("/books/world/:id", s.owned(cosmere.Worlds, cosmere.Books, "world_id"))
}

// parent looks up the record a sub-resource hangs off and answers 404 when
// it is missing. The caller holds s.mu.
func (s *Server) parent(c *gin.Context, r cosmere.Resource) bool {
	if s.index(r, c.Param("id")) >= 0 {
		return true
	}
	c.JSON(http.StatusNotFound, gin.H{"detail": capitalize(r.Singular()) + " not found"})
	return false
}

func (s *Server) relationships(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.parent(c, cosmere.Characters) {
		return
	}
	out := []map[string]any{}
	for _, rel := range s.links.Relationships {
		if str(rel["character_id"]) != c.Param("id") {
			continue
		}
		item := make(map[string]any, len(rel))
		for k, v := range rel {
			if k != "book" {
				item[k] = v
			}
		}
		if i := s.index(cosmere.Books, str(rel["book"])); i >= 0 {
			item["book_context"] = s.data[cosmere.Books][i]
		}
		out = append(out, item)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) appearances(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.parent(c, cosmere.Characters) {
		return
	}
	out := []map[string]any{}
	for _, id := range s.links.Appearances[c.Param("id")] {
		if i := s.index(cosmere.Books, id); i >= 0 {
			out = append(out, s.data[cosmere.Books][i])
		}
	}
	c.JSON(http.StatusOK, out)
}

// owned lists the records of child whose key field names the parent id.
func (s *Server) owned(parent, child cosmere.Resource, key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if !s.parent(c, parent) {
			return
		}
		out := []map[string]any{}
		for _, rec := range s.data[child] {
			if str(rec[key]) == c.Param("id") {
				out = append(out, rec)
			}
		}
		c.JSON(http.StatusOK, out)
	}
}
