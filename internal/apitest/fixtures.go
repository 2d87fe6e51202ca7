package apitest

import "github.com/billmal071/cosmere/internal/cosmere"

// Fixture counts, for assertions.
const (
	FixtureCharacters = 7
	FixtureAlive      = 5
)

// Fixtures returns a fresh copy of the seed data. Vin's abilities are an
// embedded object and Kaladin's a JSON string, the two forms the API serves.
func Fixtures() map[cosmere.Resource][]map[string]any {
	return map[cosmere.Resource][]map[string]any{
		cosmere.Characters: {
			{
				"id":                       "vin",
				"name":                     "Vin",
				"world_of_origin_id":       "scadrial",
				"species":                  "human",
				"status":                   "alive",
				"aliases":                  []any{"Valette Renoux", "Lady Heir"},
				"magic_abilities":          map[string]any{"Allomancy": map[string]any{"metals": []any{"iron", "steel", "pewter", "tin"}}},
				"affiliations":             map[string]any{"crew": "Kelsier's crew"},
				"biography":                "A street urchin turned **Mistborn**.",
				"first_appearance_book_id": "mistborn-1",
				"book_count":               3,
			},
			{
				"id":                 "kelsier",
				"name":               "Kelsier",
				"world_of_origin_id": "scadrial",
				"species":            "human",
				"status":             "cognitive_shadow",
				"aliases":            `["The Survivor"]`,
				"magic_abilities":    `{"Allomancy":{"metals":["all"]}}`,
				"biography":          "Survivor of Hathsin.",
			},
			{
				"id":                 "kaladin",
				"name":               "Kaladin",
				"world_of_origin_id": "roshar",
				"species":            "human",
				"status":             "alive",
				"aliases":            `["Stormblessed"]`,
				"magic_abilities":    `{"Surgebinding":{"order":"Windrunner"}}`,
				"affiliations":       `{"Bridge Four":"captain"}`,
				"biography":          "Windrunner and former slave.",
			},
			{
				"id":                 "jasnah",
				"name":               "Jasnah Kholin",
				"world_of_origin_id": "roshar",
				"species":            "human",
				"status":             "alive",
				"magic_abilities":    `{"Surgebinding":{"order":"Elsecaller"}}`,
			},
			{
				"id":                 "dalinar",
				"name":               "Dalinar Kholin",
				"world_of_origin_id": "roshar",
				"species":            "human",
				"status":             "alive",
				"magic_abilities":    "not json",
			},
			{
				"id":                 "gavilar",
				"name":               "Gavilar Kholin",
				"world_of_origin_id": "roshar",
				"species":            "human",
				"status":             "dead",
			},
			{
				"id":      "hoid",
				"name":    "Hoid",
				"species": "human",
				"status":  "alive",
				"aliases": []any{"Wit", "Cephandrius"},
			},
		},
		cosmere.Books: {
			{
				"id":                  "mistborn-1",
				"title":               "The Final Empire",
				"series_id":           "mistborn-era-1",
				"world_id":            "scadrial",
				"publication_date":    "2006-07-17",
				"chronological_order": 1,
				"word_count":          248000,
				"summary":             "A crew of thieves plans to overthrow the Lord Ruler.",
			},
			{
				"id":                  "mistborn-2",
				"title":               "The Well of Ascension",
				"series_id":           "mistborn-era-1",
				"world_id":            "scadrial",
				"publication_date":    "2007-08-21",
				"chronological_order": 2,
			},
			{
				"id":               "way-of-kings",
				"title":            "The Way of Kings",
				"series_id":        "stormlight",
				"world_id":         "roshar",
				"publication_date": "2010-08-31",
				"isbn":             "978-0765326355",
			},
		},
		cosmere.Worlds: {
			{
				"id":               "scadrial",
				"name":             "Scadrial",
				"system":           "Scadrian",
				"shard_id":         "preservation",
				"technology_level": "industrial",
				"magic_systems":    `["allomancy","feruchemy","hemalurgy"]`,
			},
			{
				"id":               "roshar",
				"name":             "Roshar",
				"system":           "Rosharan",
				"shard_id":         "honor",
				"technology_level": "medieval",
				"geography":        map[string]any{"continents": []any{"Roshar"}},
			},
			{
				"id":               "yolen",
				"name":             "Yolen",
				"technology_level": "unknown",
			},
		},
		cosmere.MagicSystems: {
			{
				"id":           "allomancy",
				"name":         "Allomancy",
				"type":         "end-positive",
				"world_id":     "scadrial",
				"power_source": "Preservation",
				"mechanics":    `{"metals":16}`,
				"limitations":  map[string]any{"requires": "ingested metal"},
			},
			{
				"id":           "surgebinding",
				"name":         "Surgebinding",
				"type":         "end-positive",
				"world_id":     "roshar",
				"power_source": "Honor",
				"description":  "Manipulation of the Surges via spren bonds.",
			},
		},
		cosmere.SeriesList: {
			{
				"id":       "mistborn-era-1",
				"name":     "Mistborn Era 1",
				"world_id": "scadrial",
				"status":   "complete",
				"books":    []any{map[string]any{"id": "mistborn-1", "title": "The Final Empire", "chronological_order": 1}, map[string]any{"id": "mistborn-2", "title": "The Well of Ascension", "chronological_order": 2}},
			},
			{
				"id":       "stormlight",
				"name":     "The Stormlight Archive",
				"world_id": "roshar",
				"status":   "ongoing",
			},
		},
		cosmere.Shards: {
			{
				"id":                "preservation",
				"name":              "Preservation",
				"intent":            "Preservation",
				"vessel_name":       "Leras",
				"vessel_status":     "deceased",
				"world_location_id": "scadrial",
			},
			{
				"id":                "ruin",
				"name":              "Ruin",
				"intent":            "Ruin",
				"vessel_name":       "Ati",
				"vessel_status":     "deceased",
				"world_location_id": "scadrial",
			},
			{
				"id":                "honor",
				"name":              "Honor",
				"intent":            "Honor",
				"vessel_name":       "Tanavast",
				"vessel_status":     "splintered",
				"world_location_id": "roshar",
				"splinter_info":     `{"spren":"honorspren"}`,
			},
		},
	}
}
