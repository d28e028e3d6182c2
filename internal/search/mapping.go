package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve mapping for book documents.
// Titles and authors get English stemming, publishers a plain lowercase
// analyzer, and tags and language are matched as exact keywords.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	titleFieldMapping := bleve.NewTextFieldMapping()
	titleFieldMapping.Analyzer = en.AnalyzerName
	titleFieldMapping.Store = true
	titleFieldMapping.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("title", titleFieldMapping)

	authorFieldMapping := bleve.NewTextFieldMapping()
	authorFieldMapping.Analyzer = en.AnalyzerName
	authorFieldMapping.Store = true
	authorFieldMapping.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("author", authorFieldMapping)

	publisherFieldMapping := bleve.NewTextFieldMapping()
	publisherFieldMapping.Analyzer = simple.Name
	publisherFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("publisher", publisherFieldMapping)

	languageFieldMapping := bleve.NewTextFieldMapping()
	languageFieldMapping.Analyzer = keyword.Name
	languageFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("language", languageFieldMapping)

	// Keyword analyzer keeps compound slugs intact (e.g., "slow-burn").
	tagsFieldMapping := bleve.NewTextFieldMapping()
	tagsFieldMapping.Analyzer = keyword.Name
	tagsFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("tags", tagsFieldMapping)

	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("id", idFieldMapping)

	yearFieldMapping := bleve.NewNumericFieldMapping()
	yearFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("publish_year", yearFieldMapping)

	createdAtFieldMapping := bleve.NewNumericFieldMapping()
	createdAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("created_at", createdAtFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
