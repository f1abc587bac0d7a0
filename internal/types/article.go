package types

import (
	"time"
)

// Sentinel field values written by site adapters when an expected page
// element is absent. A record carrying one of them is never retained.
const (
	NoTitle      = "No title found"
	NoContent    = "No content found"
	NoSummary    = "No summary found"
	NoTranscript = "No transcript found"
)

// IsSentinel reports whether s is one of the adapter sentinel values.
func IsSentinel(s string) bool {
	switch s {
	case NoTitle, NoContent:
		return true
	}
	return false
}

// Leaning is the political leaning of an outlet.
type Leaning string

const (
	LeaningLeft   Leaning = "left"
	LeaningCentre Leaning = "centre"
	LeaningRight  Leaning = "right"
)

// Valid reports whether l is one of the known leanings.
func (l Leaning) Valid() bool {
	return l == LeaningLeft || l == LeaningCentre || l == LeaningRight
}

// Far is the far-leaning label attached during classification.
type Far string

const (
	FarLeft  Far = "left"
	FarRight Far = "right"
	FarNone  Far = "none"
)

// Article is the canonical record produced by harvesting or loaded from an
// archival CSV.
type Article struct {
	URL         string    `json:"url"          bson:"url"`
	PublishedAt time.Time `json:"published_at" bson:"published_at"`
	Title       string    `json:"title"        bson:"title"`
	Content     string    `json:"content"      bson:"content"`
	Outlet      string    `json:"outlet"       bson:"outlet"`
}

// Year returns the UTC publication year.
func (a *Article) Year() int {
	return a.PublishedAt.UTC().Year()
}

// Complete reports whether the article has a usable title and content.
func (a *Article) Complete() bool {
	return a.Title != "" && a.Content != "" && !IsSentinel(a.Title) && !IsSentinel(a.Content)
}

// ClassifiedArticle is an Article labelled with its outlet's leaning.
// Values are never mutated after classification.
type ClassifiedArticle struct {
	Article `bson:",inline"`
	Leaning Leaning `json:"leaning" bson:"leaning"`
	Far     Far     `json:"far"     bson:"far"`
}
