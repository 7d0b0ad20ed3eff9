// Package entity holds the value records produced by a successful catalog lookup.
// Values are built once by the classifier (or the offline fixture) and never
// mutated afterwards; callers that need a different entity build a new one.
package entity

// Thumbnail is an image reference split into base path and file extension,
// as returned by the catalog API.
type Thumbnail struct {
	Path      string
	Extension string
}

// Link is one public resource URL of an entity.
type Link struct {
	Type string
	URL  string
}

// Resource is one item of a related-resource preview list.
// Type is only populated for stories.
type Resource struct {
	Name        string
	Type        string
	ResourceURI string
}

// Related groups the preview batch of one related-resource category with the
// total number of items the API says exist. Available is authoritative for
// display and is kept exactly as the API reported it.
type Related struct {
	Available int
	Items     []Resource
}

// Entity is a looked-up catalog item plus its related resources.
type Entity struct {
	ID          int64
	Name        string
	Description string
	Modified    string
	URLs        []Link
	Thumbnail   *Thumbnail
	Comics      Related
	Stories     Related
	Events      Related
	Series      Related
}

// HasThumbnail reports whether the entity carries a thumbnail reference.
func (e *Entity) HasThumbnail() bool {
	return e != nil && e.Thumbnail != nil
}
