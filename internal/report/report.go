// Package report renders an entity into the plain-text document that gets
// published as a paste. Section order and labels are part of the output
// contract; downstream readers only ever see this text.
package report

import (
	_ "embed"
	texttemplate "text/template"

	"catalog-report/internal/entity"
	"catalog-report/internal/logging"
	"catalog-report/internal/template"
)

//go:embed report.tmpl
var reportTemplate string

// NoThumbnail is printed on the thumbnail line when the entity has none.
const NoThumbnail = "(none)"

type section struct {
	Title     string
	Available int
	Items     []entity.Resource
}

type view struct {
	Name        string
	ID          int64
	Description string
	Thumbnail   string
	Modified    string
	URLs        []entity.Link
	Sections    []section
}

var funcs = texttemplate.FuncMap{
	"inc": func(i int) int { return i + 1 },
}

// ThumbnailURL returns "{path}/standard_medium.{extension}".
func ThumbnailURL(e *entity.Entity) (string, bool) {
	if !e.HasThumbnail() {
		return "", false
	}
	return e.Thumbnail.Path + "/standard_medium." + e.Thumbnail.Extension, true
}

// Format renders e. It returns false when e is nil.
func Format(e *entity.Entity) (string, bool) {
	if e == nil {
		return "", false
	}

	thumb, ok := ThumbnailURL(e)
	if !ok {
		thumb = NoThumbnail
	}

	v := view{
		Name:        e.Name,
		ID:          e.ID,
		Description: e.Description,
		Thumbnail:   thumb,
		Modified:    e.Modified,
		URLs:        e.URLs,
		Sections: []section{
			{"Comics", e.Comics.Available, e.Comics.Items},
			{"Stories", e.Stories.Available, e.Stories.Items},
			{"Events", e.Events.Available, e.Events.Items},
			{"Series", e.Series.Available, e.Series.Items},
		},
	}

	out, err := template.Render("report", reportTemplate, v, funcs)
	if err != nil {
		logging.Logf(logging.Error, "Report: rendering entity %d failed: %v", e.ID, err)
		return "", false
	}
	return out, true
}
