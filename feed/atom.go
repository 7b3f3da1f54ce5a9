package feed

import (
	"context"
	"time"
)

// AtomTimeFormat is applied to every timestamp in an Atom document, always in UTC
const AtomTimeFormat = "2006-01-02T15:04:05-0700"

// AtomGenerator renders the published posts as an Atom 1.0 document
type AtomGenerator struct {
	reader Reader
	config Config
	now    func() time.Time
}

// NewAtomGenerator returns a generator reading from reader. now supplies the
// feed timestamp when there are no posts; nil means time.Now.
func NewAtomGenerator(reader Reader, config Config, now func() time.Time) *AtomGenerator {
	if now == nil {
		now = time.Now
	}
	return &AtomGenerator{reader: reader, config: config, now: now}
}

// Generate builds the whole document for the given origin. The document is
// only returned when every post and author could be read.
func (g *AtomGenerator) Generate(ctx context.Context, origin string) (string, error) {
	entries, err := loadEntries(ctx, g.reader, g.config.IncludeCategories)
	if err != nil {
		return "", err
	}

	lines := []string{
		`<?xml version="1.0" encoding="utf-8"?>`,
		`<feed xmlns="http://www.w3.org/2005/Atom">`,
		``,
		element("title", g.config.title()),
		element("subtitle", g.config.subtitle()),
		element("id", origin),
		`<link rel="alternate" type="text/html" href="` + escape(origin) + `"/>`,
		`<link rel="self" type="application/atom+xml" href="` + escape(origin+"atom.xml") + `"/>`,
		`<generator uri="` + generatorURI + `">` + generatorName + `</generator>`,
		element("updated", atomTime(lastUpdated(entries, g.now()))),
	}
	if g.config.Rights != "" {
		lines = append(lines, element("rights", g.config.Rights))
	}
	if g.config.LogoURL != "" {
		lines = append(lines, element("logo", g.config.LogoURL))
	}

	for _, e := range entries {
		lines = append(lines,
			`<entry>`,
			element("id", postIDURL(origin, e.post)),
			element("title", e.post.Title),
			element("updated", atomTime(e.post.Updated())),
			element("published", atomTime(e.post.Created)),
			`<author>`,
			element("name", e.author.Name),
			element("uri", authorURL(origin, e.author)),
			`</author>`,
			element("summary", Summarize(e.post.Contents)),
		)
		for _, tag := range e.tags {
			lines = append(lines, `<category term="`+escape(tag.Name)+`"/>`)
		}
		lines = append(lines,
			`<link rel="alternate" href="`+escape(postURL(origin, e.post))+`" />`,
			`</entry>`,
		)
	}
	lines = append(lines, `</feed>`)

	return joinLines(lines), nil
}

func atomTime(t time.Time) string {
	return t.UTC().Format(AtomTimeFormat)
}
