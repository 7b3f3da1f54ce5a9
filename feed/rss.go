package feed

import (
	"context"
	"time"
)

// RSSGenerator renders the published posts as an RSS 2.0 document. It reads
// the same data as AtomGenerator and fails under the same conditions.
type RSSGenerator struct {
	reader Reader
	config Config
	now    func() time.Time
}

func NewRSSGenerator(reader Reader, config Config, now func() time.Time) *RSSGenerator {
	if now == nil {
		now = time.Now
	}
	return &RSSGenerator{reader: reader, config: config, now: now}
}

func (g *RSSGenerator) Generate(ctx context.Context, origin string) (string, error) {
	entries, err := loadEntries(ctx, g.reader, true)
	if err != nil {
		return "", err
	}

	lines := []string{
		`<?xml version="1.0" encoding="utf-8"?>`,
		`<rss version="2.0" xmlns:dc="http://purl.org/dc/elements/1.1/">`,
		`<channel>`,
		element("title", g.config.title()),
		element("link", origin),
		element("description", g.config.subtitle()),
		element("generator", generatorName),
		element("lastBuildDate", rssTime(lastUpdated(entries, g.now()))),
	}
	if g.config.Rights != "" {
		lines = append(lines, element("copyright", g.config.Rights))
	}
	if g.config.LogoURL != "" {
		lines = append(lines,
			`<image>`,
			element("url", g.config.LogoURL),
			element("title", g.config.title()),
			element("link", origin),
			`</image>`,
		)
	}

	for _, e := range entries {
		lines = append(lines,
			`<item>`,
			element("title", e.post.Title),
			element("link", postURL(origin, e.post)),
			`<guid isPermaLink="false">`+escape(postIDURL(origin, e.post))+`</guid>`,
			element("pubDate", rssTime(e.post.Created)),
			element("dc:creator", e.author.Name),
			element("description", Summarize(e.post.Contents)),
		)
		for _, tag := range e.tags {
			lines = append(lines, element("category", tag.Name))
		}
		lines = append(lines, `</item>`)
	}
	lines = append(lines, `</channel>`, `</rss>`)

	return joinLines(lines), nil
}

func rssTime(t time.Time) string {
	return t.UTC().Format(time.RFC1123Z)
}
