package feed

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/jaytaylor/html2text"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// SummaryLength is the maximum excerpt length in runes, excluding the ellipsis
const SummaryLength = 200

// inlineElements are flattened into their text before conversion; html2text
// would otherwise pad them with spaces or, for bold, a trailing period.
const inlineElements = "a, abbr, b, cite, code, del, em, i, ins, kbd, mark, q, s, samp, small, span, strong, sub, sup, u"

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
)

// Summarize derives the plain text excerpt used for feed entries. Contents are
// rendered as markdown, the resulting HTML is reduced to text, whitespace is
// collapsed and text longer than SummaryLength runes is cut at a word boundary
// and marked with "...".
func Summarize(contents string) string {
	return truncateWords(strings.Join(strings.Fields(plainText(contents)), " "), SummaryLength)
}

func plainText(contents string) string {
	var rendered bytes.Buffer
	if err := markdown.Convert([]byte(contents), &rendered); err != nil {
		return contents
	}

	doc, err := goquery.NewDocumentFromReader(&rendered)
	if err != nil {
		return contents
	}

	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		s.ReplaceWithNodes(&html.Node{Type: html.TextNode, Data: s.AttrOr("alt", "")})
	})
	doc.Find(inlineElements).Each(func(_ int, s *goquery.Selection) {
		s.ReplaceWithSelection(s.Contents())
	})
	// h1-h3 end with a period in text mode
	doc.Find("h1, h2, h3").Each(func(_ int, s *goquery.Selection) {
		for _, n := range s.Nodes {
			n.Data, n.DataAtom = "p", atom.P
		}
	})

	root := doc.Nodes[0]
	mergeTextNodes(root)

	text, err := html2text.FromHTMLNode(root, html2text.Options{OmitLinks: true, TextOnly: true})
	if err != nil {
		return doc.Text()
	}
	return text
}

// mergeTextNodes joins adjacent text siblings left behind by flattening, so
// "**word**," stays "word," instead of "word ,".
func mergeTextNodes(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		for c.Type == html.TextNode && c.NextSibling != nil && c.NextSibling.Type == html.TextNode {
			next := c.NextSibling
			c.Data += next.Data
			n.RemoveChild(next)
		}
		mergeTextNodes(c)
	}
}

func truncateWords(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	cut := string([]rune(s)[:limit])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,;:.") + "..."
}
