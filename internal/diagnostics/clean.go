package diagnostics

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// cleanHTML strips scripts, styles and most attributes so the converted
// excerpt shows what a visitor would read (block pages, consent walls).
func cleanHTML(raw string) (string, error) {
	root, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return "", err
	}
	doc := goquery.NewDocumentFromNode(root)

	doc.Find("script, style, link, meta, noscript, iframe, svg, canvas, template").Remove()

	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		node := s.Get(0)
		var kept []html.Attribute
		for _, attr := range node.Attr {
			switch {
			case node.Data == "a" && (attr.Key == "href" || attr.Key == "title"):
				kept = append(kept, attr)
			case node.Data == "img" && attr.Key == "alt":
				kept = append(kept, attr)
			case attr.Key == "aria-label":
				kept = append(kept, attr)
			}
		}
		node.Attr = kept
	})

	out, err := doc.Find("body").Html()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
