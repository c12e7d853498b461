// Package extract turns the stable listing HTML into deal candidates.
package extract

import (
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	urlutil "github.com/law-makers/dealwatch/internal/utils/url"
	"github.com/law-makers/dealwatch/pkg/models"
)

// ErrEmptyDocument is returned by Parse for blank input
var ErrEmptyDocument = errors.New("empty listing document")

// Extractor reads DealCandidates out of listing markup
type Extractor struct {
	sel     Selectors
	baseURL string
}

// New creates an Extractor. Relative card links resolve against baseURL.
func New(sel Selectors, baseURL string) *Extractor {
	return &Extractor{sel: sel, baseURL: baseURL}
}

// Selectors returns the active selector contract
func (e *Extractor) Selectors() Selectors {
	return e.sel
}

// Parse builds a queryable document from the page HTML
func (e *Extractor) Parse(raw string) (*goquery.Document, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyDocument
	}
	root, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse listing html: %w", err)
	}
	return goquery.NewDocumentFromNode(root), nil
}

// CardCount reports how many cards match the card selector
func (e *Extractor) CardCount(doc *goquery.Document) int {
	return doc.Find(e.sel.Card).Length()
}

// Candidates yields one DealCandidate per card in document order. Cards
// without a title or price element are skipped. The sequence can be
// ranged over more than once.
func (e *Extractor) Candidates(doc *goquery.Document) iter.Seq[models.DealCandidate] {
	return func(yield func(models.DealCandidate) bool) {
		cards := doc.Find(e.sel.Card)
		for i := range cards.Length() {
			c, ok := e.candidate(cards.Eq(i))
			if !ok {
				continue
			}
			if !yield(c) {
				return
			}
		}
	}
}

func (e *Extractor) candidate(card *goquery.Selection) (models.DealCandidate, bool) {
	title := card.Find(e.sel.Title).First()
	priceEl := card.Find(e.sel.Price).First()
	if title.Length() == 0 || priceEl.Length() == 0 {
		return models.DealCandidate{}, false
	}

	href, ok := title.Attr("href")
	if !ok {
		href, _ = title.Find("a[href]").First().Attr("href")
	}

	c := models.DealCandidate{
		Title:     text(title),
		PriceText: text(priceEl),
	}
	if href = strings.TrimSpace(href); href != "" {
		c.Link = urlutil.ResolveURL(e.baseURL, href)
	}

	info := card.Find(e.sel.InfoList).First()
	if info.Length() > 0 {
		c.DepartureDate = text(info.Find(e.sel.Departure).First())
		c.Duration = text(info.Find(e.sel.Duration).First())
	}
	return c, true
}

// text returns the element text with whitespace runs collapsed
func text(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}
