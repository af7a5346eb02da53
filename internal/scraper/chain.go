package scraper

import (
	"github.com/PuerkitoBio/goquery"

	"mspro-labs/hopmetrics/internal/models"
)

// Strategy locates menu items in a document. Extract must be pure.
type Strategy struct {
	Name    string
	Extract func(doc *goquery.Document) []models.MenuItem
}

// Chain is an ordered list of strategies, most reliable first.
type Chain []Strategy

// Run returns the items of the first strategy that finds any, and its name.
// Results are never merged across strategies.
func (c Chain) Run(doc *goquery.Document) ([]models.MenuItem, string) {
	for _, s := range c {
		if items := s.Extract(doc); len(items) > 0 {
			return items, s.Name
		}
	}
	return nil, ""
}

// itemParser turns one candidate fragment into an item; false drops the candidate.
type itemParser func(s *goquery.Selection) (models.MenuItem, bool)

func selectorStrategy(selector string, parse itemParser) Strategy {
	return Strategy{
		Name: selector,
		Extract: func(doc *goquery.Document) []models.MenuItem {
			var items []models.MenuItem
			doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
				if item, ok := parse(s); ok {
					items = append(items, item)
				}
			})
			return items
		},
	}
}
