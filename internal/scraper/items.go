package scraper

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"mspro-labs/hopmetrics/internal/config"
	"mspro-labs/hopmetrics/internal/models"
	"mspro-labs/hopmetrics/internal/normalize"
)

// siteParser reads items laid out by a known listing site.
type siteParser struct {
	fields    config.Fields
	delimiter string
}

func (p siteParser) parse(s *goquery.Selection) (models.MenuItem, bool) {
	nameEl := first(s, p.fields.Name)
	if nameEl == nil {
		return models.MenuItem{}, false
	}
	item := models.MenuItem{Name: clean(nameEl.Text())}
	if item.Name == "" {
		return models.MenuItem{}, false
	}

	item.Brewery = fieldText(s, p.fields.Brewery)
	item.Style = fieldText(s, p.fields.Style)

	// dedicated ABV cells often drop the percent sign
	if text := fieldText(s, p.fields.ABV); text != "" {
		item.ABV = normalize.Number(text)
	}
	if text := fieldText(s, p.fields.Price); text != "" {
		item.Price = normalize.Price(text)
	}
	if text := fieldText(s, p.fields.Volume); text != "" {
		item.VolumeOz = normalize.Volume(text)
	}

	if caption := fieldText(s, p.fields.Caption); caption != "" {
		applyCaption(&item, caption, p.delimiter)
	}

	if item.VolumeOz == nil {
		v := normalize.DefaultVolume(s.Text())
		item.VolumeOz = &v
	}
	return item, true
}

// applyCaption fills gaps from a "Style · ABV% · Location" caption.
// Fields already read from dedicated elements win.
func applyCaption(item *models.MenuItem, caption, delimiter string) {
	if delimiter == "" {
		delimiter = config.DefaultCaptionDelimiter
	}
	parts := strings.Split(caption, delimiter)
	for i := range parts {
		parts[i] = clean(parts[i])
	}

	if len(parts) > 0 && item.Style == "" {
		item.Style = parts[0]
	}
	if len(parts) > 1 && item.ABV == nil {
		item.ABV = normalize.ABV(parts[1])
	}
	if len(parts) > 2 && item.Brewery == "" {
		item.Brewery = parts[2]
	}
}

// Only the leading run of letters and spaces is taken as the name, so names
// that start with a digit or contain punctuation are cut short or dropped.
var reLeadingName = regexp.MustCompile(`^[a-zA-Z\s]+`)

// parseGeneric reads an item from the free text of an unknown site's fragment.
func parseGeneric(s *goquery.Selection) (models.MenuItem, bool) {
	text := strings.TrimSpace(s.Text())
	name := clean(reLeadingName.FindString(text))
	if name == "" {
		return models.MenuItem{}, false
	}

	item := models.MenuItem{
		Name:     name,
		VolumeOz: normalize.Volume(text),
		ABV:      normalize.ABV(text),
		Price:    normalize.Price(text),
	}
	if item.VolumeOz == nil {
		v := normalize.DefaultVolume(text)
		item.VolumeOz = &v
	}
	return item, true
}

// first returns the first element matched by any of selectors, in selector order.
func first(s *goquery.Selection, selectors []string) *goquery.Selection {
	for _, sel := range selectors {
		if found := s.Find(sel).First(); found.Length() > 0 {
			return found
		}
	}
	return nil
}

func fieldText(s *goquery.Selection, selectors []string) string {
	el := first(s, selectors)
	if el == nil {
		return ""
	}
	return clean(el.Text())
}

// clean collapses runs of whitespace.
func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
