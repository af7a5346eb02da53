package scraper

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"mspro-labs/hopmetrics/internal/config"
	"mspro-labs/hopmetrics/internal/models"
)

var (
	reTitleDelimiter = regexp.MustCompile(`\s+[-–—|]\s+`)
	reMenuMarker     = regexp.MustCompile(`(?i)\bmenus?\b`)
)

// extractInfo reads establishment metadata, falling back field by field.
func extractInfo(doc *goquery.Document, rawURL string, meta config.Metadata) models.EstablishmentInfo {
	var info models.EstablishmentInfo

	title := clean(doc.Find("title").First().Text())
	if name, location, ok := splitTitle(title, meta.BrandSuffixes); ok {
		info.Name = name
		info.Location = location
	} else if h1 := clean(doc.Find("h1").First().Text()); h1 != "" {
		info.Name = h1
	} else if title != "" {
		info.Name = title
	} else {
		info.Name = HostName(rawURL)
	}

	info.Description = description(doc, meta.Summary)
	return info
}

// splitTitle reads titles shaped like "Name - Beer Menu - Location | Brand".
// Titles without a delimiter or a menu marker after the name are ambiguous.
func splitTitle(title string, brands []string) (string, string, bool) {
	parts := reTitleDelimiter.Split(title, -1)
	if len(parts) < 2 {
		return "", "", false
	}

	marker := -1
	for i, p := range parts {
		if reMenuMarker.MatchString(p) {
			marker = i
			break
		}
	}
	if marker <= 0 {
		return "", "", false
	}

	name := strings.TrimSpace(parts[0])
	if name == "" {
		return "", "", false
	}
	location := ""
	for _, p := range parts[1:] {
		p = strings.TrimSpace(p)
		if p == "" || reMenuMarker.MatchString(p) || isBrand(p, brands) {
			continue
		}
		location = p
		break
	}
	return name, location, true
}

func isBrand(part string, brands []string) bool {
	for _, b := range brands {
		if strings.EqualFold(part, b) {
			return true
		}
	}
	return false
}

func description(doc *goquery.Document, summary []string) string {
	for _, sel := range summary {
		if text := clean(doc.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	for _, sel := range []string{`meta[name="description"]`, `meta[property="og:description"]`} {
		if content := clean(doc.Find(sel).First().AttrOr("content", "")); content != "" {
			return content
		}
	}
	return ""
}

// HostName is the URL host without a leading "www.", or the raw string if it does not parse.
func HostName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return rawURL
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
