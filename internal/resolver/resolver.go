// Package resolver picks the single most plausible lead image of a page from
// its markup. Strategies run in a fixed priority order and the first one that
// yields a usable URL wins.
package resolver

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/user/catalog-imager/pkg/utils"
)

// Strategy names the heuristic that produced a candidate.
type Strategy string

const (
	StrategyMeta         Strategy = "meta"
	StrategyJSONLD       Strategy = "jsonld"
	StrategyLargestImage Strategy = "largest_img"
)

// Candidate is an absolute image URL together with the strategy that found it.
type Candidate struct {
	URL      string
	Strategy Strategy
}

var metaImageKeys = []string{"og:image", "twitter:image"}

// maxDimension caps declared sizes so width*height cannot overflow.
const maxDimension = 1 << 20

// Resolve returns the best image URL for markup served at baseURL.
func Resolve(baseURL, markup string) (string, bool) {
	c, ok := ResolveCandidate(baseURL, markup)
	return c.URL, ok
}

// ResolveCandidate is Resolve but also reports which strategy matched.
func ResolveCandidate(baseURL, markup string) (Candidate, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return Candidate{}, false
	}
	return ResolveDocument(baseURL, doc)
}

// ResolveDocument runs the strategies over an already parsed document.
func ResolveDocument(baseURL string, doc *goquery.Document) (Candidate, bool) {
	if u, ok := fromMetaTags(baseURL, doc); ok {
		return Candidate{URL: u, Strategy: StrategyMeta}, true
	}
	if u, ok := fromJSONLD(baseURL, doc); ok {
		return Candidate{URL: u, Strategy: StrategyJSONLD}, true
	}
	if u, ok := fromLargestImage(baseURL, doc); ok {
		return Candidate{URL: u, Strategy: StrategyLargestImage}, true
	}
	return Candidate{}, false
}

// fromMetaTags scans Open Graph / Twitter card meta tags and link rel=image_src
// in document order.
func fromMetaTags(baseURL string, doc *goquery.Document) (string, bool) {
	var found string
	doc.Find("meta, link").EachWithBreak(func(i int, s *goquery.Selection) bool {
		var ref string
		switch goquery.NodeName(s) {
		case "meta":
			ref = metaImageContent(s)
		case "link":
			ref = linkImageHref(s)
		}
		if ref == "" {
			return true
		}
		abs, err := utils.ResolveAgainst(baseURL, ref)
		if err != nil {
			return true
		}
		found = abs
		return false
	})
	return found, found != ""
}

func metaImageContent(s *goquery.Selection) string {
	key, _ := s.Attr("property")
	if key == "" {
		key, _ = s.Attr("name")
	}
	if key == "" {
		return ""
	}
	content, _ := s.Attr("content")
	if strings.TrimSpace(content) == "" {
		return ""
	}
	for _, k := range metaImageKeys {
		if strings.Contains(key, k) {
			return content
		}
	}
	return ""
}

func linkImageHref(s *goquery.Selection) string {
	rel, _ := s.Attr("rel")
	for _, r := range strings.Fields(rel) {
		if r == "image_src" {
			href, _ := s.Attr("href")
			return strings.TrimSpace(href)
		}
	}
	return ""
}

// fromJSONLD reads "image" fields of JSON-LD blocks. Malformed blocks are
// skipped.
func fromJSONLD(baseURL string, doc *goquery.Document) (string, bool) {
	var found string
	doc.Find("script").EachWithBreak(func(i int, s *goquery.Selection) bool {
		typ, _ := s.Attr("type")
		if !strings.EqualFold(strings.TrimSpace(typ), "application/ld+json") {
			return true
		}
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return true
		}

		var data any
		if err := json.Unmarshal([]byte(raw), &data); err != nil {
			return true
		}

		for _, img := range jsonLDImages(data) {
			ref := jsonLDImageRef(img)
			if ref == "" {
				continue
			}
			abs, err := utils.ResolveAgainst(baseURL, ref)
			if err != nil {
				continue
			}
			found = abs
			return false
		}
		return true
	})
	return found, found != ""
}

// jsonLDImages flattens the image values of an object, or of every object in
// an array, keeping their order.
func jsonLDImages(data any) []any {
	var imgs []any
	collect := func(obj map[string]any) {
		v, ok := obj["image"]
		if !ok {
			return
		}
		if list, ok := v.([]any); ok {
			imgs = append(imgs, list...)
			return
		}
		imgs = append(imgs, v)
	}

	switch v := data.(type) {
	case map[string]any:
		collect(v)
	case []any:
		for _, item := range v {
			if obj, ok := item.(map[string]any); ok {
				collect(obj)
			}
		}
	}
	return imgs
}

func jsonLDImageRef(img any) string {
	switch v := img.(type) {
	case string:
		return strings.TrimSpace(v)
	case map[string]any:
		if u, ok := v["url"].(string); ok {
			return strings.TrimSpace(u)
		}
	}
	return ""
}

// fromLargestImage picks the <img> with the largest declared width*height.
// Equal areas keep the earlier element.
func fromLargestImage(baseURL string, doc *goquery.Document) (string, bool) {
	var bestSrc string
	var bestArea int64

	doc.Find("img").Each(func(i int, s *goquery.Selection) {
		src := strings.TrimSpace(s.AttrOr("src", ""))
		if src == "" {
			src = strings.TrimSpace(s.AttrOr("data-src", ""))
		}
		if src == "" {
			return
		}
		area := dimension(s, "width") * dimension(s, "height")
		if area > bestArea {
			bestArea = area
			bestSrc = src
		}
	})

	if bestArea == 0 {
		return "", false
	}
	abs, err := utils.ResolveAgainst(baseURL, bestSrc)
	if err != nil {
		return "", false
	}
	return abs, true
}

// dimension reads a numeric size attribute. Missing, malformed or negative
// values count as 0; larger values are clamped to maxDimension.
func dimension(s *goquery.Selection, attr string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s.AttrOr(attr, "")), 10, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) && !strings.HasPrefix(numErr.Num, "-") {
			return maxDimension
		}
		return 0
	}
	if n < 0 {
		return 0
	}
	return min(n, maxDimension)
}
