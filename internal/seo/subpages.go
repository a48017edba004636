package seo

import (
	"bytes"
	"context"
	"encoding/xml"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	robotstxt "github.com/temoto/robotstxt"
	"golang.org/x/sync/errgroup"
	"seoscout/internal/fetch"
	"seoscout/pkg/models"
)

const (
	minContentLength = 500
	maxRankedPages   = 10
	scoreConcurrency = 4
)

// sitemapPaths are the conventional sitemap locations, tried in order.
var sitemapPaths = []string{"/sitemap.xml", "/sitemap_index.xml", "/sitemap/sitemap.xml"}

// DiscoverOptions controls subpage discovery.
type DiscoverOptions struct {
	MaxPages  int
	UserAgent string
	Client    *http.Client
}

type candidate struct {
	url    string
	source string
}

// DiscoverSubpages finds pages of a site through its sitemap, falling back
// to a same-host crawl, then scores each one by content weight. Pages the
// site's robots.txt disallows are skipped. Returns the top pages sorted by
// importance.
func DiscoverSubpages(ctx context.Context, fetcher fetch.Fetcher, siteURL string, opts DiscoverOptions) ([]models.Subpage, error) {
	base, err := url.Parse(siteURL)
	if err != nil {
		return nil, err
	}
	if base.Scheme == "" {
		base.Scheme = "https"
	}

	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}

	// robots.txt is advisory: a missing or broken one never blocks discovery
	robots, _ := fetchRobots(ctx, client, base, opts.UserAgent)

	seen := make(map[string]bool)
	var candidates []candidate
	add := func(raw, source string) bool {
		if len(candidates) >= opts.MaxPages {
			return true
		}
		u, err := base.Parse(strings.TrimSpace(raw))
		if err != nil {
			return false
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return false
		}
		if !strings.EqualFold(u.Hostname(), base.Hostname()) {
			return false
		}
		u.Fragment = ""
		final := u.String()
		if seen[final] {
			return false
		}
		if robots != nil && !robots.FindGroup(opts.UserAgent).Test(u.Path) {
			return false
		}
		seen[final] = true
		candidates = append(candidates, candidate{url: final, source: source})
		return len(candidates) >= opts.MaxPages
	}

	collectFromSitemaps(ctx, client, base, add)
	if len(candidates) < opts.MaxPages {
		crawlSite(ctx, fetcher, base, opts.MaxPages, add)
	}

	// Score candidates with a bounded worker group; a page that fails to
	// fetch or parse is simply left out.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(scoreConcurrency)
	var mu sync.Mutex
	var pages []models.Subpage

	for _, c := range candidates {
		g.Go(func() error {
			sp, ok := scorePage(gctx, fetcher, c.url, c.source)
			if !ok {
				return nil
			}
			mu.Lock()
			pages = append(pages, sp)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(pages, func(i, j int) bool {
		if pages[i].Importance != pages[j].Importance {
			return pages[i].Importance > pages[j].Importance
		}
		return pages[i].URL < pages[j].URL
	})
	if len(pages) > maxRankedPages {
		pages = pages[:maxRankedPages]
	}
	if pages == nil {
		pages = []models.Subpage{}
	}
	return pages, nil
}

// fetchRobots fetches and parses robots.txt for a given base URL.
func fetchRobots(ctx context.Context, client *http.Client, base *url.URL, userAgent string) (*robotstxt.RobotsData, error) {
	robotsURL := &url.URL{
		Scheme: base.Scheme,
		Host:   base.Host,
		Path:   "/robots.txt",
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL.String(), nil)
	if err != nil {
		return nil, err
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return robotstxt.FromStatusAndBytes(resp.StatusCode, body)
}

// collectFromSitemaps tries the conventional sitemap locations and feeds
// every <loc> it finds to add. Sitemaps go through a plain HTTP client
// because they are XML, not pages to render.
func collectFromSitemaps(ctx context.Context, client *http.Client, base *url.URL, add func(url, source string) bool) {
	for _, path := range sitemapPaths {
		sitemapURL := &url.URL{Scheme: base.Scheme, Host: base.Host, Path: path}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, sitemapURL.String(), nil)
		if err != nil {
			continue
		}
		resp, err := client.Do(req)
		if err != nil {
			continue
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil || resp.StatusCode != http.StatusOK {
			continue
		}

		for _, loc := range sitemapLocs(body) {
			if add(loc, "sitemap") {
				return
			}
		}
	}
}

// sitemapLocs extracts every <loc> element, whether the document is a urlset
// or a sitemap index.
func sitemapLocs(body []byte) []string {
	dec := xml.NewDecoder(bytes.NewReader(body))
	var locs []string
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "loc" {
			continue
		}
		var loc string
		if err := dec.DecodeElement(&loc, &se); err != nil {
			continue
		}
		if loc = strings.TrimSpace(loc); loc != "" {
			locs = append(locs, loc)
		}
	}
	return locs
}

// crawlSite walks same-host links breadth-first from the site root, feeding
// discovered URLs to add until it reports the set is full.
func crawlSite(ctx context.Context, fetcher fetch.Fetcher, base *url.URL, maxVisits int, add func(url, source string) bool) {
	root := &url.URL{Scheme: base.Scheme, Host: base.Host, Path: "/"}
	frontier := []string{root.String()}
	visited := make(map[string]bool)

	for len(frontier) > 0 && len(visited) < maxVisits {
		if ctx.Err() != nil {
			return
		}

		current := frontier[0]
		frontier = frontier[1:]
		if visited[current] {
			continue
		}
		visited[current] = true

		page, err := fetcher.Fetch(ctx, current)
		if err != nil {
			continue
		}
		doc, err := ParseHTML(page.HTML)
		if err != nil {
			continue
		}
		pageURL, err := url.Parse(page.URL)
		if err != nil {
			continue
		}

		full := false
		doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
			if full {
				return
			}
			href := strings.TrimSpace(sel.AttrOr("href", ""))
			if href == "" || strings.HasPrefix(href, "#") {
				return
			}
			linkURL, err := pageURL.Parse(href)
			if err != nil {
				return
			}
			if !strings.EqualFold(linkURL.Hostname(), base.Hostname()) {
				return
			}
			linkURL.Fragment = ""
			final := linkURL.String()
			if add(final, "crawl") {
				full = true
				return
			}
			if !visited[final] {
				frontier = append(frontier, final)
			}
		})
		if full {
			return
		}
	}
}

// scorePage fetches one page and rates its importance. Thin pages and pages
// that fail to load are dropped.
func scorePage(ctx context.Context, fetcher fetch.Fetcher, pageURL, source string) (models.Subpage, bool) {
	page, err := fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return models.Subpage{}, false
	}
	doc, err := ParseHTML(page.HTML)
	if err != nil {
		return models.Subpage{}, false
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = "No title"
	}

	content := mainContent(doc)
	if len(content) < minContentLength {
		return models.Subpage{}, false
	}

	headings := doc.Find("h1, h2, h3").Length()
	images := doc.Find("img").Length()

	internal, external := 0, 0
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href := strings.TrimSpace(sel.AttrOr("href", ""))
		if href == "" {
			return
		}
		if strings.HasPrefix(href, "http") {
			external++
		} else {
			internal++
		}
	})

	depth := urlDepth(pageURL)

	return models.Subpage{
		URL:        pageURL,
		Title:      title,
		Importance: importanceScore(len(content), headings, images, internal, external, depth),
		Depth:      depth,
		Source:     source,
	}, true
}

// mainContent returns page text with chrome stripped, preferring a main or
// article region when one exists.
func mainContent(doc *goquery.Document) string {
	doc.Find("nav, footer, header, aside").Remove()

	for _, selector := range []string{"main", "article", "div[class*='content'], div[class*='main'], div[class*='article']"} {
		if region := doc.Find(selector).First(); region.Length() > 0 {
			return region.Text()
		}
	}
	return doc.Text()
}

// importanceScore weighs content volume, structure, and linking, with a
// penalty for deeply nested pages.
func importanceScore(contentLen, headings, images, internal, external, depth int) float64 {
	score := math.Min(float64(contentLen)/1000, 20)
	score += math.Min(float64(headings)*2, 10)
	score += math.Min(float64(images), 5)
	score += math.Min(float64(internal)/2, 5)
	score += math.Min(float64(external), 5)
	if depth > 0 {
		score -= float64(depth)
	}
	return math.Max(score, 0)
}

// urlDepth counts path segments beyond the scheme and host.
func urlDepth(rawURL string) int {
	depth := strings.Count(rawURL, "/") - 3
	if depth < 0 {
		return 0
	}
	return depth
}
