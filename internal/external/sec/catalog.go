package sec

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const harvestBaseURL = "https://catalog.data.gov/harvest/object/"

var (
	harvestIDRe = regexp.MustCompile(`(?i)^/harvest/object/([a-f0-9\-]+)$`)
	secZipRe    = regexp.MustCompile(`(?i)https://www\.sec\.gov/files/[^\s"<>]+?\.zip\b`)
)

// DiscoverArchiveURLs walks the data.gov dataset page and its harvest
// objects and returns every sec.gov zip URL found, deduplicated in
// discovery order.
func (c *Client) DiscoverArchiveURLs(ctx context.Context) ([]string, error) {
	ids, err := c.fetchHarvestIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch harvest metadata: %w", err)
	}

	c.logger.WithField("count", len(ids)).Info("Found harvest objects")

	var urls []string
	seen := make(map[string]struct{})
	for _, id := range ids {
		found, err := c.fetchZipURLs(ctx, harvestBaseURL+id)
		if err != nil {
			// One broken harvest object must not abort discovery
			c.logger.WithError(err).WithField("harvest_id", id).Warn("Skipping harvest object")
			continue
		}
		for _, u := range found {
			if _, dup := seen[u]; dup {
				continue
			}
			seen[u] = struct{}{}
			urls = append(urls, u)
		}
	}

	c.logger.WithField("count", len(urls)).Info("Found SEC zip archives")
	return urls, nil
}

// fetchHarvestIDs scrapes the dataset page for harvest object links.
func (c *Client) fetchHarvestIDs(ctx context.Context) ([]string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.catalogClient.GetWithHeaders(ctx, c.catalogURL, c.headers())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse catalog page: %w", err)
	}

	var ids []string
	seen := make(map[string]struct{})
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		m := harvestIDRe.FindStringSubmatch(strings.TrimSpace(href))
		if m == nil {
			return
		}
		if _, dup := seen[m[1]]; dup {
			return
		}
		seen[m[1]] = struct{}{}
		ids = append(ids, m[1])
	})

	return ids, nil
}

// fetchZipURLs pulls one harvest object and extracts sec.gov zip links.
func (c *Client) fetchZipURLs(ctx context.Context, metaURL string) ([]string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.catalogClient.GetWithHeaders(ctx, metaURL, c.headers())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read harvest object: %w", err)
	}

	return secZipRe.FindAllString(string(body), -1), nil
}

// ExtractZipURLs is the raw link scan, split out for testing against
// captured harvest payloads.
func ExtractZipURLs(body string) []string {
	return secZipRe.FindAllString(body, -1)
}
