package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/dskvich/webchat-backend/pkg/domain"
)

const (
	duckDuckGoURL     = "https://duckduckgo.com"
	duckDuckGoHTMLURL = "https://html.duckduckgo.com/html/"
	userAgent         = "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"
	maxBodySize       = 2 * 1024 * 1024
)

var vqdRe = regexp.MustCompile(`vqd=["']?([0-9-]+)["']?`)

var duckDuckGoSafeSearch = map[SafeSearch]string{
	SafeSearchOn:       "1",
	SafeSearchModerate: "-1",
	SafeSearchOff:      "-2",
}

type duckDuckGoNewsResponse struct {
	Results []struct {
		Date    int64  `json:"date"`
		Title   string `json:"title"`
		Excerpt string `json:"excerpt"`
		URL     string `json:"url"`
		Source  string `json:"source"`
	} `json:"results"`
}

// DuckDuckGo queries the public DuckDuckGo endpoints: news.js for news and the
// html frontend for general text results.
type DuckDuckGo struct {
	hc      *http.Client
	baseURL string
	htmlURL string
}

func NewDuckDuckGo(hc *http.Client) *DuckDuckGo {
	return &DuckDuckGo{
		hc:      hc,
		baseURL: duckDuckGoURL,
		htmlURL: duckDuckGoHTMLURL,
	}
}

func (d *DuckDuckGo) Name() string { return "duckduckgo" }

func (d *DuckDuckGo) News(ctx context.Context, q Query) ([]domain.SearchHit, error) {
	vqd, err := d.fetchVQD(ctx, q.Text)
	if err != nil {
		return nil, fmt.Errorf("fetching vqd token: %w", err)
	}

	params := url.Values{}
	params.Set("l", q.Region)
	params.Set("o", "json")
	params.Set("noamp", "1")
	params.Set("q", q.Text)
	params.Set("vqd", vqd)
	params.Set("p", duckDuckGoSafeSearch[q.SafeSearch])
	if q.TimeLimit != "" {
		params.Set("df", q.TimeLimit)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"/news.js?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating news request: %w", err)
	}

	body, err := d.do(req)
	if err != nil {
		return nil, fmt.Errorf("news request: %w", err)
	}

	var resp duckDuckGoNewsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding news response: %w", err)
	}

	hits := make([]domain.SearchHit, 0, len(resp.Results))
	seen := make(map[string]struct{}, len(resp.Results))
	for _, r := range resp.Results {
		if len(hits) >= q.MaxResults {
			break
		}
		if _, dup := seen[r.URL]; dup {
			continue
		}
		seen[r.URL] = struct{}{}

		hit := domain.SearchHit{
			Title:  html.UnescapeString(r.Title),
			URL:    r.URL,
			Body:   html.UnescapeString(r.Excerpt),
			Source: r.Source,
		}
		if r.Date > 0 {
			hit.Date = time.Unix(r.Date, 0).UTC().Format(time.RFC3339)
		}
		hits = append(hits, hit)
	}

	return hits, nil
}

func (d *DuckDuckGo) Text(ctx context.Context, q Query) ([]domain.SearchHit, error) {
	form := url.Values{}
	form.Set("q", q.Text)
	form.Set("b", "")
	form.Set("kl", q.Region)
	form.Set("kp", duckDuckGoSafeSearch[q.SafeSearch])
	if q.TimeLimit != "" {
		form.Set("df", q.TimeLimit)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.htmlURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating text request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, err := d.do(req)
	if err != nil {
		return nil, fmt.Errorf("text request: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing text results: %w", err)
	}

	var hits []domain.SearchHit
	doc.Find("div.result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if len(hits) >= q.MaxResults {
			return false
		}
		if s.HasClass("result--ad") {
			return true
		}

		a := s.Find("a.result__a").First()
		href := resolveDuckDuckGoLink(a.AttrOr("href", ""))
		if href == "" || strings.HasPrefix(href, "http://www.google.com/search?q=") || strings.Contains(href, "duckduckgo.com/y.js") {
			return true
		}

		hits = append(hits, domain.SearchHit{
			Title: strings.TrimSpace(a.Text()),
			Href:  href,
			Body:  strings.TrimSpace(s.Find(".result__snippet").Text()),
		})
		return true
	})

	return hits, nil
}

func (d *DuckDuckGo) fetchVQD(ctx context.Context, query string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"/?q="+url.QueryEscape(query), nil)
	if err != nil {
		return "", err
	}

	body, err := d.do(req)
	if err != nil {
		return "", err
	}

	m := vqdRe.FindSubmatch(body)
	if m == nil {
		return "", fmt.Errorf("vqd token not found in response")
	}
	return string(m[1]), nil
}

func (d *DuckDuckGo) do(req *http.Request) ([]byte, error) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Referer", d.baseURL+"/")

	resp, err := d.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d, response: %s", resp.StatusCode, truncate(string(body), 200))
	}

	return body, nil
}

// resolveDuckDuckGoLink unwraps the //duckduckgo.com/l/?uddg=<target> redirect links.
func resolveDuckDuckGoLink(href string) string {
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}

	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if strings.HasSuffix(u.Host, "duckduckgo.com") && strings.HasPrefix(u.Path, "/l/") {
		if target := u.Query().Get("uddg"); target != "" {
			return target
		}
	}
	return href
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…(" + strconv.Itoa(len(s)-n) + " more bytes)"
}
