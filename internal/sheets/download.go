package sheets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"
)

var spreadsheetIDRE = regexp.MustCompile(`/spreadsheets/d/([A-Za-z0-9_-]+)`)

// ExportURL rewrites a Google Sheets URL into its CSV export URL,
// preserving an explicit sheet tab (gid fragment). URLs that already
// point at an export pass through unchanged.
func ExportURL(raw string) (string, error) {
	if strings.Contains(raw, "/export") {
		return raw, nil
	}
	m := spreadsheetIDRE.FindStringSubmatch(raw)
	if m == nil {
		return "", fmt.Errorf("not a Google Sheets URL: %s", raw)
	}

	params := url.Values{"format": {"csv"}}
	if _, gid, ok := strings.Cut(raw, "#gid="); ok {
		params.Set("gid", gid)
	}
	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/export?%s",
		m[1], params.Encode()), nil
}

// Download fetches a CSV export to destPath. Only publicly shared sheets
// work; there is deliberately no OAuth here.
func Download(ctx context.Context, rawURL, destPath string) error {
	exportURL, err := ExportURL(rawURL)
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: 30 * time.Second}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, exportURL, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("downloading sheet: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("downloading sheet: unexpected status %s", resp.Status)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", destPath, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("writing %s: %w", destPath, err)
	}
	return nil
}
