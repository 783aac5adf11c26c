// Package update checks GitHub Releases for a newer auditengine.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Repo is the GitHub repository releases are published to.
const Repo = "openaudit/auditengine"

// Result holds the outcome of a version check.
type Result struct {
	Latest     string // e.g. "v0.4.0"
	Current    string
	InstallCmd string
}

// NeedsUpdate reports whether Latest differs from Current. A leading "v" is
// ignored on both sides.
func (r *Result) NeedsUpdate() bool {
	return strings.TrimPrefix(r.Latest, "v") != strings.TrimPrefix(r.Current, "v")
}

// githubRelease is the minimal JSON shape we need from the GitHub API.
type githubRelease struct {
	TagName    string `json:"tag_name"`
	Draft      bool   `json:"draft"`
	Prerelease bool   `json:"prerelease"`
}

// defaultBaseURL is the GitHub API base URL, overridable for testing.
var defaultBaseURL = "https://api.github.com"

// Checker queries the releases API.
type Checker struct {
	BaseURL string
	Client  *http.Client
}

// CheckLatest returns the latest release of Repo compared with current. Dev
// builds are never checked and return nil, nil.
func CheckLatest(ctx context.Context, current string) (*Result, error) {
	if current == "dev" {
		return nil, nil
	}
	c := &Checker{BaseURL: defaultBaseURL, Client: &http.Client{Timeout: 3 * time.Second}}
	return c.Check(ctx, current, Repo)
}

// Check fetches the latest release of repo.
func (c *Checker) Check(ctx context.Context, current, repo string) (*Result, error) {
	url := fmt.Sprintf("%s/repos/%s/releases/latest", strings.TrimRight(c.BaseURL, "/"), repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("querying releases: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("querying releases: %s", resp.Status)
	}

	var release githubRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("decoding release: %w", err)
	}
	if release.TagName == "" || release.Draft || release.Prerelease {
		return nil, fmt.Errorf("no published release for %s", repo)
	}

	return &Result{
		Latest:     release.TagName,
		Current:    current,
		InstallCmd: fmt.Sprintf("go install github.com/%s/cmd/auditengine@%s", repo, release.TagName),
	}, nil
}
