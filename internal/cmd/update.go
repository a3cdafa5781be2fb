package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Bochyn/Image-to-video/internal/version"
)

const repoOwner = "Bochyn"
const repoName = "Image-to-video"

func latestVersionTag() (string, error) {
	client := &http.Client{Timeout: 5 * time.Second}
	url := fmt.Sprintf("https://api.github.com/repos/%s/%s/releases/latest", repoOwner, repoName)
	req, _ := http.NewRequest("GET", url, nil)
	req.Header.Set("User-Agent", "restyle-updater")
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("release lookup: status %d", resp.StatusCode)
	}
	var release struct {
		Tag string `json:"tag_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return "", err
	}
	return strings.TrimSpace(release.Tag), nil
}

// maybeSelfUpdate prints an install one-liner when a newer release exists.
// The binary is never replaced in place.
func maybeSelfUpdate(out interface{ Println(a ...any) }) {
	if version.Version == "dev" {
		return
	}
	tag, err := latestVersionTag()
	if err != nil || tag == "" || tag == version.Version {
		return
	}

	out.Println("A newer restyle is available (", tag, "), update with:")
	out.Println("  ", fmt.Sprintf("go install github.com/%s/%s@%s", repoOwner, repoName, tag))
}
