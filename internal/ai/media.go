package ai

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
)

// Image is an encoded image held in memory for one provider call.
type Image struct {
	MIMEType string
	Data     []byte
}

// DataURL encodes the image as a base64 data URL.
func (i Image) DataURL() string {
	return fmt.Sprintf("data:%s;base64,%s", i.MIMEType, base64.StdEncoding.EncodeToString(i.Data))
}

// Download streams url into w.
func Download(ctx context.Context, client *http.Client, url string, w io.Writer) (int64, error) {
	return Fetch(ctx, client, url, nil, w)
}

// Fetch is Download with extra request headers, for URLs that need auth.
func Fetch(ctx context.Context, client *http.Client, url string, header http.Header, w io.Writer) (int64, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("download %s: unexpected status %d", url, resp.StatusCode)
	}
	return io.Copy(w, resp.Body)
}
