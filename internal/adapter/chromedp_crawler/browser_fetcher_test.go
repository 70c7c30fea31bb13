package chromedp_crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/user/catalog-imager/internal/repository"
	"go.uber.org/zap"
)

func TestStatusError(t *testing.T) {
	tests := []struct {
		status  int
		wantErr bool
	}{
		{0, false},
		{200, false},
		{204, false},
		{301, true},
		{404, true},
		{503, true},
	}
	for _, tt := range tests {
		err := statusError("https://x.test/", tt.status)
		if (err != nil) != tt.wantErr {
			t.Errorf("statusError(%d) = %v, wantErr %v", tt.status, err, tt.wantErr)
		}
		if err != nil && repository.StatusCodeOf(err) != tt.status {
			t.Errorf("StatusCodeOf = %d, want %d", repository.StatusCodeOf(err), tt.status)
		}
	}
}

func TestDocumentResponseKeepsFirstDocument(t *testing.T) {
	d := &documentResponse{}
	d.observe(&network.EventResponseReceived{
		Type:     network.ResourceTypeImage,
		Response: &network.Response{Status: 500, URL: "https://x.test/a.png"},
	})
	d.observe(&network.EventResponseReceived{
		Type:     network.ResourceTypeDocument,
		Response: &network.Response{Status: 404, URL: "https://x.test/page", MimeType: "text/html"},
	})
	d.observe(&network.EventResponseReceived{
		Type:     network.ResourceTypeDocument,
		Response: &network.Response{Status: 200, URL: "https://ads.test/frame"},
	})

	if d.status != 404 || d.url != "https://x.test/page" || d.contentType != "text/html" {
		t.Errorf("unexpected captured response %+v", d)
	}
}

func chromeAvailable() bool {
	for _, name := range []string{"google-chrome", "chromium", "chromium-browser", "headless-shell"} {
		if _, err := exec.LookPath(name); err == nil {
			return true
		}
	}
	return false
}

func TestBrowserFetcher_Fetch(t *testing.T) {
	if testing.Short() || !chromeAvailable() {
		t.Skip("headless Chrome not available")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head><meta property="og:image" content="/a.jpg"></head><body>hi</body></html>`))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`<html><body>gone</body></html>`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	f := NewBrowserFetcher("catalog-imager-test", 30*time.Second, zap.NewNop())
	defer f.Close()

	page, err := f.Fetch(context.Background(), server.URL+"/ok")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if !strings.Contains(page.Markup, "og:image") {
		t.Errorf("rendered markup missing meta tag: %q", page.Markup)
	}

	_, err = f.Fetch(context.Background(), server.URL+"/missing")
	if repository.StatusCodeOf(err) != http.StatusNotFound {
		t.Errorf("expected 404 status error, got %v", err)
	}
}
