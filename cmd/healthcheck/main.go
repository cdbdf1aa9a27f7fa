// Command healthcheck probes the activity service the client talks to. It
// exits 0 when GET /activities answers 200 and 1 otherwise, so it can serve as
// a container HEALTHCHECK or a readiness gate in scripts.
package main

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

const defaultBaseURL = "http://127.0.0.1:8000"

func main() {
	os.Exit(check())
}

func check() int {
	target := activitiesURL(os.Getenv("SIGNUP_BASE_URL"))

	client := &http.Client{Timeout: 2 * time.Second}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 1
	}

	resp, err := client.Do(req)
	if err != nil {
		return 1
	}
	_ = resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 1
	}

	return 0
}

// activitiesURL builds the probe URL from the configured base URL. A bind-all
// host is replaced with loopback because the probe runs next to the service.
func activitiesURL(raw string) string {
	u, err := url.Parse(raw)
	if raw == "" || err != nil || u.Host == "" {
		u, _ = url.Parse(defaultBaseURL)
	}

	host, port, err := net.SplitHostPort(u.Host)
	if err == nil && (host == "" || host == "0.0.0.0") {
		u.Host = net.JoinHostPort("127.0.0.1", port)
	}

	u.Path = strings.TrimRight(u.Path, "/") + "/activities"
	u.RawQuery = ""
	return u.String()
}
