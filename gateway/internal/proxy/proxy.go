// Package proxy serves deployed sites by mapping the request subdomain to a
// project's artifact prefix on the origin store.
package proxy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/skydock-systems/skydock-stack/common/logging"
	"github.com/skydock-systems/skydock-stack/gateway/internal/metrics"
	"github.com/skydock-systems/skydock-stack/gateway/internal/resolver"
)

type Proxy struct {
	resolver   resolver.Resolver
	originURL  string
	pathPrefix string
	httpClient *http.Client
	logger     *logging.Logger
}

func NewProxy(res resolver.Resolver, originURL, pathPrefix string, timeout time.Duration, logger *logging.Logger) *Proxy {
	return &Proxy{
		resolver:   res,
		originURL:  strings.TrimSuffix(originURL, "/"),
		pathPrefix: strings.Trim(pathPrefix, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	subdomain := Subdomain(r.Host)
	if subdomain == "" {
		metrics.RequestsTotal.WithLabelValues("bad_host").Inc()
		http.Error(w, "Project Not Found", http.StatusNotFound)
		return
	}

	start := time.Now()
	projectID, err := p.resolver.Resolve(r.Context(), subdomain)
	metrics.ResolveDuration.Observe(time.Since(start).Seconds())

	if errors.Is(err, resolver.ErrNotFound) {
		metrics.UnknownSubdomains.Inc()
		metrics.RequestsTotal.WithLabelValues("not_found").Inc()
		http.Error(w, "Project Not Found", http.StatusNotFound)
		return
	}
	if err != nil {
		p.logger.Error("subdomain resolution failed",
			logging.Subdomain(subdomain),
			logging.Error(err),
		)
		metrics.RequestsTotal.WithLabelValues("resolve_error").Inc()
		http.Error(w, "Bad Gateway", http.StatusBadGateway)
		return
	}

	path := r.URL.Path
	if path == "/" {
		path = "/index.html"
	}

	targetURL := fmt.Sprintf("%s/%s/%s%s", p.originURL, p.pathPrefix, projectID, path)
	if r.URL.RawQuery != "" {
		targetURL += "?" + r.URL.RawQuery
	}

	proxyReq, err := http.NewRequestWithContext(r.Context(), r.Method, targetURL, r.Body)
	if err != nil {
		metrics.RequestsTotal.WithLabelValues("internal_error").Inc()
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	for key, values := range r.Header {
		if key == "Host" || key == "Cookie" || key == "Authorization" {
			continue
		}
		for _, value := range values {
			proxyReq.Header.Add(key, value)
		}
	}

	resp, err := p.httpClient.Do(proxyReq)
	if err != nil {
		metrics.UpstreamErrors.Inc()
		p.logger.Error("origin fetch failed",
			logging.Subdomain(subdomain),
			logging.ProjectID(projectID),
			logging.Error(err),
		)
		if isTimeout(err) {
			metrics.RequestsTotal.WithLabelValues("upstream_timeout").Inc()
			http.Error(w, "Gateway Timeout", http.StatusGatewayTimeout)
			return
		}
		metrics.RequestsTotal.WithLabelValues("upstream_error").Inc()
		http.Error(w, "Bad Gateway", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	for key, values := range resp.Header {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}

	metrics.RequestsTotal.WithLabelValues("proxied").Inc()
	w.WriteHeader(resp.StatusCode)
	io.Copy(w, resp.Body)
}

// Subdomain returns the leftmost label of the request host, ignoring any
// port. A host with a single label has no subdomain.
func Subdomain(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	label, rest, found := strings.Cut(host, ".")
	if !found || label == "" || rest == "" {
		return ""
	}
	return label
}

func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
