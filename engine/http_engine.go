package engine

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	tls "github.com/refraction-networking/utls"
)

// DefaultUserAgent is the minimal browser-like agent the crawler identifies
// itself with. Some sites reject requests without one.
const DefaultUserAgent = "Mozilla/5.0"

// HTTPEngine fetches pages with net/http over a Chrome-like TLS handshake.
// It does not render JavaScript.
type HTTPEngine struct {
	client       *http.Client
	userAgent    string
	maxBodyBytes int64
}

// HTTPOptions configures NewHTTPEngine. Zero values select defaults.
type HTTPOptions struct {
	UserAgent    string
	MaxBodyBytes int64
}

// chromeH1Spec is a Chrome-like TLS ClientHello with ALPN forced to http/1.1
// only. Computed once at init time and reused for every connection.
var chromeH1Spec tls.ClientHelloSpec

func init() {
	spec, err := tls.UTLSIdToSpec(tls.HelloChrome_Auto)
	if err != nil {
		return
	}
	// http.Transport cannot speak h2 over a utls connection.
	for i, ext := range spec.Extensions {
		if alpn, ok := ext.(*tls.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
			spec.Extensions[i] = alpn
			break
		}
	}
	chromeH1Spec = spec
}

// dialTLSChrome opens a TCP connection and performs the utls handshake.
func dialTLSChrome(ctx context.Context, network, addr string) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}
	host, _, _ := net.SplitHostPort(addr)
	tlsConn := tls.UClient(conn, &tls.Config{ServerName: host}, tls.HelloCustom)
	if err := tlsConn.ApplyPreset(&chromeH1Spec); err != nil {
		conn.Close()
		return nil, fmt.Errorf("http_engine: apply tls spec: %w", err)
	}
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return tlsConn, nil
}

// NewHTTPEngine creates an HTTPEngine.
func NewHTTPEngine(opts HTTPOptions) *HTTPEngine {
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 10 << 20
	}

	transport := &http.Transport{
		DialTLSContext:    dialTLSChrome,
		ForceAttemptHTTP2: false,
		MaxIdleConns:      64,
		IdleConnTimeout:   90 * time.Second,
	}
	return &HTTPEngine{
		client: &http.Client{
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		userAgent:    opts.UserAgent,
		maxBodyBytes: opts.MaxBodyBytes,
	}
}

func (e *HTTPEngine) Name() string { return "http" }

// Fetch issues a GET and returns the raw body. HTTP error statuses are not
// treated as failures: an error page still has a title worth reading.
func (e *HTTPEngine) Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("http_engine: build request: %w", err)
	}

	ua := req.UserAgent
	if ua == "" {
		ua = e.userAgent
	}
	httpReq.Header.Set("User-Agent", ua)
	httpReq.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http_engine: do request: %w", err)
	}
	defer resp.Body.Close()

	ct := resp.Header.Get("Content-Type")
	if !IsTextContentType(ct) {
		return nil, fmt.Errorf("http_engine: %w (content-type: %s)", ErrNotText, ct)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, e.maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("http_engine: read body: %w", err)
	}

	return &FetchResult{
		Body:        body,
		ContentType: ct,
		StatusCode:  resp.StatusCode,
		FinalURL:    resp.Request.URL.String(),
		EngineName:  e.Name(),
	}, nil
}
