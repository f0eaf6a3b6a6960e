package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	tls "github.com/refraction-networking/utls"
	"golang.org/x/net/html"
)

const (
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36"

	// maxBody caps how much of a response is read.
	maxBody = 10 << 20
)

// HTTPEngine fetches pages with plain net/http. https targets are dialed
// with a Chrome-like TLS fingerprint.
type HTTPEngine struct {
	client    *http.Client
	userAgent string
}

// chromeH1Spec is a Chrome-like TLS ClientHello with ALPN forced to
// http/1.1, since http.Transport cannot speak h2 over a utls connection.
var chromeH1Spec tls.ClientHelloSpec

func init() {
	spec, err := tls.UTLSIdToSpec(tls.HelloChrome_Auto)
	if err != nil {
		return
	}
	for i, ext := range spec.Extensions {
		if alpn, ok := ext.(*tls.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
			spec.Extensions[i] = alpn
			break
		}
	}
	chromeH1Spec = spec
}

// HTTPOption configures an HTTPEngine.
type HTTPOption func(*HTTPEngine)

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) HTTPOption {
	return func(e *HTTPEngine) {
		if ua != "" {
			e.userAgent = ua
		}
	}
}

// WithTransport replaces the HTTP transport (tests use httptest servers).
func WithTransport(rt http.RoundTripper) HTTPOption {
	return func(e *HTTPEngine) { e.client.Transport = rt }
}

// NewHTTPEngine creates an HTTPEngine whose requests time out after
// timeout (0 means no client-side limit beyond the request context).
func NewHTTPEngine(timeout time.Duration, opts ...HTTPOption) *HTTPEngine {
	transport := &http.Transport{
		Proxy:             http.ProxyFromEnvironment,
		DialTLSContext:    dialChromeTLS,
		ForceAttemptHTTP2: false,
	}
	e := &HTTPEngine{
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return errors.New("too many redirects")
				}
				return nil
			},
		},
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func dialChromeTLS(ctx context.Context, network, addr string) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}
	host, _, _ := net.SplitHostPort(addr)
	tlsConn := tls.UClient(conn, &tls.Config{ServerName: host}, tls.HelloCustom)
	if err := tlsConn.ApplyPreset(&chromeH1Spec); err != nil {
		conn.Close()
		return nil, fmt.Errorf("apply tls spec: %w", err)
	}
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return tlsConn, nil
}

func (e *HTTPEngine) Name() string { return "http" }

// Fetch GETs req.URL. A transport failure, including req.Timeout running
// out, is temporary as long as ctx itself is still live.
func (e *HTTPEngine) Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	attemptCtx := ctx
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, &FetchError{Engine: e.Name(), URL: req.URL, Err: err}
	}
	httpReq.Header.Set("User-Agent", e.userAgent)
	httpReq.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	httpReq.Header.Set("Accept-Language", "en-US,en;q=0.9")
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, &FetchError{Engine: e.Name(), URL: req.URL, Temporary: ctx.Err() == nil, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, &FetchError{Engine: e.Name(), URL: req.URL, Temporary: ctx.Err() == nil, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode >= 400 {
		return nil, &FetchError{
			Engine:     e.Name(),
			URL:        req.URL,
			StatusCode: resp.StatusCode,
			Temporary:  resp.StatusCode >= 500,
			Err:        errors.New(http.StatusText(resp.StatusCode)),
		}
	}
	if ct := resp.Header.Get("Content-Type"); !isHTMLContentType(ct) {
		return nil, &FetchError{
			Engine:     e.Name(),
			URL:        req.URL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected content-type %q", ct),
		}
	}

	bodyStr := string(body)
	return &FetchResult{
		HTML:       bodyStr,
		Title:      extractTitle(bodyStr),
		StatusCode: resp.StatusCode,
		FinalURL:   resp.Request.URL.String(),
		EngineName: e.Name(),
	}, nil
}

// isHTMLContentType returns true if the content-type header looks like HTML.
func isHTMLContentType(ct string) bool {
	ct = strings.ToLower(ct)
	return strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml+xml")
}

// extractTitle returns the text of the first <title> element.
func extractTitle(htmlStr string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(htmlStr))
	inTitle := false
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken:
			tn, _ := tokenizer.TagName()
			inTitle = string(tn) == "title"
		case html.TextToken:
			if inTitle {
				return strings.TrimSpace(string(tokenizer.Text()))
			}
		case html.EndTagToken:
			if inTitle {
				return ""
			}
		}
	}
}
