package forecache

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
)

// Upstream forwards inbound requests to the one configured target server.
// It buffers the complete response before returning, so a fetched response
// is always whole: there is no partial capture.
type Upstream struct {
	target *url.URL
	client *http.Client
	log    zerolog.Logger
}

// UpstreamResponse is a fully buffered response from the target.
type UpstreamResponse struct {
	Status int
	Header http.Header
	Body   []byte
}

// UnavailableError means the outbound connection to the target could not be
// established, or failed before any response arrived.
type UnavailableError struct {
	Target string
	Err    error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("upstream %s unavailable: %v", e.Target, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// StreamError means the upstream response body could not be read to
// completion after the headers had been received.
type StreamError struct {
	Target string
	Err    error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("error reading response from upstream %s: %v", e.Target, e.Err)
}

func (e *StreamError) Unwrap() error { return e.Err }

// NewUpstream creates a forwarder for the given target.
// If client is nil, a client that does not follow redirects is used, so
// upstream redirects are captured and replayed as-is.
func NewUpstream(target *url.URL, client *http.Client, logger zerolog.Logger) *Upstream {
	if client == nil {
		client = &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		}
	}
	return &Upstream{
		target: target,
		client: client,
		log:    logger,
	}
}

// Fetch sends the inbound request to the target and buffers the full
// response. The request method and headers are passed through, except the
// Host header, which is rewritten to the target's host so the upstream
// routes the request correctly. The outbound scheme, host and port always
// come from the configured target, never from the inbound request URL. The
// inbound body, if any, is streamed outward without buffering.
func (u *Upstream) Fetch(r *http.Request) (*UpstreamResponse, error) {
	req := r.Clone(r.Context())
	req.URL.Scheme = u.target.Scheme
	req.URL.Host = u.target.Host
	req.URL.Path = singleJoiningSlash(u.target.Path, r.URL.Path)
	req.Host = u.target.Host
	// must be empty for client requests
	req.RequestURI = ""
	removeHopByHopHeaders(req.Header)

	u.log.Trace().Str("url", req.URL.String()).Msgf("Forwarding %s to target", r.Method)

	res, err := u.client.Do(req)
	if err != nil {
		return nil, &UnavailableError{Target: u.target.Host, Err: err}
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &StreamError{Target: u.target.Host, Err: err}
	}
	removeHopByHopHeaders(res.Header)

	return &UpstreamResponse{
		Status: res.StatusCode,
		Header: res.Header,
		Body:   body,
	}, nil
}

// singleJoiningSlash joins the target base path and the request path with
// exactly one slash between them.
func singleJoiningSlash(a, b string) string {
	aslash := strings.HasSuffix(a, "/")
	bslash := strings.HasPrefix(b, "/")
	switch {
	case aslash && bslash:
		return a + b[1:]
	case !aslash && !bslash:
		return a + "/" + b
	}
	return a + b
}
