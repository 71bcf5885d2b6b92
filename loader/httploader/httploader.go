package httploader

import (
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"sync"

	"github.com/pixelop/satine"
)

// HTTPLoader loads image from HTTP(s) source
type HTTPLoader struct {
	// Transport used to request images.
	// If nil, http.DefaultTransport is used.
	Transport http.RoundTripper

	// ForwardHeaders copied from request to image source request.
	// "*" forwards all headers
	ForwardHeaders []string

	// OverrideHeaders set on image source request
	OverrideHeaders map[string]string

	// AllowedSources list of host names allowed to load from,
	// supports glob patterns such as *.google.com
	AllowedSources []string

	// MaxAllowedSize maximum bytes allowed, checked via HEAD request
	MaxAllowedSize int

	// DefaultScheme used when image path carries no scheme.
	// "nil" disables scheme fallback
	DefaultScheme string

	// Accept header for image source request
	Accept string

	// UserAgent header for image source request
	UserAgent string

	accepts []string
}

func New(options ...Option) *HTTPLoader {
	h := &HTTPLoader{
		OverrideHeaders: map[string]string{},
		DefaultScheme:   "https",
		UserAgent:       "satine/" + satine.Version,
		Accept:          "*/*",
	}
	for _, option := range options {
		option(h)
	}
	if h.Accept != "" && h.Accept != "*/*" {
		for _, seg := range strings.Split(h.Accept, ",") {
			if typ := parseContentType(seg); typ != "" {
				h.accepts = append(h.accepts, typ)
			}
		}
	}
	return h
}

func (h *HTTPLoader) Get(r *http.Request, image string) (*satine.Blob, error) {
	if r.Method != http.MethodGet || image == "" {
		return nil, satine.ErrPass
	}
	u, err := url.Parse(image)
	if err != nil {
		return nil, satine.ErrPass
	}
	if u.Host == "" || u.Scheme == "" {
		if h.DefaultScheme == "nil" {
			return nil, satine.ErrPass
		}
		image = h.DefaultScheme + "://" + image
		if u, err = url.Parse(image); err != nil {
			return nil, satine.ErrPass
		}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, satine.ErrPass
	}
	if !h.isURLAllowed(u) {
		return nil, satine.ErrSourceNotAllowed
	}
	client := &http.Client{Transport: h.Transport}
	if h.MaxAllowedSize > 0 {
		req, err := h.newRequest(r, http.MethodHead, image)
		if err != nil {
			return nil, err
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		_ = resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode > 206 {
			return nil, satine.NewErrorFromStatusCode(resp.StatusCode)
		}
		contentLength, _ := strconv.Atoi(resp.Header.Get("Content-Length"))
		if contentLength > h.MaxAllowedSize {
			return nil, satine.ErrMaxSizeExceeded
		}
	}
	var blob *satine.Blob
	var once sync.Once
	blob = satine.NewBlob(func() (io.ReadCloser, int64, error) {
		req, err := h.newRequest(r, http.MethodGet, image)
		if err != nil {
			return nil, 0, err
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, 0, err
		}
		if resp.StatusCode >= 400 {
			_ = resp.Body.Close()
			return nil, 0, satine.NewErrorFromStatusCode(resp.StatusCode)
		}
		contentType := resp.Header.Get("Content-Type")
		if len(h.accepts) > 0 && !h.isContentTypeAllowed(contentType) {
			_ = resp.Body.Close()
			return nil, 0, satine.ErrUnsupportedFormat
		}
		once.Do(func() {
			if contentType != "" {
				blob.SetContentType(contentType)
			}
		})
		return resp.Body, resp.ContentLength, nil
	})
	return blob, nil
}

func (h *HTTPLoader) newRequest(r *http.Request, method, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(r.Context(), method, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", h.UserAgent)
	if h.Accept != "" {
		req.Header.Set("Accept", h.Accept)
	}
	for _, header := range h.ForwardHeaders {
		if header == "*" {
			req.Header = r.Header.Clone()
			req.Header.Del("Host")
			break
		}
		if _, ok := r.Header[header]; ok {
			req.Header.Set(header, r.Header.Get(header))
		}
	}
	for key, value := range h.OverrideHeaders {
		req.Header.Set(key, value)
	}
	return req, nil
}

func (h *HTTPLoader) isURLAllowed(u *url.URL) bool {
	if len(h.AllowedSources) == 0 {
		return true
	}
	for _, source := range h.AllowedSources {
		if matched, e := path.Match(source, u.Host); matched && e == nil {
			return true
		}
	}
	return false
}

func (h *HTTPLoader) isContentTypeAllowed(contentType string) bool {
	contentType = parseContentType(contentType)
	for _, accept := range h.accepts {
		if accept == contentType {
			return true
		}
		if base, ok := strings.CutSuffix(accept, "/*"); ok &&
			strings.HasPrefix(contentType, base+"/") {
			return true
		}
	}
	return false
}

func parseContentType(contentType string) string {
	if idx := strings.IndexByte(contentType, ';'); idx > -1 {
		contentType = contentType[:idx]
	}
	return strings.TrimSpace(contentType)
}
