// Package datasource is the default network DataSourceFactory used by
// builders when no HTTPDataSourceFactoryProvider is registered.
package datasource

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"media-extensions/internal/media"

	"github.com/pkg/errors"
)

// DefaultTimeout bounds a single Open when the factory builds its own client.
const DefaultTimeout = 30 * time.Second

// ErrBadStatus is returned by Open when the server answers with a 4xx or 5xx.
var ErrBadStatus = errors.New("unexpected http status")

// HTTPFactory creates DataSources that GET a URI with a fixed User-Agent.
type HTTPFactory struct {
	client    *http.Client
	userAgent string
	listener  media.TransferListener
}

// NewHTTPFactory returns a factory using its own http.Client. listener may be nil.
func NewHTTPFactory(userAgent string, listener media.TransferListener) *HTTPFactory {
	return NewHTTPFactoryWithClient(&http.Client{Timeout: DefaultTimeout}, userAgent, listener)
}

// NewHTTPFactoryWithClient returns a factory that issues requests with client.
func NewHTTPFactoryWithClient(client *http.Client, userAgent string, listener media.TransferListener) *HTTPFactory {
	return &HTTPFactory{client: client, userAgent: userAgent, listener: listener}
}

// UserAgent returns the User-Agent header sent with every request.
func (f *HTTPFactory) UserAgent() string { return f.userAgent }

// Listener returns the transfer listener, or nil.
func (f *HTTPFactory) Listener() media.TransferListener { return f.listener }

// CreateDataSource implements media.DataSourceFactory.
func (f *HTTPFactory) CreateDataSource() media.DataSource {
	return &httpDataSource{factory: f}
}

type httpDataSource struct {
	factory *HTTPFactory
}

// Open issues a GET for uri. The returned body reports bytes read and the end
// of the transfer to the factory's listener.
func (s *httpDataSource) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "build request for %s", uri)
	}
	if s.factory.userAgent != "" {
		req.Header.Set("User-Agent", s.factory.userAgent)
	}

	res, err := s.factory.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "get %s", uri)
	}
	if res.StatusCode >= 400 {
		res.Body.Close()
		return nil, errors.Wrapf(ErrBadStatus, "get %s: %d", uri, res.StatusCode)
	}

	l := s.factory.listener
	if l == nil {
		return res.Body, nil
	}
	l.OnTransferStart(uri)
	return &listeningBody{ReadCloser: res.Body, uri: uri, listener: l}, nil
}

// listeningBody forwards reads to the listener and reports the end of the
// transfer exactly once, on Close.
type listeningBody struct {
	io.ReadCloser
	uri      string
	listener media.TransferListener
	once     sync.Once
}

func (b *listeningBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	if n > 0 {
		b.listener.OnBytesTransferred(b.uri, int64(n))
	}
	return n, err
}

func (b *listeningBody) Close() error {
	err := b.ReadCloser.Close()
	b.once.Do(func() { b.listener.OnTransferEnd(b.uri) })
	return err
}
