package html2png

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-html2png/internal/fileutil"
	"github.com/alnah/go-html2png/internal/netutil"
)

// Liveness probe and shutdown bounds for the content server.
const (
	livenessAttempts = 5
	livenessInterval = 100 * time.Millisecond
	livenessTimeout  = 2 * time.Second
	shutdownTimeout  = 3 * time.Second
)

// extraContentTypes extends the stdlib MIME table with the data formats a
// chart page fetches from its served root.
var extraContentTypes = map[string]string{
	".csv":     "text/csv; charset=utf-8",
	".json":    "application/json",
	".geojson": "application/json",
	".md":      "text/markdown; charset=utf-8",
}

// ContentServer serves one directory tree over loopback HTTP for the
// lifetime of a single render. It owns its listener and serving
// goroutine; Shutdown is idempotent and safe after a failed start.
type ContentServer struct {
	root    string
	ln      net.Listener
	srv     *http.Server
	port    int
	baseURL string
	log     *zap.Logger

	mu     sync.Mutex
	closed bool
}

// StartContentServer binds a loopback listener, starts serving root in
// the background, and returns only after a liveness probe against the
// server's own root succeeds.
//
// preferredPort 0 requests auto-assignment; the resolved port is
// available via Port. A non-zero preferred port that is already bound
// fails with ErrPortInUse, never a silent fallback.
func StartContentServer(root string, preferredPort int, log *zap.Logger) (*ContentServer, error) {
	if log == nil {
		log = zap.NewNop()
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServedRootInvalid, err)
	}
	if !fileutil.DirExists(absRoot) {
		return nil, fmt.Errorf("%w: %s", ErrServedRootInvalid, absRoot)
	}
	if preferredPort < 0 || preferredPort > 65535 {
		return nil, fmt.Errorf("%w: port %d out of range", ErrServerDidNotStart, preferredPort)
	}

	// Distinguish "port taken" from other bind failures before listening,
	// so callers get a retryable ErrPortInUse for the common case.
	if preferredPort != 0 && !netutil.IsTCPPortAvailable(preferredPort) {
		return nil, fmt.Errorf("%w: %d", ErrPortInUse, preferredPort)
	}

	ln, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(preferredPort)))
	if err != nil {
		if preferredPort != 0 {
			return nil, fmt.Errorf("%w: %d: %v", ErrPortInUse, preferredPort, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrServerDidNotStart, err)
	}

	port := ln.Addr().(*net.TCPAddr).Port
	s := &ContentServer{
		root:    absRoot,
		ln:      ln,
		port:    port,
		baseURL: fmt.Sprintf("http://127.0.0.1:%d", port),
		log:     log,
		srv: &http.Server{
			Handler:           newFileHandler(absRoot),
			ReadHeaderTimeout: 5 * time.Second,
		},
	}

	go func() {
		if serveErr := s.srv.Serve(ln); serveErr != nil && serveErr != http.ErrServerClosed {
			log.Debug("content server stopped", zap.Error(serveErr))
		}
	}()

	if err := netutil.ProbeHTTPRetry(context.Background(), s.baseURL+"/", livenessAttempts, livenessInterval, livenessTimeout); err != nil {
		_ = s.Shutdown(context.Background())
		return nil, fmt.Errorf("%w: %v", ErrServerDidNotStart, err)
	}

	log.Debug("content server started",
		zap.String("root", absRoot),
		zap.Int("port", port))
	return s, nil
}

// Port returns the resolved bound port.
func (s *ContentServer) Port() int { return s.port }

// BaseURL returns the server's loopback base URL without a trailing slash.
func (s *ContentServer) BaseURL() string { return s.baseURL }

// Root returns the absolute served root directory.
func (s *ContentServer) Root() string { return s.root }

// DocumentURL maps a document path to its URL under this server. The
// document must be a descendant of the served root, else
// ErrDocumentOutsideRoot.
func (s *ContentServer) DocumentURL(docPath string) (string, error) {
	rel, ok := fileutil.RelWithinRoot(s.root, docPath)
	if !ok {
		return "", fmt.Errorf("%w: %s not under %s", ErrDocumentOutsideRoot, docPath, s.root)
	}
	return s.baseURL + "/" + rel, nil
}

// Probe verifies the server answers over HTTP. Failure maps to
// ErrServerUnreachable.
func (s *ContentServer) Probe(ctx context.Context) error {
	if err := netutil.ProbeHTTP(ctx, s.baseURL+"/", livenessTimeout); err != nil {
		return fmt.Errorf("%w: %v", ErrServerUnreachable, err)
	}
	return nil
}

// Shutdown closes the listening socket and drains in-flight requests.
// It is idempotent; repeat calls return nil.
func (s *ContentServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	err := s.srv.Shutdown(ctx)
	if err != nil {
		// Drain timed out; force-close so the port is released regardless.
		_ = s.srv.Close()
	}
	s.log.Debug("content server shut down", zap.Int("port", s.port))
	return err
}

// newFileHandler serves static files with permissive CORS headers and the
// extended MIME table, so a page loaded from the server can fetch sibling
// data files via in-page script.
func newFileHandler(root string) http.Handler {
	fs := http.FileServer(http.Dir(root))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		if ct, ok := extraContentTypes[strings.ToLower(path.Ext(r.URL.Path))]; ok {
			h.Set("Content-Type", ct)
		}

		fs.ServeHTTP(w, r)
	})
}
