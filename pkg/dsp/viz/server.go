package viz

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
)

type ImageContainer struct {
	name string
	data []byte
}

// Server keeps the latest published PNG per bucket and name and serves them
// with a self-refreshing index page.
type Server struct {
	images         map[string]map[string]*ImageContainer
	mu             sync.RWMutex
	port           int
	srv            *http.Server
	updateInterval time.Duration
	logger         zerolog.Logger
}

type ServerOption func(s *Server)

func WithServerLogger(logger zerolog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

func NewServer(port int, updateInterval time.Duration, opts ...ServerOption) *Server {
	s := &Server{
		images:         make(map[string]map[string]*ImageContainer),
		port:           port,
		srv:            &http.Server{Addr: fmt.Sprintf(":%d", port)},
		updateInterval: updateInterval,
		logger:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.srv.Handler = s.Handler()
	return s
}

func (s *Server) SetUpdateInterval(interval time.Duration) {
	s.mu.Lock()
	s.updateInterval = interval
	s.mu.Unlock()
}

// Publish replaces the image stored under bucket/name.
func (s *Server) Publish(bucket, name string, png []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mb, ok := s.images[bucket]
	if !ok {
		mb = make(map[string]*ImageContainer)
		s.images[bucket] = mb
	}
	mb[name] = &ImageContainer{name: name, data: png}

	s.logger.Debug().Str("bucket", bucket).Str("image", name).Int("bytes", len(png)).Msg("published image")
}

func (s *Server) Buckets() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.images))
	for key := range s.images {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Run serves until Stop is called or ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info().Int("port", s.port).Msg("starting viz server")

	err := s.srv.ListenAndServe()
	switch {
	case err == http.ErrServerClosed:
		return nil
	default:
		return err
	}
}

func (s *Server) Handler() http.Handler {
	handler := httprouter.New()
	handler.GET("/", s.handleIndex)
	handler.GET("/view/:bucket", s.handleView)
	handler.GET("/img/:bucket/:img", s.handleImage)
	return handler
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	buckets := s.Buckets()
	if len(buckets) == 0 {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	w.Header().Set("Location", "/view/"+url.PathEscape(buckets[0]))
	w.WriteHeader(http.StatusFound)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	bucket := params.ByName("bucket")
	buckets := s.Buckets()

	s.mu.RLock()
	defer s.mu.RUnlock()

	itemsForBucket, ok := s.images[bucket]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	w.Header().Add("Content-Type", "text/html")
	w.Write([]byte(`<html><head><title>dsped</title></head>`))

	w.Write([]byte(fmt.Sprintf(`
		<script type="text/javascript">
			var toggleRefresh = true;
			function toggleOn() {
				toggleRefresh = !toggleRefresh;
			}

			function changeBucket() {
				var val = document.getElementById('bucketSelector').value;
				window.location.href = '/view/' + val;
			}
			window.onload = function() {
				for (var i = 0; i < %d; i++) {
					var img = document.getElementById('graph-' + i);
					setInterval(function(image) {
						if (toggleRefresh) {
							image.src = image.src.split("?")[0] + "?" + new Date().getTime();
						}
					}, %d, img);
				}

			}
		</script>`, len(itemsForBucket), s.updateInterval.Milliseconds())))
	w.Write([]byte(`<body style='background-color: black'>`))

	w.Write([]byte(`<select id="bucketSelector" onchange="changeBucket()">`))
	for _, bucketName := range buckets {
		selected := ""
		if bucketName == bucket {
			selected = " selected"
		}
		name := html.EscapeString(bucketName)
		w.Write([]byte(fmt.Sprintf(`<option value="%s"%s>%s</option>`, name, selected, name)))
	}
	w.Write([]byte(`</select>`))
	w.Write([]byte(`<button onclick="toggleOn()">Refresh?</button>`))

	keys := make([]string, 0, len(itemsForBucket))
	for key := range itemsForBucket {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	w.Write([]byte(`<div style="display: flex; flex-direction: row; flex-wrap: wrap">`))
	for idx, key := range keys {
		w.Write([]byte(fmt.Sprintf(`<div><img id="graph-%d" src="/img/%s/%s?%d" /></div>`,
			idx, url.PathEscape(bucket), url.PathEscape(key), time.Now().UnixMicro())))
	}
	w.Write([]byte(`</div>`))

	w.Write([]byte(`</body></html>`))
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	bucketName := params.ByName("bucket")
	imgName := params.ByName("img")

	var img *ImageContainer
	func() {
		s.mu.RLock()
		defer s.mu.RUnlock()
		if bucket, ok := s.images[bucketName]; ok {
			img = bucket[imgName]
		}
	}()

	if img == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	w.Header().Add("Content-Type", "image/png")
	w.Write(img.data)
}
