// Package httpapi implements the HTTP surface of litevecd over a vecdb.Database,
// in the handler shape of the teacher's internal/api package: http.HandlerFunc
// closures over a small dependency struct, a shared httpError helper, chi for
// routing and URL params, and the per-request middleware chain (body limit, CORS,
// timeout, compression) the teacher builds per handler group.
package httpapi

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/prantlf/litevec/internal/vecdb"
)

// Deps are the dependencies every handler closes over.
type Deps struct {
	DB     *vecdb.Database
	Logger *slog.Logger

	PayloadLimitBytes int64
	RequestTimeout    time.Duration
	CORSMaxAge        time.Duration
	CompressionLimit  int
}

// NewHandler builds the full HTTP surface described in SPEC_FULL.md §6: collection
// CRUD and query, embedding CRUD and filtered listing, and a liveness probe.
func NewHandler(deps Deps) http.Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.RequestTimeout <= 0 {
		deps.RequestTimeout = 30 * time.Second
	}
	if deps.PayloadLimitBytes <= 0 {
		deps.PayloadLimitBytes = 1 << 30
	}

	r := chi.NewRouter()
	r.Use(corsMiddleware(deps.CORSMaxAge))
	r.Use(compressionMiddleware(deps.CompressionLimit))
	r.Use(func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, deps.RequestTimeout, `{"error":"request timed out"}`)
	})

	r.Get("/health", handleHealth())

	r.Route("/collections", func(r chi.Router) {
		r.Get("/", handleListCollections(deps))
		r.Route("/{name}", func(r chi.Router) {
			r.Put("/", handleCreateCollection(deps))
			r.Patch("/", handleRenameCollection(deps))
			r.Get("/", handleCollectionInfo(deps))
			r.Post("/", handleQueryCollection(deps))
			r.Delete("/", handleDeleteCollection(deps))

			r.Route("/embeddings", func(r chi.Router) {
				r.Get("/", handleListEmbeddings(deps))
				r.Post("/", handleFilterEmbeddings(deps))
				r.Delete("/", handleDeleteEmbeddingsByFilter(deps))
				r.Route("/{id}", func(r chi.Router) {
					r.Put("/", handleInsertEmbedding(deps))
					r.Patch("/", handleUpdateEmbeddingMetadata(deps))
					r.Get("/", handleGetEmbedding(deps))
					r.Delete("/", handleDeleteEmbedding(deps))
				})
			})
		})
	})

	return r
}

func handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, limit int64, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		httpError(w, http.StatusBadRequest, "invalid request body: %v", err)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

func httpError(w http.ResponseWriter, code int, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": fmt.Sprintf(format, args...)})
}

func queryBool(r *http.Request, key string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(key))
	return err == nil && v
}

// corsMiddleware mirrors the permissive-CORS-with-configurable-max-age shape
// described in SPEC_FULL.md's ambient HTTP config: every origin is allowed
// (a locally embedded vector database has no cross-origin trust boundary to
// enforce), and the preflight result is cached for CORSMaxAge.
func corsMiddleware(maxAge time.Duration) func(http.Handler) http.Handler {
	maxAgeSeconds := strconv.Itoa(int(maxAge.Seconds()))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Set("Access-Control-Max-Age", maxAgeSeconds)
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// compressionMiddleware gzip-encodes responses above limit bytes when the
// client advertises gzip support, the same threshold-gated compression
// SPEC_FULL.md's ambient config exposes as LITEVEC_COMPRESSION_LIMIT.
func compressionMiddleware(limit int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
				next.ServeHTTP(w, r)
				return
			}
			cw := &countingResponseWriter{ResponseWriter: w, limit: limit}
			next.ServeHTTP(cw, r)
			if err := cw.flushBuffered(); err != nil {
				slog.Default().Debug("flushing buffered response", "error", err)
			}
		})
	}
}

// countingResponseWriter buffers the first write to decide whether the response
// is worth gzipping; once the buffered bytes exceed limit it switches to a gzip
// writer for the rest of the response. Short responses (below limit) are never
// worth the gzip framing overhead and are written through unchanged.
type countingResponseWriter struct {
	http.ResponseWriter
	limit     int
	buf       []byte
	status    int
	gz        *gzip.Writer
	committed bool
}

func (w *countingResponseWriter) WriteHeader(status int) {
	w.status = status
}

func (w *countingResponseWriter) Write(b []byte) (int, error) {
	if w.gz != nil {
		return w.gz.Write(b)
	}
	if w.committed {
		return w.ResponseWriter.Write(b)
	}

	w.buf = append(w.buf, b...)
	if len(w.buf) <= w.limit {
		return len(b), nil
	}

	w.Header().Set("Content-Encoding", "gzip")
	w.Header().Del("Content-Length")
	w.commitHeader()
	w.gz = gzip.NewWriter(w.ResponseWriter)
	return w.gz.Write(w.buf)
}

func (w *countingResponseWriter) commitHeader() {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	w.ResponseWriter.WriteHeader(w.status)
	w.committed = true
}

// flushBuffered is invoked by compressionMiddleware once the handler returns: it
// closes the gzip writer if one was started, and otherwise covers the case where
// the whole response stayed under the compression limit and was only ever
// buffered, never flushed through gzip or plain passthrough.
func (w *countingResponseWriter) flushBuffered() error {
	if w.gz != nil {
		return w.gz.Close()
	}
	if !w.committed {
		w.commitHeader()
		if len(w.buf) > 0 {
			_, err := w.ResponseWriter.Write(w.buf)
			return err
		}
	}
	return nil
}
