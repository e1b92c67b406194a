package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/prantlf/litevec/internal/vecdb"
)

type createCollectionRequest struct {
	Dimension int    `json:"dimension"`
	Distance  string `json:"distance"`
}

type renameCollectionRequest struct {
	Name string `json:"name"`
}

type collectionInfoResponse struct {
	Name      string `json:"name"`
	Dimension int    `json:"dimension"`
	Distance  string `json:"distance"`
	Count     int    `json:"count"`
}

func handleListCollections(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deps.DB.RLock()
		names := deps.DB.List()
		deps.DB.RUnlock()
		if names == nil {
			names = []string{}
		}
		writeJSON(w, http.StatusOK, names)
	}
}

func handleCreateCollection(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")

		var req createCollectionRequest
		if !decodeBody(w, r, deps.PayloadLimitBytes, &req) {
			return
		}
		if req.Dimension <= 0 {
			httpError(w, http.StatusBadRequest, "dimension must be positive")
			return
		}
		distance, ok := vecdb.ParseDistance(req.Distance)
		if !ok {
			httpError(w, http.StatusBadRequest, "unknown distance metric %q", req.Distance)
			return
		}

		deps.DB.Lock()
		_, err := deps.DB.Create(name, req.Dimension, distance)
		deps.DB.Unlock()
		if err != nil {
			writeDatabaseError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, collectionInfoResponse{
			Name:      name,
			Dimension: req.Dimension,
			Distance:  distance.String(),
		})
	}
}

func handleRenameCollection(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")

		var req renameCollectionRequest
		if !decodeBody(w, r, deps.PayloadLimitBytes, &req) {
			return
		}
		if req.Name == "" {
			httpError(w, http.StatusBadRequest, "name is required")
			return
		}

		deps.DB.Lock()
		err := deps.DB.Rename(name, req.Name)
		deps.DB.Unlock()
		if err != nil {
			writeDatabaseError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleCollectionInfo(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")

		deps.DB.RLock()
		c, err := deps.DB.Get(name)
		var resp collectionInfoResponse
		if err == nil {
			resp = collectionInfoResponse{
				Name:      name,
				Dimension: c.Dimension,
				Distance:  c.Distance.String(),
				Count:     c.Count(),
			}
		}
		deps.DB.RUnlock()
		if err != nil {
			writeDatabaseError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func handleDeleteCollection(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")

		deps.DB.Lock()
		err := deps.DB.Delete(name)
		deps.DB.Unlock()
		if err != nil {
			writeDatabaseError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type queryRequest struct {
	Query  []float32    `json:"query"`
	Filter vecdb.Filter `json:"filter"`
	K      int          `json:"k"`
}

func handleQueryCollection(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")

		var req queryRequest
		if !decodeBody(w, r, deps.PayloadLimitBytes, &req) {
			return
		}
		if req.K <= 0 {
			req.K = 1
		}

		deps.DB.RLock()
		c, err := deps.DB.Get(name)
		var dimension int
		var results []vecdb.SimilarityResult
		if err == nil {
			dimension = c.Dimension
			if len(req.Query) == dimension {
				results = c.Query(req.Filter, req.Query, req.K)
			}
		}
		deps.DB.RUnlock()
		if err != nil {
			writeDatabaseError(w, err)
			return
		}
		if len(req.Query) != dimension {
			httpError(w, http.StatusBadRequest, "query vector has dimension %d, collection has dimension %d", len(req.Query), dimension)
			return
		}

		if results == nil {
			results = []vecdb.SimilarityResult{}
		}
		writeJSON(w, http.StatusOK, results)
	}
}

func writeDatabaseError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, vecdb.ErrNotFound):
		httpError(w, http.StatusNotFound, "%v", err)
	case errors.Is(err, vecdb.ErrUniqueViolation):
		httpError(w, http.StatusConflict, "%v", err)
	case errors.Is(err, vecdb.ErrDimensionMismatch):
		httpError(w, http.StatusBadRequest, "%v", err)
	default:
		httpError(w, http.StatusInternalServerError, "%v", err)
	}
}
