package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/prantlf/litevec/internal/vecdb"
)

type insertEmbeddingRequest struct {
	Vector   []float32         `json:"vector"`
	Metadata map[string]string `json:"metadata"`
}

type updateMetadataRequest struct {
	Metadata map[string]string `json:"metadata"`
}

type filterEmbeddingsRequest struct {
	Filter vecdb.Filter `json:"filter"`
	K      int          `json:"k"`
}

func handleListEmbeddings(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")

		deps.DB.RLock()
		c, err := deps.DB.Get(name)
		var ids []string
		if err == nil {
			ids = c.ListIDs()
		}
		deps.DB.RUnlock()
		if err != nil {
			writeDatabaseError(w, err)
			return
		}
		if ids == nil {
			ids = []string{}
		}
		writeJSON(w, http.StatusOK, ids)
	}
}

func handleFilterEmbeddings(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		novector := queryBool(r, "novector")

		var req filterEmbeddingsRequest
		if !decodeBody(w, r, deps.PayloadLimitBytes, &req) {
			return
		}
		if req.K <= 0 {
			req.K = 1
		}

		deps.DB.RLock()
		c, err := deps.DB.Get(name)
		var results []vecdb.Embedding
		if err == nil {
			results = c.GetByMetadata(req.Filter, req.K, novector)
		}
		deps.DB.RUnlock()
		if err != nil {
			writeDatabaseError(w, err)
			return
		}
		if results == nil {
			results = []vecdb.Embedding{}
		}
		writeJSON(w, http.StatusOK, results)
	}
}

func handleDeleteEmbeddingsByFilter(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")

		var filter vecdb.Filter
		if r.ContentLength != 0 {
			if !decodeBody(w, r, deps.PayloadLimitBytes, &filter) {
				return
			}
		}

		deps.DB.Lock()
		c, err := deps.DB.Get(name)
		if err == nil {
			c.DeleteByMetadata(filter)
		}
		deps.DB.Unlock()
		if err != nil {
			writeDatabaseError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleInsertEmbedding(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		id := chi.URLParam(r, "id")

		var req insertEmbeddingRequest
		if !decodeBody(w, r, deps.PayloadLimitBytes, &req) {
			return
		}

		deps.DB.Lock()
		c, err := deps.DB.Get(name)
		if err == nil {
			err = c.Insert(vecdb.Embedding{ID: id, Vector: req.Vector, Metadata: req.Metadata})
		}
		deps.DB.Unlock()
		if err != nil {
			writeDatabaseError(w, err)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}
}

func handleUpdateEmbeddingMetadata(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		id := chi.URLParam(r, "id")

		var req updateMetadataRequest
		if !decodeBody(w, r, deps.PayloadLimitBytes, &req) {
			return
		}

		deps.DB.Lock()
		c, err := deps.DB.Get(name)
		var found bool
		if err == nil {
			found = c.UpdateMetadata(id, req.Metadata)
		}
		deps.DB.Unlock()
		if err != nil {
			writeDatabaseError(w, err)
			return
		}
		if !found {
			writeDatabaseError(w, vecdb.ErrNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleGetEmbedding(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		id := chi.URLParam(r, "id")
		novector := queryBool(r, "novector")

		deps.DB.RLock()
		c, err := deps.DB.Get(name)
		var e vecdb.Embedding
		if err == nil {
			e, err = c.Get(id)
		}
		deps.DB.RUnlock()
		if err != nil {
			writeDatabaseError(w, err)
			return
		}
		if novector {
			e.Vector = nil
		}
		writeJSON(w, http.StatusOK, e)
	}
}

func handleDeleteEmbedding(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		id := chi.URLParam(r, "id")

		deps.DB.Lock()
		c, err := deps.DB.Get(name)
		var found bool
		if err == nil {
			found = c.Delete(id)
		}
		deps.DB.Unlock()
		if err != nil {
			writeDatabaseError(w, err)
			return
		}
		if !found {
			writeDatabaseError(w, vecdb.ErrNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
