package casebank

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the case memory API routes.
func RegisterRoutes(r chi.Router, store *Store) {
	r.Route("/api/cases", func(r chi.Router) {
		r.Get("/", handleList(store))
		r.Get("/similar", handleSimilar(store))
		r.Post("/reset", handleReset(store))
	})
}

func handleList(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records := store.All()

		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 0 && n < len(records) {
				// Most recent records are at the tail.
				records = records[len(records)-n:]
			}
		}
		if records == nil {
			records = []CaseRecord{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(records)
	}
}

type similarResult struct {
	Score  float64    `json:"score"`
	Record CaseRecord `json:"record"`
}

func handleSimilar(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("q")
		if query == "" {
			http.Error(w, `{"error":"q is required"}`, http.StatusBadRequest)
			return
		}

		limit := 3
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n
			}
		}

		matches := store.FindSimilar(query, limit)
		results := make([]similarResult, 0, len(matches))
		for _, m := range matches {
			results = append(results, similarResult{Score: m.Score, Record: m.Record})
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(results)
	}
}

func handleReset(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.Reset(); err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"reset"}`))
	}
}
