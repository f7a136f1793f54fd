package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/skriv/kontrakt/internal/keyword"
	"github.com/skriv/kontrakt/internal/models"
	"github.com/skriv/kontrakt/internal/pipeline"
	"github.com/skriv/kontrakt/internal/storage"
)

type parseRequest struct {
	Text string `json:"text"`
	Name string `json:"name,omitempty"`
}

func (s *Server) handleParseContract(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("parse contract request", zap.String("name", req.Name), zap.Int("bytes", len(req.Text)))

	doc, err := s.parser.Parse(r.Context(), req.Text)
	if err != nil {
		if errors.Is(err, pipeline.ErrEmptyText) || errors.Is(err, pipeline.ErrTextTooLarge) {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("contract extraction failed", zap.Error(err))
		s.respondError(w, http.StatusBadGateway, err.Error())
		return
	}

	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	rec := &storage.ContractRecord{
		ID:       doc.ID,
		Name:     req.Name,
		Document: doc,
	}
	if err := s.storage.SaveContract(r.Context(), rec); err != nil {
		s.logger.Error("save contract failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if s.clauses != nil {
		if err := s.clauses.IndexContract(r.Context(), doc.ID, keyword.ClausesFromDocument(doc)); err != nil {
			s.logger.Warn("clause indexing failed", zap.String("id", doc.ID), zap.Error(err))
		}
	}
	s.respondJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleGetContract(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := s.storage.GetContract(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "contract not found")
			return
		}
		s.logger.Error("get contract failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteContract(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.logger.Debug("delete contract request", zap.String("id", id))
	if err := s.storage.DeleteContract(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "contract not found")
			return
		}
		s.logger.Error("delete contract failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if s.clauses != nil {
		if err := s.clauses.DeleteContract(r.Context(), id); err != nil {
			s.logger.Warn("clause index cleanup failed", zap.String("id", id), zap.Error(err))
		}
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleListContracts(w http.ResponseWriter, r *http.Request) {
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 20
	}
	sums, err := s.storage.ListContracts(r.Context(), offset, limit)
	if err != nil {
		s.logger.Error("list contracts failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if sums == nil {
		sums = []*storage.ContractSummary{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"contracts": sums, "offset": offset, "limit": limit})
}

type riskRequest struct {
	ContractID  string `json:"contractId,omitempty"`
	ProvisionID string `json:"provisionId,omitempty"`
	ClauseText  string `json:"clauseText,omitempty"`
	Category    string `json:"category,omitempty"`
}

// handleAnalyzeRisk analyzes either a provision of a stored contract
// (contractId + provisionId) or a free-standing clause (clauseText).
func (s *Server) handleAnalyzeRisk(w http.ResponseWriter, r *http.Request) {
	var req riskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	clauseText := req.ClauseText
	category := req.Category
	provisionID := req.ProvisionID
	var docCtx *models.ContractDocument

	if req.ContractID != "" {
		rec, err := s.storage.GetContract(r.Context(), req.ContractID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				s.respondError(w, http.StatusNotFound, "contract not found")
				return
			}
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		docCtx = rec.Document
		if req.ProvisionID != "" && clauseText == "" {
			for _, kp := range docCtx.KeyProvisions {
				if kp.ID == req.ProvisionID {
					clauseText = kp.Content
					if category == "" {
						category = kp.Category
					}
					break
				}
			}
			if clauseText == "" {
				s.respondError(w, http.StatusNotFound, "provision not found")
				return
			}
		}
	}

	if clauseText == "" {
		s.respondError(w, http.StatusBadRequest, "clauseText or contractId/provisionId is required")
		return
	}

	analysis, err := s.analyzer.Analyze(r.Context(), clauseText, provisionID, category, docCtx)
	if err != nil {
		s.logger.Error("risk analysis failed", zap.Error(err))
		s.respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, analysis)
}

func (s *Server) handleSearchClauses(w http.ResponseWriter, r *http.Request) {
	if s.clauses == nil {
		s.respondError(w, http.StatusNotImplemented, "clause search not enabled")
		return
	}
	query := r.URL.Query().Get("q")
	if query == "" {
		s.respondError(w, http.StatusBadRequest, "q is required")
		return
	}
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 10
	}
	hits, err := s.clauses.Search(r.Context(), query, limit)
	if err != nil {
		s.logger.Error("clause search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if hits == nil {
		hits = []*keyword.ClauseHit{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"hits": hits, "query": query})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	contractCount, err := s.storage.CountContracts(ctx)
	if err != nil {
		s.logger.Error("status: count contracts failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := map[string]interface{}{
		"contracts": contractCount,
	}
	if s.clauses != nil {
		if n, err := s.clauses.DocCount(); err == nil {
			resp["clauses"] = n
		}
	}

	configInfo := map[string]interface{}{
		"storage_backend":  s.config.Storage.Backend,
		"oracle_model":     s.config.Oracle.Model,
		"max_text_bytes":   s.config.Parse.MaxTextBytes,
		"risk_cache_ttl":   s.config.Risk.TTL().String(),
		"database_path":    s.config.Storage.DatabasePath,
		"bleve_index_path": s.config.Storage.BleveIndexPath,
	}
	diskBytes, err := storage.DiskUsageBytes(
		s.config.Storage.DatabasePath,
		s.config.Storage.ContractsDir,
		s.config.Storage.BleveIndexPath,
	)
	if err == nil {
		resp["disk_usage_bytes"] = diskBytes
	}
	resp["config"] = configInfo
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
