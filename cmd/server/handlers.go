package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	authoring "github.com/arabhyaWorks/arunachal-authoring"
	"github.com/arabhyaWorks/arunachal-authoring/internal"
)

// Server exposes the authoring configuration and submission API.
type Server struct {
	store    *internal.CategoryStore
	catalog  *internal.Catalog
	uploader authoring.Uploader
	mux      *http.ServeMux
}

// NewServer creates a new Server instance
func NewServer(store *internal.CategoryStore, uploader authoring.Uploader) *Server {
	return &Server{
		store:    store,
		catalog:  internal.NewCatalog(store),
		uploader: uploader,
		mux:      http.NewServeMux(),
	}
}

// RegisterRoutes registers all API routes
func (s *Server) RegisterRoutes() {
	s.mux.HandleFunc("/api/category", s.handleCategories)
	s.mux.HandleFunc("/api/category/attributes", s.handleCategoryAttributes)
	s.mux.HandleFunc("/api/category/items", s.handleCreateItem)
	s.mux.HandleFunc("/api/attributeTypes", s.handleAttributeTypes)
	s.mux.HandleFunc("/api/tribe/get-tribes", s.handleTribes)
	s.mux.HandleFunc("/api/upload", s.handleUpload)
}

// Handler returns the configured route multiplexer.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start starts the HTTP server on the given port
func (s *Server) Start(port string) error {
	zap.S().Infow("starting server", "port", port)
	return http.ListenAndServe(":"+port, s.mux)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	cats, err := s.catalog.Categories(r.Context())
	if err != nil {
		zap.S().Errorw("list categories failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}
	writeSuccess(w, http.StatusOK, cats)
}

func (s *Server) handleCategoryAttributes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	categoryID, err := strconv.ParseInt(r.URL.Query().Get("category_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "category_id must be an integer")
		return
	}

	defs, err := s.catalog.Definitions(r.Context(), categoryID)
	if err != nil {
		var ae *authoring.AuthoringError
		if errors.As(err, &ae) && ae.Code == authoring.ErrCodeCategoryNotFound {
			writeError(w, http.StatusNotFound, ae.Message)
			return
		}
		zap.S().Errorw("list category attributes failed", "category_id", categoryID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list attributes")
		return
	}
	writeSuccess(w, http.StatusOK, defs)
}

func (s *Server) handleAttributeTypes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	types, err := s.store.AttributeTypes(r.Context())
	if err != nil {
		zap.S().Errorw("list attribute types failed", "error", err)
		// Fall back to the compiled-in registry when the table is unreachable.
		types = authoring.RegisteredTypes()
	}
	writeSuccess(w, http.StatusOK, types)
}

func (s *Server) handleTribes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	opts, err := s.store.ListEntities(r.Context(), "tribes")
	if err != nil {
		zap.S().Errorw("list tribes failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list tribes")
		return
	}
	writeSuccess(w, http.StatusOK, opts)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	uri, err := s.uploader.Upload(r.Context(), header.Filename, file)
	if err != nil {
		zap.S().Errorw("upload failed", "filename", header.Filename, "error", err)
		writeError(w, http.StatusBadGateway, "upload failed")
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, FileURL: uri})
}

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var payload authoring.SubmissionPayload
	if err := readJSONBody(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := authoring.ValidatePayload(payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.checkRequiredAttributes(r, payload); err != nil {
		var ae *authoring.AuthoringError
		if errors.As(err, &ae) && ae.Code == authoring.ErrCodeCategoryNotFound {
			writeError(w, http.StatusNotFound, ae.Message)
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.CreateItem(r.Context(), payload); err != nil {
		zap.S().Errorw("create item failed", "category_id", payload.CategoryID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create item")
		return
	}

	writeSuccess(w, http.StatusCreated, map[string]string{"name": payload.Name})
}

// checkRequiredAttributes rejects submissions missing any attribute the
// category marks required. Value-level checks already ran in the editor;
// this is the server-side backstop.
func (s *Server) checkRequiredAttributes(r *http.Request, payload authoring.SubmissionPayload) error {
	categoryID, err := strconv.ParseInt(payload.CategoryID, 10, 64)
	if err != nil {
		return fmt.Errorf("category_id must be an integer")
	}

	defs, err := s.catalog.Definitions(r.Context(), categoryID)
	if err != nil {
		return err
	}

	provided := make(map[int64]bool, len(payload.Attributes))
	for _, attr := range payload.Attributes {
		provided[attr.AttributeID] = true
	}

	for _, def := range defs {
		if def.Required && !provided[def.ID] {
			return fmt.Errorf("required attribute %q is missing", def.Name)
		}
	}
	return nil
}
