package daemon

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"smartshelf/internal/catalog"
	"smartshelf/internal/config"
	"smartshelf/internal/ingest"
	"smartshelf/internal/logging"
	"smartshelf/internal/services"
	"smartshelf/internal/shelves"
)

const (
	archiveFormField = "archive"
	requestIDHeader  = "X-Request-ID"
)

type apiServer struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *catalog.Store
	ingest *ingest.Service
	opener *shelves.Opener
}

func newAPIServer(cfg *config.Config, store *catalog.Store, svc *ingest.Service, opener *shelves.Opener, logger *slog.Logger) *apiServer {
	return &apiServer{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "api-server"),
		store:  store,
		ingest: svc,
		opener: opener,
	}
}

func (s *apiServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware(s.cfg.Paths.APIToken))
		r.Post("/bulk-import", s.handleBulkImport)
		r.Get("/shelves", s.handleListShelves)
		r.Post("/shelves/{shelf}/open", s.handleOpenShelf)
		r.Get("/shelves/{shelf}/documents", s.handleShelfDocuments)
	})
	return r
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(services.WithRequestID(r.Context(), id)))
	})
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.cfg.EnsureDirectories(); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *apiServer) handleBulkImport(w http.ResponseWriter, r *http.Request) {
	if limit := s.cfg.Ingest.MaxUploadBytes; limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit)
	}

	payload, err := archivePayload(r)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	result, err := s.ingest.Import(r.Context(), payload)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, result)
}

// archivePayload returns a reader over the uploaded archive: the "archive"
// part of a multipart form, or the raw body for application/zip uploads.
func archivePayload(r *http.Request) (io.Reader, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return nil, errUnsupportedUpload
	}
	switch mediaType {
	case "application/zip", "application/x-zip-compressed", "application/octet-stream":
		return r.Body, nil
	case "multipart/form-data":
		reader, err := r.MultipartReader()
		if err != nil {
			return nil, errMissingArchive
		}
		for {
			part, err := reader.NextPart()
			if errors.Is(err, io.EOF) {
				return nil, errMissingArchive
			}
			if err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					return nil, err
				}
				return nil, errMissingArchive
			}
			if part.FormName() == archiveFormField {
				return part, nil
			}
			_ = part.Close()
		}
	default:
		return nil, errUnsupportedUpload
	}
}

var (
	errMissingArchive    = services.Wrap(services.ErrValidation, "api", "bulk import", "multipart field \"archive\" is required", nil)
	errUnsupportedUpload = services.Wrap(services.ErrValidation, "api", "bulk import", "upload must be multipart/form-data or application/zip", nil)
)

func (s *apiServer) handleOpenShelf(w http.ResponseWriter, r *http.Request) {
	identifier := chi.URLParam(r, "shelf")
	result, err := s.opener.Open(r.Context(), identifier)
	if err != nil {
		if errors.Is(err, services.ErrHardware) {
			s.logFailure(r, err)
			s.writeJSON(w, http.StatusBadGateway, result)
			return
		}
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *apiServer) handleListShelves(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.ListShelves(r.Context())
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	views := make([]shelfView, 0, len(list))
	for _, shelf := range list {
		views = append(views, newShelfView(shelf))
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"shelves": views})
}

func (s *apiServer) handleShelfDocuments(w http.ResponseWriter, r *http.Request) {
	identifier := chi.URLParam(r, "shelf")
	shelf, err := s.store.ResolveShelf(r.Context(), identifier)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	if shelf == nil {
		s.writeFailure(w, r, &shelves.NotFoundError{Identifier: identifier})
		return
	}
	docs, err := s.store.DocumentsByShelf(r.Context(), shelf.ID)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	views := make([]documentView, 0, len(docs))
	for _, doc := range docs {
		views = append(views, newDocumentView(doc))
	}
	s.writeJSON(w, http.StatusOK, shelfDocumentsResponse{Shelf: newShelfView(shelf), Documents: views})
}

// writeFailure maps err to a status code. Client errors echo their message;
// server errors are logged and reported generically.
func (s *apiServer) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	status := services.HTTPStatus(err)
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		status = http.StatusRequestEntityTooLarge
	}

	message := err.Error()
	switch {
	case status == http.StatusRequestEntityTooLarge:
		message = "upload exceeds the configured size limit"
	case status >= http.StatusInternalServerError:
		s.logFailure(r, err)
		message = "internal server error"
	}
	s.writeError(w, status, message)
}

func (s *apiServer) logFailure(r *http.Request, err error) {
	logging.WithContext(r.Context(), s.logger).Error("request failed",
		logging.String("method", r.Method),
		logging.String("path", r.URL.Path),
		logging.Error(err),
	)
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
