package server

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/listatree/hypothesis/internal/database"
	"github.com/listatree/hypothesis/internal/descriptor"
	"github.com/listatree/hypothesis/internal/value"
)

const maxBodyBytes = 1 << 20

type handler struct {
	db     *database.ExampleDatabase
	logger *zap.Logger
}

// NewHandler routes the example API:
//
//	GET  /healthz
//	GET  /v1/examples?descriptor=[int]
//	POST /v1/examples
func NewHandler(db *database.ExampleDatabase, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &handler{db: db, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.health)
	r.Route("/v1/examples", func(r chi.Router) {
		r.Get("/", h.listExamples)
		r.Post("/", h.saveExample)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		renderError(w, http.StatusNotFound, fmt.Errorf("no route for %s %s", r.Method, r.URL.Path))
	})

	return r
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) storage(w http.ResponseWriter, src string) (*database.Storage, bool) {
	if src == "" {
		renderError(w, http.StatusBadRequest, fmt.Errorf("descriptor is required"))
		return nil, false
	}
	d, err := descriptor.Parse(src)
	if err != nil {
		renderError(w, http.StatusBadRequest, fmt.Errorf("invalid descriptor: %w", err))
		return nil, false
	}
	s, err := h.db.StorageFor(d)
	if err != nil {
		renderError(w, statusFor(err), err)
		return nil, false
	}
	return s, true
}

func (h *handler) listExamples(w http.ResponseWriter, r *http.Request) {
	s, ok := h.storage(w, r.URL.Query().Get("descriptor"))
	if !ok {
		return
	}

	resp := ExamplesResponse{Key: s.Key(), Examples: []Example{}}
	for v, err := range s.Fetch(r.Context()) {
		if err != nil {
			renderError(w, statusFor(err), err)
			return
		}
		example, err := exampleOf(s, v)
		if err != nil {
			renderError(w, statusFor(err), err)
			return
		}
		resp.Examples = append(resp.Examples, example)
	}

	renderJSON(w, http.StatusOK, resp)
}

func (h *handler) saveExample(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		renderError(w, http.StatusBadRequest, fmt.Errorf("reading body: %w", err))
		return
	}
	var req SaveRequest
	if err := json.Unmarshal(body, &req); err != nil {
		renderError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if (req.Value == "") == (len(req.Encoded) == 0) {
		renderError(w, http.StatusBadRequest, fmt.Errorf("exactly one of value and encoded is required"))
		return
	}

	s, ok := h.storage(w, req.Descriptor)
	if !ok {
		return
	}

	var v any
	if req.Value != "" {
		v, err = value.Parse(req.Value)
		if err != nil {
			renderError(w, http.StatusBadRequest, fmt.Errorf("invalid value: %w", err))
			return
		}
		err = s.Save(r.Context(), v)
	} else {
		v, err = s.SaveEncoded(r.Context(), string(req.Encoded))
	}
	if err != nil {
		renderError(w, statusFor(err), err)
		return
	}

	example, err := exampleOf(s, v)
	if err != nil {
		renderError(w, statusFor(err), err)
		return
	}
	renderJSON(w, http.StatusCreated, SaveResponse{Key: s.Key(), Example: example})
}

func exampleOf(s *database.Storage, v any) (Example, error) {
	text, err := s.Encode(v)
	if err != nil {
		return Example{}, err
	}
	return Example{Repr: value.Repr(v), JSON: json.RawMessage(text)}, nil
}

// requestLogger logs each request through zap once it completes
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info("request",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)))
		})
	}
}
