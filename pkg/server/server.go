// Package server exposes edge detection over HTTP.
//
//	POST /v1/edges    detect edges in one region of an uploaded image
//	POST /v1/inspect  run the configured inspection on an uploaded image
//	GET  /healthz     liveness check
//
// Images are sent either as the multipart field "image" or as the raw request
// body.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"pixeledge/internal/models"
	"pixeledge/pkg/config"
	"pixeledge/pkg/edge"
	"pixeledge/pkg/imageio"
	"pixeledge/pkg/inspection"
	"pixeledge/pkg/ops"
	"pixeledge/pkg/pixel"
)

// EdgesResponse is the body returned by POST /v1/edges.
type EdgesResponse struct {
	Region       models.Region   `json:"region"`
	Threshold    uint8           `json:"threshold"`
	Positive     []models.Point  `json:"positive"`
	Negative     []models.Point  `json:"negative"`
	PositiveLine *models.LineFit `json:"positiveLine,omitempty"`
	NegativeLine *models.LineFit `json:"negativeLine,omitempty"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Server handles the HTTP API.
type Server struct {
	cfg    *config.Config
	router *mux.Router
}

// NewServer creates a server using the detection and server settings of cfg.
func NewServer(cfg *config.Config) *Server {
	s := &Server{cfg: cfg, router: mux.NewRouter()}
	s.router.HandleFunc("/v1/edges", s.handleEdges).Methods(http.MethodPost)
	s.router.HandleFunc("/v1/inspect", s.handleInspect).Methods(http.MethodPost)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves the API on the configured address.
func (s *Server) ListenAndServe() error {
	srv := &http.Server{
		Handler:      s,
		Addr:         s.cfg.Server.Addr,
		WriteTimeout: 60 * time.Second,
		ReadTimeout:  60 * time.Second,
	}
	log.Printf("Starting server on %s", srv.Addr)
	return srv.ListenAndServe()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleEdges(w http.ResponseWriter, r *http.Request) {
	gray, ok := s.readImage(w, r)
	if !ok {
		return
	}

	region, opts, err := s.regionFromQuery(r)
	if err != nil {
		sendErrorResponse(w, "invalid_parameter", err.Error(), http.StatusBadRequest)
		return
	}
	region = region.Resolve(gray.Width(), gray.Height())

	if s.cfg.Detection.Smooth > 0 {
		if gray, err = ops.MedianFilter(gray, s.cfg.Detection.Smooth); err != nil {
			sendError(w, err)
			return
		}
	}

	rr, err := inspection.InspectRegion(gray, region, opts)
	if err != nil {
		sendError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, EdgesResponse{
		Region:       rr.Region,
		Threshold:    rr.Threshold,
		Positive:     rr.Positive.Points,
		Negative:     rr.Negative.Points,
		PositiveLine: rr.Positive.Line,
		NegativeLine: rr.Negative.Line,
	})
}

func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	gray, ok := s.readImage(w, r)
	if !ok {
		return
	}

	policy, err := edge.ParsePolicy(s.cfg.Detection.Policy)
	if err != nil {
		sendErrorResponse(w, "invalid_config", err.Error(), http.StatusInternalServerError)
		return
	}
	inspector := inspection.NewInspector(&inspection.Params{
		Regions:       s.cfg.Regions,
		Threshold:     s.cfg.Detection.Threshold,
		AutoThreshold: s.cfg.Detection.AutoThreshold,
		Policy:        policy,
		Smooth:        s.cfg.Detection.Smooth,
		Workers:       s.cfg.Detection.Workers,
	})
	if err := inspector.Inspect(r.Context(), gray); err != nil {
		sendError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inspector.Report())
}

// readImage decodes the uploaded image into a gray-scale buffer. It writes
// the error response itself and reports whether the handler may continue.
func (s *Server) readImage(w http.ResponseWriter, r *http.Request) (*pixel.Buffer, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxUploadBytes)

	data, err := readUpload(r, s.cfg.Server.MaxUploadBytes)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			sendErrorResponse(w, "too_large", err.Error(), http.StatusRequestEntityTooLarge)
			return nil, false
		}
		sendErrorResponse(w, "invalid_request", err.Error(), http.StatusBadRequest)
		return nil, false
	}

	buf, err := imageio.DecodeLimited(data, s.cfg.Server.MaxPixels)
	if errors.Is(err, imageio.ErrTooLarge) {
		sendErrorResponse(w, "too_large", err.Error(), http.StatusRequestEntityTooLarge)
		return nil, false
	}
	if err != nil {
		sendErrorResponse(w, "invalid_image", "Failed to decode image", http.StatusBadRequest)
		return nil, false
	}
	gray, err := ops.ConvertToGrayScale(buf)
	if err != nil {
		sendErrorResponse(w, "invalid_image", err.Error(), http.StatusBadRequest)
		return nil, false
	}
	return gray, true
}

func readUpload(r *http.Request, maxBytes int64) ([]byte, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return io.ReadAll(r.Body)
	}

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return nil, err
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

// regionFromQuery reads x, y, width, height, direction, threshold and policy.
// Missing values fall back to the whole image and the configured detection
// settings.
func (s *Server) regionFromQuery(r *http.Request) (models.Region, inspection.Options, error) {
	q := r.URL.Query()
	region := models.Region{Name: q.Get("name"), Direction: q.Get("direction")}
	opts := inspection.Options{
		Threshold:     s.cfg.Detection.Threshold,
		AutoThreshold: s.cfg.Detection.AutoThreshold,
		Workers:       s.cfg.Detection.Workers,
	}

	for _, f := range []struct {
		key string
		dst *uint32
	}{{"x", &region.X}, {"y", &region.Y}, {"width", &region.Width}, {"height", &region.Height}} {
		v := q.Get(f.key)
		if v == "" {
			continue
		}
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return region, opts, fmt.Errorf("invalid %s: %w", f.key, err)
		}
		*f.dst = uint32(n)
	}

	if v := q.Get("threshold"); v != "" {
		if v == "auto" {
			opts.AutoThreshold = true
		} else {
			n, err := strconv.ParseUint(v, 10, 8)
			if err != nil {
				return region, opts, fmt.Errorf("invalid threshold: %w", err)
			}
			opts.Threshold = uint8(n)
			opts.AutoThreshold = false
		}
	}

	policyName := s.cfg.Detection.Policy
	if v := q.Get("policy"); v != "" {
		policyName = v
	}
	policy, err := edge.ParsePolicy(policyName)
	if err != nil {
		return region, opts, err
	}
	opts.Policy = policy

	return region, opts, nil
}

func sendError(w http.ResponseWriter, err error) {
	if errors.Is(err, pixel.ErrInvalidParameter) {
		sendErrorResponse(w, "invalid_parameter", err.Error(), http.StatusBadRequest)
		return
	}
	sendErrorResponse(w, "processing_error", err.Error(), http.StatusInternalServerError)
}

func sendErrorResponse(w http.ResponseWriter, code, message string, status int) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}
