package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"feedplay/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Items() []types.MediaItem
	Ready() bool
	Status(ctx context.Context) (types.SessionStatus, error)
	Display(ctx context.Context, index int) (types.DisplayState, error)
	DragBegin(ctx context.Context) error
	Release(ctx context.Context, offset, pageHeight float64) (int, bool, error)
	Settle(ctx context.Context, index int) error
	ToggleHold(ctx context.Context) (bool, error)
	Scrub(ctx context.Context, fraction float64) (bool, error)
	Exit(ctx context.Context) error
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	r.Use(middleware.Compress(5))
	if corsOpts.enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsOpts.origins,
			AllowedMethods: corsOpts.methods,
			AllowedHeaders: corsOpts.headers,
			MaxAge:         300,
		}))
	}
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	// @Summary List feed items
	// @Produce json
	// @Success 200 {object} types.FeedResponse
	// @Router /feed [get]
	r.Get("/feed", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, types.FeedResponse{Items: svc.Items()})
	})

	// @Summary Display state of one feed cell
	// @Produce json
	// @Param index path int true "feed index"
	// @Success 200 {object} types.DisplayState
	// @Failure 404 {object} types.ErrorResponse
	// @Router /feed/{index}/display [get]
	r.Get("/feed/{index}/display", func(w http.ResponseWriter, r *http.Request) {
		idx, err := strconv.Atoi(chi.URLParam(r, "index"))
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "index must be an integer")
			return
		}
		ctx, cancel := requestContext(r)
		defer cancel()
		ds, err := svc.Display(ctx, idx)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, ds)
	})

	r.Route("/session", func(sr chi.Router) {
		// @Summary Session status
		// @Produce json
		// @Success 200 {object} types.SessionStatus
		// @Router /session [get]
		sr.Get("/", func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := requestContext(r)
			defer cancel()
			st, err := svc.Status(ctx)
			if err != nil {
				writeServiceError(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, st)
		})

		// @Summary Drag began; pauses the active video
		// @Router /session/drag [post]
		sr.Post("/drag", func(w http.ResponseWriter, r *http.Request) {
			handleAction(w, r, svc, func(ctx context.Context) (any, error) {
				return nil, svc.DragBegin(ctx)
			})
		})

		// @Summary Drag ended at a scroll offset
		// @Accept json
		// @Param body body types.ReleaseRequest true "release"
		// @Router /session/release [post]
		sr.Post("/release", func(w http.ResponseWriter, r *http.Request) {
			var req types.ReleaseRequest
			if !decodeJSON(w, r, &req) {
				return
			}
			handleAction(w, r, svc, func(ctx context.Context) (any, error) {
				idx, settled, err := svc.Release(ctx, req.Offset, req.PageHeight)
				return map[string]any{"index": idx, "settled": settled}, err
			})
		})

		// @Summary Paging settled on an index
		// @Accept json
		// @Param body body types.SettleRequest true "settle"
		// @Router /session/settle [post]
		sr.Post("/settle", func(w http.ResponseWriter, r *http.Request) {
			var req types.SettleRequest
			if !decodeJSON(w, r, &req) {
				return
			}
			handleAction(w, r, svc, func(ctx context.Context) (any, error) {
				return nil, svc.Settle(ctx, req.Index)
			})
		})

		// @Summary Flip play/pause of the active video
		// @Router /session/toggle [post]
		sr.Post("/toggle", func(w http.ResponseWriter, r *http.Request) {
			handleAction(w, r, svc, func(ctx context.Context) (any, error) {
				playing, err := svc.ToggleHold(ctx)
				return map[string]any{"playing": playing}, err
			})
		})

		// @Summary Seek within the active video
		// @Accept json
		// @Param body body types.ScrubRequest true "scrub"
		// @Router /session/scrub [post]
		sr.Post("/scrub", func(w http.ResponseWriter, r *http.Request) {
			var req types.ScrubRequest
			if !decodeJSON(w, r, &req) {
				return
			}
			handleAction(w, r, svc, func(ctx context.Context) (any, error) {
				applied, err := svc.Scrub(ctx, req.Fraction)
				return map[string]any{"applied": applied}, err
			})
		})

		// @Summary Leave the feed and release all resources
		// @Router /session/exit [post]
		sr.Post("/exit", func(w http.ResponseWriter, r *http.Request) {
			handleAction(w, r, svc, func(ctx context.Context) (any, error) {
				return nil, svc.Exit(ctx)
			})
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("empty feed"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	return r
}

// handleAction runs a session action and answers with its result merged into
// the session status, so hosts can redraw from a single response.
func handleAction(w http.ResponseWriter, r *http.Request, svc Service, fn func(ctx context.Context) (any, error)) {
	start := time.Now()
	lvl := requestLogLevel(r)
	ctx, cancel := requestContext(r)
	defer cancel()

	result, err := fn(ctx)
	if err != nil {
		if aborted(r) {
			return
		}
		status := writeServiceError(w, r, err)
		logAction(r, lvl, status, start, err)
		return
	}
	st, err := svc.Status(ctx)
	if err != nil {
		status := writeServiceError(w, r, err)
		logAction(r, lvl, status, start, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": result, "session": st})
	logAction(r, lvl, http.StatusOK, start, nil)
}

// decodeJSON validates the content type and decodes a bounded JSON body.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger().Debug().Err(err).Msg("encode response")
	}
}
