package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/AngelCh415/ngram-report/internal/export"
	"github.com/AngelCh415/ngram-report/internal/filter"
	"github.com/AngelCh415/ngram-report/internal/ingest"
	"github.com/AngelCh415/ngram-report/internal/models"
	"github.com/AngelCh415/ngram-report/internal/report"
	"github.com/AngelCh415/ngram-report/internal/utils"
)

// Deps are the long-lived collaborators shared by all requests. None of them
// holds per-request state.
type Deps struct {
	Log            *slog.Logger
	Pipeline       *report.Pipeline
	Fetcher        *ingest.Fetcher
	Sink           *export.Sink
	Metrics        *utils.Metrics
	Sheet          string
	MaxUploadBytes int64
	Now            func() time.Time
}

func NewRouter(d Deps) http.Handler {
	if d.Now == nil {
		d.Now = time.Now
	}
	mux := chi.NewRouter()
	mux.Use(utils.RequestID)
	mux.Use(utils.Logger(d.Log))
	if d.Metrics != nil {
		mux.Use(d.Metrics.Instrument)
		mux.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
	mux.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ready")) })

	h := &reportHandler{Deps: d}
	mux.Post("/reports", h.create)
	return mux
}

type reportHandler struct{ Deps }

type reportResponse struct {
	models.Report
	Filter   filter.Stats `json:"filter"`
	Exported *int         `json:"exported,omitempty"`
}

func (h *reportHandler) create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(h.MaxUploadBytes); err != nil {
		h.fail(w, r, http.StatusBadRequest, "input", fmt.Errorf("invalid multipart form: %w", err))
		return
	}

	pf, err := filter.ParseProductFilter(r.FormValue("asins"), r.FormValue("brands"))
	if err != nil {
		h.fail(w, r, http.StatusBadRequest, "input", fmt.Errorf("%w: %v", report.ErrInputMissing, err))
		return
	}
	withIDs, _ := strconv.ParseBool(r.FormValue("campaign_ids"))
	ps, err := ingest.ParseProductSource(r.FormValue("product_source"))
	if err != nil {
		h.fail(w, r, http.StatusBadRequest, "input", err)
		return
	}

	name, data, err := h.dataset(r)
	if err != nil {
		h.failErr(w, r, err)
		return
	}
	in := report.Input{Filter: pf, Dataset: data != nil}
	if data != nil {
		in.Rows, err = ingest.Read(name, bytes.NewReader(data), ingest.ReadOptions{
			Sheet:             h.Sheet,
			ProductSource:     ps,
			RequireCampaignID: withIDs,
		})
		if err != nil {
			h.failErr(w, r, err)
			return
		}
	}

	rep, st, err := h.Pipeline.Provenance(withIDs).Run(r.Context(), in)
	if err != nil {
		h.failErr(w, r, err)
		return
	}

	resp := reportResponse{Report: rep, Filter: st}
	if push, _ := strconv.ParseBool(r.FormValue("sink")); push {
		n, err := h.Sink.Push(r.Context(), rep)
		if errors.Is(err, export.ErrSinkNotConfigured) {
			h.fail(w, r, http.StatusBadRequest, "sink", err)
			return
		}
		if err != nil {
			h.fail(w, r, http.StatusBadGateway, "sink", err)
			return
		}
		resp.Exported = &n
	}

	if wantsXLSX(r) {
		w.Header().Set("Content-Type", export.XLSXMime)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(h.Now())))
		if rep.EmptyReason != "" {
			w.Header().Set("X-Empty-Reason", rep.EmptyReason)
		}
		if err := export.WriteXLSX(w, rep); err != nil {
			h.Log.Error("write workbook", slog.String("err", err.Error()), slog.String("rid", utils.RID(r.Context())))
		}
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// dataset returns the uploaded file, or the body fetched from source_url.
// A nil body means no dataset was supplied.
func (h *reportHandler) dataset(r *http.Request) (string, []byte, error) {
	file, hdr, err := r.FormFile("file")
	if err == nil {
		defer file.Close()
		b, err := io.ReadAll(file)
		if err != nil {
			return "", nil, err
		}
		return hdr.Filename, b, nil
	}
	if !errors.Is(err, http.ErrMissingFile) {
		return "", nil, err
	}
	if src := strings.TrimSpace(r.FormValue("source_url")); src != "" {
		if h.Fetcher == nil {
			return "", nil, fmt.Errorf("%w: remote sources disabled", ingest.ErrFetch)
		}
		b, name, err := h.Fetcher.Fetch(r.Context(), src)
		if err != nil {
			return "", nil, err
		}
		return name, b, nil
	}
	return "", nil, nil
}

func wantsXLSX(r *http.Request) bool {
	if f := r.URL.Query().Get("format"); f != "" {
		return strings.EqualFold(f, "xlsx")
	}
	return strings.Contains(r.Header.Get("Accept"), export.XLSXMime)
}

func (h *reportHandler) failErr(w http.ResponseWriter, r *http.Request, err error) {
	var ve *ingest.ValueError
	switch {
	case errors.Is(err, report.ErrInputMissing):
		h.fail(w, r, http.StatusBadRequest, "input", err)
	case errors.Is(err, ingest.ErrSchemaMismatch), errors.As(err, &ve):
		h.fail(w, r, http.StatusUnprocessableEntity, "schema", err)
	case errors.Is(err, ingest.ErrFetch):
		h.fail(w, r, http.StatusBadGateway, "fetch", err)
	default:
		h.fail(w, r, http.StatusUnprocessableEntity, "read", err)
	}
}

func (h *reportHandler) fail(w http.ResponseWriter, r *http.Request, code int, kind string, err error) {
	if h.Metrics != nil {
		h.Metrics.ObserveFailure(kind)
	}
	h.Log.Warn("report failed", slog.String("kind", kind), slog.String("err", err.Error()), slog.String("rid", utils.RID(r.Context())))
	writeJSON(w, code, map[string]string{"error": err.Error(), "kind": kind})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	enc.Encode(v)
}
