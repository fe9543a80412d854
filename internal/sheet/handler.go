// AngelaMos | 2026
// handler.go

package sheet

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"fiscaldesk/internal/client"
	"fiscaldesk/internal/core"
)

const maxUploadBytes = 10 << 20

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	importer *Importer
	exporter *Exporter
}

func NewHandler(importer *Importer, exporter *Exporter) *Handler {
	return &Handler{importer: importer, exporter: exporter}
}

func (h *Handler) RegisterRoutes(r chi.Router, authenticator func(http.Handler) http.Handler) {
	r.Route("/clients", func(r chi.Router) {
		r.Use(authenticator)

		r.Post("/import", h.Import)
		r.Get("/export", h.Export)
		r.Get("/template", h.Template)
	})
}

// Import accepts a multipart upload under the "file" field. The
// "update" flag switches duplicate CNPJs from skip to overwrite.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		core.BadRequest(w, "invalid multipart upload")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		core.BadRequest(w, "missing file field")
		return
	}
	defer file.Close()

	updateMode := r.FormValue("update") == "true" ||
		r.URL.Query().Get("update") == "true"

	summary, err := h.importer.Import(r.Context(), file, updateMode)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, summary)
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	filter := client.Filter{
		Query:  r.URL.Query().Get("q"),
		Regime: r.URL.Query().Get("regime"),
	}

	var buf bytes.Buffer
	if err := h.exporter.Export(r.Context(), filter, &buf); err != nil {
		core.InternalServerError(w, err)
		return
	}

	writeWorkbook(w, "clientes.xlsx", &buf)
}

func (h *Handler) Template(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.exporter.Template(&buf); err != nil {
		core.InternalServerError(w, err)
		return
	}

	writeWorkbook(w, "modelo_importacao.xlsx", &buf)
}

func writeWorkbook(w http.ResponseWriter, filename string, buf *bytes.Buffer) {
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", buf.Len()))

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("write workbook response", "error", err)
	}
}
