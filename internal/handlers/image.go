package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/nkiryanov/qrgen/internal/logger"
	"github.com/nkiryanov/qrgen/internal/models"
	"github.com/nkiryanov/qrgen/internal/qrimage"
	"github.com/nkiryanov/qrgen/internal/view"
)

// handleImage renders QR code for params from the query
// With download=1 the browser is asked to save it as a file
func handleImage(format qrimage.Format, logger logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		params := view.ParamsFromValues(models.DefaultParams(), query)

		buf := &bytes.Buffer{}
		if err := qrimage.Render(buf, params, format); err != nil {
			logger.Error("Error rendering QR code", "format", string(format), "error", err)
			http.Error(w, "Failed to render QR code", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", format.ContentType())
		w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
		if query.Get("download") == "1" {
			w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.Filename()))
		}

		_, _ = w.Write(buf.Bytes())
	})
}
