package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
)

// handleExportHours downloads the weekly hours workbook of all places.
// GET /api/export/hours.xlsx?active=true&at=RFC3339
func (s *HTTPServer) handleExportHours(w http.ResponseWriter, r *http.Request) {
	if s.deps.Export == nil {
		writeError(w, http.StatusNotFound, "export disabled")
		return
	}
	now, ok := s.requestTime(w, r)
	if !ok {
		return
	}

	places, err := s.deps.Places.ListPlaces(r.Context(), r.URL.Query().Get("active") == "true")
	if err != nil {
		s.logger.Error().Err(err).Str("request_id", requestIDFrom(r.Context())).Msg("list places failed")
		writeError(w, http.StatusInternalServerError, "failed to list places")
		return
	}

	var buf bytes.Buffer
	if err := s.deps.Export.WriteHours(&buf, places, now); err != nil {
		s.logger.Error().Err(err).Str("request_id", requestIDFrom(r.Context())).Msg("export failed")
		writeError(w, http.StatusInternalServerError, "failed to build export")
		return
	}

	filename := fmt.Sprintf("hours_%s.xlsx", now.In(s.deps.Availability.Location()).Format("20060102_1504"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
