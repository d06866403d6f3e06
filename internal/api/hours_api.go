package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"placehours/internal/hours"
	"placehours/internal/metrics"
)

type textRequest struct {
	Text string `json:"text"`
}

// ParseResponse is an editable structure reconstructed from stored text.
type ParseResponse struct {
	Dialect   string         `json:"dialect,omitempty"`
	Groups    hours.Schedule `json:"groups"`
	Canonical string         `json:"canonical"`
}

// handleParse reconstructs groups from hours text.
// POST /api/hours/parse {"text": "..."}
func (s *HTTPServer) handleParse(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if !decodeBody(w, r, &req) {
		return
	}

	schedule, dialect := hours.ParseDialect(req.Text)
	writeJSON(w, http.StatusOK, ParseResponse{
		Dialect:   dialect,
		Groups:    schedule,
		Canonical: hours.Serialize(schedule),
	})
}

// FormatGroup is one authoring selection: a weekday set with shared hours.
type FormatGroup struct {
	Days   []hours.Weekday   `json:"days"`
	Ranges []hours.TimeRange `json:"ranges"`
	Break  *hours.Break      `json:"break,omitempty"`
}

type formatRequest struct {
	Groups []FormatGroup `json:"groups"`
}

// handleFormat turns authoring selections into the canonical text to store.
// Non-contiguous weekday sets become one fragment per contiguous run, and
// ranges are stored in ascending order.
// POST /api/hours/format {"groups": [{"days": [5,6,0,1], "ranges": [...]}]}
func (s *HTTPServer) handleFormat(w http.ResponseWriter, r *http.Request) {
	var req formatRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var schedule hours.Schedule
	for _, fg := range req.Groups {
		if len(fg.Ranges) == 0 {
			writeError(w, http.StatusBadRequest, "each group needs at least one range")
			return
		}
		for _, tr := range fg.Ranges {
			if tr.Overnight() {
				writeError(w, http.StatusBadRequest, "range "+tr.String()+" closes before it opens")
				return
			}
		}
		if fg.Break != nil && fg.Break.End <= fg.Break.Start {
			writeError(w, http.StatusBadRequest, "break "+fg.Break.String()+" ends before it starts")
			return
		}

		// Overlaps would be dropped when the stored text is read back.
		ranges, issues := hours.NormalizeRanges(fg.Ranges)
		if len(issues) > 0 {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":  "range " + issues[0].Segment + " overlaps an earlier range",
				"issues": issues,
			})
			return
		}

		groups, err := hours.GroupsFromDays(fg.Days, ranges, fg.Break)
		if err != nil {
			if errors.Is(err, hours.ErrEmptyDays) {
				writeError(w, http.StatusBadRequest, "each group needs at least one day")
				return
			}
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		schedule = append(schedule, groups...)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"text":   hours.Serialize(schedule),
		"groups": schedule,
	})
}

// handleLint reports every fragment of the text that would be dropped.
// POST /api/hours/lint {"text": "..."}
func (s *HTTPServer) handleLint(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if !decodeBody(w, r, &req) {
		return
	}

	diag := hours.Diagnose(req.Text)
	for _, issue := range diag.Issues {
		metrics.IncLintIssue(string(issue.Reason))
	}
	writeJSON(w, http.StatusOK, struct {
		hours.Diagnostics
		OK bool `json:"ok"`
	}{Diagnostics: diag, OK: diag.OK()})
}

func decodeBody(w http.ResponseWriter, r *http.Request, out any) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}
