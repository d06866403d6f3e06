// Package export renders the weekly hours of stored places as an XLSX workbook.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"placehours/internal/availability"
	"placehours/internal/hours"
	"placehours/internal/model"
)

const (
	hoursSheet = "영업시간"
	lintSheet  = "진단"
)

// Writer builds hours reports.
type Writer struct {
	svc *availability.Service
}

func NewWriter(svc *availability.Service) *Writer {
	return &Writer{svc: svc}
}

// WriteHours writes one row per place: its hours for each weekday, closures
// and status at now. A second sheet lists lint issues per place.
func (w *Writer) WriteHours(out io.Writer, places []model.Place, now time.Time) error {
	sw := newSheetWriter()
	defer sw.Close()

	if err := sw.AddSheet(hoursSheet); err != nil {
		return err
	}
	header := []string{"ID", "이름", "주소"}
	for d := hours.Sunday; d <= hours.Saturday; d++ {
		header = append(header, d.Symbol())
	}
	header = append(header, "휴무", "상태", "다음 변경")
	if err := sw.WriteHeader(header); err != nil {
		return err
	}
	sw.SetWidths(6, 20, 24, 14, 14, 14, 14, 14, 14, 14, 24, 14, 18)

	loc := w.svc.Location()
	for i := range places {
		p := &places[i]
		schedule := hours.Parse(p.OpeningHours)

		row := []any{p.ID, p.Name, p.Address}
		for d := hours.Sunday; d <= hours.Saturday; d++ {
			row = append(row, DayCell(schedule, d))
		}

		st := w.svc.PlaceStatus(p, now).Status
		next := ""
		if st.NextChangeAt != nil {
			next = st.NextChangeAt.In(loc).Format("2006-01-02 15:04")
		}
		row = append(row, closuresCell(p.ClosedDays), string(st.State), next)

		if err := sw.WriteRow(row); err != nil {
			return fmt.Errorf("write place %d: %w", p.ID, err)
		}
	}

	if err := sw.AddSheet(lintSheet); err != nil {
		return err
	}
	if err := sw.WriteHeader([]string{"ID", "이름", "방식", "구간", "사유", "상세"}); err != nil {
		return err
	}
	sw.SetWidths(6, 20, 14, 32, 24, 20)
	for i := range places {
		p := &places[i]
		diag := hours.Diagnose(p.OpeningHours)
		for _, issue := range diag.Issues {
			if err := sw.WriteRow([]any{p.ID, p.Name, diag.Dialect, issue.Segment, string(issue.Reason), issue.Detail}); err != nil {
				return fmt.Errorf("write lint for place %d: %w", p.ID, err)
			}
		}
	}

	return sw.Save(out)
}

// DayCell renders one weekday's hours as "10:00-22:00 (브레이크 15:00-16:00)",
// or "-" when no group covers the day.
func DayCell(s hours.Schedule, d hours.Weekday) string {
	g, ok := s.GroupFor(d)
	if !ok {
		return "-"
	}
	parts := make([]string, 0, len(g.Ranges))
	for _, r := range g.Ranges {
		parts = append(parts, r.String())
	}
	cell := strings.Join(parts, ", ")
	if g.Break != nil {
		cell += fmt.Sprintf(" (브레이크 %s)", g.Break)
	}
	return cell
}

func closuresCell(days []model.ClosedDay) string {
	parts := make([]string, 0, len(days))
	for _, cd := range days {
		var label string
		switch {
		case cd.DayOfWeek != nil && hours.Weekday(*cd.DayOfWeek).Valid():
			label = "매주 " + hours.Weekday(*cd.DayOfWeek).Symbol()
		case cd.SpecificDate != nil:
			label = *cd.SpecificDate
		default:
			continue
		}
		if cd.Note != nil && *cd.Note != "" {
			label += " (" + *cd.Note + ")"
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, ", ")
}
