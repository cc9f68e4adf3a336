package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jjc-attendance/internal/auth"
	"jjc-attendance/internal/locale"
	"jjc-attendance/internal/summary"
)

type checkInRequest struct {
	Photo string `json:"photo"`
}

func (s *Server) checkIn(c *gin.Context) {
	var req checkInRequest
	// a missing or malformed body is reported as a missing photo
	_ = c.ShouldBindJSON(&req)

	rec, err := s.attendance.CheckIn(c.Request.Context(), auth.Current(c), req.Photo)
	if err != nil {
		s.fail(c, err, "attendance.checkInFailed")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": locale.FromContext(c).Message("attendance.checkInOK"),
		"record":  rec,
	})
}

func (s *Server) checkOut(c *gin.Context) {
	rec, err := s.attendance.CheckOut(c.Request.Context(), auth.Current(c), c.Param("id"))
	if err != nil {
		s.fail(c, err, "attendance.checkOutFailed")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": locale.FromContext(c).Message("attendance.checkOutOK"),
		"record":  rec,
	})
}

func (s *Server) getAll(c *gin.Context) {
	recs, err := s.attendance.GetAll(c.Request.Context())
	if err != nil {
		s.fail(c, err, "attendance.listFailed")
		return
	}
	c.JSON(http.StatusOK, recs)
}

func (s *Server) getMine(c *gin.Context) {
	recs, err := s.attendance.GetMine(c.Request.Context(), auth.Current(c))
	if err != nil {
		s.fail(c, err, "attendance.listFailed")
		return
	}
	c.JSON(http.StatusOK, recs)
}

type monthSummary struct {
	Month      string `json:"month"`
	MonthKey   string `json:"monthKey,omitempty"`
	Hadir      int    `json:"hadir"`
	TidakHadir int    `json:"tidakHadir"`
}

func present(l *locale.Localizer, res []summary.MonthSummary, withKey bool) []monthSummary {
	out := make([]monthSummary, 0, len(res))
	for _, m := range res {
		row := monthSummary{
			Month:      l.MonthYear(m.Key.Year, m.Key.Month),
			Hadir:      m.Present,
			TidakHadir: m.Absent,
		}
		if withKey {
			row.MonthKey = m.Key.String()
		}
		out = append(out, row)
	}
	return out
}

func (s *Server) summarizeAll(c *gin.Context) {
	res, err := s.summary.SummarizeAll(c.Request.Context())
	if err != nil {
		s.fail(c, err, "summary.failed")
		return
	}
	c.JSON(http.StatusOK, present(locale.FromContext(c), res, false))
}

func (s *Server) summarizeMine(c *gin.Context) {
	res, err := s.summary.SummarizeMine(c.Request.Context(), auth.Current(c))
	if err != nil {
		s.fail(c, err, "summary.failed")
		return
	}
	c.JSON(http.StatusOK, present(locale.FromContext(c), res, true))
}

func (s *Server) exportMonthlyReport(c *gin.Context) {
	rep, err := s.summary.ExportMonthlyReport(c.Request.Context(), auth.Current(c), c.Query("monthKey"))
	if err != nil {
		s.fail(c, err, "summary.exportFailed")
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+rep.Filename)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(rep.CSV))
}
