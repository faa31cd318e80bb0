package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nurpe/depot-checkins/internal/model"
	"github.com/nurpe/depot-checkins/internal/service"
)

type Handler struct {
	checkins *service.CheckinService
	reports  *service.ReportService
	drivers  *service.DriverService
	settings *service.SettingsService
	exports  *service.ExportService
	log      zerolog.Logger
}

func NewHandler(
	checkins *service.CheckinService,
	reports *service.ReportService,
	drivers *service.DriverService,
	settings *service.SettingsService,
	exports *service.ExportService,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		checkins: checkins,
		reports:  reports,
		drivers:  drivers,
		settings: settings,
		exports:  exports,
		log:      log,
	}
}

func (h *Handler) Register(router *gin.Engine) {
	router.GET("/health", h.health)

	router.POST("/scan", h.postScan)
	router.GET("/status/pending-returns", h.pendingReturns)
	router.GET("/stats/today", h.statsToday)

	router.GET("/checkins", h.listCheckins)
	router.PATCH("/checkins/:id/comment", h.amendComment)
	router.PATCH("/checkins/:id/tour", h.amendTour)
	router.POST("/checkins/prune", h.prune)

	router.GET("/reports", h.listReports)
	router.GET("/reports/:checkinId", h.getReport)
	router.PUT("/reports/:checkinId", h.putReport)

	router.GET("/drivers", h.listDrivers)
	router.POST("/drivers", h.saveDriver)
	router.PUT("/drivers", h.replaceDrivers)
	router.DELETE("/drivers/:id", h.deleteDriver)
	router.POST("/drivers/import", h.importDrivers)

	router.GET("/settings", h.getSettings)
	router.PUT("/settings", h.putSettings)

	router.GET("/exports/checkins.xlsx", h.exportCheckins)
	router.GET("/exports/reports.xlsx", h.exportReports)
	router.GET("/exports/daily-summary.pdf", h.exportDailySummary)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type scanRequest struct {
	DriverID         string `json:"driver_id" binding:"required"`
	Kind             string `json:"kind" binding:"required"`
	HasUniform       bool   `json:"has_uniform"`
	ReportedIssue    bool   `json:"reported_issue"`
	IssueDetails     string `json:"issue_details"`
	DepartureComment string `json:"departure_comment"`
}

// postScan always answers 200 for resolvable requests: a rejected scan is
// a normal outcome the kiosk shows to the operator, not an HTTP error.
func (h *Handler) postScan(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	kind, err := parseKind(req.Kind)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid kind"})
		return
	}

	result, err := h.checkins.RecordScan(c.Request.Context(), service.ScanInput{
		DriverID:         req.DriverID,
		Kind:             kind,
		HasUniform:       req.HasUniform,
		ReportedIssue:    req.ReportedIssue,
		IssueDetails:     req.IssueDetails,
		DepartureComment: req.DepartureComment,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) pendingReturns(c *gin.Context) {
	asOf := time.Now()
	if raw := c.Query("as_of"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid as_of"})
			return
		}
		asOf = parsed
	}

	pending, err := h.checkins.PendingReturns(c.Request.Context(), asOf)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pending_returns": pending})
}

func (h *Handler) statsToday(c *gin.Context) {
	stats, err := h.checkins.StatsToday(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) listCheckins(c *gin.Context) {
	date, ok := h.dateParam(c)
	if !ok {
		return
	}
	events, err := h.checkins.ListOnDate(c.Request.Context(), date)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"checkins": events})
}

type amendCommentRequest struct {
	Comment string `json:"comment"`
}

func (h *Handler) amendComment(c *gin.Context) {
	var req amendCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.checkins.AmendComment(c.Request.Context(), c.Param("id"), req.Comment); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type amendTourRequest struct {
	Tour string `json:"tour"`
}

func (h *Handler) amendTour(c *gin.Context) {
	var req amendTourRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.checkins.AmendTour(c.Request.Context(), c.Param("id"), req.Tour); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) prune(c *gin.Context) {
	removed, err := h.checkins.PruneToToday(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

func (h *Handler) listReports(c *gin.Context) {
	reports, err := h.reports.List(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

func (h *Handler) getReport(c *gin.Context) {
	report, err := h.reports.ForCheckin(c.Request.Context(), c.Param("checkinId"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) putReport(c *gin.Context) {
	var report model.IncidentReport
	if err := c.ShouldBindJSON(&report); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	report.CheckinID = c.Param("checkinId")

	if err := h.reports.Upsert(c.Request.Context(), &report); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) listDrivers(c *gin.Context) {
	drivers, err := h.drivers.List(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"drivers": drivers})
}

func (h *Handler) saveDriver(c *gin.Context) {
	var driver model.Driver
	if err := c.ShouldBindJSON(&driver); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.drivers.Save(c.Request.Context(), &driver); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, driver)
}

func (h *Handler) replaceDrivers(c *gin.Context) {
	var drivers []model.Driver
	if err := c.ShouldBindJSON(&drivers); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.drivers.ReplaceAll(c.Request.Context(), drivers); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imported": len(drivers)})
}

func (h *Handler) deleteDriver(c *gin.Context) {
	if err := h.drivers.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) importDrivers(c *gin.Context) {
	imported, err := h.drivers.ImportCSV(c.Request.Context(), c.Request.Body)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imported": imported})
}

func (h *Handler) getSettings(c *gin.Context) {
	settings, err := h.settings.Get(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *Handler) putSettings(c *gin.Context) {
	var settings model.NotificationSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.settings.Update(c.Request.Context(), &settings); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (h *Handler) exportCheckins(c *gin.Context) {
	date, ok := h.dateParam(c)
	if !ok {
		return
	}
	result, err := h.exports.ExportCheckins(c.Request.Context(), date)
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.sendFile(c, xlsxContentType, result)
}

func (h *Handler) exportReports(c *gin.Context) {
	date, ok := h.dateParam(c)
	if !ok {
		return
	}
	result, err := h.exports.ExportReports(c.Request.Context(), date)
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.sendFile(c, xlsxContentType, result)
}

func (h *Handler) exportDailySummary(c *gin.Context) {
	result, err := h.exports.ExportDailySummary(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.sendFile(c, "application/pdf", result)
}

func (h *Handler) sendFile(c *gin.Context, contentType string, result *service.ExportResult) {
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, contentType, result.Content)
}

// dateParam reads the optional ?date= query, defaulting to today. On a
// bad value it writes the 400 itself and returns ok=false.
func (h *Handler) dateParam(c *gin.Context) (time.Time, bool) {
	raw := c.Query("date")
	if raw == "" {
		return time.Now(), true
	}
	date, err := parseDate(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
		return time.Time{}, false
	}
	return date, true
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parseKind(raw string) (model.EventKind, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "DEPARTURE":
		return model.KindDeparture, nil
	case "RETURN":
		return model.KindReturn, nil
	default:
		return "", service.ErrInvalidInput
	}
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	layouts := []string{"2006-01-02", time.RFC3339}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, service.ErrInvalidInput
}
