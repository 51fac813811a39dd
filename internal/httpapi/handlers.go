package httpapi

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/livingstonekit-alt/feather-front/internal/capture"
	"github.com/livingstonekit-alt/feather-front/internal/datastore"
	"github.com/livingstonekit-alt/feather-front/internal/segment"
)

func (s *Server) handleStatus(c echo.Context) error {
	snap, _, err := s.snapshot.Read()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to read status")
	}
	return c.JSON(http.StatusOK, snap)
}

func (s *Server) handleGetSettings(c echo.Context) error {
	return c.JSON(http.StatusOK, s.confStore.Snapshot())
}

func (s *Server) handlePostSettings(c echo.Context) error {
	var patch map[string]any
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON body")
	}
	changed, _ := s.confStore.ApplyPatch(patch)
	if changed == nil {
		changed = []string{}
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true, "changed": changed})
}

func (s *Server) handleInputs(c echo.Context) error {
	devices, err := capture.ListDevices(c.Request().Context(), "ffmpeg")
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to enumerate devices")
	}
	return c.JSON(http.StatusOK, map[string]any{"devices": devices})
}

func (s *Server) handleQueue(c echo.Context) error {
	segs, err := segment.Dir(s.segDir)
	if err != nil {
		return c.JSON(http.StatusOK, map[string]any{"pending": 0})
	}
	return c.JSON(http.StatusOK, map[string]any{"pending": len(segs)})
}

func (s *Server) handleLog(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	rows, err := s.store.ListDetectionsCached(limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list detections")
	}
	return c.JSON(http.StatusOK, rows)
}

func (s *Server) handleLogSummary(c echo.Context) error {
	rows, err := s.store.Summary()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to build summary")
	}
	return c.JSON(http.StatusOK, rows)
}

func (s *Server) handleLogActivity(c echo.Context) error {
	days, _ := strconv.Atoi(c.QueryParam("days"))
	days = clampDays(days)

	since := time.Now().Add(-time.Duration(days) * 24 * time.Hour)
	detections, err := s.store.DetectionsSince(since)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to query activity")
	}
	hist := BuildActivityHistogram(detections, days, time.Now())
	return c.JSON(http.StatusOK, hist)
}

func (s *Server) handleLogCSV(c echo.Context) error {
	rows, err := s.store.ListDetections(0)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list detections")
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="detections.csv"`)
	c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	return WriteDetectionsCSV(c.Response(), rows)
}

func (s *Server) handleEvents(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	rows, err := s.store.ListEvents(limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list events")
	}
	return c.JSON(http.StatusOK, rows)
}

func (s *Server) handleClip(c echo.Context) error {
	species := c.QueryParam("species")
	if species == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "species is required")
	}

	idx, err := s.clipIndex.Load()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load clip index")
	}
	entry, ok := idx[species]
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "no clip for species")
	}

	path := filepath.Join(s.clipsDir, entry.Filename)
	if c.QueryParam("download") != "" {
		return c.Attachment(path, entry.Filename)
	}
	return c.Inline(path, entry.Filename)
}

func (s *Server) handleLogAdd(c echo.Context) error {
	var body struct {
		Species        string `json:"species"`
		ScientificName string `json:"scientific_name"`
		Timestamp      string `json:"timestamp"`
		Confidence     any    `json:"confidence"`
		Location       string `json:"location"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON body")
	}
	if body.Species == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "species is required")
	}

	d := datastore.Detection{
		Timestamp:      normalizeManualTimestamp(body.Timestamp),
		Species:        body.Species,
		ScientificName: body.ScientificName,
		Confidence:     normalizeManualConfidence(body.Confidence),
		Location:       body.Location,
	}
	stored, err := s.store.AppendDetection(d)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to record detection")
	}
	s.store.AppendEvent(datastore.Event{
		ID:        datastore.NewOpaqueID(),
		Timestamp: datastore.NowUTC(),
		Type:      datastore.EventManual,
		Message:   "manual entry: " + stored.Species,
	})
	return c.JSON(http.StatusOK, stored)
}

func (s *Server) handleLogDelete(c echo.Context) error {
	var body struct {
		ID string `json:"id"`
	}
	if err := c.Bind(&body); err != nil || body.ID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "id is required")
	}
	existed, err := s.store.DeleteDetection(body.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete detection")
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": existed})
}

func (s *Server) handleRestart(c echo.Context) error {
	s.confStore.RequestRestart()
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleRestartServer(c echo.Context) error {
	if err := c.JSON(http.StatusOK, map[string]any{"ok": true}); err != nil {
		return err
	}
	go s.reexec()
	return nil
}

// reexec replaces the running process image with a fresh invocation of
// itself, after a short delay to let the 200 response above actually
// flush to the client before the process address space disappears.
func (s *Server) reexec() {
	time.Sleep(250 * time.Millisecond)
	exe, err := os.Executable()
	if err != nil {
		s.log.Error("server restart failed: could not resolve executable path", "error", err)
		return
	}
	if err := reexecProcess(exe, os.Args, os.Environ()); err != nil {
		s.log.Error("server restart failed", "error", err)
	}
}
