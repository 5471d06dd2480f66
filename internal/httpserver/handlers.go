package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/heyojules/invite/internal/admin"
	"github.com/heyojules/invite/internal/fragment"
	"github.com/heyojules/invite/internal/imaging"
	"github.com/heyojules/invite/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// fail maps store and validation errors onto status codes.
func (s *Server) fail(c *gin.Context, err error) {
	var ve *model.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error(), "field": ve.Field})
	case errors.Is(err, model.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, admin.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	default:
		s.logger.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func queryLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
		return 0, false
	}
	return n, true
}

func (s *Server) handleManifest(c *gin.Context) {
	c.JSON(http.StatusOK, s.catalog.Manifest())
}

func (s *Server) handlePage(c *gin.Context) {
	data, err := s.catalog.Fragment("pages/" + c.Param("file"))
	if errors.Is(err, fragment.ErrUnknownFragment) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown page"})
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, "text/html; charset=utf-8", data)
}

type rsvpRequest struct {
	Name       string           `json:"name"`
	Attendance model.Attendance `json:"attendance"`
	Guests     int              `json:"guests"`
	Notes      string           `json:"notes"`
}

func (s *Server) handleCreateRSVP(c *gin.Context) {
	var req rsvpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}
	saved, err := s.store.InsertRSVP(model.RSVP{
		Name:       req.Name,
		Attendance: req.Attendance,
		Guests:     req.Guests,
		Notes:      req.Notes,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	s.logger.Info("rsvp received", zap.String("id", saved.ID), zap.String("attendance", string(saved.Attendance)), zap.Int("guests", saved.Guests))
	c.JSON(http.StatusCreated, saved)
}

func (s *Server) handleListRSVPs(c *gin.Context) {
	rows, err := s.store.ListRSVPs()
	if err != nil {
		s.fail(c, err)
		return
	}
	if c.Query("summary") == "1" {
		c.JSON(http.StatusOK, admin.Summarize(rows))
		return
	}
	if rows == nil {
		rows = []model.RSVP{}
	}
	c.JSON(http.StatusOK, rows)
}

type guestbookRequest struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

func (s *Server) handleListGuestbook(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	entries, err := s.store.ListGuestbook(limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	if entries == nil {
		entries = []model.GuestbookEntry{}
	}
	c.JSON(http.StatusOK, entries)
}

func (s *Server) handleCreateGuestbookEntry(c *gin.Context) {
	var req guestbookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}
	saved, err := s.store.InsertGuestbookEntry(model.GuestbookEntry{Name: req.Name, Message: req.Message})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

func (s *Server) handleDeleteGuestbookEntry(c *gin.Context) {
	if err := s.store.DeleteGuestbookEntry(c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleListPhotos(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	photos, err := s.store.ListPhotos(limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	if photos == nil {
		photos = []model.Photo{}
	}
	c.JSON(http.StatusOK, photos)
}

func (s *Server) handleUploadPhoto(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.opts.MaxUploadBytes)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field \"file\" is required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		s.fail(c, err)
		return
	}
	defer f.Close()

	res, err := imaging.Compress(f)
	if err != nil {
		s.logger.Warn("photo rejected", zap.String("filename", fh.Filename), zap.Error(err))
		if errors.Is(err, imaging.ErrTooLarge) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "image dimensions too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported or corrupt image"})
		return
	}

	photo, err := s.store.InsertPhoto(model.PhotoUpload{
		ContentType: imaging.ContentType,
		Width:       res.Width,
		Height:      res.Height,
		Data:        res.Data,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	s.logger.Info("photo stored", zap.String("id", photo.ID), zap.Int64("size", photo.Size), zap.String("source_format", res.SourceFormat))
	c.JSON(http.StatusCreated, photo)
}

func (s *Server) handlePhotoImage(c *gin.Context) {
	photo, data, err := s.store.PhotoData(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.Data(http.StatusOK, photo.ContentType, data)
}

func (s *Server) handleDeletePhoto(c *gin.Context) {
	if err := s.store.DeletePhoto(c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
