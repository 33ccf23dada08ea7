// SPDX-License-Identifier: MIT
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"haptic/internal/analysis"
	"haptic/internal/codec"
	"haptic/internal/haptic"
	"haptic/internal/preset"
)

// Error codes returned in the error envelope.
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeNotFound           = "NOT_FOUND"
	CodeCorruptMetadata    = "CORRUPT_METADATA"
	CodeUnsupportedVersion = "UNSUPPORTED_VERSION"
	CodePayloadTooLarge    = "PAYLOAD_TOO_LARGE"
	CodeInternal           = "INTERNAL_ERROR"
)

func errorResponse(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error": gin.H{"code": code, "message": message},
	})
}

// fail maps a domain error onto a status and error code.
func fail(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, haptic.ErrNotFound):
		errorResponse(c, http.StatusNotFound, CodeNotFound, err.Error())
	case errors.Is(err, haptic.ErrInvalidInput):
		errorResponse(c, http.StatusBadRequest, CodeInvalidRequest, err.Error())
	case errors.Is(err, haptic.ErrCorruptMetadata):
		errorResponse(c, http.StatusUnprocessableEntity, CodeCorruptMetadata, err.Error())
	case errors.Is(err, haptic.ErrUnsupportedVersion):
		errorResponse(c, http.StatusUnprocessableEntity, CodeUnsupportedVersion, err.Error())
	case errors.As(err, &tooLarge):
		errorResponse(c, http.StatusRequestEntityTooLarge, CodePayloadTooLarge, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		errorResponse(c, http.StatusGatewayTimeout, CodeInternal, err.Error())
	default:
		log.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		errorResponse(c, http.StatusInternalServerError, CodeInternal, "internal error")
	}
}

func (s *Server) listPresets(c *gin.Context) {
	presets := s.svc.Presets()
	if category := c.Query("category"); category != "" {
		presets = preset.ByCategory(category)
	}
	if presets == nil {
		presets = []haptic.Preset{}
	}
	c.JSON(http.StatusOK, gin.H{"presets": presets})
}

func (s *Server) getPreset(c *gin.Context) {
	p, err := s.svc.Preset(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

type createAnalysisRequest struct {
	FileID   string             `json:"fileId"`
	Analysis *analysis.Analysis `json:"analysis" binding:"required"`
}

func (s *Server) createAnalysis(c *gin.Context) {
	var req createAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, CodeInvalidRequest, "invalid request body: "+err.Error())
		return
	}
	fileID := req.FileID
	if fileID == "" {
		fileID = s.svc.NewFileID()
	}

	rec, err := s.svc.SaveAnalysis(c.Request.Context(), fileID, *req.Analysis)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": rec.ID, "fileId": rec.FileID})
}

func (s *Server) getAnalysis(c *gin.Context) {
	rec, err := s.svc.LoadAnalysis(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

type generateRequest struct {
	Prompt   string `json:"prompt"`
	PresetID string `json:"presetId"`
}

func (s *Server) generatePatterns(c *gin.Context) {
	var req generateRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			errorResponse(c, http.StatusBadRequest, CodeInvalidRequest, "invalid request body: "+err.Error())
			return
		}
	}

	events, err := s.svc.Generate(c.Request.Context(), c.Param("id"), req.Prompt, req.PresetID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"patterns": events})
}

func (s *Server) listPatterns(c *gin.Context) {
	events, err := s.svc.UserPatterns(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"patterns": events})
}

// readUpload returns the bytes and base name of the multipart "video" field.
func (s *Server) readUpload(c *gin.Context) ([]byte, string, error) {
	if s.cfg.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxUploadBytes)
	}
	fh, err := c.FormFile("video")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, "", err
		}
		return nil, "", fmt.Errorf("%w: missing video upload: %v", haptic.ErrInvalidInput, err)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	payload, err := io.ReadAll(f)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read upload: %w", err)
	}
	return payload, filepath.Base(fh.Filename), nil
}

func (s *Server) embed(c *gin.Context) {
	payload, name, err := s.readUpload(c)
	if err != nil {
		fail(c, err)
		return
	}

	var patterns []haptic.Event
	if err := json.Unmarshal([]byte(c.PostForm("patterns")), &patterns); err != nil {
		errorResponse(c, http.StatusBadRequest, CodeInvalidRequest, "patterns must be a JSON array of events: "+err.Error())
		return
	}
	var opts *haptic.Options
	if raw := c.PostForm("options"); raw != "" {
		o := s.svc.Defaults()
		if err := json.Unmarshal([]byte(raw), &o); err != nil {
			errorResponse(c, http.StatusBadRequest, CodeInvalidRequest, "options must be a JSON object: "+err.Error())
			return
		}
		opts = &o
	}

	out, block, err := s.svc.Embed(payload, patterns, opts)
	if err != nil {
		fail(c, err)
		return
	}

	log.Infof("Embedded %d patterns into %s (%d bytes)", len(block.Patterns), name, len(out))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", codec.OutputName(name)))
	c.Data(http.StatusOK, "application/octet-stream", out)
}

func (s *Server) extract(c *gin.Context) {
	payload, _, err := s.readUpload(c)
	if err != nil {
		fail(c, err)
		return
	}

	block, err := s.svc.Extract(payload)
	if errors.Is(err, haptic.ErrNotFound) {
		c.JSON(http.StatusOK, gin.H{"found": false})
		return
	}
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"found": true, "metadata": block})
}

type playRequest struct {
	Patterns []haptic.Event  `json:"patterns" binding:"required"`
	Options  json.RawMessage `json:"options"`
}

func (s *Server) play(c *gin.Context) {
	var req playRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, CodeInvalidRequest, "invalid request body: "+err.Error())
		return
	}
	if err := haptic.ValidateEvents(req.Patterns); err != nil {
		fail(c, err)
		return
	}
	opts := s.svc.Defaults()
	if len(req.Options) > 0 {
		if err := json.Unmarshal(req.Options, &opts); err != nil {
			errorResponse(c, http.StatusBadRequest, CodeInvalidRequest, "options must be a JSON object: "+err.Error())
			return
		}
		if err := opts.Validate(); err != nil {
			fail(c, err)
			return
		}
	}

	s.startPlayback(req.Patterns, opts)
	c.JSON(http.StatusAccepted, gin.H{
		"events":   len(req.Patterns),
		"duration": haptic.Span(req.Patterns).Milliseconds(),
	})
}

// startPlayback replaces any playback in progress.
func (s *Server) startPlayback(events []haptic.Event, opts haptic.Options) {
	s.playMu.Lock()
	defer s.playMu.Unlock()
	if s.cancelPlay != nil {
		s.cancelPlay()
	}
	ctx, cancel := context.WithCancel(s.base)
	s.cancelPlay = cancel

	events = haptic.CloneEvents(events)
	s.playWG.Add(1)
	go func() {
		defer s.playWG.Done()
		defer cancel()
		if _, err := s.player.Play(ctx, events, opts); err != nil && !errors.Is(err, context.Canceled) {
			log.Warnf("Playback failed: %v", err)
		}
	}()
}
