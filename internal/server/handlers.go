package server

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/naija-speech/tts-api/internal/audiostore"
	"github.com/naija-speech/tts-api/internal/core"
	"github.com/naija-speech/tts-api/internal/tts/ttsutils"
)

const errInvalidRequestBody = "invalid request body"

// docsPath is advertised by the root endpoint for API documentation.
const docsPath = "/docs"

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, APIInfoResponse{
		Status:             "online",
		Message:            ServiceName,
		Version:            Version,
		ModelLoaded:        s.engine.Ready(),
		AvailableLanguages: core.Languages,
		AvailableVoices: VoiceCatalog{
			Female: core.FemaleVoices,
			Male:   core.MaleVoices,
		},
		Documentation: docsPath,
		Endpoints: map[string]string{
			"health":    "/health",
			"voices":    "/voices",
			"languages": "/languages",
			"tts":       "/tts",
			"audio":     "/audio/{filename}",
			"cleanup":   "/cleanup",
		},
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:      "healthy",
		ModelLoaded: s.engine.Ready(),
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Version:     Version,
	})
}

func (s *Server) handleVoices(c *gin.Context) {
	c.JSON(http.StatusOK, VoicesResponse{
		Voices: VoiceCatalog{
			Female: core.FemaleVoices,
			Male:   core.MaleVoices,
		},
		DefaultVoice: core.DefaultVoice,
		Total:        len(core.FemaleVoices) + len(core.MaleVoices),
	})
}

func (s *Server) handleLanguages(c *gin.Context) {
	c.JSON(http.StatusOK, LanguagesResponse{
		Languages:       core.Languages,
		DefaultLanguage: core.DefaultLanguage,
	})
}

func (s *Server) handleSynthesize(c *gin.Context) {
	var req TTSRequest

	err := c.ShouldBindJSON(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Detail: errInvalidRequestBody})

		return
	}

	job, err := s.buildJob(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Detail: err.Error()})

		return
	}

	audio, err := s.engine.Synthesize(c.Request.Context(), job)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, core.ErrEngineNotReady) {
			status = http.StatusServiceUnavailable
		}

		s.log.Error("Synthesis failed for voice '%s': %v", job.Voice, err)
		c.JSON(status, ErrorResponse{Detail: err.Error()})

		return
	}

	filename, err := s.store.Save(audio.WAV)
	if err != nil {
		s.log.Error("Failed to store generated audio: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Detail: "failed to store generated audio"})

		return
	}

	s.log.Info("Generated %s (%s, %s) with voice '%s'",
		filename,
		ttsutils.FormatDuration(audio.Duration),
		ttsutils.FormatFileSize(int64(len(audio.WAV))),
		job.Voice,
	)

	// Mirroring is best-effort; the response already carries the audio.
	if s.mirror != nil {
		mirrorErr := s.mirror.Publish(c.Request.Context(), filename, audio.WAV)
		if mirrorErr != nil {
			s.log.Warn("Failed to mirror audio '%s': %v", filename, mirrorErr)
		}
	}

	c.JSON(http.StatusOK, TTSResponse{
		AudioBase64: base64.StdEncoding.EncodeToString(audio.WAV),
		AudioURL:    "/audio/" + filename,
		Text:        job.Text,
		Voice:       job.Voice,
		Language:    job.Language,
		Duration:    audio.Duration,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	})
}

// buildJob validates the request and fills in defaults, returning a job
// ready for the engine. Errors are safe to surface to callers verbatim.
func (s *Server) buildJob(req TTSRequest) (core.SynthesisJob, error) {
	err := s.validator.Validate(req.Text)
	if err != nil {
		return core.SynthesisJob{}, err
	}

	language := req.Language
	if language == "" {
		language = core.DefaultLanguage
	}

	voice := req.Voice
	if voice == "" {
		voice = core.DefaultVoice
	}

	err = core.ValidateLanguage(language)
	if err != nil {
		return core.SynthesisJob{}, err
	}

	err = core.ValidateVoice(voice)
	if err != nil {
		return core.SynthesisJob{}, err
	}

	return core.SynthesisJob{
		Text:     s.validator.Normalize(req.Text),
		Language: language,
		Voice:    voice,
	}, nil
}

func (s *Server) handleAudio(c *gin.Context) {
	filename := c.Param("filename")

	data, err := s.store.Read(filename)
	if err != nil {
		switch {
		case errors.Is(err, audiostore.ErrInvalidFilename):
			c.JSON(http.StatusBadRequest, ErrorResponse{Detail: err.Error()})

			return
		case errors.Is(err, audiostore.ErrNotFound) && s.mirror != nil:
			// The janitor may have purged the local copy; the mirror
			// keeps artifacts longer.
			data, err = s.mirror.Fetch(c.Request.Context(), filename)
			if err != nil {
				c.JSON(http.StatusNotFound, ErrorResponse{Detail: fmt.Sprintf("audio file not found: %s", filename)})

				return
			}
		case errors.Is(err, audiostore.ErrNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Detail: fmt.Sprintf("audio file not found: %s", filename)})

			return
		default:
			s.log.Error("Failed to read audio '%s': %v", filename, err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Detail: "failed to read audio file"})

			return
		}
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", filename))
	c.Data(http.StatusOK, "audio/"+ttsutils.GetFileExtension(filename), data)
}

func (s *Server) handleCleanup(c *gin.Context) {
	removed, err := s.janitor.Sweep(c.Request.Context())
	if err != nil {
		s.log.Error("On-demand cleanup failed: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Detail: "cleanup failed"})

		return
	}

	c.JSON(http.StatusOK, CleanupResponse{
		RemovedFiles: removed,
		Message:      fmt.Sprintf("removed %d expired audio file(s)", removed),
	})
}
