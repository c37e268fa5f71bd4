package server

import (
	"errors"
	"io"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/Martin-Chauke/Legend-Cut/internal/haircuts"
	"github.com/Martin-Chauke/Legend-Cut/internal/pipeline"
	"github.com/Martin-Chauke/Legend-Cut/internal/session"
	"github.com/Martin-Chauke/Legend-Cut/pkg/imgutil"
)

const (
	appName    = "Legend Cut"
	appVersion = "1.0.0"

	maxUploadBytes = 10 * 1024 * 1024
)

// HealthChecker reports whether the landmark detector sidecar is reachable.
type HealthChecker interface {
	Health() error
}

// Handler serves the try-on API.
type Handler struct {
	log         *logrus.Logger
	validator   *validator.Validate
	processor   *pipeline.Processor
	store       *haircuts.Store
	sessions    *session.Store
	detector    HealthChecker
	jpegQuality int
}

func NewHandler(
	log *logrus.Logger,
	validator *validator.Validate,
	processor *pipeline.Processor,
	store *haircuts.Store,
	sessions *session.Store,
	detector HealthChecker,
	jpegQuality int,
) *Handler {
	return &Handler{
		log:         log,
		validator:   validator,
		processor:   processor,
		store:       store,
		sessions:    sessions,
		detector:    detector,
		jpegQuality: jpegQuality,
	}
}

func (h *Handler) Start(router fiber.Router) {
	router.Get("/health", h.Health)
	router.Post("/process-frame", h.ProcessFrame)
	router.Get("/haircuts/:gender", h.ListHaircuts)
	router.Get("/haircuts/:gender/:name/thumbnail", h.Thumbnail)
	router.Post("/upload-haircut", h.UploadHaircut)
	router.Post("/adjust-haircut", h.AdjustHaircut)
	router.Post("/reset-session", h.ResetSession)
	router.Get("/session/:session_id", h.SessionInfo)
}

func (h *Handler) Health(c *fiber.Ctx) error {
	detector := "ok"
	if err := h.detector.Health(); err != nil {
		detector = "unreachable"
	}
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"app":       appName,
		"version":   appVersion,
		"timestamp": time.Now().Format(time.RFC3339),
		"detector":  detector,
	})
}

func (h *Handler) ProcessFrame(c *fiber.Ctx) error {
	var req ProcessFrameRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(newErrorResponse("invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(newErrorResponse(err.Error()))
	}

	frame, err := imgutil.DecodeBase64Frame(req.Frame)
	if err != nil {
		// Undecodable frames come back in the normal response shape so the
		// live preview loop keeps polling instead of treating it as fatal.
		return c.JSON(newErrorResponse("could not decode frame image"))
	}

	gender := req.Gender
	if gender == "" {
		gender = "male"
	}

	result, err := h.processor.Process(c.Context(), pipeline.Request{
		Frame:     frame,
		Gender:    gender,
		Haircut:   req.Haircut,
		SessionID: req.SessionID,
	})
	if err != nil {
		if errors.Is(err, pipeline.ErrAssetNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(newErrorResponse("haircut not found: " + req.Haircut))
		}
		h.log.WithError(err).Error("Frame processing failed")
		return c.Status(fiber.StatusInternalServerError).JSON(newErrorResponse("frame processing failed"))
	}

	encoded, err := imgutil.EncodeJPEGDataURI(result.Frame, h.jpegQuality)
	if err != nil {
		h.log.WithError(err).Error("Frame encoding failed")
		return c.Status(fiber.StatusInternalServerError).JSON(newErrorResponse("frame encoding failed"))
	}

	return c.JSON(processFrameResponse{
		Success:      true,
		Frame:        encoded,
		FaceDetected: result.FaceDetected,
	})
}

func (h *Handler) ListHaircuts(c *fiber.Ctx) error {
	gender := c.Params("gender")

	names, err := h.store.List(gender)
	if err != nil {
		if errors.Is(err, haircuts.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(newErrorResponse("unknown category: " + gender))
		}
		h.log.WithError(err).Error("Haircut listing failed")
		return c.Status(fiber.StatusInternalServerError).JSON(newErrorResponse("could not list haircuts"))
	}

	return c.JSON(haircutsResponse{
		Success:  true,
		Category: gender,
		Haircuts: names,
	})
}

func (h *Handler) Thumbnail(c *fiber.Ctx) error {
	gender := c.Params("gender")
	name := c.Params("name")

	data, err := h.store.Thumbnail(gender, name)
	if err != nil {
		if errors.Is(err, haircuts.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(newErrorResponse("haircut not found: " + name))
		}
		h.log.WithError(err).Error("Thumbnail rendering failed")
		return c.Status(fiber.StatusInternalServerError).JSON(newErrorResponse("could not render thumbnail"))
	}

	c.Set(fiber.HeaderContentType, "image/jpeg")
	return c.Send(data)
}

func (h *Handler) UploadHaircut(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(newErrorResponse("missing file field"))
	}
	if file.Size > maxUploadBytes {
		return c.Status(fiber.StatusBadRequest).JSON(newErrorResponse("file size too large, maximum 10MB allowed"))
	}

	src, err := file.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(newErrorResponse("could not read upload"))
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxUploadBytes+1))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(newErrorResponse("could not read upload"))
	}
	if len(data) > maxUploadBytes {
		return c.Status(fiber.StatusBadRequest).JSON(newErrorResponse("file size too large, maximum 10MB allowed"))
	}

	filename, err := h.store.SaveUpload(data)
	if err != nil {
		if errors.Is(err, haircuts.ErrDuplicate) {
			return c.JSON(uploadResponse{Success: true, Filename: filename, Duplicate: true})
		}
		h.log.WithError(err).Error("Haircut upload failed")
		return c.Status(fiber.StatusBadRequest).JSON(newErrorResponse("could not save upload"))
	}

	return c.JSON(uploadResponse{Success: true, Filename: filename})
}

func (h *Handler) AdjustHaircut(c *fiber.Ctx) error {
	var req AdjustRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(newErrorResponse("invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(newErrorResponse(err.Error()))
	}

	adjustments := h.sessions.Apply(req.SessionID, session.Update{
		Scale:    req.Adjustments.Scale,
		Rotation: req.Adjustments.Rotation,
		X:        req.Adjustments.X,
		Y:        req.Adjustments.Y,
	})

	return c.JSON(adjustResponse{Success: true, Adjustments: adjustments})
}

func (h *Handler) ResetSession(c *fiber.Ctx) error {
	var req ResetRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(newErrorResponse("invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(newErrorResponse(err.Error()))
	}

	existed := h.sessions.Reset(req.SessionID)
	return c.JSON(fiber.Map{"success": true, "existed": existed})
}

func (h *Handler) SessionInfo(c *fiber.Ctx) error {
	id := c.Params("session_id")

	adjustments, exists := h.sessions.Get(id)

	return c.JSON(sessionResponse{
		Success:     true,
		SessionID:   id,
		Exists:      exists,
		Adjustments: adjustments,
	})
}
