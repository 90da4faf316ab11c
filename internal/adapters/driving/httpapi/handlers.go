package httpapi

import (
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/ports/driving"
)

// uploadField is the multipart field carrying documents.
const uploadField = "files"

// CreateSessionRequest optionally names the session to open.
type CreateSessionRequest struct {
	SessionID string `json:"session_id" validate:"omitempty,max=128"`
}

// MessageRequest carries a user turn.
type MessageRequest struct {
	Content     string   `json:"content" validate:"required"`
	Model       string   `json:"model"`
	Temperature *float64 `json:"temperature" validate:"omitempty,gte=0,lte=2"`
}

// RetryRequest optionally overrides the model and temperature.
type RetryRequest struct {
	Model       string   `json:"model"`
	Temperature *float64 `json:"temperature" validate:"omitempty,gte=0,lte=2"`
}

// ModelRequest switches the session model.
type ModelRequest struct {
	Model string `json:"model" validate:"required"`
}

// FileError reports a file that failed or degraded during ingest.
type FileError struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

// IngestResponse is the result of an upload.
type IngestResponse struct {
	SessionID     string            `json:"session_id"`
	Documents     []domain.Document `json:"documents"`
	Failures      []FileError       `json:"failures"`
	Warnings      []FileError       `json:"warnings"`
	ChunksIndexed int               `json:"chunks_indexed"`
}

func (s *Server) registerRoutes() {
	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	s.app.Get("/models", s.listModels)
	s.app.Get("/formats", s.listFormats)

	sessions := s.app.Group("/sessions")
	sessions.Get("/", s.listSessions)
	sessions.Post("/", s.createSession)
	sessions.Get("/:id", s.getSession)
	sessions.Delete("/:id", s.deleteSession)
	sessions.Post("/:id/reset", s.resetSession)
	sessions.Get("/:id/documents", s.listDocuments)
	sessions.Post("/:id/documents", s.uploadDocuments)
	sessions.Delete("/:id/documents", s.clearDocuments)
	sessions.Post("/:id/messages", s.postMessage)
	sessions.Put("/:id/messages/:index", s.editMessage)
	sessions.Post("/:id/retry", s.retry)
	sessions.Put("/:id/model", s.switchModel)
	sessions.Get("/:id/transcript", s.transcript)
}

// parse decodes and validates a JSON body. An empty body is accepted
// when optional is set.
func (s *Server) parse(c *fiber.Ctx, out any, optional bool) error {
	if len(c.Body()) == 0 {
		if !optional {
			return fiber.NewError(fiber.StatusBadRequest, "request body is required")
		}
	} else if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
	}
	if err := s.validate.Struct(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

func (s *Server) listModels(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"models": s.ports.Conversation.Models()})
}

func (s *Server) listFormats(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"groups": s.ports.Ingest.SupportedFormats()})
}

func (s *Server) listSessions(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"sessions": s.ports.Session.List(c.UserContext())})
}

func (s *Server) createSession(c *fiber.Ctx) error {
	var req CreateSessionRequest
	if err := s.parse(c, &req, true); err != nil {
		return err
	}

	stats, err := s.ports.Session.Open(c.UserContext(), req.SessionID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(stats)
}

func (s *Server) getSession(c *fiber.Ctx) error {
	stats, err := s.ports.Session.Stats(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(stats)
}

func (s *Server) deleteSession(c *fiber.Ctx) error {
	if err := s.ports.Session.Evict(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) resetSession(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := s.ports.Session.Reset(c.UserContext(), id); err != nil {
		return err
	}
	stats, err := s.ports.Session.Stats(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(stats)
}

func (s *Server) listDocuments(c *fiber.Ctx) error {
	docs, err := s.ports.Session.Documents(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"documents": docs})
}

func (s *Server) uploadDocuments(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("invalid multipart form: %v", err))
	}
	headers := form.File[uploadField]
	if len(headers) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no files in field \""+uploadField+"\"")
	}

	files := make([]domain.UploadedFile, 0, len(headers))
	for _, fh := range headers {
		content, err := readPart(fh)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("reading %s: %v", fh.Filename, err))
		}
		files = append(files, domain.UploadedFile{Filename: fh.Filename, Content: content})
	}

	id := c.Params("id")
	report, err := s.ports.Ingest.Ingest(c.UserContext(), id, files)
	if err != nil {
		return err
	}

	status := fiber.StatusCreated
	if len(report.Documents) == 0 && report.HasFailures() {
		status = fiber.StatusUnprocessableEntity
	}
	return c.Status(status).JSON(toIngestResponse(id, report))
}

func (s *Server) clearDocuments(c *fiber.Ctx) error {
	if err := s.ports.Session.ClearDocuments(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) postMessage(c *fiber.Ctx) error {
	var req MessageRequest
	if err := s.parse(c, &req, false); err != nil {
		return err
	}

	turn, err := s.ports.Conversation.Ask(c.UserContext(), c.Params("id"), req.Content, driving.GenerateOptions{
		Model:       req.Model,
		Temperature: req.Temperature,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(turn)
}

func (s *Server) editMessage(c *fiber.Ctx) error {
	index, err := c.ParamsInt("index")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "message index must be an integer")
	}

	var req MessageRequest
	if err := s.parse(c, &req, false); err != nil {
		return err
	}

	turn, err := s.ports.Conversation.Edit(c.UserContext(), c.Params("id"), index, req.Content, driving.GenerateOptions{
		Model:       req.Model,
		Temperature: req.Temperature,
	})
	if err != nil {
		return err
	}
	return c.JSON(turn)
}

func (s *Server) retry(c *fiber.Ctx) error {
	var req RetryRequest
	if err := s.parse(c, &req, true); err != nil {
		return err
	}

	turn, err := s.ports.Conversation.Retry(c.UserContext(), c.Params("id"), driving.GenerateOptions{
		Model:       req.Model,
		Temperature: req.Temperature,
	})
	if err != nil {
		return err
	}
	return c.JSON(turn)
}

func (s *Server) switchModel(c *fiber.Ctx) error {
	var req ModelRequest
	if err := s.parse(c, &req, false); err != nil {
		return err
	}

	id := c.Params("id")
	if err := s.ports.Conversation.SwitchModel(c.UserContext(), id, req.Model); err != nil {
		return err
	}
	stats, err := s.ports.Session.Stats(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(stats)
}

func (s *Server) transcript(c *fiber.Ctx) error {
	turns, err := s.ports.Conversation.Transcript(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"session_id": c.Params("id"), "turns": turns})
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func toIngestResponse(sessionID string, report *domain.IngestReport) IngestResponse {
	resp := IngestResponse{
		SessionID:     sessionID,
		Documents:     report.Documents,
		Failures:      toFileErrors(report.Failures),
		Warnings:      toFileErrors(report.Warnings),
		ChunksIndexed: report.ChunksIndexed,
	}
	if resp.Documents == nil {
		resp.Documents = []domain.Document{}
	}
	return resp
}

func toFileErrors(failures []domain.IngestFailure) []FileError {
	out := make([]FileError, 0, len(failures))
	for _, f := range failures {
		msg := ""
		if f.Err != nil {
			msg = f.Err.Error()
		}
		out = append(out, FileError{Filename: f.Filename, Error: msg})
	}
	return out
}
