package handler

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sifan077/Rinku/internal/app/metadata"
	"github.com/sifan077/Rinku/internal/app/repository"
	"github.com/sifan077/Rinku/internal/app/service"
	"go.uber.org/zap"
)

// APIDeps groups dependencies required by API handlers.
type APIDeps struct {
	Logger          *zap.Logger
	BookmarkService service.BookmarkService
	Metadata        metadata.Provider
}

// APIHandler implements the bookmark API endpoints.
type APIHandler struct {
	logger    *zap.Logger
	bookmarks service.BookmarkService
	metadata  metadata.Provider
}

// NewAPIHandler creates an API handler with the provided dependencies.
func NewAPIHandler(deps APIDeps) *APIHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &APIHandler{
		logger:    logger,
		bookmarks: deps.BookmarkService,
		metadata:  deps.Metadata,
	}
}

// Register wires API routes onto the provided router.
func (h *APIHandler) Register(router fiber.Router) {
	api := router.Group("/api")
	{
		links := api.Group("/links")
		{
			links.Get("/", h.ListLinks)
			links.Post("/", h.CreateLink)
			links.Put("/:id", h.UpdateLink)
			links.Delete("/:id", h.DeleteLink)
		}
		api.Get("/metadata", h.FetchMetadata)
	}
}

// LinkRequest is the body accepted by create and update. Every field is
// optional and forwarded as-is; an absent field is stored as null.
type LinkRequest struct {
	Title       *string `json:"title"`
	URL         *string `json:"url"`
	Description *string `json:"description"`
}

func (r LinkRequest) input() service.BookmarkInput {
	return service.BookmarkInput{
		Title:       r.Title,
		URL:         r.URL,
		Description: r.Description,
	}
}

// ListLinks handles GET /api/links
func (h *APIHandler) ListLinks(c *fiber.Ctx) error {
	bookmarks, err := h.bookmarks.ListBookmarks(requestContext(c))
	if err != nil {
		h.logger.Error("failed to list links", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to list links",
		})
	}

	return c.JSON(bookmarks)
}

// CreateLink handles POST /api/links
func (h *APIHandler) CreateLink(c *fiber.Ctx) error {
	req, err := parseLinkRequest(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	bookmark, err := h.bookmarks.CreateBookmark(requestContext(c), req.input())
	if err != nil {
		h.logger.Error("failed to create link", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to create link",
		})
	}

	return c.JSON(bookmark)
}

// UpdateLink handles PUT /api/links/:id
func (h *APIHandler) UpdateLink(c *fiber.Ctx) error {
	id, ok := linkID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid link id",
		})
	}

	req, err := parseLinkRequest(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	bookmark, err := h.bookmarks.UpdateBookmark(requestContext(c), id, req.input())
	if err != nil {
		if errors.Is(err, repository.ErrBookmarkNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "link not found",
			})
		}
		h.logger.Error("failed to update link", zap.Error(err), zap.Int64("id", id))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to update link",
		})
	}

	return c.JSON(bookmark)
}

// DeleteLink handles DELETE /api/links/:id. Deleting an id that does not
// exist also answers 204.
func (h *APIHandler) DeleteLink(c *fiber.Ctx) error {
	id, ok := linkID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid link id",
		})
	}

	if err := h.bookmarks.DeleteBookmark(requestContext(c), id); err != nil {
		if !errors.Is(err, repository.ErrBookmarkNotFound) {
			h.logger.Error("failed to delete link", zap.Error(err), zap.Int64("id", id))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to delete link",
			})
		}
		h.logger.Debug("delete of missing link", zap.Int64("id", id))
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// FetchMetadata handles GET /api/metadata?url=...
func (h *APIHandler) FetchMetadata(c *fiber.Ctx) error {
	url := c.Query("url")
	if url == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "URL parameter is required",
		})
	}

	meta, err := h.metadata.FetchPageMetadata(requestContext(c), url)
	if err != nil {
		h.logger.Error("failed to fetch metadata", zap.Error(err), zap.String("url", url))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to fetch metadata",
			"details": err.Error(),
		})
	}

	return c.JSON(meta)
}

// parseLinkRequest decodes the request body. An empty body is an empty
// object, so every field is stored as null.
func parseLinkRequest(c *fiber.Ctx) (LinkRequest, error) {
	var req LinkRequest
	if len(c.Body()) == 0 {
		return req, nil
	}
	if err := c.BodyParser(&req); err != nil {
		return req, err
	}
	return req, nil
}

func linkID(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func requestContext(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}
	return ctx
}
