package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/someoxygen/chat-app/internal/apperrors"
	"github.com/someoxygen/chat-app/internal/auth"
	"github.com/someoxygen/chat-app/internal/chat"
	"github.com/someoxygen/chat-app/internal/media"
	"github.com/someoxygen/chat-app/internal/user"
)

type Handlers struct {
	chat  *chat.Service
	auth  *auth.Service
	media *media.Service
	users user.Repository
	log   *zap.SugaredLogger
}

func NewHandlers(chatSvc *chat.Service, authSvc *auth.Service, mediaSvc *media.Service, users user.Repository, log *zap.SugaredLogger) *Handlers {
	return &Handlers{chat: chatSvc, auth: authSvc, media: mediaSvc, users: users, log: log}
}

func (h *Handlers) register(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	if _, err := h.auth.Register(c.Context(), req.Username, req.Password); err != nil {
		if errors.Is(err, auth.ErrUserAlreadyExists) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user already exists"})
		}
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "username and password are required"})
		}
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "registered"})
}

func (h *Handlers) login(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	tokens, err := h.auth.Login(c.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid credentials"})
		}
		return h.fail(c, err)
	}
	return c.JSON(tokens)
}

func (h *Handlers) refresh(c *fiber.Ctx) error {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	tokens, err := h.auth.Refresh(c.Context(), req.RefreshToken)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid refresh token"})
	}
	return c.JSON(tokens)
}

func (h *Handlers) logout(c *fiber.Ctx) error {
	h.auth.Logout(c.Context(), Identity(c))
	return c.JSON(fiber.Map{"message": "logged out"})
}

func (h *Handlers) listUsers(c *fiber.Ctx) error {
	names, err := h.users.ListUsernames(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	out := make([]fiber.Map, 0, len(names))
	for _, n := range names {
		out = append(out, fiber.Map{"username": n})
	}
	return c.JSON(out)
}

func (h *Handlers) listConversation(c *fiber.Ctx) error {
	msgs, err := h.chat.History(c.Context(), Identity(c), c.Params("user1"), c.Params("user2"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(msgs)
}

func (h *Handlers) sendMessage(c *fiber.Ctx) error {
	var req struct {
		Receiver string `json:"receiver"`
		Text     string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	// Sender comes from the verified token, never from the body.
	m, out, err := h.chat.Send(c.Context(), Identity(c), req.Receiver, req.Text)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":           m,
		"recipient_offline": out.RecipientOffline,
	})
}

func (h *Handlers) editMessage(c *fiber.Ctx) error {
	var req struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	m, err := h.chat.Edit(c.Context(), Identity(c), c.Params("id"), req.Text)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(m)
}

func (h *Handlers) deleteMessage(c *fiber.Ctx) error {
	if err := h.chat.Delete(c.Context(), Identity(c), c.Params("id")); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *Handlers) deleteConversation(c *fiber.Ctx) error {
	user1, user2 := c.Params("user1"), c.Params("user2")
	actor := Identity(c)
	// The wipe targets the caller's own pair; the other path parameter
	// only names the peer.
	var peer string
	switch actor {
	case user1:
		peer = user2
	case user2:
		peer = user1
	default:
		return h.fail(c, apperrors.ErrForbidden)
	}
	removed, err := h.chat.DeleteAll(c.Context(), actor, peer)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "removed": removed})
}

func (h *Handlers) uploadImage(c *fiber.Ctx) error {
	var req struct {
		Base64 string `json:"base64"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	uri, err := h.media.UploadImage(c.Context(), req.Base64)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"imageUrl": uri})
}

func (h *Handlers) uploadAudio(c *fiber.Ctx) error {
	var req struct {
		Base64    string `json:"base64"`
		Extension string `json:"extension"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	uri, err := h.media.UploadAudio(c.Context(), req.Base64, req.Extension)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"audioUrl": uri})
}

func (h *Handlers) uploadVideo(c *fiber.Ctx) error {
	var req struct {
		Base64    string `json:"base64"`
		Extension string `json:"extension"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	uri, err := h.media.UploadVideo(c.Context(), req.Base64, req.Extension)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"videoUrl": uri})
}

func (h *Handlers) fail(c *fiber.Ctx, err error) error {
	status := apperrors.HTTPStatus(err)
	if status >= fiber.StatusInternalServerError {
		h.log.Errorw("request failed", "path", c.Path(), "err", err)
	}
	return c.Status(status).JSON(fiber.Map{"error": apperrors.Code(err)})
}
