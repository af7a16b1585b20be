package handler

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"gerard.app/bot/internal/domain"
	"gerard.app/bot/internal/http/dto"
	"gerard.app/bot/internal/store"
)

const (
	maxSlotBodyBytes = 1 << 20
	textContentType  = "text/plain; charset=utf-8"
)

// FilesHandler is the admin surface over the slot store. Slot bodies are plain text.
type FilesHandler struct {
	slots store.SlotStore
}

func NewFilesHandler(slots store.SlotStore) *FilesHandler {
	return &FilesHandler{slots: slots}
}

func (h *FilesHandler) ListGroups(c *gin.Context) {
	ctx := c.Request.Context()

	groups, err := h.slots.ListGroups(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list groups", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list groups"})
		return
	}
	if groups == nil {
		groups = []string{}
	}

	c.JSON(http.StatusOK, dto.GroupListResponse{Groups: groups})
}

func (h *FilesHandler) ListSlots(c *gin.Context) {
	ctx := c.Request.Context()
	group := c.Param("group")

	if err := store.ValidateGroup(group); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}

	slots, err := h.slots.ListSlots(ctx, group)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list slots", "error", err, "group", group)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list slots"})
		return
	}

	names := make([]string, 0, len(slots))
	for _, s := range slots {
		names = append(names, string(s))
	}
	c.JSON(http.StatusOK, dto.SlotListResponse{Group: group, Slots: names})
}

func (h *FilesHandler) Read(c *gin.Context) {
	ctx := c.Request.Context()
	group, slot, ok := h.key(c)
	if !ok {
		return
	}

	text, err := h.slots.Read(ctx, group, slot)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.String(http.StatusNotFound, "No %s file for group %s", slot, group)
			return
		}
		slog.ErrorContext(ctx, "failed to read slot", "error", err, "group", group, "slot", slot)
		c.String(http.StatusInternalServerError, "Failed to read %s file", slot)
		return
	}

	c.Data(http.StatusOK, textContentType, []byte(text))
}

func (h *FilesHandler) Write(c *gin.Context) {
	ctx := c.Request.Context()
	group, slot, ok := h.key(c)
	if !ok {
		return
	}

	if !isPlainText(c.GetHeader("Content-Type")) {
		c.String(http.StatusBadRequest, "Content must be plain text")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxSlotBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.String(http.StatusRequestEntityTooLarge, "Content too large")
			return
		}
		c.String(http.StatusBadRequest, "Content must be plain text")
		return
	}

	if err := h.slots.Write(ctx, group, slot, string(body)); err != nil {
		slog.ErrorContext(ctx, "failed to write slot", "error", err, "group", group, "slot", slot)
		c.String(http.StatusInternalServerError, "Failed to write %s file", slot)
		return
	}

	slog.InfoContext(ctx, "slot updated by admin", "group", group, "slot", slot, "bytes", len(body))
	c.String(http.StatusOK, "%s file updated successfully", slot)
}

func (h *FilesHandler) key(c *gin.Context) (string, domain.Slot, bool) {
	slot, err := domain.ParseSlot(c.Param("slot"))
	if err != nil {
		c.String(http.StatusBadRequest, "Invalid file type. Allowed values: %s", allowedSlots())
		return "", "", false
	}

	group := c.Param("group")
	if err := store.ValidateGroup(group); err != nil {
		c.String(http.StatusBadRequest, "Invalid group id")
		return "", "", false
	}

	return group, slot, true
}

func allowedSlots() string {
	names := make([]string, 0, len(domain.Slots))
	for _, s := range domain.Slots {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}

// A missing content type is treated as plain text.
func isPlainText(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "text/plain"
}
