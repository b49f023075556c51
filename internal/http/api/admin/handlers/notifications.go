package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gambitsports/gambit-admin/internal/http/api/response"
	"github.com/gambitsports/gambit-admin/internal/models"
	"gorm.io/gorm"
)

// NotificationHandler manages push notification endpoints.
type NotificationHandler struct {
	db *gorm.DB
}

// NewNotificationHandler constructs a NotificationHandler.
func NewNotificationHandler(db *gorm.DB) *NotificationHandler {
	return &NotificationHandler{db: db}
}

// serializeNotification renders a notification for API responses.
func serializeNotification(n *models.Notification) gin.H {
	return gin.H{
		"id":              n.ID,
		"title":           n.Title,
		"message":         n.Message,
		"destination_url": n.DestinationURL,
		"image_url":       n.ImageURL,
		"icon_url":        n.IconURL,
		"target_type":     n.TargetType,
		"target_user_id":  n.TargetUserID,
		"sent":            n.Sent,
		"created_at":      n.CreatedAt,
	}
}

// List returns notifications, newest first, paginated.
func (h *NotificationHandler) List(c *gin.Context) {
	page, perPage, offset := pagination(c)
	q := h.db.WithContext(c.Request.Context()).Model(&models.Notification{})

	if sentRaw := strings.TrimSpace(c.Query("sent")); sentRaw != "" {
		switch sentRaw {
		case "true":
			q = q.Where("sent = ?", true)
		case "false":
			q = q.Where("sent = ?", false)
		default:
			response.BadRequest(c, "Invalid sent filter")
			return
		}
	}

	var total int64
	if errCount := q.Count(&total).Error; errCount != nil {
		response.Internal(c, "Failed to list notifications")
		return
	}
	var rows []models.Notification
	if errFind := q.Order("created_at DESC").
		Limit(perPage).Offset(offset).Find(&rows).Error; errFind != nil {
		response.Internal(c, "Failed to list notifications")
		return
	}

	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		out = append(out, serializeNotification(&rows[i]))
	}
	response.OK(c, gin.H{"notifications": out, "pagination": paginationMeta(page, perPage, total)})
}

// Get returns a notification by ID.
func (h *NotificationHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid notification id")
		return
	}
	var notification models.Notification
	errFind := h.db.WithContext(c.Request.Context()).First(&notification, id).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			response.NotFound(c, "Notification not found")
			return
		}
		response.Internal(c, "Failed to load notification")
		return
	}
	response.OK(c, serializeNotification(&notification))
}

// notificationRequest defines the request body for notification writes.
type notificationRequest struct {
	Title          string  `json:"title"`
	Message        string  `json:"message"`
	DestinationURL string  `json:"destination_url"`
	ImageURL       string  `json:"image_url"`
	IconURL        string  `json:"icon_url"`
	TargetType     string  `json:"target_type"`
	TargetUserID   *uint64 `json:"target_user_id"`
}

// Create creates a new notification draft.
func (h *NotificationHandler) Create(c *gin.Context) {
	var body notificationRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	title := strings.TrimSpace(body.Title)
	message := strings.TrimSpace(body.Message)
	if title == "" || message == "" {
		response.BadRequest(c, "Title and message are required")
		return
	}

	targetType := models.NotificationTargetAll
	if trimmed := strings.TrimSpace(body.TargetType); trimmed != "" {
		targetType = trimmed
	}
	switch targetType {
	case models.NotificationTargetAll:
	case models.NotificationTargetUser:
		if body.TargetUserID == nil || *body.TargetUserID == 0 {
			response.BadRequest(c, "target_user_id is required for user-targeted notifications")
			return
		}
		var user models.User
		if errFind := h.db.WithContext(c.Request.Context()).
			First(&user, *body.TargetUserID).Error; errFind != nil {
			response.NotFound(c, "Target user not found")
			return
		}
	default:
		response.BadRequest(c, "target_type must be all or user")
		return
	}

	notification := models.Notification{
		Title:          title,
		Message:        message,
		DestinationURL: strings.TrimSpace(body.DestinationURL),
		ImageURL:       strings.TrimSpace(body.ImageURL),
		IconURL:        strings.TrimSpace(body.IconURL),
		TargetType:     targetType,
		TargetUserID:   body.TargetUserID,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&notification).Error; errCreate != nil {
		response.Internal(c, "Failed to create notification")
		return
	}
	response.Created(c, serializeNotification(&notification))
}

// Update modifies an unsent notification.
func (h *NotificationHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid notification id")
		return
	}
	var body notificationRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	ctx := c.Request.Context()
	var notification models.Notification
	errFind := h.db.WithContext(ctx).First(&notification, id).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			response.NotFound(c, "Notification not found")
			return
		}
		response.Internal(c, "Failed to load notification")
		return
	}
	if notification.Sent {
		response.Conflict(c, "Cannot modify a notification that has been sent")
		return
	}

	updates := map[string]any{"updated_at": time.Now().UTC()}
	if title := strings.TrimSpace(body.Title); title != "" {
		updates["title"] = title
	}
	if message := strings.TrimSpace(body.Message); message != "" {
		updates["message"] = message
	}
	if destination := strings.TrimSpace(body.DestinationURL); destination != "" {
		updates["destination_url"] = destination
	}
	if image := strings.TrimSpace(body.ImageURL); image != "" {
		updates["image_url"] = image
	}
	if icon := strings.TrimSpace(body.IconURL); icon != "" {
		updates["icon_url"] = icon
	}

	if errUpdate := h.db.WithContext(ctx).Model(&notification).Updates(updates).Error; errUpdate != nil {
		response.Internal(c, "Failed to update notification")
		return
	}
	if errReload := h.db.WithContext(ctx).First(&notification, id).Error; errReload != nil {
		response.Internal(c, "Failed to load notification")
		return
	}
	response.OK(c, serializeNotification(&notification))
}

// Delete removes a notification.
func (h *NotificationHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid notification id")
		return
	}
	res := h.db.WithContext(c.Request.Context()).Delete(&models.Notification{}, id)
	if res.Error != nil {
		response.Internal(c, "Failed to delete notification")
		return
	}
	if res.RowsAffected == 0 {
		response.NotFound(c, "Notification not found")
		return
	}
	response.Message(c, "Notification deleted successfully")
}

// Send marks a notification as dispatched.
func (h *NotificationHandler) Send(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid notification id")
		return
	}
	ctx := c.Request.Context()
	var notification models.Notification
	errFind := h.db.WithContext(ctx).First(&notification, id).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			response.NotFound(c, "Notification not found")
			return
		}
		response.Internal(c, "Failed to load notification")
		return
	}
	if notification.Sent {
		response.Conflict(c, "Notification has already been sent")
		return
	}
	if errUpdate := h.db.WithContext(ctx).Model(&notification).
		Updates(map[string]any{"sent": true, "updated_at": time.Now().UTC()}).Error; errUpdate != nil {
		response.Internal(c, "Failed to send notification")
		return
	}
	response.Message(c, "Notification sent successfully")
}
