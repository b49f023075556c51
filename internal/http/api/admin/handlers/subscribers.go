package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	dbutil "github.com/gambitsports/gambit-admin/internal/db"
	"github.com/gambitsports/gambit-admin/internal/http/api/response"
	"github.com/gambitsports/gambit-admin/internal/models"
	"gorm.io/gorm"
)

// SubscriberHandler manages subscriber endpoints.
type SubscriberHandler struct {
	db *gorm.DB
}

// NewSubscriberHandler constructs a SubscriberHandler.
func NewSubscriberHandler(db *gorm.DB) *SubscriberHandler {
	return &SubscriberHandler{db: db}
}

// serializeSubscriber renders a subscriber for API responses.
func serializeSubscriber(sub *models.Subscriber) gin.H {
	return gin.H{
		"id":                sub.ID,
		"email":             sub.Email,
		"name":              sub.Name,
		"subscription_type": sub.SubscriptionType,
		"start_date":        sub.StartDate,
		"end_date":          sub.EndDate,
		"status":            sub.Status,
		"created_at":        sub.CreatedAt,
	}
}

var validSubscriberStatuses = map[string]struct{}{
	models.SubscriberStatusActive:    {},
	models.SubscriberStatusExpired:   {},
	models.SubscriberStatusCancelled: {},
}

// List returns subscribers with type/status/search filters, paginated.
func (h *SubscriberHandler) List(c *gin.Context) {
	page, perPage, offset := pagination(c)
	q := h.db.WithContext(c.Request.Context()).Model(&models.Subscriber{})

	if subType := strings.TrimSpace(c.Query("subscription_type")); subType != "" {
		if subType != models.SubscriptionMonthly && subType != models.SubscriptionYearly {
			response.BadRequest(c, "Invalid subscription_type filter")
			return
		}
		q = q.Where("subscription_type = ?", subType)
	}
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		if _, ok := validSubscriberStatuses[status]; !ok {
			response.BadRequest(c, "Invalid status filter")
			return
		}
		q = q.Where("status = ?", status)
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		pattern := dbutil.NormalizeLikePattern(h.db, "%"+search+"%")
		q = q.Where(
			dbutil.CaseInsensitiveLikeExpr(h.db, "email")+" OR "+
				dbutil.CaseInsensitiveLikeExpr(h.db, "name"),
			pattern, pattern,
		)
	}

	var total int64
	if errCount := q.Count(&total).Error; errCount != nil {
		response.Internal(c, "Failed to list subscribers")
		return
	}
	var rows []models.Subscriber
	if errFind := q.Order("start_date DESC").
		Limit(perPage).Offset(offset).Find(&rows).Error; errFind != nil {
		response.Internal(c, "Failed to list subscribers")
		return
	}

	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		out = append(out, serializeSubscriber(&rows[i]))
	}
	response.OK(c, gin.H{"subscribers": out, "pagination": paginationMeta(page, perPage, total)})
}

// Get returns a subscriber by ID.
func (h *SubscriberHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid subscriber id")
		return
	}
	var sub models.Subscriber
	errFind := h.db.WithContext(c.Request.Context()).First(&sub, id).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			response.NotFound(c, "Subscriber not found")
			return
		}
		response.Internal(c, "Failed to load subscriber")
		return
	}
	response.OK(c, serializeSubscriber(&sub))
}

// updateSubscriberStatusRequest defines the request body for status updates.
type updateSubscriberStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus changes a subscriber's status.
func (h *SubscriberHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid subscriber id")
		return
	}
	var body updateSubscriberStatusRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	status := strings.TrimSpace(body.Status)
	if _, valid := validSubscriberStatuses[status]; !valid {
		response.BadRequest(c, "Status must be one of active, expired, cancelled")
		return
	}

	res := h.db.WithContext(c.Request.Context()).Model(&models.Subscriber{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		response.Internal(c, "Failed to update subscriber")
		return
	}
	if res.RowsAffected == 0 {
		response.NotFound(c, "Subscriber not found")
		return
	}
	response.OK(c, gin.H{"id": id, "status": status})
}
