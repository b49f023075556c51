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

// ContentHandler manages FAQ and static content page endpoints.
type ContentHandler struct {
	db *gorm.DB
}

// NewContentHandler constructs a ContentHandler.
func NewContentHandler(db *gorm.DB) *ContentHandler {
	return &ContentHandler{db: db}
}

// serializeFAQ renders a FAQ entry for API responses.
func serializeFAQ(faq *models.FAQ) gin.H {
	return gin.H{
		"id":           faq.ID,
		"question":     faq.Question,
		"answer":       faq.Answer,
		"order":        faq.Order,
		"is_published": faq.IsPublished,
		"created_at":   faq.CreatedAt,
	}
}

// serializePage renders a content page for API responses.
func serializePage(page *models.ContentPage) gin.H {
	return gin.H{
		"id":           page.ID,
		"page_type":    page.PageType,
		"title":        page.Title,
		"content":      page.Content,
		"is_published": page.IsPublished,
		"updated_at":   page.UpdatedAt,
	}
}

// ListFAQs returns all FAQ entries in display order.
func (h *ContentHandler) ListFAQs(c *gin.Context) {
	var faqs []models.FAQ
	errFind := h.db.WithContext(c.Request.Context()).
		Order("display_order, id").Find(&faqs).Error
	if errFind != nil {
		response.Internal(c, "Failed to list FAQs")
		return
	}
	out := make([]gin.H, 0, len(faqs))
	for i := range faqs {
		out = append(out, serializeFAQ(&faqs[i]))
	}
	response.OK(c, gin.H{"faqs": out})
}

// GetFAQ returns a FAQ entry by ID.
func (h *ContentHandler) GetFAQ(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid FAQ id")
		return
	}
	var faq models.FAQ
	errFind := h.db.WithContext(c.Request.Context()).First(&faq, id).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			response.NotFound(c, "FAQ not found")
			return
		}
		response.Internal(c, "Failed to load FAQ")
		return
	}
	response.OK(c, serializeFAQ(&faq))
}

// faqRequest defines the request body for FAQ writes.
type faqRequest struct {
	Question    string `json:"question"`
	Answer      string `json:"answer"`
	Order       *int   `json:"order"`
	IsPublished *bool  `json:"is_published"`
}

// CreateFAQ creates a new FAQ entry.
func (h *ContentHandler) CreateFAQ(c *gin.Context) {
	var body faqRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	question := strings.TrimSpace(body.Question)
	answer := strings.TrimSpace(body.Answer)
	if question == "" || answer == "" {
		response.BadRequest(c, "Question and answer are required")
		return
	}

	faq := models.FAQ{
		Question:    question,
		Answer:      answer,
		IsPublished: true,
	}
	if body.Order != nil {
		faq.Order = *body.Order
	}
	if body.IsPublished != nil {
		faq.IsPublished = *body.IsPublished
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&faq).Error; errCreate != nil {
		response.Internal(c, "Failed to create FAQ")
		return
	}
	response.Created(c, serializeFAQ(&faq))
}

// UpdateFAQ modifies a FAQ entry.
func (h *ContentHandler) UpdateFAQ(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid FAQ id")
		return
	}
	var body faqRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	updates := map[string]any{"updated_at": time.Now().UTC()}
	if question := strings.TrimSpace(body.Question); question != "" {
		updates["question"] = question
	}
	if answer := strings.TrimSpace(body.Answer); answer != "" {
		updates["answer"] = answer
	}
	if body.Order != nil {
		updates["display_order"] = *body.Order
	}
	if body.IsPublished != nil {
		updates["is_published"] = *body.IsPublished
	}

	res := h.db.WithContext(c.Request.Context()).Model(&models.FAQ{}).
		Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		response.Internal(c, "Failed to update FAQ")
		return
	}
	if res.RowsAffected == 0 {
		response.NotFound(c, "FAQ not found")
		return
	}

	var faq models.FAQ
	if errReload := h.db.WithContext(c.Request.Context()).First(&faq, id).Error; errReload != nil {
		response.Internal(c, "Failed to load FAQ")
		return
	}
	response.OK(c, serializeFAQ(&faq))
}

// DeleteFAQ removes a FAQ entry.
func (h *ContentHandler) DeleteFAQ(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid FAQ id")
		return
	}
	res := h.db.WithContext(c.Request.Context()).Delete(&models.FAQ{}, id)
	if res.Error != nil {
		response.Internal(c, "Failed to delete FAQ")
		return
	}
	if res.RowsAffected == 0 {
		response.NotFound(c, "FAQ not found")
		return
	}
	response.Message(c, "FAQ deleted successfully")
}

var validPageTypes = map[string]struct{}{
	models.PageTypePrivacyPolicy:   {},
	models.PageTypeTermsConditions: {},
}

// GetPage returns a content page by type.
func (h *ContentHandler) GetPage(c *gin.Context) {
	pageType := strings.TrimSpace(c.Param("page_type"))
	if _, valid := validPageTypes[pageType]; !valid {
		response.BadRequest(c, "Page type must be privacy_policy or terms_conditions")
		return
	}
	var page models.ContentPage
	errFind := h.db.WithContext(c.Request.Context()).
		Where("page_type = ?", pageType).First(&page).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			response.NotFound(c, "Page not found")
			return
		}
		response.Internal(c, "Failed to load page")
		return
	}
	response.OK(c, serializePage(&page))
}

// pageRequest defines the request body for content page upserts.
type pageRequest struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	IsPublished *bool  `json:"is_published"`
}

// UpsertPage creates or replaces the content page for a page type.
func (h *ContentHandler) UpsertPage(c *gin.Context) {
	pageType := strings.TrimSpace(c.Param("page_type"))
	if _, valid := validPageTypes[pageType]; !valid {
		response.BadRequest(c, "Page type must be privacy_policy or terms_conditions")
		return
	}
	var body pageRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	title := strings.TrimSpace(body.Title)
	content := strings.TrimSpace(body.Content)
	if title == "" || content == "" {
		response.BadRequest(c, "Title and content are required")
		return
	}

	ctx := c.Request.Context()
	var page models.ContentPage
	errFind := h.db.WithContext(ctx).Where("page_type = ?", pageType).First(&page).Error
	switch {
	case errFind == nil:
		updates := map[string]any{
			"title":      title,
			"content":    content,
			"updated_at": time.Now().UTC(),
		}
		if body.IsPublished != nil {
			updates["is_published"] = *body.IsPublished
		}
		if errUpdate := h.db.WithContext(ctx).Model(&page).Updates(updates).Error; errUpdate != nil {
			response.Internal(c, "Failed to update page")
			return
		}
		if errReload := h.db.WithContext(ctx).First(&page, page.ID).Error; errReload != nil {
			response.Internal(c, "Failed to load page")
			return
		}
		response.OK(c, serializePage(&page))
	case errors.Is(errFind, gorm.ErrRecordNotFound):
		page = models.ContentPage{
			PageType:    pageType,
			Title:       title,
			Content:     content,
			IsPublished: true,
		}
		if body.IsPublished != nil {
			page.IsPublished = *body.IsPublished
		}
		if errCreate := h.db.WithContext(ctx).Create(&page).Error; errCreate != nil {
			response.Internal(c, "Failed to create page")
			return
		}
		response.Created(c, serializePage(&page))
	default:
		response.Internal(c, "Failed to load page")
	}
}
