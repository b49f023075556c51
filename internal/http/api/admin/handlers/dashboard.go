package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gambitsports/gambit-admin/internal/http/api/response"
	"github.com/gambitsports/gambit-admin/internal/models"
	"gorm.io/gorm"
)

// DashboardHandler serves aggregate statistics for the admin dashboard.
type DashboardHandler struct {
	db *gorm.DB
}

// NewDashboardHandler constructs a DashboardHandler.
func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{db: db}
}

// Stats returns user and subscriber aggregates plus recent signups.
func (h *DashboardHandler) Stats(c *gin.Context) {
	ctx := c.Request.Context()

	var totalUsers, activeUsers, totalSubscribers, activeSubscribers int64
	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&totalUsers, h.db.WithContext(ctx).Model(&models.User{})},
		{&activeUsers, h.db.WithContext(ctx).Model(&models.User{}).
			Where("status = ?", models.UserStatusActive)},
		{&totalSubscribers, h.db.WithContext(ctx).Model(&models.Subscriber{})},
		{&activeSubscribers, h.db.WithContext(ctx).Model(&models.Subscriber{}).
			Where("status = ?", models.SubscriberStatusActive)},
	}
	for _, count := range counts {
		if errCount := count.query.Count(count.dest).Error; errCount != nil {
			response.Internal(c, "Failed to load dashboard stats")
			return
		}
	}

	var monthlySubscribers, yearlySubscribers int64
	if errCount := h.db.WithContext(ctx).Model(&models.Subscriber{}).
		Where("subscription_type = ?", models.SubscriptionMonthly).
		Count(&monthlySubscribers).Error; errCount != nil {
		response.Internal(c, "Failed to load dashboard stats")
		return
	}
	if errCount := h.db.WithContext(ctx).Model(&models.Subscriber{}).
		Where("subscription_type = ?", models.SubscriptionYearly).
		Count(&yearlySubscribers).Error; errCount != nil {
		response.Internal(c, "Failed to load dashboard stats")
		return
	}

	var recentSignups int64
	weekAgo := time.Now().UTC().AddDate(0, 0, -7)
	if errCount := h.db.WithContext(ctx).Model(&models.User{}).
		Where("registration_date >= ?", weekAgo).
		Count(&recentSignups).Error; errCount != nil {
		response.Internal(c, "Failed to load dashboard stats")
		return
	}

	var recentUsers []models.User
	if errFind := h.db.WithContext(ctx).
		Order("registration_date DESC").Limit(5).Find(&recentUsers).Error; errFind != nil {
		response.Internal(c, "Failed to load dashboard stats")
		return
	}
	recent := make([]gin.H, 0, len(recentUsers))
	for i := range recentUsers {
		recent = append(recent, gin.H{
			"id":                recentUsers[i].ID,
			"username":          recentUsers[i].Username,
			"email":             recentUsers[i].Email,
			"status":            recentUsers[i].Status,
			"registration_date": recentUsers[i].RegistrationDate,
		})
	}

	response.OK(c, gin.H{
		"users": gin.H{
			"total":               totalUsers,
			"active":              activeUsers,
			"recent_signups_week": recentSignups,
		},
		"subscribers": gin.H{
			"total":   totalSubscribers,
			"active":  activeSubscribers,
			"monthly": monthlySubscribers,
			"yearly":  yearlySubscribers,
		},
		"recent_users": recent,
	})
}
