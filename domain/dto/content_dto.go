package dto

type UpdatePostRequest struct {
	Caption string `json:"caption" binding:"required"`
	Status  string `json:"status" binding:"required"`
}

type BrandProfileRequest struct {
	Tone        string `json:"tone" binding:"required"`
	Voice       string `json:"voice" binding:"required"`
	Description string `json:"description" binding:"required"`
}

// PostingPreferenceRequest takes posting days as a list; they are stored comma separated.
type PostingPreferenceRequest struct {
	PostingDays      []string `json:"posting_days"`
	PostingTime      string   `json:"posting_time"`
	ManualReview     bool     `json:"manual_review"`
	NotificationDays string   `json:"notification_days"`
	Consent          bool     `json:"consent"`
}
