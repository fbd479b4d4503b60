package model

import (
	"fmt"
	"strings"
	"time"
)

const (
	PostStatusPending  = "pending"
	PostStatusApproved = "approved"
)

// SocialPost is a generated post scheduled on the seller's calendar.
type SocialPost struct {
	ID              int64  `json:"id"`
	UserID          int64  `json:"user_id"`
	ProductID       int64  `json:"product_id"`
	ProductName     string `json:"product_name"`
	Caption         string `json:"caption"`
	Image           string `json:"image"`
	DayOf           string `json:"dayof"`
	Date            string `json:"date"`
	Status          string `json:"status"`
	PublishedStatus int    `json:"published_status"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

// ScheduledOn parses the post date, either a plain day or an RFC 3339 timestamp.
func (p SocialPost) ScheduledOn() (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, p.Date); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", p.Date)
}

// Published reports whether the post already went out.
func (p SocialPost) Published() bool { return p.PublishedStatus == 1 }

// PostEdit is a caption or approval change to one post.
type PostEdit struct {
	ID      int64
	Caption string
	Status  string
}

func (e PostEdit) Validate() error {
	if strings.TrimSpace(e.Caption) == "" {
		return fmt.Errorf("%w: caption is empty", ErrInvalidContent)
	}
	switch e.Status {
	case PostStatusPending, PostStatusApproved:
		return nil
	}
	return fmt.Errorf("%w: status %q", ErrInvalidContent, e.Status)
}

var (
	BrandTones  = []string{"Friendly", "Luxurious", "Playful", "Bold", "Minimalist", "Professional", "Fun", "Premium", "Inspirational"}
	BrandVoices = []string{"Confident", "Conversational", "Energetic", "Formal", "Casual", "Humorous", "Warm", "Sophisticated", "Youthful"}
	Weekdays    = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
)

func oneOf(v string, options []string) bool {
	for _, o := range options {
		if o == v {
			return true
		}
	}
	return false
}

// BrandProfile steers the tone of generated captions.
type BrandProfile struct {
	UserID      int64  `json:"user_id"`
	Tone        string `json:"tone"`
	Voice       string `json:"voice"`
	Description string `json:"description"`
}

func (b BrandProfile) Validate() error {
	if !oneOf(b.Tone, BrandTones) {
		return fmt.Errorf("%w: tone %q", ErrInvalidContent, b.Tone)
	}
	if !oneOf(b.Voice, BrandVoices) {
		return fmt.Errorf("%w: voice %q", ErrInvalidContent, b.Voice)
	}
	if strings.TrimSpace(b.Description) == "" {
		return fmt.Errorf("%w: description is empty", ErrInvalidContent)
	}
	return nil
}

const DefaultPostingTime = "10:00:00"

// PostingPreference is when and how generated posts go out.
// PostingDays and NotificationDays are comma separated weekday names.
type PostingPreference struct {
	UserID           int64  `json:"user_id"`
	PostingDays      string `json:"posting_days"`
	PostingTime      string `json:"posting_time"`
	ManualReview     int    `json:"manual_review"`
	NotificationDays string `json:"notification_days"`
	Consent          int    `json:"consent"`
}

// DefaultPostingPreference is what a seller without saved preferences starts from.
func DefaultPostingPreference(userID int64) PostingPreference {
	return PostingPreference{UserID: userID, PostingTime: DefaultPostingTime}
}

// Days splits PostingDays, dropping blanks.
func (p PostingPreference) Days() []string {
	var days []string
	for _, d := range strings.Split(p.PostingDays, ",") {
		if d = strings.TrimSpace(d); d != "" {
			days = append(days, d)
		}
	}
	return days
}

// Empty reports a row the backend returned without any saved field.
func (p PostingPreference) Empty() bool {
	return p.PostingDays == "" && p.PostingTime == "" && p.ManualReview == 0 && p.NotificationDays == "" && p.Consent == 0
}

// Validate checks the preference against the number of days the plan allows.
func (p PostingPreference) Validate(maxDays int) error {
	days := p.Days()
	if len(days) == 0 {
		return fmt.Errorf("%w: select at least one posting day", ErrInvalidContent)
	}
	if len(days) > maxDays {
		return fmt.Errorf("%w: plan allows %d posting days", ErrInvalidContent, maxDays)
	}
	seen := make(map[string]bool, len(days))
	for _, d := range days {
		if !oneOf(d, Weekdays) || seen[d] {
			return fmt.Errorf("%w: posting day %q", ErrInvalidContent, d)
		}
		seen[d] = true
	}
	t, err := time.Parse("15:04:05", p.PostingTime)
	if err != nil || t.Second() != 0 || t.Minute()%30 != 0 {
		return fmt.Errorf("%w: posting time %q", ErrInvalidContent, p.PostingTime)
	}
	if p.ManualReview == 1 && !oneOf(p.NotificationDays, Weekdays) {
		return fmt.Errorf("%w: manual review needs a notification day", ErrInvalidContent)
	}
	if p.Consent != 1 {
		return fmt.Errorf("%w: consent to generated content is required", ErrInvalidContent)
	}
	return nil
}
