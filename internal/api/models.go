package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/lexiquest/review-api/internal/domain"
	"github.com/lexiquest/review-api/internal/service/review_session"
	"github.com/lexiquest/review-api/internal/session"
)

// StartSessionRequest is the optional body of POST /api/sessions.
type StartSessionRequest struct {
	// Limit caps the queue. Zero uses the server default.
	Limit int `json:"limit" validate:"min=0,max=500"`
}

// GradeRequest is the body of POST /api/sessions/{id}/grade. Exactly one
// of Grade or Code is given; Code carries the legacy numeric grades.
// Grade labels are case-insensitive and checked by review_session.GradeInput.
type GradeRequest struct {
	ItemID string `json:"item_id" validate:"required,uuid"`
	Grade  string `json:"grade"`
	Code   int    `json:"code"    validate:"omitempty,oneof=1 2 4 5"`
}

// PostponeRequest is the body of POST /api/items/{id}/postpone.
type PostponeRequest struct {
	Days int `json:"days" validate:"required,min=1,max=365"`
}

// ScheduleStateResponse is a learner's schedule for one item.
type ScheduleStateResponse struct {
	ItemID       uuid.UUID  `json:"item_id"`
	Ease         float64    `json:"ease"`
	IntervalDays int        `json:"interval_days"`
	Repetitions  int        `json:"repetitions"`
	ReviewCount  int        `json:"review_count"`
	LastReviewed *time.Time `json:"last_reviewed,omitempty"`
	NextReview   time.Time  `json:"next_review"`
}

// ItemResponse is a vocabulary item as shown to the learner. Meaning and
// Example are withheld while a session item is unrevealed.
type ItemResponse struct {
	ID       uuid.UUID `json:"id"`
	Headword string    `json:"headword"`
	Meaning  string    `json:"meaning,omitempty"`
	Example  string    `json:"example,omitempty"`
	Category string    `json:"category,omitempty"`
}

// DueItemResponse is one entry of GET /api/items/due.
type DueItemResponse struct {
	Item     ItemResponse          `json:"item"`
	Schedule ScheduleStateResponse `json:"schedule"`
}

// SummaryResponse is the session summary handed to rewards.
type SummaryResponse struct {
	Count              int            `json:"count"`
	AverageGradeWeight float64        `json:"average_grade_weight"`
	PerfectCount       int            `json:"perfect_count"`
	GradeCounts        map[string]int `json:"grade_counts"`
}

// SessionResponse is the state of a review session.
type SessionResponse struct {
	ID          uuid.UUID        `json:"id"`
	Phase       string           `json:"phase"`
	Position    int              `json:"position"`
	Total       int              `json:"total"`
	Remaining   int              `json:"remaining"`
	Graded      int              `json:"graded"`
	Current     *ItemResponse    `json:"current,omitempty"`
	StartedAt   time.Time        `json:"started_at"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
	Exited      bool             `json:"exited"`
	Summary     *SummaryResponse `json:"summary,omitempty"`
}

// OutcomeResponse is the result of grading one item.
type OutcomeResponse struct {
	ItemID   uuid.UUID             `json:"item_id"`
	Grade    string                `json:"grade"`
	Schedule ScheduleStateResponse `json:"schedule"`
	GradedAt time.Time             `json:"graded_at"`
}

// GradeResponse is the body returned by POST /api/sessions/{id}/grade.
type GradeResponse struct {
	Outcome OutcomeResponse `json:"outcome"`
	Session SessionResponse `json:"session"`
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func scheduleToResponse(state domain.ScheduleState) ScheduleStateResponse {
	return ScheduleStateResponse{
		ItemID:       state.ItemID,
		Ease:         state.Ease,
		IntervalDays: state.IntervalDays,
		Repetitions:  state.Repetitions,
		ReviewCount:  state.ReviewCount,
		LastReviewed: timePtr(state.LastReviewed),
		NextReview:   state.NextReview,
	}
}

func itemToResponse(item domain.VocabularyItem, revealed bool) ItemResponse {
	resp := ItemResponse{
		ID:       item.ID,
		Headword: item.Headword,
		Category: item.Category,
	}
	if revealed {
		resp.Meaning = item.Meaning
		resp.Example = item.Example
	}
	return resp
}

func dueItemsToResponse(items []domain.DueItem) []DueItemResponse {
	resp := make([]DueItemResponse, len(items))
	for i, due := range items {
		resp[i] = DueItemResponse{
			Item:     itemToResponse(due.Item, true),
			Schedule: scheduleToResponse(due.State),
		}
	}
	return resp
}

func summaryToResponse(summary session.Summary) SummaryResponse {
	counts := make(map[string]int, len(domain.AllReviewGrades()))
	for _, grade := range domain.AllReviewGrades() {
		counts[grade.String()] = summary.GradeCounts[grade]
	}
	return SummaryResponse{
		Count:              summary.Count,
		AverageGradeWeight: summary.AverageGradeWeight,
		PerfectCount:       summary.PerfectCount,
		GradeCounts:        counts,
	}
}

func sessionToResponse(view review_session.View) SessionResponse {
	resp := SessionResponse{
		ID:          view.ID,
		Phase:       view.Phase.String(),
		Position:    view.Position,
		Total:       view.Total,
		Remaining:   view.Remaining,
		Graded:      view.Graded,
		StartedAt:   view.StartedAt,
		CompletedAt: timePtr(view.CompletedAt),
		Exited:      view.Exited,
	}
	if view.Current != nil {
		item := itemToResponse(view.Current.Item, view.Phase == session.PhaseRevealed)
		resp.Current = &item
	}
	if view.Summary != nil {
		summary := summaryToResponse(*view.Summary)
		resp.Summary = &summary
	}
	return resp
}

func outcomeToResponse(outcome session.Outcome) OutcomeResponse {
	return OutcomeResponse{
		ItemID:   outcome.ItemID,
		Grade:    outcome.Grade.String(),
		Schedule: scheduleToResponse(outcome.State),
		GradedAt: outcome.GradedAt,
	}
}
