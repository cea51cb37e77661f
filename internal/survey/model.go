package survey

import (
	"time"

	"github.com/shopspring/decimal"
)

// SurveyStatus represents the lifecycle status of a survey
type SurveyStatus string

const (
	SurveyStatusDraft    SurveyStatus = "draft"
	SurveyStatusActive   SurveyStatus = "active"
	SurveyStatusStopped  SurveyStatus = "stopped"
	SurveyStatusFinished SurveyStatus = "finished"
)

// QuestionType classifies how a question's answers are aggregated
type QuestionType string

const (
	QuestionTypeText         QuestionType = "text"
	QuestionTypeSingleChoice QuestionType = "single_choice"
	QuestionTypeMultiChoice  QuestionType = "multi_choice"
	QuestionTypeDropdown     QuestionType = "dropdown"
	QuestionTypeRating       QuestionType = "rating"
	QuestionTypeDateTime     QuestionType = "date_time"
)

// Survey carries the fields the payment and analytics cores consume.
// Cost is the resolved price-per-response, nil until calculated.
type Survey struct {
	ID              int64            `json:"id"`
	Name            string           `json:"name"`
	CreatorID       int64            `json:"creator_id"`
	MaxParticipants *int             `json:"max_participants,omitempty"`
	Cost            *decimal.Decimal `json:"cost,omitempty"`
	Status          SurveyStatus     `json:"status"`
	DateFinished    *time.Time       `json:"date_finished,omitempty"`
}

// Question is a single survey question
type Question struct {
	ID   int64        `json:"id"`
	Text string       `json:"text"`
	Type QuestionType `json:"type"`
}

// SurveyQuestion links a question into a survey at a given position
type SurveyQuestion struct {
	ID       int64    `json:"id"`
	SurveyID int64    `json:"survey_id"`
	Order    int      `json:"order"`
	Question Question `json:"question"`
}

// CompletionStatus is the per-(survey, respondent) participation state
type CompletionStatus string

const (
	CompletionInProgress CompletionStatus = "in_progress"
	CompletionCompleted  CompletionStatus = "completed"
)

// Completion is one respondent's participation record for a survey
type Completion struct {
	SurveyID     int64            `json:"survey_id"`
	RespondentID int64            `json:"respondent_id"`
	Status       CompletionStatus `json:"status"`
	Score        *float64         `json:"score,omitempty"`
	UpdatedAt    time.Time        `json:"updated_at"`

	// Populated via JOIN
	RespondentEmail string `json:"respondent_email,omitempty"`
}
