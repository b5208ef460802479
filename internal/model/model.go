// Package model holds the records shared by the store, the generators and
// the HTTP layer.
package model

import (
	"fmt"
	"time"
)

// LocalID marks a profile that was never persisted. It is not addressable:
// feedback against it is never written to the store.
const LocalID = "local"

// Form defaults carried over from the profile page.
const (
	DefaultMotivationalStyle = "encouraging"
	DefaultLength            = "medium"
	DefaultPlanDuration      = 8
	DefaultTrainingHours     = 0
	DefaultRestDays          = 1
)

// User is the session principal. The identity provider owns the account;
// the store keeps a mirror in the users collection.
type User struct {
	ID        string    `firestore:"-" json:"id"`
	Email     string    `firestore:"email" json:"email"`
	Name      string    `firestore:"name" json:"name"`
	CreatedAt time.Time `firestore:"created_at,serverTimestamp" json:"created_at"`
}

// Preferences controls the tone and size of the generated prompt.
type Preferences struct {
	MotivationalStyle string `firestore:"motivational_style" json:"motivational_style"`
	Length            string `firestore:"length" json:"length"`
}

// Plan describes the training block the prompt should cover.
type Plan struct {
	DurationWeeks int `firestore:"duration_weeks" json:"duration_weeks"`
	TrainingHours int `firestore:"training_hours" json:"training_hours"`
	RestDays      int `firestore:"rest_days" json:"rest_days"`
}

// DefaultPlan returns the plan used when the form leaves fields blank.
func DefaultPlan() Plan {
	return Plan{
		DurationWeeks: DefaultPlanDuration,
		TrainingHours: DefaultTrainingHours,
		RestDays:      DefaultRestDays,
	}
}

// UserProfile is one submission of the profile form.
type UserProfile struct {
	ID          string      `firestore:"-" json:"id"`
	Sport       string      `firestore:"sport" json:"sport"`
	Level       string      `firestore:"level" json:"level"`
	Goals       []string    `firestore:"goals" json:"goals"`
	Preferences Preferences `firestore:"preferences" json:"preferences"`
	Plan        Plan        `firestore:"plan" json:"plan"`
	CreatedAt   time.Time   `firestore:"created_at" json:"created_at"`
	UpdatedAt   time.Time   `firestore:"updated_at,serverTimestamp" json:"updated_at"`
	UserID      string      `firestore:"user_id" json:"user_id"`
	Feedback    string      `firestore:"feedback,omitempty" json:"feedback,omitempty"`
}

// Validate checks the fields every persisted profile must carry.
func (p UserProfile) Validate() error {
	switch {
	case p.Sport == "":
		return &ValidationError{Field: "sport", Message: "Please fill all required fields"}
	case p.Level == "":
		return &ValidationError{Field: "level", Message: "Please fill all required fields"}
	case p.UserID == "":
		return &ValidationError{Field: "user_id", Message: "profile has no owner"}
	}
	return nil
}

// ChatExchange is a question and its answer. It is never stored.
type ChatExchange struct {
	Question string `json:"question"`
	Response string `json:"response"`
}

// ValidationError is a user-correctable input problem.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
