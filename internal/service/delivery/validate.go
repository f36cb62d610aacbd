package delivery

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// MaxMediaBytes is the provider's media size ceiling.
const MaxMediaBytes = 16 << 20

// ErrValidation marks precondition failures surfaced before any persistence.
var ErrValidation = errors.New("validation error")

var validate = validator.New()

// TextRequest sends a free-form text message.
type TextRequest struct {
	ConversationID string `json:"conversation_id" validate:"required"`
	SenderID       string `json:"sender_id" validate:"required"`
	Text           string `json:"text" validate:"required"`
}

// MediaRequest sends media by provider-fetchable URL.
type MediaRequest struct {
	ConversationID string `json:"conversation_id" validate:"required"`
	SenderID       string `json:"sender_id" validate:"required"`
	Kind           string `json:"kind" validate:"required,oneof=image video audio document"`
	URL            string `json:"url" validate:"required,url"`
	Filename       string `json:"filename" validate:"omitempty"`
	Caption        string `json:"caption" validate:"omitempty"`
	SizeBytes      int64  `json:"size_bytes" validate:"omitempty,min=0"`
}

// TemplateRequest sends a pre-approved template. Every placeholder value
// must be resolved.
type TemplateRequest struct {
	ConversationID string   `json:"conversation_id" validate:"required"`
	SenderID       string   `json:"sender_id" validate:"required"`
	Name           string   `json:"name" validate:"required"`
	Language       string   `json:"language" validate:"required"`
	Parameters     []string `json:"parameters" validate:"dive,required"`
}

// InteractiveButton is a quick-reply option; titles are capped by the provider.
type InteractiveButton struct {
	ID    string `json:"id" validate:"required"`
	Title string `json:"title" validate:"required,max=20"`
}

// InteractiveRequest sends a button message.
type InteractiveRequest struct {
	ConversationID string              `json:"conversation_id" validate:"required"`
	SenderID       string              `json:"sender_id" validate:"required"`
	Body           string              `json:"body" validate:"required"`
	Buttons        []InteractiveButton `json:"buttons" validate:"required,min=1,max=3,dive"`
}

// ScheduleRequest stores a text message for later dispatch by the scheduler.
type ScheduleRequest struct {
	ConversationID string    `json:"conversation_id" validate:"required"`
	SenderID       string    `json:"sender_id" validate:"required"`
	Text           string    `json:"text" validate:"required"`
	ScheduledFor   time.Time `json:"scheduled_for" validate:"required"`
}

func checkRequest(req any) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %s", ErrValidation, err)
	}
	return nil
}

func (r MediaRequest) check() error {
	if err := checkRequest(r); err != nil {
		return err
	}
	if r.SizeBytes > MaxMediaBytes {
		return fmt.Errorf("%w: media exceeds %d bytes", ErrValidation, int64(MaxMediaBytes))
	}
	return nil
}

func (r ScheduleRequest) check(now time.Time) error {
	if err := checkRequest(r); err != nil {
		return err
	}
	if !r.ScheduledFor.After(now) {
		return fmt.Errorf("%w: scheduled_for must be in the future", ErrValidation)
	}
	return nil
}
