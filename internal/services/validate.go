package services

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	apperr "github.com/yungbote/skilltrack-backend/internal/pkg/errors"
	"github.com/yungbote/skilltrack-backend/internal/types"
)

// technology names: alphanumeric plus space, dot, dash, underscore.
var technologyPattern = regexp.MustCompile(`^[a-zA-Z0-9 ._-]+$`)

const maxHintLength = 500

type CreateTopicInput struct {
	Title         string               `json:"title" validate:"required,max=200"`
	Technology    string               `json:"technology" validate:"required,max=100,techchars"`
	Description   string               `json:"description"`
	Status        *types.TopicStatus   `json:"status"`
	ParentID      *uuid.UUID           `json:"parent_id"`
	PracticeLinks []types.PracticeLink `json:"practice_links" validate:"omitempty,max=5,dive"`
}

// TopicPatch lists the mutable fields; nil means "not provided". The
// type system, not runtime field filtering, decides what update can
// touch. Status changes go through UpdateStatus.
type TopicPatch struct {
	Title         *string               `json:"title" validate:"omitempty,max=200"`
	Description   *string               `json:"description"`
	Technology    *string               `json:"technology" validate:"omitempty,max=100,techchars"`
	PracticeLinks *[]types.PracticeLink `json:"practice_links" validate:"omitempty,max=5,dive"`
}

func (p TopicPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Technology == nil && p.PracticeLinks == nil
}

type UpsertProfileInput struct {
	ExperienceLevel types.ExperienceLevel `json:"experience_level" validate:"required,oneof=beginner intermediate advanced expert"`
	YearsAway       int                   `json:"years_away" validate:"min=0,max=60"`
}

type GenerateInput struct {
	Technology string     `json:"technology" validate:"required,max=100,techchars"`
	Hint       string     `json:"hint" validate:"omitempty,max=500"`
	ParentID   *uuid.UUID `json:"parent_id"`
}

// InputValidator wraps validator/v10 and converts its output into the
// field-enumerating ValidationError of the error taxonomy. The
// description bound is a deployment knob, so it is checked here
// rather than in a static tag.
type InputValidator struct {
	validate *validator.Validate
	descMax  int
}

func NewInputValidator(descriptionMaxLen int) *InputValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("techchars", func(fl validator.FieldLevel) bool {
		return technologyPattern.MatchString(fl.Field().String())
	})
	if descriptionMaxLen <= 0 {
		descriptionMaxLen = 1000
	}
	return &InputValidator{validate: v, descMax: descriptionMaxLen}
}

func violationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be empty"
	case "max":
		return fmt.Sprintf("must be at most %s characters or items", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "url":
		return "must be a well-formed URL"
	case "techchars":
		return "contains invalid characters (allowed: letters, digits, space, '.', '-', '_')"
	default:
		return fmt.Sprintf("failed %q constraint", fe.Tag())
	}
}

// fieldPath strips the root struct name from the validator namespace,
// leaving e.g. "practice_links[0].url".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func (iv *InputValidator) collect(input any, extra ...apperr.FieldViolation) error {
	var violations []apperr.FieldViolation
	if err := iv.validate.Struct(input); err != nil {
		var ferrs validator.ValidationErrors
		if !asValidationErrors(err, &ferrs) {
			return apperr.Internal(err)
		}
		for _, fe := range ferrs {
			violations = append(violations, apperr.FieldViolation{
				Field:   fieldPath(fe),
				Message: violationMessage(fe),
			})
		}
	}
	violations = append(violations, extra...)
	if len(violations) > 0 {
		return apperr.NewValidation(violations...)
	}
	return nil
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	ve, ok := err.(validator.ValidationErrors)
	if ok {
		*target = ve
	}
	return ok
}

func (iv *InputValidator) descriptionViolation(desc string) *apperr.FieldViolation {
	if len(desc) > iv.descMax {
		return &apperr.FieldViolation{
			Field:   "description",
			Message: fmt.Sprintf("must be at most %d characters", iv.descMax),
		}
	}
	return nil
}

func (iv *InputValidator) ValidateCreate(input CreateTopicInput) error {
	var extra []apperr.FieldViolation
	if v := iv.descriptionViolation(input.Description); v != nil {
		extra = append(extra, *v)
	}
	if input.Status != nil && !input.Status.Valid() {
		extra = append(extra, apperr.FieldViolation{
			Field:   "status",
			Message: "must be one of: not_started in_progress completed",
		})
	}
	return iv.collect(input, extra...)
}

func (iv *InputValidator) ValidatePatch(patch TopicPatch) error {
	if patch.Empty() {
		return apperr.NewValidation(apperr.FieldViolation{
			Field:   "fields",
			Message: "at least one mutable field must be provided",
		})
	}
	var extra []apperr.FieldViolation
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		extra = append(extra, apperr.FieldViolation{Field: "title", Message: "must not be empty"})
	}
	if patch.Technology != nil && strings.TrimSpace(*patch.Technology) == "" {
		extra = append(extra, apperr.FieldViolation{Field: "technology", Message: "must not be empty"})
	}
	if patch.Description != nil {
		if v := iv.descriptionViolation(*patch.Description); v != nil {
			extra = append(extra, *v)
		}
	}
	return iv.collect(patch, extra...)
}

func (iv *InputValidator) ValidateStatus(status types.TopicStatus) error {
	if !status.Valid() {
		return apperr.NewValidation(apperr.FieldViolation{
			Field:   "status",
			Message: "must be one of: not_started in_progress completed",
		})
	}
	return nil
}

func (iv *InputValidator) ValidateProfile(input UpsertProfileInput) error {
	return iv.collect(input)
}

func (iv *InputValidator) ValidateGenerate(input GenerateInput) error {
	return iv.collect(input)
}

// ValidateCandidate applies the same per-field rules as ValidateCreate
// to a provider candidate. Violations here are the provider's fault,
// so the caller wraps them as a contract error, not a validation
// error.
func (iv *InputValidator) ValidateCandidate(c CandidateTopic) error {
	input := CreateTopicInput{
		Title:         c.Title,
		Technology:    "placeholder", // candidates inherit the requested technology
		Description:   c.Description,
		PracticeLinks: c.PracticeLinks,
	}
	return iv.ValidateCreate(input)
}
