package notice

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"CollegeNoticeBoard/internal/core"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// NoticeInput is what an author submits when creating or editing a notice.
type NoticeInput struct {
	Title          string     `json:"title" validate:"required,min=5"`
	Description    string     `json:"description" validate:"required,min=20"`
	Category       string     `json:"category" validate:"required"`
	CustomCategory string     `json:"custom_category" validate:"required_if=Category other"`
	Department     string     `json:"department"`
	VisibleTo      []string   `json:"visible_to" validate:"required,min=1,dive,oneof=student teacher admin all"`
	TargetUIDs     []string   `json:"target_uids"`
	IsPinned       bool       `json:"is_pinned"`
	ExpiryDate     *time.Time `json:"expiry_date"`
}

var (
	requiredText = "this field is required"
	visibleText  = "select at least one visibility option"
	audienceText = "must be one of student, teacher, admin or all"
)

// Validator checks NoticeInput and reports failures as core.ValidationError.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

func NewValidator() *Validator {
	v := &Validator{validate: validator.New()}

	_en := en.New()
	uni := ut.New(_en, _en)
	v.translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(v.validate, v.translator)

	// Use JSON tag names for errors instead of Go struct names.
	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v.registerTranslation("required", requiredText)
	v.registerTranslation("required_if", requiredText)
	v.registerTranslation("oneof", audienceText)
	return v
}

func (v *Validator) registerTranslation(tag, text string) {
	_ = v.validate.RegisterTranslation(
		tag, v.translator,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Check normalises in and validates it.
func (v *Validator) Check(in *NoticeInput) error {
	in.CustomCategory = strings.TrimSpace(in.CustomCategory)
	in.Category = strings.TrimSpace(in.Category)

	err := v.validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make([]core.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		msg := fe.Translate(v.translator)
		if fe.Field() == "visible_to" && (fe.Tag() == "min" || fe.Tag() == "required") {
			msg = visibleText
		}
		fields = append(fields, core.FieldError{Field: fe.Field(), Error: msg})
	}
	return core.NewValidationError(errors.New("invalid notice"), fields...)
}

// category resolves the "other" escape hatch into the custom category.
func (in NoticeInput) category() Category {
	if in.Category == CategoryOther {
		return Category(in.CustomCategory)
	}
	return Category(in.Category)
}

func (in NoticeInput) department() string {
	if in.Department == "none" {
		return ""
	}
	return in.Department
}
