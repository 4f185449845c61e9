package notification

import "github.com/go-playground/validator/v10"

// Direction is the text direction of a notification.
type Direction string

// Text directions.
const (
	DirAuto Direction = "auto"
	DirLTR  Direction = "ltr"
	DirRTL  Direction = "rtl"
)

// Options configures a notification. The zero value is valid. Options is a
// plain value: the With methods return modified copies, and the host only
// ever sees the copy passed to New or CreateIfSupported.
type Options struct {
	// Lang is a BCP 47 language tag.
	Lang string `json:"lang,omitempty" validate:"omitempty,bcp47_language_tag"`
	// Body is the text shown below the title.
	Body string `json:"body,omitempty"`
	// Tag identifies the notification; a new notification with the same tag
	// replaces the previous one on hosts that support it.
	Tag string `json:"tag,omitempty"`
	// Icon is the URL (browser) or file path (desktop) of the icon.
	Icon string `json:"icon,omitempty" validate:"max=2048"`
	// Image is the URL or file path of an image shown in the notification.
	Image string `json:"image,omitempty" validate:"max=2048"`
	// Dir is the text direction. Empty means auto.
	Dir Direction `json:"dir,omitempty" validate:"omitempty,oneof=auto ltr rtl"`
	// RequireInteraction keeps the notification until the user acts on it.
	RequireInteraction bool `json:"requireInteraction,omitempty"`
	// Silent suppresses sounds and vibration.
	Silent bool `json:"silent,omitempty"`
	// Data is an arbitrary payload; it must be JSON-encodable.
	Data any `json:"data,omitempty" validate:"-"`
}

// NewOptions returns empty options, as a starting point for the With methods.
func NewOptions() Options {
	return Options{}
}

// WithLang returns a copy with the language tag set.
func (o Options) WithLang(lang string) Options {
	o.Lang = lang
	return o
}

// WithBody returns a copy with the body set.
func (o Options) WithBody(body string) Options {
	o.Body = body
	return o
}

// WithTag returns a copy with the tag set.
func (o Options) WithTag(tag string) Options {
	o.Tag = tag
	return o
}

// WithIcon returns a copy with the icon set.
func (o Options) WithIcon(icon string) Options {
	o.Icon = icon
	return o
}

// WithImage returns a copy with the image set.
func (o Options) WithImage(image string) Options {
	o.Image = image
	return o
}

// WithDir returns a copy with the text direction set.
func (o Options) WithDir(dir Direction) Options {
	o.Dir = dir
	return o
}

// WithRequireInteraction returns a copy with RequireInteraction set.
func (o Options) WithRequireInteraction(require bool) Options {
	o.RequireInteraction = require
	return o
}

// WithSilent returns a copy with Silent set.
func (o Options) WithSilent(silent bool) Options {
	o.Silent = silent
	return o
}

// WithData returns a copy with the data payload set.
func (o Options) WithData(data any) Options {
	o.Data = data
	return o
}

var validate = validator.New()

// Validate checks the direction and language tag and the length of the
// icon and image references.
func (o Options) Validate() error {
	if err := validate.Struct(o); err != nil {
		return &OptionsError{Err: err}
	}
	return nil
}
