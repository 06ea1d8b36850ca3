package session

import (
	"net/url"
	"strings"

	"classroom-recorder/internal/config"
	"classroom-recorder/internal/model"
)

// Query keys carried by the student link.
const (
	KeyPeriod  = "year"
	KeySection = "class"
	KeyLesson  = "lesson"
)

// Defaults are the teacher-configured values used when the link does not
// carry a field.
type Defaults struct {
	Period  string
	Section string
	Lesson  string
}

func DefaultsFromConfig(cfg *config.Config) Defaults {
	return Defaults{
		Period:  cfg.Recording.DefaultPeriod,
		Section: cfg.Recording.DefaultSection,
		Lesson:  cfg.Recording.DefaultLesson,
	}
}

type Resolver struct {
	defaults Defaults
}

func NewResolver(defaults Defaults) *Resolver {
	return &Resolver{defaults: defaults}
}

// Resolve picks the first value of each raw field, trims it and falls back to
// the configured default when the field is absent or blank.
func (r *Resolver) Resolve(rawPeriod, rawSection, rawLesson []string) (model.RecordingContext, error) {
	return model.NewRecordingContext(
		pick(rawPeriod, r.defaults.Period),
		pick(rawSection, r.defaults.Section),
		pick(rawLesson, r.defaults.Lesson),
	)
}

// FromQuery resolves the context from decoded link parameters.
func (r *Resolver) FromQuery(q url.Values) (model.RecordingContext, error) {
	return r.Resolve(q[KeyPeriod], q[KeySection], q[KeyLesson])
}

func pick(values []string, fallback string) string {
	if len(values) > 0 {
		if v := strings.TrimSpace(values[0]); v != "" {
			return v
		}
	}
	return strings.TrimSpace(fallback)
}
