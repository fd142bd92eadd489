package command

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"sync"

	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"

	"f3-catalog/backend/internal/platform/domainerr"
)

// Envelope is the wire form of a command.
type Envelope struct {
	Kind    Kind            `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

var registry = map[Kind]func() Command{
	KindCreateSeries:               func() Command { return &CreateSeries{} },
	KindUpdateSeries:               func() Command { return &UpdateSeries{} },
	KindDeactivateSeries:           func() Command { return &DeactivateSeries{} },
	KindCreateInstance:             func() Command { return &CreateInstance{} },
	KindUpdateInstance:             func() Command { return &UpdateInstance{} },
	KindDeactivateInstance:         func() Command { return &DeactivateInstance{} },
	KindUpdateRegionProfile:        func() Command { return &UpdateRegionProfile{} },
	KindAddEventTag:                func() Command { return &AddEventTag{} },
	KindUpdateEventTag:             func() Command { return &UpdateEventTag{} },
	KindSoftDeleteEventTag:         func() Command { return &SoftDeleteEventTag{} },
	KindCloneGlobalEventTag:        func() Command { return &CloneGlobalEventTag{} },
	KindAddEventType:               func() Command { return &AddEventType{} },
	KindUpdateEventType:            func() Command { return &UpdateEventType{} },
	KindSoftDeleteEventType:        func() Command { return &SoftDeleteEventType{} },
	KindCloneGlobalEventType:       func() Command { return &CloneGlobalEventType{} },
	KindAddLocation:                func() Command { return &AddLocation{} },
	KindUpdateLocation:             func() Command { return &UpdateLocation{} },
	KindSoftDeleteLocation:         func() Command { return &SoftDeleteLocation{} },
	KindAddPosition:                func() Command { return &AddPosition{} },
	KindUpdatePosition:             func() Command { return &UpdatePosition{} },
	KindSoftDeletePosition:         func() Command { return &SoftDeletePosition{} },
	KindReplacePositionAssignments: func() Command { return &ReplacePositionAssignments{} },
	KindAssignUserToPosition:       func() Command { return &AssignUserToPosition{} },
	KindUnassignUserFromPosition:   func() Command { return &UnassignUserFromPosition{} },
	KindAssignAdmin:                func() Command { return &AssignAdmin{} },
	KindRevokeAdmin:                func() Command { return &RevokeAdmin{} },
	KindReplaceAdmins:              func() Command { return &ReplaceAdmins{} },
}

// Kinds returns every registered command kind.
func Kinds() []Kind {
	out := make([]Kind, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	return out
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Decode parses and validates the envelope's payload. Unknown kinds, unknown payload fields and
// failed struct rules are ValidationErrors. The returned command is a pointer to its struct.
func Decode(env Envelope) (Command, error) {
	factory, ok := registry[env.Kind]
	if !ok {
		return nil, domainerr.Invalid("kind", "unknown command %q", env.Kind)
	}
	cmd := factory()
	if len(bytes.TrimSpace(env.Payload)) == 0 {
		return nil, domainerr.Invalid("payload", "is required")
	}
	dec := json.NewDecoder(bytes.NewReader(env.Payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cmd); err != nil {
		return nil, domainerr.Invalid("payload", "%v", err)
	}
	if err := Validate(cmd); err != nil {
		return nil, err
	}
	return cmd, nil
}

// Validate checks the struct rules of cmd and reports the first violation as a ValidationError.
func Validate(cmd Command) error {
	err := structValidator().Struct(cmd)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return domainerr.Invalid(fe.Field(), "failed %q rule", ruleOf(fe))
	}
	return errors.Wrap(err, "validate command")
}

func ruleOf(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fe.Tag() + "=" + fe.Param()
}
