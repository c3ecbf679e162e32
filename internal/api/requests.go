package api

import (
	"github.com/gookit/validate"
)

type openUserRequest struct {
	Owner string `json:"owner" validate:"required|maxLen:150"`
}

func (openUserRequest) Messages() map[string]string {
	return validate.MS{
		"required": "{field} is required",
		"maxLen":   "{field} is too long",
	}
}

type depositRequest struct {
	SubAccountCode string `json:"sub_account_code" validate:"required"`
	Amount         int64  `json:"amount" validate:"required|min:100|max:2000000000"`
}

func (depositRequest) Messages() map[string]string {
	return amountMessages()
}

type transferRequest struct {
	SourceCode      string `json:"source_code" validate:"required"`
	DestinationCode string `json:"destination_code" validate:"required"`
	Amount          int64  `json:"amount" validate:"required|min:100|max:2000000000"`
}

func (transferRequest) Messages() map[string]string {
	return amountMessages()
}

// Enabled is checked by the handler: a false value must not count as empty.
type setEnabledRequest struct {
	Enabled *bool `json:"enabled"`
}

func amountMessages() validate.MS {
	return validate.MS{
		"required": "{field} is required",
		"min":      "{field} must be at least 100",
		"max":      "{field} must be at most 2000000000",
	}
}

// jsonNames maps struct field names to their wire names, since validation
// errors may be keyed by either.
var jsonNames = map[string]string{
	"Owner":           "owner",
	"SubAccountCode":  "sub_account_code",
	"SourceCode":      "source_code",
	"DestinationCode": "destination_code",
	"Amount":          "amount",
	"Enabled":         "enabled",
}

// ruled is implemented by requests that carry validation rules.
type ruled interface {
	Messages() map[string]string
}

// validateRequest returns the first message per invalid field, keyed by
// wire name, or nil.
func validateRequest(payload any) map[string]string {
	if _, ok := payload.(ruled); !ok {
		return nil
	}

	v := validate.Struct(payload)
	if v.Validate() {
		return nil
	}

	fields := make(map[string]string)

	for field, errs := range v.Errors.All() {
		name, ok := jsonNames[field]
		if !ok {
			name = field
		}

		for _, msg := range errs {
			fields[name] = msg
			break
		}
	}

	return fields
}
