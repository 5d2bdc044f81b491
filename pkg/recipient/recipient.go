// Package recipient resolves where a notification is delivered.
package recipient

import (
	"encoding/json"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/kart-io/reportnotify/pkg/errors"
)

// Type identifies the channel a recipient is delivered through.
type Type string

const (
	TypeWebhook Type = "Webhook"
	TypeEmail   Type = "Email"
	TypeSlack   Type = "Slack"
)

// Recipient is a configured notification recipient. ConfigJSON is the raw,
// channel-specific configuration stored with the recipient.
type Recipient struct {
	Type       Type   `json:"type"`
	ConfigJSON string `json:"recipient_config_json"`
}

// New creates a recipient of the given type.
func New(typ Type, configJSON string) Recipient {
	return Recipient{Type: typ, ConfigJSON: configJSON}
}

// Webhook returns a webhook recipient delivering to target.
func Webhook(target string) Recipient {
	data, _ := json.Marshal(targetConfig{Target: target})
	return New(TypeWebhook, string(data))
}

type targetConfig struct {
	Target string `json:"target" validate:"required"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Target parses ConfigJSON and returns its "target" value. It fails with a
// configuration error when the JSON is malformed or the target is missing,
// empty, or not a string.
func (r Recipient) Target() (string, error) {
	var cfg targetConfig
	if err := json.Unmarshal([]byte(r.ConfigJSON), &cfg); err != nil {
		return "", errors.Wrapf(err, errors.ErrInvalidRecipientConfig,
			"invalid recipient config: %v", err)
	}

	cfg.Target = strings.TrimSpace(cfg.Target)
	if err := validate.Struct(cfg); err != nil {
		return "", errors.New(errors.ErrMissingTarget,
			"recipient config has no target").WithCause(err)
	}

	return cfg.Target, nil
}
