package activity

import (
	"errors"
	"strings"
)

// Category names understood by the default configuration.
const (
	CategoryLogin        = "login"
	CategorySmartLogin   = "smart_login"
	CategoryTicketAction = "ticket_action"
	CategoryConversation = "conversation"
	CategoryCommand      = "command"
	CategoryCallback     = "callback"
)

// DefaultWeight applies to categories missing from a [WeightTable].
const DefaultWeight = 0.3

// WeightTable maps an activity category to the weight it carries.
type WeightTable struct {
	Weights map[string]float64 `yaml:"weights" toml:"weights"`
	Default float64            `yaml:"default" toml:"default"`
}

// DefaultWeights returns the stock category weights.
func DefaultWeights() WeightTable {
	return WeightTable{
		Weights: map[string]float64{
			CategoryLogin:        1.0,
			CategorySmartLogin:   0.8,
			CategoryTicketAction: 0.8,
			CategoryConversation: 0.6,
			CategoryCommand:      0.5,
			CategoryCallback:     0.4,
		},
		Default: DefaultWeight,
	}
}

// Lookup returns the weight for the base category of key.
func (w WeightTable) Lookup(key string) float64 {
	if weight, ok := w.Weights[BaseCategory(key)]; ok {
		return weight
	}
	return w.Default
}

// Validate rejects negative weights.
func (w WeightTable) Validate() error {
	if w.Default < 0 {
		return errors.New("default weight must be >= 0")
	}
	for name, weight := range w.Weights {
		if weight < 0 {
			return errors.New("weight for " + name + " must be >= 0")
		}
	}
	return nil
}

// Clone returns a deep copy.
func (w WeightTable) Clone() WeightTable {
	out := WeightTable{Default: w.Default, Weights: make(map[string]float64, len(w.Weights))}
	for k, v := range w.Weights {
		out.Weights[k] = v
	}
	return out
}

// BaseCategory strips the namespace detail from an activity key:
// "command:/menu" becomes "command".
func BaseCategory(key string) string {
	base, _, _ := strings.Cut(key, ":")
	return base
}
