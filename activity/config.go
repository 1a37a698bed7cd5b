package activity

import (
	"errors"
	"time"
)

// TrackerConfig controls category gating and spam suppression.
type TrackerConfig struct {
	// Window is the sliding spam window.
	Window time.Duration `yaml:"window" toml:"window"`
	// MaxRepeats is how many identical keys are allowed inside Window.
	MaxRepeats int `yaml:"max_repeats" toml:"max_repeats"`
	// HistoryCap bounds per-user history; oldest entries are dropped first.
	HistoryCap int `yaml:"history_cap" toml:"history_cap"`

	Categories       []string `yaml:"categories" toml:"categories"`
	Commands         []string `yaml:"commands" toml:"commands"`
	PassiveCommands  []string `yaml:"passive_commands" toml:"passive_commands"`
	CallbackPrefixes []string `yaml:"callback_prefixes" toml:"callback_prefixes"`
	Conversations    []string `yaml:"conversations" toml:"conversations"`
}

// DefaultTrackerConfig returns the stock gating sets of the ticket bot.
func DefaultTrackerConfig() TrackerConfig {
	return TrackerConfig{
		Window:     30 * time.Second,
		MaxRepeats: 3,
		HistoryCap: 50,
		Categories: []string{
			CategoryLogin,
			CategorySmartLogin,
			CategoryTicketAction,
			CategoryConversation,
			CategoryCommand,
			CategoryCallback,
		},
		Commands: []string{
			"/menu", "/new_ticket", "/my_tickets", "/help", "/status", "/me", "/logout",
		},
		PassiveCommands: []string{"/start"},
		CallbackPrefixes: []string{
			"menu_", "ticket_", "confirm_", "cancel_", "destination_", "priority_", "back_to_menu",
		},
		Conversations: []string{
			"ticket_creation", "view_tickets", "ticket_details", "authentication", "help_system",
		},
	}
}

// Validate checks the numeric limits.
func (c TrackerConfig) Validate() error {
	if c.Window <= 0 {
		return errors.New("activity window must be > 0")
	}
	if c.MaxRepeats <= 0 {
		return errors.New("max repeats must be > 0")
	}
	if c.HistoryCap < c.MaxRepeats {
		return errors.New("history cap must be >= max repeats")
	}
	if len(c.Categories) == 0 {
		return errors.New("at least one activity category must be enabled")
	}
	return nil
}

// Clone returns a deep copy.
func (c TrackerConfig) Clone() TrackerConfig {
	out := c
	out.Categories = append([]string(nil), c.Categories...)
	out.Commands = append([]string(nil), c.Commands...)
	out.PassiveCommands = append([]string(nil), c.PassiveCommands...)
	out.CallbackPrefixes = append([]string(nil), c.CallbackPrefixes...)
	out.Conversations = append([]string(nil), c.Conversations...)
	return out
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
