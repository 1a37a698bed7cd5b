// Package activity turns raw user interactions into session renewals.
//
// A [Tracker] gates interactions by category, drops repeated keys inside a
// sliding window, looks up the category weight in a [WeightTable], and only
// then forwards the activity to its [Recorder] (normally a *session.Store).
package activity
