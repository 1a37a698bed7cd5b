// Package inbound applies session events published by the chat front end to
// a goSession engine.
//
// The front end publishes one JSON [Event] per message on a Redis pub/sub
// channel. A [Subscriber] consumes the channel sequentially, so events from a
// single publisher are applied in order.
package inbound
