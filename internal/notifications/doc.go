// Package notifications delivers crack run events to ntfy.
//
// The ntfy implementation posts plain-text messages to the topic configured in
// config.toml and degrades to a no-op when no topic is set. Each event kind
// can be toggled individually. Transient delivery failures are retried with
// backoff; 4xx responses are not retried. Payloads never carry the recovered
// password.
package notifications
