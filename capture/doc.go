// Package capture relays fixed-size PCM blocks from a capture source to an
// asynchronous transport using a double (ping-pong) buffer per channel.
//
// The capture source writes samples into a channel's Ring. When the first
// half is full it calls Relay.OnHalfComplete; when the second half is full
// it calls Relay.OnFullComplete and wraps around to the first half. Each
// notification hands the finished half to the channel's Transport without
// blocking, so capture continues into the other half while the previous one
// is sent.
//
// A half stays "in flight" from the hand-off until the transport reports
// completion. A notification for a half that is still in flight, or a
// transport that refuses a second transfer, is an overrun and is reported
// as an *OverrunError instead of silently re-sending overwritten data.
//
// Channels are resolved once, when the Relay is built. Notifications for
// disabled channels are dropped; notifications for unknown channels return
// a *ChannelError.
package capture
