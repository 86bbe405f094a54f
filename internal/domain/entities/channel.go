package entities

import "fmt"

// Channel is the rail the payer picks before an intent is created.
//
// Once an intent exists the channel is locked for the lifetime of the payment
// session; changing it requires cancelling the session.
type Channel string

const (
	ChannelOrangeMoney Channel = "mobile-money-orange"
	ChannelMTNMoMo     Channel = "mobile-money-mtn"
	ChannelCard        Channel = "card"
)

// channelRoutes is the total channel -> gateway routing tag table.
var channelRoutes = map[Channel]struct {
	tag      string
	dialCode string
}{
	ChannelOrangeMoney: {tag: "cm.orange", dialCode: "#150*50#"},
	ChannelMTNMoMo:     {tag: "cm.mtn", dialCode: "*126#"},
	ChannelCard:        {tag: "card"},
}

var validChannels = []Channel{
	ChannelOrangeMoney,
	ChannelMTNMoMo,
	ChannelCard,
}

// Channels lists every channel offered to payers.
func Channels() []Channel {
	out := make([]Channel, len(validChannels))
	copy(out, validChannels)
	return out
}

func (c Channel) String() string {
	return string(c)
}

// IsValid reports whether the value is a known Channel.
func (c Channel) IsValid() bool {
	_, ok := channelRoutes[c]
	return ok
}

// RequiresPhone reports whether a customer phone must accompany the intent.
func (c Channel) RequiresPhone() bool {
	return c == ChannelOrangeMoney || c == ChannelMTNMoMo
}

// GatewayTag returns the gateway routing tag (cm.orange, cm.mtn, card).
func (c Channel) GatewayTag() string {
	return channelRoutes[c].tag
}

// DialCode returns the operator USSD code used to approve a pending push.
func (c Channel) DialCode() string {
	return channelRoutes[c].dialCode
}

// ParseChannel converts raw input into a Channel.
func ParseChannel(value string) (Channel, error) {
	for _, candidate := range validChannels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid channel %q", value)
}

// ChannelFromGatewayTag resolves a routing tag back to its channel.
func ChannelFromGatewayTag(tag string) (Channel, bool) {
	for ch, route := range channelRoutes {
		if route.tag == tag {
			return ch, true
		}
	}
	return "", false
}
