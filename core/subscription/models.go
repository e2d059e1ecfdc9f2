package subscription

import (
	"time"

	"github.com/Prajjwal2051/Viewly-sub002/core"
)

// Subscription links a subscriber to a channel; a pair is unique.
type Subscription struct {
	ID           string    `json:"_id"`
	SubscriberID string    `json:"subscriber"`
	ChannelID    string    `json:"channel"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ChannelSummary is a user listed as a subscriber or as a subscribed channel.
type ChannelSummary struct {
	core.UserSummary
	SubscribersCount int64 `json:"subscribersCount"`
	// IsSubscribed is set on subscriber listings: whether the channel subscribes back.
	IsSubscribed bool `json:"isSubscribed"`
}

type ToggleResult struct {
	IsSubscribed bool `json:"isSubscribed"`
}
