package dashboard

import "github.com/Prajjwal2051/Viewly-sub002/core/video"

// Stats are the totals of a channel.
type Stats struct {
	TotalVideos      int64 `json:"totalVideos"`
	TotalViews       int64 `json:"totalViews"`
	TotalSubscribers int64 `json:"totalSubscribers"`
	TotalLikes       int64 `json:"totalLikes"` // on the channel's videos
	TotalTweets      int64 `json:"totalTweets"`
	TotalComments    int64 `json:"totalComments"` // on the channel's videos
}

// ChannelVideo is a video of the channel with its engagement counts.
type ChannelVideo struct {
	video.Video
	LikesCount    int64 `json:"likesCount"`
	CommentsCount int64 `json:"commentsCount"`
}
