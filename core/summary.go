package core

// UserSummary is the public projection of a user embedded in joined listings (owners, senders, subscribers).
type UserSummary struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Avatar   string `json:"avatar"`
}
