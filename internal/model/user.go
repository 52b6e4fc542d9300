package model

// UserInfo is the snapshot of a user carried inside social entities. The
// engine never owns user accounts; it only embeds what the remote directory
// returned at the time the entity was created.
type UserInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}
