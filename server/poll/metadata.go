package poll

// Metadata stores personalized metadata of a poll.
type Metadata struct {
	PollID        string   `json:"poll_id"`
	UserID        string   `json:"user_id"`
	VotedOptions  []string `json:"voted_options"`   // VotedOptions is the list of option IDs the user with "UserID" voted for.
	CanManagePoll bool     `json:"can_manage_poll"` // CanManagePoll is true if the user with "UserID" created the poll.
	SettingCustom bool     `json:"setting_custom"`
	Closed        bool     `json:"closed"`
}

// ToMap returns a Metadata as a map
func (m *Metadata) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"poll_id":         m.PollID,
		"user_id":         m.UserID,
		"voted_options":   m.VotedOptions,
		"can_manage_poll": m.CanManagePoll,
		"setting_custom":  m.SettingCustom,
		"closed":          m.Closed,
	}
}
