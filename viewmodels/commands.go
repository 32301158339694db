package viewmodels

// GetCommandsResponse struct
type GetCommandsResponse struct {
	Message  string         `json:"message"`
	Count    int            `json:"count"`
	Commands []*CommandInfo `json:"commands"`
}

// CommandInfo describes one registered slash command
type CommandInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Permission  string   `json:"permission,omitempty"`
	GuildOnly   bool     `json:"guild_only"`
	Cooldown    string   `json:"cooldown,omitempty"`
	Options     []string `json:"options,omitempty"`
}
