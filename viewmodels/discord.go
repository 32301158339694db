package viewmodels

// GetAllGuildsResponse struct
type GetAllGuildsResponse struct {
	Message string        `json:"message"`
	Count   int           `json:"count"`
	Members int           `json:"members"`
	Guilds  []*SmallGuild `json:"guilds"`
}

// SmallGuild struct
type SmallGuild struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	OwnerID     string `json:"owner_id"`
	MemberCount int    `json:"member_count"`
	JoinedAt    string `json:"joined_at,omitempty"`
}
