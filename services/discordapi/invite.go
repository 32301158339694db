package discordapi

import (
	"net/url"
	"strconv"
)

// InviteURL builds the OAuth2 link that adds the bot with its slash commands
func InviteURL(appID string, permissions int64) string {
	q := url.Values{}
	q.Set("client_id", appID)
	q.Set("permissions", strconv.FormatInt(permissions, 10))
	q.Set("scope", "bot applications.commands")

	return "https://discord.com/oauth2/authorize?" + q.Encode()
}
