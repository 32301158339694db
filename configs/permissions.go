package configs

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// PermissionNames maps config permission names to Discord permission bits
var PermissionNames = map[string]int64{
	"administrator":        discordgo.PermissionAdministrator,
	"kick_members":         discordgo.PermissionKickMembers,
	"ban_members":          discordgo.PermissionBanMembers,
	"moderate_members":     discordgo.PermissionModerateMembers,
	"manage_guild":         discordgo.PermissionManageServer,
	"manage_messages":      discordgo.PermissionManageMessages,
	"manage_roles":         discordgo.PermissionManageRoles,
	"view_channel":         discordgo.PermissionViewChannel,
	"send_messages":        discordgo.PermissionSendMessages,
	"embed_links":          discordgo.PermissionEmbedLinks,
	"attach_files":         discordgo.PermissionAttachFiles,
	"add_reactions":        discordgo.PermissionAddReactions,
	"read_message_history": discordgo.PermissionReadMessageHistory,
	"use_external_emojis":  discordgo.PermissionUseExternalEmojis,
	"connect":              discordgo.PermissionVoiceConnect,
	"speak":                discordgo.PermissionVoiceSpeak,
}

// PermissionLabels are the names Discord shows users for each permission
var PermissionLabels = map[string]string{
	"administrator":        "Administrator",
	"kick_members":         "Kick Members",
	"ban_members":          "Ban Members",
	"moderate_members":     "Timeout Members",
	"manage_guild":         "Manage Server",
	"manage_messages":      "Manage Messages",
	"manage_roles":         "Manage Roles",
	"view_channel":         "View Channel",
	"send_messages":        "Send Messages",
	"embed_links":          "Embed Links",
	"attach_files":         "Attach Files",
	"add_reactions":        "Add Reactions",
	"read_message_history": "Read Message History",
	"use_external_emojis":  "Use External Emojis",
	"connect":              "Connect",
	"speak":                "Speak",
}

var optionTypes = map[string]discordgo.ApplicationCommandOptionType{
	"string":  discordgo.ApplicationCommandOptionString,
	"integer": discordgo.ApplicationCommandOptionInteger,
	"boolean": discordgo.ApplicationCommandOptionBoolean,
	"user":    discordgo.ApplicationCommandOptionUser,
	"channel": discordgo.ApplicationCommandOptionChannel,
	"role":    discordgo.ApplicationCommandOptionRole,
	"number":  discordgo.ApplicationCommandOptionNumber,
}

// PermissionBits ORs together the bits of the named permissions
func PermissionBits(names []string) (int64, error) {
	var bits int64
	for _, name := range names {
		bit, ok := PermissionNames[name]
		if !ok {
			return 0, fmt.Errorf("unknown permission: %q, known permissions: %s", name, strings.Join(KnownPermissions(), ", "))
		}
		bits |= bit
	}

	return bits, nil
}

// PermissionLabel returns the user-facing name of a permission
func PermissionLabel(name string) string {
	if label, ok := PermissionLabels[name]; ok {
		return label
	}

	return name
}

// OptionType converts a config option type to its Discord option type
func OptionType(name string) (discordgo.ApplicationCommandOptionType, bool) {
	t, ok := optionTypes[name]
	return t, ok
}

// KnownPermissions lists every permission name accepted in config files
func KnownPermissions() []string {
	names := make([]string, 0, len(PermissionNames))
	for name := range PermissionNames {
		names = append(names, name)
	}

	sort.Strings(names)
	return names
}
