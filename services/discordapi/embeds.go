package discordapi

import (
	"time"

	"github.com/bwmarrin/discordgo"
)

// EmbeddableParams struct
type EmbeddableParams struct {
	Title        string
	Description  string
	Color        int
	TitleURL     string
	Footer       string
	ThumbnailURL string
	ImageURL     string
}

// EmbeddableField interface
type EmbeddableField interface {
	ConvertToEmbedField() (*discordgo.MessageEmbedField, *Error)
}

// Field is a ready-made embed field
type Field struct {
	Name   string
	Value  string
	Inline bool
}

// ConvertToEmbedField for Field
func (f Field) ConvertToEmbedField() (*discordgo.MessageEmbedField, *Error) {
	return &discordgo.MessageEmbedField{
		Name:   Truncate(f.Name, MaxEmbedFieldNameCharCount),
		Value:  Truncate(f.Value, MaxEmbedFieldCharCount),
		Inline: f.Inline,
	}, nil
}

// MaxEmbedFields const
const MaxEmbedFields = 23 // actually 25

// MaxEmbedCharCount const
const MaxEmbedCharCount = 5600 // actually 6000

// MaxEmbedFieldCharCount const
const MaxEmbedFieldCharCount = 950 // actually 1024

// MaxEmbedFieldNameCharCount const
const MaxEmbedFieldNameCharCount = 250 // actually 256

// MaxEmbedsPerMessage const
const MaxEmbedsPerMessage = 10

// CreateEmbeds spreads fields over as many embeds as the limits require
func CreateEmbeds(embedParams EmbeddableParams, embedableFields []EmbeddableField) []*discordgo.MessageEmbed {
	var embeds []*discordgo.MessageEmbed

	newEmbed := func() *discordgo.MessageEmbed {
		embed := &discordgo.MessageEmbed{
			Footer: &discordgo.MessageEmbedFooter{
				Text: "Executed",
			},
			Color:       embedParams.Color,
			Description: embedParams.Description,
			Fields:      []*discordgo.MessageEmbedField{},
			Timestamp:   time.Now().Format(time.RFC3339),
			Title:       embedParams.Title,
			URL:         embedParams.TitleURL,
		}

		if embedParams.Footer != "" {
			embed.Footer.Text = embedParams.Footer
		}

		if embedParams.ThumbnailURL != "" {
			embed.Thumbnail = &discordgo.MessageEmbedThumbnail{
				URL: embedParams.ThumbnailURL,
			}
		}

		if embedParams.ImageURL != "" {
			embed.Image = &discordgo.MessageEmbedImage{
				URL: embedParams.ImageURL,
			}
		}

		return embed
	}

	embed := newEmbed()
	embedCharCount := len(embed.Title) + len(embed.Description)
	for i := 0; i < len(embedableFields); i++ {
		field, err := embedableFields[i].ConvertToEmbedField()
		if err != nil || field == nil {
			continue
		}

		if len(field.Name)+len(field.Value)+embedCharCount >= MaxEmbedCharCount || len(embed.Fields) >= MaxEmbedFields {
			embeds = append(embeds, embed)
			embed = newEmbed()
			embedCharCount = len(embed.Title) + len(embed.Description)
		}

		embedCharCount += len(field.Name) + len(field.Value)
		embed.Fields = append(embed.Fields, field)
	}

	if len(embed.Fields) != 0 || len(embeds) == 0 {
		embeds = append(embeds, embed)
	}

	return embeds
}

// LinesToFields packs lines into as few fields as the per-field limit allows
func LinesToFields(name string, lines []string) []EmbeddableField {
	var fields []EmbeddableField

	value := ""
	for _, line := range lines {
		if value != "" && len(value)+len(line)+1 > MaxEmbedFieldCharCount {
			fields = append(fields, Field{Name: name, Value: value})
			value = ""
		}

		if value != "" {
			value += "\n"
		}
		value += Truncate(line, MaxEmbedFieldCharCount)
	}

	if value != "" {
		fields = append(fields, Field{Name: name, Value: value})
	}

	return fields
}

// Truncate shortens s to at most max bytes without splitting a rune
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}

	cut := max - 3
	for cut > 0 && (s[cut]&0xC0) == 0x80 {
		cut--
	}

	return s[:cut] + "..."
}
