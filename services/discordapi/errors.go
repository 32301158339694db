package discordapi

import (
	"errors"
	"net/http"

	"github.com/bwmarrin/discordgo"
)

// Discord JSON error codes the bot reacts to
const (
	CodeUnknownMember      = 10007
	CodeUnknownUser        = 10013
	CodeUnknownBan         = 10026
	CodeMissingAccess      = 50001
	CodeMissingPermissions = 50013
)

// Error struct
type Error struct {
	Message    string `json:"message"`
	Err        error  `json:"error"`
	Code       int    `json:"code"`
	HTTPStatus int    `json:"http_status"`
}

// Error func
func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}

	return e.Err.Error()
}

// Unwrap func
func (e *Error) Unwrap() error {
	return e.Err
}

// IsUnknownTarget reports whether Discord could not find the member or user
func (e *Error) IsUnknownTarget() bool {
	return e.Code == CodeUnknownMember || e.Code == CodeUnknownUser
}

// IsForbidden reports whether the bot lacks a permission or channel access
func (e *Error) IsForbidden() bool {
	return e.Code == CodeMissingPermissions || e.Code == CodeMissingAccess || e.HTTPStatus == http.StatusForbidden
}

// IsNotFound reports whether Discord answered 404
func (e *Error) IsNotFound() bool {
	return e.HTTPStatus == http.StatusNotFound || e.IsUnknownTarget() || e.Code == CodeUnknownBan
}

// ParseDiscordError extracts Discord's error code from a REST error
func ParseDiscordError(err error) *Error {
	if err == nil {
		return nil
	}

	var de *Error
	if errors.As(err, &de) {
		return de
	}

	parsed := &Error{
		Code: -1,
		Err:  err,
	}

	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		parsed.Message = err.Error()
		return parsed
	}

	// RESTError.Error reads the response status and panics without one
	switch {
	case restErr.Message != nil:
		parsed.Code = restErr.Message.Code
		parsed.Message = restErr.Message.Message
	case restErr.Response != nil:
		parsed.Message = err.Error()
	default:
		parsed.Message = "Discord request failed"
	}

	if restErr.Response != nil {
		parsed.HTTPStatus = restErr.Response.StatusCode
	}

	return parsed
}
