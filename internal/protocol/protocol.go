package protocol

import "encoding/json"

// Actions a consumer may issue.
const (
	ActionAddProvider    = "add-provider"
	ActionClearProviders = "clear-providers"
	ActionClearPrices    = "clear-prices"
)

// Response statuses.
const (
	StatusProcessed    = "processed"
	StatusNotProcessed = "not processed"
)

// Command is a parsed consumer command.
//
// Symbols distinguishes an absent field (nil) from an empty list: an
// add-provider without a symbols array is a format error, an empty
// array is a legitimate no-op request.
type Command struct {
	Action  string    `json:"action"`
	Host    string    `json:"host,omitempty"`
	Symbols *[]string `json:"symbols,omitempty"`
}

// Response is the structured reply sent for every consumer command.
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Processed returns a success response with an optional message.
func Processed(msg string) Response {
	return Response{Status: StatusProcessed, Message: msg}
}

// NotProcessed returns a failure response.
func NotProcessed(msg string) Response {
	return Response{Status: StatusNotProcessed, Message: msg}
}

// ParseCommand decodes a raw consumer message.
//
// The returned bool reports whether the payload was a structured
// command at all; action validation is left to the dispatcher so that
// unknown actions get their own error message.
func ParseCommand(data []byte) (Command, bool) {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return Command{}, false
	}
	return cmd, true
}
