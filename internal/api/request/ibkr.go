package request

// SaveIbkrConfigRequest is the body for storing flex query credentials.
// The token is encrypted at rest; it is never returned by the read path.
type SaveIbkrConfigRequest struct {
	FlexToken   string `json:"flexToken"`
	FlexQueryID int    `json:"flexQueryId"`
	AutoSync    bool   `json:"autoSync"`
}
