package domain

// ICEServer describes one STUN/TURN endpoint handed to clients at join
// time. This layer never performs connectivity itself; the list is
// static configuration relayed as-is.
type ICEServer struct {
	URLs       []string `json:"urls" mapstructure:"urls"`
	Username   string   `json:"username,omitempty" mapstructure:"username"`
	Credential string   `json:"credential,omitempty" mapstructure:"credential"`
}
