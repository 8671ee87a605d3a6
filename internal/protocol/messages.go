// Package protocol defines the observer wire messages. The feed is
// read-only: observers subscribe and receive one STEP message per
// simulation step.
package protocol

import "encoding/json"

const Version = "1.0"

// Message types.
const (
	TypeSubscribe = "SUBSCRIBE"
	TypeHello     = "HELLO"
	TypeStep      = "STEP"
)

// BaseMessage lets us route unknown JSON messages by type.
type BaseMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}

type SubscribeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
}

type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Name            string `json:"name"`
	Tick            uint64 `json:"tick"`
	Width           int    `json:"width"`
	Height          int    `json:"height"`
	AgentCount      int    `json:"agent_count"`
}

type StepMsg struct {
	Type   string `json:"type"`
	Tick   uint64 `json:"tick"`
	Digest string `json:"digest"`

	Trades      int `json:"trades"`
	Collections int `json:"collections"`
	Pairings    int `json:"pairings"`

	Agents    []AgentSummary    `json:"agents"`
	Resources []ResourceSummary `json:"resources"`
}

type AgentSummary struct {
	ID        int    `json:"id"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Mode      string `json:"mode"`
	CarryQ1   int    `json:"carry_q1"`
	CarryQ2   int    `json:"carry_q2"`
	HomeQ1    int    `json:"home_q1"`
	HomeQ2    int    `json:"home_q2"`
	PartnerID int    `json:"partner_id,omitempty"`
}

type ResourceSummary struct {
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Good string `json:"good"`
}
