package model

// Frame is the wire envelope for every duplex message: a JSON object with a
// "type" discriminator. Inbound frames are decoded into RawFrame first,
// then into the typed payload matching Type.
type RawFrame struct {
	Type string `json:"type"`
}

// Shopper inbound frame types.
const (
	TypeJoinQueue            = "join_queue"
	TypeLeaveQueue           = "leave_queue"
	TypeSDPAnswer            = "sdp_answer"
	TypeICECandidate         = "ice_candidate"
	TypeEndCall              = "end_call"
	TypeCollaborationResp    = "collaboration_response"
)

// Representative inbound frame types.
const (
	TypeConnect              = "connect"
	TypeClaimCall            = "claim_call"
	TypeReleaseCall          = "release_call"
	TypeRequestCollaboration = "request_collaboration"
)

// Outbound frame types, shared or per-role.
const (
	TypeConnected             = "connected"
	TypeQueueJoined           = "queue_joined"
	TypeQueueLeft             = "queue_left"
	TypeCallAnswered          = "call_answered"
	TypeCallReleased          = "call_released"
	TypeCallClaimed           = "call_claimed"
	TypeCallEnded             = "call_ended"
	TypeCallEndedByShopper    = "call_ended_by_shopper"
	TypeCollaborationRequest  = "collaboration_request"
	TypeCollaborationStatus   = "collaboration_status"
	TypeQueueUpdate           = "queue_update"
	TypeError                 = "error"
)

// --- Shopper -> server payloads ---

type JoinQueueFrame struct {
	Type              string            `json:"type"`
	ShopperID         string            `json:"shopperId"`
	MediaCapabilities MediaCapabilities `json:"mediaCapabilities"`
}

type LeaveQueueFrame struct {
	Type      string `json:"type"`
	ShopperID string `json:"shopperId"`
}

type SDPAnswerFrame struct {
	Type      string `json:"type"`
	ShopperID string `json:"shopperId"`
	SDPAnswer any    `json:"sdpAnswer"`
}

type ICECandidateInFrame struct {
	Type         string `json:"type"`
	ShopperID    string `json:"shopperId"`
	SalesRepID   string `json:"salesRepId"`
	ICECandidate any    `json:"iceCandidate"`
}

type EndCallFrame struct {
	Type      string `json:"type"`
	ShopperID string `json:"shopperId"`
}

type CollaborationResponseFrame struct {
	Type       string `json:"type"`
	ShopperID  string `json:"shopperId"`
	SalesRepID string `json:"salesRepId"`
	Accepted   bool   `json:"accepted"`
}

// --- Representative -> server payloads ---

type ConnectFrame struct {
	Type       string `json:"type"`
	SalesRepID string `json:"salesRepId"`
}

type ClaimCallFrame struct {
	Type       string `json:"type"`
	SalesRepID string `json:"salesRepId"`
	ShopperID  string `json:"shopperId"`
	SDPOffer   any    `json:"sdpOffer"`
}

type ReleaseCallFrame struct {
	Type       string `json:"type"`
	SalesRepID string `json:"salesRepId"`
	ShopperID  string `json:"shopperId"`
}

type RequestCollaborationFrame struct {
	Type       string `json:"type"`
	SalesRepID string `json:"salesRepId"`
	ShopperID  string `json:"shopperId"`
}

// --- server -> shopper payloads ---

type ShopperOutbound struct {
	Type                 string `json:"type"`
	Message              string `json:"message,omitempty"`
	ShopperID            string `json:"shopperId,omitempty"`
	Position             int    `json:"position,omitempty"`
	HasMicrophone        bool   `json:"hasMicrophone"`
	SalesRepID           string `json:"salesRepId,omitempty"`
	SDPOffer             any    `json:"sdpOffer,omitempty"`
	PreviousSalesRepID   string `json:"previousSalesRepId,omitempty"`
	ICECandidate         any    `json:"iceCandidate,omitempty"`
	SalesRepName         string `json:"salesRepName,omitempty"`
	Status               string `json:"status,omitempty"`
}

// --- server -> representative payloads ---

type RepOutbound struct {
	Type               string          `json:"type"`
	Message            string          `json:"message,omitempty"`
	Queue              []QueueSummary  `json:"queue,omitempty"`
	ShopperID          string          `json:"shopperId,omitempty"`
	SalesRepID         string          `json:"salesRepId,omitempty"`
	SDPAnswer          any             `json:"sdpAnswer,omitempty"`
	ICECandidate       any             `json:"iceCandidate,omitempty"`
	Position           int             `json:"position,omitempty"`
	Status             string          `json:"status,omitempty"`
}
