// Package rtcpeer wraps the pion/webrtc peer-connection and data-channel
// setup shared by the sender and receiver pipelines.
package rtcpeer

import (
	"github.com/pion/webrtc/v4"
)

// DataChannelLabel is the single data channel both pipelines use for
// bulk transfer.
const DataChannelLabel = "filetransfer"

// New creates a peer connection with no configured ICE servers beyond
// pion's own defaults; STUN/TURN provisioning is a deployment concern
// left to the operator, not the transfer protocol.
func New() (*webrtc.PeerConnection, error) {
	return webrtc.NewPeerConnection(webrtc.Configuration{})
}

// CreateDataChannel creates the reliable, ordered data channel the sender
// offers. Reliability is the default for pion data channels: no MaxRetransmits
// or MaxPacketLifeTime set.
func CreateDataChannel(pc *webrtc.PeerConnection) (*webrtc.DataChannel, error) {
	ordered := true
	return pc.CreateDataChannel(DataChannelLabel, &webrtc.DataChannelInit{
		Ordered: &ordered,
	})
}

// CreateOffer creates and sets the local SDP offer, returning it for the
// caller to forward through signalling.
func CreateOffer(pc *webrtc.PeerConnection) (*webrtc.SessionDescription, error) {
	offer, err := pc.CreateOffer(nil)
	if err != nil {
		return nil, err
	}
	if err := pc.SetLocalDescription(offer); err != nil {
		return nil, err
	}
	return pc.LocalDescription(), nil
}

// CreateAnswer sets remoteSDP as the remote offer and creates/sets the
// local SDP answer.
func CreateAnswer(pc *webrtc.PeerConnection, remoteSDP string) (*webrtc.SessionDescription, error) {
	offer := webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: remoteSDP}
	if err := pc.SetRemoteDescription(offer); err != nil {
		return nil, err
	}

	answer, err := pc.CreateAnswer(nil)
	if err != nil {
		return nil, err
	}
	if err := pc.SetLocalDescription(answer); err != nil {
		return nil, err
	}
	return pc.LocalDescription(), nil
}

// SetAnswer sets remoteSDP as the remote answer, completing the sender's
// side of negotiation.
func SetAnswer(pc *webrtc.PeerConnection, remoteSDP string) error {
	answer := webrtc.SessionDescription{Type: webrtc.SDPTypeAnswer, SDP: remoteSDP}
	return pc.SetRemoteDescription(answer)
}

// AddICECandidate applies a remote ICE candidate decoded from the
// Candidate field of a signaling.Message.
func AddICECandidate(pc *webrtc.PeerConnection, candidate webrtc.ICECandidateInit) error {
	return pc.AddICECandidate(candidate)
}

// StopTransceivers stops every transceiver's sender and receiver, the
// graceful-ICE-teardown step the sender pipeline runs before closing its
// signalling connection.
func StopTransceivers(pc *webrtc.PeerConnection) {
	for _, t := range pc.GetTransceivers() {
		if r := t.Receiver(); r != nil {
			_ = r.Stop()
		}
		if s := t.Sender(); s != nil {
			_ = s.Stop()
		}
	}
}
