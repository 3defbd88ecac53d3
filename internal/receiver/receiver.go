// Package receiver implements the receiving side of a transfer: session
// join, metadata confirmation, WebRTC negotiation, bounded-memory
// reassembly, checksum verification and optional unpacking.
package receiver

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/pion/webrtc/v4"
	"github.com/skelly37/tunnel-go/internal/config"
	"github.com/skelly37/tunnel-go/internal/rtcpeer"
	"github.com/skelly37/tunnel-go/internal/signaling"
	"github.com/skelly37/tunnel-go/internal/transfer"
	"github.com/skelly37/tunnel-go/internal/ui"
	"github.com/skelly37/tunnel-go/internal/wsclient"
)

// Options configures a single receive operation.
type Options struct {
	SessionName string
	Config      config.SessionConfig
	Reporter    ui.Reporter
	// OnAccepted, if set, is called once the user accepts the incoming
	// transfer, before WebRTC negotiation starts. The accept/decline
	// prompt is itself interactive, so callers that drive a separate
	// interactive progress UI should defer starting it until this fires.
	OnAccepted func()
}

// Run joins sessionName, confirms the incoming transfer with the user,
// negotiates a WebRTC connection with the sender, and reassembles the
// payload to disk. It returns nil both on success and on a clean user
// decline; any other non-nil error means the transfer failed.
func Run(opts Options) error {
	client, err := wsclient.Dial(opts.Config.ServerAddress)
	if err != nil {
		return err
	}
	defer client.Close()

	handler := wsclient.NewHandler(client)
	go handler.Start()

	client.Send(signaling.Message{
		Action:  signaling.ActionRegister,
		Session: opts.SessionName,
		Role:    signaling.RoleReceiver,
	})

	select {
	case _, ok := <-handler.Registered:
		if !ok {
			return transfer.ErrPeerDisconnected
		}
	case msg, ok := <-handler.Error:
		if !ok {
			return transfer.ErrPeerDisconnected
		}
		switch msg {
		case fmt.Sprintf("Session %s does not exist", opts.SessionName):
			return transfer.ErrSessionNotFound
		case fmt.Sprintf("%s already registered in session %s", signaling.RoleReceiver, opts.SessionName):
			return transfer.ErrNameCollision
		default:
			return transfer.NewError("register", fmt.Errorf("%s", msg))
		}
	}

	rawMeta, ok := <-handler.Metadata
	if !ok {
		return transfer.ErrPeerDisconnected
	}

	var metadata transfer.FileMetadata
	if err := json.Unmarshal(rawMeta, &metadata); err != nil {
		return transfer.NewError("decode metadata", err)
	}

	describePayload(opts.SessionName, metadata, opts.Reporter)

	accepted, err := ui.Confirm(
		fmt.Sprintf("Receive %s?", metadata.Filename),
		fmt.Sprintf("%s from session %s", transfer.HumanReadableSize(metadata.Filesize), opts.SessionName),
	)
	if err != nil {
		return transfer.NewError("confirm transfer", err)
	}
	if !accepted {
		client.Send(signaling.Message{Action: signaling.ActionCancel, Session: opts.SessionName})
		opts.Reporter.Info("Transfer declined.")
		return nil
	}

	if opts.OnAccepted != nil {
		opts.OnAccepted()
	}

	return negotiateAndReceive(negotiateParams{
		sessionName:   opts.SessionName,
		metadata:      metadata,
		chunkSize:     opts.Config.ChunkSizeBytes,
		chunksPerPart: opts.Config.ChunksPerPart(),
		client:        client,
		handler:       handler,
		reporter:      opts.Reporter,
	})
}

func describePayload(sessionName string, metadata transfer.FileMetadata, reporter ui.Reporter) {
	reporter.Info(fmt.Sprintf("Incoming: %s (%s)", metadata.Filename, transfer.HumanReadableSize(metadata.Filesize)))
	if metadata.ShouldUnzip {
		reporter.Info(fmt.Sprintf("Will be unpacked into directory %q", sessionName))
	}
	if _, err := os.Stat(metadata.Filename); err == nil {
		reporter.Info(fmt.Sprintf("Warning: %s already exists here and will be overwritten", metadata.Filename))
	}
}

type negotiateParams struct {
	sessionName   string
	metadata      transfer.FileMetadata
	chunkSize     int
	chunksPerPart int
	client        *wsclient.Client
	handler       *wsclient.Handler
	reporter      ui.Reporter
}

// negotiateAndReceive runs WebRTC answer/ICE negotiation, wires the
// incoming data channel to a reassembly session, and blocks until the
// session finalizes.
func negotiateAndReceive(p negotiateParams) error {
	pc, err := rtcpeer.New()
	if err != nil {
		return err
	}
	defer pc.Close()

	sess := newSession(p.sessionName, p.metadata, p.chunkSize, p.chunksPerPart)

	pc.OnICECandidate(func(c *webrtc.ICECandidate) {
		if c == nil {
			return
		}
		candJSON, err := json.Marshal(c.ToJSON())
		if err != nil {
			slog.Error("marshal local candidate", "err", err)
			return
		}
		p.client.Send(signaling.Message{
			Action:    signaling.ActionCandidate,
			Session:   p.sessionName,
			Target:    signaling.RoleSender,
			Candidate: candJSON,
		})
	})

	pc.OnDataChannel(func(dc *webrtc.DataChannel) {
		dc.OnOpen(func() {
			if sess.total == 0 {
				sess.finalize(dc, p.reporter)
			}
		})
		dc.OnMessage(func(msg webrtc.DataChannelMessage) {
			if msg.IsString {
				slog.Warn("unexpected signal", "err", transfer.ErrUnexpectedSignal, "text", string(msg.Data))
				return
			}
			sess.handleChunk(dc, msg.Data, p.reporter)
		})
		dc.OnClose(func() {
			select {
			case sess.done <- closeError(sess.counter, sess.total):
			default:
			}
		})
	})

	go pumpReceiverSignaling(p.sessionName, p.client, p.handler, pc)

	p.reporter.Info("Waiting for the sender to connect...")

	return <-sess.done
}

func pumpReceiverSignaling(sessionName string, client *wsclient.Client, handler *wsclient.Handler, pc *webrtc.PeerConnection) {
	for {
		select {
		case sdp, ok := <-handler.Offer:
			if !ok {
				return
			}
			answer, err := rtcpeer.CreateAnswer(pc, sdp)
			if err != nil {
				slog.Error("create answer", "err", err)
				continue
			}
			client.Send(signaling.Message{Action: signaling.ActionAnswer, Session: sessionName, SDP: answer.SDP})

		case raw, ok := <-handler.Candidate:
			if !ok {
				return
			}
			var init webrtc.ICECandidateInit
			if err := json.Unmarshal(raw, &init); err != nil {
				slog.Error("decode remote candidate", "err", err)
				continue
			}
			if err := rtcpeer.AddICECandidate(pc, init); err != nil {
				slog.Error("add remote candidate", "err", err)
			}
		}
	}
}

// textSender is the data-channel surface the session needs to send its
// ack/Finished/Error sentinels — narrowed from *webrtc.DataChannel so
// reassembly logic is testable without a live connection.
type textSender interface {
	SendText(s string) error
}

// session holds one receive's reassembly state: the in-memory chunk
// buffer, the part files flushed so far, and progress counters.
type session struct {
	sessionName   string
	metadata      transfer.FileMetadata
	chunksPerPart int
	total         int

	buffer  [][]byte
	parts   []string
	counter int

	done chan error
}

func newSession(sessionName string, metadata transfer.FileMetadata, chunkSize, chunksPerPart int) *session {
	return &session{
		sessionName:   sessionName,
		metadata:      metadata,
		chunksPerPart: chunksPerPart,
		total:         transfer.TotalChunks(metadata.Filesize, chunkSize),
		done:          make(chan error, 1),
	}
}

// closeError reports why a data channel closing before finalize ended the
// transfer: a count short of total means the sender stopped mid-stream,
// otherwise it's an ordinary disconnect after the transfer had completed.
func closeError(counter, total int) error {
	if counter < total {
		return transfer.ErrChunkCountMismatch
	}
	return transfer.ErrPeerDisconnected
}

// handleChunk appends one received chunk, flushes a part when the buffer
// fills or the transfer completes, acks the chunk, and finalizes once the
// locally-derived total chunk count is reached.
func (s *session) handleChunk(dc textSender, data []byte, reporter ui.Reporter) {
	chunk := make([]byte, len(data))
	copy(chunk, data)
	s.buffer = append(s.buffer, chunk)
	s.counter++

	if s.total > 0 {
		reporter.Progress(float64(s.counter) * 100 / float64(s.total))
	}

	if len(s.buffer) == s.chunksPerPart || s.counter == s.total {
		if err := s.flushPart(); err != nil {
			s.finishWith(dc, err)
			return
		}
	}

	sendText(dc, "ack")

	if s.counter == s.total {
		s.finalize(dc, reporter)
	}
}

func (s *session) flushPart() error {
	partPath := fmt.Sprintf("%s.part%d", s.metadata.Filename, len(s.parts))
	f, err := os.Create(partPath)
	if err != nil {
		return transfer.NewFileError("create part", partPath, err)
	}
	defer f.Close()

	for _, chunk := range s.buffer {
		if _, err := f.Write(chunk); err != nil {
			return transfer.NewFileError("write part", partPath, err)
		}
	}

	s.parts = append(s.parts, partPath)
	s.buffer = s.buffer[:0]
	return nil
}

// finalize merges the parts list into the destination, verifies its
// checksum, reports success or failure to the sender, optionally unpacks
// the archive, and resolves the session's done channel exactly once.
func (s *session) finalize(dc textSender, reporter ui.Reporter) {
	if err := s.merge(); err != nil {
		s.finishWith(dc, err)
		return
	}

	checksum, err := transfer.Checksum(s.metadata.Filename)
	if err != nil {
		s.finishWith(dc, err)
		return
	}

	if checksum != s.metadata.Checksum {
		sendText(dc, "Error: checksum mismatch")
		s.done <- transfer.ErrChecksumMismatch
		return
	}

	sendText(dc, "Finished")

	if s.metadata.ShouldUnzip {
		if err := transfer.Decompress(s.metadata.Filename, s.sessionName); err != nil {
			s.done <- err
			return
		}
		os.Remove(s.metadata.Filename)
	}

	reporter.Done(fmt.Sprintf("Received %s (%s)", s.metadata.Filename, transfer.HumanReadableSize(s.metadata.Filesize)))
	s.done <- nil
}

func (s *session) finishWith(dc textSender, err error) {
	sendText(dc, fmt.Sprintf("Error: %v", err))
	select {
	case s.done <- err:
	default:
	}
}

// merge assembles the destination file from the flushed parts: a single
// part is renamed in place, multiple parts are concatenated in order and
// then deleted, matching TotalChunks == 0's zero-part case by creating an
// empty destination directly.
func (s *session) merge() error {
	if len(s.parts) == 0 {
		f, err := os.Create(s.metadata.Filename)
		if err != nil {
			return transfer.NewFileError("create destination", s.metadata.Filename, err)
		}
		return f.Close()
	}

	if len(s.parts) == 1 {
		os.Remove(s.metadata.Filename)
		if err := os.Rename(s.parts[0], s.metadata.Filename); err != nil {
			return transfer.NewFileError("rename part", s.parts[0], err)
		}
		return nil
	}

	dest, err := os.Create(s.metadata.Filename)
	if err != nil {
		return transfer.NewFileError("create destination", s.metadata.Filename, err)
	}
	defer dest.Close()

	for _, partPath := range s.parts {
		if err := appendPart(dest, partPath); err != nil {
			return err
		}
		os.Remove(partPath)
	}
	return nil
}

func appendPart(dest *os.File, partPath string) error {
	part, err := os.Open(partPath)
	if err != nil {
		return transfer.NewFileError("open part", partPath, err)
	}
	defer part.Close()

	if _, err := io.Copy(dest, part); err != nil {
		return transfer.NewFileError("append part", partPath, err)
	}
	return nil
}

func sendText(dc textSender, text string) {
	if err := dc.SendText(text); err != nil {
		slog.Error("send data-channel text", "err", err)
	}
}
