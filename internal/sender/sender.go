// Package sender implements the sending side of a transfer: payload
// preparation, session registration with name retry, WebRTC negotiation,
// and the ack-gated chunk stream.
package sender

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pion/webrtc/v4"
	"github.com/skelly37/tunnel-go/internal/config"
	"github.com/skelly37/tunnel-go/internal/event"
	"github.com/skelly37/tunnel-go/internal/rtcpeer"
	"github.com/skelly37/tunnel-go/internal/signaling"
	"github.com/skelly37/tunnel-go/internal/transfer"
	"github.com/skelly37/tunnel-go/internal/ui"
	"github.com/skelly37/tunnel-go/internal/wordlist"
	"github.com/skelly37/tunnel-go/internal/wsclient"
)

const (
	sessionNameWords    = 3
	maxRegisterAttempts = 50
)

// Options configures a single send operation.
type Options struct {
	Paths    []string
	Config   config.SessionConfig
	Reporter ui.Reporter
}

// Run prepares the payload, registers a session, negotiates a WebRTC
// connection with the receiver, and streams the payload under ack
// gating. It returns once the transfer has succeeded, failed, or been
// declined.
func Run(opts Options) error {
	payloadPath, metadata, cleanup, err := preparePayload(opts.Paths, opts.Reporter)
	if err != nil {
		return fmt.Errorf("prepare payload: %w", err)
	}
	defer cleanup()

	client, err := wsclient.Dial(opts.Config.ServerAddress)
	if err != nil {
		return err
	}
	defer client.Close()

	handler := wsclient.NewHandler(client)
	go handler.Start()

	sessionName, err := register(client, handler, metadata, opts.Reporter)
	if err != nil {
		return err
	}
	opts.Reporter.Info(fmt.Sprintf("Registered successfully as %s", sessionName))
	opts.Reporter.Info(fmt.Sprintf("On the other machine, run: tunnel receive %s", sessionName))
	opts.Reporter.Info(fmt.Sprintf("(Windows: tunnel.exe receive %s)", sessionName))

	return negotiateAndSend(negotiateParams{
		sessionName: sessionName,
		payloadPath: payloadPath,
		metadata:    metadata,
		chunkSize:   opts.Config.ChunkSizeBytes,
		client:      client,
		handler:     handler,
		reporter:    opts.Reporter,
	})
}

// preparePayload picks the direct-file path or builds a temporary archive,
// returning the path to send, its metadata, and a cleanup func that is
// always safe to call.
func preparePayload(paths []string, reporter ui.Reporter) (payloadPath string, metadata transfer.FileMetadata, cleanup func(), err error) {
	cleanup = func() {}

	if len(paths) == 0 {
		return "", metadata, cleanup, fmt.Errorf("no paths given")
	}

	if len(paths) == 1 {
		info, statErr := os.Stat(paths[0])
		if statErr == nil && !info.IsDir() {
			payloadPath = paths[0]
			metadata.Filename = filepath.Base(payloadPath)
			metadata.Filesize = info.Size()
			metadata.ShouldUnzip = false
			metadata.Checksum, err = transfer.Checksum(payloadPath)
			return payloadPath, metadata, cleanup, err
		}
	}

	if len(paths) > 1 && reporter != nil {
		reporter.Info(ui.RenderInputTable(inputRows(paths)))
	}

	archivePath, archErr := tempArchivePath()
	if archErr != nil {
		return "", metadata, cleanup, archErr
	}
	cleanup = func() { os.Remove(archivePath) }

	if err = transfer.Compress(paths, archivePath); err != nil {
		return "", metadata, cleanup, err
	}

	info, statErr := os.Stat(archivePath)
	if statErr != nil {
		return "", metadata, cleanup, statErr
	}

	metadata.Filename = filepath.Base(archivePath)
	metadata.Filesize = info.Size()
	metadata.ShouldUnzip = true
	metadata.Checksum, err = transfer.Checksum(archivePath)
	return archivePath, metadata, cleanup, err
}

// inputRows describes each path being folded into the archive for the
// manifest table shown before compression starts.
func inputRows(paths []string) []ui.InputRow {
	rows := make([]ui.InputRow, 0, len(paths))
	for i, p := range paths {
		kind := "file"
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			kind = "directory"
		}
		rows = append(rows, ui.InputRow{Index: i + 1, Path: p, Kind: kind})
	}
	return rows
}

func tempArchivePath() (string, error) {
	f, err := os.CreateTemp("", "tunnel-*.zip")
	if err != nil {
		return "", transfer.NewError("create temp archive", err)
	}
	path := f.Name()
	f.Close()
	return path, nil
}

// registerSender is the narrow client surface register needs, so the
// retry logic is testable without a live signalling connection.
type registerSender interface {
	Send(msg signaling.Message)
}

// register generates session names and registers as sender until one is
// accepted, retrying only on the exact name-collision message.
func register(client registerSender, handler *wsclient.Handler, metadata transfer.FileMetadata, reporter ui.Reporter) (string, error) {
	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return "", transfer.NewError("marshal metadata", err)
	}

	collision := func(name string) string {
		return fmt.Sprintf("%s already registered in session %s", signaling.RoleSender, name)
	}

	for attempt := 0; attempt < maxRegisterAttempts; attempt++ {
		name := wordlist.Generate(sessionNameWords)
		client.Send(signaling.Message{
			Action:   signaling.ActionRegister,
			Session:  name,
			Role:     signaling.RoleSender,
			Metadata: metaJSON,
		})

		select {
		case _, ok := <-handler.Registered:
			if !ok {
				return "", transfer.ErrPeerDisconnected
			}
			return name, nil

		case msg, ok := <-handler.Error:
			if !ok {
				return "", transfer.ErrPeerDisconnected
			}
			if msg == collision(name) {
				reporter.Info(fmt.Sprintf("session name %s already taken, retrying", name))
				continue
			}
			return "", transfer.NewError("register", fmt.Errorf("%s", msg))
		}
	}

	return "", transfer.ErrRegisterFailed
}

type negotiateParams struct {
	sessionName string
	payloadPath string
	metadata    transfer.FileMetadata
	chunkSize   int
	client      *wsclient.Client
	handler     *wsclient.Handler
	reporter    ui.Reporter
}

// negotiateAndSend runs WebRTC offer/ICE negotiation and, once the data
// channel opens, the ack-gated chunk stream, then tears everything down.
func negotiateAndSend(p negotiateParams) error {
	pc, err := rtcpeer.New()
	if err != nil {
		return err
	}
	defer pc.Close()

	dc, err := rtcpeer.CreateDataChannel(pc)
	if err != nil {
		return err
	}

	ackReceived := event.New(true)
	receiverFinished := event.New(false)
	cancelled := make(chan struct{})
	sendErr := make(chan error, 1)
	remoteErr := make(chan string, 1)

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
			Target:    signaling.RoleReceiver,
			Candidate: candJSON,
		})
	})

	dc.OnOpen(func() {
		go func() {
			sendErr <- streamChunks(dc, p.payloadPath, p.chunkSize, p.metadata.Filesize, ackReceived, receiverFinished, p.reporter)
		}()
	})

	dc.OnMessage(func(msg webrtc.DataChannelMessage) {
		if !msg.IsString {
			slog.Warn("unexpected signal", "err", transfer.ErrUnexpectedSignal)
			return
		}
		handleSenderText(string(msg.Data), ackReceived, receiverFinished, remoteErr)
	})

	dc.OnClose(func() {
		receiverFinished.Set()
		ackReceived.Set()
	})

	offer, err := rtcpeer.CreateOffer(pc)
	if err != nil {
		return err
	}
	p.client.Send(signaling.Message{Action: signaling.ActionOffer, Session: p.sessionName, SDP: offer.SDP})

	go pumpSignaling(p.handler, pc, ackReceived, receiverFinished, cancelled)

	p.reporter.Info("Waiting for receiver to connect...")

	select {
	case <-cancelled:
		shutdown(pc, p.client)
		return transfer.ErrTransferDeclined
	case <-receiverFinished.Wait():
	}

	var streamErr error
	select {
	case streamErr = <-sendErr:
	default:
	}

	shutdown(pc, p.client)

	select {
	case msg := <-remoteErr:
		return transfer.NewError("receiver", fmt.Errorf("%s", msg))
	default:
	}

	if streamErr != nil {
		return streamErr
	}

	p.reporter.Done(fmt.Sprintf("Sent %s (%s)", p.metadata.Filename, transfer.HumanReadableSize(p.metadata.Filesize)))
	return nil
}

// handleSenderText applies the three data-channel text sentinels from the
// receiver to the sender's ack/termination signals. A received "Error" is
// reported through remoteErr rather than the reporter directly, so the
// caller can surface it as this transfer's definitive outcome instead of
// risking a later success message overwriting it.
func handleSenderText(text string, ackReceived, receiverFinished *event.Event, remoteErr chan<- string) {
	switch {
	case text == "ack":
		ackReceived.Set()
	case text == "Finished":
		receiverFinished.Set()
		ackReceived.Set()
	case len(text) >= 5 && text[:5] == "Error":
		select {
		case remoteErr <- text:
		default:
		}
		receiverFinished.Set()
		ackReceived.Set()
	}
}

// pumpSignaling applies answer/candidate/cancel messages from the server
// for the lifetime of the negotiation and transfer.
func pumpSignaling(handler *wsclient.Handler, pc *webrtc.PeerConnection, ackReceived, receiverFinished *event.Event, cancelled chan struct{}) {
	for {
		select {
		case sdp, ok := <-handler.Answer:
			if !ok {
				return
			}
			if err := rtcpeer.SetAnswer(pc, sdp); err != nil {
				slog.Error("set remote answer", "err", err)
			}

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

		case _, ok := <-handler.Cancel:
			if ok {
				receiverFinished.Set()
				ackReceived.Set()
				close(cancelled)
			}
			return
		}
	}
}

// binarySender is the data-channel surface the chunk loop needs —
// narrowed from *webrtc.DataChannel so it is testable without a live
// connection.
type binarySender interface {
	Send(data []byte) error
}

// streamChunks reads payloadPath in chunkSize blocks, sending each only
// once ackReceived is signalled, enforcing a single chunk in flight.
func streamChunks(dc binarySender, payloadPath string, chunkSize int, filesize int64, ackReceived, receiverFinished *event.Event, reporter ui.Reporter) error {
	f, err := os.Open(payloadPath)
	if err != nil {
		return transfer.NewFileError("open payload", payloadPath, err)
	}
	defer f.Close()

	total := transfer.TotalChunks(filesize, chunkSize)
	buf := make([]byte, chunkSize)
	count := 0

	for {
		n, readErr := f.Read(buf)
		if n > 0 {
			<-ackReceived.Wait()

			select {
			case <-receiverFinished.Wait():
				return transfer.ErrPeerDisconnected
			default:
			}
			ackReceived.Clear()

			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			if err := dc.Send(chunk); err != nil {
				return transfer.NewError("send chunk", err)
			}

			count++
			if total > 0 {
				reporter.Progress(float64(count) * 100 / float64(total))
			}
		}

		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			return transfer.NewFileError("read payload", payloadPath, readErr)
		}
	}
}

func shutdown(pc *webrtc.PeerConnection, client *wsclient.Client) {
	rtcpeer.StopTransceivers(pc)
	client.Close()
}
