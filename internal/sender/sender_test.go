package sender

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/skelly37/tunnel-go/internal/event"
	"github.com/skelly37/tunnel-go/internal/signaling"
	"github.com/skelly37/tunnel-go/internal/transfer"
	"github.com/skelly37/tunnel-go/internal/wsclient"
)

// scriptedRegisterClient replies to the first registerCollisions attempts
// with the exact sender-collision message (keyed off the name the caller
// actually sent) and accepts the attempt after that.
type scriptedRegisterClient struct {
	registerCollisions int
	handler            *wsclient.Handler
	attempts           []string
}

func (s *scriptedRegisterClient) Send(msg signaling.Message) {
	s.attempts = append(s.attempts, msg.Session)
	if len(s.attempts) <= s.registerCollisions {
		s.handler.Error <- fmt.Sprintf("%s already registered in session %s", signaling.RoleSender, msg.Session)
		return
	}
	s.handler.Registered <- struct{}{}
}

// fakeDataChannel records every binary frame sent to it and can be told
// to reply with an ack/Finished sentinel synchronously, standing in for
// a *webrtc.DataChannel in chunk-streaming tests.
type fakeDataChannel struct {
	sent [][]byte
	onSend func(chunk []byte)
}

func (f *fakeDataChannel) Send(data []byte) error {
	cp := make([]byte, len(data))
	copy(cp, data)
	f.sent = append(f.sent, cp)
	if f.onSend != nil {
		f.onSend(cp)
	}
	return nil
}

func TestPreparePayloadSingleFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.txt")
	content := []byte("hello world\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	payloadPath, metadata, cleanup, err := preparePayload([]string{path}, noopReporter{})
	defer cleanup()
	if err != nil {
		t.Fatalf("preparePayload: %v", err)
	}

	if payloadPath != path {
		t.Fatalf("expected direct file path %s, got %s", path, payloadPath)
	}
	if metadata.ShouldUnzip {
		t.Fatalf("single file payload should not be marked should_unzip")
	}
	if metadata.Filesize != int64(len(content)) {
		t.Fatalf("expected filesize %d, got %d", len(content), metadata.Filesize)
	}

	cleanup()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("cleanup must not remove the original file: %v", err)
	}
}

func TestPreparePayloadDirectoryArchives(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("aaa"), 0o644); err != nil {
		t.Fatal(err)
	}

	payloadPath, metadata, cleanup, err := preparePayload([]string{dir}, noopReporter{})
	if err != nil {
		t.Fatalf("preparePayload: %v", err)
	}

	if !metadata.ShouldUnzip {
		t.Fatalf("directory payload should be marked should_unzip")
	}
	if _, err := os.Stat(payloadPath); err != nil {
		t.Fatalf("archive should exist before cleanup: %v", err)
	}

	cleanup()
	if _, err := os.Stat(payloadPath); !os.IsNotExist(err) {
		t.Fatalf("cleanup should remove the temporary archive, stat err = %v", err)
	}
}

type noopReporter struct{}

func (noopReporter) Info(string)         {}
func (noopReporter) Progress(float64)    {}
func (noopReporter) Done(string)         {}
func (noopReporter) Failed(string)       {}

func TestStreamChunksSendsOneChunkPerAck(t *testing.T) {
	const chunkSize = 4
	payload := []byte("0123456789AB") // exactly 3 chunks of 4 bytes

	dir := t.TempDir()
	path := filepath.Join(dir, "payload.bin")
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatal(err)
	}

	ackReceived := event.New(true)
	receiverFinished := event.New(false)

	dc := &fakeDataChannel{}
	dc.onSend = func([]byte) {
		// Simulate the receiver's per-chunk ack arriving synchronously.
		ackReceived.Set()
	}

	err := streamChunks(dc, path, chunkSize, int64(len(payload)), ackReceived, receiverFinished, noopReporter{})
	if err != nil {
		t.Fatalf("streamChunks: %v", err)
	}

	if len(dc.sent) != 3 {
		t.Fatalf("expected 3 chunks sent, got %d", len(dc.sent))
	}

	var reassembled []byte
	for _, c := range dc.sent {
		reassembled = append(reassembled, c...)
	}
	if string(reassembled) != string(payload) {
		t.Fatalf("reassembled chunks = %q, want %q", reassembled, payload)
	}
}

func TestStreamChunksEmptyFileSendsNoFrames(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.bin")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	ackReceived := event.New(true)
	receiverFinished := event.New(false)
	dc := &fakeDataChannel{}

	if err := streamChunks(dc, path, 4096, 0, ackReceived, receiverFinished, noopReporter{}); err != nil {
		t.Fatalf("streamChunks: %v", err)
	}
	if len(dc.sent) != 0 {
		t.Fatalf("expected zero frames for an empty file, got %d", len(dc.sent))
	}
}

func TestStreamChunksAbortsWhenReceiverFinishedIsSetEarly(t *testing.T) {
	const chunkSize = 4
	payload := []byte("0123456789AB")

	dir := t.TempDir()
	path := filepath.Join(dir, "payload.bin")
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatal(err)
	}

	ackReceived := event.New(true)
	receiverFinished := event.New(true) // already finished/cancelled before streaming starts

	dc := &fakeDataChannel{}

	err := streamChunks(dc, path, chunkSize, int64(len(payload)), ackReceived, receiverFinished, noopReporter{})
	if err != transfer.ErrPeerDisconnected {
		t.Fatalf("expected ErrPeerDisconnected, got %v", err)
	}
	if len(dc.sent) != 0 {
		t.Fatalf("expected no chunks sent once receiverFinished is set, got %d", len(dc.sent))
	}
}

func TestRegisterRetriesOnlyOnCollisionMessage(t *testing.T) {
	handler := wsclient.NewHandler(nil)
	client := &scriptedRegisterClient{registerCollisions: 2, handler: handler}

	name, err := register(client, handler, transfer.FileMetadata{Filename: "f"}, noopReporter{})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if len(client.attempts) != 3 {
		t.Fatalf("expected 3 register attempts (2 collisions + 1 success), got %d", len(client.attempts))
	}
	if name != client.attempts[len(client.attempts)-1] {
		t.Fatalf("returned name %q does not match the accepted attempt %q", name, client.attempts[len(client.attempts)-1])
	}
}

type fatalRegisterClient struct {
	handler *wsclient.Handler
}

func (f *fatalRegisterClient) Send(msg signaling.Message) {
	f.handler.Error <- "Session does not exist"
}

func TestRegisterFailsFastOnNonCollisionError(t *testing.T) {
	handler := wsclient.NewHandler(nil)
	client := &fatalRegisterClient{handler: handler}

	_, err := register(client, handler, transfer.FileMetadata{Filename: "f"}, noopReporter{})
	if err == nil {
		t.Fatal("expected a fatal error for a non-collision registration failure")
	}
}
