package receiver

import (
	"crypto/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/skelly37/tunnel-go/internal/transfer"
)

// fakeDataChannel records every text frame sent to it, standing in for a
// *webrtc.DataChannel in reassembly tests.
type fakeDataChannel struct {
	sent []string
}

func (f *fakeDataChannel) SendText(s string) error {
	f.sent = append(f.sent, s)
	return nil
}

type recordingReporter struct {
	progress []float64
	done     string
	failed   string
}

func (r *recordingReporter) Info(string)        {}
func (r *recordingReporter) Progress(p float64) { r.progress = append(r.progress, p) }
func (r *recordingReporter) Done(summary string) { r.done = summary }
func (r *recordingReporter) Failed(msg string)   { r.failed = msg }

func withWorkDir(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(cwd) })
}

func TestSessionReassemblesAcrossMultipleParts(t *testing.T) {
	withWorkDir(t)

	const chunkSize = 16
	payload := make([]byte, chunkSize*5+7) // 5 full chunks + 1 short tail
	if _, err := rand.Read(payload); err != nil {
		t.Fatal(err)
	}

	metadata := transfer.FileMetadata{
		Filename: "destination.bin",
		Filesize: int64(len(payload)),
	}
	metadata.Checksum = checksumBytes(t, payload)

	// CHUNKS_PER_PART = 2, so 6 total chunks flush across 3 parts.
	sess := newSession("sess", metadata, chunkSize, 2)
	dc := &fakeDataChannel{}
	reporter := &recordingReporter{}

	for i := 0; i < len(payload); i += chunkSize {
		end := i + chunkSize
		if end > len(payload) {
			end = len(payload)
		}
		sess.handleChunk(dc, payload[i:end], reporter)
	}

	if err := <-sess.done; err != nil {
		t.Fatalf("session reported error: %v", err)
	}

	got, err := os.ReadFile(metadata.Filename)
	if err != nil {
		t.Fatalf("read destination: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("destination does not match source payload")
	}

	for _, n := range sess.parts {
		if _, err := os.Stat(n); err == nil {
			t.Fatalf("part file %s was not deleted after merge", n)
		}
	}

	if len(dc.sent) == 0 || dc.sent[len(dc.sent)-1] != "Finished" {
		t.Fatalf("expected final frame to be Finished, got %v", dc.sent)
	}

	ackCount := 0
	for _, s := range dc.sent {
		if s == "ack" {
			ackCount++
		}
	}
	wantChunks := transfer.TotalChunks(metadata.Filesize, chunkSize)
	if ackCount != wantChunks {
		t.Fatalf("expected %d acks, got %d", wantChunks, ackCount)
	}
}

func TestSessionSinglePartRenamesInPlace(t *testing.T) {
	withWorkDir(t)

	const chunkSize = 64
	payload := []byte("hello world\n")

	metadata := transfer.FileMetadata{
		Filename: "small.txt",
		Filesize: int64(len(payload)),
	}
	metadata.Checksum = checksumBytes(t, payload)

	sess := newSession("sess", metadata, chunkSize, 4)
	dc := &fakeDataChannel{}
	reporter := &recordingReporter{}

	sess.handleChunk(dc, payload, reporter)

	if err := <-sess.done; err != nil {
		t.Fatalf("session reported error: %v", err)
	}
	if len(sess.parts) != 1 {
		t.Fatalf("expected exactly one part, got %d", len(sess.parts))
	}

	got, err := os.ReadFile(metadata.Filename)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(payload) {
		t.Fatalf("got %q, want %q", got, payload)
	}
}

func TestSessionChecksumMismatchKeepsFile(t *testing.T) {
	withWorkDir(t)

	payload := []byte("some bytes")
	metadata := transfer.FileMetadata{
		Filename: "mismatch.bin",
		Filesize: int64(len(payload)),
		Checksum: "0000000000000000000000000000000000000000000000000000000000000",
	}

	sess := newSession("sess", metadata, 1024, 4)
	dc := &fakeDataChannel{}
	reporter := &recordingReporter{}

	sess.handleChunk(dc, payload, reporter)

	err := <-sess.done
	if err != transfer.ErrChecksumMismatch {
		t.Fatalf("expected ErrChecksumMismatch, got %v", err)
	}

	if _, statErr := os.Stat(metadata.Filename); statErr != nil {
		t.Fatalf("expected destination file to be kept on mismatch: %v", statErr)
	}

	if dc.sent[len(dc.sent)-1] != "Error: checksum mismatch" {
		t.Fatalf("expected checksum mismatch sentinel, got %v", dc.sent)
	}
}

func TestSessionZeroByteFileFinalizesOnOpen(t *testing.T) {
	withWorkDir(t)

	metadata := transfer.FileMetadata{Filename: "empty.bin", Filesize: 0}
	metadata.Checksum = checksumBytes(t, nil)

	sess := newSession("sess", metadata, 4096, 4)
	if sess.total != 0 {
		t.Fatalf("expected total chunks 0, got %d", sess.total)
	}

	dc := &fakeDataChannel{}
	reporter := &recordingReporter{}

	sess.finalize(dc, reporter)

	if err := <-sess.done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	info, err := os.Stat(metadata.Filename)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() != 0 {
		t.Fatalf("expected empty destination, got size %d", info.Size())
	}
}

func TestCloseErrorMidTransferIsChunkCountMismatch(t *testing.T) {
	if err := closeError(3, 10); err != transfer.ErrChunkCountMismatch {
		t.Fatalf("expected ErrChunkCountMismatch, got %v", err)
	}
}

func TestCloseErrorAfterCompletionIsPeerDisconnected(t *testing.T) {
	if err := closeError(10, 10); err != transfer.ErrPeerDisconnected {
		t.Fatalf("expected ErrPeerDisconnected, got %v", err)
	}
}

func checksumBytes(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "src")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	sum, err := transfer.Checksum(path)
	if err != nil {
		t.Fatal(err)
	}
	return sum
}
