// Package config loads tunnel's runtime configuration.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Default configuration values.
const (
	DefaultServerPort     = "25565"
	DefaultServerAddress  = "ws://localhost:25565/ws"
	DefaultChunkSizeBytes = 16 * 1024
	DefaultMaxRAMMB       = 64
)

// SessionConfig holds the values a sender/receiver pipeline needs to run a
// transfer: where the signalling server lives, how big a chunk is, and how
// much memory the receiver may hold in flight before spilling to disk.
type SessionConfig struct {
	ServerAddress string
	ChunkSizeBytes int
	MaxRAMMB      int
}

// ChunksPerPart returns the number of chunks that fit in max_ram_mb worth
// of memory, clamped to at least 1.
func (c SessionConfig) ChunksPerPart() int {
	n := (c.MaxRAMMB * 1024 * 1024) / c.ChunkSizeBytes
	if n < 1 {
		return 1
	}
	return n
}

// Options carries CLI-flag overrides, the highest-priority layer.
type Options struct {
	ServerAddress  string
	ChunkSizeBytes int
	MaxRAMMB       int
}

// LoadSession resolves SessionConfig with the following priority:
// 1. CLI flags (Options), 2. environment (optionally loaded from a local
// .env via godotenv), 3. hardcoded defaults.
func LoadSession(opts Options) (SessionConfig, error) {
	// Best-effort: a missing .env is not an error, it just means we fall
	// back to the process environment.
	_ = godotenv.Load()

	address := opts.ServerAddress
	if address == "" {
		address = os.Getenv("SERVER_ADDRESS")
	}
	if address == "" {
		address = DefaultServerAddress
	}

	chunkSize := opts.ChunkSizeBytes
	if chunkSize == 0 {
		chunkSize = envInt("CHUNK_SIZE_BYTES", DefaultChunkSizeBytes)
	}
	if chunkSize <= 0 {
		return SessionConfig{}, fmt.Errorf("invalid CHUNK_SIZE_BYTES: %d", chunkSize)
	}

	maxRAM := opts.MaxRAMMB
	if maxRAM == 0 {
		maxRAM = envInt("MAX_RAM_MB", DefaultMaxRAMMB)
	}
	if maxRAM <= 0 {
		return SessionConfig{}, fmt.Errorf("invalid MAX_RAM_MB: %d", maxRAM)
	}

	return SessionConfig{
		ServerAddress:  address,
		ChunkSizeBytes: chunkSize,
		MaxRAMMB:       maxRAM,
	}, nil
}

// ServerPort resolves the signalling server's listen port: env > default.
func ServerPort() string {
	_ = godotenv.Load()
	if p := os.Getenv("SERVER_PORT"); p != "" {
		return p
	}
	return DefaultServerPort
}

func envInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
