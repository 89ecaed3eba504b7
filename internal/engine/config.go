package engine

import (
	"time"

	"github.com/anatolykoptev/go_transcript/internal/transcript"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	Transport     transcript.Transport
	TransportName string        // "http" or "stealth", for logs
	Languages     []string      // fallback language preference
	FetchTimeout  time.Duration // bounds one List/Fetch call, 0 = none
	MaxTextChars  int           // cap for plain-text tool output
}

var cfg Config

// Cfg exposes the engine configuration to the tool layer.
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
func Init(c Config) {
	cfg = c
	Cfg = &cfg
}
