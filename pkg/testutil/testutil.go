package testutil

import (
	"bufio"
	"bytes"
	"encoding/json"
	"sync"

	"github.com/davecgh/go-spew/spew"
	"github.com/rs/zerolog"
)

var dumper = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// Dump renders v for assertion messages.
func Dump(v any) string {
	return dumper.Sdump(v)
}

// LogBuffer collects zerolog JSON output. It is safe for concurrent writers.
type LogBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *LogBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// Entries decodes every log line written so far.
func (b *LogBuffer) Entries() []map[string]any {
	b.mu.Lock()
	data := append([]byte(nil), b.buf.Bytes()...)
	b.mu.Unlock()

	var entries []map[string]any
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		var entry map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &entry); err == nil {
			entries = append(entries, entry)
		}
	}
	return entries
}

// Find returns the entries at level whose message equals msg.
func (b *LogBuffer) Find(level zerolog.Level, msg string) []map[string]any {
	var out []map[string]any
	for _, e := range b.Entries() {
		if e[zerolog.LevelFieldName] == level.String() && e[zerolog.MessageFieldName] == msg {
			out = append(out, e)
		}
	}
	return out
}

// NewLogger returns a debug-level logger writing into a fresh buffer.
func NewLogger() (zerolog.Logger, *LogBuffer) {
	buf := &LogBuffer{}
	return zerolog.New(buf).Level(zerolog.DebugLevel), buf
}
