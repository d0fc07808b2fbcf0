// Package runfile is the single-slot durable storage that lets an active
// run survive a process restart. One file per device, written on start,
// deleted on every return to idle.
package runfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sadopc/focusflow/internal/timer"
)

type File struct {
	path string
}

func New(path string) *File {
	return &File{path: path}
}

// Get reads the slot. A missing file means no active run; an unparsable
// one is cleared and reported the same way.
func (f *File) Get() (timer.RunState, bool, error) {
	payload, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return timer.RunState{}, false, nil
		}
		return timer.RunState{}, false, fmt.Errorf("read run state: %w", err)
	}

	var rs timer.RunState
	if err := json.Unmarshal(payload, &rs); err != nil {
		os.Remove(f.path)
		return timer.RunState{}, false, nil
	}
	return rs, true, nil
}

func (f *File) Set(rs timer.RunState) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create run state dir: %w", err)
	}
	payload, err := json.MarshalIndent(rs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal run state: %w", err)
	}
	if err := os.WriteFile(f.path, payload, 0o644); err != nil {
		return fmt.Errorf("write run state: %w", err)
	}
	return nil
}

func (f *File) Delete() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear run state: %w", err)
	}
	return nil
}

// Memory is an in-memory slot for tests.
type Memory struct {
	rs timer.RunState
	ok bool
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Get() (timer.RunState, bool, error) {
	return m.rs, m.ok, nil
}

func (m *Memory) Set(rs timer.RunState) error {
	m.rs = rs
	m.ok = true
	return nil
}

func (m *Memory) Delete() error {
	m.rs = timer.RunState{}
	m.ok = false
	return nil
}
