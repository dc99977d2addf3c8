package submissions

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// JSONLArchive appends each record as one JSON line to a per-day file under
// dir, e.g. dir/2025-06-01.log. It mirrors the flat-file store the contact
// form used before the relational backend and doubles as an offline audit
// trail.
type JSONLArchive struct {
	mu  sync.Mutex
	dir string
}

func NewJSONLArchive(dir string) (*JSONLArchive, error) {
	if err := os.MkdirAll(dir, 0o775); err != nil {
		return nil, fmt.Errorf("creating archive dir: %w", err)
	}
	return &JSONLArchive{dir: dir}, nil
}

type archiveLine struct {
	TS      string `json:"ts"`
	Kind    string `json:"kind"`
	IP      string `json:"ip"`
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Subject string `json:"subject,omitempty"`
	Body    string `json:"body"`
	UA      string `json:"ua,omitempty"`
}

func (a *JSONLArchive) Archive(record *Record) error {
	line, err := json.Marshal(archiveLine{
		TS:      record.CreatedAt.UTC().Format(time.RFC3339),
		Kind:    string(record.Kind),
		IP:      record.SourceIP,
		Name:    record.Name,
		Email:   record.Email,
		Subject: record.Subject,
		Body:    record.Body,
		UA:      record.UserAgent,
	})
	if err != nil {
		return err
	}

	path := filepath.Join(a.dir, record.CreatedAt.UTC().Format("2006-01-02")+".log")

	a.mu.Lock()
	defer a.mu.Unlock()

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(append(line, '\n'))
	return err
}
