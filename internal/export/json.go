package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/focusflow/internal/store"
)

type jsonExport struct {
	ExportedAt string        `json:"exported_at"`
	Count      int           `json:"count"`
	Sessions   []jsonSession `json:"sessions"`
}

type jsonSession struct {
	ID         int64  `json:"id"`
	Group      string `json:"group"`
	GroupID    string `json:"group_id"`
	UserID     string `json:"user_id"`
	Category   string `json:"category"`
	DayKey     string `json:"day_key"`
	Minutes    int    `json:"minutes"`
	Completed  bool   `json:"completed"`
	RecordedAt string `json:"recorded_at,omitempty"`
}

func ToJSON(sessions []store.Session, groups map[string]*store.Group, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(sessions),
	}

	for _, se := range sessions {
		groupName := "Unknown"
		if g, ok := groups[se.GroupID]; ok {
			groupName = g.Name
		}
		recordedAt := ""
		if !se.RecordedAt.IsZero() {
			recordedAt = se.RecordedAt.Local().Format(time.RFC3339)
		}

		export.Sessions = append(export.Sessions, jsonSession{
			ID:         se.ID,
			Group:      groupName,
			GroupID:    se.GroupID,
			UserID:     se.UserID,
			Category:   se.Category,
			DayKey:     se.DayKey,
			Minutes:    se.Duration,
			Completed:  se.Completed,
			RecordedAt: recordedAt,
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
