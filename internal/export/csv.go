package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/focusflow/internal/store"
)

func ToCSV(sessions []store.Session, groups map[string]*store.Group, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"ID", "Group", "User", "Category", "Day", "Minutes", "Completed", "Recorded At"}); err != nil {
		return err
	}

	for _, se := range sessions {
		groupName := "Unknown"
		if g, ok := groups[se.GroupID]; ok {
			groupName = g.Name
		}
		completed := "no"
		if se.Completed {
			completed = "yes"
		}

		row := []string{
			fmt.Sprintf("%d", se.ID),
			groupName,
			se.UserID,
			se.Category,
			se.DayKey,
			fmt.Sprintf("%d", se.Duration),
			completed,
			se.RecordedAt.Local().Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}
