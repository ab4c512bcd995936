package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sdejongh/syncreplica/pkg/models"
)

// DifferencesReport is the result of a read-only comparison of two trees
type DifferencesReport struct {
	SourcePath  string
	ReplicaPath string
	Differences []models.Difference
}

// WriteDifferencesReport writes the differences report to a file.
// Format can be "human" or "json".
func WriteDifferencesReport(report *DifferencesReport, filepath string, format string) error {
	file, err := os.Create(filepath)
	if err != nil {
		return fmt.Errorf("failed to create differences file: %w", err)
	}
	defer file.Close()

	return WriteDifferences(report, file, format)
}

// WriteDifferences writes the differences report to w
func WriteDifferences(report *DifferencesReport, w io.Writer, format string) error {
	switch format {
	case "json":
		return writeDifferencesJSON(report, w)
	default: // "human"
		return writeDifferencesHuman(report, w)
	}
}

// writeDifferencesHuman writes differences grouped by pending action
func writeDifferencesHuman(report *DifferencesReport, w io.Writer) error {
	fmt.Fprintf(w, "Differences Report\n")
	fmt.Fprintf(w, "==================\n\n")
	fmt.Fprintf(w, "Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(w, "Source: %s\n", report.SourcePath)
	fmt.Fprintf(w, "Replica: %s\n\n", report.ReplicaPath)

	if len(report.Differences) == 0 {
		fmt.Fprintf(w, "Replica is in sync.\n")
		return nil
	}

	fmt.Fprintf(w, "Total Differences: %d\n\n", len(report.Differences))

	byAction := make(map[models.Action][]models.Difference)
	for _, diff := range report.Differences {
		byAction[diff.Action] = append(byAction[diff.Action], diff)
	}

	actionOrder := []models.Action{
		models.ActionCreate,
		models.ActionModify,
		models.ActionReplace,
		models.ActionDelete,
	}

	actionLabels := map[models.Action]string{
		models.ActionCreate:  "Only in Source",
		models.ActionModify:  "Content Differences",
		models.ActionReplace: "Type Conflicts",
		models.ActionDelete:  "Only in Replica",
	}

	for _, action := range actionOrder {
		diffs := byAction[action]
		if len(diffs) == 0 {
			continue
		}

		label := fmt.Sprintf("%s (%d entries)", actionLabels[action], len(diffs))
		fmt.Fprintf(w, "%s\n", label)
		fmt.Fprintf(w, "%s\n", strings.Repeat("-", len(label)))

		for _, diff := range diffs {
			name := diff.RelativePath
			if diff.Kind == models.KindDirectory {
				name += "/"
			}
			fmt.Fprintf(w, "  %s\n", name)
			if diff.Details != "" {
				fmt.Fprintf(w, "    Details: %s\n", diff.Details)
			}
		}

		fmt.Fprintf(w, "\n")
	}

	return nil
}

// writeDifferencesJSON writes differences in JSON format
func writeDifferencesJSON(report *DifferencesReport, w io.Writer) error {
	differences := report.Differences
	if differences == nil {
		differences = []models.Difference{}
	}

	output := struct {
		Generated   string              `json:"generated"`
		SourcePath  string              `json:"source_path"`
		ReplicaPath string              `json:"replica_path"`
		TotalCount  int                 `json:"total_count"`
		Differences []models.Difference `json:"differences"`
	}{
		Generated:   time.Now().Format(time.RFC3339),
		SourcePath:  report.SourcePath,
		ReplicaPath: report.ReplicaPath,
		TotalCount:  len(differences),
		Differences: differences,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
