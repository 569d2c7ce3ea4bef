package stats

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"theoryea/internal/model"
)

const (
	runIndexFile = "run_index.json"
	traceSuffix  = ".trace.csv"
)

var traceHeader = []string{"generation", "evaluations", "best_fitness", "lambda"}

// RunSummary is the results file written for each run.
type RunSummary struct {
	Run            model.RunRecord `json:"run"`
	Optimum        *float64        `json:"optimum,omitempty"`
	ReachedOptimum bool            `json:"reached_optimum"`
}

type RunArtifacts struct {
	Run   model.RunRecord
	Trace []model.TracePoint
	// Optimum is set when the instance has a known optimum.
	Optimum *float64
}

type RunIndexEntry struct {
	RunID        string  `json:"run_id"`
	Problem      string  `json:"problem"`
	ProblemFile  string  `json:"problem_file"`
	Algorithm    string  `json:"algorithm"`
	Seed         int64   `json:"seed"`
	BestFitness  float64 `json:"best_fitness"`
	Evaluations  int     `json:"evaluations"`
	ResultsPath  string  `json:"results_path"`
	CreatedAtUTC string  `json:"created_at_utc"`
}

// SummaryPath is the results file of testFile inside folder.
func SummaryPath(folder, testFile string) string {
	return filepath.Join(folder, testFile)
}

// TracePath is the convergence trace file next to the results file.
func TracePath(folder, testFile string) string {
	return filepath.Join(folder, testFile+traceSuffix)
}

// ClaimTestFile reserves a results file name for runID inside folder and
// returns it. The plain test file name is used while it is free; once taken,
// the run id is appended so earlier runs are never overwritten. Creation is
// exclusive, so concurrent runs never share a name.
func ClaimTestFile(folder, testFile, runID string) (string, error) {
	if testFile == "" || runID == "" {
		return "", fmt.Errorf("test file name and run id are required")
	}
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return "", err
	}
	for _, name := range []string{testFile, testFile + "." + runID} {
		f, err := os.OpenFile(SummaryPath(folder, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return name, f.Close()
		}
		if !os.IsExist(err) {
			return "", err
		}
	}
	return "", fmt.Errorf("results file for run %s already exists in %s", runID, folder)
}

// WriteRunArtifacts writes the summary and the trace of one run into folder
// and returns the summary path.
func WriteRunArtifacts(folder, testFile string, artifacts RunArtifacts) (string, error) {
	if testFile == "" {
		return "", fmt.Errorf("test file name is required")
	}
	if artifacts.Run.ID == "" {
		return "", fmt.Errorf("run id is required")
	}
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return "", err
	}

	summary := RunSummary{Run: artifacts.Run, Optimum: artifacts.Optimum}
	if artifacts.Optimum != nil {
		summary.ReachedOptimum = artifacts.Run.BestFitness >= *artifacts.Optimum
	}
	path := SummaryPath(folder, testFile)
	if err := writeJSON(path, summary); err != nil {
		return "", err
	}
	if err := WriteTrace(TracePath(folder, testFile), artifacts.Trace); err != nil {
		return "", err
	}
	return path, nil
}

func ReadRunSummary(path string) (RunSummary, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return RunSummary{}, false, nil
		}
		return RunSummary{}, false, err
	}
	var summary RunSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return RunSummary{}, false, err
	}
	return summary, true, nil
}

func WriteTrace(path string, trace []model.TracePoint) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(traceHeader); err != nil {
		return err
	}
	for _, point := range trace {
		if err := writer.Write([]string{
			strconv.Itoa(point.Generation),
			strconv.Itoa(point.Evaluations),
			strconv.FormatFloat(point.BestFitness, 'g', -1, 64),
			strconv.FormatFloat(point.Lambda, 'g', -1, 64),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func ReadTrace(path string) ([]model.TracePoint, bool, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = len(traceHeader)
	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return []model.TracePoint{}, true, nil
		}
		return nil, false, err
	}

	trace := make([]model.TracePoint, 0, 128)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, false, err
		}
		var point model.TracePoint
		if point.Generation, err = strconv.Atoi(record[0]); err != nil {
			return nil, false, err
		}
		if point.Evaluations, err = strconv.Atoi(record[1]); err != nil {
			return nil, false, err
		}
		if point.BestFitness, err = strconv.ParseFloat(record[2], 64); err != nil {
			return nil, false, err
		}
		if point.Lambda, err = strconv.ParseFloat(record[3], 64); err != nil {
			return nil, false, err
		}
		trace = append(trace, point)
	}
	return trace, true, nil
}

func AppendRunIndex(baseDir string, entry RunIndexEntry) error {
	if entry.RunID == "" {
		return fmt.Errorf("run id is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return err
	}

	index, err := ListRunIndex(baseDir)
	if err != nil {
		return err
	}

	for i := range index {
		if index[i].RunID == entry.RunID {
			index[i] = entry
			return writeJSON(filepath.Join(baseDir, runIndexFile), index)
		}
	}

	index = append(index, entry)
	return writeJSON(filepath.Join(baseDir, runIndexFile), index)
}

// ListRunIndex returns index entries newest first.
func ListRunIndex(baseDir string) ([]RunIndexEntry, error) {
	path := filepath.Join(baseDir, runIndexFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunIndexEntry{}, nil
		}
		return nil, err
	}

	var entries []RunIndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	type indexedEntry struct {
		entry RunIndexEntry
		idx   int
	}
	indexed := make([]indexedEntry, len(entries))
	for i := range entries {
		indexed[i] = indexedEntry{entry: entries[i], idx: i}
	}
	sort.Slice(indexed, func(i, j int) bool {
		if indexed[i].entry.CreatedAtUTC == indexed[j].entry.CreatedAtUTC {
			// Prefer later appended entries for equal timestamps.
			return indexed[i].idx > indexed[j].idx
		}
		return indexed[i].entry.CreatedAtUTC > indexed[j].entry.CreatedAtUTC
	})

	sorted := make([]RunIndexEntry, 0, len(indexed))
	for _, item := range indexed {
		sorted = append(sorted, item.entry)
	}
	return sorted, nil
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}
