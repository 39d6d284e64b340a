package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/sim"
)

const (
	metadataFile = "metadata.json"
	framesFile   = "frames.csv"
	frameColumns = 5
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Scene      string             `json:"scene"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Count      int                `json:"count"`
	FrameRate  float64            `json:"frame_rate"`
	Duration   float64            `json:"duration"`
	Iterations int                `json:"iterations"`
	BroadPhase bool               `json:"broad_phase"`
	Frames     int                `json:"frames"`
	Bodies     []string           `json:"bodies"`
	Metrics    map[string]float64 `json:"metrics"`
	Errors     []string           `json:"errors,omitempty"`
}

// Save writes metadata.json and frames.csv into a new run directory and
// returns the run ID.
func (s *Store) Save(cfg *config.Config, result *sim.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", cfg.Scene, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Scene:      cfg.Scene,
		Timestamp:  now,
		Seed:       cfg.Seed,
		Count:      cfg.Count,
		FrameRate:  cfg.FrameRate,
		Duration:   cfg.Duration,
		Iterations: cfg.Physics.Iterations,
		BroadPhase: cfg.Physics.UseBroadPhase,
		Frames:     result.Frames,
		Bodies:     result.Bodies,
		Metrics:    result.Metrics,
	}
	for _, err := range result.Errors {
		meta.Errors = append(meta.Errors, err.Error())
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeFrames(filepath.Join(runDir, framesFile), result); err != nil {
		return "", err
	}
	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeFrames(path string, result *sim.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := []string{"time", "hz", "substeps", "contacts", "detections"}
	for _, name := range result.Bodies {
		header = append(header, name+"_x", name+"_y", name+"_z")
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i := range result.Times {
		row := []string{
			formatFloat(result.Times[i]),
			strconv.Itoa(result.Hz[i]),
			strconv.Itoa(result.SubSteps[i]),
			strconv.Itoa(result.Contacts[i]),
			strconv.Itoa(result.Detections[i]),
		}
		for _, p := range result.Positions[i] {
			row = append(row, formatFloat(p[0]), formatFloat(p[1]), formatFloat(p[2]))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// List returns the stored runs, newest first. Directories without readable
// metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadFrames reads frames.csv back into a Result. Metrics and errors live
// in the metadata and are not filled in.
func (s *Store) LoadFrames(runID string) (*sim.Result, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, framesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", framesFile, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: missing header", framesFile)
	}

	header := records[0]
	if len(header) < frameColumns || (len(header)-frameColumns)%3 != 0 {
		return nil, fmt.Errorf("%s: malformed header %v", framesFile, header)
	}
	bodies := make([]string, 0, (len(header)-frameColumns)/3)
	for i := frameColumns; i < len(header); i += 3 {
		name := header[i]
		bodies = append(bodies, name[:len(name)-2])
	}

	result := &sim.Result{Bodies: bodies}
	for line, record := range records[1:] {
		vals := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: %w", framesFile, line+2, err)
			}
			vals[j] = v
		}

		result.Times = append(result.Times, vals[0])
		result.Hz = append(result.Hz, int(vals[1]))
		result.SubSteps = append(result.SubSteps, int(vals[2]))
		result.Contacts = append(result.Contacts, int(vals[3]))
		result.Detections = append(result.Detections, int(vals[4]))

		positions := make([]mgl64.Vec3, len(bodies))
		for b := range bodies {
			k := frameColumns + 3*b
			positions[b] = mgl64.Vec3{vals[k], vals[k+1], vals[k+2]}
		}
		result.Positions = append(result.Positions, positions)
		result.Frames++
	}
	return result, nil
}
