package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/azhan137/FMM-tutorial/internal/fmm"
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
	ID           string             `json:"id"`
	Distribution string             `json:"distribution"`
	Timestamp    time.Time          `json:"timestamp"`
	Seed         int64              `json:"seed"`
	Particles    int                `json:"particles"`
	NCrit        int                `json:"n_crit"`
	Cells        int                `json:"cells"`
	Parallel     bool               `json:"parallel"`
	Workers      int                `json:"workers"`
	ElapsedMS    float64            `json:"elapsed_ms"`
	Metrics      map[string]float64 `json:"metrics"`
}

// ProbeSample is one far-field comparison point: the multipole
// approximation against direct summation at a given distance from the
// root center, in units of root radii.
type ProbeSample struct {
	Distance float64
	Approx   float64
	Exact    float64
	RelError float64
}

// Save persists a run: metadata.json, the full moment table as
// moments.csv, and probes.csv when far-field samples were taken.
// Returns the generated run ID.
func (s *Store) Save(meta RunMetadata, cells []fmm.Cell, probes []ProbeSample) (string, error) {
	runID := fmt.Sprintf("%s_%d", meta.Distribution, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = time.Now()
	meta.Cells = len(cells)

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if err := s.writeMoments(filepath.Join(runDir, "moments.csv"), cells); err != nil {
		return "", err
	}

	if len(probes) > 0 {
		if err := s.writeProbes(filepath.Join(runDir, "probes.csv"), probes); err != nil {
			return "", err
		}
	}

	return runID, nil
}

func (s *Store) writeMoments(path string, cells []fmm.Cell) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"cell", "parent", "leaf", "x", "y", "z", "r"}
	for i := 0; i < fmm.Coeffs; i++ {
		header = append(header, fmt.Sprintf("m%d", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i := range cells {
		c := &cells[i]
		row := []string{
			strconv.Itoa(i),
			strconv.Itoa(c.Parent),
			strconv.FormatBool(c.IsLeaf()),
			formatF(c.X), formatF(c.Y), formatF(c.Z), formatF(c.R),
		}
		for _, m := range c.Multipole {
			row = append(row, formatF(m))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) writeProbes(path string, probes []ProbeSample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"distance", "approx", "exact", "rel_error"}); err != nil {
		return err
	}
	for _, p := range probes {
		row := []string{formatF(p.Distance), formatF(p.Approx), formatF(p.Exact), formatF(p.RelError)}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func formatF(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

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

		metaPath := filepath.Join(s.baseDir, entry.Name(), "metadata.json")
		data, err := os.ReadFile(metaPath)
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}

		runs = append(runs, meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadProbes reads the far-field samples stored for a run.
func (s *Store) LoadProbes(runID string) ([]ProbeSample, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "probes.csv"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	probes := make([]ProbeSample, 0, len(records))
	for i := 1; i < len(records); i++ {
		rec := records[i]
		if len(rec) < 4 {
			continue
		}
		d, err1 := strconv.ParseFloat(rec[0], 64)
		a, err2 := strconv.ParseFloat(rec[1], 64)
		e, err3 := strconv.ParseFloat(rec[2], 64)
		re, err4 := strconv.ParseFloat(rec[3], 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			continue
		}
		probes = append(probes, ProbeSample{Distance: d, Approx: a, Exact: e, RelError: re})
	}
	return probes, nil
}
