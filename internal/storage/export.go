package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/sim"
)

type ExportData struct {
	Scene     string             `json:"scene"`
	FrameRate float64            `json:"frame_rate"`
	Duration  float64            `json:"duration"`
	Seed      int64              `json:"seed"`
	Frames    int                `json:"frames"`
	Bodies    []string           `json:"bodies"`
	Times     []float64          `json:"times"`
	Hz        []int              `json:"hz"`
	Contacts  []int              `json:"contacts"`
	Positions [][][3]float64     `json:"positions"`
	Metrics   map[string]float64 `json:"metrics"`
}

func newExport(cfg *config.Config, result *sim.Result) ExportData {
	data := ExportData{
		Scene:     cfg.Scene,
		FrameRate: cfg.FrameRate,
		Duration:  cfg.Duration,
		Seed:      cfg.Seed,
		Frames:    result.Frames,
		Bodies:    result.Bodies,
		Times:     result.Times,
		Hz:        result.Hz,
		Contacts:  result.Contacts,
		Positions: make([][][3]float64, len(result.Positions)),
		Metrics:   result.Metrics,
	}
	for i, frame := range result.Positions {
		data.Positions[i] = vecs(frame)
	}
	return data
}

func vecs(vs []mgl64.Vec3) [][3]float64 {
	out := make([][3]float64, len(vs))
	for i, v := range vs {
		out[i] = v
	}
	return out
}

func WriteJSON(w io.Writer, cfg *config.Config, result *sim.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(newExport(cfg, result))
}

func ExportJSON(path string, cfg *config.Config, result *sim.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, cfg, result)
}
