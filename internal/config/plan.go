// Package config loads export plans: the synthetic host to run and the
// exports to attach to it.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ibal-unist/picdump/internal/export/field"
	"github.com/ibal-unist/picdump/internal/export/pointcloud"
)

// DefaultSteps is how many steps a plan runs when it does not say.
const DefaultSteps = 100

const maxFileSize = 1 * 1024 * 1024 // 1MB

// Plan is the root of an export plan file.
type Plan struct {
	// Steps is the number of host steps to run.
	Steps *int `json:"steps,omitempty" yaml:"steps,omitempty"`
	// Root is the directory all output directories are relative to.
	Root string `json:"root,omitempty" yaml:"root,omitempty"`
	// Catalog is an optional sqlite file recording every written file.
	Catalog string `json:"catalog,omitempty" yaml:"catalog,omitempty"`
	Note    string `json:"note,omitempty" yaml:"note,omitempty"`

	Host        HostPlan         `json:"host" yaml:"host"`
	Fields      []FieldPlan      `json:"fields,omitempty" yaml:"fields,omitempty"`
	Crossings   []CrossingPlan   `json:"crossings,omitempty" yaml:"crossings,omitempty"`
	Snapshots   []SnapshotPlan   `json:"snapshots,omitempty" yaml:"snapshots,omitempty"`
	PointClouds []PointCloudPlan `json:"point_clouds,omitempty" yaml:"point_clouds,omitempty"`
}

// AxisPlan is one grid dimension.
type AxisPlan struct {
	Cells int     `json:"cells" yaml:"cells"`
	Delta float64 `json:"delta" yaml:"delta"`
	Min   float64 `json:"min" yaml:"min"`
}

// HostPlan configures the synthetic host.
type HostPlan struct {
	X  AxisPlan `json:"x" yaml:"x"`
	Y  AxisPlan `json:"y" yaml:"y"`
	Z  AxisPlan `json:"z" yaml:"z"`
	Dt float64  `json:"dt" yaml:"dt"`
	// PotentialV0 is the potential at zmin; it falls linearly to 0 at zmax.
	PotentialV0 float64    `json:"potential_v0" yaml:"potential_v0"`
	Species     []BeamPlan `json:"species,omitempty" yaml:"species,omitempty"`
}

// BeamPlan is one synthetic beam species.
type BeamPlan struct {
	Name     string  `json:"name" yaml:"name"`
	Count    int     `json:"count" yaml:"count"`
	Seed     uint64  `json:"seed" yaml:"seed"`
	Radius   float64 `json:"radius" yaml:"radius"`
	Z0       float64 `json:"z0" yaml:"z0"`
	VZ       float64 `json:"vz" yaml:"vz"`
	VZSpread float64 `json:"vz_spread" yaml:"vz_spread"`
	VTSpread float64 `json:"vt_spread" yaml:"vt_spread"`
}

// OutputPlan is shared by every export entry.
type OutputPlan struct {
	Dir       string `json:"dir,omitempty" yaml:"dir,omitempty"`
	Prefix    string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Delimiter string `json:"delimiter,omitempty" yaml:"delimiter,omitempty"`
}

// FieldPlan is one field export.
type FieldPlan struct {
	Selector   string `json:"selector" yaml:"selector"`
	Steps      []int  `json:"steps" yaml:"steps"`
	Fixed      [3]int `json:"fixed,omitempty" yaml:"fixed,omitempty"`
	Plot       bool   `json:"plot,omitempty" yaml:"plot,omitempty"`
	OutputPlan `yaml:",inline"`
}

// CrossingPlan is one crossing export.
type CrossingPlan struct {
	Z          []float64 `json:"z" yaml:"z"`
	FlushStep  int       `json:"flush_step" yaml:"flush_step"`
	Chart      bool      `json:"chart,omitempty" yaml:"chart,omitempty"`
	OutputPlan `yaml:",inline"`
}

// SnapshotPlan is one species snapshot export.
type SnapshotPlan struct {
	Species    string `json:"species" yaml:"species"`
	Steps      []int  `json:"steps" yaml:"steps"`
	OutputPlan `yaml:",inline"`
}

// PointCloudPlan is one point-cloud export.
type PointCloudPlan struct {
	Species    string `json:"species" yaml:"species"`
	Start      int    `json:"start" yaml:"start"`
	End        int    `json:"end" yaml:"end"`
	Interval   int    `json:"interval,omitempty" yaml:"interval,omitempty"`
	Format     string `json:"format,omitempty" yaml:"format,omitempty"`
	OutputPlan `yaml:",inline"`
}

// GetSteps returns Steps or DefaultSteps.
func (p *Plan) GetSteps() int {
	if p.Steps == nil {
		return DefaultSteps
	}
	return *p.Steps
}

// Load reads a plan from a .json, .yaml or .yml file and validates it.
func Load(path string) (*Plan, error) {
	cleanPath := filepath.Clean(path)
	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("plan file must have .json, .yaml or .yml extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat plan file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("plan file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}

	plan := &Plan{}
	if ext == ".json" {
		err = json.Unmarshal(data, plan)
	} else {
		err = yaml.Unmarshal(data, plan)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse plan %s: %w", cleanPath, err)
	}

	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("invalid plan: %w", err)
	}
	return plan, nil
}

// Validate checks the plan for problems that can be detected before the host
// is built. Exporter options are checked again when registered.
func (p *Plan) Validate() error {
	if p.Steps != nil && *p.Steps < 0 {
		return fmt.Errorf("steps must be non-negative, got %d", *p.Steps)
	}

	for i, a := range []AxisPlan{p.Host.X, p.Host.Y, p.Host.Z} {
		name := "xyz"[i : i+1]
		if a.Cells < 0 {
			return fmt.Errorf("host.%s.cells must be non-negative, got %d", name, a.Cells)
		}
		if a.Delta <= 0 {
			return fmt.Errorf("host.%s.delta must be positive, got %g", name, a.Delta)
		}
	}
	if p.Host.Dt <= 0 {
		return fmt.Errorf("host.dt must be positive, got %g", p.Host.Dt)
	}

	species := make(map[string]bool)
	for i, b := range p.Host.Species {
		if b.Name == "" {
			return fmt.Errorf("host.species[%d] has no name", i)
		}
		if species[b.Name] {
			return fmt.Errorf("host.species[%d]: duplicate name %q", i, b.Name)
		}
		if b.Count < 0 {
			return fmt.Errorf("host.species[%d]: count must be non-negative, got %d", i, b.Count)
		}
		species[b.Name] = true
	}

	for i, f := range p.Fields {
		if _, err := field.ParseSelector(f.Selector); err != nil {
			return fmt.Errorf("fields[%d]: %w", i, err)
		}
	}
	for i, c := range p.Crossings {
		if len(c.Z) == 0 {
			return fmt.Errorf("crossings[%d]: no z positions", i)
		}
	}
	for i, s := range p.Snapshots {
		if !species[s.Species] {
			return fmt.Errorf("snapshots[%d]: unknown species %q", i, s.Species)
		}
	}
	for i, pc := range p.PointClouds {
		if !species[pc.Species] {
			return fmt.Errorf("point_clouds[%d]: unknown species %q", i, pc.Species)
		}
		if _, err := pointcloud.ParseFormat(pc.Format); err != nil {
			return fmt.Errorf("point_clouds[%d]: %w", i, err)
		}
	}
	return nil
}
