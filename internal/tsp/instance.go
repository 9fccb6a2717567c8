// Package tsp reads TSPLIB instances and scores tours against them.
package tsp

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	DefaultType           = "TSP"
	DefaultEdgeWeightType = "EUC_2D"

	coordSectionMarker = "NODE_COORD_SECTION"
	eofMarker          = "EOF"
)

type Coordinate struct {
	ID int     `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// Instance is a parsed TSPLIB problem. It is immutable once built.
type Instance struct {
	Name           string
	Type           string
	Comment        string
	Dimension      int
	EdgeWeightType string
	Coordinates    []Coordinate
	DistanceMatrix [][]float64
	OriginalText   string
}

// ParseTSPLIB reads a TSPLIB text with a NODE_COORD_SECTION.
//
// Header lines before the coordinate section are matched by key; unknown keys
// are ignored. Coordinate lines with fewer than three fields, or with fields
// that are not numbers, are skipped rather than rejected. Reading stops at EOF.
func ParseTSPLIB(raw string) (*Instance, error) {
	inst := &Instance{
		Type:           DefaultType,
		EdgeWeightType: DefaultEdgeWeightType,
		OriginalText:   raw,
	}

	inCoordSection := false
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == eofMarker {
			break
		}
		if line == coordSectionMarker {
			inCoordSection = true
			continue
		}

		if !inCoordSection {
			parseHeaderLine(inst, line)
			continue
		}

		if c, ok := parseCoordinateLine(line); ok {
			inst.Coordinates = append(inst.Coordinates, c)
		}
	}

	if inst.Name == "" || inst.Dimension == 0 || len(inst.Coordinates) == 0 {
		return nil, fmt.Errorf("%w: missing required fields", ErrInvalidFormat)
	}
	if len(inst.Coordinates) != inst.Dimension {
		return nil, fmt.Errorf("%w: expected %d, got %d coordinates", ErrDimensionMismatch, inst.Dimension, len(inst.Coordinates))
	}

	inst.DistanceMatrix = euclideanMatrix(inst.Coordinates)
	return inst, nil
}

func parseHeaderLine(inst *Instance, line string) {
	key, value, ok := strings.Cut(line, ":")
	if !ok {
		return
	}
	value = strings.TrimSpace(value)
	switch strings.TrimSpace(key) {
	case "NAME":
		inst.Name = value
	case "TYPE":
		inst.Type = value
	case "COMMENT":
		inst.Comment = value
	case "DIMENSION":
		fields := strings.Fields(value)
		if len(fields) > 0 {
			if n, err := strconv.Atoi(fields[0]); err == nil && n > 0 {
				inst.Dimension = n
			}
		}
	case "EDGE_WEIGHT_TYPE":
		inst.EdgeWeightType = value
	}
}

func parseCoordinateLine(line string) (Coordinate, bool) {
	parts := strings.Fields(line)
	if len(parts) < 3 {
		return Coordinate{}, false
	}
	id, err := strconv.Atoi(parts[0])
	if err != nil {
		return Coordinate{}, false
	}
	x, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return Coordinate{}, false
	}
	y, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return Coordinate{}, false
	}
	return Coordinate{ID: id, X: x, Y: y}, true
}

// euclideanMatrix builds the EUC_2D matrix with every entry rounded to two
// decimals. Only the upper triangle is computed; the lower one mirrors it.
func euclideanMatrix(coords []Coordinate) [][]float64 {
	n := len(coords)
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dx := coords[i].X - coords[j].X
			dy := coords[i].Y - coords[j].Y
			d := Round2(math.Sqrt(dx*dx + dy*dy))
			m[i][j] = d
			m[j][i] = d
		}
	}
	return m
}

// Round2 rounds v to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
