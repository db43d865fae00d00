package formats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// PLY format errors.
var (
	ErrInvalidPLYMagic      = errors.New("invalid PLY magic: expected 'ply'")
	ErrUnsupportedPLYFormat = errors.New("unsupported PLY format")
	ErrTruncatedPLYData     = errors.New("truncated PLY data")
	ErrMalformedPLYData     = errors.New("malformed PLY data")
)

// PLY is a parsed polygon file reduced to what the renderer consumes.
type PLY struct {
	// Vertices holds the first three properties of every vertex element (x, y, z).
	Vertices [][3]float32
	// Indices holds triangle corners, three per triangle.
	// Polygons with more than three corners are fan-triangulated.
	Indices []uint32
	// Comments collects header comment lines.
	Comments []string
}

// TriangleCount returns the number of triangles.
func (p *PLY) TriangleCount() int {
	return len(p.Indices) / 3
}

type plyHeader struct {
	vertexCount    int
	vertexProps    int
	faceCount      int
	faceBeforeVert bool
}

// ParsePLY parses ASCII PLY data.
func ParsePLY(data []byte) (*PLY, error) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !sc.Scan() || strings.TrimSpace(sc.Text()) != "ply" {
		return nil, ErrInvalidPLYMagic
	}

	ply := &PLY{}
	hdr, err := parsePLYHeader(sc, ply)
	if err != nil {
		return nil, err
	}
	if hdr.faceBeforeVert {
		return nil, fmt.Errorf("%w: face element declared before vertex element", ErrUnsupportedPLYFormat)
	}

	ply.Vertices = make([][3]float32, 0, hdr.vertexCount)
	ply.Indices = make([]uint32, 0, hdr.faceCount*3)

	for i := 0; i < hdr.vertexCount; i++ {
		fields, err := nextPLYLine(sc)
		if err != nil {
			return nil, fmt.Errorf("vertex %d: %w", i, err)
		}
		if len(fields) < 3 {
			return nil, fmt.Errorf("%w: vertex %d has %d values", ErrMalformedPLYData, i, len(fields))
		}
		var v [3]float32
		for c := 0; c < 3; c++ {
			f, err := strconv.ParseFloat(fields[c], 32)
			if err != nil {
				return nil, fmt.Errorf("%w: vertex %d: %v", ErrMalformedPLYData, i, err)
			}
			v[c] = float32(f)
		}
		ply.Vertices = append(ply.Vertices, v)
	}

	for i := 0; i < hdr.faceCount; i++ {
		fields, err := nextPLYLine(sc)
		if err != nil {
			return nil, fmt.Errorf("face %d: %w", i, err)
		}
		corners, err := parsePLYFace(fields)
		if err != nil {
			return nil, fmt.Errorf("face %d: %w", i, err)
		}
		// Fan triangulation: (0, k, k+1)
		for k := 1; k+1 < len(corners); k++ {
			ply.Indices = append(ply.Indices, corners[0], corners[k], corners[k+1])
		}
	}

	return ply, nil
}

// ParsePLYFile reads and parses a PLY file from disk.
func ParsePLYFile(path string) (*PLY, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading PLY file: %w", err)
	}
	return ParsePLY(data)
}

func parsePLYHeader(sc *bufio.Scanner, ply *PLY) (plyHeader, error) {
	var hdr plyHeader
	current := ""
	sawFormat := false
	sawVertex := false

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "format":
			if len(fields) < 2 || fields[1] != "ascii" {
				return hdr, fmt.Errorf("%w: %s", ErrUnsupportedPLYFormat, line)
			}
			sawFormat = true
		case "comment", "obj_info":
			ply.Comments = append(ply.Comments, strings.TrimSpace(strings.TrimPrefix(line, fields[0])))
		case "element":
			if len(fields) < 3 {
				return hdr, fmt.Errorf("%w: %s", ErrMalformedPLYData, line)
			}
			n, err := strconv.Atoi(fields[2])
			if err != nil || n < 0 {
				return hdr, fmt.Errorf("%w: element count %q", ErrMalformedPLYData, fields[2])
			}
			current = fields[1]
			switch current {
			case "vertex":
				hdr.vertexCount = n
				sawVertex = true
			case "face":
				hdr.faceCount = n
				hdr.faceBeforeVert = !sawVertex
			default:
				if n > 0 {
					return hdr, fmt.Errorf("%w: element %q", ErrUnsupportedPLYFormat, current)
				}
			}
		case "property":
			if current == "vertex" {
				hdr.vertexProps++
			}
		case "end_header":
			if !sawFormat {
				return hdr, fmt.Errorf("%w: missing format line", ErrUnsupportedPLYFormat)
			}
			if hdr.vertexCount > 0 && hdr.vertexProps < 3 {
				return hdr, fmt.Errorf("%w: vertex element needs x y z", ErrMalformedPLYData)
			}
			return hdr, nil
		}
	}
	if err := sc.Err(); err != nil {
		return hdr, err
	}
	return hdr, fmt.Errorf("%w: missing end_header", ErrTruncatedPLYData)
}

// nextPLYLine returns the fields of the next non-empty body line.
func nextPLYLine(sc *bufio.Scanner) ([]string, error) {
	for sc.Scan() {
		if fields := strings.Fields(sc.Text()); len(fields) > 0 {
			return fields, nil
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return nil, ErrTruncatedPLYData
}

func parsePLYFace(fields []string) ([]uint32, error) {
	n, err := strconv.Atoi(fields[0])
	if err != nil || n < 0 {
		return nil, fmt.Errorf("%w: corner count %q", ErrMalformedPLYData, fields[0])
	}
	if len(fields) < n+1 {
		return nil, fmt.Errorf("%w: expected %d corners, got %d", ErrMalformedPLYData, n, len(fields)-1)
	}
	corners := make([]uint32, n)
	for k := 0; k < n; k++ {
		idx, err := strconv.ParseUint(fields[k+1], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: corner %d: %v", ErrMalformedPLYData, k, err)
		}
		corners[k] = uint32(idx)
	}
	return corners, nil
}
