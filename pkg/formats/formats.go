// Package formats provides parsers for mesh file formats.
package formats

// Note: PLY (Polygon File Format, ASCII encoding) is implemented in ply.go
