package poller

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// LoadRegistry reads the camera registry from a CSV file. The file must have
// a header row with at least a CameraID column; Latitude, Longitude, and
// ImageEndpoint columns are optional. Row order is preserved and is the
// order cameras are polled within a cycle.
//
// An unreadable file, a missing CameraID column, a duplicate id, or a file
// with no usable rows all fail the load.
func LoadRegistry(path string, logger *zap.Logger) ([]Camera, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open camera registry %s: %w", path, err)
	}
	defer f.Close()

	cameras, err := readRegistry(f, logger)
	if err != nil {
		return nil, fmt.Errorf("camera registry %s: %w", path, err)
	}
	return cameras, nil
}

func readRegistry(r io.Reader, logger *zap.Logger) ([]Camera, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	idCol, ok := columns["CameraID"]
	if !ok {
		return nil, fmt.Errorf("missing required CameraID column")
	}

	var cameras []Camera
	seen := make(map[string]struct{})
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		id := strings.TrimSpace(row[idCol])
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("duplicate camera id %q", id)
		}
		seen[id] = struct{}{}

		cam := Camera{ID: id}
		cam.ImageEndpoint = cell(row, columns, "ImageEndpoint")
		cam.Latitude = parseCoordinate(cell(row, columns, "Latitude"), id, "latitude", logger)
		cam.Longitude = parseCoordinate(cell(row, columns, "Longitude"), id, "longitude", logger)
		cameras = append(cameras, cam)
	}

	if len(cameras) == 0 {
		return nil, fmt.Errorf("no camera entries found")
	}
	return cameras, nil
}

func cell(row []string, columns map[string]int, name string) string {
	i, ok := columns[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// parseCoordinate tolerates malformed coordinates: they are metadata only, so
// a bad value degrades to nil with a warning instead of failing the load.
func parseCoordinate(value, cameraID, field string, logger *zap.Logger) *float64 {
	if value == "" {
		return nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		logger.Warn("invalid camera coordinate ignored",
			zap.String("camera_id", cameraID),
			zap.String("field", field),
			zap.String("value", value),
		)
		return nil
	}
	return &parsed
}
