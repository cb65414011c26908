package lifespan

import (
	"bytes"
	_ "embed" // bundled dataset
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/life-progress/internal/model"
)

//go:embed data/countries.csv
var bundledCSV []byte

// Format names a dataset encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

type record struct {
	Country string  `json:"country" yaml:"country"`
	All     float64 `json:"all" yaml:"all"`
	Male    float64 `json:"male" yaml:"male"`
	Female  float64 `json:"female" yaml:"female"`
}

// FormatFromPath infers the dataset format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported dataset extension %q (use .csv, .json, .yaml)", filepath.Ext(path))
	}
}

// Bundled returns the table shipped with the binary.
func Bundled() (*Table, error) {
	rows, err := Decode(bytes.NewReader(bundledCSV), FormatCSV)
	if err != nil {
		return nil, fmt.Errorf("failed to decode bundled dataset: %w", err)
	}
	return NewTable(rows)
}

// LoadFile decodes a dataset file into rows.
func LoadFile(path string) ([]Row, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only dataset.
			_ = cerr
		}
	}()
	return Decode(file, format)
}

// Decode reads rows in the given format. CSV input needs a header with the
// columns country, all, male and female in any order.
func Decode(r io.Reader, format Format) ([]Row, error) {
	var records []record
	switch format {
	case FormatCSV:
		var err error
		records, err = decodeCSV(r)
		if err != nil {
			return nil, err
		}
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&records); err != nil {
			return nil, fmt.Errorf("failed to decode json dataset: %w", err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&records); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to decode yaml dataset: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown dataset format %q", format)
	}

	rows := make([]Row, 0, len(records))
	for i, rec := range records {
		row, err := rec.toRow()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("dataset is empty")
	}
	return rows, nil
}

func decodeCSV(r io.Reader) ([]record, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	cols := map[string]int{}
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range []string{"country", "all", "male", "female"} {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("csv header missing %q column", name)
		}
	}

	var records []record
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}
		line, _ := reader.FieldPos(0)
		rec := record{Country: fields[cols["country"]]}
		for _, f := range []struct {
			name   string
			target *float64
		}{
			{"all", &rec.All},
			{"male", &rec.Male},
			{"female", &rec.Female},
		} {
			v, err := strconv.ParseFloat(strings.TrimSpace(fields[cols[f.name]]), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid %s value %q", line, f.name, fields[cols[f.name]])
			}
			*f.target = v
		}
		records = append(records, rec)
	}
	return records, nil
}

func (r record) toRow() (Row, error) {
	name := strings.TrimSpace(r.Country)
	if name == "" {
		return Row{}, fmt.Errorf("country name is empty")
	}
	for _, v := range []float64{r.All, r.Male, r.Female} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return Row{}, fmt.Errorf("%s: expectancy must be a non-negative number", name)
		}
	}
	return Row{
		Name: name,
		Info: model.CountryInfo{All: r.All, Male: r.Male, Female: r.Female},
	}, nil
}
