package main

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"text/template"
)

type asset struct {
	Name     string
	ID       string
	Decimals int
	Kind     string
}

func main() {
	// Open the input file and read its contents
	data, err := readCsvFile(filepath.Join("scripts", "assets", "asset_data.csv"))
	if err != nil {
		panic(fmt.Errorf("error reading CSV file: %v", err))
	}

	// Convert the CSV records to a list of asset descriptions
	assets, err := convertDataToAssets(data)
	if err != nil {
		panic(fmt.Errorf("error converting CSV records: %v", err))
	}

	// Generate Go code from the asset descriptions using a template
	code, err := generateGoCode(filepath.Join("scripts", "assets", "asset_data.tmpl"), assets)
	if err != nil {
		panic(fmt.Errorf("error generating Go code: %v", err))
	}

	// Write the generated Go code to a file
	err = writeToFile("asset_data.go", code)
	if err != nil {
		panic(fmt.Errorf("error writing to file: %v", err))
	}
}

func readCsvFile(filename string) ([][]string, error) {
	in, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer func() { _ = in.Close() }()

	reader := csv.NewReader(in)
	_, err = reader.Read() // header
	if err != nil {
		return nil, err
	}
	return reader.ReadAll()
}

func convertDataToAssets(data [][]string) ([]asset, error) {
	// Sort the CSV records by asset id
	sort.Slice(data, func(i, j int) bool {
		return data[i][1] < data[j][1]
	})

	assets := make([]asset, 0, len(data))
	seen := make(map[string]bool, len(data))
	for _, rec := range data {
		if seen[rec[1]] {
			return nil, fmt.Errorf("duplicate asset id %q", rec[1])
		}
		seen[rec[1]] = true
		dec, err := strconv.Atoi(rec[2])
		if err != nil {
			return nil, fmt.Errorf("asset %q: invalid decimals %q", rec[1], rec[2])
		}
		assets = append(assets, asset{
			Name:     rec[0],
			ID:       rec[1],
			Decimals: dec,
			Kind:     rec[3],
		})
	}
	return assets, nil
}

func generateGoCode(filename string, assets []asset) ([]byte, error) {
	tmpl, err := template.New(filepath.Base(filename)).ParseFiles(filename)
	if err != nil {
		return nil, err
	}

	var output bytes.Buffer
	err = tmpl.Execute(&output, assets)
	if err != nil {
		return nil, err
	}

	// Format the output as Go code
	return format.Source(output.Bytes())
}

func writeToFile(filename string, content []byte) error {
	out, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()
	writer := bufio.NewWriter(out)
	_, err = writer.Write(content)
	if err != nil {
		return err
	}
	return writer.Flush()
}
