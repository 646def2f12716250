package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"skylut/lutexport"

	"github.com/spf13/cobra"
)

var cmdInspect = &cobra.Command{
	Use:   "inspect FILE",
	Short: "Print the header and a few cells of a .bin table, or a manifest",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("while reading %q: %w", args[0], err)
		}

		if filepath.Ext(args[0]) == ".json" {
			m, err := lutexport.ReadManifest(data)
			if err != nil {
				return err
			}
			tables, _ := m["tables"].([]interface{})
			for _, t := range tables {
				entry, _ := t.(map[string]interface{})
				fmt.Fprintf(cmd.OutOrStdout(), "%v: %vx%vx%v %v\n", entry["name"], entry["width"], entry["height"], entry["depth"], entry["files"])
			}
			return nil
		}

		im, err := lutexport.ReadBinary16(bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("while decoding %q: %w", args[0], err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "width=%d height=%d depth=%d\n", im.Width, im.Height, im.Depth)
		for _, idx := range sampleIndices(len(im.Cells), inspectCells) {
			c := im.Cells[idx]
			i := idx % im.Width
			j := idx / im.Width % im.Height
			k := idx / (im.Width * im.Height)
			fmt.Fprintf(out, "(%d, %d, %d) = %.6g %.6g %.6g\n", i, j, k, c[0], c[1], c[2])
		}
		return nil
	},
}

var inspectCells int

func init() {
	cmdInspect.Flags().IntVar(&inspectCells, "cells", 8, "Number of evenly spaced cells to print")
}

// sampleIndices picks up to n evenly spaced indices in [0, total), always
// including the first and last.
func sampleIndices(total, n int) []int {
	if n <= 0 || total == 0 {
		return nil
	}
	if n >= total {
		n = total
	}
	if n == 1 {
		return []int{0}
	}
	result := make([]int, 0, n)
	for s := 0; s < n; s++ {
		result = append(result, s*(total-1)/(n-1))
	}
	return result
}
