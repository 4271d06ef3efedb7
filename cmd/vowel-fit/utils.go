package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	fitcommon "github.com/cwbudde/algo-vocal/internal/fitcommon"
)

func clamp(v, lo, hi float64) float64 {
	return fitcommon.Clamp(v, lo, hi)
}

func minInt(a, b int) int {
	return fitcommon.MinInt(a, b)
}

func maxInt(a, b int) int {
	return fitcommon.MaxInt(a, b)
}

func writeJSON(path string, v any) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return os.WriteFile(path, b, 0o644)
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
