package main

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
)

const gigabyte = 1 << 30

// Inputs are held in memory whole, as are their expanded forms,
// so refuse anything larger than HUFFGB gigabytes.
var memLimit = envLimit("HUFFGB", 1)

func envLimit(name string, gb float64) int {
	if e := os.Getenv(name); e != "" {
		n, err := parseGB(e)
		if err == nil {
			return n
		}
		slog.Warn("badEnvLimit", "var", name, "value", e, "err", err, "fallbackGB", gb)
	}
	return int(gb * gigabyte)
}

// parseGB converts a possibly fractional number of gigabytes to bytes.
func parseGB(s string) (int, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f*gigabyte > math.MaxInt64/2 {
		return 0, fmt.Errorf("%q is not a usable number of gigabytes", s)
	}
	return int(f * gigabyte), nil
}

// default for the -db flag
func defaultDB() string {
	if e := os.Getenv("HUFFDB"); e != "" {
		return e
	}
	return ".huffpack"
}
