package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/tidwall/sjson"
)

type envKind uint8

const (
	envString envKind = iota
	envInt
)

// envVar maps an environment variable onto a settings path.
type envVar struct {
	name string
	path string
	kind envKind
}

// envVars lists the supported overrides. Empty string values are valid
// values, not unset.
var envVars = []envVar{
	{"FRACTAL_VARIANT", "view.variant", envString},
	{"FRACTAL_PALETTE", "view.palette", envString},
	{"FRACTAL_MAX_ITER", "view.maxIter", envInt},
	{"FRACTAL_WORKERS", "renderer.workers", envInt},
	{"FRACTAL_MAX_BANDS", "renderer.maxBands", envInt},
	{"FRACTAL_LEFTOVER", "renderer.leftover", envString},
	{"FRACTAL_LOG_LEVEL", "logging.level", envString},
}

// EnvVars returns the names of the supported environment variables.
func EnvVars() []string {
	names := make([]string, len(envVars))
	for i, v := range envVars {
		names[i] = v.name
	}
	return names
}

// applyEnv writes every set override into doc.
func applyEnv(doc []byte) ([]byte, error) {
	for _, v := range envVars {
		raw, ok := os.LookupEnv(v.name)
		if !ok {
			continue
		}
		raw = strings.TrimSpace(raw)

		var val any = raw
		if v.kind == envInt {
			n, err := strconv.Atoi(raw)
			if err != nil {
				return nil, invalid(v.name, "%q is not an integer", raw)
			}
			val = n
		}

		var err error
		doc, err = sjson.SetBytes(doc, v.path, val)
		if err != nil {
			return nil, invalid(v.name, "%v", err)
		}
	}
	return doc, nil
}
