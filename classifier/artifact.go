package classifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/kbukum/voicescreen/validation"
)

// Model kinds understood by Artifact.Build.
const (
	KindForest   = "random_forest"
	KindLogistic = "logistic"
)

// Artifact formats.
const (
	FormatJSON    = "json"
	FormatMsgpack = "msgpack"
)

// Artifact is the serialized form of a Model.
type Artifact struct {
	Kind    string   `json:"kind" msgpack:"kind" validate:"oneof=random_forest logistic"`
	Width   int      `json:"width" msgpack:"width" validate:"gt=0"`
	Classes []string `json:"classes" msgpack:"classes" validate:"len=2"`
	Scaler  *Scaler  `json:"scaler,omitempty" msgpack:"scaler,omitempty"`

	// random_forest
	Trees []Tree `json:"trees,omitempty" msgpack:"trees,omitempty"`

	// logistic
	Weights []float64 `json:"weights,omitempty" msgpack:"weights,omitempty"`
	Bias    float64   `json:"bias,omitempty" msgpack:"bias,omitempty"`
}

// Build validates the artifact and returns the model it describes.
func (a *Artifact) Build() (Model, error) {
	if err := validation.Validate(a); err != nil {
		return nil, err
	}
	if err := a.Scaler.validate(a.Width); err != nil {
		return nil, err
	}
	classes := append([]string(nil), a.Classes...)

	switch a.Kind {
	case KindForest:
		if len(a.Trees) == 0 {
			return nil, fmt.Errorf("forest has no trees")
		}
		for i, t := range a.Trees {
			if err := t.validate(a.Width, len(classes)); err != nil {
				return nil, fmt.Errorf("tree %d: %w", i, err)
			}
		}
		return &Forest{width: a.Width, classes: classes, scaler: a.Scaler, trees: a.Trees}, nil
	case KindLogistic:
		if len(a.Weights) != a.Width {
			return nil, fmt.Errorf("logistic has %d weights, want %d", len(a.Weights), a.Width)
		}
		w := append([]float64(nil), a.Weights...)
		return &Logistic{width: a.Width, classes: classes, scaler: a.Scaler, weights: w, bias: a.Bias}, nil
	default:
		return nil, fmt.Errorf("unsupported model kind %q", a.Kind)
	}
}

// FormatFromPath infers the artifact format from the file extension.
func FormatFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".msgpack", ".mpk":
		return FormatMsgpack, nil
	default:
		return "", fmt.Errorf("cannot infer artifact format from %q", path)
	}
}

// Decode parses data in the given format.
func Decode(data []byte, format string) (*Artifact, error) {
	var a Artifact
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&a); err != nil {
			return nil, fmt.Errorf("decoding json artifact: %w", err)
		}
	case FormatMsgpack:
		if err := msgpack.Unmarshal(data, &a); err != nil {
			return nil, fmt.Errorf("decoding msgpack artifact: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported artifact format %q", format)
	}
	return &a, nil
}

// Encode serializes a in the given format.
func Encode(a *Artifact, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(a, "", "  ")
	case FormatMsgpack:
		return msgpack.Marshal(a)
	default:
		return nil, fmt.Errorf("unsupported artifact format %q", format)
	}
}

// LoadFile reads and builds the model at path. An empty format is inferred
// from the extension.
func LoadFile(path, format string) (Model, error) {
	if format == "" {
		var err error
		if format, err = FormatFromPath(path); err != nil {
			return nil, err
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	a, err := Decode(data, format)
	if err != nil {
		return nil, err
	}
	return a.Build()
}

// SaveFile writes a to path, replacing any existing file with a rename so
// watchers never observe a partial artifact.
func SaveFile(path string, a *Artifact) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	data, err := Encode(a, format)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".artifact-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
