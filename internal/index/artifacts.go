package index

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/sbinet/npyio/npy"
)

const (
	EmbeddingsFile = "embeddings.npy"
	IDsFile        = "ids.npy"
	ModelNameFile  = "model_name.txt"
	ManifestFile   = "manifest.json"
)

// Manifest describes an artifact directory. Dims is required when
// embeddings.npy was written flat.
type Manifest struct {
	Model     string    `json:"model"`
	Dims      int       `json:"dims"`
	Count     int       `json:"count"`
	CreatedAt time.Time `json:"created_at"`
}

// Artifacts is the on-disk embedding set: a row-major matrix plus one catalog
// id per row.
type Artifacts struct {
	Manifest
	Vectors []float32
	IDs     []int64
}

type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("index artifacts: %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// LoadArtifacts reads embeddings.npy, ids.npy and the model name from dir.
// Any missing or inconsistent piece is a *LoadError.
func LoadArtifacts(dir string) (*Artifacts, error) {
	a := &Artifacts{}

	manifestPath := filepath.Join(dir, ManifestFile)
	if raw, err := os.ReadFile(manifestPath); err == nil {
		if err := json.Unmarshal(raw, &a.Manifest); err != nil {
			return nil, &LoadError{Path: manifestPath, Err: err}
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, &LoadError{Path: manifestPath, Err: err}
	}

	modelPath := filepath.Join(dir, ModelNameFile)
	if name, err := readFirstLine(modelPath); err == nil {
		if a.Model != "" && name != "" && a.Model != name {
			return nil, &LoadError{Path: modelPath, Err: fmt.Errorf("model %q disagrees with manifest model %q", name, a.Model)}
		}
		if name != "" {
			a.Model = name
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, &LoadError{Path: modelPath, Err: err}
	}
	if a.Model == "" {
		return nil, &LoadError{Path: dir, Err: errors.New("no model name in model_name.txt or manifest.json")}
	}

	embPath := filepath.Join(dir, EmbeddingsFile)
	vectors, shape, err := readFloats(embPath)
	if err != nil {
		return nil, &LoadError{Path: embPath, Err: err}
	}
	switch len(shape) {
	case 2:
		if a.Dims != 0 && a.Dims != shape[1] {
			return nil, &LoadError{Path: embPath, Err: fmt.Errorf("shape %v disagrees with manifest dims %d", shape, a.Dims)}
		}
		a.Dims = shape[1]
	case 1:
		if a.Dims <= 0 {
			return nil, &LoadError{Path: embPath, Err: errors.New("flat embeddings need manifest dims")}
		}
	default:
		return nil, &LoadError{Path: embPath, Err: fmt.Errorf("unsupported shape %v", shape)}
	}
	if a.Dims <= 0 || len(vectors) == 0 || len(vectors)%a.Dims != 0 {
		return nil, &LoadError{Path: embPath, Err: fmt.Errorf("%d values do not form rows of %d", len(vectors), a.Dims)}
	}
	a.Vectors = vectors

	idsPath := filepath.Join(dir, IDsFile)
	ids, err := readInts(idsPath)
	if err != nil {
		return nil, &LoadError{Path: idsPath, Err: err}
	}
	rows := len(vectors) / a.Dims
	if len(ids) != rows {
		return nil, &LoadError{Path: idsPath, Err: fmt.Errorf("%d ids for %d embedding rows", len(ids), rows)}
	}
	a.IDs = ids
	if a.Count != 0 && a.Count != rows {
		return nil, &LoadError{Path: manifestPath, Err: fmt.Errorf("manifest count %d, found %d rows", a.Count, rows)}
	}
	a.Count = rows
	return a, nil
}

// WriteArtifacts writes the full artifact set into dir, creating it if needed.
func WriteArtifacts(dir string, a *Artifacts) error {
	if a == nil || a.Dims <= 0 || len(a.Vectors) != len(a.IDs)*a.Dims {
		return errors.New("index artifacts: vectors and ids disagree")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := writeFile(filepath.Join(dir, EmbeddingsFile), func(w io.Writer) error {
		return npy.Write(w, a.Vectors)
	}); err != nil {
		return err
	}
	if err := writeFile(filepath.Join(dir, IDsFile), func(w io.Writer) error {
		return npy.Write(w, a.IDs)
	}); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, ModelNameFile), []byte(a.Model+"\n"), 0o644); err != nil {
		return err
	}
	m := a.Manifest
	m.Count = len(a.IDs)
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	raw, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, ManifestFile), raw, 0o644)
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)
	if err := fn(bw); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func readFirstLine(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	line, _, _ := strings.Cut(string(raw), "\n")
	return strings.TrimSpace(line), nil
}

func openNpy(path string) (*os.File, *npy.Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	r, err := npy.NewReader(bufio.NewReader(f))
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}
	if r.Header.Descr.Fortran && len(r.Header.Descr.Shape) > 1 {
		_ = f.Close()
		return nil, nil, errors.New("fortran-ordered arrays are not supported")
	}
	return f, r, nil
}

func readFloats(path string) ([]float32, []int, error) {
	f, r, err := openNpy(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	shape := append([]int(nil), r.Header.Descr.Shape...)
	switch dtypeKind(r.Header.Descr.Type) {
	case "f4":
		var out []float32
		if err := r.Read(&out); err != nil {
			return nil, nil, err
		}
		return out, shape, nil
	case "f8":
		var wide []float64
		if err := r.Read(&wide); err != nil {
			return nil, nil, err
		}
		out := make([]float32, len(wide))
		for i, v := range wide {
			out[i] = float32(v)
		}
		return out, shape, nil
	default:
		return nil, nil, fmt.Errorf("unsupported embedding dtype %q", r.Header.Descr.Type)
	}
}

func readInts(path string) ([]int64, error) {
	f, r, err := openNpy(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if len(r.Header.Descr.Shape) != 1 {
		return nil, fmt.Errorf("ids must be 1-D, got shape %v", r.Header.Descr.Shape)
	}
	switch dtypeKind(r.Header.Descr.Type) {
	case "i8":
		var out []int64
		if err := r.Read(&out); err != nil {
			return nil, err
		}
		return out, nil
	case "i4":
		var narrow []int32
		if err := r.Read(&narrow); err != nil {
			return nil, err
		}
		out := make([]int64, len(narrow))
		for i, v := range narrow {
			out[i] = int64(v)
		}
		return out, nil
	case "u8":
		var unsigned []uint64
		if err := r.Read(&unsigned); err != nil {
			return nil, err
		}
		out := make([]int64, len(unsigned))
		for i, v := range unsigned {
			out[i] = int64(v)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported id dtype %q", r.Header.Descr.Type)
	}
}

// dtypeKind drops the byte-order marker from a numpy descr such as "<f4".
func dtypeKind(descr string) string {
	return strings.TrimLeft(descr, "<>|=")
}
