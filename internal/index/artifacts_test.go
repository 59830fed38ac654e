package index

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestArtifactsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	in := &Artifacts{
		Manifest: Manifest{Model: "hashing-64", Dims: 2},
		Vectors:  []float32{1, 0, 0, 1, 0.6, 0.8},
		IDs:      []int64{413150, 105600, 367520},
	}
	if err := WriteArtifacts(dir, in); err != nil {
		t.Fatalf("WriteArtifacts: %v", err)
	}
	loaded, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if loaded.Model != "hashing-64" || loaded.Flat.Len() != 3 || loaded.Flat.Dims() != 2 {
		t.Fatalf("loaded: model=%q len=%d dims=%d", loaded.Model, loaded.Flat.Len(), loaded.Flat.Dims())
	}
	if id, _ := loaded.IDs.Lookup(2); id != 367520 {
		t.Fatalf("row 2 id: got=%d", id)
	}
}

func TestLoadArtifactsMissingEmbeddings(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ModelNameFile), []byte("all-MiniLM-L6-v2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadArtifacts(dir)
	var le *LoadError
	if !errors.As(err, &le) || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("want LoadError wrapping ErrNotExist got=%v", err)
	}
}

func TestLoadArtifactsModelDisagreement(t *testing.T) {
	dir := t.TempDir()
	in := &Artifacts{Manifest: Manifest{Model: "a", Dims: 1}, Vectors: []float32{1}, IDs: []int64{1}}
	if err := WriteArtifacts(dir, in); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ModelNameFile), []byte("b\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadArtifacts(dir); err == nil {
		t.Fatalf("model disagreement accepted")
	}
}

func TestWriteArtifactsRejectsMismatch(t *testing.T) {
	err := WriteArtifacts(t.TempDir(), &Artifacts{Manifest: Manifest{Dims: 2}, Vectors: []float32{1}, IDs: []int64{1}})
	if err == nil {
		t.Fatalf("mismatched artifacts accepted")
	}
}
