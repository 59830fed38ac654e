package index

// Loaded is the in-memory view of an artifact directory.
type Loaded struct {
	Flat  *Flat
	IDs   *IDMap
	Model string
}

// Open loads artifacts from dir and builds the flat index and id map.
func Open(dir string) (*Loaded, error) {
	a, err := LoadArtifacts(dir)
	if err != nil {
		return nil, err
	}
	return FromArtifacts(a)
}

func FromArtifacts(a *Artifacts) (*Loaded, error) {
	flat, err := NewFlat(a.Dims, a.Vectors)
	if err != nil {
		return nil, err
	}
	ids, err := NewIDMap(a.IDs)
	if err != nil {
		return nil, err
	}
	return &Loaded{Flat: flat, IDs: ids, Model: a.Model}, nil
}
