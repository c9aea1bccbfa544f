package game

// Source hands out the current game tables. Loader is the file-backed
// implementation; Fixed serves prebuilt tables.
type Source interface {
	Tables() (*Tables, error)
}

// Fixed is a Source that never reloads.
type Fixed struct {
	T *Tables
}

func (f Fixed) Tables() (*Tables, error) {
	return f.T, nil
}
