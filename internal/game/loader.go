package game

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/konkers/sdv-predict/internal/drop"
)

const (
	objectsFile  = "objects.yaml"
	garbageFile  = "garbage_cans.yaml"
	contextsFile = "location_contexts.yaml"
	calendarFile = "calendar.yaml"
)

var documents = []string{objectsFile, garbageFile, contextsFile, calendarFile}

// Paths locates the base data directory and an optional overlay (mod)
// directory whose documents are merged on top.
type Paths struct {
	BaseDir    string
	OverlayDir string
}

func (p Paths) basePath(doc string) string {
	return filepath.Join(p.BaseDir, doc)
}

func (p Paths) overlayPath(doc string) string {
	if p.OverlayDir == "" {
		return ""
	}
	return filepath.Join(p.OverlayDir, doc)
}

// Loader reads the YAML documents, merges base <- overlay, validates and
// builds Tables. The built Tables are cached until Invalidate.
type Loader struct {
	paths Paths

	mu     sync.RWMutex
	tables *Tables
}

// NewLoader creates a loader. overlayDir may be empty.
func NewLoader(baseDir, overlayDir string) *Loader {
	return &Loader{paths: Paths{BaseDir: baseDir, OverlayDir: overlayDir}}
}

// Tables returns the cached tables, loading them on first use.
func (l *Loader) Tables() (*Tables, error) {
	l.mu.RLock()
	t := l.tables
	l.mu.RUnlock()
	if t != nil {
		return t, nil
	}

	raw, err := l.LoadMerged()
	if err != nil {
		return nil, err
	}
	if err := ValidateRaw(raw); err != nil {
		return nil, err
	}
	t, err = Build(raw)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.tables = t
	l.mu.Unlock()
	return t, nil
}

// Invalidate clears the cache. Call after hot-reload detects changes.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tables = nil
}

// WatchPaths lists every file whose change should trigger a reload,
// including overlay files that do not exist yet.
func (l *Loader) WatchPaths() []string {
	var out []string
	for _, doc := range documents {
		out = append(out, l.paths.basePath(doc))
		if p := l.paths.overlayPath(doc); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// LoadMerged reads every document from the base directory and merges the
// overlay on top. Base documents are required; overlay documents are not.
// Each file is checked against its JSON schema as it is read.
func (l *Loader) LoadMerged() (RawData, error) {
	var raw RawData
	if err := readDoc(l.paths.basePath(objectsFile), objectsFile, true, &raw.Objects); err != nil {
		return RawData{}, err
	}
	if err := readDoc(l.paths.basePath(garbageFile), garbageFile, true, &raw.Garbage); err != nil {
		return RawData{}, err
	}
	if err := readDoc(l.paths.basePath(contextsFile), contextsFile, true, &raw.Contexts); err != nil {
		return RawData{}, err
	}
	if err := readDoc(l.paths.basePath(calendarFile), calendarFile, true, &raw.Calendar); err != nil {
		return RawData{}, err
	}
	if l.paths.OverlayDir == "" {
		return raw, nil
	}

	var over RawData
	if err := readDoc(l.paths.overlayPath(objectsFile), objectsFile, false, &over.Objects); err != nil {
		return RawData{}, err
	}
	if err := readDoc(l.paths.overlayPath(garbageFile), garbageFile, false, &over.Garbage); err != nil {
		return RawData{}, err
	}
	if err := readDoc(l.paths.overlayPath(contextsFile), contextsFile, false, &over.Contexts); err != nil {
		return RawData{}, err
	}
	if err := readDoc(l.paths.overlayPath(calendarFile), calendarFile, false, &over.Calendar); err != nil {
		return RawData{}, err
	}
	return mergeRaw(raw, over), nil
}

// readDoc loads one YAML document into out. A missing optional file leaves
// out untouched.
func readDoc(path, doc string, required bool, out any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("read %s: %w", doc, err)
	}
	if err := validateSchema(doc, b); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// mergeRaw overlays b onto a. Records are matched by id: a matching
// record is patched, a new one is appended. Weather lists replace whole
// contexts since their order is significant.
func mergeRaw(a, b RawData) RawData {
	out := a

	if b.Objects.Version != "" {
		out.Objects.Version = b.Objects.Version
	}
	geodes := append([]GeodeData(nil), a.Objects.Geodes...)
	for _, g := range b.Objects.Geodes {
		i := indexGeode(geodes, g.ID)
		if i < 0 {
			geodes = append(geodes, g)
			continue
		}
		cur := geodes[i]
		if g.Name != "" {
			cur.Name = g.Name
		}
		if g.UseDefaultDrops != nil {
			cur.UseDefaultDrops = g.UseDefaultDrops
		}
		if len(g.Treasures) > 0 {
			cur.Treasures = append([]string(nil), g.Treasures...)
		}
		cur.Drops = mergeDrops(cur.Drops, g.Drops)
		geodes[i] = cur
	}
	out.Objects.Geodes = geodes

	if b.Garbage.Version != "" {
		out.Garbage.Version = b.Garbage.Version
	}
	if b.Garbage.DefaultBaseChance != nil {
		out.Garbage.DefaultBaseChance = b.Garbage.DefaultBaseChance
	}
	out.Garbage.BeforeAll = mergeDrops(a.Garbage.BeforeAll, b.Garbage.BeforeAll)
	out.Garbage.AfterAll = mergeDrops(a.Garbage.AfterAll, b.Garbage.AfterAll)
	if len(b.Garbage.Cans) > 0 {
		cans := make(map[string]CanData, len(a.Garbage.Cans)+len(b.Garbage.Cans))
		for id, c := range a.Garbage.Cans {
			cans[id] = c
		}
		for id, c := range b.Garbage.Cans {
			cur, ok := cans[id]
			if !ok {
				cans[id] = c
				continue
			}
			if c.BaseChance != 0 {
				cur.BaseChance = c.BaseChance
			}
			cur.Items = mergeDrops(cur.Items, c.Items)
			cans[id] = cur
		}
		out.Garbage.Cans = cans
	}

	if b.Contexts.Version != "" {
		out.Contexts.Version = b.Contexts.Version
	}
	if len(b.Contexts.Contexts) > 0 {
		ctxs := make(map[string]ContextData, len(a.Contexts.Contexts)+len(b.Contexts.Contexts))
		for id, c := range a.Contexts.Contexts {
			ctxs[id] = c
		}
		for id, c := range b.Contexts.Contexts {
			ctxs[id] = c
		}
		out.Contexts.Contexts = ctxs
	}

	if b.Calendar.Version != "" {
		out.Calendar.Version = b.Calendar.Version
	}
	fests := append([]Festival(nil), a.Calendar.Festivals...)
	for _, f := range b.Calendar.Festivals {
		replaced := false
		for i := range fests {
			if fests[i].Season == f.Season && fests[i].Day == f.Day {
				fests[i] = f
				replaced = true
				break
			}
		}
		if !replaced {
			fests = append(fests, f)
		}
	}
	out.Calendar.Festivals = fests
	if len(b.Calendar.GreenRainDays) > 0 {
		out.Calendar.GreenRainDays = append([]int(nil), b.Calendar.GreenRainDays...)
	}

	return out
}

func indexGeode(gs []GeodeData, id string) int {
	for i, g := range gs {
		if sameItem(g.ID, id) {
			return i
		}
	}
	return -1
}

func sameItem(a, b string) bool {
	qa, errA := drop.ParseItemID(a)
	qb, errB := drop.ParseItemID(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return qa == qb
}

// mergeDrops patches drops by id; overlay drops with a new id are appended.
func mergeDrops(a, b []drop.Spec) []drop.Spec {
	if len(b) == 0 {
		return a
	}
	out := append([]drop.Spec(nil), a...)
	for _, d := range b {
		replaced := false
		for i := range out {
			if d.ID != "" && out[i].ID == d.ID {
				out[i] = d
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, d)
		}
	}
	return out
}
