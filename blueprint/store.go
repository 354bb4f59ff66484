package blueprint

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Layer is the component layer a blueprint belongs to. It decides the
// directory the blueprint file lives in.
type Layer string

const (
	LayerRoutes     Layer = "routes"
	LayerModels     Layer = "models"
	LayerServices   Layer = "services"
	LayerMiddleware Layer = "middleware"
	LayerDatabase   Layer = "database"
	LayerSystem     Layer = "system"
	LayerTools      Layer = "tools"
)

// DefaultLayerDirs maps each layer to its directory relative to the store root.
var DefaultLayerDirs = map[Layer]string{
	LayerRoutes:     "api/routes",
	LayerModels:     "api/models",
	LayerServices:   "api/services",
	LayerMiddleware: "middleware",
	LayerDatabase:   "database",
	LayerSystem:     "system",
	LayerTools:      "tools",
}

// Layers returns all layers in a stable order.
func Layers() []Layer {
	return []Layer{LayerRoutes, LayerModels, LayerServices, LayerMiddleware, LayerDatabase, LayerSystem, LayerTools}
}

// ParseLayer converts a layer name.
func ParseLayer(s string) (Layer, error) {
	l := Layer(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := DefaultLayerDirs[l]; !ok {
		return "", fmt.Errorf("unknown layer %q", s)
	}
	return l, nil
}

// Summary is the listing entry for a stored blueprint.
type Summary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Version     string `json:"version"`
	Path        string `json:"path"`
}

// Store is a directory tree of blueprint files, one file per id named <id>.json.
type Store struct {
	root      string
	layerDirs map[Layer]string
	logger    *slog.Logger
}

// NewStore creates a store rooted at root. layerDirs overrides
// DefaultLayerDirs when non-empty.
func NewStore(root string, layerDirs map[Layer]string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	dirs := make(map[Layer]string, len(DefaultLayerDirs))
	for l, d := range DefaultLayerDirs {
		dirs[l] = d
	}
	for l, d := range layerDirs {
		dirs[l] = d
	}
	return &Store{root: root, layerDirs: dirs, logger: logger}
}

// Root returns the store's root directory.
func (s *Store) Root() string {
	return s.root
}

// LayerDir returns the absolute directory for a layer.
func (s *Store) LayerDir(layer Layer) (string, error) {
	dir, ok := s.layerDirs[layer]
	if !ok {
		return "", fmt.Errorf("unknown layer %q", layer)
	}
	return filepath.Join(s.root, filepath.FromSlash(dir)), nil
}

// index maps blueprint ids (file base names) to paths and enforces uniqueness.
func (s *Store) index() (map[string]string, error) {
	idx := make(map[string]string)
	if _, err := os.Stat(s.root); os.IsNotExist(err) {
		return idx, nil
	}

	files, err := globJSON(s.root)
	if err != nil {
		return nil, err
	}
	for _, path := range files {
		id := strings.TrimSuffix(filepath.Base(path), FileExt)
		if prev, ok := idx[id]; ok {
			return nil, fmt.Errorf("%w: %s in %s and %s", ErrDuplicateID, id, prev, path)
		}
		idx[id] = path
	}
	return idx, nil
}

// List returns a summary for every blueprint, sorted by id. Unreadable files
// are logged and skipped.
func (s *Store) List() ([]Summary, error) {
	idx, err := s.index()
	if err != nil {
		return nil, err
	}

	summaries := make([]Summary, 0, len(idx))
	for id, path := range idx {
		bp, err := Load(path)
		if err != nil {
			s.logger.Warn("Skipping unreadable blueprint", "path", path, "error", err)
			continue
		}
		sum := Summary{
			ID:          id,
			Name:        bp.Name,
			Description: bp.Description,
			Version:     bp.Version,
			Path:        path,
		}
		if sum.Name == "" {
			sum.Name = id
		}
		if sum.Version == "" {
			sum.Version = "1.0.0"
		}
		summaries = append(summaries, sum)
	}

	sort.Slice(summaries, func(i, j int) bool { return summaries[i].ID < summaries[j].ID })
	return summaries, nil
}

// Path returns the file path of a stored blueprint.
func (s *Store) Path(id string) (string, error) {
	idx, err := s.index()
	if err != nil {
		return "", err
	}
	path, ok := idx[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return path, nil
}

// Get loads a blueprint by id.
func (s *Store) Get(id string) (*Blueprint, error) {
	path, err := s.Path(id)
	if err != nil {
		return nil, err
	}
	return Load(path)
}

// Save writes bp into the layer's directory, or overwrites the existing file
// when the id is already stored elsewhere in the tree. Returns the path written.
func (s *Store) Save(layer Layer, bp *Blueprint) (string, error) {
	dir, ok := s.layerDirs[layer]
	if !ok {
		return "", fmt.Errorf("unknown layer %q", layer)
	}
	return s.SaveIn(dir, bp)
}

// SaveIn is Save with an explicit directory relative to the root.
func (s *Store) SaveIn(dir string, bp *Blueprint) (string, error) {
	if err := ValidateID(bp.ID); err != nil {
		return "", err
	}

	path, err := s.Path(bp.ID)
	if errors.Is(err, ErrNotFound) {
		path = filepath.Join(s.root, filepath.FromSlash(dir), bp.ID+FileExt)
	} else if err != nil {
		return "", err
	}

	data, err := bp.Marshal()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("create blueprint directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write blueprint: %w", err)
	}

	s.logger.Debug("Saved blueprint", "id", bp.ID, "path", path)
	return path, nil
}

// Delete removes a blueprint file.
func (s *Store) Delete(id string) error {
	path, err := s.Path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("delete blueprint: %w", err)
	}
	s.logger.Debug("Deleted blueprint", "id", id, "path", path)
	return nil
}

// Resolve loads a blueprint from a file path, or by id from the store when
// ref is not an existing file.
func (s *Store) Resolve(ref string) (*Blueprint, string, error) {
	if info, err := os.Stat(ref); err == nil && !info.IsDir() {
		bp, err := Load(ref)
		return bp, ref, err
	}
	path, err := s.Path(ref)
	if err != nil {
		return nil, "", err
	}
	bp, err := Load(path)
	return bp, path, err
}
