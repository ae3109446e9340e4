// Package scenes indexes the scene JSON files the generation pipeline writes
// under the workspace's data/scenes directory, one subdirectory per run.
package scenes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Scene describes one generated scene JSON file.
type Scene struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Store lists scenes under a data/scenes root. A missing root is treated as
// an empty store, since the pipeline creates it on first run.
type Store struct {
	root string
}

// NewStore creates a Store over the given scenes root.
func NewStore(root string) Store { return Store{root: root} }

// Root returns the scenes root directory.
func (s Store) Root() string { return s.root }

// List returns up to limit scenes, newest first by modification time. Run
// directories are visited newest first and their JSON files collected until
// the limit is reached.
func (s Store) List(limit int) ([]Scene, error) {
	runs, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("scenes: read %s: %w", s.root, err)
	}

	type runDir struct {
		path    string
		modTime time.Time
	}

	dirs := make([]runDir, 0, len(runs))

	for _, e := range runs {
		if !e.IsDir() {
			continue
		}

		info, err := e.Info()
		if err != nil {
			continue
		}

		dirs = append(dirs, runDir{path: filepath.Join(s.root, e.Name()), modTime: info.ModTime()})
	}

	sort.Slice(dirs, func(i, j int) bool { return dirs[i].modTime.After(dirs[j].modTime) })

	var all []Scene

	for _, d := range dirs {
		entries, err := os.ReadDir(d.path)
		if err != nil {
			continue
		}

		var inRun []Scene

		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
				continue
			}

			info, err := e.Info()
			if err != nil {
				continue
			}

			inRun = append(inRun, Scene{
				Path:    filepath.Join(d.path, e.Name()),
				Name:    e.Name(),
				Size:    info.Size(),
				ModTime: info.ModTime(),
			})
		}

		sort.Slice(inRun, func(i, j int) bool { return inRun[i].ModTime.After(inRun[j].ModTime) })
		all = append(all, inRun...)

		if limit > 0 && len(all) >= limit {
			break
		}
	}

	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}

	return all, nil
}

// Latest returns the most recently written scene, if any.
func (s Store) Latest() (Scene, bool, error) {
	list, err := s.List(1)
	if err != nil || len(list) == 0 {
		return Scene{}, false, err
	}

	return list[0], true, nil
}

// Preview returns a pretty-printed head of the scene JSON, bounded to
// maxBytes of output. Files that are not valid JSON come back verbatim.
func (sc Scene) Preview(maxBytes int) (string, error) {
	data, err := os.ReadFile(sc.Path)
	if err != nil {
		return "", fmt.Errorf("scenes: read %s: %w", sc.Path, err)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, "", "  "); err == nil {
		data = pretty.Bytes()
	}

	if maxBytes > 0 && len(data) > maxBytes {
		return string(data[:maxBytes]) + "\n…", nil
	}

	return string(data), nil
}
