package hub

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gemmad/internal/common/fsutil"
)

// CachedFile is a weights file present in the cache.
type CachedFile struct {
	Repo string `json:"repo"`
	// Revision is a ref pointing at the snapshot, or the commit when none does.
	Revision string `json:"revision"`
	Commit   string `json:"commit"`
	File     string `json:"file"`
	Path     string `json:"path"`
	Size     int64  `json:"size"`
}

// Scan lists the GGUF files under the cache directory, sorted by repo,
// revision and file. It reads the models--<org>--<name>/snapshots/<commit>
// layout; snapshot entries may be symlinks into blobs/.
func Scan(cacheDir string) ([]CachedFile, error) {
	base, err := fsutil.ExpandHome(cacheDir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	if !fsutil.PathExists(abs) {
		return nil, nil
	}
	repos, err := filepath.Glob(filepath.Join(abs, "models--*"))
	if err != nil {
		return nil, fmt.Errorf("scan cache: %w", err)
	}
	var out []CachedFile
	for _, dir := range repos {
		repo := strings.ReplaceAll(strings.TrimPrefix(filepath.Base(dir), "models--"), "--", "/")
		refs := readRefs(dir)
		snaps, err := os.ReadDir(filepath.Join(dir, "snapshots"))
		if err != nil {
			continue
		}
		for _, s := range snaps {
			if !s.IsDir() {
				continue
			}
			root := filepath.Join(dir, "snapshots", s.Name())
			rev := s.Name()
			if r, ok := refs[rev]; ok {
				rev = r
			}
			_ = filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
				if err != nil || d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".gguf") {
					return nil
				}
				// Stat follows the symlink into blobs/.
				info, err := os.Stat(p)
				if err != nil || !info.Mode().IsRegular() || info.Size() == 0 {
					return nil
				}
				rel, _ := filepath.Rel(root, p)
				out = append(out, CachedFile{
					Repo:     repo,
					Revision: rev,
					Commit:   s.Name(),
					File:     filepath.ToSlash(rel),
					Path:     p,
					Size:     info.Size(),
				})
				return nil
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Repo != b.Repo {
			return a.Repo < b.Repo
		}
		if a.Revision != b.Revision {
			return a.Revision < b.Revision
		}
		return a.File < b.File
	})
	return out, nil
}

// readRefs maps commit hashes to the ref names under <repo>/refs.
func readRefs(dir string) map[string]string {
	refs := map[string]string{}
	root := filepath.Join(dir, "refs")
	_ = filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		b, err := os.ReadFile(p)
		if err != nil {
			return nil
		}
		rel, _ := filepath.Rel(root, p)
		name := filepath.ToSlash(rel)
		commit := strings.TrimSpace(string(b))
		if prev, ok := refs[commit]; !ok || name < prev {
			refs[commit] = name
		}
		return nil
	})
	return refs
}
