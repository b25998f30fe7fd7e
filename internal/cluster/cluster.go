// Package cluster groups flat file-path sets into a compact display
// hierarchy bounded by depth and per-cluster size.
package cluster

import (
	"path"
	"sort"
	"strings"
)

const (
	DefaultMaxDepth           = 3
	DefaultMaxFilesPerCluster = 10
)

// Cluster is one displayed directory bucket. Dir is the directory the
// files are folded under, relative to the repository root; it is empty for
// root-level files, never the root path itself. Count always equals
// len(Files). Oversized buckets are split into numbered parts: Part/Parts
// are 1-based, and Parts == 1 for unsplit clusters.
type Cluster struct {
	Dir   string
	Files []string
	Count int
	Part  int
	Parts int
}

// Group collects the clusters sharing a top-level directory. Path is that
// directory, or empty for root-level files.
type Group struct {
	Path       string
	Clusters   []Cluster
	TotalFiles int
}

// Flatten returns every file in the group, in cluster order.
func (g Group) Flatten() []string {
	var out []string
	for _, c := range g.Clusters {
		out = append(out, c.Files...)
	}
	return out
}

// Flatten returns every file across all groups.
func Flatten(groups []Group) []string {
	var out []string
	for _, g := range groups {
		out = append(out, g.Flatten()...)
	}
	return out
}

type Clusterer struct {
	MaxDepth           int
	MaxFilesPerCluster int
}

func New(maxDepth, maxFilesPerCluster int) *Clusterer {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	if maxFilesPerCluster <= 0 {
		maxFilesPerCluster = DefaultMaxFilesPerCluster
	}
	return &Clusterer{MaxDepth: maxDepth, MaxFilesPerCluster: maxFilesPerCluster}
}

// Cluster groups paths by directory. It is a pure function of its input and
// the configuration: the same path set always yields the same grouping, so
// re-clustering a flattened result is a no-op.
//
// Paths deeper than MaxDepth fold into their depth-MaxDepth ancestor.
// Buckets larger than MaxFilesPerCluster split into numbered parts in sort
// order. Groups are keyed by top-level directory and ordered by total file
// count descending, ties broken by path; root-level files form a group with
// an empty path, never one labeled with the repository root.
func (c *Clusterer) Cluster(paths []string) []Group {
	if len(paths) == 0 {
		return nil
	}

	buckets := make(map[string][]string)
	for _, p := range paths {
		p = strings.TrimPrefix(path.Clean(strings.ReplaceAll(p, "\\", "/")), "./")
		if p == "" || p == "." {
			continue
		}
		dir := c.bucketDir(p)
		buckets[dir] = append(buckets[dir], p)
	}

	groups := make(map[string]*Group)
	dirs := make([]string, 0, len(buckets))
	for dir := range buckets {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	for _, dir := range dirs {
		files := buckets[dir]
		sort.Strings(files)
		key := topLevel(dir)
		g, ok := groups[key]
		if !ok {
			g = &Group{Path: key}
			groups[key] = g
		}
		for _, part := range c.split(dir, files) {
			g.Clusters = append(g.Clusters, part)
			g.TotalFiles += part.Count
		}
	}

	out := make([]Group, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalFiles != out[j].TotalFiles {
			return out[i].TotalFiles > out[j].TotalFiles
		}
		return out[i].Path < out[j].Path
	})
	return out
}

// bucketDir picks the directory a path clusters under: its parent, walked
// upward until within MaxDepth of the root.
func (c *Clusterer) bucketDir(p string) string {
	dir := path.Dir(p)
	if dir == "." || dir == "/" {
		return ""
	}
	parts := strings.Split(dir, "/")
	if len(parts) > c.MaxDepth {
		parts = parts[:c.MaxDepth]
	}
	return strings.Join(parts, "/")
}

func (c *Clusterer) split(dir string, files []string) []Cluster {
	n := len(files)
	parts := (n + c.MaxFilesPerCluster - 1) / c.MaxFilesPerCluster
	if parts == 0 {
		return nil
	}
	out := make([]Cluster, 0, parts)
	for i := 0; i < parts; i++ {
		lo := i * c.MaxFilesPerCluster
		hi := lo + c.MaxFilesPerCluster
		if hi > n {
			hi = n
		}
		chunk := files[lo:hi]
		out = append(out, Cluster{
			Dir:   dir,
			Files: chunk,
			Count: len(chunk),
			Part:  i + 1,
			Parts: parts,
		})
	}
	return out
}

func topLevel(dir string) string {
	if dir == "" {
		return ""
	}
	if idx := strings.Index(dir, "/"); idx >= 0 {
		return dir[:idx]
	}
	return dir
}
