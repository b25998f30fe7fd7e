package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClusterSplitsOversizedDirectories(t *testing.T) {
	c := New(3, 2)
	groups := c.Cluster([]string{"a/b.py", "a/c.py", "a/d.py", "x.py"})

	require.Len(t, groups, 2)

	a := groups[0]
	assert.Equal(t, "a", a.Path)
	assert.Equal(t, 3, a.TotalFiles)
	require.Len(t, a.Clusters, 2)
	assert.Equal(t, []string{"a/b.py", "a/c.py"}, a.Clusters[0].Files)
	assert.Equal(t, []string{"a/d.py"}, a.Clusters[1].Files)
	assert.Equal(t, 1, a.Clusters[0].Part)
	assert.Equal(t, 2, a.Clusters[0].Parts)
	assert.Equal(t, 2, a.Clusters[1].Part)

	root := groups[1]
	assert.Equal(t, "", root.Path, "root-level files are never labeled with the repo root")
	require.Len(t, root.Clusters, 1)
	assert.Equal(t, "", root.Clusters[0].Dir)
	assert.Equal(t, []string{"x.py"}, root.Clusters[0].Files)
}

func TestClusterIdempotent(t *testing.T) {
	c := New(3, 2)
	paths := []string{
		"a/b.py", "a/c.py", "a/d.py", "x.py",
		"internal/engine/engine.go", "internal/engine/snapshot.go",
		"internal/watch/watcher.go", "deep/x/y/z/w/file.go",
	}

	first := c.Cluster(paths)
	second := c.Cluster(Flatten(first))
	assert.Equal(t, first, second)
}

func TestClusterEmptyInput(t *testing.T) {
	c := New(3, 10)
	assert.Nil(t, c.Cluster(nil))
	assert.Nil(t, c.Cluster([]string{}))
}

func TestClusterFoldsDeepPaths(t *testing.T) {
	c := New(2, 10)
	groups := c.Cluster([]string{"a/b/c/d/e.go", "a/b/c/f.go"})

	require.Len(t, groups, 1)
	require.Len(t, groups[0].Clusters, 1)
	assert.Equal(t, "a/b", groups[0].Clusters[0].Dir,
		"paths deeper than maxDepth fold into their bounded ancestor")
	assert.Equal(t, 2, groups[0].Clusters[0].Count)
}

func TestClusterGroupOrdering(t *testing.T) {
	c := New(3, 10)
	groups := c.Cluster([]string{
		"small/one.go",
		"big/a.go", "big/b.go", "big/c.go",
		"also3/a.go", "also3/b.go", "also3/c.go",
	})

	require.Len(t, groups, 3)
	assert.Equal(t, "also3", groups[0].Path, "ties break lexicographically")
	assert.Equal(t, "big", groups[1].Path)
	assert.Equal(t, "small", groups[2].Path)
	assert.GreaterOrEqual(t, groups[0].TotalFiles, groups[2].TotalFiles)
}

func TestClusterCountMatchesFiles(t *testing.T) {
	c := New(3, 4)
	groups := c.Cluster([]string{
		"p/a.go", "p/b.go", "p/c.go", "p/d.go", "p/e.go",
		"q/sub/x.go", "root.txt",
	})

	total := 0
	for _, g := range groups {
		sum := 0
		for _, cl := range g.Clusters {
			assert.Equal(t, len(cl.Files), cl.Count)
			sum += cl.Count
		}
		assert.Equal(t, sum, g.TotalFiles)
		total += sum
	}
	assert.Equal(t, 7, total)
}

func TestClusterNormalizesSeparators(t *testing.T) {
	c := New(3, 10)
	groups := c.Cluster([]string{`win\dir\file.go`})
	require.Len(t, groups, 1)
	assert.Equal(t, "win/dir", groups[0].Clusters[0].Dir)
}
