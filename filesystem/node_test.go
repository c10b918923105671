package filesystem

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JimSP/jimfs"
	"github.com/JimSP/jimfs/pathtype"
)

// Test helper to create a root directory entry
func createTestRoot(t *testing.T) *Node {
	t.Helper()
	root, err := newRootNode(pathtype.NewName("/", pathtype.None), newInode(1, jimfs.DirectoryType))
	require.NoError(t, err)
	return root
}

var testIno uint64 = 100

// Test helper to create and link a child entry
func addTestChild(t *testing.T, parent *Node, name string, kind jimfs.NodeType) *Node {
	t.Helper()
	testIno++
	child := NewNode(pathtype.NewName(name, pathtype.CaseFoldASCII), newInode(testIno, kind))
	require.NoError(t, parent.AddChild(child))
	return child
}

func foldName(s string) pathtype.Name {
	return pathtype.NewName(s, pathtype.CaseFoldASCII)
}

func TestNode_AddChild(t *testing.T) {
	root := createTestRoot(t)
	child := addTestChild(t, root, "Child.txt", jimfs.RegularFileType)

	retrieved, exists := root.GetChild(foldName("child.TXT"))
	require.True(t, exists)
	assert.Equal(t, child, retrieved)
	assert.Equal(t, root, child.Parent())
	assert.Equal(t, uint32(1), child.LinkCount())
	assert.Equal(t, 1, root.ChildCount())
}

func TestNode_AddChild_Conflict(t *testing.T) {
	root := createTestRoot(t)
	first := addTestChild(t, root, "a", jimfs.RegularFileType)

	dup := NewNode(foldName("A"), newInode(500, jimfs.RegularFileType))
	err := root.AddChild(dup)
	require.ErrorIs(t, err, jimfs.ErrAlreadyExists)

	got, _ := root.GetChild(foldName("a"))
	assert.Same(t, first, got, "existing entry must not be overwritten")
	assert.Equal(t, uint32(0), dup.LinkCount())
	assert.Nil(t, dup.Parent())
}

func TestNode_AddChild_NotADirectory(t *testing.T) {
	root := createTestRoot(t)
	file := addTestChild(t, root, "f", jimfs.RegularFileType)

	err := file.AddChild(NewNode(foldName("x"), newInode(501, jimfs.RegularFileType)))
	assert.ErrorIs(t, err, jimfs.ErrNotADirectory)
}

func TestNode_RemoveChild(t *testing.T) {
	root := createTestRoot(t)
	child := addTestChild(t, root, "child.txt", jimfs.RegularFileType)

	removed, err := root.RemoveChild(foldName("child.txt"))
	require.NoError(t, err)
	assert.Same(t, child, removed)

	_, exists := root.GetChild(foldName("child.txt"))
	assert.False(t, exists)
	assert.Nil(t, child.Parent())
	assert.True(t, child.Detached())
	assert.True(t, child.IsDel())

	_, err = root.RemoveChild(foldName("nonexistent.txt"))
	assert.ErrorIs(t, err, jimfs.ErrNotFound)
}

func TestNode_RemoveChild_NonEmptyDirectory(t *testing.T) {
	root := createTestRoot(t)
	dir := addTestChild(t, root, "dir", jimfs.DirectoryType)
	addTestChild(t, dir, "file", jimfs.RegularFileType)

	_, err := root.RemoveChild(foldName("dir"))
	require.ErrorIs(t, err, jimfs.ErrNotEmpty)
	assert.False(t, dir.IsDel())

	_, err = dir.RemoveChild(foldName("file"))
	require.NoError(t, err)
	_, err = root.RemoveChild(foldName("dir"))
	require.NoError(t, err)
	assert.True(t, dir.IsDel())

	// a removed directory accepts no new entries
	err = dir.AddChild(NewNode(foldName("late"), newInode(502, jimfs.RegularFileType)))
	assert.ErrorIs(t, err, jimfs.ErrNotFound)
}

func TestNode_Path(t *testing.T) {
	root := createTestRoot(t)
	a := addTestChild(t, root, "a", jimfs.DirectoryType)
	b := addTestChild(t, a, "B", jimfs.DirectoryType)
	c := addTestChild(t, b, "c.txt", jimfs.RegularFileType)

	rootName, names, err := c.Path()
	require.NoError(t, err)
	assert.Equal(t, "/", rootName.String())
	require.Len(t, names, 3)
	assert.Equal(t, []string{"a", "B", "c.txt"}, []string{names[0].String(), names[1].String(), names[2].String()})

	rootName, names, err = root.Path()
	require.NoError(t, err)
	assert.Equal(t, "/", rootName.String())
	assert.Empty(t, names)
}

func TestNode_Path_DetachedNode(t *testing.T) {
	root := createTestRoot(t)
	addTestChild(t, root, "f", jimfs.RegularFileType)
	removed, err := root.RemoveChild(foldName("f"))
	require.NoError(t, err)

	_, _, err = removed.Path()
	assert.ErrorIs(t, err, jimfs.ErrNotFound)
}

func TestNode_IsRoot(t *testing.T) {
	root := createTestRoot(t)
	child := addTestChild(t, root, "c", jimfs.DirectoryType)

	assert.True(t, root.IsRoot())
	assert.False(t, root.Detached())
	assert.False(t, child.IsRoot())
	assert.Nil(t, root.Parent())
}

func TestNode_EntryNamesSorted(t *testing.T) {
	root := createTestRoot(t)
	for _, name := range []string{"b", "C", "a"} {
		addTestChild(t, root, name, jimfs.RegularFileType)
	}
	// ordered by canonical (folded) name, rendered with display names
	assert.Equal(t, []string{"a", "b", "C"}, root.EntryNames())
}

func TestNode_ConcurrentChildOperations(t *testing.T) {
	root := createTestRoot(t)
	var wg sync.WaitGroup

	for i := range 100 {
		wg.Go(func() {
			name := foldName(fmt.Sprintf("child%d", i))
			child := NewNode(name, newInode(uint64(1000+i), jimfs.RegularFileType))
			assert.NoError(t, root.AddChild(child))
			_, ok := root.GetChild(name)
			assert.True(t, ok)
		})
	}
	wg.Wait()
	assert.Equal(t, 100, root.ChildCount())

	for i := range 100 {
		wg.Go(func() {
			_, err := root.RemoveChild(foldName(fmt.Sprintf("CHILD%d", i)))
			assert.NoError(t, err)
		})
	}
	wg.Wait()
	assert.Equal(t, 0, root.ChildCount())
}

func TestNode_ConcurrentRemoveAndInsertIntoDirectory(t *testing.T) {
	// Removing an empty directory races with inserting into it: either the
	// insert wins and removal fails with ErrNotEmpty, or removal wins and the
	// insert fails. Never both.
	for range 50 {
		root := createTestRoot(t)
		dir := addTestChild(t, root, "d", jimfs.DirectoryType)

		var removeErr, addErr error
		var wg sync.WaitGroup
		wg.Go(func() {
			_, removeErr = root.RemoveChild(foldName("d"))
		})
		wg.Go(func() {
			addErr = dir.AddChild(NewNode(foldName("x"), newInode(9000, jimfs.RegularFileType)))
		})
		wg.Wait()

		if removeErr == nil {
			require.ErrorIs(t, addErr, jimfs.ErrNotFound)
			assert.True(t, dir.IsDel())
		} else {
			require.ErrorIs(t, removeErr, jimfs.ErrNotEmpty)
			require.NoError(t, addErr)
		}
	}
}

func TestLockDirs_OrderAndDedup(t *testing.T) {
	root := createTestRoot(t)
	a := addTestChild(t, root, "a", jimfs.DirectoryType)
	file := addTestChild(t, root, "f", jimfs.RegularFileType)

	unlock := lockDirs(a, root, a, file, nil)
	assert.False(t, root.dir.mu.TryLock())
	assert.False(t, a.dir.mu.TryLock())
	unlock()

	assert.True(t, root.dir.mu.TryLock())
	root.dir.mu.Unlock()
}
