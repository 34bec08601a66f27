package category

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ifixzone/shop/internal/models"
)

func uintPtr(v uint) *uint { return &v }

// Root(1) -> A(2), B(3); A(2) -> AA(4)
func sampleForest() *Forest {
	return NewForest([]models.Category{
		{ID: 1, Name: "Root"},
		{ID: 2, Name: "A", ParentID: uintPtr(1)},
		{ID: 3, Name: "B", ParentID: uintPtr(1)},
		{ID: 4, Name: "AA", ParentID: uintPtr(2)},
	})
}

func TestDescendants(t *testing.T) {
	f := sampleForest()

	require.ElementsMatch(t, []uint{2, 3, 4}, f.Descendants(1))
	require.ElementsMatch(t, []uint{4}, f.Descendants(2))
	require.Empty(t, f.Descendants(4))
	require.Empty(t, f.Descendants(99))
}

func TestScopedIDs(t *testing.T) {
	f := sampleForest()

	require.ElementsMatch(t, []uint{1, 2, 3, 4}, f.ScopedIDs(1))
	require.ElementsMatch(t, []uint{2, 4}, f.ScopedIDs(2))
	require.ElementsMatch(t, []uint{3}, f.ScopedIDs(3))
}

func TestBreadcrumbPath(t *testing.T) {
	f := sampleForest()

	path := f.BreadcrumbPath(4)
	require.Len(t, path, 3)
	require.Equal(t, "Root", path[0].Name)
	require.Equal(t, "A", path[1].Name)
	require.Equal(t, "AA", path[2].Name)

	require.Len(t, f.BreadcrumbPath(1), 1)
	require.Empty(t, f.BreadcrumbPath(99))
}

func TestCycleTermination(t *testing.T) {
	// 1 -> 2 -> 3 -> 1: a careless admin edit, not a valid forest.
	f := NewForest([]models.Category{
		{ID: 1, Name: "X", ParentID: uintPtr(3)},
		{ID: 2, Name: "Y", ParentID: uintPtr(1)},
		{ID: 3, Name: "Z", ParentID: uintPtr(2)},
	})

	require.ElementsMatch(t, []uint{2, 3}, f.Descendants(1))

	path := f.BreadcrumbPath(1)
	require.NotEmpty(t, path)
	require.LessOrEqual(t, len(path), 3)
}

func TestSelfParentTermination(t *testing.T) {
	f := NewForest([]models.Category{
		{ID: 1, Name: "Loop", ParentID: uintPtr(1)},
	})

	require.Empty(t, f.Descendants(1))
	require.Len(t, f.BreadcrumbPath(1), 1)
}

func TestProductCountUnder(t *testing.T) {
	f := sampleForest()

	products := []models.Product{
		{ID: 10, CategoryID: 1, Active: true},
		{ID: 11, CategoryID: 2, Active: true},
		{ID: 12, CategoryID: 4, Active: true},
		{ID: 13, CategoryID: 4, Active: false},
		{ID: 14, CategoryID: 3, Active: true},
	}

	require.Equal(t, 4, f.ProductCountUnder(1, products))
	require.Equal(t, 2, f.ProductCountUnder(2, products))
	require.Equal(t, 1, f.ProductCountUnder(4, products))
	require.Equal(t, 0, f.ProductCountUnder(99, products))
}

func TestTree(t *testing.T) {
	f := sampleForest()

	tree := f.Tree()
	require.Len(t, tree, 1)
	require.Equal(t, "Root", tree[0].Category.Name)
	require.Len(t, tree[0].Children, 2)
	// Siblings are sorted by name.
	require.Equal(t, "A", tree[0].Children[0].Category.Name)
	require.Equal(t, "B", tree[0].Children[1].Category.Name)
	require.Len(t, tree[0].Children[0].Children, 1)
	require.Equal(t, "AA", tree[0].Children[0].Children[0].Category.Name)
}

func TestOrphanBecomesRoot(t *testing.T) {
	f := NewForest([]models.Category{
		{ID: 1, Name: "Root"},
		{ID: 5, Name: "Orphan", ParentID: uintPtr(42)},
	})

	tree := f.Tree()
	require.Len(t, tree, 2)
}
