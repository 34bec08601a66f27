// Package category resolves queries over the externally maintained category
// forest: descendant sets for scoped product listings, breadcrumb paths and
// the nested navigation tree.
//
// The forest is supplied by an admin collaborator that does not enforce
// acyclicity at the data layer, so every traversal carries a visited set and
// treats a re-visited node as a hard stop instead of trusting the tree
// assumption.
package category

import (
	"sort"

	"github.com/ifixzone/shop/internal/models"
)

// Forest is an in-memory snapshot of the category table, indexed for
// traversal. It never mutates the categories it was built from.
type Forest struct {
	nodes    map[uint]models.Category
	children map[uint][]uint
	roots    []uint
}

func NewForest(categories []models.Category) *Forest {
	f := &Forest{
		nodes:    make(map[uint]models.Category, len(categories)),
		children: make(map[uint][]uint),
	}
	for _, c := range categories {
		f.nodes[c.ID] = c
	}
	for _, c := range categories {
		if c.ParentID == nil {
			f.roots = append(f.roots, c.ID)
			continue
		}
		if _, ok := f.nodes[*c.ParentID]; !ok {
			// Orphaned parent reference: treat as a root so the node
			// stays reachable from the menu.
			f.roots = append(f.roots, c.ID)
			continue
		}
		f.children[*c.ParentID] = append(f.children[*c.ParentID], c.ID)
	}
	return f
}

// Descendants returns every category id reachable through child links from
// id, excluding id itself. Unknown ids and leaves yield an empty set.
func (f *Forest) Descendants(id uint) []uint {
	visited := map[uint]bool{id: true}
	var out []uint

	stack := append([]uint(nil), f.children[id]...)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[cur] {
			continue
		}
		visited[cur] = true
		out = append(out, cur)
		stack = append(stack, f.children[cur]...)
	}
	return out
}

// ScopedIDs is Descendants plus the category itself, used to scope a product
// query to "this category and everything under it".
func (f *Forest) ScopedIDs(id uint) []uint {
	return append([]uint{id}, f.Descendants(id)...)
}

// BreadcrumbPath walks parent links upward from id and returns the chain
// root first, id last. An unknown id yields an empty path.
func (f *Forest) BreadcrumbPath(id uint) []models.Category {
	cur, ok := f.nodes[id]
	if !ok {
		return nil
	}

	visited := map[uint]bool{}
	path := []models.Category{cur}
	for cur.ParentID != nil {
		if visited[cur.ID] {
			break
		}
		visited[cur.ID] = true

		parent, ok := f.nodes[*cur.ParentID]
		if !ok {
			break
		}
		path = append(path, parent)
		cur = parent
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// ProductCountUnder counts active products whose category falls inside
// ScopedIDs(id).
func (f *Forest) ProductCountUnder(id uint, products []models.Product) int {
	scope := make(map[uint]bool)
	for _, cid := range f.ScopedIDs(id) {
		scope[cid] = true
	}

	count := 0
	for _, p := range products {
		if p.Active && scope[p.CategoryID] {
			count++
		}
	}
	return count
}

// Node is one entry of the nested navigation menu.
type Node struct {
	Category models.Category `json:"category"`
	Children []*Node         `json:"children"`
}

// Tree builds the parent-to-child menu structure for the whole forest,
// siblings sorted by name.
func (f *Forest) Tree() []*Node {
	visited := make(map[uint]bool)
	return f.build(f.roots, visited)
}

func (f *Forest) build(ids []uint, visited map[uint]bool) []*Node {
	var nodes []*Node
	for _, id := range ids {
		if visited[id] {
			continue
		}
		visited[id] = true
		nodes = append(nodes, &Node{
			Category: f.nodes[id],
			Children: f.build(f.children[id], visited),
		})
	}
	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].Category.Name < nodes[j].Category.Name
	})
	return nodes
}
