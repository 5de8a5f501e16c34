package service

import (
	"context"
	"time"

	"github.com/Skotchmaster/storefront/internal/cache"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/validation"
)

const (
	categoryNotFound = "Category not found"
	categoryTreeKey  = "categories:tree"
)

type CategoryService struct {
	Repo     *repo.GormRepo
	Cache    cache.Cache
	CacheTTL time.Duration
}

// BuildTree links cats by parent id and returns the roots. Categories whose
// parent is missing are treated as roots. Sibling order follows cats.
func BuildTree(cats []models.Category) []*models.Category {
	nodes := make(map[uint]*models.Category, len(cats))
	for i := range cats {
		c := cats[i]
		c.Children = nil
		nodes[c.ID] = &c
	}

	roots := make([]*models.Category, 0)
	for i := range cats {
		node := nodes[cats[i].ID]
		if node.ParentID != nil {
			if parent, ok := nodes[*node.ParentID]; ok && parent != node {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots
}

func findNode(nodes []*models.Category, id uint) *models.Category {
	for _, n := range nodes {
		if n.ID == id {
			return n
		}
		if found := findNode(n.Children, id); found != nil {
			return found
		}
	}
	return nil
}

// SubtreeIDs returns root's id followed by the ids of all its descendants.
func SubtreeIDs(root *models.Category) []uint {
	ids := []uint{root.ID}
	for _, ch := range root.Children {
		ids = append(ids, SubtreeIDs(ch)...)
	}
	return ids
}

func (s *CategoryService) store() cache.Cache {
	if s.Cache == nil {
		return cache.Nop{}
	}
	return s.Cache
}

func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	cats, err := s.Repo.ListCategories(ctx)
	return cats, dbErr(err, "")
}

func (s *CategoryService) Tree(ctx context.Context) ([]*models.Category, error) {
	l := logging.FromContext(ctx).With("svc", "category.tree")

	var roots []*models.Category
	hit, err := s.store().Get(ctx, categoryTreeKey, &roots)
	if err != nil {
		l.Warn("cache_get_failed", "key", categoryTreeKey, "error", err)
	}
	if hit {
		return roots, nil
	}

	cats, err := s.Repo.ListCategories(ctx)
	if err != nil {
		return nil, dbErr(err, "")
	}
	roots = BuildTree(cats)
	if err := s.store().Set(ctx, categoryTreeKey, roots, s.CacheTTL); err != nil {
		l.Warn("cache_set_failed", "key", categoryTreeKey, "error", err)
	}
	return roots, nil
}

// Children lists direct children of parentID; zero selects root categories.
func (s *CategoryService) Children(ctx context.Context, parentID uint) ([]models.Category, error) {
	var parent *uint
	if parentID != 0 {
		parent = &parentID
	}
	cats, err := s.Repo.ListCategoriesByParent(ctx, parent)
	return cats, dbErr(err, "")
}

// Get returns the category with its nested subtree.
func (s *CategoryService) Get(ctx context.Context, id uint) (*models.Category, error) {
	roots, err := s.Tree(ctx)
	if err != nil {
		return nil, err
	}
	node := findNode(roots, id)
	if node == nil {
		return nil, fail(ErrNotFound, categoryNotFound)
	}
	return node, nil
}

// SubtreeOf returns id and every descendant id; used to filter products by category.
func (s *CategoryService) SubtreeOf(ctx context.Context, id uint) ([]uint, error) {
	node, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return SubtreeIDs(node), nil
}

func normalizeParent(p *uint) *uint {
	if p == nil || *p == 0 {
		return nil
	}
	return p
}

func (s *CategoryService) Create(ctx context.Context, req transport.CategoryRequest) (*models.Category, error) {
	parent := normalizeParent(req.ParentID)
	if parent != nil {
		if _, err := s.Repo.GetCategory(ctx, *parent); err != nil {
			return nil, dbErr(err, "Parent category not found")
		}
	}

	c := &models.Category{Name: validation.Sanitize(req.Name), ParentID: parent}
	if err := s.Repo.CreateCategory(ctx, c); err != nil {
		return nil, dbErr(err, "")
	}
	s.invalidate(ctx)
	return c, nil
}

func (s *CategoryService) Update(ctx context.Context, id uint, req transport.PatchCategoryRequest) (*models.Category, error) {
	if req.Name == nil && !req.SetParent {
		return nil, fail(ErrValidation, "No update fields provided")
	}

	c, err := s.Repo.GetCategory(ctx, id)
	if err != nil {
		return nil, dbErr(err, categoryNotFound)
	}

	if req.Name != nil {
		c.Name = validation.Sanitize(*req.Name)
	}
	if req.SetParent {
		parent := normalizeParent(req.ParentID)
		if parent != nil {
			if err := s.checkMove(ctx, id, *parent); err != nil {
				return nil, err
			}
		}
		c.ParentID = parent
	}

	if err := s.Repo.SaveCategory(ctx, c); err != nil {
		return nil, dbErr(err, categoryNotFound)
	}
	s.invalidate(ctx)
	return c, nil
}

// checkMove rejects a new parent that is the category itself or one of its descendants.
func (s *CategoryService) checkMove(ctx context.Context, id, parentID uint) error {
	if parentID == id {
		return fail(ErrValidation, "Category can not be its own parent")
	}
	if _, err := s.Repo.GetCategory(ctx, parentID); err != nil {
		return dbErr(err, "Parent category not found")
	}

	cats, err := s.Repo.ListCategories(ctx)
	if err != nil {
		return dbErr(err, "")
	}
	node := findNode(BuildTree(cats), id)
	if node == nil {
		return nil
	}
	for _, d := range SubtreeIDs(node) {
		if d == parentID {
			return fail(ErrValidation, "Category can not be moved under its own descendant")
		}
	}
	return nil
}

func (s *CategoryService) Delete(ctx context.Context, id uint) error {
	if _, err := s.Repo.GetCategory(ctx, id); err != nil {
		return dbErr(err, categoryNotFound)
	}

	cats, err := s.Repo.ListCategories(ctx)
	if err != nil {
		return dbErr(err, "")
	}
	ids := []uint{id}
	if node := findNode(BuildTree(cats), id); node != nil {
		ids = SubtreeIDs(node)
	}

	if err := s.Repo.DeleteCategories(ctx, ids); err != nil {
		return dbErr(err, "")
	}
	s.invalidate(ctx)
	return nil
}

func (s *CategoryService) invalidate(ctx context.Context) {
	if err := s.store().Delete(ctx, categoryTreeKey); err != nil {
		logging.FromContext(ctx).Warn("cache_invalidate_failed", "key", categoryTreeKey, "error", err)
	}
}
