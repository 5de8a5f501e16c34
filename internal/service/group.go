package service

import (
	"context"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/validation"
)

const groupNotFound = "Group not found"

type GroupService struct {
	Repo *repo.GormRepo
}

func (s *GroupService) List(ctx context.Context) ([]models.Group, error) {
	groups, err := s.Repo.ListGroups(ctx)
	return groups, dbErr(err, "")
}

func (s *GroupService) Get(ctx context.Context, id uint) (*models.Group, error) {
	g, err := s.Repo.GetGroup(ctx, id, true)
	return g, dbErr(err, groupNotFound)
}

func (s *GroupService) Create(ctx context.Context, req transport.GroupRequest) (*models.Group, error) {
	g := &models.Group{Name: validation.Sanitize(req.Name)}
	if err := s.Repo.CreateGroup(ctx, g); err != nil {
		if err = dbErr(err, ""); isConflict(err) {
			return nil, fail(ErrConflict, "Group %q already exists", g.Name)
		}
		return nil, err
	}
	return g, nil
}

func (s *GroupService) Update(ctx context.Context, id uint, req transport.GroupRequest) (*models.Group, error) {
	g, err := s.Repo.GetGroup(ctx, id, false)
	if err != nil {
		return nil, dbErr(err, groupNotFound)
	}
	g.Name = validation.Sanitize(req.Name)
	if err := s.Repo.SaveGroup(ctx, g); err != nil {
		if err = dbErr(err, groupNotFound); isConflict(err) {
			return nil, fail(ErrConflict, "Group %q already exists", g.Name)
		}
		return nil, err
	}
	return g, nil
}

func (s *GroupService) Delete(ctx context.Context, id uint) error {
	return dbErr(s.Repo.DeleteGroup(ctx, id), groupNotFound)
}

func (s *GroupService) checkPair(ctx context.Context, groupID, productID uint) error {
	if _, err := s.Repo.GetGroup(ctx, groupID, false); err != nil {
		return dbErr(err, groupNotFound)
	}
	ok, err := s.Repo.ProductExists(ctx, productID)
	if err != nil {
		return dbErr(err, "")
	}
	if !ok {
		return fail(ErrNotFound, "Product with ID %d not found", productID)
	}
	return nil
}

func (s *GroupService) AddProduct(ctx context.Context, groupID, productID uint) error {
	if err := s.checkPair(ctx, groupID, productID); err != nil {
		return err
	}
	linked, err := s.Repo.GroupHasProduct(ctx, groupID, productID)
	if err != nil {
		return dbErr(err, "")
	}
	if linked {
		return fail(ErrConflict, "Product already in group")
	}
	return dbErr(s.Repo.AddProductToGroup(ctx, groupID, productID), "")
}

func (s *GroupService) RemoveProduct(ctx context.Context, groupID, productID uint) error {
	if err := s.checkPair(ctx, groupID, productID); err != nil {
		return err
	}
	linked, err := s.Repo.GroupHasProduct(ctx, groupID, productID)
	if err != nil {
		return dbErr(err, "")
	}
	if !linked {
		return fail(ErrNotFound, "Product not in group")
	}
	return dbErr(s.Repo.RemoveProductFromGroup(ctx, groupID, productID), "")
}
