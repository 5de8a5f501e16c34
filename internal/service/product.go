package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/storage"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/httperr"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/pagination"
	"github.com/Skotchmaster/storefront/pkg/validation"
)

const (
	EventProductCreated = "product_created"
	EventProductUpdated = "product_updated"
	EventProductDeleted = "product_deleted"
)

type Indexer interface {
	IndexProduct(ctx context.Context, doc search.Document) error
	DeleteProduct(ctx context.Context, id uint) error
	Search(ctx context.Context, query string, from, size int) (int64, []uint, error)
}

// Upload is a file received with a request, not yet stored.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

type ProductService struct {
	Repo       *repo.GormRepo
	Categories *CategoryService
	Index      Indexer
	Storage    storage.Provider
	Events     events.Publisher
	MaxImages  int
}

var maxDiscount = decimal.NewFromInt(100)

func productNotFound(id uint) error {
	return fail(ErrNotFound, "Product with ID %d not found", id)
}

func (s *ProductService) maxImages() int {
	if s.MaxImages <= 0 {
		return 5
	}
	return s.MaxImages
}

func (s *ProductService) List(ctx context.Context, page, limit int, query string, categoryID uint) (*transport.ProductListResponse, error) {
	offset, limit := pagination.Calculate(page, limit)
	f := repo.ProductFilter{Search: query, Offset: offset, Limit: limit}

	if categoryID != 0 {
		ids, err := s.Categories.SubtreeOf(ctx, categoryID)
		if err != nil {
			return nil, err
		}
		f.CategoryIDs = ids
	}

	total, products, err := s.Repo.ListProducts(ctx, f)
	if err != nil {
		return nil, dbErr(err, "")
	}
	if products == nil {
		products = []models.Product{}
	}
	meta := pagination.NewMeta(page, offset, limit, total)
	return &transport.ProductListResponse{
		Products:      products,
		TotalProducts: total,
		Limit:         limit,
		Page:          meta.Page,
		MaxPages:      meta.TotalPages,
	}, nil
}

// Search ranks through the search index when one is configured and falls
// back to a LIKE query when it is absent or failing.
func (s *ProductService) Search(ctx context.Context, query string, page, size int) (int64, []models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "product.search")
	offset, limit := pagination.Calculate(page, size)

	if s.Index != nil {
		total, ids, err := s.Index.Search(ctx, query, offset, limit)
		if err == nil {
			products, err := s.Repo.GetProductsByIDs(ctx, ids)
			if err != nil {
				return 0, nil, dbErr(err, "")
			}
			return total, products, nil
		}
		l.Warn("search_index_failed", "reason", "falling back to database", "error", err)
	}

	total, products, err := s.Repo.ListProducts(ctx, repo.ProductFilter{Search: query, Offset: offset, Limit: limit})
	if err != nil {
		return 0, nil, dbErr(err, "")
	}
	return total, products, nil
}

func (s *ProductService) Get(ctx context.Context, id uint) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		if err = dbErr(err, ""); isNotFound(err) {
			return nil, productNotFound(id)
		}
		return nil, err
	}
	return p, nil
}

func checkDetail(price, discount decimal.Decimal) error {
	if price.IsNegative() {
		return fail(ErrValidation, "Detail price must not be negative")
	}
	if discount.IsNegative() || discount.GreaterThan(maxDiscount) {
		return fail(ErrValidation, "Discount must be between 0 and 100")
	}
	return nil
}

func (s *ProductService) checkRefs(ctx context.Context, categoryID *uint, groupIDs []uint) error {
	if categoryID != nil && *categoryID != 0 {
		if _, err := s.Repo.GetCategory(ctx, *categoryID); err != nil {
			return dbErr(err, categoryNotFound)
		}
	}
	if len(groupIDs) > 0 {
		uniq := uniqueIDs(groupIDs)
		n, err := s.Repo.CountGroups(ctx, uniq)
		if err != nil {
			return dbErr(err, "")
		}
		if n != int64(len(uniq)) {
			return fail(ErrNotFound, groupNotFound)
		}
	}
	return nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// store uploads files and returns their URLs; on failure already stored files are removed.
func (s *ProductService) store(ctx context.Context, files []Upload) ([]string, error) {
	urls := make([]string, 0, len(files))
	for _, f := range files {
		if s.Storage == nil {
			return nil, fail(ErrValidation, "File uploads are not supported")
		}
		url, err := s.Storage.Upload(ctx, f.Data, f.Filename, f.ContentType)
		if err != nil {
			s.removeFiles(ctx, urls)
			return nil, httperr.Wrap(err, httperr.KindService)
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func (s *ProductService) removeFiles(ctx context.Context, urls []string) {
	if s.Storage == nil {
		return
	}
	l := logging.FromContext(ctx)
	for _, u := range urls {
		if u == "" {
			continue
		}
		if err := s.Storage.Delete(ctx, u); err != nil && !errors.Is(err, storage.ErrForeignURL) {
			l.Warn("storage_delete_failed", "url", u, "error", err)
		}
	}
}

func (s *ProductService) Create(ctx context.Context, req transport.CreateProductRequest, images []Upload, overview *Upload) (*models.Product, error) {
	if !req.Price.IsPositive() {
		return nil, fail(ErrValidation, "Price must be greater than 0")
	}
	if n := len(req.Images) + len(images); n < 1 || n > s.maxImages() {
		return nil, fail(ErrValidation, "Product must have between 1 and %d images", s.maxImages())
	}
	for _, d := range req.Details {
		if err := checkDetail(d.Price, d.Discount); err != nil {
			return nil, err
		}
	}
	if err := s.checkRefs(ctx, req.CategoryID, req.GroupIDs); err != nil {
		return nil, err
	}

	uploaded, err := s.store(ctx, images)
	if err != nil {
		return nil, err
	}
	overviewURL := req.OverviewImgURL
	if overview != nil {
		urls, err := s.store(ctx, []Upload{*overview})
		if err != nil {
			s.removeFiles(ctx, uploaded)
			return nil, err
		}
		overviewURL = urls[0]
		uploaded = append(uploaded, overviewURL)
	}

	p := &models.Product{
		Name:           validation.Sanitize(req.Name),
		Description:    validation.Sanitize(req.Description),
		Price:          req.Price,
		CategoryID:     normalizeParent(req.CategoryID),
		OverviewImgURL: overviewURL,
	}
	for _, u := range append(append([]string{}, req.Images...), uploaded[:len(images)]...) {
		p.Images = append(p.Images, models.ProductImage{ImageURL: u})
	}
	if p.OverviewImgURL == "" && len(p.Images) > 0 {
		p.OverviewImgURL = p.Images[0].ImageURL
	}
	for _, d := range req.Details {
		p.Details = append(p.Details, detailFromRequest(d))
	}

	if err := s.Repo.CreateProduct(ctx, p, uniqueIDs(req.GroupIDs)); err != nil {
		s.removeFiles(ctx, uploaded)
		return nil, dbErr(err, "")
	}

	created, err := s.Get(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	s.index(ctx, created)
	publish(ctx, s.Events, events.TopicProducts, events.New(EventProductCreated, created.ID, 0, map[string]any{"name": created.Name}))
	return created, nil
}

func detailFromRequest(d transport.ProductDetailRequest) models.ProductDetail {
	return models.ProductDetail{
		Size:       validation.Sanitize(d.Size),
		Color:      validation.Sanitize(d.Color),
		Price:      d.Price.Round(2),
		Discount:   d.Discount.Round(2),
		Stock:      d.Stock,
		ImgPreview: d.ImgPreview,
	}
}

func (s *ProductService) Update(ctx context.Context, id uint, req transport.PatchProductRequest) (*models.Product, error) {
	if req.Name == nil && req.Description == nil && req.Price == nil &&
		req.CategoryID == nil && req.OverviewImgURL == nil && req.GroupIDs == nil {
		return nil, fail(ErrValidation, "No update fields provided")
	}

	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var groupIDs []uint
	if req.GroupIDs != nil {
		groupIDs = uniqueIDs(*req.GroupIDs)
	}
	if err := s.checkRefs(ctx, req.CategoryID, groupIDs); err != nil {
		return nil, err
	}

	if req.Name != nil {
		p.Name = validation.Sanitize(*req.Name)
	}
	if req.Description != nil {
		p.Description = validation.Sanitize(*req.Description)
	}
	if req.Price != nil {
		if !req.Price.IsPositive() {
			return nil, fail(ErrValidation, "Price must be greater than 0")
		}
		p.Price = *req.Price
	}
	if req.CategoryID != nil {
		p.CategoryID = normalizeParent(req.CategoryID)
	}
	if req.OverviewImgURL != nil {
		p.OverviewImgURL = *req.OverviewImgURL
	}

	err = s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		if err := tx.SaveProduct(ctx, p); err != nil {
			return err
		}
		if req.GroupIDs != nil {
			return tx.ReplaceProductGroups(ctx, p.ID, groupIDs)
		}
		return nil
	})
	if err != nil {
		return nil, dbErr(err, "")
	}

	updated, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.index(ctx, updated)
	publish(ctx, s.Events, events.TopicProducts, events.New(EventProductUpdated, id, 0, nil))
	return updated, nil
}

func (s *ProductService) Delete(ctx context.Context, id uint) error {
	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		return dbErr(err, "")
	}

	files := []string{p.OverviewImgURL}
	for _, img := range p.Images {
		if img.ImageURL != p.OverviewImgURL {
			files = append(files, img.ImageURL)
		}
	}
	s.removeFiles(ctx, files)

	if s.Index != nil {
		if err := s.Index.DeleteProduct(ctx, id); err != nil {
			logging.FromContext(ctx).Warn("search_delete_failed", "product_id", id, "error", err)
		}
	}
	publish(ctx, s.Events, events.TopicProducts, events.New(EventProductDeleted, id, 0, nil))
	return nil
}

func (s *ProductService) index(ctx context.Context, p *models.Product) {
	if s.Index == nil {
		return
	}
	doc := search.Document{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.StringFixed(2),
		CategoryID:  p.CategoryID,
	}
	if err := s.Index.IndexProduct(ctx, doc); err != nil {
		logging.FromContext(ctx).Warn("search_index_failed", "product_id", p.ID, "error", err)
	}
}

func (s *ProductService) ensureProduct(ctx context.Context, id uint) error {
	ok, err := s.Repo.ProductExists(ctx, id)
	if err != nil {
		return dbErr(err, "")
	}
	if !ok {
		return productNotFound(id)
	}
	return nil
}

func (s *ProductService) AddImages(ctx context.Context, productID uint, files []Upload) ([]models.ProductImage, error) {
	if err := s.ensureProduct(ctx, productID); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fail(ErrValidation, "At least one image is required")
	}
	count, err := s.Repo.CountImages(ctx, productID)
	if err != nil {
		return nil, dbErr(err, "")
	}
	if int(count)+len(files) > s.maxImages() {
		return nil, fail(ErrValidation, "Product can have at most %d images", s.maxImages())
	}

	urls, err := s.store(ctx, files)
	if err != nil {
		return nil, err
	}
	images := make([]models.ProductImage, 0, len(urls))
	for _, u := range urls {
		images = append(images, models.ProductImage{ProductID: productID, ImageURL: u})
	}
	if err := s.Repo.CreateImages(ctx, images); err != nil {
		s.removeFiles(ctx, urls)
		return nil, dbErr(err, "")
	}
	publish(ctx, s.Events, events.TopicProducts, events.New(EventProductUpdated, productID, 0, map[string]any{"images_added": len(images)}))
	return images, nil
}

func (s *ProductService) DeleteImage(ctx context.Context, productID, imageID uint) error {
	img, err := s.Repo.GetImage(ctx, productID, imageID)
	if err != nil {
		return dbErr(err, "Image not found")
	}
	count, err := s.Repo.CountImages(ctx, productID)
	if err != nil {
		return dbErr(err, "")
	}
	if count <= 1 {
		return fail(ErrValidation, "Product must keep at least one image")
	}
	if err := s.Repo.DeleteImage(ctx, img.ID); err != nil {
		return dbErr(err, "")
	}
	s.removeFiles(ctx, []string{img.ImageURL})
	return nil
}

func (s *ProductService) ListDetails(ctx context.Context, productID uint) ([]models.ProductDetail, error) {
	if err := s.ensureProduct(ctx, productID); err != nil {
		return nil, err
	}
	details, err := s.Repo.ListDetails(ctx, productID)
	return details, dbErr(err, "")
}

func (s *ProductService) AddDetail(ctx context.Context, productID uint, req transport.ProductDetailRequest) (*models.ProductDetail, error) {
	if err := s.ensureProduct(ctx, productID); err != nil {
		return nil, err
	}
	if err := checkDetail(req.Price, req.Discount); err != nil {
		return nil, err
	}
	d := detailFromRequest(req)
	d.ProductID = productID
	if err := s.Repo.CreateDetail(ctx, &d); err != nil {
		return nil, dbErr(err, "")
	}
	return &d, nil
}

func (s *ProductService) UpdateDetail(ctx context.Context, productID, detailID uint, req transport.PatchProductDetailRequest) (*models.ProductDetail, error) {
	d, err := s.Repo.GetDetail(ctx, productID, detailID)
	if err != nil {
		return nil, dbErr(err, "Product detail not found")
	}

	changed := false
	if req.Size != nil {
		d.Size, changed = validation.Sanitize(*req.Size), true
	}
	if req.Color != nil {
		d.Color, changed = validation.Sanitize(*req.Color), true
	}
	if req.Price != nil {
		d.Price, changed = req.Price.Round(2), true
	}
	if req.Discount != nil {
		d.Discount, changed = req.Discount.Round(2), true
	}
	if req.Stock != nil {
		d.Stock, changed = *req.Stock, true
	}
	if req.ImgPreview != nil {
		d.ImgPreview, changed = *req.ImgPreview, true
	}
	if !changed {
		return nil, fail(ErrValidation, "No update fields provided")
	}
	if err := checkDetail(d.Price, d.Discount); err != nil {
		return nil, err
	}

	if err := s.Repo.SaveDetail(ctx, d); err != nil {
		return nil, dbErr(err, "")
	}
	return d, nil
}

func (s *ProductService) DeleteDetail(ctx context.Context, productID, detailID uint) error {
	d, err := s.Repo.GetDetail(ctx, productID, detailID)
	if err != nil {
		return dbErr(err, "Product detail not found")
	}
	return dbErr(s.Repo.DeleteDetail(ctx, d.ID), "")
}
