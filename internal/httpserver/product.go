package httpserver

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/httperr"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/pagination"
)

const maxImageBytes = 10 << 20

type ProductHTTP struct {
	Svc *service.ProductService
}

func badRequest(err error, msg string) error {
	return httperr.Newf(http.StatusBadRequest, httperr.KindController, err, "%s", msg)
}

func isMultipart(c echo.Context) bool {
	return strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm)
}

func readUpload(fh *multipart.FileHeader) (service.Upload, error) {
	if fh.Size > maxImageBytes {
		return service.Upload{}, badRequest(nil, "Image "+fh.Filename+" is too large")
	}
	f, err := fh.Open()
	if err != nil {
		return service.Upload{}, badRequest(err, "Cannot read uploaded file")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxImageBytes+1))
	if err != nil {
		return service.Upload{}, badRequest(err, "Cannot read uploaded file")
	}
	ct := fh.Header.Get(echo.HeaderContentType)
	if ct == "" || ct == echo.MIMEOctetStream {
		ct = http.DetectContentType(data)
	}
	if !strings.HasPrefix(ct, "image/") {
		return service.Upload{}, badRequest(nil, "File "+fh.Filename+" is not an image")
	}
	return service.Upload{Filename: fh.Filename, ContentType: ct, Data: data}, nil
}

func readUploads(files []*multipart.FileHeader) ([]service.Upload, error) {
	out := make([]service.Upload, 0, len(files))
	for _, fh := range files {
		u, err := readUpload(fh)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

func (h *ProductHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.list")

	page := pagination.ParseIntDefault(c.QueryParam("page"), 1)
	limit := pagination.ParseIntDefault(c.QueryParam("limit"), pagination.DefaultPageSize)
	category, err := queryUint(c, "category")
	if err != nil {
		return failed(l, "list_products_failed", err)
	}

	res, err := h.Svc.List(ctx, page, limit, strings.TrimSpace(c.QueryParam("search")), category)
	if err != nil {
		return failed(l, "list_products_failed", err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *ProductHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search")

	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return failed(l, "search_products_failed", badRequest(nil, "Query parameter q is required"))
	}
	page := pagination.ParseIntDefault(c.QueryParam("page"), 1)
	size := pagination.ParseIntDefault(c.QueryParam("size"), pagination.DefaultPageSize)

	total, items, err := h.Svc.Search(ctx, q, page, size)
	if err != nil {
		return failed(l, "search_products_failed", err)
	}
	offset, limit := pagination.Calculate(page, size)
	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": pagination.NewMeta(page, offset, limit, total),
	})
}

func (h *ProductHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get")

	id, err := paramID(c, "productId")
	if err != nil {
		return failed(l, "get_product_failed", err)
	}
	p, err := h.Svc.Get(ctx, id)
	if err != nil {
		return failed(l, "get_product_failed", err)
	}
	return c.JSON(http.StatusOK, p)
}

// Create takes either a JSON body or a multipart form with the product JSON
// in the "product" field, "images" files and an optional "overview_img".
func (h *ProductHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create")

	var (
		req      transport.CreateProductRequest
		images   []service.Upload
		overview *service.Upload
	)

	if isMultipart(c) {
		form, err := c.MultipartForm()
		if err != nil {
			return failed(l, "create_product_failed", badRequest(err, "Invalid multipart form"))
		}
		raw := form.Value["product"]
		if len(raw) == 0 {
			return failed(l, "create_product_failed", badRequest(nil, "Field product is required"))
		}
		if err := json.Unmarshal([]byte(raw[0]), &req); err != nil {
			return failed(l, "create_product_failed", badRequest(err, "Invalid product JSON"))
		}
		if images, err = readUploads(form.File["images"]); err != nil {
			return failed(l, "create_product_failed", err)
		}
		if fhs := form.File["overview_img"]; len(fhs) > 0 {
			u, err := readUpload(fhs[0])
			if err != nil {
				return failed(l, "create_product_failed", err)
			}
			overview = &u
		}
		if err := c.Validate(&req); err != nil {
			return failed(l, "create_product_failed", err)
		}
	} else if err := bind(c, &req); err != nil {
		return failed(l, "create_product_failed", err)
	}

	p, err := h.Svc.Create(ctx, req, images, overview)
	if err != nil {
		return failed(l, "create_product_failed", err)
	}

	l.Info("create_product_success", "product_id", p.ID)
	return c.JSON(http.StatusCreated, p)
}

func (h *ProductHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.update")

	id, err := paramID(c, "productId")
	if err != nil {
		return failed(l, "update_product_failed", err)
	}
	var req transport.PatchProductRequest
	if err := bind(c, &req); err != nil {
		return failed(l, "update_product_failed", err)
	}
	p, err := h.Svc.Update(ctx, id, req)
	if err != nil {
		return failed(l, "update_product_failed", err)
	}

	l.Info("update_product_success", "product_id", p.ID)
	return c.JSON(http.StatusOK, p)
}

func (h *ProductHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete")

	id, err := paramID(c, "productId")
	if err != nil {
		return failed(l, "delete_product_failed", err)
	}
	if err := h.Svc.Delete(ctx, id); err != nil {
		return failed(l, "delete_product_failed", err)
	}

	l.Info("delete_product_success", "product_id", id)
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Product deleted successfully"})
}

func (h *ProductHTTP) AddImages(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.add_images")

	id, err := paramID(c, "productId")
	if err != nil {
		return failed(l, "add_images_failed", err)
	}
	form, err := c.MultipartForm()
	if err != nil {
		return failed(l, "add_images_failed", badRequest(err, "Invalid multipart form"))
	}
	files, err := readUploads(form.File["images"])
	if err != nil {
		return failed(l, "add_images_failed", err)
	}

	images, err := h.Svc.AddImages(ctx, id, files)
	if err != nil {
		return failed(l, "add_images_failed", err)
	}
	return c.JSON(http.StatusCreated, images)
}

func (h *ProductHTTP) DeleteImage(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete_image")

	productID, err := paramID(c, "productId")
	if err != nil {
		return failed(l, "delete_image_failed", err)
	}
	imageID, err := paramID(c, "imageId")
	if err != nil {
		return failed(l, "delete_image_failed", err)
	}
	if err := h.Svc.DeleteImage(ctx, productID, imageID); err != nil {
		return failed(l, "delete_image_failed", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ProductHTTP) ListDetails(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.list_details")

	id, err := paramID(c, "productId")
	if err != nil {
		return failed(l, "list_details_failed", err)
	}
	details, err := h.Svc.ListDetails(ctx, id)
	if err != nil {
		return failed(l, "list_details_failed", err)
	}
	return c.JSON(http.StatusOK, details)
}

func (h *ProductHTTP) AddDetail(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.add_detail")

	id, err := paramID(c, "productId")
	if err != nil {
		return failed(l, "add_detail_failed", err)
	}
	var req transport.ProductDetailRequest
	if err := bind(c, &req); err != nil {
		return failed(l, "add_detail_failed", err)
	}
	d, err := h.Svc.AddDetail(ctx, id, req)
	if err != nil {
		return failed(l, "add_detail_failed", err)
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *ProductHTTP) UpdateDetail(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.update_detail")

	productID, err := paramID(c, "productId")
	if err != nil {
		return failed(l, "update_detail_failed", err)
	}
	detailID, err := paramID(c, "detailId")
	if err != nil {
		return failed(l, "update_detail_failed", err)
	}
	var req transport.PatchProductDetailRequest
	if err := bind(c, &req); err != nil {
		return failed(l, "update_detail_failed", err)
	}
	d, err := h.Svc.UpdateDetail(ctx, productID, detailID, req)
	if err != nil {
		return failed(l, "update_detail_failed", err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *ProductHTTP) DeleteDetail(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete_detail")

	productID, err := paramID(c, "productId")
	if err != nil {
		return failed(l, "delete_detail_failed", err)
	}
	detailID, err := paramID(c, "detailId")
	if err != nil {
		return failed(l, "delete_detail_failed", err)
	}
	if err := h.Svc.DeleteDetail(ctx, productID, detailID); err != nil {
		return failed(l, "delete_detail_failed", err)
	}
	return c.NoContent(http.StatusNoContent)
}
