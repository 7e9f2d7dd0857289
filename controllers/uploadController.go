package controllers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/zulfuqarov/CarsTrack/models"
	"github.com/zulfuqarov/CarsTrack/storage"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// multipart field the admin apps send image batches under
const uploadField = "images"

var allowedImageMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// sniffMIME detects the content type from the file bytes instead of
// trusting the client-supplied header.
func sniffMIME(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	buf := make([]byte, 512)
	n, err := src.Read(buf)
	if err != nil && err != io.EOF {
		return "", err
	}
	return http.DetectContentType(buf[:n]), nil
}

// UploadImages accepts a multipart batch for one pipeline category,
// validates every file before anything is written, then stores the batch
// concurrently and returns the public URLs in file order.
func UploadImages(store storage.Storage, maxSize int64) fiber.Handler {
	return func(c *fiber.Ctx) error {
		category := c.Params("category")
		if !models.ValidImageCategory(category) {
			return fiber.NewError(fiber.StatusBadRequest, "unknown image category")
		}

		form, err := c.MultipartForm()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "no images uploaded")
		}

		files := form.File[uploadField]
		if len(files) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, `images must be sent under the "images" field`)
		}

		// Reject the whole batch before a single byte is stored.
		for _, file := range files {
			if file.Size > maxSize {
				return fiber.NewError(fiber.StatusBadRequest,
					fmt.Sprintf("file %s exceeds the %d MB limit", file.Filename, maxSize/(1024*1024)))
			}
			mime, err := sniffMIME(file)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "could not read uploaded file")
			}
			if !allowedImageMIME[mime] {
				return fiber.NewError(fiber.StatusBadRequest, "only image files are accepted")
			}
		}

		urls := make([]string, len(files))
		g, ctx := errgroup.WithContext(c.UserContext())
		for i, file := range files {
			i, file := i, file
			g.Go(func() error {
				url, err := store.Store(ctx, file, category)
				if err != nil {
					return err
				}
				urls[i] = url
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			zap.L().Error("image upload failed",
				zap.String("category", category),
				zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "could not store images")
		}

		return c.JSON(fiber.Map{"urls": urls})
	}
}
