package handler

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"linkvault/internal/http/middleware"
	"linkvault/internal/service"
)

// PasswordHeader carries the entry password for view/download requests. A
// `password` query parameter is accepted as a fallback for plain links.
const PasswordHeader = "X-Linkvault-Password"

type createVaultResponse struct {
	ID      string `json:"id"`
	APILink string `json:"apiLink"`
}

func entryPassword(c *fiber.Ctx) string {
	if pw := c.Get(PasswordHeader); pw != "" {
		return pw
	}
	return c.Query("password")
}

// CreateVault handles multipart uploads of a text snippet or a single file
// together with the entry's access policy. Authenticated callers become the
// entry's owner; anonymous uploads are allowed and stay ownerless.
func CreateVault(svc service.VaultService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		in := service.CreateVaultInput{
			Text:     c.FormValue("text"),
			Password: c.FormValue("password"),
		}

		if v := c.FormValue("oneTime"); v != "" {
			oneTime, err := strconv.ParseBool(v)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "Invalid one-time flag.")
			}
			in.OneTime = oneTime
		}
		var err error
		if in.MaxViews, err = formInt(c, "maxViews"); err != nil {
			return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "Invalid max views.")
		}
		if in.MaxDownloads, err = formInt(c, "maxDownloads"); err != nil {
			return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "Invalid max downloads.")
		}
		if in.ExpiryMinutes, err = formInt(c, "expiryMinutes"); err != nil {
			return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "Invalid expiry minutes.")
		}
		if v := c.FormValue("expiresAt"); v != "" {
			at, err := time.Parse(time.RFC3339, v)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "Invalid expiry timestamp.")
			}
			in.ExpiresAt = &at
		}

		if fh, err := c.FormFile("file"); err == nil {
			f, err := fh.Open()
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
			}
			defer f.Close()

			ct := fh.Header.Get("Content-Type")
			if ct == "" {
				ct = "application/octet-stream"
			}
			in.File = f
			in.FileName = fh.Filename
			in.FileSize = fh.Size
			in.MimeType = ct
		}

		if ident := middleware.IdentityFromCtx(c); ident != nil {
			in.OwnerID = ident.ID
		}

		entry, err := svc.Create(c.UserContext(), in)
		if err != nil {
			return writeServiceError(c, "create", err)
		}
		return c.Status(fiber.StatusCreated).JSON(createVaultResponse{
			ID:      entry.ID,
			APILink: c.BaseURL() + "/v/" + entry.ID,
		})
	}
}

// ViewVault serves a text entry's content or a file entry's metadata.
func ViewVault(svc service.VaultService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		view, err := svc.View(c.UserContext(), id, entryPassword(c))
		if err != nil {
			return writeServiceError(c, "view", err)
		}
		if view.DownloadURL != "" {
			view.DownloadURL = c.BaseURL() + view.DownloadURL
		}
		return c.JSON(view)
	}
}

// DownloadVault streams a file entry's blob with its original filename.
func DownloadVault(svc service.VaultService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		res, err := svc.Download(c.UserContext(), id, entryPassword(c))
		if err != nil {
			return writeServiceError(c, "download", err)
		}

		if res.MimeType != "" {
			c.Set(fiber.HeaderContentType, res.MimeType)
		}
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+sanitizeFilename(res.FileName)+`"`)
		return c.SendStream(res.Body, int(res.FileSize))
	}
}

// DeleteVault removes an entry on behalf of its owner. Anonymous entries have
// no deletion path besides expiry.
func DeleteVault(svc service.VaultService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if err := svc.Delete(c.UserContext(), id, middleware.IdentityFromCtx(c)); err != nil {
			return writeServiceError(c, "delete", err)
		}
		return c.JSON(fiber.Map{"ok": true})
	}
}

// ListOwnedVaults returns the authenticated caller's entries as summaries.
func ListOwnedVaults(svc service.VaultService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ident := middleware.IdentityFromCtx(c)
		items, err := svc.ListOwned(c.UserContext(), ident.ID)
		if err != nil {
			return writeServiceError(c, "list", err)
		}
		return c.JSON(fiber.Map{"items": items, "total": len(items)})
	}
}

// DeleteOwnedVault removes an entry scoped to the authenticated caller. An
// entry owned by someone else is reported as not found.
func DeleteOwnedVault(svc service.VaultService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ident := middleware.IdentityFromCtx(c)
		if err := svc.DeleteOwned(c.UserContext(), c.Params("id"), ident.ID); err != nil {
			if errors.Is(err, service.ErrInvalidLink) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "vault not found")
			}
			return writeServiceError(c, "delete", err)
		}
		return c.JSON(fiber.Map{"ok": true})
	}
}

func formInt(c *fiber.Ctx, field string) (*int, error) {
	v := c.FormValue(field)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, `"`, "")
	name = strings.ReplaceAll(name, "\r", "")
	name = strings.ReplaceAll(name, "\n", "")
	if name == "" {
		name = "download"
	}
	return name
}
